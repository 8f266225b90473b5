package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/errs"
)

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestSuccess(t *testing.T) {
	rr := httptest.NewRecorder()

	require.NoError(t, Success(rr, http.StatusOK, "There is no student data", []string{}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"message":"There is no student data","data":[]}`, rr.Body.String())
}

func TestFailure(t *testing.T) {
	t.Run("not found keeps data null", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.NoError(t, Failure(rr, errs.NotFound("Student not found")))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"success":false,"message":"Student not found","data":null}`, rr.Body.String())
	})

	t.Run("validation carries errors", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.NoError(t, Failure(rr, errs.ValidationFailed(map[string][]string{
			"phone": {"The phone number must contain exactly 10 digits."},
		})))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, "Validation error", body["message"])
		assert.Equal(t, []any{"The phone number must contain exactly 10 digits."},
			body["errors"].(map[string]any)["phone"])
	})

	t.Run("persistence failure exposes cause", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.NoError(t, Failure(rr, errs.PersistenceFailed("Error creating student", errors.New("disk I/O error"))))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		body := decode(t, rr)
		assert.Equal(t, "Error creating student", body["message"])
		assert.Equal(t, "disk I/O error", body["error"])
	})

	t.Run("unknown error hides cause", func(t *testing.T) {
		rr := httptest.NewRecorder()
		require.NoError(t, Failure(rr, errors.New("secret dsn in here")))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "secret")
	})
}

func TestHandler(t *testing.T) {
	h := Handler(func(w http.ResponseWriter, r *http.Request) error {
		return errs.MethodNotAllowed("The HTTP method is not allowed for this route")
	})

	rr := httptest.NewRecorder()
	h(rr, httptest.NewRequest(http.MethodPatch, "/students", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, false, decode(t, rr)["success"])
}
