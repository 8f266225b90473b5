// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every endpoint answers with the same envelope:
//
//	{ "success": true, "message": "Student found", "data": { ... } }
//
// Failures use the same keys with "data": null, plus "errors" for
// validation failures and "error" for persistence failures.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aanand-mishra/students-api/internal/errs"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    any                 `json:"data"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// WriteJSON writes data as JSON with the given HTTP status code.
//
// Order matters: Header() → WriteHeader() → body writes. Once WriteHeader
// is called, headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// Success writes a successful envelope.
func Success(w http.ResponseWriter, status int, message string, data any) error {
	return WriteJSON(w, status, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Failure writes the envelope for err. Errors that are not *errs.HTTPError
// become a generic 500.
func Failure(w http.ResponseWriter, err error) error {
	httpErr := errs.As(err)
	return WriteJSON(w, httpErr.Status, Envelope{
		Success: false,
		Message: httpErr.Message,
		Errors:  httpErr.Fields,
		Error:   httpErr.Detail(),
	})
}

// HandlerFunc is an HTTP handler that reports failure by returning an error.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handler adapts fn to http.HandlerFunc. A returned error is logged and
// rendered through Failure, so handlers never write error bodies themselves.
func Handler(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		httpErr := errs.As(err)
		logger := log.Ctx(r.Context())
		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", httpErr.Status).Msg("request failed")
		} else {
			logger.Debug().Err(err).Int("status", httpErr.Status).Msg("request rejected")
		}

		if werr := Failure(w, httpErr); werr != nil {
			logger.Error().Err(werr).Msg("failed to write error response")
		}
	}
}
