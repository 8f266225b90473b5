package validation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmails struct {
	taken    map[string]string // email -> owner id
	err      error
	lookups  int
	lastSkip string
}

func (f *fakeEmails) EmailExists(_ context.Context, email, exceptID string) (bool, error) {
	f.lookups++
	f.lastSkip = exceptID
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.taken[email]
	return ok && owner != exceptID, nil
}

// payload decodes src the same way the handlers do.
func payload(t *testing.T, src string) Payload {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var p Payload
	require.NoError(t, dec.Decode(&p))
	return p
}

const validBody = `{"name":"Ada","email":"ada@x.com","phone":"5551234567","age":30,"language":"en"}`

func TestValidate_CreateValid(t *testing.T) {
	v := New(&fakeEmails{})

	in, failed, err := v.Validate(context.Background(), payload(t, validBody), Create, "")
	require.NoError(t, err)
	require.Nil(t, failed)

	require.NotNil(t, in.Name)
	assert.Equal(t, "Ada", *in.Name)
	assert.Equal(t, "ada@x.com", *in.Email)
	assert.Equal(t, "5551234567", *in.Phone)
	assert.Equal(t, 30, *in.Age)
	assert.Equal(t, "en", *in.Language)
}

func TestValidate_CreateRequiresEverything(t *testing.T) {
	v := New(&fakeEmails{})

	_, failed, err := v.Validate(context.Background(), Payload{}, Create, "")
	require.NoError(t, err)

	for _, name := range []string{"name", "email", "phone", "age", "language"} {
		assert.Equal(t, []string{"The " + name + " field is required."}, failed[name], name)
	}
}

func TestValidate_Phone(t *testing.T) {
	v := New(&fakeEmails{})
	digits := "The phone number must contain exactly 10 digits."
	numeric := "The phone number must be numeric."

	tests := []struct {
		name  string
		phone string
		want  []string
	}{
		{"too short", `"12345"`, []string{digits}},
		{"too long", `"12345678901"`, []string{digits}},
		{"letters", `"abc1234567"`, []string{numeric, digits}},
		{"signed number", `"+123456789"`, []string{digits}},
		{"json number", `5551234567`, nil},
		{"leading zero", `"0551234567"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"name":"Ada","email":"ada@x.com","phone":` + tt.phone + `,"age":30,"language":"en"}`
			in, failed, err := v.Validate(context.Background(), payload(t, body), Create, "")
			require.NoError(t, err)

			if tt.want == nil {
				assert.Nil(t, failed)
				assert.Len(t, *in.Phone, 10)
				return
			}
			assert.Equal(t, tt.want, failed["phone"])
		})
	}
}

func TestValidate_FieldRules(t *testing.T) {
	v := New(&fakeEmails{})

	tests := []struct {
		name  string
		body  string
		field string
		want  []string
	}{
		{"negative age", `{"age":-1}`, "age", []string{"The age field must be at least 0."}},
		{"fractional age", `{"age":1.5}`, "age", []string{"The age field must be an integer."}},
		{"age as string", `{"age":"41"}`, "age", nil},
		{"bad email", `{"email":"not-an-email"}`, "email", []string{"The email field must be a valid email address."}},
		{"long name", `{"name":"` + strings.Repeat("a", 256) + `"}`, "name", []string{"The name field must not be greater than 255 characters."}},
		{"name at limit", `{"name":"` + strings.Repeat("é", 255) + `"}`, "name", nil},
		{"numeric name", `{"name":42}`, "name", []string{"The name field must be a string."}},
		{"long language", `{"language":"` + strings.Repeat("x", 51) + `"}`, "language", []string{"The language field must not be greater than 50 characters."}},
		{"blank language", `{"language":"   "}`, "language", []string{"The language field is required."}},
		{"null name", `{"name":null}`, "name", []string{"The name field is required."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, failed, err := v.Validate(context.Background(), payload(t, tt.body), Update, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, failed[tt.field])
		})
	}
}

func TestValidate_UpdateIsPartial(t *testing.T) {
	emails := &fakeEmails{}
	v := New(emails)

	in, failed, err := v.Validate(context.Background(), payload(t, `{"age":31}`), Update, "id-1")
	require.NoError(t, err)
	require.Nil(t, failed)

	assert.Equal(t, 31, *in.Age)
	assert.Nil(t, in.Name)
	assert.Nil(t, in.Email)
	assert.Nil(t, in.Phone)
	assert.Nil(t, in.Language)
	assert.Zero(t, emails.lookups)
}

func TestValidate_UniqueEmail(t *testing.T) {
	emails := &fakeEmails{taken: map[string]string{"ada@x.com": "id-1"}}
	v := New(emails)

	t.Run("taken on create", func(t *testing.T) {
		_, failed, err := v.Validate(context.Background(), payload(t, validBody), Create, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"The email has already been taken."}, failed["email"])
	})

	t.Run("own email on update", func(t *testing.T) {
		_, failed, err := v.Validate(context.Background(), payload(t, `{"email":"ada@x.com"}`), Update, "id-1")
		require.NoError(t, err)
		assert.Nil(t, failed)
		assert.Equal(t, "id-1", emails.lastSkip)
	})

	t.Run("someone else's email on update", func(t *testing.T) {
		_, failed, err := v.Validate(context.Background(), payload(t, `{"email":"ada@x.com"}`), Update, "id-2")
		require.NoError(t, err)
		assert.Contains(t, failed, "email")
	})

	t.Run("malformed email skips the lookup", func(t *testing.T) {
		before := emails.lookups
		_, failed, err := v.Validate(context.Background(), payload(t, `{"email":"nope"}`), Update, "id-2")
		require.NoError(t, err)
		assert.Len(t, failed["email"], 1)
		assert.Equal(t, before, emails.lookups)
	})
}

func TestValidate_LookupFailure(t *testing.T) {
	v := New(&fakeEmails{err: errors.New("database is locked")})

	_, _, err := v.Validate(context.Background(), payload(t, validBody), Create, "")
	assert.ErrorContains(t, err, "database is locked")
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "The phone number must be numeric.", Message("phone", "numeric", ""))
	assert.Equal(t, "The age field must be a number.", Message("age", "numeric", ""))
	assert.Equal(t, "The code field must be 4 digits.", Message("code", "digits", "4"))
}
