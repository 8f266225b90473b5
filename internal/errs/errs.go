// Package errs defines the error kinds the HTTP layer knows how to render.
//
// Handlers return an *HTTPError (or any other error); the response package
// turns it into a status code and the uniform JSON envelope. Anything that
// is not an *HTTPError is reported as a generic 500.
package errs

import (
	"errors"
	"net/http"
)

// HTTPError is an error that carries its HTTP status and client message.
type HTTPError struct {
	// Status is the HTTP status code.
	Status int

	// Message is the human-readable envelope message.
	Message string

	// Fields holds per-field validation messages (400 and 409 only).
	Fields map[string][]string

	// Err is the underlying cause. Its text is exposed to the client as
	// "error" unless the error is an unclassified Internal one.
	Err error

	internal bool
}

// Detail is the cause text safe to show to the client, or "".
func (e *HTTPError) Detail() string {
	if e.Err == nil || e.internal {
		return ""
	}
	return e.Err.Error()
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NotFound is a 404 for an unknown resource or route.
func NotFound(message string) *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, Message: message}
}

// MethodNotAllowed is a 405 for a known path hit with the wrong method.
func MethodNotAllowed(message string) *HTTPError {
	return &HTTPError{Status: http.StatusMethodNotAllowed, Message: message}
}

// ValidationFailed is a 400 carrying field -> messages.
func ValidationFailed(fields map[string][]string) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: "Validation error", Fields: fields}
}

// BadRequest is a 400 for a request that could not be read at all.
func BadRequest(message string, err error) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Message: message, Err: err}
}

// PersistenceFailed is a 500 for an unexpected storage error during a write.
func PersistenceFailed(message string, err error) *HTTPError {
	return &HTTPError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// Conflict is a 409 for a write rejected by a unique constraint.
func Conflict(message string, fields map[string][]string, err error) *HTTPError {
	return &HTTPError{Status: http.StatusConflict, Message: message, Fields: fields, Err: err}
}

// Internal is the fallback for errors nobody classified.
func Internal(err error) *HTTPError {
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Message:  http.StatusText(http.StatusInternalServerError),
		Err:      err,
		internal: true,
	}
}

// As returns err as an *HTTPError, classifying unknown errors as Internal.
func As(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return Internal(err)
}
