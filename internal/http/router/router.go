// Package router binds the HTTP routes to the student handlers and wraps
// them with the request-level middleware.
package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/aanand-mishra/students-api/internal/errs"
	"github.com/aanand-mishra/students-api/internal/http/handlers/student"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/utils/response"
	"github.com/aanand-mishra/students-api/internal/validation"
)

const (
	msgRouteNotFound    = "404 URL not registered or does not exist"
	msgMethodNotAllowed = "The HTTP method is not allowed for this route"
)

// New returns the complete application handler.
//
// Route table:
//
//	GET    /students       → list all students
//	GET    /student/{id}   → get one student by ID
//	POST   /student        → create a new student
//	PUT    /student/{id}   → update a student
//	DELETE /student/{id}   → delete a student
func New(store storage.Storage, logger zerolog.Logger) http.Handler {
	v := validation.New(store)

	r := mux.NewRouter()
	r.HandleFunc("/students", student.GetList(store)).Methods(http.MethodGet)
	r.HandleFunc("/student", student.New(store, v)).Methods(http.MethodPost)
	r.HandleFunc("/student/{id}", student.GetByID(store)).Methods(http.MethodGet)
	r.HandleFunc("/student/{id}", student.Update(store, v)).Methods(http.MethodPut)
	r.HandleFunc("/student/{id}", student.Delete(store)).Methods(http.MethodDelete)

	r.NotFoundHandler = response.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return errs.NotFound(msgRouteNotFound)
	})
	r.MethodNotAllowedHandler = response.Handler(func(w http.ResponseWriter, r *http.Request) error {
		return errs.MethodNotAllowed(msgMethodNotAllowed)
	})

	// mux's own Use() middleware skips the NotFound/MethodNotAllowed
	// handlers, so the chain wraps the router from outside.
	return RequestLogger(logger)(Recoverer(r))
}
