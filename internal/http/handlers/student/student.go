// Package student contains all HTTP handlers related to the Student resource.
//
// Each exported function is a factory: it receives its dependencies once,
// at route registration, and returns the handler that runs on every
// request.
//
//	router.HandleFunc("/student", student.New(storage, validator)).Methods(http.MethodPost)
//
// Handlers report failures by returning an error built with package errs;
// response.Handler renders it into the JSON envelope.
package student

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/aanand-mishra/students-api/internal/errs"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/utils/response"
	"github.com/aanand-mishra/students-api/internal/validation"
)

const msgNotFound = "Student not found"

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /student
// Creates a new student from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Ada", "email": "ada@x.com", "phone": "5551234567", "age": 30, "language": "en" }
//
// Responses: 201 with the stored record, 400 on validation failure,
// 409 when the email loses a uniqueness race, 500 on storage failure.
// ─────────────────────────────────────────────────────────────────────────────
func New(store storage.Storage, v *validation.Validator) http.HandlerFunc {
	return response.Handler(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		log.Ctx(ctx).Info().Msg("creating a student")

		payload, err := decodePayload(r)
		if err != nil {
			return err
		}

		input, failed, err := v.Validate(ctx, payload, validation.Create, "")
		if err != nil {
			return errs.PersistenceFailed("Error creating student", err)
		}
		if failed != nil {
			return errs.ValidationFailed(failed)
		}

		student := input.NewStudent()
		if student.ID == "" {
			student.ID = uuid.NewString()
		}

		created, err := store.CreateStudent(ctx, student)
		if err != nil {
			return writeFailure("Error creating student", err)
		}

		log.Ctx(ctx).Info().Str("id", created.ID).Msg("student created")
		return response.Success(w, http.StatusCreated, "Student created successfully", created)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /student/{id}
// Responses: 200 with the record, 404 when the id is unknown (or not a UUID).
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(store storage.Storage) http.HandlerFunc {
	return response.Handler(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		id, err := studentID(r)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().Str("id", id).Msg("getting a student")

		student, err := store.GetStudentByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return errs.NotFound(msgNotFound)
		}
		if err != nil {
			return errs.PersistenceFailed("Error retrieving student", err)
		}

		return response.Success(w, http.StatusOK, "Student found", student)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /students
// Always 200; an empty table yields "data": [] rather than an error.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(store storage.Storage) http.HandlerFunc {
	return response.Handler(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		log.Ctx(ctx).Info().Msg("getting all students")

		students, err := store.GetStudents(ctx)
		if err != nil {
			return errs.PersistenceFailed("Error retrieving students", err)
		}

		if len(students) == 0 {
			return response.Success(w, http.StatusOK, "There is no student data", students)
		}
		return response.Success(w, http.StatusOK, "Student List", students)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /student/{id}
// Applies a full or partial payload. The lookup runs before validation, so
// an unknown id is a 404 whatever the body contains.
// ─────────────────────────────────────────────────────────────────────────────
func Update(store storage.Storage, v *validation.Validator) http.HandlerFunc {
	return response.Handler(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		id, err := studentID(r)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().Str("id", id).Msg("updating a student")

		student, err := store.GetStudentByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return errs.NotFound(msgNotFound)
		}
		if err != nil {
			return errs.PersistenceFailed("Error updating student", err)
		}

		payload, err := decodePayload(r)
		if err != nil {
			return err
		}

		input, failed, err := v.Validate(ctx, payload, validation.Update, id)
		if err != nil {
			return errs.PersistenceFailed("Error updating student", err)
		}
		if failed != nil {
			return errs.ValidationFailed(failed)
		}

		if !input.IsEmpty() {
			input.ApplyTo(&student)

			student, err = store.UpdateStudentByID(ctx, id, student)
			if errors.Is(err, storage.ErrNotFound) {
				return errs.NotFound(msgNotFound)
			}
			if err != nil {
				return writeFailure("Error updating student", err)
			}
		}

		log.Ctx(ctx).Info().Str("id", id).Msg("student updated")
		return response.Success(w, http.StatusOK, "Student successfully updated", student)
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /student/{id}
// Hard delete; 200 with "data": null, 404 when the id is unknown.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(store storage.Storage) http.HandlerFunc {
	return response.Handler(func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()
		id, err := studentID(r)
		if err != nil {
			return err
		}
		log.Ctx(ctx).Info().Str("id", id).Msg("deleting a student")

		if _, err := store.GetStudentByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errs.NotFound(msgNotFound)
			}
			return errs.PersistenceFailed("Error deleting student", err)
		}

		if err := store.DeleteStudentByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errs.NotFound(msgNotFound)
			}
			return errs.PersistenceFailed("Error deleting student", err)
		}

		log.Ctx(ctx).Info().Str("id", id).Msg("student deleted")
		return response.Success(w, http.StatusOK, "Student successfully removed", nil)
	})
}

// studentID returns the {id} path segment. Anything that is not a UUID
// cannot name a stored student, so it is reported as not found.
func studentID(r *http.Request) (string, error) {
	id := mux.Vars(r)["id"]
	if _, err := uuid.Parse(id); err != nil {
		return "", errs.NotFound(msgNotFound)
	}
	return id, nil
}

// decodePayload reads the body as a JSON object. An empty body is an
// empty payload, which the required rules then reject on create.
func decodePayload(r *http.Request) (validation.Payload, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var payload validation.Payload
	err := dec.Decode(&payload)
	if errors.Is(err, io.EOF) {
		return validation.Payload{}, nil
	}
	if err != nil {
		return nil, errs.BadRequest("Invalid JSON payload", err)
	}
	if payload == nil {
		payload = validation.Payload{}
	}
	return payload, nil
}

// writeFailure classifies a storage error from an insert or update.
func writeFailure(message string, err error) error {
	if errors.Is(err, storage.ErrDuplicateEmail) {
		return errs.Conflict(message, map[string][]string{
			"email": {validation.Message("email", "unique", "")},
		}, err)
	}
	return errs.PersistenceFailed(message, err)
}
