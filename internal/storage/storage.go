// Package storage defines the Storage interface: the contract any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, so the SQLite and PostgreSQL
// backends are interchangeable and tests can run against either.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/students-api/internal/types"
)

var (
	// ErrNotFound is returned when no student matches the given id.
	ErrNotFound = errors.New("student not found")

	// ErrDuplicateEmail is returned when a write violates the unique
	// constraint on the email column.
	ErrDuplicateEmail = errors.New("email has already been taken")
)

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student. The caller assigns the ID;
	// timestamps are set by the backend. Returns the stored record.
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)

	// GetStudentByID fetches a single student by primary key.
	// Returns ErrNotFound if there is no such row.
	GetStudentByID(ctx context.Context, id string) (types.Student, error)

	// GetStudents returns every student. Returns an empty slice (not nil)
	// if there are none.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// UpdateStudentByID writes all mutable fields of student to the row
	// with the given id and refreshes updated_at. Returns the stored record.
	UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error)

	// DeleteStudentByID removes a student record permanently.
	// Returns ErrNotFound if there is no such row.
	DeleteStudentByID(ctx context.Context, id string) error

	// EmailExists reports whether any student other than exceptID uses
	// email. An empty exceptID checks all rows.
	EmailExists(ctx context.Context, email, exceptID string) (bool, error)

	// Close releases the underlying connection pool.
	Close() error
}
