// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Importing go-sqlite3 registers the "sqlite3" driver with database/sql.
// We import it by name rather than blank because its error codes tell us
// when a write hit the unique constraint on email.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
	CREATE TABLE IF NOT EXISTS student (
		id         TEXT     PRIMARY KEY,
		name       TEXT     NOT NULL,
		email      TEXT     NOT NULL UNIQUE,
		phone      TEXT     NOT NULL,
		age        INTEGER  NOT NULL,
		language   TEXT     NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	)
`

// Explicit column list; SELECT * would break Scan's ordering if a column
// is ever added.
const columns = "id, name, email, phone, age, language, created_at, updated_at"

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at path, creates the student table if it
// does not already exist, and returns a ready-to-use *SQLite.
func New(path string) (*SQLite, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Every new connection to :memory: is a brand new, empty database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	// CREATE TABLE IF NOT EXISTS is idempotent; safe to run on every start.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// CreateStudent inserts a new row and returns it as stored.
func (s *SQLite) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO student ("+columns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	// Argument order must match the column list.
	_, err = stmt.ExecContext(ctx,
		student.ID,
		student.Name,
		student.Email,
		student.Phone,
		student.Age,
		student.Language,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		return types.Student{}, writeError("CreateStudent", err)
	}

	return s.GetStudentByID(ctx, student.ID)
}

// GetStudentByID fetches exactly one student row matched by primary key.
func (s *SQLite) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+columns+" FROM student WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("GetStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	student, err := scanStudent(stmt.QueryRowContext(ctx, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}

	return student, nil
}

// GetStudents returns all student rows in insertion order.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT "+columns+" FROM student ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so it encodes as [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("GetStudents: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetStudents: rows iteration: %w", err)
	}

	return students, nil
}

// UpdateStudentByID overwrites the mutable columns of a student and
// returns the record as stored.
func (s *SQLite) UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		`UPDATE student
		    SET name = ?, email = ?, phone = ?, age = ?, language = ?, updated_at = ?
		  WHERE id = ?`,
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("UpdateStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx,
		student.Name,
		student.Email,
		student.Phone,
		student.Age,
		student.Language,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return types.Student{}, writeError("UpdateStudentByID", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.Student{}, storage.ErrNotFound
	}

	// Re-fetch so we return exactly what is stored in the DB.
	return s.GetStudentByID(ctx, id)
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id string) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM student WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// EmailExists reports whether another student already uses email.
func (s *SQLite) EmailExists(ctx context.Context, email, exceptID string) (bool, error) {
	var exists bool
	err := s.Db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM student WHERE email = ? AND id <> ?)",
		email, exceptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("EmailExists: %w", err)
	}
	return exists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (types.Student, error) {
	var student types.Student
	err := row.Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Phone,
		&student.Age,
		&student.Language,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	return student, err
}

// writeError maps a UNIQUE violation to storage.ErrDuplicateEmail; email
// is the only unique column besides the primary key.
func writeError(op string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicateEmail)
	}
	return fmt.Errorf("%s: exec: %w", op, err)
}
