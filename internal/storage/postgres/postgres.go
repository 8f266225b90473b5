// Package postgres implements storage.Storage on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS student (
		id         UUID         PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		email      VARCHAR(255) NOT NULL,
		phone      VARCHAR(10)  NOT NULL,
		age        INTEGER      NOT NULL CHECK (age >= 0),
		language   VARCHAR(50)  NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
		CONSTRAINT student_email_key UNIQUE (email)
	)
`

const columns = "id::text, name, email, phone, age, language, created_at, updated_at"

// Postgres is the PostgreSQL implementation of storage.Storage.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Postgres)(nil)

// New connects to dsn, verifies the connection and creates the student
// table if needed.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes every connection in the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	id, err := uuid.Parse(student.ID)
	if err != nil {
		return types.Student{}, fmt.Errorf("CreateStudent: invalid id: %w", err)
	}

	now := time.Now().UTC()
	row := p.pool.QueryRow(ctx,
		`INSERT INTO student (id, name, email, phone, age, language, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 RETURNING `+columns,
		id, student.Name, student.Email, student.Phone, student.Age, student.Language, now,
	)

	created, err := scanStudent(row)
	if err != nil {
		return types.Student{}, writeError("CreateStudent", err)
	}
	return created, nil
}

func (p *Postgres) GetStudentByID(ctx context.Context, id string) (types.Student, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		// Not a UUID, so it cannot be a stored key.
		return types.Student{}, storage.ErrNotFound
	}

	row := p.pool.QueryRow(ctx, "SELECT "+columns+" FROM student WHERE id = $1", uid)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("GetStudentByID: scan: %w", err)
	}
	return student, nil
}

func (p *Postgres) GetStudents(ctx context.Context) ([]types.Student, error) {
	rows, err := p.pool.Query(ctx, "SELECT "+columns+" FROM student ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: query: %w", err)
	}
	defer rows.Close()

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

func (p *Postgres) UpdateStudentByID(ctx context.Context, id string, student types.Student) (types.Student, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return types.Student{}, storage.ErrNotFound
	}

	row := p.pool.QueryRow(ctx,
		`UPDATE student
		    SET name = $1, email = $2, phone = $3, age = $4, language = $5, updated_at = $6
		  WHERE id = $7
		  RETURNING `+columns,
		student.Name, student.Email, student.Phone, student.Age, student.Language, time.Now().UTC(), uid,
	)

	updated, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, writeError("UpdateStudentByID", err)
	}
	return updated, nil
}

func (p *Postgres) DeleteStudentByID(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return storage.ErrNotFound
	}

	tag, err := p.pool.Exec(ctx, "DELETE FROM student WHERE id = $1", uid)
	if err != nil {
		return fmt.Errorf("DeleteStudentByID: exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (p *Postgres) EmailExists(ctx context.Context, email, exceptID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM student WHERE email = $1 AND id::text <> $2)",
		email, exceptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("EmailExists: %w", err)
	}
	return exists, nil
}

func scanStudent(row pgx.Row) (types.Student, error) {
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

// writeError maps a unique violation on the email constraint to
// storage.ErrDuplicateEmail and wraps everything else.
func writeError(op string, err error) error {
	if isDuplicateConstraint(err, "student_email_key") {
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicateEmail)
	}
	return fmt.Errorf("%s: exec: %w", op, err)
}

func isDuplicateConstraint(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
