// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and validation can all import types without
// depending on each other.
package types

import "time"

// Student represents a student record in our system.
//
// The json:"..." tags are the wire representation returned to clients.
// Every stored column is returned verbatim; there are no derived fields.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Age       int       `json:"age"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StudentInput is a validated create or update payload.
//
// A nil pointer means the field was not supplied. On create every field
// is set; on update only the supplied ones are.
type StudentInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Age      *int
	Language *string
}

// NewStudent builds a Student from a complete (create) payload.
func (in StudentInput) NewStudent() Student {
	var s Student
	in.ApplyTo(&s)
	return s
}

// IsEmpty reports whether no field was supplied.
func (in StudentInput) IsEmpty() bool {
	return in.Name == nil && in.Email == nil && in.Phone == nil && in.Age == nil && in.Language == nil
}

// ApplyTo copies every supplied field onto s and leaves the rest untouched.
func (in StudentInput) ApplyTo(s *Student) {
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Email != nil {
		s.Email = *in.Email
	}
	if in.Phone != nil {
		s.Phone = *in.Phone
	}
	if in.Age != nil {
		s.Age = *in.Age
	}
	if in.Language != nil {
		s.Language = *in.Language
	}
}
