package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrNoScope      = errors.New("no database scope in context")
)

// ConflictError names the unique key a write collided with.
// errors.Is(err, ErrConflict) holds for every ConflictError.
type ConflictError struct {
	Entity string
	Field  string
	Value  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// InvalidInputError is a value the store rejected, such as a string longer
// than its column. errors.Is(err, ErrInvalidInput) holds for every
// InvalidInputError.
type InvalidInputError struct {
	Entity string
	Detail string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Entity, e.Detail)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}
