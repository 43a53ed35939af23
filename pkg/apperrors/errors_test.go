package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictError(t *testing.T) {
	err := fmt.Errorf("failed to create planet: %w", &ConflictError{Entity: "planet", Field: "name", Value: "Tatooine"})

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))

	var ce *ConflictError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, `planet with name "Tatooine" already exists`, ce.Error())
}

func TestInvalidInputError(t *testing.T) {
	err := fmt.Errorf("create: %w", &InvalidInputError{Entity: "person", Detail: "value too long for type character varying(10)"})

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "create: invalid person: value too long for type character varying(10)", err.Error())
}
