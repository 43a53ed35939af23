package repositories

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/models"
)

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `R2\_D2`, escapeLike("R2_D2"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "luke", escapeLike("luke"))
}

func TestNameCondition(t *testing.T) {
	cond, args := nameCondition("p.name", models.ListFilter{}, 1, nil)
	assert.Equal(t, "TRUE", cond)
	assert.Empty(t, args)

	cond, args = nameCondition("p.name", models.ListFilter{Name: "luke"}, 1, nil)
	assert.Equal(t, "p.name ILIKE $1", cond)
	assert.Equal(t, []any{"%luke%"}, args)
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	s := nullString("arid")
	if assert.NotNil(t, s) {
		assert.Equal(t, "arid", *s)
	}
	assert.Equal(t, "", deref(nil))
	assert.Equal(t, "arid", deref(s))
}

func TestInvalidInput(t *testing.T) {
	tooLong := fmt.Errorf("scan: %w", &pgconn.PgError{Code: pgStringTooLong, Message: "value too long for type character varying(10)"})
	err := invalidInput("person", tooLong)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Equal(t, "invalid person: value too long for type character varying(10)", err.Error())

	check := &pgconn.PgError{Code: pgCheckViolation, Message: `new row for relation "people" violates check constraint "people_gender_check"`}
	assert.ErrorIs(t, invalidInput("person", check), apperrors.ErrInvalidInput)

	assert.NoError(t, invalidInput("person", &pgconn.PgError{Code: pgUniqueViolation}))
	assert.NoError(t, invalidInput("person", errors.New("connection reset")))
}
