package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/holocron-dev/holocron/pkg/apperrors"
	"github.com/holocron-dev/holocron/pkg/models"
)

// PostgreSQL error codes the repositories translate.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgStringTooLong       = "22001"
)

// nullString returns nil if the string is empty, otherwise returns the string pointer.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// deref returns the pointed-to string, or "" for NULL columns.
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// constraintName returns the violated constraint when err is a unique
// violation.
func constraintName(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// isForeignKeyViolation reports whether err references a missing row.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// invalidInput translates a rejected value into an InvalidInputError for
// entity. It returns nil for any other error.
func invalidInput(entity string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == pgStringTooLong || pgErr.Code == pgCheckViolation) {
		return &apperrors.InvalidInputError{Entity: entity, Detail: pgErr.Message}
	}
	return nil
}

// nameCondition builds a case-insensitive substring match on column for the
// filter. It returns an always-true condition when the filter is empty.
func nameCondition(column string, filter models.ListFilter, argIdx int, args []any) (string, []any) {
	if filter.Name == "" {
		return "TRUE", args
	}
	args = append(args, "%"+escapeLike(filter.Name)+"%")
	return fmt.Sprintf("%s ILIKE $%d", column, argIdx), args
}

// escapeLike neutralises LIKE wildcards in user input.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func conflict(entity, field, value string) error {
	return &apperrors.ConflictError{Entity: entity, Field: field, Value: value}
}
