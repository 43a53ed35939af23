package database

import (
	"context"
	"fmt"

	"github.com/holocron-dev/holocron/pkg/apperrors"
)

// TxFunc runs fn inside a unit of work that commits only when fn succeeds.
// WithTx is the production implementation.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

var _ TxFunc = WithTx

// WithTx runs fn inside a transaction opened on the scope found in ctx.
// The context passed to fn carries a scope bound to the transaction, so
// repositories called from fn participate in it. The transaction commits when
// fn returns nil and rolls back otherwise. Nested calls use savepoints.
func WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	scope, ok := GetScope(ctx)
	if !ok {
		return apperrors.ErrNoScope
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(SetScope(ctx, NewScope(tx))); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
