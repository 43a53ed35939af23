package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-dev/holocron/pkg/apperrors"
)

// fakeTx records commit/rollback calls. Only the methods WithTx uses are
// implemented; the embedded interface panics on anything else.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(ctx context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeQuerier struct {
	tx       *fakeTx
	beginErr error
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (f *fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (f *fakeQuerier) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func TestScopeContextRoundTrip(t *testing.T) {
	_, ok := GetScope(context.Background())
	assert.False(t, ok)

	scope := NewScope(&fakeQuerier{})
	ctx := SetScope(context.Background(), scope)

	got, ok := GetScope(ctx)
	require.True(t, ok)
	assert.Same(t, scope, got)

	// Close on a borrowed scope is a no-op.
	got.Close()
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	q := &fakeQuerier{tx: &fakeTx{}}
	ctx := SetScope(context.Background(), NewScope(q))

	var inner *Scope
	err := WithTx(ctx, func(txCtx context.Context) error {
		s, ok := GetScope(txCtx)
		require.True(t, ok)
		inner = s
		return nil
	})

	require.NoError(t, err)
	assert.True(t, q.tx.committed)
	assert.False(t, q.tx.rolledBack)
	assert.Same(t, q.tx, inner.Conn, "inner scope must run on the transaction")
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	q := &fakeQuerier{tx: &fakeTx{}}
	ctx := SetScope(context.Background(), NewScope(q))

	boom := errors.New("boom")
	err := WithTx(ctx, func(context.Context) error { return boom })

	require.ErrorIs(t, err, boom)
	assert.False(t, q.tx.committed)
	assert.True(t, q.tx.rolledBack)
}

func TestWithTx_RequiresScope(t *testing.T) {
	err := WithTx(context.Background(), func(context.Context) error { return nil })
	require.ErrorIs(t, err, apperrors.ErrNoScope)
}

func TestWithTx_BeginFailure(t *testing.T) {
	q := &fakeQuerier{beginErr: errors.New("conn busy")}
	ctx := SetScope(context.Background(), NewScope(q))

	called := false
	err := WithTx(ctx, func(context.Context) error { called = true; return nil })

	require.Error(t, err)
	assert.False(t, called)
}

func TestWithPoolScope_StoresPool(t *testing.T) {
	db := &DB{Pool: &pgxpool.Pool{}}

	var got *Scope
	handler := WithPoolScope(db)(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetScope(r.Context())
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/graphql", nil))

	require.NotNil(t, got)
	assert.Same(t, db.Pool, got.Conn)
	got.Close()
}
