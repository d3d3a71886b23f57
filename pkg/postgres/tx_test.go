package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTx records how a transaction ended. Methods not overridden panic via
// the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	committed   bool
	rolledBack  bool
	commitErr   error
	rollbackErr error
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolledBack = true
	return f.rollbackErr
}

type fakeStarter struct {
	tx       *fakeTx
	err      error
	lastOpts pgx.TxOptions
	begun    int
}

func (s *fakeStarter) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	s.begun++
	s.lastOpts = opts
	if s.err != nil {
		return nil, s.err
	}
	return s.tx, nil
}

func TestWithTransaction_Commits(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}

	err := WithTransaction(context.Background(), starter, func(pgx.Tx) error { return nil })

	require.NoError(t, err)
	assert.True(t, starter.tx.committed)
	assert.False(t, starter.tx.rolledBack)
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}
	insertErr := errors.New("duplicate key")

	err := WithTransaction(context.Background(), starter, func(pgx.Tx) error { return insertErr })

	assert.ErrorIs(t, err, insertErr)
	assert.True(t, starter.tx.rolledBack)
	assert.False(t, starter.tx.committed)
}

func TestWithTransaction_ReportsRollbackFailure(t *testing.T) {
	connLost := errors.New("conn lost")
	starter := &fakeStarter{tx: &fakeTx{rollbackErr: connLost}}
	insertErr := errors.New("duplicate key")

	err := WithTransaction(context.Background(), starter, func(pgx.Tx) error { return insertErr })

	assert.ErrorIs(t, err, insertErr)
	assert.ErrorIs(t, err, connLost)
}

func TestWithTransaction_BeginAndCommitFailures(t *testing.T) {
	refused := errors.New("connection refused")
	ran := false
	err := WithTransaction(context.Background(), &fakeStarter{err: refused}, func(pgx.Tx) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, refused)
	assert.False(t, ran)

	serialization := errors.New("could not serialize access")
	err = WithTransaction(context.Background(), &fakeStarter{tx: &fakeTx{commitErr: serialization}}, func(pgx.Tx) error { return nil })
	assert.ErrorIs(t, err, serialization)
}

func TestWithTxOptions_PanicRollsBack(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}
	opts := pgx.TxOptions{IsoLevel: pgx.Serializable}

	assert.PanicsWithValue(t, "boom", func() {
		_ = WithTxOptions(context.Background(), starter, opts, func(pgx.Tx) error { panic("boom") })
	})
	assert.True(t, starter.tx.rolledBack)
	assert.Equal(t, pgx.Serializable, starter.lastOpts.IsoLevel)
}

func TestInTransaction_CarriesTxInContext(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}

	err := InTransaction(context.Background(), starter, func(ctx context.Context) error {
		tx, ok := TxFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, starter.tx, tx)
		assert.Same(t, starter.tx, Conn(ctx, nil))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, starter.tx.committed)
}

func TestInTransaction_NestedCallsJoinOuterTx(t *testing.T) {
	starter := &fakeStarter{tx: &fakeTx{}}
	publishErr := errors.New("outbox insert failed")

	err := InTransaction(context.Background(), starter, func(ctx context.Context) error {
		require.NoError(t, InTransaction(ctx, starter, func(context.Context) error { return nil }))
		assert.False(t, starter.tx.committed, "inner call must not commit")
		return InTransaction(ctx, starter, func(context.Context) error { return publishErr })
	})

	assert.ErrorIs(t, err, publishErr)
	assert.Equal(t, 1, starter.begun)
	assert.True(t, starter.tx.rolledBack)
	assert.False(t, starter.tx.committed)
}

func TestConn_WithoutTx(t *testing.T) {
	db := &fakeTx{}
	assert.Same(t, db, Conn(context.Background(), db))

	_, ok := TxFromContext(context.Background())
	assert.False(t, ok)
}
