package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/parada/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUoW(t *testing.T) *db.SQLiteUnitOfWork {
	t.Helper()
	database, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return db.NewSQLiteUnitOfWork(database)
}

func insertEntry(ctx context.Context, tx db.DBTX, hash string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO cache_entries (content_hash, format, payload, expires_at, created_at)
		VALUES (?, 'pfus3', '{}', '2099-01-01T00:00:00Z', '2025-08-17T00:00:00Z')`, hash)
	return err
}

func entryExists(t *testing.T, uow *db.SQLiteUnitOfWork, hash string) bool {
	t.Helper()
	var n int
	require.NoError(t, uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries WHERE content_hash = ?`, hash).Scan(&n)
	}))
	return n > 0
}

func TestWithinTx_CommitOnSuccess(t *testing.T) {
	uow := newUoW(t)

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return insertEntry(ctx, tx, "h1")
	})
	require.NoError(t, err)
	assert.True(t, entryExists(t, uow, "h1"))
}

func TestWithinTx_RollbackOnError(t *testing.T) {
	uow := newUoW(t)
	boom := errors.New("deliberate failure")

	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		if err := insertEntry(ctx, tx, "h2"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, entryExists(t, uow, "h2"))
}

func TestWithinTx_RollbackOnPanic(t *testing.T) {
	uow := newUoW(t)

	assert.Panics(t, func() {
		_ = uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
			_ = insertEntry(ctx, tx, "h3")
			panic("boom")
		})
	})
	assert.False(t, entryExists(t, uow, "h3"))
}
