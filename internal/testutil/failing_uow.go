package testutil

import (
	"context"
	"database/sql"
	"strings"

	"github.com/alexanderramin/parada/internal/db"
)

// FailingUoW runs callbacks in a real transaction but fails every write whose
// statement starts with FailOn. Reads are never intercepted, so rollback can
// be checked at a chosen step of a multi-write use case.
type FailingUoW struct {
	DB     *sql.DB
	FailOn string
	Err    error
}

func (u *FailingUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, failingExec{DBTX: tx, prefix: u.FailOn, err: u.Err})
	})
}

type failingExec struct {
	db.DBTX
	prefix string
	err    error
}

func (f failingExec) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if strings.HasPrefix(strings.TrimSpace(query), f.prefix) {
		return nil, f.err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
