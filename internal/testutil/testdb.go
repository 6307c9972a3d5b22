package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/parada/internal/db"
)

// NewTestDB opens a migrated in-memory database that lives until the test
// ends. It has a single connection, so reads inside a unit of work must go
// through the transaction.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return open(t, db.MemoryPath)
}

// NewFileDB opens a migrated database file in a temp directory. Use it when
// several goroutines need their own connections.
func NewFileDB(t *testing.T) *sql.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "parada_test.db"))
}

func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

func open(t *testing.T, path string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(path)
	if err != nil {
		t.Fatalf("opening test database %s: %v", path, err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}
