package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillUnclassified(db); err != nil {
		return fmt.Errorf("backfilling snapshot unclassified counts: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		id               TEXT PRIMARY KEY,
		format           TEXT NOT NULL
		                 CHECK(format IN ('preparation','pfus3')),
		source           TEXT NOT NULL DEFAULT '',
		content_hash     TEXT NOT NULL,
		title            TEXT NOT NULL DEFAULT '',
		records          INTEGER NOT NULL DEFAULT 0,
		warnings         INTEGER NOT NULL DEFAULT 0,
		overall_progress INTEGER NOT NULL DEFAULT 0
		                 CHECK(overall_progress BETWEEN 0 AND 100),
		payload          TEXT NOT NULL,
		created_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_snapshots_format_created ON snapshots(format, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_hash ON snapshots(content_hash)`,

	`CREATE TABLE IF NOT EXISTS cache_entries (
		content_hash TEXT PRIMARY KEY,
		format       TEXT NOT NULL,
		payload      TEXT NOT NULL,
		expires_at   TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_cache_entries_expires ON cache_entries(expires_at)`,

	`ALTER TABLE snapshots ADD COLUMN unclassified INTEGER NOT NULL DEFAULT -1`,
}

// migrateBackfillUnclassified fills the unclassified count of snapshots
// written before the column existed by reading it from the stored payload.
func migrateBackfillUnclassified(db *sql.DB) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT id, payload FROM snapshots WHERE unclassified < 0`)
	if err != nil {
		return fmt.Errorf("listing snapshots: %w", err)
	}
	type pending struct {
		id    string
		count int
	}
	var updates []pending
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			rows.Close()
			return err
		}
		var doc struct {
			Unclassified []string `json:"unclassified"`
		}
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			rows.Close()
			return fmt.Errorf("decoding snapshot %s: %w", id, err)
		}
		updates = append(updates, pending{id: id, count: len(doc.Unclassified)})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, u := range updates {
		if _, err := db.ExecContext(ctx,
			`UPDATE snapshots SET unclassified = ? WHERE id = ?`, u.count, u.id); err != nil {
			return fmt.Errorf("updating snapshot %s: %w", u.id, err)
		}
	}
	return nil
}
