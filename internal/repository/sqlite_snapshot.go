package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/parada/internal/db"
	"github.com/alexanderramin/parada/internal/domain"
)

// SQLiteSnapshotRepo implements SnapshotRepo using a SQLite database.
type SQLiteSnapshotRepo struct {
	db db.DBTX
}

func NewSQLiteSnapshotRepo(conn db.DBTX) *SQLiteSnapshotRepo {
	return &SQLiteSnapshotRepo{db: conn}
}

const snapshotColumns = `id, format, source, content_hash, title, records, warnings,
	unclassified, overall_progress, payload, created_at`

func (r *SQLiteSnapshotRepo) Create(ctx context.Context, s *domain.Snapshot) error {
	if s.Schedule == nil {
		return fmt.Errorf("inserting snapshot %s: schedule is required", s.ID)
	}
	payload, err := encodeSchedule(s.Schedule)
	if err != nil {
		return err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = nowUTC()
	}
	query := `INSERT INTO snapshots (` + snapshotColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		s.ID,
		string(s.Format),
		s.Source,
		s.ContentHash,
		s.Title,
		s.Records,
		s.Warnings,
		s.Unclassified,
		s.OverallProgress,
		payload,
		formatTime(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteSnapshotRepo) GetByID(ctx context.Context, id string) (*domain.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots WHERE id = ?`
	return r.scanSnapshot(r.db.QueryRowContext(ctx, query, id))
}

// Latest returns the most recent snapshot of format.
func (r *SQLiteSnapshotRepo) Latest(ctx context.Context, format domain.SourceFormat) (*domain.Snapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM snapshots
		WHERE format = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`
	return r.scanSnapshot(r.db.QueryRowContext(ctx, query, string(format)))
}

// List returns snapshot summaries, newest first. The stored schedule is not
// decoded; use GetByID for the full hierarchy.
func (r *SQLiteSnapshotRepo) List(ctx context.Context, f SnapshotFilter) ([]*domain.Snapshot, error) {
	var (
		where []string
		args  []any
	)
	if f.Format != "" {
		where = append(where, "format = ?")
		args = append(args, string(f.Format))
	}
	query := `SELECT id, format, source, content_hash, title, records, warnings,
		unclassified, overall_progress, created_at FROM snapshots`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []*domain.Snapshot
	for rows.Next() {
		var s domain.Snapshot
		var format, createdAt string
		if err := rows.Scan(&s.ID, &format, &s.Source, &s.ContentHash, &s.Title, &s.Records,
			&s.Warnings, &s.Unclassified, &s.OverallProgress, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		s.Format = domain.SourceFormat(format)
		if s.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, nil
}

// Prune deletes all but the newest keep snapshots of format and returns the
// number removed.
func (r *SQLiteSnapshotRepo) Prune(ctx context.Context, format domain.SourceFormat, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	query := `DELETE FROM snapshots WHERE format = ? AND id NOT IN (
		SELECT id FROM snapshots WHERE format = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?)`
	res, err := r.db.ExecContext(ctx, query, string(format), string(format), keep)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return rowsAffected(res), nil
}

func (r *SQLiteSnapshotRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting snapshot: %w", err)
	}
	if rowsAffected(res) == 0 {
		return fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteSnapshotRepo) scanSnapshot(row *sql.Row) (*domain.Snapshot, error) {
	var s domain.Snapshot
	var format, payload, createdAt string

	err := row.Scan(&s.ID, &format, &s.Source, &s.ContentHash, &s.Title, &s.Records,
		&s.Warnings, &s.Unclassified, &s.OverallProgress, &payload, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}

	s.Format = domain.SourceFormat(format)
	if s.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if s.Schedule, err = decodeSchedule(payload); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.ID, err)
	}
	return &s, nil
}
