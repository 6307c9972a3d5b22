package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/parada/internal/db"
	"github.com/alexanderramin/parada/internal/domain"
)

// SQLiteCacheEntryRepo stores pipeline results by content hash so they
// survive process restarts.
type SQLiteCacheEntryRepo struct {
	db db.DBTX
}

func NewSQLiteCacheEntryRepo(conn db.DBTX) *SQLiteCacheEntryRepo {
	return &SQLiteCacheEntryRepo{db: conn}
}

// Get returns the schedule stored under hash unless it expired before now.
func (r *SQLiteCacheEntryRepo) Get(ctx context.Context, hash string, now time.Time) (*domain.Schedule, error) {
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM cache_entries WHERE content_hash = ? AND expires_at > ?`,
		hash, formatTime(now),
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("cache entry: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("reading cache entry: %w", err)
	}
	return decodeSchedule(payload)
}

func (r *SQLiteCacheEntryRepo) Put(ctx context.Context, hash string, s *domain.Schedule, expiresAt time.Time) error {
	payload, err := encodeSchedule(s)
	if err != nil {
		return err
	}
	query := `INSERT INTO cache_entries (content_hash, format, payload, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(content_hash) DO UPDATE
		SET payload = excluded.payload, expires_at = excluded.expires_at`
	if _, err := r.db.ExecContext(ctx, query,
		hash, string(s.Format), payload, formatTime(expiresAt), formatTime(nowUTC()),
	); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

func (r *SQLiteCacheEntryRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("deleting expired cache entries: %w", err)
	}
	return rowsAffected(res), nil
}
