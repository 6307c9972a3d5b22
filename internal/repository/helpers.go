package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/parada/internal/domain"
)

// timeLayout has a fixed-width fraction so stored timestamps sort
// lexicographically in time order.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// formatTime renders t in UTC for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s, column string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

func encodeSchedule(s *domain.Schedule) (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding schedule: %w", err)
	}
	return string(data), nil
}

func decodeSchedule(payload string) (*domain.Schedule, error) {
	var s domain.Schedule
	if err := json.Unmarshal([]byte(payload), &s); err != nil {
		return nil, fmt.Errorf("decoding schedule: %w", err)
	}
	return &s, nil
}

func rowsAffected(res sql.Result) int {
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return int(n)
}

// nowUTC returns the current time truncated for stable round trips.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
