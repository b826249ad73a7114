package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StatsStore = (*StatsRepo)(nil)

// StatsRepo is the SQLite implementation of the StatsStore port interface.
// It keeps a single row holding the latest snapshot.
type StatsRepo struct {
	db *DB
}

// NewStatsRepo creates a new StatsRepo backed by the given DB.
func NewStatsRepo(db *DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// Save replaces the cached snapshot. A zero UpdatedAt is stamped with the current time.
func (r *StatsRepo) Save(ctx context.Context, stats model.VisitorStats) error {
	updatedAt := stats.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO visitor_stats (id, total_visitors, today_visitors, updated_at) VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			total_visitors = excluded.total_visitors,
			today_visitors = excluded.today_visitors,
			updated_at = excluded.updated_at`

	_, err := r.db.Writer.ExecContext(ctx, query, stats.TotalVisitors, stats.TodayVisitors, updatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save visitor stats: %w", err)
	}
	return nil
}

// Latest returns the cached snapshot, or nil, nil if nothing has been saved yet.
func (r *StatsRepo) Latest(ctx context.Context) (*model.VisitorStats, error) {
	const query = `SELECT total_visitors, today_visitors, updated_at FROM visitor_stats WHERE id = 1`

	var stats model.VisitorStats
	var updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&stats.TotalVisitors, &stats.TodayVisitors, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load visitor stats: %w", err)
	}

	stats.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for visitor stats: %w", err)
	}

	return &stats, nil
}
