// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// VisitorService keeps a local copy of the site visitor counters fresh and
// bumps the counter for new browser sessions.
type VisitorService struct {
	backend   driven.BackendFactory
	store     driven.StatsStore
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
	refreshCh chan chan error
}

// NewVisitorService creates a VisitorService polling every interval.
func NewVisitorService(backend driven.BackendFactory, store driven.StatsStore, interval time.Duration, logger *slog.Logger) *VisitorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VisitorService{
		backend:   backend,
		store:     store,
		interval:  interval,
		now:       time.Now,
		logger:    logger,
		refreshCh: make(chan chan error),
	}
}

// Start fetches the stats immediately, then on every interval, and serves
// manual refresh requests. Start blocks until ctx is canceled.
func (s *VisitorService) Start(ctx context.Context) {
	if err := s.poll(ctx); err != nil {
		s.logger.Error("initial visitor stats fetch failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("visitor service stopped")
			return
		case <-ticker.C:
			if err := s.poll(ctx); err != nil {
				s.logger.Error("visitor stats fetch failed", "error", err)
			}
		case done := <-s.refreshCh:
			done <- s.poll(ctx)
		}
	}
}

// Refresh asks the running loop to fetch the stats now. It blocks until the
// fetch completes or ctx is canceled.
func (s *VisitorService) Refresh(ctx context.Context) error {
	done := make(chan error, 1)

	select {
	case s.refreshCh <- done:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the cached snapshot, or a zero snapshot if nothing has been
// fetched yet.
func (s *VisitorService) Stats(ctx context.Context) (model.VisitorStats, error) {
	stats, err := s.store.Latest(ctx)
	if err != nil {
		return model.VisitorStats{}, fmt.Errorf("read cached visitor stats: %w", err)
	}
	if stats == nil {
		return model.VisitorStats{}, nil
	}
	return *stats, nil
}

// RecordVisit increments the backend visitor counter. The web adapter calls
// it once per browser session.
func (s *VisitorService) RecordVisit(ctx context.Context, tokens driven.TokenHolder) error {
	if err := s.backend.Session(tokens).IncrementVisitors(ctx); err != nil {
		return fmt.Errorf("increment visitors: %w", err)
	}
	return nil
}

func (s *VisitorService) poll(ctx context.Context) error {
	start := time.Now()

	stats, err := s.backend.Session(nil).VisitorStats(ctx)
	if err != nil {
		return err
	}
	stats.UpdatedAt = s.now().UTC()

	if err := s.store.Save(ctx, *stats); err != nil {
		return fmt.Errorf("cache visitor stats: %w", err)
	}

	s.logger.Debug("visitor stats refreshed",
		"total", stats.TotalVisitors,
		"today", stats.TodayVisitors,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
