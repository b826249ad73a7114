package driven

import (
	"context"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

// StatsStore caches the last visitor statistics fetched from the backend.
type StatsStore interface {
	// Save replaces the cached snapshot.
	Save(ctx context.Context, stats model.VisitorStats) error
	// Latest returns the cached snapshot, or nil if none has been saved.
	Latest(ctx context.Context) (*model.VisitorStats, error)
}
