package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Controller runs the admin CRUD workflow for one resource. It caches the
// last loaded page and the last error message; the backend stays authoritative
// and callers re-fetch after every write.
type Controller[T any] struct {
	mu       sync.Mutex
	kind     model.ResourceKind
	api      driven.ResourceAPI[T]
	validate Validator
	perPage  int
	logger   *slog.Logger

	items  []T
	page   model.PageDescriptor
	loaded bool
	errMsg string
}

// NewController creates a controller for kind backed by api. perPage <= 0
// leaves the page size to the backend.
func NewController[T any](kind model.ResourceKind, api driven.ResourceAPI[T], perPage int, logger *slog.Logger) *Controller[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		kind:     kind,
		api:      api,
		validate: ValidatorFor(kind),
		perPage:  perPage,
		logger:   logger,
		items:    []T{},
		page:     model.SinglePage(0),
	}
}

// List fetches page and replaces the cached items and page state. On failure
// the previous items and page are kept and the error message is recorded.
func (c *Controller[T]) List(ctx context.Context, page int) error {
	result, err := c.api.List(ctx, page, c.perPage)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.errMsg = driven.MessageOf(err)
		c.logger.Warn("list failed", "resource", string(c.kind), "page", page, "error", err)
		return err
	}

	c.items = result.Items
	if c.items == nil {
		c.items = []T{}
	}
	c.page = result.Page
	c.loaded = true
	c.errMsg = ""
	return nil
}

// Get fetches one record for editing.
func (c *Controller[T]) Get(ctx context.Context, id string) (*T, error) {
	item, err := c.api.Get(ctx, id)
	if err != nil {
		c.setError(err)
		return nil, err
	}
	return item, nil
}

// Create validates draft and posts it. The draft is never modified.
func (c *Controller[T]) Create(ctx context.Context, draft model.Draft) (*T, error) {
	if err := c.validate(draft, true); err != nil {
		c.setError(err)
		return nil, err
	}
	item, err := c.api.Create(ctx, draft)
	if err != nil {
		c.setError(err)
		return nil, err
	}
	c.clearError()
	c.logger.Info("record created", "resource", string(c.kind))
	return item, nil
}

// Update validates draft and replaces the record with the given ID.
func (c *Controller[T]) Update(ctx context.Context, id string, draft model.Draft) (*T, error) {
	if err := c.validate(draft, false); err != nil {
		c.setError(err)
		return nil, err
	}
	item, err := c.api.Update(ctx, id, draft)
	if err != nil {
		c.setError(err)
		return nil, err
	}
	c.clearError()
	c.logger.Info("record updated", "resource", string(c.kind), "id", id)
	return item, nil
}

// Remove deletes the record. Confirmation happens in the UI before this is
// called. The cached page is left as is; callers re-fetch.
func (c *Controller[T]) Remove(ctx context.Context, id string) error {
	if err := c.api.Delete(ctx, id); err != nil {
		c.setError(err)
		return err
	}
	c.clearError()
	c.logger.Info("record deleted", "resource", string(c.kind), "id", id)
	return nil
}

// Items returns the cached items of the last successful List.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Page returns the page descriptor of the last successful List.
func (c *Controller[T]) Page() model.PageDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Loaded reports whether any List has succeeded.
func (c *Controller[T]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// ErrorMessage returns the message of the last failed operation, or "".
func (c *Controller[T]) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Controller[T]) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = driven.MessageOf(err)
}

func (c *Controller[T]) clearError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = ""
}
