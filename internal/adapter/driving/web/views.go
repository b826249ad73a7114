package web

import (
	"sync"
	"time"

	"github.com/ericfisherdev/sentrysite/internal/application"
	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

// viewKey identifies one browser session's list of one resource.
type viewKey struct {
	sid  string
	kind model.ResourceKind
}

// maxViews bounds the cache; visitors without a cookie get a new session on
// every request.
const maxViews = 10000

type viewEntry struct {
	// mu serialises requests of one session on one list.
	mu       sync.Mutex
	view     any
	lastUsed time.Time
}

// listViews keeps a list view per browser session and resource, so a reload
// that fails still shows the last page that loaded.
type listViews struct {
	mu      sync.Mutex
	entries map[viewKey]*viewEntry
	now     func() time.Time
}

func newListViews() *listViews {
	return &listViews{entries: make(map[viewKey]*viewEntry), now: time.Now}
}

// viewFor returns the session's view of kind, creating it around newCtrl()
// on first use. The view is held until release is called.
func viewFor[T any](v *listViews, sid string, kind model.ResourceKind, newCtrl func() *application.Controller[T]) (view *application.ListView[T], release func()) {
	entry, view := lookupView(v, sid, kind, newCtrl)
	entry.mu.Lock()
	return view, entry.mu.Unlock
}

func lookupView[T any](v *listViews, sid string, kind model.ResourceKind, newCtrl func() *application.Controller[T]) (*viewEntry, *application.ListView[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key := viewKey{sid: sid, kind: kind}
	if entry, ok := v.entries[key]; ok {
		if view, ok := entry.view.(*application.ListView[T]); ok {
			entry.lastUsed = v.now()
			return entry, view
		}
	}

	if len(v.entries) >= maxViews {
		v.evictOldestLocked()
	}
	view := application.NewListView(newCtrl())
	entry := &viewEntry{view: view, lastUsed: v.now()}
	v.entries[key] = entry
	return entry, view
}

func (v *listViews) evictOldestLocked() {
	var oldest viewKey
	var oldestAt time.Time
	first := true
	for key, entry := range v.entries {
		if first || entry.lastUsed.Before(oldestAt) {
			oldest, oldestAt, first = key, entry.lastUsed, false
		}
	}
	delete(v.entries, oldest)
}

// forget drops every view of the session.
func (v *listViews) forget(sid string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for key := range v.entries {
		if key.sid == sid {
			delete(v.entries, key)
		}
	}
}

// sweep drops views unused for longer than idle and returns how many went.
func (v *listViews) sweep(idle time.Duration) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	cutoff := v.now().Add(-idle)
	removed := 0
	for key, entry := range v.entries {
		if entry.lastUsed.Before(cutoff) {
			delete(v.entries, key)
			removed++
		}
	}
	return removed
}

// SweepViews drops cached list views of sessions idle for longer than idle.
func (h *Handler) SweepViews(idle time.Duration) {
	if n := h.views.sweep(idle); n > 0 {
		h.logger.Debug("swept idle list views", "count", n)
	}
}
