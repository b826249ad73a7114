package application_test

import (
	"context"
	"errors"
	"sync"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// --- Mock implementations ---

type memKV struct {
	mu      sync.Mutex
	data    map[string]string
	failGet bool
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Set(_ context.Context, ns, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[ns+"/"+key] = value
	return nil
}

func (m *memKV) Get(_ context.Context, ns, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", errors.New("disk on fire")
	}
	return m.data[ns+"/"+key], nil
}

func (m *memKV) Delete(_ context.Context, ns, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, ns+"/"+key)
	return nil
}

func (m *memKV) DeleteNamespace(_ context.Context, ns string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if len(k) > len(ns) && k[:len(ns)+1] == ns+"/" {
			delete(m.data, k)
		}
	}
	return nil
}

// mockResource is a scripted driven.ResourceAPI.
type mockResource[T any] struct {
	list      func(page, limit int) (model.ListResult[T], error)
	listCalls []int
	created   []model.Draft
	updated   map[string]model.Draft
	deleted   []string
	writeErr  error
	deleteErr error
	item      *T
}

func (m *mockResource[T]) List(_ context.Context, page, limit int) (model.ListResult[T], error) {
	m.listCalls = append(m.listCalls, page)
	return m.list(page, limit)
}

func (m *mockResource[T]) Get(_ context.Context, _ string) (*T, error) {
	if m.item == nil {
		return nil, &driven.Error{Kind: driven.KindAPI, Status: 404, Message: "Not found"}
	}
	return m.item, nil
}

func (m *mockResource[T]) Create(_ context.Context, draft model.Draft) (*T, error) {
	m.created = append(m.created, draft)
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return m.item, nil
}

func (m *mockResource[T]) Update(_ context.Context, id string, draft model.Draft) (*T, error) {
	if m.updated == nil {
		m.updated = map[string]model.Draft{}
	}
	m.updated[id] = draft
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	return m.item, nil
}

func (m *mockResource[T]) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}

// mockBackend implements driven.Backend and driven.BackendFactory.
type mockBackend struct {
	mu         sync.Mutex
	verifyErr  error
	verifies   int
	stats      *model.VisitorStats
	statsErr   error
	statsCalls int
	increments int
	contacts   []model.ContactMessage
	contactErr error
	sessions   []driven.TokenHolder
}

func (m *mockBackend) Session(tokens driven.TokenHolder) driven.Backend {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, tokens)
	return m
}

func (m *mockBackend) Login(_ context.Context, _ model.LoginRequest) (*model.Credential, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBackend) Verify(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifies++
	return m.verifyErr
}

func (m *mockBackend) VisitorStats(_ context.Context) (*model.VisitorStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsCalls++
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	s := *m.stats
	return &s, nil
}

func (m *mockBackend) IncrementVisitors(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments++
	return nil
}

func (m *mockBackend) SubmitContact(_ context.Context, msg model.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, msg)
	return m.contactErr
}

func (m *mockBackend) Services() driven.ResourceAPI[model.Service]      { return nil }
func (m *mockBackend) Blogs() driven.BlogAPI                            { return nil }
func (m *mockBackend) Testimonials() driven.TestimonialAPI              { return nil }
func (m *mockBackend) Gallery() driven.ResourceAPI[model.GalleryImage] { return nil }

func (m *mockBackend) statsCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statsCalls
}

// memStats is an in-memory driven.StatsStore.
type memStats struct {
	mu     sync.Mutex
	latest *model.VisitorStats
	saves  int
}

func (m *memStats) Save(_ context.Context, stats model.VisitorStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest = &stats
	m.saves++
	return nil
}

func (m *memStats) Latest(_ context.Context) (*model.VisitorStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return nil, nil
	}
	s := *m.latest
	return &s, nil
}

// mockCaptcha records Verify calls.
type mockCaptcha struct {
	err   error
	calls int
}

func (m *mockCaptcha) Verify(_ context.Context, _, _ string) error {
	m.calls++
	return m.err
}
