package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Storage keys for the admin credential inside a session namespace.
const (
	KeyAdminToken = "adminToken"
	KeyAdminUser  = "adminUser"
)

// Compile-time interface satisfaction check.
var _ driven.TokenHolder = (*TokenStore)(nil)

// TokenStores hands out TokenStore instances bound to a browser session.
type TokenStores struct {
	kv     driven.KVStore
	logger *slog.Logger
}

// NewTokenStores creates a factory backed by kv.
func NewTokenStores(kv driven.KVStore, logger *slog.Logger) *TokenStores {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStores{kv: kv, logger: logger}
}

// ForSession returns a TokenStore for the session with the given ID. The
// in-memory copy lives as long as the returned value; persistent state is
// shared by every store for the same session.
func (f *TokenStores) ForSession(sessionID string) *TokenStore {
	return &TokenStore{kv: f.kv, namespace: sessionID, logger: f.logger}
}

// Forget removes everything stored for the session.
func (f *TokenStores) Forget(ctx context.Context, sessionID string) error {
	return f.kv.DeleteNamespace(ctx, sessionID)
}

// TokenStore holds the admin bearer token and display user for one session.
// Writes go to the KV store synchronously; reads are served from memory after
// the first lazy load.
type TokenStore struct {
	mu        sync.RWMutex
	kv        driven.KVStore
	namespace string
	logger    *slog.Logger

	loaded bool
	token  string
	user   *model.User
}

// Token returns the current bearer token or "" when none is stored.
// A storage read failure is logged and treated as no token.
func (s *TokenStore) Token(ctx context.Context) string {
	s.mu.RLock()
	if s.loaded {
		defer s.mu.RUnlock()
		return s.token
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		s.logger.Error("failed to read stored token", "session", s.namespace, "error", err)
		return ""
	}
	return s.token
}

// SetToken stores token. An empty token clears the credential.
func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return s.ClearToken(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, s.namespace, KeyAdminToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	s.token = token
	s.loaded = true
	return nil
}

// ClearToken removes both the token and the user.
func (s *TokenStore) ClearToken(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, s.namespace, KeyAdminToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := s.kv.Delete(ctx, s.namespace, KeyAdminUser); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	s.token = ""
	s.user = nil
	s.loaded = true
	return nil
}

// IsAuthenticated reports whether a token is present. It does not validate it.
func (s *TokenStore) IsAuthenticated(ctx context.Context) bool {
	return s.Token(ctx) != ""
}

// SetUser stores the display user as JSON.
func (s *TokenStore) SetUser(ctx context.Context, user model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, s.namespace, KeyAdminUser, string(data)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	s.user = &user
	return nil
}

// User returns the stored display user, if any.
func (s *TokenStore) User(ctx context.Context) (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		s.logger.Error("failed to read stored user", "session", s.namespace, "error", err)
		return model.User{}, false
	}
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// loadLocked reads token and user from storage once. Caller holds mu.
func (s *TokenStore) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	token, err := s.kv.Get(ctx, s.namespace, KeyAdminToken)
	if err != nil {
		return err
	}

	raw, err := s.kv.Get(ctx, s.namespace, KeyAdminUser)
	if err != nil {
		return err
	}
	var user *model.User
	if raw != "" {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.logger.Warn("discarding unreadable stored user", "session", s.namespace, "error", err)
		} else {
			user = &u
		}
	}

	s.token = token
	s.user = user
	s.loaded = true
	return nil
}
