package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sessionName     = "sentrysite"
	sessionIDKey    = "sid"
	visitCountedKey = "visit_counted"
)

// SessionMaxAge is the cookie lifetime. Server-side session data idle for
// longer can be pruned.
const SessionMaxAge = 7 * 24 * time.Hour

// Sessions keeps one signed cookie per browser holding an opaque session id.
// The admin token itself lives server-side in the encrypted KV store under
// that id.
type Sessions struct {
	store  *sessions.CookieStore
	logger *slog.Logger
}

// NewSessions creates the cookie store. key signs the cookie; secure marks
// it HTTPS-only.
func NewSessions(key []byte, secure bool, logger *slog.Logger) *Sessions {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store, logger: logger}
}

// browserSession wraps one request's session.
type browserSession struct {
	s     *sessions.Session
	dirty bool
}

// load returns the request's session, starting a fresh one when the cookie is
// missing or cannot be decoded.
func (m *Sessions) load(r *http.Request) *browserSession {
	s, err := m.store.Get(r, sessionName)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			m.logger.Info("discarding undecodable session cookie", "error", err)
		} else {
			m.logger.Warn("session load failed", "error", err)
		}
		// store.Get returns a usable new session alongside the error.
		if s == nil {
			s = sessions.NewSession(m.store, sessionName)
			s.Options = m.store.Options
		}
	}

	bs := &browserSession{s: s}
	if _, ok := s.Values[sessionIDKey].(string); !ok {
		s.Values[sessionIDKey] = uuid.NewString()
		bs.dirty = true
	}
	return bs
}

func (bs *browserSession) id() string {
	id, _ := bs.s.Values[sessionIDKey].(string)
	return id
}

func (bs *browserSession) visitCounted() bool {
	counted, _ := bs.s.Values[visitCountedKey].(bool)
	return counted
}

func (bs *browserSession) markVisitCounted() {
	bs.s.Values[visitCountedKey] = true
	bs.dirty = true
}

func (bs *browserSession) addFlash(msg string) {
	bs.s.AddFlash(msg)
	bs.dirty = true
}

// flash pops the first pending flash message.
func (bs *browserSession) flash() string {
	flashes := bs.s.Flashes()
	if len(flashes) == 0 {
		return ""
	}
	bs.dirty = true
	msg, _ := flashes[0].(string)
	return msg
}

// rotate gives the session a new id, used at login and logout so a token is
// never reachable through an id issued before authentication.
func (bs *browserSession) rotate() {
	bs.s.Values[sessionIDKey] = uuid.NewString()
	bs.dirty = true
}

// save writes the cookie when anything changed. It must run before the
// response body is written.
func (bs *browserSession) save(w http.ResponseWriter, r *http.Request) error {
	if !bs.dirty {
		return nil
	}
	bs.dirty = false
	return bs.s.Save(r, w)
}
