package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// AuthGuard decides whether an admin page may render for the current session.
type AuthGuard struct {
	backend driven.BackendFactory
	verify  bool
	now     func() time.Time
	logger  *slog.Logger
}

// NewAuthGuard creates a guard. When verify is true every check also asks the
// backend to validate the token.
func NewAuthGuard(backend driven.BackendFactory, verify bool, logger *slog.Logger) *AuthGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthGuard{backend: backend, verify: verify, now: time.Now, logger: logger}
}

// Check resolves the guard state for tokens. Any failure clears the stored
// token, so a rejected session never reaches an admin page.
func (g *AuthGuard) Check(ctx context.Context, tokens driven.TokenHolder) model.GuardState {
	token := tokens.Token(ctx)
	if token == "" {
		return model.GuardUnauthenticated
	}

	if g.expired(token) {
		g.logger.Info("stored token expired, clearing")
		g.clear(ctx, tokens)
		return model.GuardUnauthenticated
	}

	if !g.verify {
		return model.GuardAuthenticated
	}

	if err := g.backend.Session(tokens).Verify(ctx); err != nil {
		if ctx.Err() != nil {
			return model.GuardUnverified
		}
		g.logger.Info("token verification failed", "kind", driven.KindOf(err).String(), "error", err)
		g.clear(ctx, tokens)
		return model.GuardUnauthenticated
	}
	return model.GuardAuthenticated
}

// Observe inspects the error of an admin action. It returns true when the
// error means the session is no longer authenticated and the caller must send
// the user to the login page. The token is cleared again in that case; the
// API client has usually done so already.
func (g *AuthGuard) Observe(ctx context.Context, tokens driven.TokenHolder, err error) bool {
	if !errors.Is(err, driven.ErrAuthentication) {
		return false
	}
	g.clear(ctx, tokens)
	return true
}

// expired reports whether token is a JWT whose exp claim lies in the past.
// Opaque tokens are never considered expired locally.
func (g *AuthGuard) expired(token string) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(g.now())
}

func (g *AuthGuard) clear(ctx context.Context, tokens driven.TokenHolder) {
	if err := tokens.ClearToken(ctx); err != nil {
		g.logger.Error("failed to clear token", "error", err)
	}
}
