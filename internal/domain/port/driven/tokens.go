package driven

import (
	"context"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

// TokenHolder is the view of the token store that the API client needs:
// read the bearer token, persist a fresh login, and clear on 401.
type TokenHolder interface {
	Token(ctx context.Context) string
	SetToken(ctx context.Context, token string) error
	SetUser(ctx context.Context, user model.User) error
	ClearToken(ctx context.Context) error
}
