package driven

import (
	"context"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

// ResourceAPI is the backend CRUD surface for one resource type.
type ResourceAPI[T any] interface {
	List(ctx context.Context, page, limit int) (model.ListResult[T], error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, draft model.Draft) (*T, error)
	Update(ctx context.Context, id string, draft model.Draft) (*T, error)
	Delete(ctx context.Context, id string) error
}

// AuthAPI logs in and verifies bearer tokens.
type AuthAPI interface {
	// Login posts the credentials. On success the token and user are
	// forwarded to the session's token holder; on failure nothing is stored.
	Login(ctx context.Context, req model.LoginRequest) (*model.Credential, error)
	// Verify asks the backend whether the current token is still valid.
	Verify(ctx context.Context) error
}

// VisitorAPI reads and bumps the site visitor counter.
type VisitorAPI interface {
	VisitorStats(ctx context.Context) (*model.VisitorStats, error)
	IncrementVisitors(ctx context.Context) error
}

// ContactAPI forwards contact form submissions.
type ContactAPI interface {
	SubmitContact(ctx context.Context, msg model.ContactMessage) error
}

// BlogAPI adds the blog-only read endpoints.
type BlogAPI interface {
	ResourceAPI[model.Blog]
	BySlug(ctx context.Context, slug string) (*model.Blog, error)
	All(ctx context.Context) ([]model.Blog, error)
}

// TestimonialAPI adds the publish toggle.
type TestimonialAPI interface {
	ResourceAPI[model.Testimonial]
	Toggle(ctx context.Context, id string) error
}

// Backend is the per-session view of the whole REST API.
type Backend interface {
	AuthAPI
	VisitorAPI
	ContactAPI
	Services() ResourceAPI[model.Service]
	Blogs() BlogAPI
	Testimonials() TestimonialAPI
	Gallery() ResourceAPI[model.GalleryImage]
}

// BackendFactory binds the shared API client to one session's token holder.
type BackendFactory interface {
	Session(tokens TokenHolder) Backend
}
