package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Backend = (*Session)(nil)

// Session is the Client bound to one browser session's token holder.
type Session struct {
	client *Client
	tokens driven.TokenHolder
}

func (s *Session) do(ctx context.Context, req request) (json.RawMessage, error) {
	return s.client.do(ctx, s.tokens, req)
}

// Services returns the services resource.
func (s *Session) Services() driven.ResourceAPI[model.Service] {
	return &Resource[model.Service]{session: s, path: "/api/services"}
}

// Blogs returns the blogs resource.
func (s *Session) Blogs() driven.BlogAPI {
	return &Blogs{Resource: Resource[model.Blog]{session: s, path: "/api/blogs"}}
}

// Testimonials returns the testimonials resource.
func (s *Session) Testimonials() driven.TestimonialAPI {
	return &Testimonials{Resource: Resource[model.Testimonial]{session: s, path: "/api/testimonials"}}
}

// Gallery returns the gallery resource.
func (s *Session) Gallery() driven.ResourceAPI[model.GalleryImage] {
	return &Gallery{Resource: Resource[model.GalleryImage]{session: s, path: "/api/gallery"}}
}

// Login posts the credentials and, when the response carries a token, stores
// the token and user in the session's token holder. Nothing is stored on failure.
func (s *Session) Login(ctx context.Context, req model.LoginRequest) (*model.Credential, error) {
	const endpoint = "/api/auth/login"

	raw, err := s.do(ctx, request{method: http.MethodPost, endpoint: endpoint, jsonBody: req})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Token   string     `json:"token"`
		User    model.User `json:"user"`
		Message string     `json:"message"`
	}
	if err := json.Unmarshal(unwrapData(raw), &resp); err != nil {
		return nil, shapeError(endpoint, err)
	}
	if resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "login failed: the API did not return a token"
		}
		return nil, &driven.Error{Kind: driven.KindAPI, Endpoint: endpoint, Status: http.StatusOK, Message: msg}
	}
	if resp.User.Username == "" {
		resp.User.Username = req.Username
	}

	if s.tokens != nil {
		if err := s.tokens.SetToken(ctx, resp.Token); err != nil {
			return nil, err
		}
		if err := s.tokens.SetUser(ctx, resp.User); err != nil {
			return nil, err
		}
	}

	return &model.Credential{Token: resp.Token, User: resp.User}, nil
}

// Verify asks the backend to validate the current bearer token.
func (s *Session) Verify(ctx context.Context) error {
	_, err := s.do(ctx, request{method: http.MethodPost, endpoint: "/api/auth/verify"})
	return err
}

// VisitorStats fetches the site visitor counters.
func (s *Session) VisitorStats(ctx context.Context) (*model.VisitorStats, error) {
	const endpoint = "/api/visitors/stats"

	raw, err := s.do(ctx, request{method: http.MethodGet, endpoint: endpoint})
	if err != nil {
		return nil, err
	}

	var resp struct {
		TotalVisitors int64 `json:"totalVisitors"`
		TodayVisitors int64 `json:"todayVisitors"`
		Total         int64 `json:"total"`
		Today         int64 `json:"today"`
	}
	if err := json.Unmarshal(unwrapData(raw), &resp); err != nil {
		return nil, shapeError(endpoint, err)
	}

	stats := &model.VisitorStats{TotalVisitors: resp.TotalVisitors, TodayVisitors: resp.TodayVisitors}
	if stats.TotalVisitors == 0 {
		stats.TotalVisitors = resp.Total
	}
	if stats.TodayVisitors == 0 {
		stats.TodayVisitors = resp.Today
	}
	return stats, nil
}

// IncrementVisitors bumps the visitor counter by one.
func (s *Session) IncrementVisitors(ctx context.Context) error {
	_, err := s.do(ctx, request{method: http.MethodPost, endpoint: "/api/visitors/increment"})
	return err
}

// SubmitContact forwards a contact form message.
func (s *Session) SubmitContact(ctx context.Context, msg model.ContactMessage) error {
	_, err := s.do(ctx, request{method: http.MethodPost, endpoint: "/api/contact", jsonBody: msg})
	return err
}
