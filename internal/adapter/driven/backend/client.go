// Package backend implements the driven Backend port against the company's REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.BackendFactory = (*Client)(nil)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// connectivityHint is appended to connectivity errors so the operator can
// work through the usual causes.
const connectivityHint = "check that the API server is running, the URL is correct, " +
	"no firewall is blocking the connection, and CORS allows this origin"

// Client is the shared backend API client. It holds no per-user state; bind it
// to a browser session's token holder with Session.
type Client struct {
	baseURL string
	http    *http.Client // Authenticated and mutating requests.
	cached  *http.Client // Anonymous GETs, behind an ETag-aware cache.
	metrics *Metrics
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records every request outcome on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces both transports with httpClient. Intended for tests
// that need to disable caching or inject an httptest client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
		c.cached = httpClient
	}
}

// NewClient creates a Client for the API at baseURL with the following transport stack:
//  1. httpcache (ETag-based conditional request caching) for anonymous GETs
//  2. net/http default transport for everything carrying a bearer token
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		cached:  &http.Client{Transport: cacheTransport, Timeout: timeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Session binds the client to one browser session's token holder. tokens may
// be nil for purely anonymous use.
func (c *Client) Session(tokens driven.TokenHolder) driven.Backend {
	return &Session{client: c, tokens: tokens}
}

// request describes one backend call.
type request struct {
	method      string
	endpoint    string
	query       url.Values
	jsonBody    any
	body        io.Reader
	contentType string
}

// do issues the request and returns the raw JSON body on success. Every
// failure is returned as a *driven.Error of the matching kind.
func (c *Client) do(ctx context.Context, tokens driven.TokenHolder, req request) (json.RawMessage, error) {
	raw, err := c.send(ctx, tokens, req)
	c.metrics.observe(req.method, req.endpoint, err)
	return raw, err
}

func (c *Client) send(ctx context.Context, tokens driven.TokenHolder, req request) (json.RawMessage, error) {
	target := c.baseURL + req.endpoint
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	body := req.body
	contentType := req.contentType
	if req.jsonBody != nil {
		encoded, err := json.Marshal(req.jsonBody)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", req.endpoint, err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", req.endpoint, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	var token string
	if tokens != nil {
		token = tokens.Token(ctx)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpClient := c.http
	if token == "" && req.method == http.MethodGet {
		httpClient = c.cached
	}

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &driven.Error{
			Kind:     driven.KindConnectivity,
			Endpoint: req.endpoint,
			Message:  fmt.Sprintf("unable to connect to the API at %s: %s", c.baseURL, connectivityHint),
			Err:      err,
		}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &driven.Error{
			Kind:     driven.KindConnectivity,
			Endpoint: req.endpoint,
			Status:   resp.StatusCode,
			Message:  fmt.Sprintf("connection to %s dropped while reading the response", c.baseURL),
			Err:      err,
		}
	}

	c.logger.Debug("backend call",
		"method", req.method,
		"endpoint", req.endpoint,
		"status", resp.StatusCode,
		"authenticated", token != "",
	)

	isJSON := isJSONContentType(resp.Header.Get("Content-Type")) && json.Valid(data)

	if resp.StatusCode == http.StatusUnauthorized {
		if tokens != nil {
			if clearErr := tokens.ClearToken(ctx); clearErr != nil {
				c.logger.Error("failed to clear token after 401", "endpoint", req.endpoint, "error", clearErr)
			}
		}
		msg := "your session has expired, please log in again"
		if isJSON {
			if serverMsg := errorMessage(data); serverMsg != "" {
				msg = serverMsg
			}
		}
		return nil, &driven.Error{
			Kind:     driven.KindAuthentication,
			Endpoint: req.endpoint,
			Status:   resp.StatusCode,
			Message:  msg,
		}
	}

	if resp.StatusCode == http.StatusNoContent || (len(bytes.TrimSpace(data)) == 0 && resp.StatusCode < 300) {
		return nil, nil
	}

	if !isJSON {
		return nil, &driven.Error{
			Kind:     driven.KindProtocol,
			Endpoint: req.endpoint,
			Status:   resp.StatusCode,
			Message: fmt.Sprintf("the API returned a non-JSON response for %s (status %d); the endpoint may be misconfigured",
				req.endpoint, resp.StatusCode),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(data)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &driven.Error{
			Kind:     driven.KindAPI,
			Endpoint: req.endpoint,
			Status:   resp.StatusCode,
			Message:  msg,
		}
	}

	return json.RawMessage(data), nil
}

// isJSONContentType reports whether the Content-Type header names a JSON media type.
func isJSONContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// errorMessage extracts the server-provided message from a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   any    `json:"error"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	switch {
	case body.Message != "":
		return body.Message
	case body.Msg != "":
		return body.Msg
	}
	if s, ok := body.Error.(string); ok {
		return s
	}
	return ""
}
