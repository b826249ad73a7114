// Package recaptcha verifies contact form captcha tokens against Google's siteverify API.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CaptchaVerifier = (*Verifier)(nil)

// DefaultEndpoint is Google's verification URL.
const DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// Verifier checks reCAPTCHA response tokens. A Verifier with an empty secret
// accepts every token so local development works without keys.
type Verifier struct {
	secret   string
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

// NewVerifier creates a Verifier for secret. endpoint may be empty to use DefaultEndpoint.
func NewVerifier(secret, endpoint string, timeout time.Duration, logger *slog.Logger) *Verifier {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		secret:   secret,
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v.secret != ""
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify posts the token to siteverify. It returns driven.ErrCaptchaFailed when
// Google rejects the token and a wrapped error when Google cannot be reached.
func (v *Verifier) Verify(ctx context.Context, responseToken, remoteIP string) error {
	if !v.Enabled() {
		return nil
	}
	if strings.TrimSpace(responseToken) == "" {
		return fmt.Errorf("%w: missing token", driven.ErrCaptchaFailed)
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", responseToken)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build siteverify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("siteverify returned status %d", resp.StatusCode)
	}

	var body siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return fmt.Errorf("decode siteverify response: %w", err)
	}

	if !body.Success {
		v.logger.Info("captcha rejected", "error_codes", body.ErrorCodes)
		return fmt.Errorf("%w: %s", driven.ErrCaptchaFailed, strings.Join(body.ErrorCodes, ", "))
	}
	return nil
}
