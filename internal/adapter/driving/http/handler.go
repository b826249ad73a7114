package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

// StatsSource serves the cached visitor counters.
type StatsSource interface {
	Stats(ctx context.Context) (model.VisitorStats, error)
}

// ContactSubmitter validates and forwards contact messages.
type ContactSubmitter interface {
	Submit(ctx context.Context, msg model.ContactMessage, captchaToken, remoteIP string) error
}

// Handler is the HTTP driving adapter that serves the JSON endpoints.
type Handler struct {
	stats    StatsSource
	contact  ContactSubmitter
	limiter  *RateLimiter
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	stats StatsSource,
	contact ContactSubmitter,
	limiter *RateLimiter,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		stats:    stats,
		contact:  contact,
		limiter:  limiter,
		gatherer: gatherer,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers the JSON API and metrics routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/visitors/stats", h.VisitorStats)
	mux.HandleFunc("POST /api/contact", h.limiter.Wrap(h.SubmitContact))
	mux.Handle("GET /metrics", promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// Health reports that the process is serving.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// VisitorStats returns the cached visitor counters.
func (h *Handler) VisitorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Stats(r.Context())
	if err != nil {
		h.logger.Error("failed to read visitor stats", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toVisitorStatsResponse(stats))
}

// SubmitContact accepts a contact message as JSON or as a url-encoded form.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	req, err := decodeContact(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.contact.Submit(r.Context(), req.toModel(), req.RecaptchaToken, h.limiter.ClientIP(r))
	if err != nil {
		status, body := contactErrorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("contact submission failed", "error", err)
		}
		writeJSON(w, status, body)
		return
	}

	writeJSON(w, http.StatusOK, ContactResponse{Success: true, Message: "Thank you, your message has been sent."})
}

func decodeContact(r *http.Request) (ContactRequest, error) {
	var req ContactRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 64<<10)).Decode(&req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req = ContactRequest{
		Name:           r.PostForm.Get("name"),
		Email:          r.PostForm.Get("email"),
		Phone:          r.PostForm.Get("phone"),
		Subject:        r.PostForm.Get("subject"),
		Message:        r.PostForm.Get("message"),
		RecaptchaToken: r.PostForm.Get("g-recaptcha-response"),
	}
	return req, nil
}

// contactErrorResponse maps a submission error to an HTTP status by kind.
func contactErrorResponse(err error) (int, errorResponse) {
	if errors.Is(err, driven.ErrCaptchaFailed) {
		return http.StatusBadRequest, errorResponse{Error: "captcha verification failed, please try again"}
	}

	var e *driven.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
	}

	switch e.Kind {
	case driven.KindValidation:
		return http.StatusBadRequest, errorResponse{Error: e.Message, Fields: e.Fields}
	case driven.KindAPI:
		if e.Status >= 400 && e.Status < 500 {
			return e.Status, errorResponse{Error: e.Message}
		}
		return http.StatusBadGateway, errorResponse{Error: e.Message}
	case driven.KindConnectivity:
		return http.StatusServiceUnavailable, errorResponse{Error: "the message service is unreachable, please try again later"}
	default:
		return http.StatusBadGateway, errorResponse{Error: "the message service returned an unexpected response"}
	}
}
