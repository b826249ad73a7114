package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

const loginPath = "/admin/login"

// adminHandlerFunc is an admin handler that runs after the guard passed.
type adminHandlerFunc func(w http.ResponseWriter, r *http.Request, req *request)

// requireAdmin runs the auth guard before next. Unauthenticated sessions are
// sent to the login page with a return path.
func (h *Handler) requireAdmin(next adminHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := h.begin(w, r)

		switch h.guard.Check(r.Context(), req.tokens) {
		case model.GuardAuthenticated:
			next(w, r, req)
		case model.GuardUnverified:
			h.logger.Info("auth check abandoned", "path", r.URL.Path)
			http.Error(w, "request cancelled", http.StatusServiceUnavailable)
		default:
			target := loginPath
			if r.Method == http.MethodGet {
				target += "?next=" + url.QueryEscape(r.URL.RequestURI())
			}
			h.redirect(w, r, req, target)
		}
	}
}

// sessionExpired handles an admin action error. It returns true, after
// redirecting to the login page, when the backend rejected the token.
func (h *Handler) sessionExpired(w http.ResponseWriter, r *http.Request, req *request, err error) bool {
	if !h.guard.Observe(r.Context(), req.tokens, err) {
		return false
	}
	req.session.addFlash("Your session has expired. Please sign in again.")
	h.redirect(w, r, req, loginPath)
	return true
}

// LoginForm renders the sign-in page. Signed-in users go to the dashboard.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	req := h.begin(w, r)
	if req.tokens.IsAuthenticated(r.Context()) {
		h.redirect(w, r, req, "/admin")
		return
	}
	form := vm.LoginForm{Next: safeNext(r.URL.Query().Get("next"))}
	h.render(w, r, req, http.StatusOK, vm.Page{Title: "Sign in", Admin: true}, pages.Login(form, req.csrf))
}

// Login posts the credentials to the backend. The session gets a fresh id
// first so the token is stored under an id issued after authentication.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req := h.begin(w, r)
	ctx := r.Context()

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	next := safeNext(r.PostFormValue("next"))
	form := vm.LoginForm{Username: username, Next: next}
	page := vm.Page{Title: "Sign in", Admin: true}

	if username == "" || password == "" {
		page.Error = "Username and password are required"
		h.render(w, r, req, http.StatusBadRequest, page, pages.Login(form, req.csrf))
		return
	}

	oldID := req.session.id()
	req.session.rotate()
	req.tokens = h.tokens.ForSession(req.session.id())
	h.views.forget(oldID)
	if err := h.tokens.Forget(ctx, oldID); err != nil {
		h.logger.Warn("failed to drop previous session", "error", err)
	}

	cred, err := h.api(req).Login(ctx, model.LoginRequest{Username: username, Password: password})
	if err != nil {
		h.logger.Info("login failed", "username", username, "kind", driven.KindOf(err).String())
		page.Error = driven.MessageOf(err)
		status := http.StatusUnauthorized
		if k := driven.KindOf(err); k == driven.KindConnectivity || k == driven.KindProtocol {
			status = http.StatusBadGateway
		}
		h.render(w, r, req, status, page, pages.Login(form, req.csrf))
		return
	}

	h.logger.Info("admin signed in", "username", cred.User.Username)
	req.session.addFlash("Welcome back, " + cred.User.Username + ".")
	if next == "" {
		next = "/admin"
	}
	h.redirect(w, r, req, next)
}

// Logout clears the stored token and starts a new session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	req := h.begin(w, r)
	ctx := r.Context()

	if err := req.tokens.ClearToken(ctx); err != nil {
		h.logger.Error("failed to clear token on logout", "error", err)
	}
	if err := h.tokens.Forget(ctx, req.session.id()); err != nil {
		h.logger.Warn("failed to drop session data", "error", err)
	}
	h.views.forget(req.session.id())
	req.session.rotate()
	req.session.addFlash("You have been signed out.")
	h.redirect(w, r, req, loginPath)
}

// safeNext accepts only local admin paths as a post-login target.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/admin") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}
	if strings.HasPrefix(next, loginPath) {
		return ""
	}
	return next
}
