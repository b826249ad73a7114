// Package web implements the HTML driving adapter using templ components.
package web

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/sync/errgroup"

	httphandler "github.com/ericfisherdev/sentrysite/internal/adapter/driving/http"
	"github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/sentrysite/internal/application"
	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

const (
	homeBlogCount        = 3
	homeServiceCount     = 6
	homeTestimonialCount = 6
)

// Options holds the presentation settings of the web adapter.
type Options struct {
	BlogsPerPage int
	AdminPerPage int
	CookieSecure bool
	// Proxies whose forwarding headers name the client address.
	Proxies httphandler.TrustedProxies
}

// Handler is the web driving adapter that serves HTML via templ components.
type Handler struct {
	backend  driven.BackendFactory
	tokens   *application.TokenStores
	guard    *application.AuthGuard
	visitors *application.VisitorService
	contact  *application.ContactService
	sessions *Sessions
	views    *listViews
	opts     Options
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	backend driven.BackendFactory,
	tokens *application.TokenStores,
	guard *application.AuthGuard,
	visitors *application.VisitorService,
	contact *application.ContactService,
	sessions *Sessions,
	opts Options,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		backend:  backend,
		tokens:   tokens,
		guard:    guard,
		visitors: visitors,
		contact:  contact,
		sessions: sessions,
		views:    newListViews(),
		opts:     opts,
		logger:   logger,
	}
}

// request carries the per-request session state.
type request struct {
	session *browserSession
	tokens  *application.TokenStore
	csrf    string
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request) *request {
	session := h.sessions.load(r)
	return &request{
		session: session,
		tokens:  h.tokens.ForSession(session.id()),
		csrf:    csrfToken(w, r, h.opts.CookieSecure),
	}
}

// api returns the backend bound to the request's token store.
func (h *Handler) api(req *request) driven.Backend {
	return h.backend.Session(req.tokens)
}

// render writes the page inside the layout. The session is saved before any
// body bytes so cookie changes reach the browser.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, req *request, status int, page vm.Page, content templ.Component) {
	ctx := r.Context()
	page.CSRFToken = req.csrf
	if page.Flash == "" {
		page.Flash = req.session.flash()
	}
	if page.Admin {
		if user, ok := req.tokens.User(ctx); ok {
			page.Username = user.Username
		}
	}
	if stats, err := h.visitors.Stats(ctx); err == nil {
		page.Stats = toVisitorStats(stats)
	} else {
		h.logger.Warn("visitor stats unavailable", "error", err)
	}

	var buf bytes.Buffer
	if err := templates.Layout(page, content).Render(ctx, &buf); err != nil {
		h.logger.Error("failed to render page", "path", r.URL.Path, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.saveSession(w, r, req)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("failed to write page", "path", r.URL.Path, "error", err)
	}
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, req *request, target string) {
	h.saveSession(w, r, req)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, req *request) {
	if err := req.session.save(w, r); err != nil {
		h.logger.Error("failed to save session", "error", err)
	}
}

// countVisit bumps the backend counter once per browser session.
func (h *Handler) countVisit(ctx context.Context, req *request) {
	if req.session.visitCounted() {
		return
	}
	if err := h.visitors.RecordVisit(ctx, req.tokens); err != nil {
		h.logger.Warn("failed to record visit", "error", err)
		return
	}
	req.session.markVisitCounted()
}

// publicPage starts a public request: session, CSRF token and visit count.
func (h *Handler) publicPage(w http.ResponseWriter, r *http.Request) *request {
	req := h.begin(w, r)
	h.countVisit(r.Context(), req)
	return req
}

// Home renders the landing page. Sections load concurrently; a section whose
// fetch fails is rendered empty.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	req := h.publicPage(w, r)
	ctx := r.Context()
	api := h.api(req)

	var home vm.Home
	var g errgroup.Group

	g.Go(func() error {
		res, err := api.Services().List(ctx, 1, homeServiceCount)
		if err != nil {
			h.logger.Warn("home: services unavailable", "error", err)
			return nil
		}
		home.Services = toServiceCards(res.Items)
		return nil
	})

	g.Go(func() error {
		res, err := api.Blogs().List(ctx, 1, homeBlogCount)
		if err != nil {
			h.logger.Warn("home: blogs unavailable", "error", err)
			return nil
		}
		home.Blogs = toBlogCards(res.Items)
		return nil
	})

	g.Go(func() error {
		res, err := api.Testimonials().List(ctx, 1, homeTestimonialCount)
		if err != nil {
			h.logger.Warn("home: testimonials unavailable", "error", err)
			return nil
		}
		home.Testimonials = toTestimonialCards(res.Items)
		return nil
	})

	_ = g.Wait()

	h.render(w, r, req, http.StatusOK, vm.Page{
		ActiveNav:   "home",
		Description: "Licensed security guards, patrols and monitoring.",
	}, pages.Home(home))
}

// About renders the static about page.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	req := h.publicPage(w, r)
	h.render(w, r, req, http.StatusOK, vm.Page{Title: "About", ActiveNav: "about"}, pages.About())
}

// Services renders the active services.
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	req := h.publicPage(w, r)
	page := vm.Page{Title: "Services", ActiveNav: "services"}

	res, err := h.api(req).Services().List(r.Context(), 0, 0)
	if err != nil {
		h.loadFailed(w, r, req, page, err, pages.Services(nil))
		return
	}
	h.render(w, r, req, http.StatusOK, page, pages.Services(toServiceCards(res.Items)))
}

// ServiceDetail renders one service by ID.
func (h *Handler) ServiceDetail(w http.ResponseWriter, r *http.Request) {
	req := h.publicPage(w, r)
	page := vm.Page{Title: "Services", ActiveNav: "services"}

	svc, err := h.api(req).Services().Get(r.Context(), r.PathValue("id"))
	if err != nil || svc == nil || !svc.IsActive {
		if err != nil && !isNotFound(err) {
			h.loadFailed(w, r, req, page, err, templ.NopComponent)
			return
		}
		h.render(w, r, req, http.StatusNotFound, page, pages.NotFound("service"))
		return
	}

	page.Title = svc.Title
	h.render(w, r, req, http.StatusOK, page, pages.ServiceDetail(toServiceDetail(*svc)))
}

// Blogs renders one page of the blog index. A page past the end redirects to
// the last page; a failed load keeps showing the last page that loaded.
func (h *Handler) Blogs(w http.ResponseWriter, r *http.Request) {
	req := h.publicPage(w, r)
	page := vm.Page{Title: "Blog", ActiveNav: "blogs"}
	query := r.URL.Query()
	pageNum := pageParam(query)

	view, release := viewFor(h.views, req.session.id(), model.ResourceBlogs, func() *application.Controller[model.Blog] {
		return application.NewController[model.Blog](model.ResourceBlogs, h.api(req).Blogs(), h.opts.BlogsPerPage, h.logger)
	})
	defer release()
	ctrl := view.Controller()

	err := view.Open(r.Context(), pageNum)
	if err == nil && view.PastEnd(pageNum) {
		h.redirect(w, r, req, pageURL("/blogs", query, ctrl.Page().TotalPages))
		return
	}

	list := vm.BlogList{
		Posts: toBlogCards(ctrl.Items()),
		Pager: buildPager("/blogs", query, ctrl.Page(), view.Window()),
	}
	if err != nil {
		h.loadFailed(w, r, req, page, err, pages.Blogs(list))
		return
	}
	h.render(w, r, req, http.StatusOK, page, pages.Blogs(list))
}

// BlogPost renders a published post by slug.
func (h *Handler) BlogPost(w http.ResponseWriter, r *http.Request) {
	req := h.publicPage(w, r)
	page := vm.Page{Title: "Blog", ActiveNav: "blogs"}

	post, err := h.api(req).Blogs().BySlug(r.Context(), r.PathValue("slug"))
	if err != nil || post == nil {
		if err != nil && !isNotFound(err) {
			h.loadFailed(w, r, req, page, err, templ.NopComponent)
			return
		}
		h.render(w, r, req, http.StatusNotFound, page, pages.NotFound("post"))
		return
	}

	page.Title = post.Title
	page.Description = toBlogCard(*post).Excerpt
	h.render(w, r, req, http.StatusOK, page, pages.BlogPost(toBlogPost(*post)))
}

// Gallery renders the gallery, optionally filtered by ?category=.
func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	req := h.publicPage(w, r)
	page := vm.Page{Title: "Gallery", ActiveNav: "gallery"}
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	res, err := h.api(req).Gallery().List(r.Context(), 0, 0)
	if err != nil {
		h.loadFailed(w, r, req, page, err, pages.Gallery(vm.Gallery{Active: category}))
		return
	}
	h.render(w, r, req, http.StatusOK, page, pages.Gallery(toGallery(res.Items, category)))
}

// ContactForm renders the empty contact form.
func (h *Handler) ContactForm(w http.ResponseWriter, r *http.Request) {
	req := h.publicPage(w, r)
	form := vm.ContactForm{Values: map[string]string{}, Errors: map[string]string{}}
	form.Sent = r.URL.Query().Get("sent") == "1"
	h.render(w, r, req, http.StatusOK, vm.Page{Title: "Contact", ActiveNav: "contact"}, pages.Contact(form, req.csrf))
}

// SubmitContact handles the contact form post. On success it redirects to
// the thank-you state; on failure the form is shown again with the message.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	req := h.begin(w, r)
	msg := model.ContactMessage{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}

	err := h.contact.Submit(r.Context(), msg, r.PostFormValue("g-recaptcha-response"), h.opts.Proxies.ClientIP(r))
	if err == nil {
		h.redirect(w, r, req, "/contact?sent=1")
		return
	}

	form := vm.ContactForm{
		Values: map[string]string{
			"name": msg.Name, "email": msg.Email, "phone": msg.Phone,
			"subject": msg.Subject, "message": msg.Message,
		},
		Errors: map[string]string{},
	}
	page := vm.Page{Title: "Contact", ActiveNav: "contact"}
	status := http.StatusBadGateway

	var apiErr *driven.Error
	switch {
	case errors.Is(err, driven.ErrCaptchaFailed):
		page.Error = "Captcha verification failed. Please try again."
		status = http.StatusBadRequest
	case errors.As(err, &apiErr) && apiErr.Kind == driven.KindValidation:
		for k, v := range apiErr.Fields {
			form.Errors[k] = v
		}
		page.Error = apiErr.Message
		status = http.StatusBadRequest
	default:
		h.logger.Warn("contact submission failed", "error", err)
		page.Error = driven.MessageOf(err)
	}
	h.render(w, r, req, status, page, pages.Contact(form, req.csrf))
}

// NotFound renders the 404 page for unmatched paths.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	req := h.begin(w, r)
	h.render(w, r, req, http.StatusNotFound, vm.Page{Title: "Not found"}, pages.NotFound("page"))
}

// loadFailed renders content with the error message inline, with a link that
// repeats the request when repeating it may help.
func (h *Handler) loadFailed(w http.ResponseWriter, r *http.Request, req *request, page vm.Page, err error, content templ.Component) {
	h.logger.Warn("page data unavailable", "path", r.URL.Path, "kind", driven.KindOf(err).String(), "error", err)
	page.Error = driven.MessageOf(err)
	if driven.IsRetryable(err) {
		page.RetryURL = r.URL.RequestURI()
	}
	status := http.StatusBadGateway
	if driven.KindOf(err) == driven.KindConnectivity {
		status = http.StatusServiceUnavailable
	}
	h.render(w, r, req, status, page, content)
}

func isNotFound(err error) bool {
	var apiErr *driven.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
