package web

import (
	"io/fs"
	"net/http"

	httphandler "github.com/ericfisherdev/sentrysite/internal/adapter/driving/http"
)

// RegisterRoutes registers the public site and the admin panel on mux.
// Static assets are served from the embedded filesystem at /static/*.
// Contact and login posts go through limiter.
func RegisterRoutes(mux *http.ServeMux, h *Handler, limiter *httphandler.RateLimiter) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Public pages.
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /about", h.About)
	mux.HandleFunc("GET /services", h.Services)
	mux.HandleFunc("GET /services/{id}", h.ServiceDetail)
	mux.HandleFunc("GET /blogs", h.Blogs)
	mux.HandleFunc("GET /blogs/{slug}", h.BlogPost)
	mux.HandleFunc("GET /gallery", h.Gallery)
	mux.HandleFunc("GET /contact", h.ContactForm)
	mux.HandleFunc("POST /contact", limiter.Wrap(protect(h.SubmitContact)))

	// Admin.
	mux.HandleFunc("GET /admin/login", h.LoginForm)
	mux.HandleFunc("POST /admin/login", limiter.Wrap(protect(h.Login)))
	mux.HandleFunc("POST /admin/logout", protect(h.Logout))
	mux.HandleFunc("GET /admin", h.requireAdmin(h.Dashboard))
	mux.HandleFunc("POST "+statsRefreshPath, protect(h.requireAdmin(h.RefreshStats)))

	registerAdmin(mux, h, serviceAdmin)
	registerAdmin(mux, h, blogAdmin)
	registerAdmin(mux, h, testimonialAdmin)
	registerAdmin(mux, h, galleryAdmin)

	mux.HandleFunc("GET /", h.NotFound)
}
