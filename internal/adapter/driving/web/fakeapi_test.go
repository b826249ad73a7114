package web_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

// fakeAPI is an in-memory stand-in for the REST backend.
type fakeAPI struct {
	mu sync.Mutex

	token    string
	password string

	services     []model.Service
	blogs        []model.Blog
	testimonials []model.Testimonial
	gallery      []model.GalleryImage

	failTestimonials bool
	failBlogs        bool

	visits      int
	contacts    []model.ContactMessage
	toggled     []string
	uploadParts int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		token:    "tok-1",
		password: "secret",
		services: []model.Service{
			{ID: "s1", Title: "Static guarding", Description: "Licensed officers on site.", Features: []string{"24/7"}, IsActive: true},
			{ID: "s2", Title: "Retired service", Description: "No longer offered.", IsActive: false},
		},
		testimonials: []model.Testimonial{
			{ID: "t1", Name: "Dana", Company: "Acme", Rating: 5, Testimonial: "Always on time.", IsActive: true},
		},
		gallery: []model.GalleryImage{
			{ID: "g1", Title: "Night patrol", Category: "patrols", ImageURL: "https://cdn.example.com/g1.jpg"},
		},
	}
}

// addBlogs appends n published posts titled "Guard report 01".."Guard report n".
func (f *fakeAPI) addBlogs(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 1; i <= n; i++ {
		f.blogs = append(f.blogs, model.Blog{
			ID:          model.ID(fmt.Sprintf("b%02d", i)),
			Title:       fmt.Sprintf("Guard report %02d", i),
			Slug:        fmt.Sprintf("guard-report-%02d", i),
			Content:     "Routine patrol.",
			Author:      "Ops",
			IsPublished: true,
			CreatedAt:   time.Date(2026, 3, i, 9, 0, 0, 0, time.UTC),
		})
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		defer f.mu.Unlock()
		if req.Username != "admin" || req.Password != f.password {
			apiJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials"})
			return
		}
		apiJSON(w, http.StatusOK, map[string]any{"token": f.token, "user": map[string]any{"username": "admin"}})
	})
	mux.HandleFunc("POST /api/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		apiJSON(w, http.StatusOK, map[string]any{"valid": true})
	})

	mux.HandleFunc("GET /api/services", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		apiJSON(w, http.StatusOK, f.services)
	})
	mux.HandleFunc("GET /api/services/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, s := range f.services {
			if s.Identity() == r.PathValue("id") {
				apiJSON(w, http.StatusOK, map[string]any{"data": s})
				return
			}
		}
		apiJSON(w, http.StatusNotFound, map[string]any{"message": "Service not found"})
	})

	mux.HandleFunc("GET /api/blogs", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failBlogs {
			apiJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "blog store is down"})
			return
		}
		page := atoiDefault(r.URL.Query().Get("page"), 1)
		limit := atoiDefault(r.URL.Query().Get("limit"), 10)
		total := len(f.blogs)
		pages := max(1, (total+limit-1)/limit)
		start := min((page-1)*limit, total)
		end := min(start+limit, total)
		apiJSON(w, http.StatusOK, map[string]any{
			"data": f.blogs[start:end],
			"pagination": map[string]any{
				"currentPage": page, "totalPages": pages, "totalItems": total, "itemsPerPage": limit,
			},
		})
	})
	mux.HandleFunc("GET /api/blogs/all", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		apiJSON(w, http.StatusOK, f.blogs)
	})
	mux.HandleFunc("GET /api/blogs/slug/{slug}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, b := range f.blogs {
			if b.Slug == r.PathValue("slug") {
				apiJSON(w, http.StatusOK, b)
				return
			}
		}
		apiJSON(w, http.StatusNotFound, map[string]any{"message": "Blog not found"})
	})
	mux.HandleFunc("POST /api/blogs", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		var body struct {
			Title   string   `json:"title"`
			Content string   `json:"content"`
			Tags    []string `json:"tags"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		defer f.mu.Unlock()
		b := model.Blog{ID: "new", Title: body.Title, Content: body.Content, Tags: body.Tags, Slug: "new"}
		f.blogs = append(f.blogs, b)
		apiJSON(w, http.StatusCreated, b)
	})
	mux.HandleFunc("DELETE /api/blogs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, b := range f.blogs {
			if b.Identity() == r.PathValue("id") {
				f.blogs = append(f.blogs[:i], f.blogs[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		apiJSON(w, http.StatusNotFound, map[string]any{"message": "Blog not found"})
	})

	mux.HandleFunc("GET /api/testimonials", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failTestimonials {
			apiJSON(w, http.StatusInternalServerError, map[string]any{"message": "database unavailable"})
			return
		}
		apiJSON(w, http.StatusOK, map[string]any{"data": f.testimonials})
	})
	mux.HandleFunc("PATCH /api/testimonials/{id}/toggle", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.toggled = append(f.toggled, r.PathValue("id"))
		apiJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	mux.HandleFunc("GET /api/gallery", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		apiJSON(w, http.StatusOK, map[string]any{"data": f.gallery})
	})
	mux.HandleFunc("POST /api/gallery", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(w, r) {
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			apiJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.uploadParts = len(r.MultipartForm.File["images"])
		apiJSON(w, http.StatusCreated, []map[string]any{{"id": "g2", "imageUrl": "https://cdn.example.com/g2.jpg"}})
	})

	mux.HandleFunc("GET /api/visitors/stats", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		apiJSON(w, http.StatusOK, map[string]any{"totalVisitors": f.visits, "todayVisitors": f.visits})
	})
	mux.HandleFunc("POST /api/visitors/increment", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.visits++
		apiJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	mux.HandleFunc("POST /api/contact", func(w http.ResponseWriter, r *http.Request) {
		var msg model.ContactMessage
		_ = json.NewDecoder(r.Body).Decode(&msg)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.contacts = append(f.contacts, msg)
		apiJSON(w, http.StatusOK, map[string]any{"success": true})
	})

	return mux
}

func (f *fakeAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	want := "Bearer " + f.token
	f.mu.Unlock()
	if r.Header.Get("Authorization") != want {
		apiJSON(w, http.StatusUnauthorized, map[string]any{"message": "Token is not valid"})
		return false
	}
	return true
}

func (f *fakeAPI) setFailBlogs(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failBlogs = fail
}

func (f *fakeAPI) setToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeAPI) visitCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visits
}

func (f *fakeAPI) blogIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.blogs))
	for _, b := range f.blogs {
		ids = append(ids, b.Identity())
	}
	return ids
}

func (f *fakeAPI) blogList() []model.Blog {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Blog(nil), f.blogs...)
}

func (f *fakeAPI) contactList() []model.ContactMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ContactMessage(nil), f.contacts...)
}

func (f *fakeAPI) toggledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.toggled...)
}

func (f *fakeAPI) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadParts
}

func apiJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// --- stores ---

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: map[string]string{}}
}

func (m *memKV) Set(_ context.Context, ns, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[ns+"/"+key] = value
	return nil
}

func (m *memKV) Get(_ context.Context, ns, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[ns+"/"+key], nil
}

func (m *memKV) Delete(_ context.Context, ns, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, ns+"/"+key)
	return nil
}

func (m *memKV) DeleteNamespace(_ context.Context, ns string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if strings.HasPrefix(k, ns+"/") {
			delete(m.data, k)
		}
	}
	return nil
}

// tokens returns every stored admin token.
func (m *memKV) tokens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k, v := range m.data {
		if strings.HasSuffix(k, "/adminToken") && v != "" {
			out = append(out, v)
		}
	}
	return out
}

type memStats struct {
	mu    sync.Mutex
	stats *model.VisitorStats
}

func (m *memStats) Save(_ context.Context, stats model.VisitorStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = &stats
	return nil
}

func (m *memStats) Latest(_ context.Context) (*model.VisitorStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats, nil
}
