package web_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/sentrysite/internal/adapter/driven/backend"
	"github.com/ericfisherdev/sentrysite/internal/adapter/driven/recaptcha"
	httphandler "github.com/ericfisherdev/sentrysite/internal/adapter/driving/http"
	"github.com/ericfisherdev/sentrysite/internal/adapter/driving/web"
	"github.com/ericfisherdev/sentrysite/internal/application"
	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

type site struct {
	url      string
	api      *fakeAPI
	kv       *memKV
	visitors *application.VisitorService
	http     *http.Client
}

func newSite(t *testing.T, api *fakeAPI) *site {
	t.Helper()

	apiServer := httptest.NewServer(api.handler())
	t.Cleanup(apiServer.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := backend.NewClient(apiServer.URL, 5*time.Second, backend.WithHTTPClient(apiServer.Client()), backend.WithLogger(logger))

	kv := newMemKV()
	tokens := application.NewTokenStores(kv, logger)
	guard := application.NewAuthGuard(client, true, logger)
	visitors := application.NewVisitorService(client, &memStats{}, time.Hour, logger)
	contact := application.NewContactService(client, recaptcha.NewVerifier("", "", time.Second, logger), logger)
	sessions := web.NewSessions([]byte("0123456789abcdef0123456789abcdef"), false, logger)

	h := web.NewHandler(client, tokens, guard, visitors, contact, sessions,
		web.Options{BlogsPerPage: 8, AdminPerPage: 8}, logger)

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, h, httphandler.NewRateLimiter(1000, nil))
	siteServer := httptest.NewServer(mux)
	t.Cleanup(siteServer.Close)

	return &site{url: siteServer.URL, api: api, kv: kv, visitors: visitors, http: newBrowser(t)}
}

// newBrowser returns a client with a cookie jar that does not follow redirects.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (s *site) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := s.http.Get(s.url + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

// post submits form with the browser's CSRF token added.
func (s *site) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf_token", s.csrf(t))
	resp, err := s.http.PostForm(s.url+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

// csrf returns the CSRF cookie, loading a page first when there is none.
func (s *site) csrf(t *testing.T) string {
	t.Helper()
	u, _ := url.Parse(s.url)
	for _, c := range s.http.Jar.Cookies(u) {
		if c.Name == "csrf_token" {
			return c.Value
		}
	}
	s.get(t, "/about")
	for _, c := range s.http.Jar.Cookies(u) {
		if c.Name == "csrf_token" {
			return c.Value
		}
	}
	t.Fatal("no csrf cookie set")
	return ""
}

func (s *site) login(t *testing.T) {
	t.Helper()
	resp, _ := s.post(t, "/admin/login", url.Values{"username": {"admin"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// --- Public pages ---

func TestHome_FailingSectionRendersEmpty(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(2)
	api.failTestimonials = true
	s := newSite(t, api)

	resp, body := s.get(t, "/")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Static guarding")
	assert.NotContains(t, body, "Retired service")
	assert.Contains(t, body, "Guard report 01")
	assert.NotContains(t, body, "What our clients say")
}

func TestHome_CountsVisitOncePerSession(t *testing.T) {
	s := newSite(t, newFakeAPI())

	s.get(t, "/")
	s.get(t, "/services")
	assert.Equal(t, 1, s.api.visitCount())

	s.http = newBrowser(t)
	s.get(t, "/")
	assert.Equal(t, 2, s.api.visitCount())
}

func TestBlogs_PaginatesWithPageLinks(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(10)
	s := newSite(t, api)

	resp, body := s.get(t, "/blogs")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Guard report 08")
	assert.NotContains(t, body, "Guard report 09")
	assert.Contains(t, body, `href="/blogs?page=2"`)

	_, body = s.get(t, "/blogs?page=2")
	assert.Contains(t, body, "Guard report 09")
	assert.Contains(t, body, "Guard report 10")
	assert.NotContains(t, body, "Guard report 01")
}

func TestBlogs_PagePastEndRedirectsToLastPage(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(10)
	s := newSite(t, api)

	resp, _ := s.get(t, "/blogs?page=9")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/blogs?page=2", resp.Header.Get("Location"))

	resp, body := s.get(t, "/blogs?page=2")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Guard report 10")
}

func TestBlogs_FailedLoadKeepsLastPageWithRetry(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(10)
	s := newSite(t, api)
	s.get(t, "/blogs?page=2")

	api.setFailBlogs(true)
	resp, body := s.get(t, "/blogs?page=1")

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, body, "blog store is down")
	assert.Contains(t, body, "Guard report 09", "last loaded page stays visible")
	assert.Contains(t, body, "Try again")
}

func TestBlogPost_RendersSanitizedMarkdown(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(1)
	api.blogs[0].Content = "**Night patrol** done.\n\n<script>alert(1)</script>"
	s := newSite(t, api)

	resp, body := s.get(t, "/blogs/guard-report-01")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<strong>Night patrol</strong>")
	assert.NotContains(t, body, "<script>alert")
}

func TestBlogPost_UnknownSlugIsNotFound(t *testing.T) {
	s := newSite(t, newFakeAPI())

	resp, body := s.get(t, "/blogs/missing")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "couldn&#39;t find that post")
}

func TestServiceDetail_HiddenServiceIsNotFound(t *testing.T) {
	s := newSite(t, newFakeAPI())

	resp, _ := s.get(t, "/services/s2")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := s.get(t, "/services/s1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Licensed officers on site.")
}

func TestGallery_FiltersByCategory(t *testing.T) {
	api := newFakeAPI()
	api.gallery = append(api.gallery, model.GalleryImage{ID: "g2", Title: "Front desk", Category: "reception", ImageURL: "https://cdn.example.com/g2.jpg"})
	s := newSite(t, api)

	_, body := s.get(t, "/gallery?category=reception")

	assert.Contains(t, body, "Front desk")
	assert.NotContains(t, body, "Night patrol")
	assert.Contains(t, body, `href="/gallery?category=patrols"`)
}

func TestContact_ForwardsMessage(t *testing.T) {
	s := newSite(t, newFakeAPI())

	resp, _ := s.post(t, "/contact", url.Values{
		"name":    {"Sam"},
		"email":   {"sam@example.com"},
		"message": {"Need event cover on Saturday."},
	})

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/contact?sent=1", resp.Header.Get("Location"))
	contacts := s.api.contactList()
	require.Len(t, contacts, 1)
	assert.Equal(t, "Sam", contacts[0].Name)
}

func TestContact_InvalidFormIsShownAgain(t *testing.T) {
	s := newSite(t, newFakeAPI())

	resp, body := s.post(t, "/contact", url.Values{
		"name":    {"Sam"},
		"email":   {"not-an-email"},
		"message": {"Hello"},
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Email address is not valid")
	assert.Contains(t, body, `value="Sam"`)
	assert.Empty(t, s.api.contactList())
}

func TestContact_RejectsMissingCSRFToken(t *testing.T) {
	s := newSite(t, newFakeAPI())
	s.csrf(t)

	resp, err := s.http.PostForm(s.url+"/contact", url.Values{"name": {"Sam"}})
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, s.api.contactList())
}

// --- Admin ---

func TestAdmin_RedirectsToLoginWhenSignedOut(t *testing.T) {
	s := newSite(t, newFakeAPI())

	resp, _ := s.get(t, "/admin/blogs")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login?next=%2Fadmin%2Fblogs", resp.Header.Get("Location"))
}

func TestLogin_StoresTokenAndOpensDashboard(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(3)
	s := newSite(t, api)

	s.login(t)
	assert.Equal(t, []string{"tok-1"}, s.kv.tokens())

	resp, body := s.get(t, "/admin")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Dashboard")
	assert.Contains(t, body, "Welcome back, admin.")
	assert.Contains(t, body, `<p class="count">3</p>`)
}

func TestLogin_WrongPasswordShowsBackendMessage(t *testing.T) {
	s := newSite(t, newFakeAPI())

	resp, body := s.post(t, "/admin/login", url.Values{"username": {"admin"}, "password": {"nope"}})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials")
	assert.Empty(t, s.kv.tokens())
}

func TestLogin_RedirectsToSafeNextOnly(t *testing.T) {
	s := newSite(t, newFakeAPI())

	resp, _ := s.post(t, "/admin/login", url.Values{
		"username": {"admin"}, "password": {"secret"}, "next": {"//evil.example.com"},
	})
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	s.http = newBrowser(t)
	resp, _ = s.post(t, "/admin/login", url.Values{
		"username": {"admin"}, "password": {"secret"}, "next": {"/admin/gallery"},
	})
	assert.Equal(t, "/admin/gallery", resp.Header.Get("Location"))
}

func TestAdmin_RejectedTokenIsClearedAndRedirects(t *testing.T) {
	s := newSite(t, newFakeAPI())
	s.login(t)

	s.api.setToken("rotated")
	resp, _ := s.get(t, "/admin")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/admin/login"))
	assert.Empty(t, s.kv.tokens())
}

func TestLogout_ClearsToken(t *testing.T) {
	s := newSite(t, newFakeAPI())
	s.login(t)

	resp, _ := s.post(t, "/admin/logout", nil)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Empty(t, s.kv.tokens())

	resp, _ = s.get(t, "/admin")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestAdminList_SearchFiltersLoadedPage(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(3)
	s := newSite(t, api)
	s.login(t)

	_, body := s.get(t, "/admin/blogs?q=report+02")

	assert.Contains(t, body, "Guard report 02")
	assert.NotContains(t, body, "Guard report 01")
}

func TestAdminList_FailedReloadKeepsLastPage(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(10)
	s := newSite(t, api)
	s.login(t)

	_, body := s.get(t, "/admin/blogs?page=2")
	require.Contains(t, body, "Guard report 09")

	api.setFailBlogs(true)
	resp, body := s.get(t, "/admin/blogs?page=1")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "blog store is down")
	assert.Contains(t, body, "Guard report 09")
	assert.NotContains(t, body, "Guard report 01")
	assert.Contains(t, body, "Try again")
}

func TestAdminList_PagePastEndRedirectsToLastPage(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(10)
	s := newSite(t, api)
	s.login(t)

	resp, _ := s.get(t, "/admin/blogs?page=5&q=report")

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/blogs?page=2&q=report", resp.Header.Get("Location"))
}

func TestAdminList_StepsWithNextAndPrev(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(17)
	s := newSite(t, api)
	s.login(t)

	_, body := s.get(t, "/admin/blogs")
	assert.Contains(t, body, `href="/admin/blogs?dir=next"`)

	resp, _ := s.get(t, "/admin/blogs?dir=next")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/blogs?page=2", resp.Header.Get("Location"))

	_, body = s.get(t, "/admin/blogs?page=2")
	assert.Contains(t, body, "Guard report 09")
	assert.Contains(t, body, `href="/admin/blogs?dir=prev"`)

	resp, _ = s.get(t, "/admin/blogs?dir=next")
	assert.Equal(t, "/admin/blogs?page=3", resp.Header.Get("Location"))

	resp, _ = s.get(t, "/admin/blogs?dir=next")
	assert.Equal(t, "/admin/blogs?page=3", resp.Header.Get("Location"), "no page after the last")

	resp, _ = s.get(t, "/admin/blogs?dir=prev")
	assert.Equal(t, "/admin/blogs?page=2", resp.Header.Get("Location"))
}

func TestDashboard_RefreshStats(t *testing.T) {
	s := newSite(t, newFakeAPI())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go s.visitors.Start(ctx)

	s.get(t, "/")
	s.login(t)

	resp, _ := s.post(t, "/admin/stats/refresh", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	_, body := s.get(t, "/admin")
	assert.Contains(t, body, "Visitor stats refreshed.")
	assert.Contains(t, body, "1 today")
}

func TestDashboard_RefreshStatsRequiresCSRF(t *testing.T) {
	s := newSite(t, newFakeAPI())
	s.login(t)

	resp, err := s.http.PostForm(s.url+"/admin/stats/refresh", url.Values{})
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminDelete_StepsBackFromEmptiedPage(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(17)
	s := newSite(t, api)
	s.login(t)

	resp, _ := s.post(t, "/admin/blogs/b17/delete?page=3", nil)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/blogs?page=2", resp.Header.Get("Location"))
	assert.NotContains(t, api.blogIDs(), "b17")
}

func TestAdminDelete_StaysOnPageWithItemsLeft(t *testing.T) {
	api := newFakeAPI()
	api.addBlogs(17)
	s := newSite(t, api)
	s.login(t)

	resp, _ := s.post(t, "/admin/blogs/b09/delete?page=2", nil)

	assert.Equal(t, "/admin/blogs?page=2", resp.Header.Get("Location"))
}

func TestAdminCreate_ValidationShowsFieldErrors(t *testing.T) {
	s := newSite(t, newFakeAPI())
	s.login(t)

	resp, body := s.post(t, "/admin/blogs/new", url.Values{"content": {"Body only"}})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Title is required")
	assert.Contains(t, body, "Body only")
	assert.Empty(t, s.api.blogIDs())
}

func TestAdminCreate_SendsTagsAsArray(t *testing.T) {
	s := newSite(t, newFakeAPI())
	s.login(t)

	resp, _ := s.post(t, "/admin/blogs/new", url.Values{
		"title": {"Event season"}, "content": {"Busy weekend."}, "tags": {"events, staffing"},
	})

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/blogs", resp.Header.Get("Location"))
	blogs := s.api.blogList()
	require.Len(t, blogs, 1)
	assert.Equal(t, []string{"events", "staffing"}, blogs[0].Tags)
}

func TestAdminToggle_FlipsTestimonial(t *testing.T) {
	s := newSite(t, newFakeAPI())
	s.login(t)

	resp, _ := s.post(t, "/admin/testimonials/t1/toggle", nil)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, []string{"t1"}, s.api.toggledIDs())
}

func TestAdminGalleryUpload_SendsEveryFile(t *testing.T) {
	s := newSite(t, newFakeAPI())
	s.login(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("csrf_token", s.csrf(t)))
	require.NoError(t, mw.WriteField("category", "patrols"))
	for _, name := range []string{"a.png", "b.png"} {
		part, err := mw.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := s.http.Post(s.url+"/admin/gallery/new", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	readBody(t, resp)

	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, 2, s.api.uploadCount())
}
