package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/sentrysite/internal/application"
	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

func TestBuildPager_CarriesQueryAndFlags(t *testing.T) {
	query := url.Values{"q": {"night"}, "page": {"2"}}
	p := buildPager("/admin/blogs", query, model.NewPageDescriptor(2, 3, 25, 10), application.PageWindow(2, 3))

	assert.True(t, p.Show())
	assert.Equal(t, "/admin/blogs?page=1&q=night", p.PrevURL)
	assert.Equal(t, "/admin/blogs?page=3&q=night", p.NextURL)
	require.Len(t, p.Links, 3)
	assert.True(t, p.Links[1].Active)
	assert.Equal(t, 2, p.Links[1].Number)
}

func TestBuildPager_SinglePageHasNoLinks(t *testing.T) {
	p := buildPager("/blogs", url.Values{}, model.SinglePage(4), nil)

	assert.False(t, p.Show())
	assert.Empty(t, p.PrevURL)
	assert.Empty(t, p.NextURL)
}

func TestPageParam(t *testing.T) {
	assert.Equal(t, 1, pageParam(url.Values{}))
	assert.Equal(t, 1, pageParam(url.Values{"page": {"-3"}}))
	assert.Equal(t, 1, pageParam(url.Values{"page": {"abc"}}))
	assert.Equal(t, 4, pageParam(url.Values{"page": {"4"}}))
}

func TestToVisitorStats_GroupsThousands(t *testing.T) {
	got := toVisitorStats(model.VisitorStats{TotalVisitors: 12345678, TodayVisitors: 999, UpdatedAt: time.Now()})

	assert.Equal(t, vm.VisitorStats{Total: "12,345,678", Today: "999", Known: true}, got)
	assert.Equal(t, vm.VisitorStats{}, toVisitorStats(model.VisitorStats{TotalVisitors: 5}))
}

func TestToTestimonialCards_SkipsInactiveAndClampsStars(t *testing.T) {
	cards := toTestimonialCards([]model.Testimonial{
		{Name: "A", Rating: 9, IsActive: true},
		{Name: "B", Rating: 4, IsActive: false},
	})

	require.Len(t, cards, 1)
	assert.Equal(t, "A", cards[0].Name)
	assert.Equal(t, 5, cards[0].Stars)
}

func TestToBlogCard_FallsBackToContentExcerpt(t *testing.T) {
	card := toBlogCard(model.Blog{Title: "T", Slug: "a b", Content: "First **line**."})

	assert.Equal(t, "First line.", card.Excerpt)
	assert.Equal(t, "/blogs/a%20b", card.URL)
}

func TestToGallery_CollectsSortedCategories(t *testing.T) {
	g := toGallery([]model.GalleryImage{
		{Title: "1", Category: "patrols"},
		{Title: "2", Category: "events"},
		{Title: "3", Category: "patrols"},
	}, "patrols")

	assert.Equal(t, []string{"events", "patrols"}, g.Categories)
	assert.Len(t, g.Items, 2)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/admin/blogs?page=2", safeNext("/admin/blogs?page=2"))
	assert.Empty(t, safeNext("//evil.example.com"))
	assert.Empty(t, safeNext("https://evil.example.com/admin"))
	assert.Empty(t, safeNext("/admin/login"))
	assert.Empty(t, safeNext("/about"))
}

func TestParseDraft_Services(t *testing.T) {
	form := url.Values{
		"title":       {"  Mobile patrol "},
		"description": {"Marked vehicles"},
		"features":    {"Hourly checks\n\n Alarm response \n"},
		"is_active":   {"true"},
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, r.ParseForm())

	draft, err := parseDraft(r, model.ResourceServices)

	require.NoError(t, err)
	assert.Equal(t, "Mobile patrol", draft.Fields["title"])
	assert.Equal(t, []string{"Hourly checks", "Alarm response"}, draft.Lists["features"])
	assert.True(t, draft.Flags["is_active"])
	assert.False(t, draft.HasFiles())
}

func TestParseDraft_TestimonialRating(t *testing.T) {
	parse := func(rating string) model.Draft {
		form := url.Values{"name": {"Dana"}, "rating": {rating}}
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		draft, err := parseDraft(r, model.ResourceTestimonials)
		require.NoError(t, err)
		return draft
	}

	assert.Equal(t, 4, parse("4").Numbers["rating"])

	bad := parse("lots")
	_, ok := bad.Numbers["rating"]
	assert.False(t, ok)
	assert.Equal(t, "lots", bad.Fields["rating"])
	assert.False(t, bad.Flags["is_active"])
}

func TestDraftValues_RoundTripsListsForRedisplay(t *testing.T) {
	draft := model.NewDraft()
	draft.Fields["title"] = "Post"
	draft.Lists["tags"] = []string{"a", "b"}
	draft.Flags["is_published"] = true

	values := draftValues(model.ResourceBlogs, draft)

	assert.Equal(t, "Post", values["title"])
	assert.Equal(t, "a, b", values["tags"])
	assert.Equal(t, "true", values["is_published"])
}
