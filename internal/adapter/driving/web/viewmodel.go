package web

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

const (
	cardSummaryRunes = 140
	excerptRunes     = 200
	dateLayout       = "2 January 2006"
)

func toServiceCard(s model.Service) vm.ServiceCard {
	features := s.Features
	if features == nil {
		features = []string{}
	}
	return vm.ServiceCard{
		ID:        s.ID.String(),
		Title:     s.Title,
		Summary:   Excerpt(s.Description, cardSummaryRunes),
		Icon:      s.Icon,
		Image:     s.Image,
		Features:  features,
		DetailURL: "/services/" + url.PathEscape(s.ID.String()),
	}
}

func toServiceCards(services []model.Service) []vm.ServiceCard {
	out := make([]vm.ServiceCard, 0, len(services))
	for _, s := range services {
		if !s.IsActive {
			continue
		}
		out = append(out, toServiceCard(s))
	}
	return out
}

func toServiceDetail(s model.Service) vm.ServiceDetail {
	return vm.ServiceDetail{ServiceCard: toServiceCard(s), Description: s.Description}
}

func toBlogCard(b model.Blog) vm.BlogCard {
	excerpt := strings.TrimSpace(b.Excerpt)
	if excerpt == "" {
		excerpt = Excerpt(b.Content, excerptRunes)
	}
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}
	return vm.BlogCard{
		Title:   b.Title,
		Excerpt: excerpt,
		Author:  b.Author,
		Date:    formatDate(b.CreatedAt),
		Image:   b.Image,
		Tags:    tags,
		URL:     "/blogs/" + url.PathEscape(b.Slug),
	}
}

func toBlogCards(blogs []model.Blog) []vm.BlogCard {
	out := make([]vm.BlogCard, 0, len(blogs))
	for _, b := range blogs {
		out = append(out, toBlogCard(b))
	}
	return out
}

func toBlogPost(b model.Blog) vm.BlogPost {
	return vm.BlogPost{BlogCard: toBlogCard(b), ContentHTML: RenderMarkdown(b.Content)}
}

func toTestimonialCards(testimonials []model.Testimonial) []vm.TestimonialCard {
	out := make([]vm.TestimonialCard, 0, len(testimonials))
	for _, t := range testimonials {
		if !t.IsActive {
			continue
		}
		out = append(out, vm.TestimonialCard{
			Name:     t.Name,
			Position: t.Position,
			Company:  t.Company,
			Quote:    t.Testimonial,
			Image:    t.Image,
			Stars:    min(max(t.Rating, 0), 5),
		})
	}
	return out
}

// toGallery builds the gallery view, keeping only images in category when
// one is selected. Categories are collected from every image.
func toGallery(images []model.GalleryImage, category string) vm.Gallery {
	seen := map[string]bool{}
	g := vm.Gallery{Items: []vm.GalleryItem{}, Categories: []string{}, Active: category}
	for _, img := range images {
		if img.Category != "" && !seen[img.Category] {
			seen[img.Category] = true
			g.Categories = append(g.Categories, img.Category)
		}
		if category != "" && img.Category != category {
			continue
		}
		g.Items = append(g.Items, vm.GalleryItem{
			Title:       img.Title,
			Description: img.Description,
			Category:    img.Category,
			ImageURL:    img.ImageURL,
		})
	}
	sort.Strings(g.Categories)
	return g
}

func toVisitorStats(stats model.VisitorStats) vm.VisitorStats {
	if stats.UpdatedAt.IsZero() {
		return vm.VisitorStats{}
	}
	return vm.VisitorStats{
		Total: humanize.Comma(stats.TotalVisitors),
		Today: humanize.Comma(stats.TodayVisitors),
		Known: true,
	}
}

// buildPager turns a page descriptor and its page-number window into links on
// basePath. Other query parameters in query are carried over to every link.
func buildPager(basePath string, query url.Values, page model.PageDescriptor, window []int) vm.Pager {
	p := vm.Pager{
		Current:    page.CurrentPage,
		Total:      page.TotalPages,
		TotalItems: page.TotalItems,
	}
	for _, n := range window {
		p.Links = append(p.Links, vm.PageLink{
			Number: n,
			URL:    pageURL(basePath, query, n),
			Active: n == page.CurrentPage,
		})
	}
	if page.HasPrevPage {
		p.PrevURL = pageURL(basePath, query, page.CurrentPage-1)
	}
	if page.HasNextPage {
		p.NextURL = pageURL(basePath, query, page.CurrentPage+1)
	}
	return p
}

func pageURL(basePath string, query url.Values, page int) string {
	q := url.Values{}
	for k, v := range query {
		if k != "page" {
			q[k] = v
		}
	}
	q.Set("page", strconv.Itoa(page))
	return basePath + "?" + q.Encode()
}

// stepURL links to basePath with ?dir=, dropping any page number so the
// step starts from the page the session is on.
func stepURL(basePath string, query url.Values, dir string) string {
	q := url.Values{}
	for k, v := range query {
		if k != "page" && k != "dir" {
			q[k] = v
		}
	}
	q.Set("dir", dir)
	return basePath + "?" + q.Encode()
}

// pageParam reads ?page=, defaulting to 1 for missing or invalid values.
func pageParam(query url.Values) int {
	n, err := strconv.Atoi(query.Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
