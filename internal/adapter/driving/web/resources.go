package web

import (
	"context"
	"strconv"
	"strings"

	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/sentrysite/internal/domain/model"
	"github.com/ericfisherdev/sentrysite/internal/domain/port/driven"
)

var serviceAdmin = adminResource[model.Service]{
	kind:    model.ResourceServices,
	plural:  "services",
	columns: []string{"Title", "Features", "Status"},
	api:     func(b driven.Backend) driven.ResourceAPI[model.Service] { return b.Services() },
	row: func(s model.Service) vm.AdminRow {
		return vm.AdminRow{
			Cells:     []string{s.Title, strconv.Itoa(len(s.Features)), activeLabel(s.IsActive, "Active", "Hidden")},
			Thumbnail: s.Image,
			Active:    bool(s.IsActive),
		}
	},
	search: func(s model.Service) []string { return append([]string{s.Title, s.Description}, s.Features...) },
	values: func(s model.Service) map[string]string {
		return map[string]string{
			"title":       s.Title,
			"description": s.Description,
			"icon":        s.Icon,
			"features":    strings.Join(s.Features, "\n"),
			"is_active":   boolValue(s.IsActive),
		}
	},
	fields: func(bool) []vm.FormField {
		return []vm.FormField{
			{Name: "title", Label: "Title", Type: vm.FieldText, Required: true},
			{Name: "description", Label: "Description", Type: vm.FieldTextarea, Required: true},
			{Name: "features", Label: "Features", Type: vm.FieldTextarea, Help: "One feature per line"},
			{Name: "icon", Label: "Icon", Type: vm.FieldText, Help: "Icon class name, e.g. shield"},
			{Name: "image", Label: "Image", Type: vm.FieldFile},
			{Name: "is_active", Label: "Show on the site", Type: vm.FieldCheckbox},
		}
	},
	name:     func(s model.Service) string { return s.Title },
	preview:  func(s model.Service) string { return s.Image },
	defaults: map[string]string{"is_active": "true"},
}

var blogAdmin = adminResource[model.Blog]{
	kind:    model.ResourceBlogs,
	plural:  "blog posts",
	columns: []string{"Title", "Author", "Date", "Status"},
	api:     func(b driven.Backend) driven.ResourceAPI[model.Blog] { return b.Blogs() },
	row: func(b model.Blog) vm.AdminRow {
		return vm.AdminRow{
			Cells:     []string{b.Title, b.Author, formatDate(b.CreatedAt), activeLabel(b.IsPublished, "Published", "Draft")},
			Thumbnail: b.Image,
			Active:    bool(b.IsPublished),
		}
	},
	search: func(b model.Blog) []string { return append([]string{b.Title, b.Author, b.Excerpt}, b.Tags...) },
	values: func(b model.Blog) map[string]string {
		return map[string]string{
			"title":        b.Title,
			"excerpt":      b.Excerpt,
			"content":      b.Content,
			"author":       b.Author,
			"tags":         strings.Join(b.Tags, ", "),
			"is_published": boolValue(b.IsPublished),
		}
	},
	fields: func(bool) []vm.FormField {
		return []vm.FormField{
			{Name: "title", Label: "Title", Type: vm.FieldText, Required: true},
			{Name: "author", Label: "Author", Type: vm.FieldText},
			{Name: "excerpt", Label: "Excerpt", Type: vm.FieldTextarea, Help: "Shown on the blog index; generated from the content when empty"},
			{Name: "content", Label: "Content", Type: vm.FieldTextarea, Required: true, Help: "Markdown"},
			{Name: "tags", Label: "Tags", Type: vm.FieldText, Help: "Comma separated"},
			{Name: "image", Label: "Cover image", Type: vm.FieldFile},
			{Name: "is_published", Label: "Published", Type: vm.FieldCheckbox},
		}
	},
	name:    func(b model.Blog) string { return b.Title },
	preview: func(b model.Blog) string { return b.Image },
}

var testimonialAdmin = adminResource[model.Testimonial]{
	kind:    model.ResourceTestimonials,
	plural:  "testimonials",
	columns: []string{"Name", "Company", "Rating", "Status"},
	api:     func(b driven.Backend) driven.ResourceAPI[model.Testimonial] { return b.Testimonials() },
	row: func(t model.Testimonial) vm.AdminRow {
		return vm.AdminRow{
			Cells:     []string{t.Name, t.Company, strconv.Itoa(t.Rating) + "/5", activeLabel(t.IsActive, "Active", "Hidden")},
			Thumbnail: t.Image,
			Active:    bool(t.IsActive),
		}
	},
	search: func(t model.Testimonial) []string { return []string{t.Name, t.Company, t.Position, t.Testimonial} },
	values: func(t model.Testimonial) map[string]string {
		return map[string]string{
			"name":        t.Name,
			"position":    t.Position,
			"company":     t.Company,
			"testimonial": t.Testimonial,
			"rating":      strconv.Itoa(t.Rating),
			"is_active":   boolValue(t.IsActive),
		}
	},
	fields: func(bool) []vm.FormField {
		return []vm.FormField{
			{Name: "name", Label: "Name", Type: vm.FieldText, Required: true},
			{Name: "position", Label: "Position", Type: vm.FieldText},
			{Name: "company", Label: "Company", Type: vm.FieldText},
			{Name: "testimonial", Label: "Testimonial", Type: vm.FieldTextarea, Required: true},
			{Name: "rating", Label: "Rating", Type: vm.FieldNumber, Required: true, Min: "1", Max: "5"},
			{Name: "image", Label: "Photo", Type: vm.FieldFile},
			{Name: "is_active", Label: "Show on the site", Type: vm.FieldCheckbox},
		}
	},
	name:     func(t model.Testimonial) string { return t.Name },
	preview:  func(t model.Testimonial) string { return t.Image },
	defaults: map[string]string{"rating": "5", "is_active": "true"},
	toggle: func(b driven.Backend) func(context.Context, string) error {
		return b.Testimonials().Toggle
	},
}

var galleryAdmin = adminResource[model.GalleryImage]{
	kind:    model.ResourceGallery,
	plural:  "gallery images",
	columns: []string{"Title", "Category"},
	api:     func(b driven.Backend) driven.ResourceAPI[model.GalleryImage] { return b.Gallery() },
	row: func(g model.GalleryImage) vm.AdminRow {
		return vm.AdminRow{Cells: []string{g.Title, g.Category}, Thumbnail: g.ImageURL}
	},
	search: func(g model.GalleryImage) []string { return []string{g.Title, g.Description, g.Category} },
	values: func(g model.GalleryImage) map[string]string {
		return map[string]string{
			"title":       g.Title,
			"description": g.Description,
			"category":    g.Category,
		}
	},
	fields: func(creating bool) []vm.FormField {
		fields := []vm.FormField{
			{Name: "title", Label: "Title", Type: vm.FieldText},
			{Name: "description", Label: "Description", Type: vm.FieldTextarea},
			{Name: "category", Label: "Category", Type: vm.FieldText},
		}
		if creating {
			fields = append(fields, vm.FormField{
				Name: "images", Label: "Images", Type: vm.FieldFile, Required: true, Multiple: true,
				Help: "Select one or more images; each becomes its own gallery entry",
			})
		}
		return fields
	},
	name:    func(g model.GalleryImage) string { return firstNonEmpty(g.Title, g.ID.String()) },
	preview: func(g model.GalleryImage) string { return g.ImageURL },
}

func activeLabel(on model.Flag, yes, no string) string {
	if on {
		return yes
	}
	return no
}

func boolValue(b model.Flag) string {
	if b {
		return "true"
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
