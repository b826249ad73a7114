package templates

import (
	"context"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
)

// SiteName is shown in the header and page titles.
const SiteName = "Sentry Security Services"

type navItem struct {
	key, label, href string
}

var publicNav = []navItem{
	{"home", "Home", "/"},
	{"about", "About", "/about"},
	{"services", "Services", "/services"},
	{"blogs", "Blog", "/blogs"},
	{"gallery", "Gallery", "/gallery"},
	{"contact", "Contact", "/contact"},
}

var adminNav = []navItem{
	{"dashboard", "Dashboard", "/admin"},
	{"services", "Services", "/admin/services"},
	{"blogs", "Blog posts", "/admin/blogs"},
	{"testimonials", "Testimonials", "/admin/testimonials"},
	{"gallery", "Gallery", "/admin/gallery"},
}

// Layout wraps content in the full HTML document.
func Layout(page vm.Page, content templ.Component) templ.Component {
	return Component(func(ctx context.Context, h *Writer) {
		title := SiteName
		if page.Title != "" {
			title = page.Title + " | " + SiteName
		}

		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Elem("title", "", title)
		if page.Description != "" {
			h.Raw(`<meta name="description"`)
			h.Attr("content", page.Description)
			h.Raw(">")
		}
		if page.CSRFToken != "" {
			h.Raw(`<meta name="csrf-token"`)
			h.Attr("content", page.CSRFToken)
			h.Raw(">")
		}
		h.Raw(`<link rel="stylesheet" href="/static/site.css"></head>`)

		bodyClass := "site"
		if page.Admin {
			bodyClass = "site admin"
		}
		h.Open("body", bodyClass)

		header(h, page)

		h.Open("main", "container")
		if page.Flash != "" {
			h.Elem("div", "flash", page.Flash)
		}
		if page.Error != "" {
			h.Render(ctx, ErrorBanner(page.Error, page.RetryURL))
		}
		h.Render(ctx, content)
		h.Close("main")

		footer(h, page)

		h.Raw("</body></html>")
	})
}

func header(h *Writer, page vm.Page) {
	h.Open("header", "site-header")
	h.Link(homeURL(page.Admin), "brand", SiteName)
	h.Open("nav", "")

	items := publicNav
	if page.Admin {
		items = adminNav
	}
	for _, item := range items {
		class := ""
		if item.key == page.ActiveNav {
			class = "active"
		}
		h.Link(item.href, class, item.label)
	}

	if page.Admin && page.Username != "" {
		h.Elem("span", "user", page.Username)
		h.Raw(`<form method="post" action="/admin/logout" class="inline">`)
		CSRFField(h, page.CSRFToken)
		h.Raw(`<button type="submit" class="link">Log out</button></form>`)
	}

	h.Close("nav")
	h.Close("header")
}

func footer(h *Writer, page vm.Page) {
	h.Open("footer", "site-footer")
	h.Elem("p", "", "© "+SiteName)
	if page.Stats.Known {
		h.Open("p", "visitors")
		h.Text("Visitors: " + page.Stats.Total + " total, " + page.Stats.Today + " today")
		h.Close("p")
	}
	h.Close("footer")
}

func homeURL(admin bool) string {
	if admin {
		return "/admin"
	}
	return "/"
}

// ErrorBanner renders an inline error with a link that re-issues the request.
func ErrorBanner(message, retryURL string) templ.Component {
	return Component(func(_ context.Context, h *Writer) {
		h.Raw(`<div class="error" role="alert">`)
		h.Elem("p", "", message)
		if retryURL != "" {
			h.Link(retryURL, "retry", "Try again")
		}
		h.Raw("</div>")
	})
}

// CSRFField writes the hidden CSRF input for a form.
func CSRFField(h *Writer, token string) {
	h.Raw(`<input type="hidden" name="csrf_token"`)
	h.Attr("value", token)
	h.Raw(">")
}

// PagerNav renders numbered page links with prev and next.
func PagerNav(p vm.Pager) templ.Component {
	return Component(func(_ context.Context, h *Writer) {
		if !p.Show() {
			return
		}
		h.Raw(`<nav class="pager" aria-label="Pagination">`)
		if p.PrevURL != "" {
			h.Link(p.PrevURL, "prev", "Previous")
		} else {
			h.Elem("span", "prev disabled", "Previous")
		}
		for _, link := range p.Links {
			if link.Active {
				h.Raw(`<span class="page current" aria-current="page">`)
				h.Int(link.Number)
				h.Raw("</span>")
				continue
			}
			h.Raw(`<a class="page"`)
			h.URLAttr("href", link.URL)
			h.Raw(">")
			h.Int(link.Number)
			h.Raw("</a>")
		}
		if p.NextURL != "" {
			h.Link(p.NextURL, "next", "Next")
		} else {
			h.Elem("span", "next disabled", "Next")
		}
		h.Raw("</nav>")
	})
}
