// Package pages holds one component per page of the site.
package pages

import (
	"context"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/sentrysite/internal/adapter/driving/web/viewmodel"
)

// Home renders the landing page sections. Empty sections are skipped.
func Home(home vm.Home) templ.Component {
	return templates.Component(func(ctx context.Context, h *templates.Writer) {
		h.Raw(`<section class="hero">`)
		h.Elem("h1", "", "Professional security you can rely on")
		h.Elem("p", "lead", "Licensed guards, mobile patrols and monitoring for homes, businesses and events.")
		h.Link("/contact", "button", "Request a quote")
		h.Raw("</section>")

		if len(home.Services) > 0 {
			h.Raw(`<section class="services">`)
			h.Elem("h2", "", "Our services")
			serviceGrid(h, home.Services)
			h.Link("/services", "more", "All services")
			h.Raw("</section>")
		}

		if len(home.Testimonials) > 0 {
			h.Raw(`<section class="testimonials">`)
			h.Elem("h2", "", "What our clients say")
			h.Open("div", "grid")
			for _, t := range home.Testimonials {
				testimonialCard(h, t)
			}
			h.Close("div")
			h.Raw("</section>")
		}

		if len(home.Blogs) > 0 {
			h.Raw(`<section class="blogs">`)
			h.Elem("h2", "", "Latest from the blog")
			blogGrid(h, home.Blogs)
			h.Link("/blogs", "more", "Read the blog")
			h.Raw("</section>")
		}
	})
}

// About renders the static company page.
func About() templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Elem("h1", "", "About us")
		h.Elem("p", "", "We are a family-owned security company providing trained, licensed officers since 2009.")
		h.Elem("p", "", "Our team covers static guarding, mobile patrols, event security and alarm response, "+
			"backed by a 24/7 control room.")
	})
}

// Services renders the service catalogue.
func Services(services []vm.ServiceCard) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Elem("h1", "", "Services")
		if len(services) == 0 {
			h.Elem("p", "empty", "No services are listed right now.")
			return
		}
		serviceGrid(h, services)
	})
}

// ServiceDetail renders one service.
func ServiceDetail(s vm.ServiceDetail) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Raw(`<article class="service-detail">`)
		if s.Image != "" {
			image(h, s.Image, s.Title, "banner")
		}
		h.Elem("h1", "", s.Title)
		for _, para := range strings.Split(s.Description, "\n") {
			if strings.TrimSpace(para) != "" {
				h.Elem("p", "", para)
			}
		}
		if len(s.Features) > 0 {
			h.Elem("h2", "", "What's included")
			h.Open("ul", "features")
			for _, f := range s.Features {
				h.Elem("li", "", f)
			}
			h.Close("ul")
		}
		h.Link("/contact", "button", "Enquire about this service")
		h.Raw("</article>")
	})
}

// Blogs renders one page of the blog index.
func Blogs(list vm.BlogList) templ.Component {
	return templates.Component(func(ctx context.Context, h *templates.Writer) {
		h.Elem("h1", "", "Blog")
		if len(list.Posts) == 0 {
			h.Elem("p", "empty", "No posts yet.")
			return
		}
		blogGrid(h, list.Posts)
		h.Render(ctx, templates.PagerNav(list.Pager))
	})
}

// BlogPost renders a full post. ContentHTML is already sanitized.
func BlogPost(post vm.BlogPost) templ.Component {
	return templates.Component(func(ctx context.Context, h *templates.Writer) {
		h.Raw(`<article class="blog-post">`)
		if post.Image != "" {
			image(h, post.Image, post.Title, "banner")
		}
		h.Elem("h1", "", post.Title)
		byline(h, post.BlogCard)
		h.Raw(`<div class="content">`)
		h.Render(ctx, templ.Raw(post.ContentHTML))
		h.Raw("</div>")
		tags(h, post.Tags)
		h.Link("/blogs", "back", "Back to the blog")
		h.Raw("</article>")
	})
}

// Gallery renders the image grid with a category filter.
func Gallery(g vm.Gallery) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Elem("h1", "", "Gallery")
		if len(g.Categories) > 1 {
			h.Open("nav", "filters")
			class := ""
			if g.Active == "" {
				class = "active"
			}
			h.Link("/gallery", class, "All")
			for _, c := range g.Categories {
				class = ""
				if c == g.Active {
					class = "active"
				}
				h.Link("/gallery?category="+url.QueryEscape(c), class, c)
			}
			h.Close("nav")
		}
		if len(g.Items) == 0 {
			h.Elem("p", "empty", "No images to show.")
			return
		}
		h.Open("div", "gallery-grid")
		for _, item := range g.Items {
			h.Open("figure", "")
			image(h, item.ImageURL, item.Title, "")
			if item.Title != "" || item.Description != "" {
				h.Open("figcaption", "")
				h.Elem("strong", "", item.Title)
				if item.Description != "" {
					h.Elem("span", "", item.Description)
				}
				h.Close("figcaption")
			}
			h.Close("figure")
		}
		h.Close("div")
	})
}

// Contact renders the contact form or the thank-you message.
func Contact(form vm.ContactForm, csrfToken string) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Elem("h1", "", "Contact us")
		if form.Sent {
			h.Elem("p", "success", "Thank you, your message has been sent. We will be in touch shortly.")
			return
		}
		h.Raw(`<form method="post" action="/contact" class="contact-form">`)
		templates.CSRFField(h, csrfToken)
		contactInput(h, form, "name", "Name", "text", true)
		contactInput(h, form, "email", "Email", "email", true)
		contactInput(h, form, "phone", "Phone", "tel", false)
		contactInput(h, form, "subject", "Subject", "text", false)

		h.Raw(`<label for="message">Message</label><textarea id="message" name="message" rows="6" required>`)
		h.Text(form.Values["message"])
		h.Raw("</textarea>")
		fieldError(h, form.Errors["message"])

		h.Raw(`<button type="submit">Send message</button></form>`)
	})
}

// NotFound renders the 404 page.
func NotFound(what string) templ.Component {
	return templates.Component(func(_ context.Context, h *templates.Writer) {
		h.Elem("h1", "", "Not found")
		h.Elem("p", "", "We couldn't find that "+what+".")
		h.Link("/", "", "Go to the home page")
	})
}

func contactInput(h *templates.Writer, form vm.ContactForm, name, label, typ string, required bool) {
	h.Raw("<label")
	h.Attr("for", name)
	h.Raw(">")
	h.Text(label)
	h.Raw("</label><input")
	h.Attr("id", name)
	h.Attr("name", name)
	h.Attr("type", typ)
	h.Attr("value", form.Values[name])
	h.BoolAttr("required", required)
	h.Raw(">")
	fieldError(h, form.Errors[name])
}

func fieldError(h *templates.Writer, msg string) {
	if msg != "" {
		h.Elem("p", "field-error", msg)
	}
}

func serviceGrid(h *templates.Writer, services []vm.ServiceCard) {
	h.Open("div", "grid")
	for _, s := range services {
		h.Open("div", "card service")
		if s.Icon != "" {
			h.Elem("span", "icon "+s.Icon, "")
		}
		h.Elem("h3", "", s.Title)
		h.Elem("p", "", s.Summary)
		h.Link(s.DetailURL, "more", "Learn more")
		h.Close("div")
	}
	h.Close("div")
}

func blogGrid(h *templates.Writer, posts []vm.BlogCard) {
	h.Open("div", "grid")
	for _, p := range posts {
		h.Open("article", "card blog")
		if p.Image != "" {
			image(h, p.Image, p.Title, "thumb")
		}
		h.Raw("<h3>")
		h.Link(p.URL, "", p.Title)
		h.Raw("</h3>")
		byline(h, p)
		h.Elem("p", "", p.Excerpt)
		h.Close("article")
	}
	h.Close("div")
}

func testimonialCard(h *templates.Writer, t vm.TestimonialCard) {
	h.Open("blockquote", "card testimonial")
	h.Raw(`<span class="stars" aria-label="`)
	h.Int(t.Stars)
	h.Raw(` out of 5">`)
	h.Text(strings.Repeat("★", t.Stars) + strings.Repeat("☆", 5-t.Stars))
	h.Raw("</span>")
	h.Elem("p", "", t.Quote)
	h.Open("footer", "")
	h.Elem("strong", "", t.Name)
	if role := joinNonEmpty(", ", t.Position, t.Company); role != "" {
		h.Elem("span", "", role)
	}
	h.Close("footer")
	h.Close("blockquote")
}

func byline(h *templates.Writer, p vm.BlogCard) {
	if line := joinNonEmpty(" · ", p.Author, p.Date); line != "" {
		h.Elem("p", "byline", line)
	}
}

func tags(h *templates.Writer, tags []string) {
	if len(tags) == 0 {
		return
	}
	h.Open("ul", "tags")
	for _, t := range tags {
		h.Elem("li", "", t)
	}
	h.Close("ul")
}

func image(h *templates.Writer, src, alt, class string) {
	h.Raw("<img")
	h.URLAttr("src", src)
	h.Attr("alt", alt)
	if class != "" {
		h.Attr("class", class)
	}
	h.Raw(` loading="lazy">`)
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
