// Package templates holds the shared layout and components of the site.
// Components are plain templ.ComponentFunc values built on Writer.
package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// Writer writes markup and keeps the first error so components can be written
// top to bottom without checking every call.
type Writer struct {
	w   io.Writer
	err error
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes trusted markup as is.
func (h *Writer) Raw(s string) {
	if h.err != nil {
		return
	}
	_, h.err = io.WriteString(h.w, s)
}

// Text writes s HTML-escaped.
func (h *Writer) Text(s string) {
	h.Raw(templ.EscapeString(s))
}

// Int writes n as decimal text.
func (h *Writer) Int(n int) {
	h.Raw(strconv.Itoa(n))
}

// Attr writes ` name="value"` with value escaped.
func (h *Writer) Attr(name, value string) {
	h.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// URLAttr writes an href or src attribute, replacing unsafe schemes.
func (h *Writer) URLAttr(name, url string) {
	h.Attr(name, string(templ.URL(url)))
}

// BoolAttr writes ` name` when on is true.
func (h *Writer) BoolAttr(name string, on bool) {
	if on {
		h.Raw(" " + name)
	}
}

// Open writes `<tag class="class">`. An empty class is omitted.
func (h *Writer) Open(tag, class string) {
	h.Raw("<" + tag)
	if class != "" {
		h.Attr("class", class)
	}
	h.Raw(">")
}

// Close writes `</tag>`.
func (h *Writer) Close(tag string) {
	h.Raw("</" + tag + ">")
}

// Elem writes a complete element with escaped text content.
func (h *Writer) Elem(tag, class, text string) {
	h.Open(tag, class)
	h.Text(text)
	h.Close(tag)
}

// Link writes an anchor with escaped text.
func (h *Writer) Link(href, class, text string) {
	h.Raw("<a")
	h.URLAttr("href", href)
	if class != "" {
		h.Attr("class", class)
	}
	h.Raw(">")
	h.Text(text)
	h.Raw("</a>")
}

// Render renders a child component into the same stream.
func (h *Writer) Render(ctx context.Context, c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(ctx, h.w)
}

// Err returns the first write error.
func (h *Writer) Err() error {
	return h.err
}

// Component adapts a Writer-based body into a templ.Component.
func Component(body func(ctx context.Context, h *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewWriter(w)
		body(ctx, h)
		return h.Err()
	})
}
