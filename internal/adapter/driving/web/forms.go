package web

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

// formSpec lists how the inputs of one admin form map onto a Draft.
type formSpec struct {
	text    []string // Fields, copied as typed.
	lines   []string // Lists, one entry per line.
	commas  []string // Lists, comma separated.
	flags   []string // Flags, checkbox present means true.
	numbers []string // Numbers, kept in Fields when not an integer.
	files   []string // Files, every non-empty part of the field.
}

var formSpecs = map[model.ResourceKind]formSpec{
	model.ResourceServices: {
		text:  []string{"title", "description", "icon"},
		lines: []string{"features"},
		flags: []string{"is_active"},
		files: []string{"image"},
	},
	model.ResourceBlogs: {
		text:   []string{"title", "excerpt", "content", "author"},
		commas: []string{"tags"},
		flags:  []string{"is_published"},
		files:  []string{"image"},
	},
	model.ResourceTestimonials: {
		text:    []string{"name", "position", "company", "testimonial"},
		numbers: []string{"rating"},
		flags:   []string{"is_active"},
		files:   []string{"image"},
	},
	model.ResourceGallery: {
		text:  []string{"title", "description", "category"},
		files: []string{"images"},
	},
}

// parseDraft reads a parsed admin form into a Draft for kind.
func parseDraft(r *http.Request, kind model.ResourceKind) (model.Draft, error) {
	spec := formSpecs[kind]
	draft := model.NewDraft()

	for _, name := range spec.text {
		draft.Fields[name] = strings.TrimSpace(r.PostFormValue(name))
	}
	for _, name := range spec.lines {
		draft.Lists[name] = splitList(r.PostFormValue(name), "\n")
	}
	for _, name := range spec.commas {
		draft.Lists[name] = splitList(r.PostFormValue(name), ",")
	}
	for _, name := range spec.flags {
		draft.Flags[name] = r.PostFormValue(name) != ""
	}
	for _, name := range spec.numbers {
		raw := strings.TrimSpace(r.PostFormValue(name))
		if n, err := strconv.Atoi(raw); err == nil {
			draft.Numbers[name] = n
		} else {
			draft.Fields[name] = raw
		}
	}

	if r.MultipartForm == nil {
		return draft, nil
	}
	for _, name := range spec.files {
		for _, fh := range r.MultipartForm.File[name] {
			if fh.Filename == "" || fh.Size == 0 {
				continue
			}
			att, err := readAttachment(name, fh)
			if err != nil {
				return draft, err
			}
			draft.Files = append(draft.Files, att)
		}
	}
	return draft, nil
}

func readAttachment(field string, fh *multipart.FileHeader) (model.FileAttachment, error) {
	f, err := fh.Open()
	if err != nil {
		return model.FileAttachment{}, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.FileAttachment{}, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return model.FileAttachment{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// draftValues flattens a draft back into form values so a rejected form can
// be shown again as the user typed it.
func draftValues(kind model.ResourceKind, draft model.Draft) map[string]string {
	spec := formSpecs[kind]
	values := map[string]string{}
	for k, v := range draft.Fields {
		values[k] = v
	}
	for _, name := range spec.lines {
		values[name] = strings.Join(draft.Lists[name], "\n")
	}
	for _, name := range spec.commas {
		values[name] = strings.Join(draft.Lists[name], ", ")
	}
	for _, name := range spec.flags {
		if draft.Flags[name] {
			values[name] = "true"
		}
	}
	for name, n := range draft.Numbers {
		values[name] = strconv.Itoa(n)
	}
	return values
}

func splitList(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
