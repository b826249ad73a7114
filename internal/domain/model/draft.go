package model

import "strings"

// FileAttachment is a file selected in a form but not yet uploaded.
type FileAttachment struct {
	Field       string // Multipart field name, e.g. "image" or "images".
	Filename    string
	ContentType string
	Data        []byte
}

// Draft is transient form state for a resource being created or edited.
// Text fields live in Fields, array fields (tags, features) in Lists, and
// typed scalars in Flags and Numbers so JSON bodies carry the right types.
type Draft struct {
	Fields  map[string]string
	Lists   map[string][]string
	Flags   map[string]bool
	Numbers map[string]int
	Files   []FileAttachment
}

// NewDraft returns an empty Draft with initialised maps.
func NewDraft() Draft {
	return Draft{
		Fields:  map[string]string{},
		Lists:   map[string][]string{},
		Flags:   map[string]bool{},
		Numbers: map[string]int{},
	}
}

// Get returns the trimmed value of a text field.
func (d Draft) Get(name string) string {
	return strings.TrimSpace(d.Fields[name])
}

// HasFiles reports whether the draft carries at least one attachment.
func (d Draft) HasFiles() bool {
	return len(d.Files) > 0
}
