package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/ericfisherdev/sentrysite/internal/domain/model"
)

// encodeMultipart writes draft as multipart/form-data. Array fields are
// JSON-encoded because multipart fields are flat strings; the backend
// parses them back with JSON.parse. Returns the body and its Content-Type,
// which carries the boundary.
func encodeMultipart(draft model.Draft) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, name := range sortedKeys(draft.Fields) {
		if err := w.WriteField(name, draft.Fields[name]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, name := range sortedKeys(draft.Lists) {
		values := draft.Lists[name]
		if values == nil {
			values = []string{}
		}
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, "", fmt.Errorf("encode list %s: %w", name, err)
		}
		if err := w.WriteField(name, string(encoded)); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, name := range sortedKeys(draft.Flags) {
		if err := w.WriteField(name, strconv.FormatBool(draft.Flags[name])); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, name := range sortedKeys(draft.Numbers) {
		if err := w.WriteField(name, strconv.Itoa(draft.Numbers[name])); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	for _, f := range draft.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.Field), escapeQuotes(f.Filename)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// encodeJSON flattens draft into a JSON-ready map. Files are ignored.
func encodeJSON(draft model.Draft) map[string]any {
	body := make(map[string]any, len(draft.Fields)+len(draft.Lists)+len(draft.Flags)+len(draft.Numbers))
	for k, v := range draft.Fields {
		body[k] = v
	}
	for k, v := range draft.Lists {
		if v == nil {
			v = []string{}
		}
		body[k] = v
	}
	for k, v := range draft.Flags {
		body[k] = v
	}
	for k, v := range draft.Numbers {
		body[k] = v
	}
	return body
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
