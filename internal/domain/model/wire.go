package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ID is an opaque record identifier. The backend may send it as a JSON string
// or a number; both decode to the same text.
type ID string

// UnmarshalJSON accepts a string, a number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*id = ""
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("id must be a string or a number, got %s", trimmed)
	}
	*id = ID(n.String())
	return nil
}

// String returns the identifier as text.
func (id ID) String() string {
	return string(id)
}

// Flag is a boolean that also decodes from 0/1 and from quoted "true"/"false",
// which SQL-backed APIs commonly send.
type Flag bool

// UnmarshalJSON accepts true/false, 0/1, their quoted forms, and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	v := strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`))
	switch v {
	case "true", "1":
		*f = true
	case "false", "0", "", "null":
		*f = false
	default:
		return fmt.Errorf("flag must be a boolean or 0/1, got %s", data)
	}
	return nil
}
