// Package entities holds the read-only record types of every formulary dataset.
package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is implemented by every dataset entry.
type Record interface {
	RecordID() ID
}

// ID is a record identifier. Source documents use both strings ("drug-12")
// and bare numbers, so both decode into the same string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || string(b) == "null":
		*id = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("invalid id %s: %w", b, err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = ID(n.String())
	return nil
}

// List is an ordered list of strings. A lone string is accepted as a
// one-element list; anything else is treated as absent.
type List []string

func (l *List) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		*l = nil
		return nil
	}

	switch b[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			*l = nil
			return nil
		}
		out := make(List, 0, len(raw))
		for _, item := range raw {
			var s string
			if err := json.Unmarshal(item, &s); err == nil {
				out = append(out, s)
			}
		}
		*l = out
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil || s == "" {
			*l = nil
			return nil
		}
		*l = List{s}
	default:
		*l = nil
	}
	return nil
}

// Metadata is the free-form header some dataset documents carry
// (author, edition, disclaimer, totals).
type Metadata map[string]any
