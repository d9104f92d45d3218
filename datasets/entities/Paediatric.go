package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// PaediatricMedication is one entry of the paediatric protocol book.
type PaediatricMedication struct {
	ID                ID     `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	Indications       List   `json:"indications"`
	Dosing            Dosing `json:"dosing"`
	Route             List   `json:"route,omitempty"`
	Contraindications List   `json:"contraindications,omitempty"`
	Monitoring        List   `json:"monitoring,omitempty"`
	SideEffects       List   `json:"sideEffects,omitempty"`
	Notes             string `json:"notes,omitempty"`
}

func (r PaediatricMedication) RecordID() ID { return r.ID }

// FrankShannRecord is one drug of the Frank Shann paediatric dosing book.
type FrankShannRecord struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Dosage string `json:"dosage"`
}

func (r FrankShannRecord) RecordID() ID { return r.ID }

// DosingKind tags a DosingValue.
type DosingKind int

const (
	DosingLeaf DosingKind = iota + 1
	DosingSection
)

func (k DosingKind) String() string {
	switch k {
	case DosingLeaf:
		return "leaf"
	case DosingSection:
		return "section"
	default:
		return "unknown"
	}
}

// DosingLine is one sub-key of a dosing section.
type DosingLine struct {
	Key  string
	Text string
}

// Label renders the sub-key for display.
func (l DosingLine) Label() string { return Label(l.Key) }

// DosingValue is either a Leaf holding Text or a Section holding Lines.
type DosingValue struct {
	Kind  DosingKind
	Text  string
	Lines []DosingLine
}

// Leaf builds a leaf dosing value.
func Leaf(text string) DosingValue { return DosingValue{Kind: DosingLeaf, Text: text} }

// Section builds a section dosing value.
func Section(lines ...DosingLine) DosingValue { return DosingValue{Kind: DosingSection, Lines: lines} }

// DosingEntry is one dosing context (e.g. "neonates", "iv_infusion").
type DosingEntry struct {
	Key   string
	Value DosingValue
}

// Label renders the context key for display.
func (e DosingEntry) Label() string { return Label(e.Key) }

// Dosing is the ordered dosing document of a paediatric medication.
// Source order is kept; JSON objects are walked token by token for that.
type Dosing []DosingEntry

// Label turns a snake_case document key into display words.
func Label(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// Lookup returns the value stored under key.
func (d Dosing) Lookup(key string) (DosingValue, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return DosingValue{}, false
}

func (d *Dosing) UnmarshalJSON(b []byte) error {
	*d = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		// A bare string is a single leaf; any other shape is treated as absent.
		var s string
		if err := json.Unmarshal(b, &s); err == nil && s != "" {
			*d = Dosing{{Key: "dosing", Value: Leaf(s)}}
		}
		return nil
	}

	var out Dosing
	err := walkObject(b, func(key string, raw json.RawMessage) error {
		value, ok := decodeDosingValue(raw)
		if ok {
			out = append(out, DosingEntry{Key: key, Value: value})
		}
		return nil
	})
	if err != nil {
		return nil
	}
	*d = out
	return nil
}

func (d Dosing) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(e.Key)
		buf.Write(key)
		buf.WriteByte(':')

		switch e.Value.Kind {
		case DosingSection:
			buf.WriteByte('{')
			for j, line := range e.Value.Lines {
				if j > 0 {
					buf.WriteByte(',')
				}
				k, _ := json.Marshal(line.Key)
				v, _ := json.Marshal(line.Text)
				buf.Write(k)
				buf.WriteByte(':')
				buf.Write(v)
			}
			buf.WriteByte('}')
		default:
			v, _ := json.Marshal(e.Value.Text)
			buf.Write(v)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeDosingValue(raw json.RawMessage) (DosingValue, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return DosingValue{}, false
	}

	if raw[0] != '{' {
		text, ok := scalarText(raw)
		if !ok {
			return DosingValue{}, false
		}
		return Leaf(text), true
	}

	var lines []DosingLine
	err := walkObject(raw, func(key string, sub json.RawMessage) error {
		if text, ok := scalarText(sub); ok {
			lines = append(lines, DosingLine{Key: key, Text: text})
		}
		return nil
	})
	if err != nil {
		return DosingValue{}, false
	}
	return Section(lines...), true
}

// scalarText renders strings, numbers, booleans and string arrays as text.
func scalarText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", false
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '[':
		var parts []string
		if err := json.Unmarshal(raw, &parts); err != nil {
			return "", false
		}
		return strings.Join(parts, "; "), true
	case '{', 'n':
		return "", false
	default:
		return string(raw), true
	}
}

// walkObject calls fn for every member of the JSON object in b, in document order.
func walkObject(b []byte, fn func(key string, value json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		if err := fn(key, value); err != nil {
			return err
		}
	}

	_, err = dec.Token()
	return err
}
