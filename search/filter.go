// Package search implements the per-dataset filter of the formulary browser:
// an exact category filter followed by a case-insensitive substring match
// over a configurable tuple of record fields.
package search

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// AllCategories disables the category filter.
const AllCategories = "All"

// ErrUnknownField is returned when a field name is not registered for a dataset.
var ErrUnknownField = errors.New("unknown search field")

// Query is the criteria applied to one view.
type Query struct {
	Text     string
	Category string
}

// Blank reports whether the text part matches everything.
func (q Query) Blank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// HasCategory reports whether the category filter is active.
func (q Query) HasCategory() bool {
	return q.Category != "" && q.Category != AllCategories
}

// Field is a named, searchable projection of a record.
type Field[R any] struct {
	Name   string
	Values func(R) []string
}

// Text builds a single-valued field.
func Text[R any](name string, get func(R) string) Field[R] {
	return Field[R]{Name: name, Values: func(r R) []string { return []string{get(r)} }}
}

// Strings builds a multi-valued field; a record matches when any value does.
func Strings[R any](name string, get func(R) []string) Field[R] {
	return Field[R]{Name: name, Values: get}
}

// Spec describes how one dataset is searched.
type Spec[R any] struct {
	Dataset  string
	Fields   []Field[R]     // searched, in order
	Category func(R) string // nil when the dataset has no category filter

	available []Field[R]
}

// NewSpec registers the fields of a dataset and selects the searched ones by
// name. It panics on unknown names since specs are built at init time.
func NewSpec[R any](dataset string, category func(R) string, available []Field[R], searched ...string) Spec[R] {
	s := Spec[R]{Dataset: dataset, Category: category, available: available}
	s, err := s.WithFields(searched)
	if err != nil {
		panic(err)
	}
	return s
}

// WithFields returns a copy of s searching the named fields instead.
func (s Spec[R]) WithFields(names []string) (Spec[R], error) {
	fields := make([]Field[R], 0, len(names))
	for _, name := range names {
		i := slices.IndexFunc(s.available, func(f Field[R]) bool { return strings.EqualFold(f.Name, name) })
		if i < 0 {
			return s, fmt.Errorf("%w %q for %s (available: %s)", ErrUnknownField, name, s.Dataset, strings.Join(s.AvailableFields(), ", "))
		}
		fields = append(fields, s.available[i])
	}
	if len(fields) == 0 {
		return s, fmt.Errorf("no search fields for %s", s.Dataset)
	}
	s.Fields = fields
	return s, nil
}

// FieldNames lists the searched fields.
func (s Spec[R]) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// AvailableFields lists every field that may be searched.
func (s Spec[R]) AvailableFields() []string {
	names := make([]string, len(s.available))
	for i, f := range s.available {
		names[i] = f.Name
	}
	return names
}

// Matches reports whether rec contains needle in one of the searched fields.
// needle must already be folded.
func (s Spec[R]) Matches(rec R, needle string, caser cases.Caser) bool {
	for _, f := range s.Fields {
		for _, v := range f.Values(rec) {
			if v != "" && strings.Contains(caser.String(v), needle) {
				return true
			}
		}
	}
	return false
}

// Filter returns the records matching q in dataset order. Blank text returns
// the category-filtered input unchanged; with no active category that is the
// input slice itself.
func Filter[R any](records []R, q Query, spec Spec[R]) []R {
	if q.HasCategory() && spec.Category != nil {
		records = Where(records, func(r R) bool { return spec.Category(r) == q.Category })
	}

	if q.Blank() {
		return records
	}

	// Caser values keep state and must not be shared between goroutines
	caser := cases.Fold()
	needle := caser.String(q.Text)

	return Where(records, func(r R) bool { return spec.Matches(r, needle, caser) })
}

// Where returns the records satisfying keep, preserving order.
func Where[R any](records []R, keep func(R) bool) []R {
	out := make([]R, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Categories returns AllCategories followed by the distinct non-empty
// category values, sorted. Datasets without a category yield nil.
func Categories[R any](records []R, spec Spec[R]) []string {
	if spec.Category == nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, r := range records {
		if c := spec.Category(r); c != "" {
			seen[c] = struct{}{}
		}
	}

	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	slices.Sort(cats)

	return append([]string{AllCategories}, cats...)
}
