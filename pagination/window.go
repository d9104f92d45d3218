// Package pagination implements the growing visible-count window over a
// filtered result sequence.
package pagination

// DefaultPageSize is the initial visible count.
const DefaultPageSize = 20

// Window is a visible-count cursor. It starts at one page and grows by a page
// on each LoadMore, never past the length of the sequence it is applied to.
// The zero value is not usable; use New.
type Window struct {
	pageSize int
	count    int
}

// New returns a window of the given page size; non-positive sizes use
// DefaultPageSize.
func New(pageSize int) Window {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return Window{pageSize: pageSize, count: pageSize}
}

// PageSize returns the page size.
func (w Window) PageSize() int { return w.pageSize }

// Cursor returns the raw visible count.
func (w Window) Cursor() int { return w.count }

// VisibleCount returns how many of total elements are shown.
func (w Window) VisibleCount(total int) int {
	return min(w.count, total)
}

// HasMore reports whether LoadMore would reveal more of total elements.
func (w Window) HasMore(total int) bool {
	return w.count < total
}

// LoadMore grows the cursor by one page. It is a no-op once every element
// is visible and reports whether the cursor moved.
func (w *Window) LoadMore(total int) bool {
	if w.count >= total {
		return false
	}
	w.count = min(w.count+w.pageSize, total)
	return true
}

// Reset returns the cursor to a single page.
func (w *Window) Reset() {
	w.count = w.pageSize
}

// Apply returns the visible prefix of seq.
func Apply[T any](w Window, seq []T) []T {
	return seq[:w.VisibleCount(len(seq))]
}
