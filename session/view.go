// Package session holds the browser view-models: one View per dataset with
// its query, category, pagination window and selection, grouped into a
// Browser per client session.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/debounce"
	"github.com/giygas/formulary-browser/metrics"
	"github.com/giygas/formulary-browser/pagination"
	"github.com/giygas/formulary-browser/search"
)

// ErrNoCategories is returned when a category is set on a dataset without one.
var ErrNoCategories = errors.New("dataset has no categories")

// ErrNoFavoritesView is returned for the favorites view outside the formulary.
var ErrNoFavoritesView = errors.New("favorites view is only available in the formulary")

// Snapshot is the read model of one view.
type Snapshot struct {
	Dataset        string   `json:"dataset"`
	Query          string   `json:"query"`
	AppliedQuery   string   `json:"appliedQuery"`
	Pending        bool     `json:"pending"`
	Category       string   `json:"category,omitempty"`
	Categories     []string `json:"categories,omitempty"`
	FavoritesOnly  bool     `json:"favoritesOnly"`
	Total          int      `json:"total"`
	Visible        int      `json:"visible"`
	HasMore        bool     `json:"hasMore"`
	Records        []any    `json:"records"`
	Selected       any      `json:"selected,omitempty"`
	EmptyMessage   string   `json:"emptyMessage,omitempty"`
	Recomputations int      `json:"recomputations"`
}

// Pane is the dataset-independent face of a View.
type Pane interface {
	Dataset() string
	SetQuery(text string)
	Flush() bool
	SetCategory(category string) error
	SetFavoritesOnly(on bool) error
	FavoritesOnly() bool
	Refresh()
	LoadMore() bool
	ResetWindow()
	Select(id string) bool
	ClearSelection()
	SelectedID() (string, bool)
	Snapshot() Snapshot
	Stop()
}

// Favorites is the membership predicate a view needs.
type Favorites interface {
	IsFavorite(id string) bool
}

// ViewConfig configures a View.
type ViewConfig[R entities.Record] struct {
	Dataset      string
	Records      []R
	Spec         search.Spec[R]
	PageSize     int
	Debouncer    *debounce.Debouncer
	EmptyMessage string
	// Favorites enables the favorites-only view when set.
	Favorites Favorites
	// Present renders a record for snapshots; nil returns the record as is.
	Present func(R) any
}

// View is the view-model of one dataset. Its methods are safe for concurrent
// use; events are applied one at a time.
type View[R entities.Record] struct {
	mu sync.Mutex

	dataset      string
	records      []R
	spec         search.Spec[R]
	debouncer    *debounce.Debouncer
	emptyMessage string
	favorites    Favorites
	present      func(R) any
	categories   []string

	query         string
	applied       string
	queryGen      uint64
	category      string
	favoritesOnly bool

	results    []R
	window     pagination.Window
	selected   *R
	recomputes int
}

var _ Pane = (*View[entities.FormularyRecord])(nil)

// NewView builds a view showing the whole dataset.
func NewView[R entities.Record](cfg ViewConfig[R]) *View[R] {
	v := &View[R]{
		dataset:      cfg.Dataset,
		records:      cfg.Records,
		spec:         cfg.Spec,
		debouncer:    cfg.Debouncer,
		emptyMessage: cfg.EmptyMessage,
		favorites:    cfg.Favorites,
		present:      cfg.Present,
		categories:   search.Categories(cfg.Records, cfg.Spec),
		category:     search.AllCategories,
		window:       pagination.New(cfg.PageSize),
	}
	if v.debouncer == nil {
		v.debouncer = debounce.New(0)
	}
	if v.emptyMessage == "" {
		v.emptyMessage = "No results found"
	}
	v.results = v.records
	return v
}

func (v *View[R]) Dataset() string { return v.dataset }

func (v *View[R]) debounceKey() string { return v.dataset + ".query" }

// SetQuery updates the raw query at once and schedules the applied query.
// Only the last value of a burst reaches the filter.
func (v *View[R]) SetQuery(text string) {
	v.mu.Lock()
	v.query = text
	v.queryGen++
	gen := v.queryGen
	v.mu.Unlock()

	v.debouncer.Trigger(v.debounceKey(), func() { v.apply(gen, text) })
}

// apply is the debounced half of SetQuery. A callback from a superseded
// SetQuery is dropped.
func (v *View[R]) apply(gen uint64, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.queryGen || text == v.applied {
		return
	}
	v.applied = text
	v.recomputeLocked(true)
}

// Flush applies a pending query immediately.
func (v *View[R]) Flush() bool {
	return v.debouncer.Flush(v.debounceKey())
}

// SetCategory sets the exact-match category; "All" or "" clears it.
func (v *View[R]) SetCategory(category string) error {
	if v.spec.Category == nil {
		if category == "" || category == search.AllCategories {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrNoCategories, v.dataset)
	}
	if category == "" {
		category = search.AllCategories
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if category == v.category {
		return nil
	}
	v.category = category
	v.recomputeLocked(true)
	return nil
}

// SetFavoritesOnly switches between the full list and the favorites view.
func (v *View[R]) SetFavoritesOnly(on bool) error {
	if v.favorites == nil {
		if !on {
			return nil
		}
		return ErrNoFavoritesView
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if on == v.favoritesOnly {
		return nil
	}
	v.favoritesOnly = on
	v.recomputeLocked(true)
	return nil
}

func (v *View[R]) FavoritesOnly() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.favoritesOnly
}

// Refresh recomputes after the favorite set changed. The window is kept
// since the user's intent did not change.
func (v *View[R]) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.favoritesOnly {
		v.recomputeLocked(false)
	}
}

// recomputeLocked derives the result sequence from the current criteria.
func (v *View[R]) recomputeLocked(resetWindow bool) {
	records := v.records
	if v.favoritesOnly && v.favorites != nil {
		records = search.Where(records, func(r R) bool { return v.favorites.IsFavorite(string(r.RecordID())) })
	}
	v.results = search.Filter(records, search.Query{Text: v.applied, Category: v.category}, v.spec)

	if resetWindow {
		v.window.Reset()
	}
	v.recomputes++
	metrics.FilterRecomputations.WithLabelValues(v.dataset).Inc()
}

// LoadMore reveals one more page of results.
func (v *View[R]) LoadMore() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.window.LoadMore(len(v.results))
}

// ResetWindow shows a single page again.
func (v *View[R]) ResetWindow() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.window.Reset()
}

// Select shows the record with the given id. Unknown ids clear the selection.
func (v *View[R]) Select(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.selected = nil
	for i := range v.records {
		if string(v.records[i].RecordID()) == id {
			rec := v.records[i]
			v.selected = &rec
			return true
		}
	}
	return false
}

// Contains reports whether the dataset has a record with the given id,
// whatever the current filters.
func (v *View[R]) Contains(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.records {
		if string(v.records[i].RecordID()) == id {
			return true
		}
	}
	return false
}

func (v *View[R]) ClearSelection() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = nil
}

// SelectedID returns the id of the selected record.
func (v *View[R]) SelectedID() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		return "", false
	}
	return string((*v.selected).RecordID()), true
}

// Results returns the full filtered sequence.
func (v *View[R]) Results() []R {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.results
}

// Visible returns the windowed prefix of the results.
func (v *View[R]) Visible() []R {
	v.mu.Lock()
	defer v.mu.Unlock()
	return pagination.Apply(v.window, v.results)
}

// Selected returns the selected record.
func (v *View[R]) Selected() (R, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected == nil {
		var zero R
		return zero, false
	}
	return *v.selected, true
}

// Recomputations counts how often the result sequence was derived.
func (v *View[R]) Recomputations() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.recomputes
}

func (v *View[R]) Snapshot() Snapshot {
	pending := v.debouncer.Pending(v.debounceKey())

	v.mu.Lock()
	defer v.mu.Unlock()

	visible := pagination.Apply(v.window, v.results)
	records := make([]any, len(visible))
	for i, r := range visible {
		records[i] = v.render(r)
	}

	snap := Snapshot{
		Dataset:        v.dataset,
		Query:          v.query,
		AppliedQuery:   v.applied,
		Pending:        pending,
		Categories:     v.categories,
		FavoritesOnly:  v.favoritesOnly,
		Total:          len(v.results),
		Visible:        len(visible),
		HasMore:        v.window.HasMore(len(v.results)),
		Records:        records,
		Recomputations: v.recomputes,
	}
	if v.spec.Category != nil {
		snap.Category = v.category
	}
	if v.selected != nil {
		snap.Selected = v.render(*v.selected)
	}
	if len(v.results) == 0 {
		snap.EmptyMessage = v.emptyMessage
		if v.favoritesOnly && v.applied == "" {
			snap.EmptyMessage = "No favorites yet"
		}
	}
	return snap
}

func (v *View[R]) render(r R) any {
	if v.present == nil {
		return r
	}
	return v.present(r)
}

// Stop cancels the pending query of this view.
func (v *View[R]) Stop() {
	v.debouncer.Cancel(v.debounceKey())
}
