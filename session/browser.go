package session

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/giygas/formulary-browser/datasets"
	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/debounce"
	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/search"
)

// ModeGuidelines is the link index tab; it has no searchable view.
const ModeGuidelines = "guidelines"

// Modes lists the tabs in display order.
func Modes() []string {
	modes := make([]string, 0, len(datasets.Names)+1)
	for _, n := range datasets.Names {
		modes = append(modes, string(n))
	}
	return append(modes, ModeGuidelines)
}

// EmptyMessages is shown by a view of each dataset when nothing matches.
var EmptyMessages = map[string]string{
	string(datasets.Formulary):   "No medications found",
	string(datasets.Antibiotics): "No antibiotics found",
	string(datasets.Dilution):    "No drugs found",
	string(datasets.Paediatric):  "No medications found",
	string(datasets.FrankShann):  "No results found",
	string(datasets.Counseling):  "No medications found",
}

// ErrUnknownEvent is returned for event types the browser does not handle.
var ErrUnknownEvent = errors.New("unknown event")

// ErrNoView is returned for view events while the guidelines tab is active.
var ErrNoView = errors.New("no searchable view in this mode")

// ErrNothingSelected is returned when toggle-favorite has neither an id nor
// a selected formulary record.
var ErrNothingSelected = errors.New("no record to toggle")

// ErrUnknownRecord is returned when toggling an id that is neither in the
// formulary nor already a favorite.
var ErrUnknownRecord = errors.New("record not found")

// EventType names a user input.
type EventType string

const (
	EventSetQuery            EventType = "set-query"
	EventFlush               EventType = "flush"
	EventSetCategory         EventType = "set-category"
	EventToggleFavorite      EventType = "toggle-favorite"
	EventSelect              EventType = "select"
	EventClearSelection      EventType = "clear-selection"
	EventLoadMore            EventType = "load-more"
	EventSwitchMode          EventType = "switch-mode"
	EventToggleFavoritesView EventType = "toggle-favorites-view"
)

// Event is one discrete input applied to the active view.
type Event struct {
	Type  EventType `json:"type"`
	Value string    `json:"value,omitempty"`
}

// Options configures new browsers.
type Options struct {
	PageSize  int
	Debounce  time.Duration
	AfterFunc debounce.AfterFunc // nil uses real timers
	Registry  *search.Registry   // nil uses the default fields
}

// BrowserSnapshot is the read model of a whole browser.
type BrowserSnapshot struct {
	ID         string               `json:"id"`
	Mode       string               `json:"mode"`
	Modes      []string             `json:"modes"`
	View       *Snapshot            `json:"view,omitempty"`
	Guidelines *entities.Guidelines `json:"guidelines,omitempty"`
	Favorites  []string             `json:"favorites"`
}

// Browser is the application shell of one client: a view per dataset, the
// active mode and the shared favorites store.
type Browser struct {
	mu         sync.Mutex
	id         string
	mode       string
	panes      map[string]Pane
	formulary  *View[entities.FormularyRecord]
	favorites  interfaces.FavoritesStore
	guidelines entities.Guidelines
	debouncer  *debounce.Debouncer
}

// NewBrowser builds the views over the loaded datasets, starting in the
// formulary tab.
func NewBrowser(id string, store interfaces.DataStore, favs interfaces.FavoritesStore, opts Options) *Browser {
	var dopts []debounce.Option
	if opts.AfterFunc != nil {
		dopts = append(dopts, debounce.WithAfterFunc(opts.AfterFunc))
	}
	d := debounce.New(opts.Debounce, dopts...)

	reg := opts.Registry
	if reg == nil {
		reg = search.DefaultRegistry()
	}

	b := &Browser{
		id:         id,
		mode:       string(datasets.Formulary),
		favorites:  favs,
		guidelines: store.GetGuidelines(),
		debouncer:  d,
	}

	b.formulary = NewView(ViewConfig[entities.FormularyRecord]{
		Dataset:      string(datasets.Formulary),
		Records:      store.GetFormulary(),
		Spec:         reg.Formulary,
		PageSize:     opts.PageSize,
		Debouncer:    d,
		EmptyMessage: EmptyMessages[string(datasets.Formulary)],
		Favorites:    favs,
		Present:      PresentFormulary(favs),
	})

	b.panes = map[string]Pane{
		string(datasets.Formulary): b.formulary,
		string(datasets.Antibiotics): NewView(ViewConfig[entities.AntibioticRecord]{
			Dataset:      string(datasets.Antibiotics),
			Records:      store.GetAntibiotics(),
			Spec:         reg.Antibiotics,
			PageSize:     opts.PageSize,
			Debouncer:    d,
			EmptyMessage: EmptyMessages[string(datasets.Antibiotics)],
		}),
		string(datasets.Dilution): NewView(ViewConfig[entities.DilutionRecord]{
			Dataset:      string(datasets.Dilution),
			Records:      store.GetDilutions(),
			Spec:         reg.Dilution,
			PageSize:     opts.PageSize,
			Debouncer:    d,
			EmptyMessage: EmptyMessages[string(datasets.Dilution)],
		}),
		string(datasets.Paediatric): NewView(ViewConfig[entities.PaediatricMedication]{
			Dataset:      string(datasets.Paediatric),
			Records:      store.GetPaediatric(),
			Spec:         reg.Paediatric,
			PageSize:     opts.PageSize,
			Debouncer:    d,
			EmptyMessage: EmptyMessages[string(datasets.Paediatric)],
			Present:      PresentPaediatric,
		}),
		string(datasets.FrankShann): NewView(ViewConfig[entities.FrankShannRecord]{
			Dataset:      string(datasets.FrankShann),
			Records:      store.GetFrankShann(),
			Spec:         reg.FrankShann,
			PageSize:     opts.PageSize,
			Debouncer:    d,
			EmptyMessage: EmptyMessages[string(datasets.FrankShann)],
		}),
		string(datasets.Counseling): NewView(ViewConfig[entities.CounselingRecord]{
			Dataset:      string(datasets.Counseling),
			Records:      store.GetCounseling(),
			Spec:         reg.Counseling,
			PageSize:     opts.PageSize,
			Debouncer:    d,
			EmptyMessage: EmptyMessages[string(datasets.Counseling)],
			Present:      PresentCounseling,
		}),
	}

	return b
}

// ID returns the session id of the browser.
func (b *Browser) ID() string { return b.id }

// Mode returns the active tab.
func (b *Browser) Mode() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mode
}

// Pane returns the view of a dataset.
func (b *Browser) Pane(dataset string) (Pane, bool) {
	p, ok := b.panes[dataset]
	return p, ok
}

// Formulary returns the formulary view.
func (b *Browser) Formulary() *View[entities.FormularyRecord] { return b.formulary }

// active returns the view of the current mode (caller holds b.mu).
func (b *Browser) activeLocked() (Pane, error) {
	p, ok := b.panes[b.mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoView, b.mode)
	}
	return p, nil
}

// Dispatch applies one event. Events are serialized per browser.
func (b *Browser) Dispatch(ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ev.Type == EventSwitchMode {
		return b.switchModeLocked(ev.Value)
	}
	if ev.Type == EventToggleFavorite {
		return b.toggleFavoriteLocked(ev.Value)
	}

	pane, err := b.activeLocked()
	if err != nil {
		return err
	}

	switch ev.Type {
	case EventSetQuery:
		pane.SetQuery(ev.Value)
	case EventFlush:
		pane.Flush()
	case EventSetCategory:
		return pane.SetCategory(ev.Value)
	case EventSelect:
		if ev.Value == "" {
			pane.ClearSelection()
			return nil
		}
		pane.Select(ev.Value)
	case EventClearSelection:
		pane.ClearSelection()
	case EventLoadMore:
		pane.LoadMore()
	case EventToggleFavoritesView:
		on := !pane.FavoritesOnly()
		if ev.Value != "" {
			v, err := strconv.ParseBool(ev.Value)
			if err != nil {
				return fmt.Errorf("invalid favorites view value %q: %w", ev.Value, err)
			}
			on = v
		}
		return pane.SetFavoritesOnly(on)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return nil
}

func (b *Browser) switchModeLocked(value string) error {
	mode := ModeGuidelines
	if value != ModeGuidelines {
		name, err := datasets.ParseName(value)
		if err != nil {
			return err
		}
		mode = string(name)
	}

	if mode == b.mode {
		return nil
	}
	b.mode = mode
	if p, ok := b.panes[mode]; ok {
		p.ResetWindow()
	}
	return nil
}

// toggleFavoriteLocked toggles id, or the selected formulary record when id
// is empty. Stale favorites can still be removed after a dataset reload.
func (b *Browser) toggleFavoriteLocked(id string) error {
	if id == "" {
		selected, ok := b.formulary.SelectedID()
		if !ok {
			return ErrNothingSelected
		}
		id = selected
	}
	if !b.favorites.IsFavorite(id) && !b.formulary.Contains(id) {
		return fmt.Errorf("%w: %s", ErrUnknownRecord, id)
	}
	b.favorites.Toggle(id)
	b.formulary.Refresh()
	return nil
}

// Snapshot returns the state of the active tab.
func (b *Browser) Snapshot() BrowserSnapshot {
	b.mu.Lock()
	mode := b.mode
	pane, hasPane := b.panes[mode]
	b.mu.Unlock()

	snap := BrowserSnapshot{
		ID:        b.id,
		Mode:      mode,
		Modes:     Modes(),
		Favorites: b.favorites.IDs(),
	}
	if hasPane {
		view := pane.Snapshot()
		snap.View = &view
	} else {
		g := b.guidelines
		snap.Guidelines = &g
	}
	return snap
}

// Close cancels every pending debounced query.
func (b *Browser) Close() {
	b.debouncer.Stop()
}
