package handlers

import (
	"fmt"
	"strconv"

	"github.com/giygas/formulary-browser/datasets"
	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/pagination"
	"github.com/giygas/formulary-browser/search"
	"github.com/giygas/formulary-browser/session"
)

const (
	maxLimit = 200
	maxPage  = 1000
)

// SearchResponse is one windowed result page of a stateless search
type SearchResponse struct {
	Dataset       string `json:"dataset"`
	Query         string `json:"query"`
	Category      string `json:"category,omitempty"`
	FavoritesOnly bool   `json:"favoritesOnly,omitempty"`
	Total         int    `json:"total"`
	Count         int    `json:"count"`
	HasMore       bool   `json:"hasMore"`
	Records       []any  `json:"records"`
	EmptyMessage  string `json:"emptyMessage,omitempty"`
}

// intParam parses an optional integer query parameter within [lo, hi].
func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("value %d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

// window returns a window of size limit after page-1 load-more steps.
func window(limit, page int) pagination.Window {
	w := pagination.New(limit)
	for range page - 1 {
		w.LoadMore(w.Cursor() + limit)
	}
	return w
}

// emptyResponse answers a search whose text failed the content checks.
func emptyResponse(name datasets.Name, q search.Query, favoritesOnly bool) SearchResponse {
	return SearchResponse{
		Dataset:       string(name),
		Query:         q.Text,
		Category:      q.Category,
		FavoritesOnly: favoritesOnly,
		Records:       []any{},
		EmptyMessage:  session.EmptyMessages[string(name)],
	}
}

func (h *HTTPHandlerImpl) search(name datasets.Name, q search.Query, favoritesOnly bool, w pagination.Window) (SearchResponse, error) {
	if favoritesOnly && name != datasets.Formulary {
		return SearchResponse{}, session.ErrNoFavoritesView
	}

	switch name {
	case datasets.Formulary:
		records := h.dataStore.GetFormulary()
		if favoritesOnly {
			records = search.Where(records, func(r entities.FormularyRecord) bool { return h.favorites.IsFavorite(string(r.ID)) })
		}
		resp, err := searchRecords(records, h.registry.Formulary, q, w, session.PresentFormulary(h.favorites))
		resp.FavoritesOnly = favoritesOnly
		if favoritesOnly && resp.Total == 0 && q.Blank() {
			resp.EmptyMessage = "No favorites yet"
		}
		return resp, err
	case datasets.Antibiotics:
		return searchRecords(h.dataStore.GetAntibiotics(), h.registry.Antibiotics, q, w, nil)
	case datasets.Dilution:
		return searchRecords(h.dataStore.GetDilutions(), h.registry.Dilution, q, w, nil)
	case datasets.Paediatric:
		return searchRecords(h.dataStore.GetPaediatric(), h.registry.Paediatric, q, w, session.PresentPaediatric)
	case datasets.FrankShann:
		return searchRecords(h.dataStore.GetFrankShann(), h.registry.FrankShann, q, w, nil)
	case datasets.Counseling:
		return searchRecords(h.dataStore.GetCounseling(), h.registry.Counseling, q, w, session.PresentCounseling)
	}
	return SearchResponse{}, fmt.Errorf("%w: %s", datasets.ErrUnknownDataset, name)
}

func searchRecords[R entities.Record](records []R, spec search.Spec[R], q search.Query, w pagination.Window, present func(R) any) (SearchResponse, error) {
	if spec.Category == nil && q.HasCategory() {
		return SearchResponse{}, fmt.Errorf("%w: %s", session.ErrNoCategories, spec.Dataset)
	}

	results := search.Filter(records, q, spec)
	visible := pagination.Apply(w, results)

	out := make([]any, len(visible))
	for i, r := range visible {
		if present != nil {
			out[i] = present(r)
		} else {
			out[i] = r
		}
	}

	resp := SearchResponse{
		Dataset:  spec.Dataset,
		Query:    q.Text,
		Category: q.Category,
		Total:    len(results),
		Count:    len(visible),
		HasMore:  w.HasMore(len(results)),
		Records:  out,
	}
	if len(results) == 0 {
		resp.EmptyMessage = session.EmptyMessages[spec.Dataset]
	}
	return resp, nil
}

func (h *HTTPHandlerImpl) categorized(name datasets.Name) bool {
	return h.categories(name) != nil
}

func (h *HTTPHandlerImpl) categories(name datasets.Name) []string {
	switch name {
	case datasets.Formulary:
		return search.Categories(h.dataStore.GetFormulary(), h.registry.Formulary)
	case datasets.Antibiotics:
		return search.Categories(h.dataStore.GetAntibiotics(), h.registry.Antibiotics)
	case datasets.Dilution:
		return search.Categories(h.dataStore.GetDilutions(), h.registry.Dilution)
	case datasets.Paediatric:
		return search.Categories(h.dataStore.GetPaediatric(), h.registry.Paediatric)
	case datasets.FrankShann:
		return search.Categories(h.dataStore.GetFrankShann(), h.registry.FrankShann)
	case datasets.Counseling:
		return search.Categories(h.dataStore.GetCounseling(), h.registry.Counseling)
	}
	return nil
}

// present renders a record the way the browser views do.
func (h *HTTPHandlerImpl) present(rec entities.Record) any {
	switch r := rec.(type) {
	case entities.FormularyRecord:
		return session.PresentFormulary(h.favorites)(r)
	case entities.PaediatricMedication:
		return session.PresentPaediatric(r)
	case entities.CounselingRecord:
		return session.PresentCounseling(r)
	}
	return rec
}
