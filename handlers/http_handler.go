// Package handlers provides HTTP request handlers for the formulary browser API.
// This file implements the HTTPHandler interface with dependency injection.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/giygas/formulary-browser/datasets"
	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
	"github.com/giygas/formulary-browser/pagination"
	"github.com/giygas/formulary-browser/search"
	"github.com/giygas/formulary-browser/session"
	"github.com/giygas/formulary-browser/validation"
)

// SessionManager is the part of session.Manager the handlers use.
type SessionManager interface {
	Create() (*session.Browser, error)
	Get(id string) (*session.Browser, error)
	Delete(id string) error
}

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore interfaces.DataStore
	validator interfaces.DataValidator
	favorites interfaces.FavoritesStore
	sessions  SessionManager
	health    interfaces.HealthChecker
	registry  *search.Registry
	pageSize  int
}

var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// Options carries the optional handler dependencies.
type Options struct {
	Health   interfaces.HealthChecker
	Registry *search.Registry
	PageSize int
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(
	dataStore interfaces.DataStore,
	validator interfaces.DataValidator,
	favorites interfaces.FavoritesStore,
	sessions SessionManager,
	opts Options,
) interfaces.HTTPHandler {
	h := &HTTPHandlerImpl{
		dataStore: dataStore,
		validator: validator,
		favorites: favorites,
		sessions:  sessions,
		health:    opts.Health,
		registry:  opts.Registry,
		pageSize:  opts.PageSize,
	}
	if h.registry == nil {
		h.registry = search.DefaultRegistry()
	}
	if h.pageSize <= 0 {
		h.pageSize = pagination.DefaultPageSize
	}
	return h
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	System map[string]any `json:"system"`
}

// DatasetInfo describes one searchable dataset
type DatasetInfo struct {
	Name         string            `json:"name"`
	Records      int               `json:"records"`
	Categorized  bool              `json:"categorized"`
	SearchFields []string          `json:"searchFields"`
	Quality      any               `json:"quality,omitempty"`
	Metadata     entities.Metadata `json:"metadata,omitempty"`
}

// ToggleResponse reports the favorite state after a toggle
type ToggleResponse struct {
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
	Count    int    `json:"count"`
}

// FavoritesResponse lists the favorite ids and the formulary records they name
type FavoritesResponse struct {
	IDs     []string `json:"ids"`
	Records []any    `json:"records"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, code, errorResponse)
}

// datasetParam resolves the {dataset} URL parameter, writing a 404 when it
// names no dataset.
func (h *HTTPHandlerImpl) datasetParam(w http.ResponseWriter, r *http.Request) (datasets.Name, bool) {
	raw := chi.URLParam(r, "dataset")
	name, err := datasets.ParseName(raw)
	if err != nil {
		logging.Warn("Unusual user input", "dataset", raw)
		h.RespondWithError(w, http.StatusNotFound, "Dataset not found")
		return "", false
	}
	return name, true
}

// ListDatasets returns every dataset with its size and search fields
func (h *HTTPHandlerImpl) ListDatasets(w http.ResponseWriter, r *http.Request) {
	counts := h.dataStore.Counts()
	fields := h.registry.FieldNames()
	report := h.dataStore.GetReport()

	infos := make([]DatasetInfo, 0, len(datasets.Names))
	for _, name := range datasets.Names {
		info := DatasetInfo{
			Name:         string(name),
			Records:      counts[string(name)],
			Categorized:  h.categorized(name),
			SearchFields: fields[string(name)],
			Metadata:     h.dataStore.GetMetadata(string(name)),
		}
		if q, ok := report.Datasets[string(name)]; ok {
			info.Quality = q
		}
		infos = append(infos, info)
	}

	h.RespondWithJSON(w, http.StatusOK, infos)
}

// SearchDataset filters a dataset without any session state.
// Query parameters: q, category, page (1-based, cumulative), limit, favorites.
func (h *HTTPHandlerImpl) SearchDataset(w http.ResponseWriter, r *http.Request) {
	name, ok := h.datasetParam(w, r)
	if !ok {
		return
	}

	params := r.URL.Query()
	q := search.Query{Text: params.Get("q"), Category: params.Get("category")}

	unsafe := false
	if err := h.validator.ValidateQuery(q.Text); err != nil {
		if !errors.Is(err, validation.ErrUnsafeQuery) {
			h.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		unsafe = true
	}
	if err := h.validator.ValidateQuery(q.Category); err != nil {
		if !errors.Is(err, validation.ErrUnsafeQuery) {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid category: "+err.Error())
			return
		}
		unsafe = true
	}

	limit, err := intParam(params.Get("limit"), h.pageSize, 1, maxLimit)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	page, err := intParam(params.Get("page"), 1, 1, maxPage)
	if err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid page number")
		return
	}

	favoritesOnly := false
	if raw := params.Get("favorites"); raw != "" {
		favoritesOnly, err = strconv.ParseBool(raw)
		if err != nil {
			h.RespondWithError(w, http.StatusBadRequest, "Invalid favorites flag")
			return
		}
	}

	if unsafe && !(favoritesOnly && name != datasets.Formulary) {
		logging.Warn("Unusual user input", "dataset", string(name), "query", q.Text, "category", q.Category)
		h.RespondWithJSON(w, http.StatusOK, emptyResponse(name, q, favoritesOnly))
		return
	}

	resp, err := h.search(name, q, favoritesOnly, window(limit, page))
	if err != nil {
		h.respondWithBrowseError(w, err)
		return
	}

	// Always return 200 with results array (empty if no matches)
	h.RespondWithJSON(w, http.StatusOK, resp)
}

// ListCategories returns the category filter options of a dataset
func (h *HTTPHandlerImpl) ListCategories(w http.ResponseWriter, r *http.Request) {
	name, ok := h.datasetParam(w, r)
	if !ok {
		return
	}

	categories := h.categories(name)
	if categories == nil {
		categories = []string{}
	}
	h.RespondWithJSON(w, http.StatusOK, map[string]any{
		"dataset":    name,
		"categories": categories,
	})
}

// FindRecord returns one record by id
func (h *HTTPHandlerImpl) FindRecord(w http.ResponseWriter, r *http.Request) {
	name, ok := h.datasetParam(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateID(id); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, exists := h.dataStore.FindRecord(string(name), entities.ID(id))
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Record not found")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, h.present(rec))
}

// ListGuidelines returns the guideline link index
func (h *HTTPHandlerImpl) ListGuidelines(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, http.StatusOK, h.dataStore.GetGuidelines())
}

// FindGuidelineSection returns one guideline section by key
func (h *HTTPHandlerImpl) FindGuidelineSection(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "section")
	section, ok := h.dataStore.GetGuidelines().Section(key)
	if !ok {
		h.RespondWithError(w, http.StatusNotFound, "Guideline section not found")
		return
	}
	h.RespondWithJSON(w, http.StatusOK, section)
}

// ListFavorites returns the favorite ids and their formulary records
func (h *HTTPHandlerImpl) ListFavorites(w http.ResponseWriter, r *http.Request) {
	ids := h.favorites.IDs()
	records := make([]any, 0, len(ids))
	for _, id := range ids {
		if rec, ok := h.dataStore.FindRecord(string(datasets.Formulary), entities.ID(id)); ok {
			records = append(records, h.present(rec))
		}
	}
	h.RespondWithJSON(w, http.StatusOK, FavoritesResponse{IDs: ids, Records: records})
}

// ToggleFavorite flips the favorite state of a formulary record
func (h *HTTPHandlerImpl) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateID(id); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, ok := h.dataStore.FindRecord(string(datasets.Formulary), entities.ID(id)); !ok && !h.favorites.IsFavorite(id) {
		h.RespondWithError(w, http.StatusNotFound, "Record not found")
		return
	}

	favorite := h.favorites.Toggle(id)
	h.RespondWithJSON(w, http.StatusOK, ToggleResponse{ID: id, Favorite: favorite, Count: h.favorites.Len()})
}

// CreateSession starts a browser session and returns its first snapshot
func (h *HTTPHandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	b, err := h.sessions.Create()
	if err != nil {
		if errors.Is(err, session.ErrTooManySessions) {
			h.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		logging.Error("Failed to create session", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.RespondWithJSON(w, http.StatusCreated, b.Snapshot())
}

// GetSession returns the snapshot of a session
func (h *HTTPHandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	b, ok := h.sessionParam(w, r)
	if !ok {
		return
	}
	h.RespondWithJSON(w, http.StatusOK, b.Snapshot())
}

// PostSessionEvent applies one event to a session and returns the new snapshot
func (h *HTTPHandlerImpl) PostSessionEvent(w http.ResponseWriter, r *http.Request) {
	b, ok := h.sessionParam(w, r)
	if !ok {
		return
	}

	var ev session.Event
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&ev); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, "Invalid event body")
		return
	}

	if err := h.validateEvent(ev); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := b.Dispatch(ev); err != nil {
		h.respondWithBrowseError(w, err)
		return
	}

	h.RespondWithJSON(w, http.StatusOK, b.Snapshot())
}

// DeleteSession stops a session
func (h *HTTPHandlerImpl) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Delete(id); err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandlerImpl) sessionParam(w http.ResponseWriter, r *http.Request) (*session.Browser, bool) {
	b, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondWithError(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return b, true
}

// validateEvent checks free text and ids carried by an event.
func (h *HTTPHandlerImpl) validateEvent(ev session.Event) error {
	switch ev.Type {
	case session.EventSetQuery, session.EventSetCategory:
		// unsafe text only ever runs as a substring filter
		if err := h.validator.ValidateQuery(ev.Value); err != nil && !errors.Is(err, validation.ErrUnsafeQuery) {
			return err
		}
		return nil
	case session.EventSelect, session.EventToggleFavorite:
		if ev.Value == "" {
			return nil
		}
		return h.validator.ValidateID(ev.Value)
	}
	return nil
}

// respondWithBrowseError maps browsing errors to client errors.
func (h *HTTPHandlerImpl) respondWithBrowseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownRecord):
		h.RespondWithError(w, http.StatusNotFound, "Record not found")
	case errors.Is(err, session.ErrUnknownEvent),
		errors.Is(err, datasets.ErrUnknownDataset),
		errors.Is(err, session.ErrNoView),
		errors.Is(err, session.ErrNoCategories),
		errors.Is(err, session.ErrNoFavoritesView),
		errors.Is(err, session.ErrNothingSelected),
		errors.Is(err, strconv.ErrSyntax):
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		logging.Error("Failed to apply browse request", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := "healthy", map[string]any{}, http.StatusOK
	if h.health != nil {
		status, data, httpStatus = h.health.HealthCheck()
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status: status,
		Data:   data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
			"time": time.Now().UTC().Format(time.RFC3339),
		},
	}

	h.RespondWithJSON(w, httpStatus, response)
}
