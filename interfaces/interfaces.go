// Package interfaces defines core abstractions for the formulary browser
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/formulary-browser/datasets/entities"
)

// DatasetQuality summarizes presence problems found in one dataset
type DatasetQuality struct {
	Records      int      `json:"records"`
	DuplicateIDs []string `json:"duplicate_ids"`
	MissingIDs   int      `json:"missing_ids"`
	MissingNames int      `json:"missing_names"`
}

// DataQualityReport provides a summary of data quality issues per dataset
type DataQualityReport struct {
	Datasets map[string]DatasetQuality `json:"datasets"`
}

// HasIssues reports whether any dataset has a problem worth logging
func (r *DataQualityReport) HasIssues() bool {
	if r == nil {
		return false
	}
	for _, q := range r.Datasets {
		if len(q.DuplicateIDs) > 0 || q.MissingIDs > 0 || q.MissingNames > 0 {
			return true
		}
	}
	return false
}

// DataStore defines the contract for read access to the loaded datasets.
// Datasets are published once at startup and never mutated afterwards.
type DataStore interface {
	GetFormulary() []entities.FormularyRecord
	GetAntibiotics() []entities.AntibioticRecord
	GetDilutions() []entities.DilutionRecord
	GetPaediatric() []entities.PaediatricMedication
	GetFrankShann() []entities.FrankShannRecord
	GetCounseling() []entities.CounselingRecord
	GetGuidelines() entities.Guidelines
	GetMetadata(dataset string) entities.Metadata
	FindRecord(dataset string, id entities.ID) (entities.Record, bool)
	Counts() map[string]int
	GetReport() *DataQualityReport
	GetLoadedAt() time.Time
	GetServerStartTime() time.Time
	IsLoaded() bool
}

// Loader defines the contract for reading datasets from their source documents.
type Loader interface {
	// Load returns a usable bundle even when some documents were missing or
	// malformed; those problems are reported in the error.
	Load(ctx context.Context) (*entities.Bundle, error)
}

// FavoritesStore defines the contract for the persisted favorite set.
type FavoritesStore interface {
	Toggle(id string) bool
	IsFavorite(id string) bool
	IDs() []string
	Len() int
}

// Scheduler defines the contract for background job scheduling.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	ListDatasets(w http.ResponseWriter, r *http.Request)
	SearchDataset(w http.ResponseWriter, r *http.Request)
	ListCategories(w http.ResponseWriter, r *http.Request)
	FindRecord(w http.ResponseWriter, r *http.Request)
	ListGuidelines(w http.ResponseWriter, r *http.Request)
	FindGuidelineSection(w http.ResponseWriter, r *http.Request)
	ListFavorites(w http.ResponseWriter, r *http.Request)
	ToggleFavorite(w http.ResponseWriter, r *http.Request)
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	PostSessionEvent(w http.ResponseWriter, r *http.Request)
	DeleteSession(w http.ResponseWriter, r *http.Request)
	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ReportDataQuality generates a data quality report with all issues found
	ReportDataQuality(bundle *entities.Bundle) *DataQualityReport

	// ValidateQuery validates free-text search input
	ValidateQuery(input string) error

	// ValidateID validates record identifiers taken from the URL
	ValidateID(input string) error
}
