// Package health provides health checking functionality for the formulary browser.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/formulary-browser/datasets"
	"github.com/giygas/formulary-browser/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(dataStore interfaces.DataStore) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
	}
}

// HealthCheck returns HTTP-specific health data.
// The formulary is required; any other empty dataset only degrades the service.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	counts := h.dataStore.Counts()
	loaded := h.dataStore.IsLoaded()

	var empty []string
	for _, name := range datasets.Names {
		if counts[string(name)] == 0 {
			empty = append(empty, string(name))
		}
	}

	switch {
	case !loaded || counts[string(datasets.Formulary)] == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case len(empty) > 0:
		status = "degraded"
		httpStatus = http.StatusOK

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"datasets":    counts,
		"data_issues": h.dataStore.GetReport().HasIssues(),
	}
	if len(empty) > 0 {
		data["empty_datasets"] = empty
	}
	if loadedAt := h.dataStore.GetLoadedAt(); !loadedAt.IsZero() {
		data["loaded_at"] = loadedAt.Format(time.RFC3339)
	}
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		data["uptime_hours"] = math.Round(time.Since(start).Hours()*10) / 10
	}

	return status, data, httpStatus
}
