package health

import (
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/giygas/formulary-browser/data"
	"github.com/giygas/formulary-browser/datasets/entities"
)

func fullBundle() *entities.Bundle {
	return &entities.Bundle{
		Formulary:   []entities.FormularyRecord{{ID: "1", GenericName: "Paracetamol"}},
		Antibiotics: []entities.AntibioticRecord{{ID: "1", Name: "Cefuroxime"}},
		Dilutions:   []entities.DilutionRecord{{ID: "1", GenericName: "Vancomycin"}},
		Paediatric:  []entities.PaediatricMedication{{ID: "1", Name: "Salbutamol"}},
		FrankShann:  []entities.FrankShannRecord{{ID: "1", Name: "Adrenaline"}},
		Counseling:  []entities.CounselingRecord{{ID: "1", Name: "Insulin pen"}},
	}
}

func TestNewHealthChecker(t *testing.T) {
	checker := NewHealthChecker(data.NewDataContainer())
	if checker == nil {
		t.Fatal("NewHealthChecker returned nil")
	}
	if _, ok := checker.(*HealthCheckerImpl); !ok {
		t.Error("NewHealthChecker should return *HealthCheckerImpl")
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		bundle     func() *entities.Bundle
		wantStatus string
		wantCode   int
		wantEmpty  []string
	}{
		{
			name:       "not loaded",
			bundle:     nil,
			wantStatus: "unhealthy",
			wantCode:   http.StatusServiceUnavailable,
			wantEmpty:  []string{"formulary", "antibiotics", "dilution", "paediatric", "frank-shann", "counseling"},
		},
		{
			name:       "all datasets",
			bundle:     fullBundle,
			wantStatus: "healthy",
			wantCode:   http.StatusOK,
		},
		{
			name: "missing counseling",
			bundle: func() *entities.Bundle {
				b := fullBundle()
				b.Counseling = nil
				return b
			},
			wantStatus: "degraded",
			wantCode:   http.StatusOK,
			wantEmpty:  []string{"counseling"},
		},
		{
			name: "missing formulary",
			bundle: func() *entities.Bundle {
				b := fullBundle()
				b.Formulary = nil
				return b
			},
			wantStatus: "unhealthy",
			wantCode:   http.StatusServiceUnavailable,
			wantEmpty:  []string{"formulary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dc := data.NewDataContainer()
			if tt.bundle != nil {
				if err := dc.Publish(tt.bundle(), nil); err != nil {
					t.Fatalf("publish: %v", err)
				}
			}
			dc.SetServerStartTime(time.Now().Add(-2 * time.Hour))

			status, details, code := NewHealthChecker(dc).HealthCheck()
			if status != tt.wantStatus {
				t.Errorf("Expected status %s, got %s", tt.wantStatus, status)
			}
			if code != tt.wantCode {
				t.Errorf("Expected code %d, got %d", tt.wantCode, code)
			}

			empty, _ := details["empty_datasets"].([]string)
			if !slices.Equal(empty, tt.wantEmpty) {
				t.Errorf("Expected empty datasets %v, got %v", tt.wantEmpty, empty)
			}
			if uptime, ok := details["uptime_hours"].(float64); !ok || uptime < 1.9 {
				t.Errorf("Expected uptime of about 2 hours, got %v", details["uptime_hours"])
			}
		})
	}
}

func TestHealthCheckDetails(t *testing.T) {
	dc := data.NewDataContainer()
	if err := dc.Publish(fullBundle(), nil); err != nil {
		t.Fatalf("publish: %v", err)
	}

	_, details, _ := NewHealthChecker(dc).HealthCheck()

	counts, ok := details["datasets"].(map[string]int)
	if !ok {
		t.Fatalf("Expected datasets counts, got %T", details["datasets"])
	}
	if counts["formulary"] != 1 || counts["frank-shann"] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
	if _, ok := details["loaded_at"].(string); !ok {
		t.Error("Expected loaded_at to be set")
	}
	if issues, _ := details["data_issues"].(bool); issues {
		t.Error("Expected no data issues")
	}
	if _, ok := details["uptime_hours"]; ok {
		t.Error("Expected no uptime without a server start time")
	}
}
