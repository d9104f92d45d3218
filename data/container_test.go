package data

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
)

func testBundle() *entities.Bundle {
	return &entities.Bundle{
		Formulary: []entities.FormularyRecord{
			{ID: "1", GenericName: "Paracetamol"},
			{ID: "2", GenericName: "Amoxicillin"},
			{ID: "2", GenericName: "Amoxicillin duplicate"},
		},
		Antibiotics: []entities.AntibioticRecord{{ID: "abx-1", Name: "Cefuroxime"}},
		Dilutions:   []entities.DilutionRecord{{ID: "dil-1", GenericName: "Vancomycin"}},
		Paediatric:  []entities.PaediatricMedication{{ID: "p-1", Name: "Adrenaline"}},
		FrankShann:  []entities.FrankShannRecord{{ID: "fs-1", Name: "Aciclovir"}},
		Counseling:  []entities.CounselingRecord{{ID: "c-1", Name: "Insulin"}, {ID: "", Name: "No id"}},
		Guidelines:  entities.Guidelines{Home: "https://example.org"},
		Metadata: map[string]entities.Metadata{
			"paediatric": {"edition": "5th"},
		},
	}
}

func TestNewDataContainer(t *testing.T) {
	logging.InitLogger("")

	dc := NewDataContainer()

	if dc == nil {
		t.Fatal("NewDataContainer returned nil")
	}

	if dc.IsLoaded() {
		t.Error("NewDataContainer should not be loaded")
	}

	if !dc.GetLoadedAt().IsZero() {
		t.Error("NewDataContainer should have zero loadedAt time")
	}

	if len(dc.GetFormulary()) != 0 {
		t.Error("NewDataContainer should have empty formulary")
	}

	for name, n := range dc.Counts() {
		if n != 0 {
			t.Errorf("Expected empty %s dataset, got %d", name, n)
		}
	}

	if _, ok := dc.FindRecord("formulary", "1"); ok {
		t.Error("Empty container should not find records")
	}
}

func TestPublish(t *testing.T) {
	logging.InitLogger("")

	dc := NewDataContainer()
	report := &interfaces.DataQualityReport{Datasets: map[string]interfaces.DatasetQuality{
		"formulary": {Records: 3, DuplicateIDs: []string{"2"}},
	}}

	if err := dc.Publish(testBundle(), report); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if !dc.IsLoaded() {
		t.Error("Container should be loaded after publish")
	}
	if dc.GetLoadedAt().IsZero() {
		t.Error("loadedAt should be set after publish")
	}

	if got := len(dc.GetFormulary()); got != 3 {
		t.Errorf("Expected 3 formulary records, got %d", got)
	}
	if got := dc.GetAntibiotics()[0].Name; got != "Cefuroxime" {
		t.Errorf("Expected Cefuroxime, got %s", got)
	}
	if got := dc.GetDilutions()[0].GenericName; got != "Vancomycin" {
		t.Errorf("Expected Vancomycin, got %s", got)
	}
	if got := dc.GetPaediatric()[0].Name; got != "Adrenaline" {
		t.Errorf("Expected Adrenaline, got %s", got)
	}
	if got := dc.GetFrankShann()[0].Name; got != "Aciclovir" {
		t.Errorf("Expected Aciclovir, got %s", got)
	}
	if got := len(dc.GetCounseling()); got != 2 {
		t.Errorf("Expected 2 counseling records, got %d", got)
	}
	if dc.GetGuidelines().Home != "https://example.org" {
		t.Errorf("Unexpected guidelines home %q", dc.GetGuidelines().Home)
	}
	if dc.GetMetadata("paediatric")["edition"] != "5th" {
		t.Errorf("Unexpected paediatric metadata %v", dc.GetMetadata("paediatric"))
	}
	if dc.GetMetadata("formulary") != nil {
		t.Error("Expected nil metadata for formulary")
	}
	if !dc.GetReport().HasIssues() {
		t.Error("Expected the published report")
	}

	counts := dc.Counts()
	if counts["formulary"] != 3 || counts["frank-shann"] != 1 || counts["counseling"] != 2 {
		t.Errorf("Unexpected counts %v", counts)
	}
}

func TestPublishOnlyOnce(t *testing.T) {
	logging.InitLogger("")

	dc := NewDataContainer()
	if err := dc.Publish(testBundle(), nil); err != nil {
		t.Fatalf("First publish failed: %v", err)
	}

	err := dc.Publish(&entities.Bundle{}, nil)
	if !errors.Is(err, ErrAlreadyPublished) {
		t.Fatalf("Expected ErrAlreadyPublished, got %v", err)
	}

	if len(dc.GetFormulary()) != 3 {
		t.Error("Second publish must not replace the datasets")
	}
}

func TestPublishNil(t *testing.T) {
	dc := NewDataContainer()
	if err := dc.Publish(nil, nil); err == nil {
		t.Error("Expected error for nil bundle")
	}
	if dc.IsLoaded() {
		t.Error("Failed publish should leave the container unloaded")
	}

	// the container can still be published afterwards
	if err := dc.Publish(&entities.Bundle{}, nil); err != nil {
		t.Errorf("Publish after nil failed: %v", err)
	}
	if dc.GetReport() == nil {
		t.Error("Expected an empty report, got nil")
	}
}

func TestFindRecord(t *testing.T) {
	logging.InitLogger("")

	dc := NewDataContainer()
	if err := dc.Publish(testBundle(), nil); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	tests := []struct {
		name    string
		dataset string
		id      entities.ID
		found   bool
		want    string
	}{
		{"formulary hit", "formulary", "1", true, "Paracetamol"},
		{"first duplicate wins", "formulary", "2", true, "Amoxicillin"},
		{"formulary miss", "formulary", "99", false, ""},
		{"frank shann hit", "frank-shann", "fs-1", true, "Aciclovir"},
		{"empty id never indexed", "counseling", "", false, ""},
		{"unknown dataset", "unknown", "1", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := dc.FindRecord(tt.dataset, tt.id)
			if ok != tt.found {
				t.Fatalf("FindRecord(%s, %s) found = %v, want %v", tt.dataset, tt.id, ok, tt.found)
			}
			if !ok {
				return
			}
			if f, isFormulary := rec.(entities.FormularyRecord); isFormulary && f.GenericName != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, f.GenericName)
			}
			if f, isFS := rec.(entities.FrankShannRecord); isFS && f.Name != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, f.Name)
			}
		})
	}
}

func TestDataContainer_GetServerStartTime(t *testing.T) {
	dc := NewDataContainer()

	if !dc.GetServerStartTime().IsZero() {
		t.Error("Expected zero server start time")
	}

	start := time.Now()
	dc.SetServerStartTime(start)

	if !dc.GetServerStartTime().Equal(start) {
		t.Errorf("Expected %v, got %v", start, dc.GetServerStartTime())
	}
}

func TestZeroValueContainer(t *testing.T) {
	logging.InitLogger("")

	// a container that was never initialized returns empty results
	dc := &DataContainer{}

	if len(dc.GetFormulary()) != 0 {
		t.Error("Expected empty formulary for zero container")
	}
	if _, ok := dc.FindRecord("formulary", "1"); ok {
		t.Error("Expected no record for zero container")
	}
	if dc.GetReport() == nil {
		t.Error("Expected a report for zero container")
	}
	if !dc.GetLoadedAt().IsZero() {
		t.Error("Expected zero loadedAt for zero container")
	}
}

func TestConcurrentReadsDuringPublish(t *testing.T) {
	logging.InitLogger("")

	dc := NewDataContainer()
	var wg sync.WaitGroup

	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				n := len(dc.GetFormulary())
				if n != 0 && n != 3 {
					t.Errorf("Observed partial dataset of %d records", n)
					return
				}
				dc.FindRecord("formulary", "1")
				_ = dc.Counts()
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = dc.Publish(testBundle(), nil)
	}()

	wg.Wait()

	if len(dc.GetFormulary()) != 3 {
		t.Errorf("Expected 3 records after publish, got %d", len(dc.GetFormulary()))
	}
}

func BenchmarkFindRecord(b *testing.B) {
	dc := NewDataContainer()
	_ = dc.Publish(testBundle(), nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dc.FindRecord("formulary", "2")
	}
}
