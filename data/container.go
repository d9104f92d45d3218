// Package data provides the in-memory dataset store of the formulary browser.
// Datasets are published once at startup through an atomic swap and are
// read-only for the rest of the process lifetime.
package data

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// ErrAlreadyPublished is returned when datasets are published a second time.
var ErrAlreadyPublished = errors.New("datasets already published")

// Dataset names as used by the index and the HTTP API
const (
	formulary   = "formulary"
	antibiotics = "antibiotics"
	dilution    = "dilution"
	paediatric  = "paediatric"
	frankShann  = "frank-shann"
	counseling  = "counseling"
)

// DataContainer holds all the datasets behind atomic values
type DataContainer struct {
	bundle          atomic.Value // *entities.Bundle
	index           atomic.Value // map[string]map[entities.ID]entities.Record
	report          atomic.Value // *interfaces.DataQualityReport
	loadedAt        atomic.Value // time.Time
	published       atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with empty data
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.bundle.Store(&entities.Bundle{Metadata: map[string]entities.Metadata{}})
	dc.index.Store(map[string]map[entities.ID]entities.Record{})
	dc.report.Store(&interfaces.DataQualityReport{Datasets: map[string]interfaces.DatasetQuality{}})
	dc.loadedAt.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// Publish stores the datasets. It succeeds only once.
func (dc *DataContainer) Publish(bundle *entities.Bundle, report *interfaces.DataQualityReport) error {
	if bundle == nil {
		return errors.New("nil bundle")
	}
	if !dc.published.CompareAndSwap(false, true) {
		return ErrAlreadyPublished
	}

	if bundle.Metadata == nil {
		bundle.Metadata = map[string]entities.Metadata{}
	}
	if report == nil {
		report = &interfaces.DataQualityReport{Datasets: map[string]interfaces.DatasetQuality{}}
	}

	dc.index.Store(buildIndex(bundle))
	dc.report.Store(report)
	dc.bundle.Store(bundle)
	dc.loadedAt.Store(time.Now())
	return nil
}

func buildIndex(b *entities.Bundle) map[string]map[entities.ID]entities.Record {
	idx := map[string]map[entities.ID]entities.Record{
		formulary:   indexRecords(b.Formulary),
		antibiotics: indexRecords(b.Antibiotics),
		dilution:    indexRecords(b.Dilutions),
		paediatric:  indexRecords(b.Paediatric),
		frankShann:  indexRecords(b.FrankShann),
		counseling:  indexRecords(b.Counseling),
	}
	return idx
}

// indexRecords maps ids to records; the first record wins on duplicates.
func indexRecords[R entities.Record](records []R) map[entities.ID]entities.Record {
	m := make(map[entities.ID]entities.Record, len(records))
	for _, rec := range records {
		id := rec.RecordID()
		if id == "" {
			continue
		}
		if _, exists := m[id]; !exists {
			m[id] = rec
		}
	}
	return m
}

// Thread-safe getters with type check

func (dc *DataContainer) getBundle() *entities.Bundle {
	if v := dc.bundle.Load(); v != nil {
		if b, ok := v.(*entities.Bundle); ok && b != nil {
			return b
		}
	}

	logging.Warn("Dataset bundle is empty or invalid")
	return &entities.Bundle{}
}

// GetFormulary returns the formulary records
func (dc *DataContainer) GetFormulary() []entities.FormularyRecord {
	return dc.getBundle().Formulary
}

// GetAntibiotics returns the antibiotic renal dosing regimes
func (dc *DataContainer) GetAntibiotics() []entities.AntibioticRecord {
	return dc.getBundle().Antibiotics
}

// GetDilutions returns the dilution protocols
func (dc *DataContainer) GetDilutions() []entities.DilutionRecord {
	return dc.getBundle().Dilutions
}

// GetPaediatric returns the paediatric protocol medications
func (dc *DataContainer) GetPaediatric() []entities.PaediatricMedication {
	return dc.getBundle().Paediatric
}

// GetFrankShann returns the Frank Shann dosing entries
func (dc *DataContainer) GetFrankShann() []entities.FrankShannRecord {
	return dc.getBundle().FrankShann
}

// GetCounseling returns the counseling records
func (dc *DataContainer) GetCounseling() []entities.CounselingRecord {
	return dc.getBundle().Counseling
}

// GetGuidelines returns the guideline link index
func (dc *DataContainer) GetGuidelines() entities.Guidelines {
	return dc.getBundle().Guidelines
}

// GetMetadata returns the document metadata of a dataset, or nil
func (dc *DataContainer) GetMetadata(dataset string) entities.Metadata {
	return dc.getBundle().Metadata[dataset]
}

// FindRecord looks a record up by id in O(1)
func (dc *DataContainer) FindRecord(dataset string, id entities.ID) (entities.Record, bool) {
	v := dc.index.Load()
	idx, ok := v.(map[string]map[entities.ID]entities.Record)
	if !ok {
		logging.Warn("Record index is empty or invalid")
		return nil, false
	}
	rec, ok := idx[dataset][id]
	return rec, ok
}

// Counts returns the number of records per dataset
func (dc *DataContainer) Counts() map[string]int {
	b := dc.getBundle()
	return map[string]int{
		formulary:   len(b.Formulary),
		antibiotics: len(b.Antibiotics),
		dilution:    len(b.Dilutions),
		paediatric:  len(b.Paediatric),
		frankShann:  len(b.FrankShann),
		counseling:  len(b.Counseling),
	}
}

// GetReport returns the data quality report computed at load time
func (dc *DataContainer) GetReport() *interfaces.DataQualityReport {
	if v := dc.report.Load(); v != nil {
		if r, ok := v.(*interfaces.DataQualityReport); ok {
			return r
		}
	}
	return &interfaces.DataQualityReport{Datasets: map[string]interfaces.DatasetQuality{}}
}

// GetLoadedAt returns the time the datasets were published
func (dc *DataContainer) GetLoadedAt() time.Time {
	if v := dc.loadedAt.Load(); v != nil {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}

	logging.Warn("Could not get the loaded at value")
	return time.Time{}
}

// IsLoaded reports whether datasets have been published
func (dc *DataContainer) IsLoaded() bool {
	return dc.published.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}
