package datasets

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/giygas/formulary-browser/datasets/entities"
)

const formularyCSV = `HOSPITAL SULTANAH MALIHA,,,,,,,,
FORMULARY 2024,,,,,,,,
BIL,ATC,NAMA GENERIK,INDIKASI,DOS,KATEGORI,JABATAN,CATATAN,BRAND,HARGA
4.1,Analgesics,,,,,,,,
1,N02BE01,Paracetamol 500mg Tablet,Pain,1g QID,C,,Kuota,Panadol,0.10
2,N02BA01,Aspirin,Antiplatelet,,A,"Medical, Surgery",,,
,,,,,,,,,
4.2,Antibiotics,,,,,,,,
3,J01CA04,Amoxicillin 250mg Capsule,Infection,,B,,,,
`

func TestConvertFormularyCSV(t *testing.T) {
	records, stats, err := ConvertFormularyCSV(strings.NewReader(formularyCSV))
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}

	if stats.HeaderRow != 3 {
		t.Errorf("expected header on row 3, got %d", stats.HeaderRow)
	}
	if stats.Sections != 2 {
		t.Errorf("expected 2 sections, got %d", stats.Sections)
	}
	if stats.SkippedNoName != 1 {
		t.Errorf("expected 1 row without a name, got %d", stats.SkippedNoName)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	want := entities.FormularyRecord{
		ID:            "drug-4",
		GenericName:   "Paracetamol 500mg Tablet",
		BrandName:     "Panadol",
		Category:      "4.1 Analgesics",
		Indications:   "Pain",
		Dosing:        "1g QID",
		RenalDose:     "Check guidelines",
		Pregnancy:     "Not specified",
		Notes:         "Kuota",
		Price:         "0.10",
		PrescriberCat: "C",
		Forms:         entities.List{"Tablet"},
	}
	if diff := cmp.Diff(want, records[0]); diff != "" {
		t.Errorf("first record mismatch (-want +got):\n%s", diff)
	}

	aspirin := records[1]
	if aspirin.BrandName != "Generic" {
		t.Errorf("expected Generic brand default, got %q", aspirin.BrandName)
	}
	if aspirin.Dosing != "" {
		t.Errorf("expected empty dose to stay empty, got %q", aspirin.Dosing)
	}
	if aspirin.Notes != "(Dept: Medical, Surgery)" {
		t.Errorf("expected dept suffix in notes, got %q", aspirin.Notes)
	}
	if got := aspirin.Departments(); !cmp.Equal(got, []string{"Medical", "Surgery"}) {
		t.Errorf("unexpected departments %v", got)
	}
	if len(aspirin.Forms) != 1 || aspirin.Forms[0] != "Unit" {
		t.Errorf("expected Unit form for a single-word name, got %v", aspirin.Forms)
	}
	if records[2].Category != "4.2 Antibiotics" {
		t.Errorf("expected second section category, got %q", records[2].Category)
	}
}

func TestConvertWithoutHeader(t *testing.T) {
	rows := strings.Repeat("x,,,,,,,,\n", 5) + "N02BE01,Paracetamol,Pain,1g,A,,,Panadol,0.10\n"

	records, stats, err := ConvertFormularyCSV(strings.NewReader(rows))
	if err != nil {
		t.Fatalf("conversion failed: %v", err)
	}
	if stats.HeaderRow != 0 {
		t.Errorf("expected default layout, got header row %d", stats.HeaderRow)
	}
	if len(records) != 1 || records[0].GenericName != "Paracetamol" || records[0].Category != "Others" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestWriteFormularyJSON(t *testing.T) {
	var buf bytes.Buffer
	records := []entities.FormularyRecord{{ID: "drug-1", GenericName: "Paracetamol <500mg>"}}

	if err := WriteFormularyJSON(&buf, records); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Paracetamol <500mg>") {
		t.Errorf("expected unescaped HTML characters, got %s", buf.String())
	}

	var decoded []entities.FormularyRecord
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded[0].ID != "drug-1" {
		t.Errorf("unexpected id %q", decoded[0].ID)
	}
}
