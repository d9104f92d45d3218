package search

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/giygas/formulary-browser/datasets/entities"
)

func formularyFixture() []entities.FormularyRecord {
	return []entities.FormularyRecord{
		{ID: "1", GenericName: "Paracetamol", BrandName: "Panadol", Category: "Analgesics"},
		{ID: "2", GenericName: "Amoxicillin", BrandName: "Amoxil", Category: "Antibiotics"},
		{ID: "3", GenericName: "Amlodipine", BrandName: "Norvasc", Category: "Cardiovascular"},
		{ID: "4", GenericName: "Co-amoxiclav", BrandName: "Augmentin", Category: "Antibiotics"},
		{ID: "5", GenericName: "Ibuprofen", BrandName: "Brufen", Category: "Analgesics"},
	}
}

func ids[R entities.Record](records []R) []entities.ID {
	out := make([]entities.ID, len(records))
	for i, r := range records {
		out[i] = r.RecordID()
	}
	return out
}

func TestFilterFormularyScenario(t *testing.T) {
	records := []entities.FormularyRecord{
		{ID: "1", GenericName: "Paracetamol"},
		{ID: "2", GenericName: "Amoxicillin"},
	}

	got := Filter(records, Query{Text: "amox"}, FormularySpec())

	want := []entities.FormularyRecord{{ID: "2", GenericName: "Amoxicillin"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Filter(amox) mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterBlankQueryIsIdentity(t *testing.T) {
	records := formularyFixture()
	spec := FormularySpec()

	for _, text := range []string{"", " ", "\t\n  "} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			got := Filter(records, Query{Text: text}, spec)
			if diff := cmp.Diff(records, got); diff != "" {
				t.Errorf("blank query changed the sequence (-want +got):\n%s", diff)
			}
			if &got[0] != &records[0] {
				t.Error("blank query without category should return the input slice itself")
			}
		})
	}

	t.Run("with category", func(t *testing.T) {
		got := Filter(records, Query{Text: "  ", Category: "Antibiotics"}, spec)
		if diff := cmp.Diff([]entities.ID{"2", "4"}, ids(got)); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestFilterSoundAndComplete(t *testing.T) {
	records := formularyFixture()
	spec := FormularySpec()

	for _, q := range []string{"amo", "AMOX", "an", "xyz", "fen", "o"} {
		t.Run(q, func(t *testing.T) {
			got := Filter(records, Query{Text: q}, spec)

			matched := map[entities.ID]bool{}
			for _, r := range got {
				matched[r.ID] = true
			}

			needle := strings.ToLower(q)
			for _, r := range records {
				contains := strings.Contains(strings.ToLower(r.GenericName), needle) ||
					strings.Contains(strings.ToLower(r.BrandName), needle)
				if contains != matched[r.ID] {
					t.Errorf("record %s: contains=%v matched=%v", r.ID, contains, matched[r.ID])
				}
			}
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	records := formularyFixture()
	got := Filter(records, Query{Text: "a"}, FormularySpec())

	pos := -1
	for _, r := range got {
		i := -1
		for j := range records {
			if records[j].ID == r.ID {
				i = j
				break
			}
		}
		if i <= pos {
			t.Fatalf("result is not a subsequence in dataset order: %v", ids(got))
		}
		pos = i
	}
}

func TestFilterCategory(t *testing.T) {
	records := formularyFixture()
	spec := FormularySpec()

	tests := []struct {
		name  string
		query Query
		want  []entities.ID
	}{
		{"All disables filter", Query{Category: AllCategories}, []entities.ID{"1", "2", "3", "4", "5"}},
		{"empty disables filter", Query{Category: ""}, []entities.ID{"1", "2", "3", "4", "5"}},
		{"exact match", Query{Category: "Analgesics"}, []entities.ID{"1", "5"}},
		{"no partial match", Query{Category: "Analg"}, []entities.ID{}},
		{"category then text", Query{Category: "Antibiotics", Text: "aug"}, []entities.ID{"4"}},
		{"text outside category", Query{Category: "Analgesics", Text: "amox"}, []entities.ID{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(records, tt.query, spec))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterPaediatricCategoryScenario(t *testing.T) {
	cats := []string{"Cardiovascular", "CNS", "Respiratory", "Cardiovascular", "Renal",
		"Endocrine", "Respiratory", "CNS", "Cardiovascular", "Haematology"}

	records := make([]entities.PaediatricMedication, len(cats))
	for i, c := range cats {
		records[i] = entities.PaediatricMedication{ID: entities.ID(fmt.Sprint(i + 1)), Name: fmt.Sprintf("Drug %d", i+1), Category: c}
	}

	got := Filter(records, Query{Category: "Cardiovascular"}, PaediatricSpec())

	if diff := cmp.Diff([]entities.ID{"1", "4", "9"}, ids(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterListFields(t *testing.T) {
	records := []entities.PaediatricMedication{
		{ID: "a", Name: "Ceftriaxone", Indications: entities.List{"Meningitis", "Sepsis"}},
		{ID: "b", Name: "Salbutamol", Indications: entities.List{"Asthma"}},
	}

	got := Filter(records, Query{Text: "sepsis"}, PaediatricSpec())
	if diff := cmp.Diff([]entities.ID{"a"}, ids(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterUnicodeFolding(t *testing.T) {
	records := []entities.FrankShannRecord{
		{ID: "1", Name: "Ácido fólico"},
		{ID: "2", Name: "STRASSE"},
		{ID: "3", Name: "Straße"},
	}

	got := Filter(records, Query{Text: "ÁCIDO"}, FrankShannSpec())
	if diff := cmp.Diff([]entities.ID{"1"}, ids(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	// full case folding maps ß to ss
	got = Filter(records, Query{Text: "strasse"}, FrankShannSpec())
	if diff := cmp.Diff([]entities.ID{"2", "3"}, ids(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterNoCategoryFunc(t *testing.T) {
	records := []entities.FrankShannRecord{{ID: "1", Name: "Aciclovir"}, {ID: "2", Name: "Digoxin"}}

	// datasets without categories ignore the category filter
	got := Filter(records, Query{Category: "Cardiovascular"}, FrankShannSpec())
	if len(got) != 2 {
		t.Errorf("Expected 2 records, got %d", len(got))
	}
}

func TestFilterEmptyDataset(t *testing.T) {
	got := Filter([]entities.FormularyRecord(nil), Query{Text: "x"}, FormularySpec())
	if len(got) != 0 {
		t.Errorf("Expected no records, got %d", len(got))
	}
}

func TestWithFields(t *testing.T) {
	spec := FormularySpec()

	custom, err := spec.WithFields([]string{"Notes", "genericName"})
	if err != nil {
		t.Fatalf("WithFields failed: %v", err)
	}
	if diff := cmp.Diff([]string{"notes", "genericName"}, custom.FieldNames()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"genericName", "brandName"}, spec.FieldNames()); diff != "" {
		t.Errorf("original spec was modified (-want +got):\n%s", diff)
	}

	records := []entities.FormularyRecord{{ID: "1", GenericName: "Insulin", Notes: "KUOTA (Dept: Medical)"}}
	if got := Filter(records, Query{Text: "kuota"}, custom); len(got) != 1 {
		t.Errorf("Expected notes to be searched, got %d results", len(got))
	}
	if got := Filter(records, Query{Text: "kuota"}, spec); len(got) != 0 {
		t.Errorf("Expected notes not to be searched by default, got %d results", len(got))
	}

	if _, err := spec.WithFields([]string{"price"}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
	if _, err := spec.WithFields(nil); err == nil {
		t.Error("Expected error for empty field list")
	}
}

func TestCategories(t *testing.T) {
	got := Categories(formularyFixture(), FormularySpec())
	want := []string{AllCategories, "Analgesics", "Antibiotics", "Cardiovascular"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if got := Categories([]entities.FrankShannRecord{{Name: "x"}}, FrankShannSpec()); got != nil {
		t.Errorf("Expected nil categories, got %v", got)
	}

	counseling := []entities.CounselingRecord{
		{Name: "Metformin", PharmacologicalGroup: "Biguanide"},
		{Name: "Insulin", PharmacologicalGroup: ""},
	}
	if diff := cmp.Diff([]string{AllCategories, "Biguanide"}, Categories(counseling, CounselingSpec())); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(map[string][]string{
		"frank-shann": {"name"},
		"counseling":  {"name", "dosage"},
	})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	names := reg.FieldNames()
	if diff := cmp.Diff([]string{"name"}, names["frank-shann"]); diff != "" {
		t.Errorf("frank-shann mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "dosage"}, names["counseling"]); diff != "" {
		t.Errorf("counseling mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"name", "category", "route"}, names["antibiotics"]); diff != "" {
		t.Errorf("antibiotics should keep defaults (-want +got):\n%s", diff)
	}

	if _, err := NewRegistry(map[string][]string{"unknown": {"name"}}); err == nil {
		t.Error("Expected error for unknown dataset")
	}
	if _, err := NewRegistry(map[string][]string{"dilution": {"nope"}}); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
}

func BenchmarkFilter(b *testing.B) {
	records := make([]entities.FormularyRecord, 2000)
	for i := range records {
		records[i] = entities.FormularyRecord{ID: entities.ID(fmt.Sprint(i)), GenericName: fmt.Sprintf("Drug %d", i), BrandName: "Brand"}
	}
	spec := FormularySpec()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Filter(records, Query{Text: "drug 1"}, spec)
	}
}
