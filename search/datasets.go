package search

import (
	"fmt"

	"github.com/giygas/formulary-browser/datasets/entities"
)

func formularyCategory(r entities.FormularyRecord) string  { return r.Category }
func antibioticCategory(r entities.AntibioticRecord) string { return r.Category }
func dilutionCategory(r entities.DilutionRecord) string     { return r.Category }
func paediatricCategory(r entities.PaediatricMedication) string {
	return r.Category
}
func counselingGroup(r entities.CounselingRecord) string { return r.PharmacologicalGroup }

// FormularySpec searches generic and brand names.
func FormularySpec() Spec[entities.FormularyRecord] {
	return NewSpec("formulary", formularyCategory, []Field[entities.FormularyRecord]{
		Text("genericName", func(r entities.FormularyRecord) string { return r.GenericName }),
		Text("brandName", func(r entities.FormularyRecord) string { return r.BrandName }),
		Text("category", func(r entities.FormularyRecord) string { return r.Category }),
		Text("indications", func(r entities.FormularyRecord) string { return r.Indications }),
		Text("notes", func(r entities.FormularyRecord) string { return r.Notes }),
		Text("prescriberCat", func(r entities.FormularyRecord) string { return r.PrescriberCat }),
	}, "genericName", "brandName")
}

// AntibioticSpec searches name, category and route.
func AntibioticSpec() Spec[entities.AntibioticRecord] {
	return NewSpec("antibiotics", antibioticCategory, []Field[entities.AntibioticRecord]{
		Text("name", func(r entities.AntibioticRecord) string { return r.Name }),
		Text("category", func(r entities.AntibioticRecord) string { return r.Category }),
		Text("route", func(r entities.AntibioticRecord) string { return r.Route }),
		Text("usualDose", func(r entities.AntibioticRecord) string { return r.UsualDose }),
		Text("notes", func(r entities.AntibioticRecord) string { return r.Notes }),
	}, "name", "category", "route")
}

// DilutionSpec searches generic name, brand name and category.
func DilutionSpec() Spec[entities.DilutionRecord] {
	return NewSpec("dilution", dilutionCategory, []Field[entities.DilutionRecord]{
		Text("genericName", func(r entities.DilutionRecord) string { return r.GenericName }),
		Text("brandName", func(r entities.DilutionRecord) string { return r.BrandName }),
		Text("category", func(r entities.DilutionRecord) string { return r.Category }),
		Strings("diluents", func(r entities.DilutionRecord) []string { return r.Diluents }),
		Text("remarks", func(r entities.DilutionRecord) string { return r.Remarks }),
	}, "genericName", "brandName", "category")
}

// PaediatricSpec searches name, category and any indication.
func PaediatricSpec() Spec[entities.PaediatricMedication] {
	return NewSpec("paediatric", paediatricCategory, []Field[entities.PaediatricMedication]{
		Text("name", func(r entities.PaediatricMedication) string { return r.Name }),
		Text("category", func(r entities.PaediatricMedication) string { return r.Category }),
		Strings("indications", func(r entities.PaediatricMedication) []string { return r.Indications }),
		Strings("route", func(r entities.PaediatricMedication) []string { return r.Route }),
		Text("notes", func(r entities.PaediatricMedication) string { return r.Notes }),
	}, "name", "category", "indications")
}

// FrankShannSpec searches name and dosage text. The book has no categories.
func FrankShannSpec() Spec[entities.FrankShannRecord] {
	return NewSpec("frank-shann", nil, []Field[entities.FrankShannRecord]{
		Text("name", func(r entities.FrankShannRecord) string { return r.Name }),
		Text("dosage", func(r entities.FrankShannRecord) string { return r.Dosage }),
	}, "name", "dosage")
}

// CounselingSpec searches name, pharmacological group and indication.
// The category filter runs on the pharmacological group.
func CounselingSpec() Spec[entities.CounselingRecord] {
	return NewSpec("counseling", counselingGroup, []Field[entities.CounselingRecord]{
		Text("name", func(r entities.CounselingRecord) string { return r.Name }),
		Text("pharmacologicalGroup", func(r entities.CounselingRecord) string { return r.PharmacologicalGroup }),
		Text("indication", func(r entities.CounselingRecord) string { return r.Indication }),
		Text("dosage", func(r entities.CounselingRecord) string { return r.Dosage }),
		Strings("sideEffects", func(r entities.CounselingRecord) []string { return r.SideEffects }),
	}, "name", "pharmacologicalGroup", "indication")
}

// Registry holds the effective spec of every dataset.
type Registry struct {
	Formulary   Spec[entities.FormularyRecord]
	Antibiotics Spec[entities.AntibioticRecord]
	Dilution    Spec[entities.DilutionRecord]
	Paediatric  Spec[entities.PaediatricMedication]
	FrankShann  Spec[entities.FrankShannRecord]
	Counseling  Spec[entities.CounselingRecord]
}

// DefaultRegistry returns the built-in field tuples.
func DefaultRegistry() *Registry {
	return &Registry{
		Formulary:   FormularySpec(),
		Antibiotics: AntibioticSpec(),
		Dilution:    DilutionSpec(),
		Paediatric:  PaediatricSpec(),
		FrankShann:  FrankShannSpec(),
		Counseling:  CounselingSpec(),
	}
}

// NewRegistry applies per-dataset field overrides, keyed by dataset name.
func NewRegistry(overrides map[string][]string) (*Registry, error) {
	reg := DefaultRegistry()

	for dataset, names := range overrides {
		var err error
		switch dataset {
		case "formulary":
			reg.Formulary, err = reg.Formulary.WithFields(names)
		case "antibiotics":
			reg.Antibiotics, err = reg.Antibiotics.WithFields(names)
		case "dilution":
			reg.Dilution, err = reg.Dilution.WithFields(names)
		case "paediatric":
			reg.Paediatric, err = reg.Paediatric.WithFields(names)
		case "frank-shann":
			reg.FrankShann, err = reg.FrankShann.WithFields(names)
		case "counseling":
			reg.Counseling, err = reg.Counseling.WithFields(names)
		default:
			err = fmt.Errorf("search fields configured for unknown dataset %q", dataset)
		}
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// FieldNames returns the searched fields of every dataset.
func (r *Registry) FieldNames() map[string][]string {
	return map[string][]string{
		"formulary":   r.Formulary.FieldNames(),
		"antibiotics": r.Antibiotics.FieldNames(),
		"dilution":    r.Dilution.FieldNames(),
		"paediatric":  r.Paediatric.FieldNames(),
		"frank-shann": r.FrankShann.FieldNames(),
		"counseling":  r.Counseling.FieldNames(),
	}
}
