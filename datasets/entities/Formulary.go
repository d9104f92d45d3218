package entities

import (
	"regexp"
	"strings"
)

var deptPattern = regexp.MustCompile(`(?i)Dept:\s*([^)\n]+)`)

// FormularyRecord is one entry of the hospital drug formulary.
type FormularyRecord struct {
	ID            ID     `json:"id"`
	GenericName   string `json:"genericName"`
	BrandName     string `json:"brandName"`
	Category      string `json:"category"`
	Indications   string `json:"indications"`
	Dosing        string `json:"dosing"`
	RenalDose     string `json:"renalDose"`
	Pregnancy     string `json:"pregnancy"`
	Notes         string `json:"notes"`
	Price         string `json:"price"`
	PrescriberCat string `json:"prescriberCat"`
	Forms         List   `json:"forms"`
	HighAlert     bool   `json:"highAlert"`
}

func (r FormularyRecord) RecordID() ID { return r.ID }

// Tag is a short label derived from a formulary record
type Tag struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

const (
	TagKuota      = "kuota"
	TagDepartment = "department"
	TagPrescriber = "prescriber"
	TagHighAlert  = "high-alert"
)

// Tags derives the quota, department, prescriber and high-alert labels
// from the record. Order is stable: kuota, departments, prescriber, high alert.
func (r FormularyRecord) Tags() []Tag {
	var tags []Tag

	if strings.Contains(strings.ToLower(r.Notes), "kuota") {
		tags = append(tags, Tag{Kind: TagKuota, Label: "KUOTA"})
	}

	for _, dept := range r.Departments() {
		tags = append(tags, Tag{Kind: TagDepartment, Label: dept})
	}

	if r.PrescriberCat != "" && r.PrescriberCat != "N/A" {
		tags = append(tags, Tag{Kind: TagPrescriber, Label: "Cat: " + r.PrescriberCat})
	}

	if r.HighAlert {
		tags = append(tags, Tag{Kind: TagHighAlert, Label: "High Alert"})
	}

	return tags
}

// Departments returns the departments listed after "Dept:" in the notes,
// split on commas and semicolons.
func (r FormularyRecord) Departments() []string {
	if r.Notes == "" {
		return nil
	}

	match := deptPattern.FindStringSubmatch(r.Notes)
	if len(match) < 2 {
		return nil
	}

	var depts []string
	for _, part := range strings.FieldsFunc(match[1], func(c rune) bool { return c == ',' || c == ';' }) {
		if d := strings.TrimSpace(part); d != "" {
			depts = append(depts, d)
		}
	}
	return depts
}
