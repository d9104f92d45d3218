package entities

import (
	"regexp"
	"strings"
)

var stepNumberPattern = regexp.MustCompile(`\d+\.\s`)

// CounselingRecord holds the patient counseling points of a medication.
type CounselingRecord struct {
	ID                     ID                     `json:"id"`
	Name                   string                 `json:"name"`
	PharmacologicalGroup   string                 `json:"pharmacologicalGroup"`
	Indication             string                 `json:"indication"`
	Dosage                 string                 `json:"dosage"`
	MethodOfAdministration string                 `json:"methodOfAdministration"`
	SpecialConsiderations  *SpecialConsiderations `json:"specialConsiderations,omitempty"`
	SideEffects            List                   `json:"sideEffects,omitempty"`
	Others                 *CounselingOthers      `json:"others,omitempty"`
}

func (r CounselingRecord) RecordID() ID { return r.ID }

type SpecialConsiderations struct {
	Pregnancy         string `json:"pregnancy,omitempty"`
	Breastfeeding     string `json:"breastfeeding,omitempty"`
	Elderly           string `json:"elderly,omitempty"`
	Paediatric        string `json:"paediatric,omitempty"`
	Fasting           string `json:"fasting,omitempty"`
	HepaticImpairment string `json:"hepaticImpairment,omitempty"`
	RenalImpairment   string `json:"renalImpairment,omitempty"`
	Other             List   `json:"other,omitempty"`
}

type CounselingOthers struct {
	Storage           string `json:"storage,omitempty"`
	Contraindications string `json:"contraindications,omitempty"`
	DrugInteractions  string `json:"drugInteractions,omitempty"`
	Monitoring        string `json:"monitoring,omitempty"`
	CounselingPoints  List   `json:"counselingPoints,omitempty"`
}

// AdministrationSteps splits the method of administration into paragraphs,
// each starting at a "N. " step number. Text before the first number is kept
// as its own paragraph; blank paragraphs are dropped.
func (r CounselingRecord) AdministrationSteps() []string {
	return SplitNumbered(r.MethodOfAdministration)
}

// SplitNumbered splits text before every "N. " numbering marker.
func SplitNumbered(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var starts []int
	for _, loc := range stepNumberPattern.FindAllStringIndex(text, -1) {
		// only split where the number is not glued to a preceding digit or letter
		if loc[0] > 0 {
			prev := text[loc[0]-1]
			if isAlnum(prev) {
				continue
			}
		}
		starts = append(starts, loc[0])
	}

	var parts []string
	prev := 0
	for _, s := range starts {
		if p := strings.TrimSpace(text[prev:s]); p != "" {
			parts = append(parts, p)
		}
		prev = s
	}
	if p := strings.TrimSpace(text[prev:]); p != "" {
		parts = append(parts, p)
	}
	return parts
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
