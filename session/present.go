package session

import "github.com/giygas/formulary-browser/datasets/entities"

// FormularyItem is a formulary record with its derived labels.
type FormularyItem struct {
	entities.FormularyRecord
	Favorite    bool           `json:"favorite"`
	Tags        []entities.Tag `json:"tags,omitempty"`
	Departments []string       `json:"departments,omitempty"`
}

// PresentFormulary returns a presenter marking favorites.
func PresentFormulary(favs Favorites) func(entities.FormularyRecord) any {
	return func(r entities.FormularyRecord) any {
		item := FormularyItem{FormularyRecord: r, Tags: r.Tags(), Departments: r.Departments()}
		if favs != nil {
			item.Favorite = favs.IsFavorite(string(r.ID))
		}
		return item
	}
}

// CounselingItem adds the numbered administration steps.
type CounselingItem struct {
	entities.CounselingRecord
	AdministrationSteps []string `json:"administrationSteps,omitempty"`
}

func PresentCounseling(r entities.CounselingRecord) any {
	return CounselingItem{CounselingRecord: r, AdministrationSteps: r.AdministrationSteps()}
}

// DosingLineDisplay is one labelled line of a dosing section.
type DosingLineDisplay struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// DosingDisplay is one labelled dosing context, either a text or lines.
type DosingDisplay struct {
	Kind  string              `json:"kind"`
	Label string              `json:"label"`
	Text  string              `json:"text,omitempty"`
	Lines []DosingLineDisplay `json:"lines,omitempty"`
}

// PaediatricItem adds the display form of the dosing document.
type PaediatricItem struct {
	entities.PaediatricMedication
	DosingDisplay []DosingDisplay `json:"dosingDisplay,omitempty"`
}

func PresentPaediatric(r entities.PaediatricMedication) any {
	return PaediatricItem{PaediatricMedication: r, DosingDisplay: DisplayDosing(r.Dosing)}
}

// DisplayDosing renders every dosing entry with readable labels.
func DisplayDosing(d entities.Dosing) []DosingDisplay {
	out := make([]DosingDisplay, 0, len(d))
	for _, e := range d {
		disp := DosingDisplay{Kind: e.Value.Kind.String(), Label: e.Label()}
		switch e.Value.Kind {
		case entities.DosingLeaf:
			disp.Text = e.Value.Text
		case entities.DosingSection:
			for _, line := range e.Value.Lines {
				disp.Lines = append(disp.Lines, DosingLineDisplay{Label: line.Label(), Text: line.Text})
			}
		}
		out = append(out, disp)
	}
	return out
}
