package entities

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{`"drug-12"`, "drug-12"},
		{`12`, "12"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var id ID
		if err := json.Unmarshal([]byte(tt.in), &id); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if id != tt.want {
			t.Errorf("unmarshal %s = %q, want %q", tt.in, id, tt.want)
		}
	}

	var id ID
	if err := json.Unmarshal([]byte(`{"x": 1}`), &id); err == nil {
		t.Error("expected error for an object id")
	}
}

func TestListUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want List
	}{
		{`["a", "b"]`, List{"a", "b"}},
		{`["a", 3, "b"]`, List{"a", "b"}},
		{`"single"`, List{"single"}},
		{`""`, nil},
		{`42`, nil},
	}
	for _, tt := range tests {
		var l List
		if err := json.Unmarshal([]byte(tt.in), &l); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, l); diff != "" {
			t.Errorf("unmarshal %s mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestRenalDosingUnmarshal(t *testing.T) {
	var d RenalDosing
	if err := json.Unmarshal([]byte(`[{"crcl": ">50", "adjustment": "No change"}, {"crcl": "10-50", "adjustment": "50%"}]`), &d); err != nil {
		t.Fatal(err)
	}
	if len(d) != 2 || d[1].CrCl != "10-50" {
		t.Errorf("unexpected table %+v", d)
	}

	if err := json.Unmarshal([]byte(`"Avoid in renal failure"`), &d); err != nil {
		t.Fatal(err)
	}
	if len(d) != 1 || d[0].CrCl != "" || d[0].Adjustment != "Avoid in renal failure" {
		t.Errorf("unexpected sentence form %+v", d)
	}
}

func TestDosingKeepsDocumentOrder(t *testing.T) {
	doc := `{
		"neonates": "5 mg/kg",
		"iv_infusion": {"loading": "20 mg/kg", "maintenance": ["5 mg/kg", "q8h"]},
		"weight_max": 60,
		"absent": null
	}`

	var d Dosing
	if err := json.Unmarshal([]byte(doc), &d); err != nil {
		t.Fatal(err)
	}

	want := Dosing{
		{Key: "neonates", Value: Leaf("5 mg/kg")},
		{Key: "iv_infusion", Value: Section(
			DosingLine{Key: "loading", Text: "20 mg/kg"},
			DosingLine{Key: "maintenance", Text: "5 mg/kg; q8h"},
		)},
		{Key: "weight_max", Value: Leaf("60")},
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("dosing mismatch (-want +got):\n%s", diff)
	}

	if got := d[1].Label(); got != "iv infusion" {
		t.Errorf("expected label with spaces, got %q", got)
	}
	if v, ok := d.Lookup("neonates"); !ok || v.Kind != DosingLeaf {
		t.Errorf("lookup failed: %+v %v", v, ok)
	}

	out, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	const wantJSON = `{"neonates":"5 mg/kg","iv_infusion":{"loading":"20 mg/kg","maintenance":"5 mg/kg; q8h"},"weight_max":"60"}`
	if string(out) != wantJSON {
		t.Errorf("marshal = %s, want %s", out, wantJSON)
	}
}

func TestDosingBareString(t *testing.T) {
	var d Dosing
	if err := json.Unmarshal([]byte(`"10 mg/kg daily"`), &d); err != nil {
		t.Fatal(err)
	}
	if len(d) != 1 || d[0].Value.Text != "10 mg/kg daily" {
		t.Errorf("unexpected dosing %+v", d)
	}
}

func TestFormularyTags(t *testing.T) {
	r := FormularyRecord{
		Notes:         "Kuota applies (Dept: Medical; O&G, Surgery)",
		PrescriberCat: "A*",
		HighAlert:     true,
	}

	want := []Tag{
		{Kind: TagKuota, Label: "KUOTA"},
		{Kind: TagDepartment, Label: "Medical"},
		{Kind: TagDepartment, Label: "O&G"},
		{Kind: TagDepartment, Label: "Surgery"},
		{Kind: TagPrescriber, Label: "Cat: A*"},
		{Kind: TagHighAlert, Label: "High Alert"},
	}
	if diff := cmp.Diff(want, r.Tags()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}

	if tags := (FormularyRecord{PrescriberCat: "N/A"}).Tags(); len(tags) != 0 {
		t.Errorf("expected no tags, got %v", tags)
	}
}

func TestSplitNumbered(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"steps", "Shake well. 1. Remove cap. 2. Inhale slowly.", []string{"Shake well.", "1. Remove cap.", "2. Inhale slowly."}},
		{"glued number", "Take vitamin B12. daily", []string{"Take vitamin B12. daily"}},
		{"decimal", "Give 2.5 ml", []string{"Give 2.5 ml"}},
		{"blank", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SplitNumbered(tt.in)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGuidelines(t *testing.T) {
	g := Guidelines{Sections: []GuidelineSection{
		{Key: "adult", Links: []GuidelineLink{{ID: "A1"}, {ID: "A2"}}},
		{Key: "paeds", Links: []GuidelineLink{{ID: "B1"}}},
	}}

	if g.LinkCount() != 3 {
		t.Errorf("expected 3 links, got %d", g.LinkCount())
	}
	if s, ok := g.Section("paeds"); !ok || len(s.Links) != 1 {
		t.Errorf("unexpected paeds section %+v %v", s, ok)
	}
	if _, ok := g.Section("dental"); ok {
		t.Error("expected unknown section to be missing")
	}
}
