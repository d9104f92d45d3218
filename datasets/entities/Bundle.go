package entities

// Bundle carries every dataset loaded at startup.
type Bundle struct {
	Formulary   []FormularyRecord
	Antibiotics []AntibioticRecord
	Dilutions   []DilutionRecord
	Paediatric  []PaediatricMedication
	FrankShann  []FrankShannRecord
	Counseling  []CounselingRecord
	Guidelines  Guidelines
	Metadata    map[string]Metadata // keyed by dataset name
}
