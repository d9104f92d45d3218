package entities

// DilutionRecord describes how a parenteral drug is reconstituted and diluted.
type DilutionRecord struct {
	ID              ID     `json:"id"`
	GenericName     string `json:"genericName"`
	BrandName       string `json:"brandName"`
	Category        string `json:"category"`
	Strength        string `json:"strength,omitempty"`
	Reconstitution  string `json:"reconstitution,omitempty"`
	FurtherDilution string `json:"furtherDilution,omitempty"`
	Diluents        List   `json:"diluents,omitempty"`
	Administration  string `json:"administration,omitempty"`
	Storage         string `json:"storage,omitempty"`
	Remarks         string `json:"remarks,omitempty"`
}

func (r DilutionRecord) RecordID() ID { return r.ID }
