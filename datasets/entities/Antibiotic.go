package entities

import (
	"bytes"
	"encoding/json"
)

// AntibioticRecord is one regime of the renal dosing adjustment table.
type AntibioticRecord struct {
	ID          ID          `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Route       string      `json:"route"`
	UsualDose   string      `json:"usualDose"`
	RenalDosing RenalDosing `json:"renalDosing"`
	Notes       string      `json:"notes,omitempty"`
}

func (r AntibioticRecord) RecordID() ID { return r.ID }

// RenalAdjustment pairs a creatinine clearance range with its dose adjustment.
type RenalAdjustment struct {
	CrCl       string `json:"crcl"`
	Adjustment string `json:"adjustment"`
}

// RenalDosing keeps the adjustments in table order. Older documents store a
// single free-text sentence instead of a table; it becomes one adjustment
// with an empty range.
type RenalDosing []RenalAdjustment

func (d *RenalDosing) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*d = nil
	if len(b) == 0 {
		return nil
	}

	switch b[0] {
	case '[':
		var rows []RenalAdjustment
		if err := json.Unmarshal(b, &rows); err == nil {
			*d = rows
		}
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err == nil && s != "" {
			*d = RenalDosing{{Adjustment: s}}
		}
	}
	return nil
}
