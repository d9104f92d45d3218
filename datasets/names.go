// Package datasets loads the static formulary datasets from disk and converts
// the hospital's formulary spreadsheet export into the formulary JSON document.
package datasets

import (
	"errors"
	"fmt"
	"strings"
)

// Name identifies one dataset (and the application mode browsing it).
type Name string

const (
	Formulary   Name = "formulary"
	Antibiotics Name = "antibiotics"
	Dilution    Name = "dilution"
	Paediatric  Name = "paediatric"
	FrankShann  Name = "frank-shann"
	Counseling  Name = "counseling"
)

// Names lists every searchable dataset in tab order.
var Names = []Name{Formulary, Antibiotics, Dilution, Paediatric, FrankShann, Counseling}

// ErrUnknownDataset is returned for names outside Names.
var ErrUnknownDataset = errors.New("unknown dataset")

// ParseName resolves a dataset name, accepting a few historical aliases.
func ParseName(s string) (Name, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "formulary", "drugs":
		return Formulary, nil
	case "antibiotics", "abx":
		return Antibiotics, nil
	case "dilution", "dilutions":
		return Dilution, nil
	case "paediatric", "paediatrics", "protocol":
		return Paediatric, nil
	case "frank-shann", "frankshann", "frank_shann":
		return FrankShann, nil
	case "counseling", "counselling":
		return Counseling, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDataset, s)
}

// fileName is the document holding the dataset inside the data directory.
func (n Name) fileName() string {
	return strings.ReplaceAll(string(n), "-", "_") + ".json"
}

// envelopeKeys are the object members that may hold the record array when the
// document is an object rather than a bare array.
func (n Name) envelopeKeys() []string {
	switch n {
	case Antibiotics:
		return []string{"antibiotics", "records"}
	case Dilution:
		return []string{"drugs", "records"}
	case Paediatric, Counseling:
		return []string{"medications", "records"}
	default:
		return []string{"records"}
	}
}

// EnvKey is the configuration suffix used for per-dataset settings.
func (n Name) EnvKey() string {
	return strings.ToUpper(strings.ReplaceAll(string(n), "-", "_"))
}
