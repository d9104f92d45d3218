// Package validation provides data quality reporting and request input
// validation for the formulary browser.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/formulary-browser/datasets"
	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
)

const (
	maxQueryLength = 100
	maxQueryWords  = 10
	maxIDLength    = 64
	maxRepetition  = 10
	// maxReportedDuplicates caps the ids kept per dataset in the report
	maxReportedDuplicates = 10
)

// Pre-compiled patterns, compiled once at package initialization
var (
	idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

	// Plain substring matching is faster than regex for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "onfocus=", "eval(", "expression(", "@import",
		// SQL injection patterns
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"/*", "*/", "exec(", "execute(",
		// Command injection patterns
		"`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
		// NoSQL injection patterns
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

// ErrUnsafeQuery marks search text that is well formed but looks like an
// injection attempt or a DoS payload. Callers answer it with an empty result.
var ErrUnsafeQuery = errors.New("unsafe search query")

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ReportDataQuality counts duplicate ids, missing ids and missing names in
// every dataset. Problems are reported, never fatal.
func (v *DataValidatorImpl) ReportDataQuality(bundle *entities.Bundle) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{Datasets: map[string]interfaces.DatasetQuality{}}
	if bundle == nil {
		return report
	}

	report.Datasets[string(datasets.Formulary)] = inspect(bundle.Formulary, func(r entities.FormularyRecord) string { return r.GenericName })
	report.Datasets[string(datasets.Antibiotics)] = inspect(bundle.Antibiotics, func(r entities.AntibioticRecord) string { return r.Name })
	report.Datasets[string(datasets.Dilution)] = inspect(bundle.Dilutions, func(r entities.DilutionRecord) string { return r.GenericName })
	report.Datasets[string(datasets.Paediatric)] = inspect(bundle.Paediatric, func(r entities.PaediatricMedication) string { return r.Name })
	report.Datasets[string(datasets.FrankShann)] = inspect(bundle.FrankShann, func(r entities.FrankShannRecord) string { return r.Name })
	report.Datasets[string(datasets.Counseling)] = inspect(bundle.Counseling, func(r entities.CounselingRecord) string { return r.Name })

	for name, q := range report.Datasets {
		if len(q.DuplicateIDs) > 0 {
			logging.Warn("Duplicate record ids detected",
				"dataset", name,
				"count", len(q.DuplicateIDs),
				"duplicates", q.DuplicateIDs,
			)
		}
	}

	return report
}

func inspect[R entities.Record](records []R, name func(R) string) interfaces.DatasetQuality {
	q := interfaces.DatasetQuality{Records: len(records), DuplicateIDs: []string{}}
	seen := make(map[entities.ID]bool, len(records))

	for _, rec := range records {
		if strings.TrimSpace(name(rec)) == "" {
			q.MissingNames++
		}

		id := rec.RecordID()
		if id == "" {
			q.MissingIDs++
			continue
		}
		if seen[id] {
			if len(q.DuplicateIDs) < maxReportedDuplicates && !slices.Contains(q.DuplicateIDs, string(id)) {
				q.DuplicateIDs = append(q.DuplicateIDs, string(id))
			}
			continue
		}
		seen[id] = true
	}
	return q
}

// ValidateQuery validates free-text search input. The empty query is valid
// and shows the whole dataset.
func (v *DataValidatorImpl) ValidateQuery(input string) error {
	if input == "" {
		return nil
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("input is not valid UTF-8")
	}

	if utf8.RuneCountInString(input) > maxQueryLength {
		return fmt.Errorf("input too long: maximum %d characters", maxQueryLength)
	}

	// Word count validation to prevent DoS attacks with many short words
	if len(strings.Fields(input)) > maxQueryWords {
		return fmt.Errorf("%w: search query too complex: maximum %d words allowed", ErrUnsafeQuery, maxQueryWords)
	}

	for _, r := range input {
		if unicode.IsControl(r) {
			return fmt.Errorf("input contains control characters")
		}
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("%w: input contains potentially dangerous content", ErrUnsafeQuery)
		}
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("%w: input contains excessive character repetition", ErrUnsafeQuery)
	}

	return nil
}

// ValidateID validates record identifiers taken from the URL
func (v *DataValidatorImpl) ValidateID(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("id cannot be empty")
	}
	if len(input) > maxIDLength {
		return fmt.Errorf("id too long: maximum %d characters", maxIDLength)
	}
	if !idRegex.MatchString(input) || strings.Contains(input, "..") {
		return fmt.Errorf("id contains invalid characters. Only letters, numbers, periods, hyphens and underscores are allowed")
	}
	return nil
}

// hasExcessiveRepetition reports a rune repeated more than maxRepetition
// times in a row.
func hasExcessiveRepetition(input string) bool {
	var prev rune = -1
	run := 0
	for _, r := range input {
		if r == prev {
			run++
			if run > maxRepetition {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
