package datasets

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/logging"
)

// Section header rows start with a chapter number such as "1.0" or "4.2".
var sectionPattern = regexp.MustCompile(`^\d+\.\d+`)

const (
	headerScanRows     = 20
	defaultHeaderIndex = 4
)

// columnMap locates each formulary field inside a spreadsheet row
type columnMap struct {
	atc, name, indication, dose, category, dept, notes, brand, price int
}

func defaultColumns() columnMap {
	return columnMap{atc: 0, name: 1, indication: 2, dose: 3, category: 4, dept: 5, notes: 6, brand: 7, price: 8}
}

// ConvertStats summarizes one spreadsheet conversion
type ConvertStats struct {
	Rows           int
	HeaderRow      int // 1-based, 0 when the default layout was assumed
	Sections       int
	Records        int
	SkippedNoName  int
	SkippedHeaders int
}

// ConvertFormularyCSV turns the formulary spreadsheet export into records.
// The header row is searched for in the first rows by keyword and columns are
// mapped dynamically; rows whose first cell is a chapter number become the
// category of the rows that follow.
func ConvertFormularyCSV(r io.Reader) ([]entities.FormularyRecord, ConvertStats, error) {
	var stats ConvertStats

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to read csv: %w", err)
	}
	text, err := toUTF8(raw)
	if err != nil {
		return nil, stats, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, stats, fmt.Errorf("failed to parse csv: %w", err)
	}
	stats.Rows = len(rows)

	cols, headerIdx := detectHeader(rows)
	if headerIdx < 0 {
		logging.Warn("Could not find formulary header row, using default layout")
		headerIdx = defaultHeaderIndex
	} else {
		stats.HeaderRow = headerIdx + 1
	}

	currentSection := "Others"
	drugs := make([]entities.FormularyRecord, 0, len(rows))

	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 {
			continue
		}

		firstCell := strings.TrimSpace(row[0])
		if firstCell != "" && sectionPattern.MatchString(firstCell) {
			currentSection = strings.TrimSpace(strings.ReplaceAll(firstCell, `"`, ""))
			if len(row) > 1 && row[1] != "" {
				currentSection += " " + row[1]
			}
			stats.Sections++
			continue
		}

		name := cell(row, cols.name, "")
		if name == "" {
			stats.SkippedNoName++
			continue
		}
		if strings.Contains(strings.ToUpper(name), "NAMA GENERIK") {
			stats.SkippedHeaders++
			continue
		}

		brand := cell(row, cols.brand, "Generic")
		if brand == "" {
			brand = "Generic"
		}

		price := strings.TrimSpace(strings.ReplaceAll(cell(row, cols.price, "N/A"), "\n", " "))

		notes := cell(row, cols.notes, "")
		if dept := cell(row, cols.dept, ""); dept != "" {
			notes += fmt.Sprintf(" (Dept: %s)", dept)
		}

		forms := entities.List{"Unit"}
		if strings.Contains(name, " ") {
			parts := strings.Split(name, " ")
			forms = entities.List{parts[len(parts)-1]}
		}

		drugs = append(drugs, entities.FormularyRecord{
			ID:            entities.ID(fmt.Sprintf("drug-%d", i)),
			GenericName:   name,
			BrandName:     brand,
			Category:      currentSection,
			Forms:         forms,
			Indications:   cell(row, cols.indication, "See detailed info"),
			Dosing:        cell(row, cols.dose, "See detailed info"),
			RenalDose:     "Check guidelines",
			Pregnancy:     "Not specified",
			HighAlert:     false,
			Notes:         strings.TrimSpace(notes),
			Price:         price,
			PrescriberCat: cell(row, cols.category, "N/A"),
		})
	}

	stats.Records = len(drugs)
	logging.Info("Formulary spreadsheet converted",
		"rows", stats.Rows,
		"header_row", stats.HeaderRow,
		"sections", stats.Sections,
		"records", stats.Records,
		"skipped_no_name", stats.SkippedNoName,
	)

	return drugs, stats, nil
}

// detectHeader finds the header row among the first rows and maps columns
// from its labels. It returns -1 when no header is found.
func detectHeader(rows [][]string) (columnMap, int) {
	cols := defaultColumns()

	for i, row := range rows {
		if i >= headerScanRows {
			break
		}
		joined := strings.ToUpper(strings.Join(row, " "))
		if !strings.Contains(joined, "ATC") {
			continue
		}
		if !strings.Contains(joined, "GENERIK") && !strings.Contains(joined, "GENERIC") && !strings.Contains(joined, "NAME") {
			continue
		}

		upper := make([]string, len(row))
		for j, c := range row {
			upper[j] = strings.ToUpper(c)
		}

		assign := func(target *int, keywords ...string) {
			if idx := findColumn(upper, keywords); idx > -1 {
				*target = idx
			}
		}
		assign(&cols.atc, "ATC")
		assign(&cols.name, "GENERIK", "GENERIC", "NAME", "UBAT")
		assign(&cols.indication, "INDIKASI", "INDICATION")
		assign(&cols.dose, "DOS", "DOSE")
		assign(&cols.brand, "BRAND")
		assign(&cols.price, "PRICE", "HARGA", "RM")
		assign(&cols.category, "KATEGORI", "CAT", "PRESCRIBER")
		assign(&cols.notes, "CATATAN", "NOTE", "REMARK")
		assign(&cols.dept, "JABATAN", "DEPT")

		return cols, i
	}

	return cols, -1
}

// findColumn returns the first cell containing a keyword, trying keywords in order.
func findColumn(header []string, keywords []string) int {
	for _, k := range keywords {
		for idx, c := range header {
			if strings.Contains(c, k) {
				return idx
			}
		}
	}
	return -1
}

// cell returns the trimmed value at idx, or def when the row is too short.
func cell(row []string, idx int, def string) string {
	if idx < 0 || idx >= len(row) {
		return def
	}
	return strings.TrimSpace(row[idx])
}

// WriteFormularyJSON writes records as the indented formulary document.
func WriteFormularyJSON(w io.Writer, records []entities.FormularyRecord) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode formulary: %w", err)
	}
	return nil
}
