package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/giygas/formulary-browser/datasets"
	"github.com/giygas/formulary-browser/datasets/entities"
	"github.com/giygas/formulary-browser/pagination"
	"github.com/giygas/formulary-browser/search"
	"github.com/giygas/formulary-browser/session"
	"github.com/giygas/formulary-browser/validation"
)

var searchCmd = &cobra.Command{
	Use:   "search <dataset> [query]",
	Short: "Filter one dataset and print the matching records as JSON",
	Long: `Filter one dataset with the same rules as the browser: an exact
category filter followed by a case-insensitive substring match over the
dataset's search fields.

Datasets: formulary, antibiotics, dilution, paediatric, frank-shann, counseling`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSearch,
}

var (
	searchCategory  string
	searchLimit     int
	searchFavorites bool
)

func init() {
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", search.AllCategories, "category filter")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", pagination.DefaultPageSize, "maximum records to print")
	searchCmd.Flags().BoolVar(&searchFavorites, "favorites", false, "only favorite formulary records")
}

// searchResult is the JSON document printed by the search command
type searchResult struct {
	Dataset      string `json:"dataset"`
	Total        int    `json:"total"`
	Count        int    `json:"count"`
	Records      []any  `json:"records"`
	EmptyMessage string `json:"emptyMessage,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	quietLogger(cfg)

	name, err := datasets.ParseName(args[0])
	if err != nil {
		return err
	}

	q := search.Query{Category: searchCategory}
	if len(args) == 2 {
		q.Text = args[1]
	}

	validator := validation.NewDataValidator()
	err = validator.ValidateQuery(q.Text)
	unsafe := errors.Is(err, validation.ErrUnsafeQuery)
	if err != nil && !unsafe {
		return fmt.Errorf("invalid query: %w", err)
	}
	if searchFavorites && name != datasets.Formulary {
		return session.ErrNoFavoritesView
	}
	if unsafe {
		// nothing to load, the text matches no record
		return printJSON(cmd.OutOrStdout(), searchResult{
			Dataset:      string(name),
			Records:      []any{},
			EmptyMessage: session.EmptyMessages[string(name)],
		})
	}

	registry, err := search.NewRegistry(cfg.SearchFields)
	if err != nil {
		return fmt.Errorf("invalid search fields: %w", err)
	}

	dc, err := loadStore(cmd.Context(), cfg.DataDir, validator)
	if err != nil {
		return err
	}

	w := pagination.New(searchLimit)
	var res searchResult
	switch name {
	case datasets.Formulary:
		records := dc.GetFormulary()
		if searchFavorites {
			favs, err := openFavorites(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = favs.Close() }()
			records = search.Where(records, func(r entities.FormularyRecord) bool { return favs.IsFavorite(string(r.ID)) })
		}
		res = filterRecords(records, q, registry.Formulary, w)
	case datasets.Antibiotics:
		res = filterRecords(dc.GetAntibiotics(), q, registry.Antibiotics, w)
	case datasets.Dilution:
		res = filterRecords(dc.GetDilutions(), q, registry.Dilution, w)
	case datasets.Paediatric:
		res = filterRecords(dc.GetPaediatric(), q, registry.Paediatric, w)
	case datasets.FrankShann:
		res = filterRecords(dc.GetFrankShann(), q, registry.FrankShann, w)
	case datasets.Counseling:
		res = filterRecords(dc.GetCounseling(), q, registry.Counseling, w)
	}

	res.Dataset = string(name)
	if res.Total == 0 {
		res.EmptyMessage = session.EmptyMessages[string(name)]
		if searchFavorites {
			res.EmptyMessage = "No favorites yet"
		}
	}

	return printJSON(cmd.OutOrStdout(), res)
}

func filterRecords[R any](records []R, q search.Query, spec search.Spec[R], w pagination.Window) searchResult {
	matched := search.Filter(records, q, spec)
	visible := pagination.Apply(w, matched)

	out := make([]any, len(visible))
	for i, r := range visible {
		out[i] = r
	}
	return searchResult{Total: len(matched), Count: len(visible), Records: out}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
