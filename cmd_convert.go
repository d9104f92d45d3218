package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/giygas/formulary-browser/datasets"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input.csv> [output.json]",
	Short: "Convert the formulary spreadsheet export to the formulary document",
	Long: `Convert the CSV export of the formulary spreadsheet to the JSON
document read by the browser. The header row is detected by keyword in the
first rows, and chapter rows such as "4.1 Analgesics" become categories.

Without an output path the document is written to stdout.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	records, stats, err := datasets.ConvertFormularyCSV(in)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if len(args) == 2 {
		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := datasets.WriteFormularyJSON(out, records); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Converted %d records from %d rows (%d sections, %d rows without a name skipped)\n",
		stats.Records, stats.Rows, stats.Sections, stats.SkippedNoName)
	return nil
}
