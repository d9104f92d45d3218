package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/giygas/formulary-browser/config"
	"github.com/giygas/formulary-browser/data"
	"github.com/giygas/formulary-browser/datasets"
	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
)

var rootCmd = &cobra.Command{
	Use:   "formulary",
	Short: "HSM formulary browser",
	Long: `Browse the hospital formulary, antibiotic, dilution, paediatric,
Frank Shann and counseling datasets over an HTTP JSON API or from the
command line.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, searchCmd, convertCmd, favoritesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env from the working directory, falling back to the
// directory of the executable, then validates the environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		if ex, exErr := os.Executable(); exErr == nil {
			_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadStore reads every dataset, reports their quality and publishes them.
// Missing or malformed documents leave their dataset empty.
func loadStore(ctx context.Context, dataDir string, validator interfaces.DataValidator) (*data.DataContainer, error) {
	start := time.Now()

	bundle, err := datasets.NewLoader(dataDir).Load(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("loading datasets: %w", err)
		}
		logging.Warn("Some datasets could not be loaded", "dir", dataDir, "error", err)
	}

	report := validator.ReportDataQuality(bundle)

	dc := data.NewDataContainer()
	if err := dc.Publish(bundle, report); err != nil {
		return nil, fmt.Errorf("publishing datasets: %w", err)
	}

	logging.Debug("Datasets published", "duration", time.Since(start).String())
	return dc, nil
}

// quietLogger keeps the CLI commands' stdout clean
func quietLogger(cfg *config.Config) {
	logging.InitLoggerWithEnvironment("", cfg.Env, "error", cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
}
