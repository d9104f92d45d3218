package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/giygas/formulary-browser/config"
	"github.com/giygas/formulary-browser/favorites"
	"github.com/giygas/formulary-browser/handlers"
	"github.com/giygas/formulary-browser/health"
	"github.com/giygas/formulary-browser/logging"
	"github.com/giygas/formulary-browser/scheduler"
	"github.com/giygas/formulary-browser/search"
	"github.com/giygas/formulary-browser/server"
	"github.com/giygas/formulary-browser/session"
	"github.com/giygas/formulary-browser/validation"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the formulary browser HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logging.InitLoggerWithEnvironment(cfg.LogDir, cfg.Env, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	defer logging.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validator := validation.NewDataValidator()
	dc, err := loadStore(ctx, cfg.DataDir, validator)
	if err != nil {
		logging.Error("Failed to load datasets", "error", err)
		return err
	}
	dc.SetServerStartTime(time.Now())

	favs, err := openFavorites(cfg)
	if err != nil {
		logging.Error("Failed to open favorites", "backend", cfg.FavoritesBackend, "error", err)
		return err
	}
	defer func() {
		if err := favs.Close(); err != nil {
			logging.Warn("Failed to close favorites", "error", err)
		}
	}()

	registry, err := search.NewRegistry(cfg.SearchFields)
	if err != nil {
		return fmt.Errorf("invalid search fields: %w", err)
	}

	sessions := session.NewManager(dc, favs, session.Options{
		PageSize: cfg.PageSize,
		Debounce: cfg.Debounce,
		Registry: registry,
	}, cfg.SessionTTL, cfg.MaxSessions)
	defer sessions.StopAll()

	handler := handlers.NewHTTPHandler(dc, validator, favs, sessions, handlers.Options{
		Health:   health.NewHealthChecker(dc),
		Registry: registry,
		PageSize: cfg.PageSize,
	})
	srv := server.NewServer(cfg, handler)

	sched := scheduler.NewScheduler(dc, favs, sessions, cfg.SessionSweep)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error("Server failed to start", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logging.Info("Server shutdown complete")
	return nil
}

func openFavorites(cfg *config.Config) (*favorites.Store, error) {
	storage, err := favorites.Open(cfg.FavoritesBackend, cfg.FavoritesPath)
	if err != nil {
		return nil, err
	}
	return favorites.NewStore(storage), nil
}
