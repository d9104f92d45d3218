// Package scheduler runs the background jobs of the formulary browser: the
// idle-session sweep and the hourly usage statistics.
package scheduler

import (
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/formulary-browser/interfaces"
	"github.com/giygas/formulary-browser/logging"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

const statsInterval = time.Hour

// Sweeper expires idle sessions.
type Sweeper interface {
	Sweep() int
	Len() int
}

// Scheduler handles periodic maintenance using dependency injection
type Scheduler struct {
	dataStore     interfaces.DataStore
	favorites     interfaces.FavoritesStore
	sessions      Sweeper
	sweepInterval time.Duration
	scheduler     *gocron.Scheduler
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, favorites interfaces.FavoritesStore, sessions Sweeper, sweepInterval time.Duration) *Scheduler {
	return &Scheduler{
		dataStore:     dataStore,
		favorites:     favorites,
		sessions:      sessions,
		sweepInterval: sweepInterval,
		scheduler:     gocron.NewScheduler(time.Local),
	}
}

// Start schedules the jobs and runs them asynchronously
func (s *Scheduler) Start() error {
	if s.sweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval: %v", s.sweepInterval)
	}

	if _, err := s.scheduler.Every(s.sweepInterval).Do(s.sweepSessions); err != nil {
		logging.Error("Failed to schedule session sweep", "error", err)
		return fmt.Errorf("failed to schedule session sweep: %w", err)
	}

	if _, err := s.scheduler.Every(statsInterval).WaitForSchedule().Do(s.logStats); err != nil {
		logging.Error("Failed to schedule stats", "error", err)
		return fmt.Errorf("failed to schedule stats: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "sweep_interval", s.sweepInterval.String())
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweepSessions drops the sessions idle past their ttl
func (s *Scheduler) sweepSessions() {
	if n := s.sessions.Sweep(); n > 0 {
		logging.Debug("Session sweep finished", "expired", n)
	}
}

// logStats logs a summary of the browser usage
func (s *Scheduler) logStats() {
	counts := s.dataStore.Counts()
	args := []any{
		"active_sessions", s.sessions.Len(),
		"favorites", s.favorites.Len(),
		"uptime", time.Since(s.dataStore.GetServerStartTime()).Round(time.Second).String(),
	}
	for name, n := range counts {
		args = append(args, name, n)
	}
	logging.Info("Formulary browser stats", args...)
}
