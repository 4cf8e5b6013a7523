// Package scheduler runs the background jobs of the pharmacy service:
// periodic autosave of the inventory and monitoring of unsaved changes.
package scheduler

import (
	"fmt"
	"time"

	"github.com/giygas/pharmacy-api/interfaces"
	"github.com/giygas/pharmacy-api/logging"
	"github.com/go-co-op/gocron"
)

// unsavedWarnAfter is how long changes may stay unsaved before the monitor warns
const unsavedWarnAfter = time.Hour

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// Scheduler handles autosave and save-state monitoring using dependency injection
type Scheduler struct {
	store           interfaces.AutoSaver
	autosaveMinutes int
	scheduler       *gocron.Scheduler
	now             func() time.Time
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(store interfaces.AutoSaver, autosaveMinutes int) *Scheduler {
	s := gocron.NewScheduler(time.Local)
	s.SingletonModeAll()

	return &Scheduler{
		store:           store,
		autosaveMinutes: autosaveMinutes,
		scheduler:       s,
		now:             time.Now,
	}
}

// Start schedules the autosave and monitoring jobs
func (s *Scheduler) Start() error {
	if s.autosaveMinutes <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %d", s.autosaveMinutes)
	}

	_, err := s.scheduler.Every(s.autosaveMinutes).Minutes().WaitForSchedule().Do(s.autosave)
	if err != nil {
		logging.Error("Failed to schedule autosave", "error", err)
		return fmt.Errorf("failed to schedule autosave: %w", err)
	}

	_, err = s.scheduler.Every(1).Hour().WaitForSchedule().Do(func() { s.checkUnsaved() })
	if err != nil {
		logging.Error("Failed to schedule save monitoring", "error", err)
		return fmt.Errorf("failed to schedule save monitoring: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "autosave_minutes", s.autosaveMinutes)

	return nil
}

// Stop stops the jobs and flushes any unsaved changes
func (s *Scheduler) Stop() {
	s.scheduler.Stop()

	if saved, err := s.store.SaveIfDirty(); err != nil {
		logging.Error("Final save failed", "error", err)
	} else if saved {
		logging.Info("Final save completed")
	}
}

// autosave saves the inventory when it has unsaved changes
func (s *Scheduler) autosave() {
	start := s.now()
	saved, err := s.store.SaveIfDirty()
	if err != nil {
		logging.Error("Autosave failed", "error", err)
		return
	}
	if saved {
		logging.Debug("Autosave completed", "duration", s.now().Sub(start).String())
	}
}

// checkUnsaved warns when changes have been waiting too long for a save
func (s *Scheduler) checkUnsaved() bool {
	stats := s.store.Stats()
	if !stats.Dirty || stats.DirtySince.IsZero() {
		return false
	}

	age := s.now().Sub(stats.DirtySince)
	if age <= unsavedWarnAfter {
		return false
	}

	logging.Warn("Inventory has unsaved changes older than 1 hour",
		"unsaved_for", age.Round(time.Minute).String(),
		"last_save_error", stats.LastSaveError,
	)
	return true
}
