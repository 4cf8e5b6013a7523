// Package health provides health checking functionality for the pharmacy API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/pharmacy-api/interfaces"
)

// staleAfterIntervals is how many autosave intervals unsaved changes may
// wait before the service reports itself degraded
const staleAfterIntervals = 3

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	store            interfaces.StatsProvider
	autosaveInterval time.Duration
	now              func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(store interfaces.StatsProvider, autosaveInterval time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		store:            store,
		autosaveInterval: autosaveInterval,
		now:              time.Now,
	}
}

// HealthCheck returns HTTP-specific health data. Used by /health.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	stats := h.store.Stats()
	now := h.now()

	var unsaved time.Duration
	if stats.Dirty && !stats.DirtySince.IsZero() {
		unsaved = now.Sub(stats.DirtySince)
	}

	switch {
	case stats.LastSaveError != "":
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case h.autosaveInterval > 0 && unsaved > staleAfterIntervals*h.autosaveInterval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"medicines":       stats.Medicines,
		"units":           stats.Units,
		"pending_orders":  stats.PendingOrders,
		"dirty":           stats.Dirty,
		"unsaved_minutes": math.Round(unsaved.Minutes()*10) / 10,
	}
	if !stats.LastSaved.IsZero() {
		data["last_saved"] = stats.LastSaved.Format(time.RFC3339)
		data["next_autosave"] = h.NextAutosave(stats.LastSaved).Format(time.RFC3339)
	}
	if stats.LastSaveError != "" {
		data["last_save_error"] = stats.LastSaveError
	}

	return status, data, httpStatus
}

// NextAutosave returns the first autosave tick after lastSaved that is not
// in the past
func (h *HealthCheckerImpl) NextAutosave(lastSaved time.Time) time.Time {
	now := h.now()
	if h.autosaveInterval <= 0 || lastSaved.IsZero() {
		return now
	}

	next := lastSaved.Add(h.autosaveInterval)
	if next.After(now) {
		return next
	}

	missed := now.Sub(lastSaved) / h.autosaveInterval
	return lastSaved.Add((missed + 1) * h.autosaveInterval)
}
