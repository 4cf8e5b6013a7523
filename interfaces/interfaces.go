// Package interfaces defines core abstractions for the pharmacy service
// to keep the HTTP, console and scheduling layers independent of storage.
package interfaces

import (
	"net/http"
	"time"

	"github.com/giygas/pharmacy-api/inventory"
	"github.com/giygas/pharmacy-api/orders"
	"github.com/shopspring/decimal"
)

// StoreStats is a point-in-time summary of the pharmacy state
type StoreStats struct {
	Medicines     int       `json:"medicines"`
	Units         int       `json:"units"`
	PendingOrders int       `json:"pending_orders"`
	Dirty         bool      `json:"dirty"`
	DirtySince    time.Time `json:"dirty_since"`
	LastSaved     time.Time `json:"last_saved"`
	LastSaveError string    `json:"last_save_error,omitempty"`
}

// PharmacyStore defines the contract for the shared pharmacy session.
// Implementations serialize access to the inventory and the order queue.
type PharmacyStore interface {
	// Inventory
	RegisterMedicine(m inventory.Medicine) (inventory.Medicine, error)
	FindMedicine(name string) (inventory.Medicine, bool)
	ListStock() []inventory.Medicine
	UpdateMedicine(name string, field inventory.Field, value any) (inventory.Medicine, error)

	// Orders
	PlaceOrder(name string, qty int, price decimal.Decimal) orders.Order
	PendingOrders() []orders.Order
	ProcessNextOrder() orders.Outcome

	// Persistence
	Save() error
	AutoSaver
}

// AutoSaver is the part of the store the background scheduler drives
type AutoSaver interface {
	SaveIfDirty() (bool, error)
	StatsProvider
}

// StatsProvider exposes the session summary used by health checks
type StatsProvider interface {
	Stats() StoreStats
}

// Persister loads and saves the inventory
type Persister interface {
	Load() (*inventory.Index, error)
	Save(idx *inventory.Index) error
}

// Scheduler defines the contract for background jobs
type Scheduler interface {
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers
type HTTPHandler interface {
	RegisterMedicine(w http.ResponseWriter, r *http.Request)
	ListStock(w http.ResponseWriter, r *http.Request)
	FindMedicine(w http.ResponseWriter, r *http.Request)
	UpdateMedicine(w http.ResponseWriter, r *http.Request)
	PlaceOrder(w http.ResponseWriter, r *http.Request)
	ListOrders(w http.ResponseWriter, r *http.Request)
	ProcessOrder(w http.ResponseWriter, r *http.Request)
	Save(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// InputValidator checks user supplied values before they reach the store
type InputValidator interface {
	ValidateName(name string) error
	ValidateMedicine(m inventory.Medicine) error
	ValidateOrder(name string, qty int, price decimal.Decimal) error
	// ParseUpdate converts a raw value into the typed value UpdateField expects
	ParseUpdate(field string, raw string) (inventory.Field, any, error)
}
