// Package data holds the pharmacy session: the inventory and the order
// queue behind a single lock, plus the bookkeeping needed to persist them.
package data

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/giygas/pharmacy-api/interfaces"
	"github.com/giygas/pharmacy-api/inventory"
	"github.com/giygas/pharmacy-api/logging"
	"github.com/giygas/pharmacy-api/metrics"
	"github.com/giygas/pharmacy-api/orders"
	"github.com/shopspring/decimal"
)

// ErrNoPersister is returned by Save when the session has no backing store
var ErrNoPersister = errors.New("no persister configured")

// Compile-time check to ensure Pharmacy implements PharmacyStore
var _ interfaces.PharmacyStore = (*Pharmacy)(nil)

// Pharmacy is the shared session state. Every inventory and queue operation
// runs under one mutex so that processing an order (lookup then debit) is
// atomic with respect to other callers.
type Pharmacy struct {
	mu        sync.Mutex
	stock     *inventory.Index
	queue     *orders.Queue
	persister interfaces.Persister
	units     int // running total of Quantity over stock

	dirty       bool
	dirtySince  time.Time
	lastSaved   time.Time
	lastSaveErr error
	now         func() time.Time
}

// NewPharmacy creates an empty session backed by persister, which may be nil
func NewPharmacy(persister interfaces.Persister) *Pharmacy {
	p := &Pharmacy{
		stock:     inventory.NewIndex(),
		queue:     orders.NewQueue(),
		persister: persister,
		now:       time.Now,
	}
	p.publishLocked()
	return p
}

// Load replaces the inventory with the persisted one. Pending orders are
// not persisted and are left untouched.
func (p *Pharmacy) Load() error {
	if p.persister == nil {
		return ErrNoPersister
	}
	idx, err := p.persister.Load()
	if err != nil {
		return fmt.Errorf("failed to load inventory: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stock = idx
	p.units = 0
	idx.Walk(func(m *inventory.Medicine) bool {
		p.units += m.Quantity
		return true
	})
	p.dirty = false
	p.dirtySince = time.Time{}
	p.lastSaved = p.now()
	p.publishLocked()
	return nil
}

// markDirtyLocked records an unsaved change. Caller holds mu.
func (p *Pharmacy) markDirtyLocked() {
	if !p.dirty {
		p.dirty = true
		p.dirtySince = p.now()
	}
}

// publishLocked refreshes the state gauges. Caller holds mu.
func (p *Pharmacy) publishLocked() {
	metrics.InventoryRecords.Set(float64(p.stock.Len()))
	metrics.InventoryUnits.Set(float64(p.units))
	metrics.OrdersPending.Set(float64(p.queue.Len()))
}

// RegisterMedicine inserts m, merging into an existing record of the same
// name, and returns the stored record. inventory.ErrQuantityOverflow is
// returned when the merged quantity would not fit.
func (p *Pharmacy) RegisterMedicine(m inventory.Medicine) (inventory.Medicine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, existed := p.stock.Find(m.Name)
	if err := p.stock.Insert(m); err != nil {
		return inventory.Medicine{}, err
	}
	stored, _ := p.stock.Find(m.Name)
	p.units += m.Quantity
	p.markDirtyLocked()
	p.publishLocked()

	if existed {
		logging.Info("Medicine stock merged", "name", m.Name, "added", m.Quantity, "quantity", stored.Quantity)
	} else {
		logging.Info("Medicine registered", "name", m.Name, "quantity", stored.Quantity)
	}
	return *stored, nil
}

// FindMedicine returns a copy of the named record
func (p *Pharmacy) FindMedicine(name string) (inventory.Medicine, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.stock.Find(name)
	if !ok {
		return inventory.Medicine{}, false
	}
	return *m, true
}

// ListStock returns all records in ascending name order
func (p *Pharmacy) ListStock() []inventory.Medicine {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := make([]inventory.Medicine, 0, p.stock.Len())
	return slices.AppendSeq(list, p.stock.All())
}

// UpdateMedicine overwrites one field of the named record and returns the
// updated copy. inventory.ErrNotFound is returned for unknown names.
func (p *Pharmacy) UpdateMedicine(name string, field inventory.Field, value any) (inventory.Medicine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	before := 0
	if m, ok := p.stock.Find(name); ok {
		before = m.Quantity
	}
	if err := p.stock.UpdateField(name, field, value); err != nil {
		return inventory.Medicine{}, err
	}
	m, _ := p.stock.Find(name)
	p.units += m.Quantity - before
	p.markDirtyLocked()
	p.publishLocked()

	logging.Info("Medicine updated", "name", name, "field", field.String())
	return *m, nil
}

// PlaceOrder queues a customer order
func (p *Pharmacy) PlaceOrder(name string, qty int, price decimal.Decimal) orders.Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	o := p.queue.Enqueue(name, qty, price)
	p.publishLocked()

	logging.Info("Order queued", "order_id", o.ID, "name", name, "quantity", qty, "price", price.StringFixed(2))
	return o
}

// PendingOrders returns the queued orders oldest first
func (p *Pharmacy) PendingOrders() []orders.Order {
	p.mu.Lock()
	defer p.mu.Unlock()

	list := make([]orders.Order, 0, p.queue.Len())
	return slices.AppendSeq(list, p.queue.Pending())
}

// ProcessNextOrder takes the head order off the queue and fulfils or
// rejects it
func (p *Pharmacy) ProcessNextOrder() orders.Outcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := orders.ProcessNext(p.queue, p.stock)
	metrics.OrdersProcessedTotal.WithLabelValues(out.Kind.String()).Inc()

	switch out.Kind {
	case orders.OutcomeFulfilled:
		p.units -= out.Order.Quantity
		p.markDirtyLocked()
		logging.Info("Order fulfilled",
			"order_id", out.Order.ID,
			"name", out.Name,
			"shelf", out.Shelf,
			"total", out.Total.StringFixed(2),
		)
	case orders.OutcomeRejected:
		logging.Warn("Order rejected: insufficient stock or medicine not found",
			"order_id", out.Order.ID,
			"name", out.Order.Name,
			"quantity", out.Order.Quantity,
		)
	}
	p.publishLocked()
	return out
}

// Save writes the inventory through the persister
func (p *Pharmacy) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saveLocked()
}

// SaveIfDirty saves only when there are unsaved changes and reports whether
// a save was attempted
func (p *Pharmacy) SaveIfDirty() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.dirty {
		return false, nil
	}
	return true, p.saveLocked()
}

func (p *Pharmacy) saveLocked() error {
	if p.persister == nil {
		return ErrNoPersister
	}

	if err := p.persister.Save(p.stock); err != nil {
		p.lastSaveErr = err
		metrics.SavesTotal.WithLabelValues("error").Inc()
		logging.Error("Failed to save inventory", "error", err)
		return fmt.Errorf("failed to save inventory: %w", err)
	}

	p.dirty = false
	p.dirtySince = time.Time{}
	p.lastSaved = p.now()
	p.lastSaveErr = nil
	metrics.SavesTotal.WithLabelValues("ok").Inc()
	logging.Info("Inventory saved", "medicines", p.stock.Len())
	return nil
}

// Stats returns a snapshot of the session state
func (p *Pharmacy) Stats() interfaces.StoreStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	stats := interfaces.StoreStats{
		Medicines:     p.stock.Len(),
		Units:         p.units,
		PendingOrders: p.queue.Len(),
		Dirty:         p.dirty,
		DirtySince:    p.dirtySince,
		LastSaved:     p.lastSaved,
	}
	if p.lastSaveErr != nil {
		stats.LastSaveError = p.lastSaveErr.Error()
	}
	return stats
}
