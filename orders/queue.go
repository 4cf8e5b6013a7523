// Package orders implements the first-come-first-served customer order queue
// and the processing step that debits inventory for the head order.
package orders

import (
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a pending customer request. Price is the agreed unit sale price,
// independent of the catalogue price held in the inventory.
type Order struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	PlacedAt time.Time       `json:"placed_at"`
}

// Queue is a FIFO of orders. The zero value is an empty queue.
// Queue is not safe for concurrent use.
type Queue struct {
	items []Order
	head  int
	now   func() time.Time
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends an order at the tail. The medicine is not checked against
// the inventory until the order is processed.
func (q *Queue) Enqueue(name string, qty int, price decimal.Decimal) Order {
	now := time.Now
	if q.now != nil {
		now = q.now
	}
	o := Order{
		ID:       uuid.NewString(),
		Name:     name,
		Quantity: qty,
		Price:    price,
		PlacedAt: now().UTC(),
	}
	q.items = append(q.items, o)
	return o
}

// Dequeue removes and returns the head order
func (q *Queue) Dequeue() (Order, bool) {
	if q.IsEmpty() {
		return Order{}, false
	}
	o := q.items[q.head]
	q.items[q.head] = Order{}
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	} else if q.head > 32 && q.head*2 >= len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return o, true
}

// Pending yields the queued orders oldest first
func (q *Queue) Pending() iter.Seq[Order] {
	return func(yield func(Order) bool) {
		for i := q.head; i < len(q.items); i++ {
			if !yield(q.items[i]) {
				return
			}
		}
	}
}

// IsEmpty reports whether no orders are waiting
func (q *Queue) IsEmpty() bool {
	return q.head >= len(q.items)
}

// Len returns the number of waiting orders
func (q *Queue) Len() int {
	return len(q.items) - q.head
}
