package orders

import (
	"github.com/giygas/pharmacy-api/inventory"
	"github.com/shopspring/decimal"
)

// OutcomeKind classifies the result of processing one order
type OutcomeKind int

const (
	OutcomeNoOrders OutcomeKind = iota
	OutcomeRejected
	OutcomeFulfilled
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeNoOrders:
		return "no_orders"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFulfilled:
		return "fulfilled"
	}
	return "unknown"
}

// MarshalText lets the kind render as its name in JSON
func (k OutcomeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome reports what ProcessNext did. Order is set unless Kind is
// OutcomeNoOrders; Shelf and Total are only set for OutcomeFulfilled.
type Outcome struct {
	Kind  OutcomeKind     `json:"outcome"`
	Order *Order          `json:"order,omitempty"`
	Name  string          `json:"name,omitempty"`
	Shelf string          `json:"shelf,omitempty"`
	Total decimal.Decimal `json:"total"`
}

// ProcessNext removes the head order and fulfils it from stock when the
// medicine exists with enough quantity. The order leaves the queue whatever
// the outcome; a rejected order is not requeued and stock is never partially
// debited. Unknown medicines and short stock are both reported as rejected.
func ProcessNext(q *Queue, stock *inventory.Index) Outcome {
	order, ok := q.Dequeue()
	if !ok {
		return Outcome{Kind: OutcomeNoOrders}
	}

	m, found := stock.Find(order.Name)
	if !found || m.Quantity < order.Quantity {
		return Outcome{Kind: OutcomeRejected, Order: &order, Name: order.Name}
	}

	m.Quantity -= order.Quantity
	return Outcome{
		Kind:  OutcomeFulfilled,
		Order: &order,
		Name:  m.Name,
		Shelf: m.Shelf,
		Total: order.Price.Mul(decimal.NewFromInt(int64(order.Quantity))),
	}
}
