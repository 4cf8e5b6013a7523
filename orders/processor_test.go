package orders

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/giygas/pharmacy-api/inventory"
	"github.com/shopspring/decimal"
)

func stockWithAspirin() *inventory.Index {
	idx := inventory.NewIndex()
	idx.Insert(inventory.Medicine{
		Name:       "Aspirin",
		Quantity:   100,
		Price:      decimal.RequireFromString("2.50"),
		ExpiryDate: "2026-01-01",
		Shelf:      "A1",
	})
	idx.Insert(inventory.Medicine{
		Name:       "Aspirin",
		Quantity:   50,
		Price:      decimal.RequireFromString("9.99"),
		ExpiryDate: "2099-01-01",
		Shelf:      "Z9",
	})
	return idx
}

func TestProcessNextFulfilled(t *testing.T) {
	stock := stockWithAspirin()
	q := NewQueue()
	q.Enqueue("Aspirin", 30, decimal.RequireFromString("3.00"))

	out := ProcessNext(q, stock)

	if out.Kind != OutcomeFulfilled {
		t.Fatalf("Kind = %v, want fulfilled", out.Kind)
	}
	if out.Name != "Aspirin" || out.Shelf != "A1" {
		t.Errorf("Name/Shelf = %s/%s, want Aspirin/A1", out.Name, out.Shelf)
	}
	if !out.Total.Equal(decimal.RequireFromString("90.00")) {
		t.Errorf("Total = %s, want 90.00", out.Total)
	}
	m, _ := stock.Find("Aspirin")
	if m.Quantity != 120 {
		t.Errorf("stock Quantity = %d, want 120", m.Quantity)
	}
	if !q.IsEmpty() {
		t.Error("queue should be empty after processing its only order")
	}
}

func TestProcessNextUsesOrderPrice(t *testing.T) {
	stock := stockWithAspirin()
	q := NewQueue()
	q.Enqueue("Aspirin", 4, decimal.RequireFromString("0.25"))

	out := ProcessNext(q, stock)
	if !out.Total.Equal(decimal.RequireFromString("1.00")) {
		t.Errorf("Total = %s, want 1.00 (order price, not catalogue price)", out.Total)
	}
}

func TestProcessNextRejected(t *testing.T) {
	tests := []struct {
		name     string
		medicine string
		qty      int
	}{
		{"unknown medicine", "Ibuprofen", 10},
		{"insufficient stock", "Aspirin", 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stock := stockWithAspirin()
			q := NewQueue()
			q.Enqueue(tt.medicine, tt.qty, decimal.RequireFromString("1.00"))

			out := ProcessNext(q, stock)
			if out.Kind != OutcomeRejected {
				t.Fatalf("Kind = %v, want rejected", out.Kind)
			}
			if out.Order == nil || out.Order.Name != tt.medicine {
				t.Errorf("Order = %+v, want the rejected order", out.Order)
			}
			if !q.IsEmpty() {
				t.Error("rejected order should still be removed from the queue")
			}
			m, _ := stock.Find("Aspirin")
			if m.Quantity != 150 {
				t.Errorf("stock Quantity = %d, want 150 (no partial debit)", m.Quantity)
			}
		})
	}
}

func TestProcessNextExactStock(t *testing.T) {
	stock := stockWithAspirin()
	q := NewQueue()
	q.Enqueue("Aspirin", 150, decimal.RequireFromString("1.00"))

	if out := ProcessNext(q, stock); out.Kind != OutcomeFulfilled {
		t.Fatalf("Kind = %v, want fulfilled", out.Kind)
	}
	m, ok := stock.Find("Aspirin")
	if !ok || m.Quantity != 0 {
		t.Errorf("record after draining = %+v, %v; want quantity 0 still present", m, ok)
	}
}

func TestProcessNextEmptyQueue(t *testing.T) {
	stock := stockWithAspirin()
	q := NewQueue()

	out := ProcessNext(q, stock)
	if out.Kind != OutcomeNoOrders {
		t.Fatalf("Kind = %v, want no_orders", out.Kind)
	}
	if out.Order != nil {
		t.Errorf("Order = %+v, want nil", out.Order)
	}
	m, _ := stock.Find("Aspirin")
	if m.Quantity != 150 {
		t.Errorf("stock changed to %d", m.Quantity)
	}
}

func TestProcessNextShrinksQueueByOne(t *testing.T) {
	stock := stockWithAspirin()
	q := NewQueue()
	q.Enqueue("Aspirin", 10, decimal.RequireFromString("1.00"))
	q.Enqueue("Ghost", 1, decimal.RequireFromString("1.00"))
	q.Enqueue("Aspirin", 1000, decimal.RequireFromString("1.00"))
	q.Enqueue("Aspirin", 5, decimal.RequireFromString("1.00"))

	want := []OutcomeKind{OutcomeFulfilled, OutcomeRejected, OutcomeRejected, OutcomeFulfilled}
	for i, kind := range want {
		before := q.Len()
		out := ProcessNext(q, stock)
		if out.Kind != kind {
			t.Errorf("order %d: Kind = %v, want %v", i, out.Kind, kind)
		}
		if q.Len() != before-1 {
			t.Errorf("order %d: Len() = %d, want %d", i, q.Len(), before-1)
		}
	}
	m, _ := stock.Find("Aspirin")
	if m.Quantity != 135 {
		t.Errorf("stock Quantity = %d, want 135", m.Quantity)
	}
}

func TestOutcomeJSON(t *testing.T) {
	b, err := json.Marshal(Outcome{Kind: OutcomeNoOrders})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(b), `"outcome":"no_orders"`) {
		t.Errorf("JSON = %s, want outcome no_orders", b)
	}
}
