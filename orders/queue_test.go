package orders

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestQueueFIFO(t *testing.T) {
	q := NewQueue()
	if !q.IsEmpty() {
		t.Fatal("new queue should be empty")
	}

	for i := 0; i < 5; i++ {
		q.Enqueue(fmt.Sprintf("Med%d", i), i+1, decimal.NewFromInt(int64(i)))
	}
	if q.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", q.Len())
	}

	for i := 0; i < 5; i++ {
		o, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Dequeue() #%d reported empty", i)
		}
		if want := fmt.Sprintf("Med%d", i); o.Name != want {
			t.Errorf("Dequeue() #%d = %s, want %s", i, o.Name, want)
		}
	}

	if _, ok := q.Dequeue(); ok {
		t.Error("Dequeue() on drained queue should report empty")
	}
	if !q.IsEmpty() || q.Len() != 0 {
		t.Errorf("drained queue IsEmpty=%v Len=%d", q.IsEmpty(), q.Len())
	}
}

func TestEnqueueAssignsIdentity(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	q := &Queue{now: func() time.Time { return fixed }}

	a := q.Enqueue("Aspirin", 3, decimal.RequireFromString("3.00"))
	b := q.Enqueue("Aspirin", 3, decimal.RequireFromString("3.00"))

	if a.ID == "" || b.ID == "" {
		t.Fatal("orders should get an ID")
	}
	if a.ID == b.ID {
		t.Errorf("order IDs should differ, both %s", a.ID)
	}
	if !a.PlacedAt.Equal(fixed) {
		t.Errorf("PlacedAt = %v, want %v", a.PlacedAt, fixed)
	}
}

func TestPendingPreservesOrder(t *testing.T) {
	q := NewQueue()
	for range q.Pending() {
		t.Fatal("empty queue yielded an order")
	}

	q.Enqueue("B", 1, decimal.Zero)
	q.Enqueue("A", 1, decimal.Zero)
	q.Enqueue("C", 1, decimal.Zero)
	q.Dequeue()

	var got []string
	for o := range q.Pending() {
		got = append(got, o.Name)
	}
	if fmt.Sprint(got) != "[A C]" {
		t.Errorf("Pending() = %v, want [A C]", got)
	}

	// restartable
	got = got[:0]
	for o := range q.Pending() {
		got = append(got, o.Name)
	}
	if len(got) != 2 {
		t.Errorf("second Pending() traversal saw %d orders, want 2", len(got))
	}

	if q.Len() != 2 {
		t.Errorf("Pending() should not consume, Len() = %d", q.Len())
	}
}

func TestQueueCompactionKeepsOrder(t *testing.T) {
	q := NewQueue()
	next := 0
	for round := 0; round < 10; round++ {
		for i := 0; i < 50; i++ {
			q.Enqueue(fmt.Sprintf("%04d", next+q.Len()), 1, decimal.Zero)
		}
		for i := 0; i < 40; i++ {
			o, ok := q.Dequeue()
			if !ok {
				t.Fatal("unexpected empty queue")
			}
			if want := fmt.Sprintf("%04d", next); o.Name != want {
				t.Fatalf("Dequeue() = %s, want %s", o.Name, want)
			}
			next++
		}
	}
	if q.Len() != 100 {
		t.Errorf("Len() = %d, want 100", q.Len())
	}
}
