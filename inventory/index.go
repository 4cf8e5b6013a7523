package inventory

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no record exists for a name
	ErrNotFound = errors.New("medicine not found")
	// ErrUnknownField is returned for an update selector outside Field
	ErrUnknownField = errors.New("unknown medicine field")
	// ErrInvalidValue is returned when the update value has the wrong type for the field
	ErrInvalidValue = errors.New("invalid value for field")
	// ErrQuantityOverflow is returned when merging stock would exceed the int range
	ErrQuantityOverflow = errors.New("quantity overflow")
)

// Field selects the attribute overwritten by UpdateField
type Field int

const (
	FieldQuantity Field = iota + 1
	FieldPrice
	FieldExpiry
	FieldShelf
)

func (f Field) String() string {
	switch f {
	case FieldQuantity:
		return "quantity"
	case FieldPrice:
		return "price"
	case FieldExpiry:
		return "expiry_date"
	case FieldShelf:
		return "shelf"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// ParseField maps a field name to its selector. Both the JSON names and the
// short console names are accepted.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quantity", "qty":
		return FieldQuantity, nil
	case "price":
		return FieldPrice, nil
	case "expiry_date", "expiry", "expirydate":
		return FieldExpiry, nil
	case "shelf":
		return FieldShelf, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

type node struct {
	medicine    Medicine
	left, right *node
}

// Index is an unbalanced binary search tree of medicines keyed by name.
// The zero value is an empty index. Index is not safe for concurrent use.
type Index struct {
	root *node
	size int
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{}
}

// Insert adds m to the index. When a record with the same name exists only
// its quantity grows; its price, expiry date and shelf are kept. A merge
// whose sum does not fit in an int leaves the record unchanged and returns
// ErrQuantityOverflow. Quantities are expected to be non-negative.
func (idx *Index) Insert(m Medicine) error {
	link := &idx.root
	for *link != nil {
		n := *link
		switch cmp := strings.Compare(m.Name, n.medicine.Name); {
		case cmp == 0:
			if m.Quantity > math.MaxInt-n.medicine.Quantity {
				return fmt.Errorf("%w: %s has %d, adding %d", ErrQuantityOverflow, m.Name, n.medicine.Quantity, m.Quantity)
			}
			n.medicine.Quantity += m.Quantity
			return nil
		case cmp < 0:
			link = &n.left
		default:
			link = &n.right
		}
	}
	*link = &node{medicine: m}
	idx.size++
	return nil
}

// Find returns the stored record for name. The returned pointer aliases the
// tree, so writes through it change the inventory.
func (idx *Index) Find(name string) (*Medicine, bool) {
	n := idx.root
	for n != nil {
		switch cmp := strings.Compare(name, n.medicine.Name); {
		case cmp == 0:
			return &n.medicine, true
		case cmp < 0:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil, false
}

// UpdateField overwrites a single attribute of the named record. The value
// must be an int for FieldQuantity, a decimal.Decimal for FieldPrice and a
// string for FieldExpiry and FieldShelf. Range checks are the caller's job.
func (idx *Index) UpdateField(name string, field Field, value any) error {
	m, ok := idx.Find(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	switch field {
	case FieldQuantity:
		v, ok := value.(int)
		if !ok {
			return fmt.Errorf("%w %s: %T", ErrInvalidValue, field, value)
		}
		m.Quantity = v
	case FieldPrice:
		v, ok := value.(decimal.Decimal)
		if !ok {
			return fmt.Errorf("%w %s: %T", ErrInvalidValue, field, value)
		}
		m.Price = v
	case FieldExpiry:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w %s: %T", ErrInvalidValue, field, value)
		}
		m.ExpiryDate = v
	case FieldShelf:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w %s: %T", ErrInvalidValue, field, value)
		}
		m.Shelf = v
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

// Walk visits every record in ascending name order until fn returns false.
func (idx *Index) Walk(fn func(m *Medicine) bool) {
	walk(idx.root, fn)
}

func walk(n *node, fn func(m *Medicine) bool) bool {
	if n == nil {
		return true
	}
	if !walk(n.left, fn) {
		return false
	}
	if !fn(&n.medicine) {
		return false
	}
	return walk(n.right, fn)
}

// All yields copies of the records in ascending name order. Each call starts
// a fresh traversal.
func (idx *Index) All() iter.Seq[Medicine] {
	return func(yield func(Medicine) bool) {
		idx.Walk(func(m *Medicine) bool {
			return yield(*m)
		})
	}
}

// Len returns the number of distinct records
func (idx *Index) Len() int {
	return idx.size
}
