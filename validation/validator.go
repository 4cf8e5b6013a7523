// Package validation checks user input before it reaches the inventory or
// the order queue. Every text field ends up as a single whitespace-delimited
// token in the data file, so whitespace is never accepted.
package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/pharmacy-api/interfaces"
	"github.com/giygas/pharmacy-api/inventory"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidInput wraps every validation failure
var ErrInvalidInput = errors.New("invalid input")

// Compile-time check to ensure InputValidatorImpl implements InputValidator
var _ interfaces.InputValidator = (*InputValidatorImpl)(nil)

// InputValidatorImpl implements the interfaces.InputValidator interface
type InputValidatorImpl struct{}

// NewInputValidator creates a new input validator
func NewInputValidator() *InputValidatorImpl {
	return &InputValidatorImpl{}
}

// Normalize trims surrounding space and converts to Unicode NFC so that
// composed and decomposed spellings of a name share one inventory key.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// validateToken checks a text field that is stored as one token
func validateToken(label, value string, maxLen int) error {
	if value == "" {
		return invalid("%s is required", label)
	}
	if !utf8.ValidString(value) {
		return invalid("%s is not valid UTF-8", label)
	}
	if n := utf8.RuneCountInString(value); n > maxLen {
		return invalid("%s too long: %d characters (max %d)", label, n, maxLen)
	}
	for _, r := range value {
		if unicode.IsSpace(r) {
			return invalid("%s must not contain whitespace", label)
		}
		if unicode.IsControl(r) {
			return invalid("%s must not contain control characters", label)
		}
	}
	return nil
}

// ValidateName checks a medicine name
func (v *InputValidatorImpl) ValidateName(name string) error {
	return validateToken("name", name, inventory.MaxNameLength)
}

func validateQuantity(qty int) error {
	if qty < 0 {
		return invalid("quantity must not be negative, got %d", qty)
	}
	return nil
}

// validatePrice also rejects fraction digits the data file cannot keep
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return invalid("price must not be negative, got %s", price)
	}
	if !price.Equal(price.Round(inventory.PriceDecimals)) {
		return invalid("price must have at most %d decimal places, got %s", inventory.PriceDecimals, price)
	}
	return nil
}

// ValidateMedicine checks every field of a record about to be registered
func (v *InputValidatorImpl) ValidateMedicine(m inventory.Medicine) error {
	if err := v.ValidateName(m.Name); err != nil {
		return err
	}
	if err := validateQuantity(m.Quantity); err != nil {
		return err
	}
	if err := validatePrice(m.Price); err != nil {
		return err
	}
	if err := validateToken("expiry date", m.ExpiryDate, inventory.MaxExpiryLength); err != nil {
		return err
	}
	return validateToken("shelf", m.Shelf, inventory.MaxShelfLength)
}

// ValidateOrder checks a customer order before it is queued. The medicine
// is not required to exist yet.
func (v *InputValidatorImpl) ValidateOrder(name string, qty int, price decimal.Decimal) error {
	if err := v.ValidateName(name); err != nil {
		return err
	}
	if err := validateQuantity(qty); err != nil {
		return err
	}
	return validatePrice(price)
}

// ParseUpdate resolves the field selector and converts raw into the value
// type inventory.Index.UpdateField expects for it.
func (v *InputValidatorImpl) ParseUpdate(field string, raw string) (inventory.Field, any, error) {
	f, err := inventory.ParseField(field)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	raw = Normalize(raw)
	switch f {
	case inventory.FieldQuantity:
		qty, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, invalid("quantity must be an integer, got %q", raw)
		}
		if err := validateQuantity(qty); err != nil {
			return 0, nil, err
		}
		return f, qty, nil
	case inventory.FieldPrice:
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return 0, nil, invalid("price must be a number, got %q", raw)
		}
		if err := validatePrice(price); err != nil {
			return 0, nil, err
		}
		return f, price, nil
	case inventory.FieldExpiry:
		if err := validateToken("expiry date", raw, inventory.MaxExpiryLength); err != nil {
			return 0, nil, err
		}
		return f, raw, nil
	default:
		if err := validateToken("shelf", raw, inventory.MaxShelfLength); err != nil {
			return 0, nil, err
		}
		return f, raw, nil
	}
}
