// Package inventory holds the pharmacy stock: medicine records kept in a
// binary search tree ordered by name.
package inventory

import (
	"github.com/shopspring/decimal"
)

// Field length limits inherited from the data file layout.
const (
	MaxNameLength   = 49
	MaxExpiryLength = 14
	MaxShelfLength  = 19
)

// PriceDecimals is the number of fraction digits a price keeps in the data file
const PriceDecimals = 2

// Medicine is one stock record
type Medicine struct {
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	ExpiryDate string          `json:"expiry_date"`
	Shelf      string          `json:"shelf"`
}
