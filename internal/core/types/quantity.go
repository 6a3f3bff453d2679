// Package types provides shared value types for the allocation platform.
package types

import (
	"github.com/shopspring/decimal"
)

// Quantity is a signed decimal stock quantity.
// Ledger sums and allocation math must never run on floats: batch quantities
// arrive as sums of many signed movements and carry up to four fractional
// digits (Postgres NUMERIC(15,4)).
type Quantity = decimal.Decimal

// ZeroQty is the zero quantity.
var ZeroQty = decimal.Zero

// Qty parses a decimal string into a Quantity, panicking on malformed input.
// Use only for constants and tests.
func Qty(s string) Quantity {
	return decimal.RequireFromString(s)
}

// QtyFromFloat creates a Quantity from a float.
// Prefer QtyFromString for values coming off the wire.
func QtyFromFloat(f float64) Quantity {
	return decimal.NewFromFloat(f)
}

// QtyFromString parses a decimal string into a Quantity.
func QtyFromString(s string) (Quantity, error) {
	return decimal.NewFromString(s)
}

// QtyFromInt creates a Quantity from an integer count.
func QtyFromInt(n int64) Quantity {
	return decimal.NewFromInt(n)
}

// MinQty returns the smaller of two quantities.
func MinQty(a, b Quantity) Quantity {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxQty returns the larger of two quantities.
func MaxQty(a, b Quantity) Quantity {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
