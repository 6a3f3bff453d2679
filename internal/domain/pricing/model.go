// Package pricing defines the pricing-rule constraint model and the
// evaluator boundary the allocation engine calls into. The engine itself
// lives in infrastructure; allocation only sees constraint bounds and
// free-item specifications.
package pricing

import (
	"stockalloc/internal/core/types"
)

// Constraint bounds the quantity a single pricing rule allows on one
// document row. MaxQty of zero means unbounded.
type Constraint struct {
	RuleID string         `db:"rule_id" json:"ruleId"`
	MinQty types.Quantity `db:"min_qty" json:"minQty"`
	MaxQty types.Quantity `db:"max_qty" json:"maxQty"`
}

// Bounds is the effective quantity window of one document row after
// combining all its attached rules.
type Bounds struct {
	Min        types.Quantity
	Max        types.Quantity
	MaxBounded bool
}

// Unbounded is the window of a row with no attached rules.
func Unbounded() Bounds {
	return Bounds{Min: types.ZeroQty}
}

// EffectiveBounds combines constraints by taking the tightest window:
// the largest MinQty and the smallest bounded MaxQty.
func EffectiveBounds(constraints []Constraint) Bounds {
	b := Unbounded()
	for _, c := range constraints {
		if c.MinQty.GreaterThan(b.Min) {
			b.Min = c.MinQty
		}
		if c.MaxQty.IsPositive() && (!b.MaxBounded || c.MaxQty.LessThan(b.Max)) {
			b.Max = c.MaxQty
			b.MaxBounded = true
		}
	}
	return b
}

// Fits reports whether qty lies within the window.
func (b Bounds) Fits(qty types.Quantity) bool {
	return !b.BelowMin(qty) && !b.ExceedsMax(qty)
}

// BelowMin reports whether qty falls short of the minimum.
func (b Bounds) BelowMin(qty types.Quantity) bool {
	return qty.LessThan(b.Min)
}

// ExceedsMax reports whether qty exceeds a bounded maximum.
func (b Bounds) ExceedsMax(qty types.Quantity) bool {
	return b.MaxBounded && qty.GreaterThan(b.Max)
}
