// Package batches provides the batch catalog: physical, expiry-dated lots of
// an item at a warehouse, annotated with on-hand quantity from the stock
// ledger.
package batches

import (
	"time"

	"stockalloc/internal/core/types"
)

// Batch represents a physical batch (lot) of an item.
type Batch struct {
	// BatchID is the unique batch identifier (lot number)
	BatchID string `db:"batch_id" json:"batchId"`

	// ItemCode is the item this batch belongs to
	ItemCode string `db:"item_code" json:"itemCode"`

	// ExpiryDate is optional; nil means the batch never expires
	ExpiryDate *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	// Disabled batches are never allocation candidates
	Disabled bool `db:"disabled" json:"disabled"`

	// CreatedAt orders batches with equal expiry
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Candidate is a batch usable for an item/warehouse pair, annotated with
// its current on-hand quantity. OnHandQty is recomputed from the ledger on
// every read and may be zero or negative; allocation entry points filter
// non-positive candidates themselves.
type Candidate struct {
	BatchID    string         `db:"batch_id" json:"batchId"`
	ItemCode   string         `db:"item_code" json:"itemCode"`
	Warehouse  string         `db:"warehouse" json:"warehouse"`
	OnHandQty  types.Quantity `db:"on_hand_qty" json:"onHandQty"`
	ExpiryDate *time.Time     `db:"expiry_date" json:"expiryDate,omitempty"`
}

// Expired reports whether the candidate's expiry falls strictly before today.
// A candidate without an expiry date never expires.
func (c Candidate) Expired(today time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(today)
}

// ShortdatedAt reports whether the candidate expires before the alert date.
// Candidates without an expiry date are never shortdated.
func (c Candidate) ShortdatedAt(alertDate time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(alertDate)
}

// HasStock reports whether the candidate carries positive on-hand quantity.
func (c Candidate) HasStock() bool {
	return c.OnHandQty.IsPositive()
}
