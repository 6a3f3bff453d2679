// Package item provides the item catalog: the tracked goods batches are
// opened for.
package item

// Item represents a stock-keeping item.
type Item struct {
	// Code is the unique item identifier
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// HasBatchNo indicates the item is batch-tracked
	HasBatchNo bool `db:"has_batch_no" json:"hasBatchNo"`

	// HasSerialNo indicates the item is serial-tracked
	HasSerialNo bool `db:"has_serial_no" json:"hasSerialNo"`

	// ShortdatedMonths is the alert horizon: a batch expiring within this
	// many months from today counts as shortdated
	ShortdatedMonths int `db:"shortdated_months" json:"shortdatedMonths"`

	// Disabled items are not allocatable
	Disabled bool `db:"disabled" json:"disabled"`
}

// Allocatable reports whether allocation requests for the item make sense.
func (i *Item) Allocatable() bool {
	return !i.Disabled && i.HasBatchNo
}
