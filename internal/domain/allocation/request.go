// Package allocation implements FEFO batch allocation: single-batch
// selection with shortdated classification, multi-row quantity splitting
// under pricing-rule bounds, and free-item reconciliation.
package allocation

import (
	"time"

	"stockalloc/internal/core/types"
)

// SelectionMode filters which batches participate in an allocation.
type SelectionMode string

const (
	ModeAnyDated       SelectionMode = "any"
	ModeLongdatedOnly  SelectionMode = "longdated"
	ModeShortdatedOnly SelectionMode = "shortdated"
)

// Valid reports whether the mode is one of the known values.
func (m SelectionMode) Valid() bool {
	switch m {
	case ModeAnyDated, ModeLongdatedOnly, ModeShortdatedOnly:
		return true
	}
	return false
}

// DocumentKind identifies the document type an allocation serves.
// Only order-line kinds carry promotional pricing, so only they run the
// free-item reconciliation pass.
type DocumentKind string

const (
	KindSalesOrder    DocumentKind = "sales_order"
	KindSalesInvoice  DocumentKind = "sales_invoice"
	KindDeliveryNote  DocumentKind = "delivery_note"
	KindStockTransfer DocumentKind = "stock_transfer"
)

// AppliesPricingRules reports whether the kind participates in promotional
// pricing and therefore in free-item reconciliation.
func (k DocumentKind) AppliesPricingRules() bool {
	return k == KindSalesOrder || k == KindSalesInvoice
}

// Classification is the shortdated/longdated outcome of a batch selection.
type Classification string

const (
	// ClassClean means the chosen batch is not shortdated and no shortdated
	// alternative existed.
	ClassClean Classification = "clean"

	// ClassShortdated means the chosen batch expires within the alert
	// horizon.
	ClassShortdated Classification = "shortdated"

	// ClassLongdatedWithShortdatedAvailable means a longdated batch was
	// chosen while a shortdated alternative had stock.
	ClassLongdatedWithShortdatedAvailable Classification = "longdated_shortdated_available"
)

// SelectRequest is the input of a single-batch selection.
type SelectRequest struct {
	ItemCode     string
	Warehouse    string
	RequestedQty types.Quantity

	// ThresholdMonths drives the shortdated alert horizon. Zero means
	// "use the item's configured horizon".
	ThresholdMonths int

	// PinnedBatchID keeps a previously chosen batch across re-validation
	// as long as it still has sufficient quantity.
	PinnedBatchID string

	// Serials narrows the candidate set to the batch the serial numbers
	// belong to.
	Serials []string

	// HardFail turns the manual-selection outcome into a terminal error
	// instead of an advisory result.
	HardFail bool
}

// BatchOption is one line of the presentable eligible-batch table returned
// when no single batch can cover the request.
type BatchOption struct {
	BatchID    string         `json:"batchId"`
	Qty        types.Quantity `json:"qty"`
	ExpiryDate *time.Time     `json:"expiryDate,omitempty"`
}

// SelectResult is the tagged outcome of a single-batch selection. An empty
// BatchID with NeedsManualSelection false means nothing was selectable and
// nothing is worth suggesting.
type SelectResult struct {
	BatchID        string
	Classification Classification
	AvailableQty   types.Quantity
	ExpiryDate     *time.Time

	NeedsManualSelection bool
	EligibleBatches      []BatchOption
}

// Selected reports whether a batch was chosen.
func (r SelectResult) Selected() bool {
	return r.BatchID != ""
}

// RowIDNew marks a result row that does not reuse an existing document row.
const RowIDNew = "new"

// DocumentRow is one pre-existing line of the target document for the
// allocated item.
type DocumentRow struct {
	RowID              string
	Qty                types.Quantity
	BatchID            string
	PricingRuleIDs     []string
	IsFreeItem         bool
	IgnorePricingRules bool
	Rate               types.Quantity
}

// AllocationResultRow is one allocated slice of a batch, bound either to an
// existing document row or to the RowIDNew sentinel.
type AllocationResultRow struct {
	RowID        string         `json:"rowId"`
	BatchID      string         `json:"batchId"`
	Qty          types.Quantity `json:"qty"`
	AvailableQty types.Quantity `json:"availableQty"`
	Shortdated   bool           `json:"shortdated"`

	IsFreeItem  bool           `json:"isFreeItem,omitempty"`
	Rate        types.Quantity `json:"rate,omitempty"`
	RuleID      string         `json:"ruleId,omitempty"`
	DiscountPct types.Quantity `json:"discountPct,omitempty"`
}

// BackorderLine is free-item demand that could not be matched to any batch
// capacity.
type BackorderLine struct {
	Qty    types.Quantity `json:"qty"`
	Rate   types.Quantity `json:"rate"`
	RuleID string         `json:"ruleId"`
}

// AllocateRequest is the input of a multi-row table allocation.
type AllocateRequest struct {
	ItemCode      string
	Warehouse     string
	RequestedQty  types.Quantity
	SelectionMode SelectionMode

	// ThresholdMonths drives the shortdated horizon for mode filtering and
	// row flags. Zero means "use the item's configured horizon".
	ThresholdMonths int

	Kind DocumentKind
	Rows []DocumentRow

	// Pricing-rule evaluation context. Used only when Kind carries
	// promotional pricing.
	PriceList       string
	Customer        string
	CustomerGroup   string
	Territory       string
	TransactionDate time.Time
}

// AllocateResult is the outcome of a table allocation.
type AllocateResult struct {
	Rows         []AllocationResultRow `json:"rows"`
	RemainingQty types.Quantity        `json:"remainingQty"`
	Backorders   []BackorderLine       `json:"backorders,omitempty"`
}
