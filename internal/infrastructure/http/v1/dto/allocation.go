package dto

import (
	"time"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/allocation"
)

// SelectBatchRequest is the body of POST /allocation/select-batch.
type SelectBatchRequest struct {
	ItemCode        string         `json:"itemCode" binding:"required"`
	Warehouse       string         `json:"warehouse" binding:"required"`
	RequestedQty    types.Quantity `json:"requestedQty" binding:"required"`
	ThresholdMonths int            `json:"thresholdMonths,omitempty"`
	PinnedBatchID   string         `json:"pinnedBatchId,omitempty"`
	Serials         []string       `json:"serials,omitempty"`
	HardFail        bool           `json:"hardFail,omitempty"`
}

// ToDomain converts the request to the domain type.
func (r SelectBatchRequest) ToDomain() allocation.SelectRequest {
	return allocation.SelectRequest{
		ItemCode:        r.ItemCode,
		Warehouse:       r.Warehouse,
		RequestedQty:    r.RequestedQty,
		ThresholdMonths: r.ThresholdMonths,
		PinnedBatchID:   r.PinnedBatchID,
		Serials:         r.Serials,
		HardFail:        r.HardFail,
	}
}

// SelectBatchResponse is the outcome of a single-batch selection.
type SelectBatchResponse struct {
	BatchID              string                   `json:"batchId,omitempty"`
	Classification       string                   `json:"classification,omitempty"`
	AvailableQty         types.Quantity           `json:"availableQty"`
	ExpiryDate           *time.Time               `json:"expiryDate,omitempty"`
	NeedsManualSelection bool                     `json:"needsManualSelection"`
	EligibleBatches      []allocation.BatchOption `json:"eligibleBatches,omitempty"`
}

// NewSelectBatchResponse maps the domain result.
func NewSelectBatchResponse(res allocation.SelectResult) SelectBatchResponse {
	return SelectBatchResponse{
		BatchID:              res.BatchID,
		Classification:       string(res.Classification),
		AvailableQty:         res.AvailableQty,
		ExpiryDate:           res.ExpiryDate,
		NeedsManualSelection: res.NeedsManualSelection,
		EligibleBatches:      res.EligibleBatches,
	}
}

// DocumentRowDTO is one existing document line sent with an allocation.
type DocumentRowDTO struct {
	RowID              string         `json:"rowId" binding:"required"`
	Qty                types.Quantity `json:"qty"`
	BatchID            string         `json:"batchId,omitempty"`
	PricingRuleIDs     []string       `json:"pricingRuleIds,omitempty"`
	IsFreeItem         bool           `json:"isFreeItem,omitempty"`
	IgnorePricingRules bool           `json:"ignorePricingRules,omitempty"`
	Rate               types.Quantity `json:"rate,omitempty"`
}

// AllocateRequest is the body of POST /allocation/allocate.
type AllocateRequest struct {
	ItemCode        string           `json:"itemCode" binding:"required"`
	Warehouse       string           `json:"warehouse" binding:"required"`
	RequestedQty    types.Quantity   `json:"requestedQty" binding:"required"`
	SelectionMode   string           `json:"selectionMode,omitempty"`
	ThresholdMonths int              `json:"thresholdMonths,omitempty"`
	Kind            string           `json:"kind,omitempty"`
	Rows            []DocumentRowDTO `json:"rows,omitempty"`
	PriceList       string           `json:"priceList,omitempty"`
	Customer        string           `json:"customer,omitempty"`
	CustomerGroup   string           `json:"customerGroup,omitempty"`
	Territory       string           `json:"territory,omitempty"`
	TransactionDate time.Time        `json:"transactionDate,omitempty"`
}

// ToDomain converts the request to the domain type.
func (r AllocateRequest) ToDomain() allocation.AllocateRequest {
	rows := make([]allocation.DocumentRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, allocation.DocumentRow{
			RowID:              row.RowID,
			Qty:                row.Qty,
			BatchID:            row.BatchID,
			PricingRuleIDs:     row.PricingRuleIDs,
			IsFreeItem:         row.IsFreeItem,
			IgnorePricingRules: row.IgnorePricingRules,
			Rate:               row.Rate,
		})
	}

	return allocation.AllocateRequest{
		ItemCode:        r.ItemCode,
		Warehouse:       r.Warehouse,
		RequestedQty:    r.RequestedQty,
		SelectionMode:   allocation.SelectionMode(r.SelectionMode),
		ThresholdMonths: r.ThresholdMonths,
		Kind:            allocation.DocumentKind(r.Kind),
		Rows:            rows,
		PriceList:       r.PriceList,
		Customer:        r.Customer,
		CustomerGroup:   r.CustomerGroup,
		Territory:       r.Territory,
		TransactionDate: r.TransactionDate,
	}
}

// AllocateResponse is the outcome of a table allocation.
type AllocateResponse struct {
	Rows         []allocation.AllocationResultRow `json:"rows"`
	RemainingQty types.Quantity                   `json:"remainingQty"`
	Backorders   []allocation.BackorderLine       `json:"backorders,omitempty"`
}

// NewAllocateResponse maps the domain result.
func NewAllocateResponse(res allocation.AllocateResult) AllocateResponse {
	return AllocateResponse{
		Rows:         res.Rows,
		RemainingQty: res.RemainingQty,
		Backorders:   res.Backorders,
	}
}
