package dto

import (
	"time"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/batches"
)

// BatchCandidateDTO is one catalog entry with its on-hand quantity.
type BatchCandidateDTO struct {
	BatchID    string         `json:"batchId"`
	ItemCode   string         `json:"itemCode"`
	Warehouse  string         `json:"warehouse"`
	OnHandQty  types.Quantity `json:"onHandQty"`
	ExpiryDate *time.Time     `json:"expiryDate,omitempty"`
}

// BatchListResponse is the catalog query payload.
type BatchListResponse struct {
	Batches []BatchCandidateDTO `json:"batches"`
}

// NewBatchListResponse maps candidates to the API shape.
func NewBatchListResponse(candidates []batches.Candidate) BatchListResponse {
	out := make([]BatchCandidateDTO, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, BatchCandidateDTO{
			BatchID:    c.BatchID,
			ItemCode:   c.ItemCode,
			Warehouse:  c.Warehouse,
			OnHandQty:  c.OnHandQty,
			ExpiryDate: c.ExpiryDate,
		})
	}
	return BatchListResponse{Batches: out}
}
