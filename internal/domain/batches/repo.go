package batches

import (
	"context"

	"stockalloc/internal/core/types"
)

// Repository defines read operations over batch metadata and the stock
// ledger. All reads are fresh projections; nothing here mutates state.
type Repository interface {
	// ListCandidates returns non-disabled batches for the item/warehouse pair
	// whose expiry date is null or not yet passed, each annotated with the
	// current on-hand quantity, ordered by (expiry ASC NULLS LAST,
	// created_at ASC). Candidates with on-hand quantity <= 0 are retained.
	ListCandidates(ctx context.Context, itemCode, warehouse string) ([]Candidate, error)

	// SumQty returns the signed sum of non-cancelled ledger movements for
	// the batch at the warehouse.
	SumQty(ctx context.Context, itemCode, warehouse, batchID string) (types.Quantity, error)

	// BatchesForSerials returns the distinct batch IDs the given serial
	// numbers are linked to for the item/warehouse pair.
	BatchesForSerials(ctx context.Context, itemCode, warehouse string, serials []string) ([]string, error)
}
