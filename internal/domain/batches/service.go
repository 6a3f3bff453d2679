package batches

import (
	"context"

	"stockalloc/internal/core/apperror"
	"stockalloc/internal/core/types"
	"stockalloc/pkg/logger"
)

// Service provides batch catalog queries for allocation and display.
type Service struct {
	repo Repository
}

// NewService creates a new batch catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Candidates returns the ordered candidate list for the item/warehouse pair.
// The raw projection retains candidates with on-hand quantity <= 0.
func (s *Service) Candidates(ctx context.Context, itemCode, warehouse string) ([]Candidate, error) {
	if itemCode == "" {
		return nil, apperror.NewInvalidArgument("itemCode is required")
	}
	if warehouse == "" {
		return nil, apperror.NewInvalidArgument("warehouse is required")
	}

	return s.repo.ListCandidates(ctx, itemCode, warehouse)
}

// CandidatesForSerials narrows the candidate list to the single batch the
// given serial numbers belong to. Serials spanning more than one batch are
// rejected; serials with no batch link yield an empty candidate list.
func (s *Service) CandidatesForSerials(ctx context.Context, itemCode, warehouse string, serials []string) ([]Candidate, error) {
	batchIDs, err := s.repo.BatchesForSerials(ctx, itemCode, warehouse, serials)
	if err != nil {
		return nil, err
	}

	switch len(batchIDs) {
	case 0:
		return nil, nil
	case 1:
	default:
		logger.Warn(ctx, "serials span multiple batches",
			"item_code", itemCode,
			"batch_ids", batchIDs,
		)
		serialNo := ""
		if len(serials) > 0 {
			serialNo = serials[0]
		}
		return nil, apperror.NewAmbiguousSerialBatchLink(serialNo, batchIDs)
	}

	all, err := s.repo.ListCandidates(ctx, itemCode, warehouse)
	if err != nil {
		return nil, err
	}

	for _, c := range all {
		if c.BatchID == batchIDs[0] {
			return []Candidate{c}, nil
		}
	}
	return nil, nil
}

// BatchQty returns the current on-hand quantity of a single batch.
func (s *Service) BatchQty(ctx context.Context, itemCode, warehouse, batchID string) (types.Quantity, error) {
	if batchID == "" {
		return types.ZeroQty, apperror.NewInvalidArgument("batchID is required")
	}
	return s.repo.SumQty(ctx, itemCode, warehouse, batchID)
}
