package allocation

import (
	"context"
	"time"

	"stockalloc/internal/core/apperror"
	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/batches"
	"stockalloc/internal/domain/pricing"
	"stockalloc/pkg/logger"
)

// ItemSource resolves item-level allocation settings.
type ItemSource interface {
	// ShortdatedMonths returns the item's shortdated alert horizon in
	// months. Unknown items error with NOT_FOUND.
	ShortdatedMonths(ctx context.Context, itemCode string) (int, error)
}

// Service orchestrates batch allocation: single-batch selection and
// multi-row table allocation with free-item reconciliation. It reads
// immutable snapshots and never mutates ledger state; serializing reads
// against concurrent document commits is the caller's responsibility.
type Service struct {
	catalog     *batches.Service
	constraints pricing.ConstraintSource
	evaluator   pricing.Evaluator
	prices      pricing.PriceSource
	items       ItemSource

	// now is replaceable in tests
	now func() time.Time
}

// NewService creates a new allocation service.
func NewService(
	catalog *batches.Service,
	constraints pricing.ConstraintSource,
	evaluator pricing.Evaluator,
	prices pricing.PriceSource,
	items ItemSource,
) *Service {
	return &Service{
		catalog:     catalog,
		constraints: constraints,
		evaluator:   evaluator,
		prices:      prices,
		items:       items,
		now:         time.Now,
	}
}

// SelectBatch picks a single batch for a quantity request. Insufficient
// single-batch stock is a result variant (NeedsManualSelection), not an
// error, unless the request asked for hard-fail semantics.
func (s *Service) SelectBatch(ctx context.Context, req SelectRequest) (SelectResult, error) {
	if !req.RequestedQty.IsPositive() {
		return SelectResult{}, apperror.NewInvalidArgument("requestedQty must be positive").
			WithDetail("requestedQty", req.RequestedQty.String())
	}

	threshold, err := s.resolveThreshold(ctx, req.ItemCode, req.ThresholdMonths)
	if err != nil {
		return SelectResult{}, err
	}
	req.ThresholdMonths = threshold

	candidates, err := s.candidates(ctx, req.ItemCode, req.Warehouse, req.Serials)
	if err != nil {
		return SelectResult{}, err
	}

	result, err := selectFEFO(s.today(), req, candidates)
	if err != nil {
		return SelectResult{}, err
	}

	logger.Info(ctx, "batch selected",
		"item_code", req.ItemCode,
		"warehouse", req.Warehouse,
		"batch_id", result.BatchID,
		"classification", result.Classification,
		"manual_selection", result.NeedsManualSelection,
	)

	return result, nil
}

// Allocate partitions the requested quantity across candidate batches and
// existing document rows, then reconciles free-item demand for document
// kinds that carry promotional pricing.
func (s *Service) Allocate(ctx context.Context, req AllocateRequest) (AllocateResult, error) {
	if !req.RequestedQty.IsPositive() {
		return AllocateResult{}, apperror.NewInvalidArgument("requestedQty must be positive").
			WithDetail("requestedQty", req.RequestedQty.String())
	}
	if req.SelectionMode == "" {
		req.SelectionMode = ModeAnyDated
	}
	if !req.SelectionMode.Valid() {
		return AllocateResult{}, apperror.NewInvalidArgument("unknown selectionMode").
			WithDetail("selectionMode", string(req.SelectionMode))
	}

	threshold, err := s.resolveThreshold(ctx, req.ItemCode, req.ThresholdMonths)
	if err != nil {
		return AllocateResult{}, err
	}
	req.ThresholdMonths = threshold

	candidates, err := s.candidates(ctx, req.ItemCode, req.Warehouse, nil)
	if err != nil {
		return AllocateResult{}, err
	}

	today := s.today()
	alertDate := today.AddDate(0, req.ThresholdMonths, 0)
	pool := buildPool(today, alertDate, req.SelectionMode, candidates)

	// Free rows satisfy their own demand in the reconciliation pass; only
	// the paid remainder is carved here.
	paidQty := req.RequestedQty
	for _, r := range req.Rows {
		if r.IsFreeItem {
			paidQty = paidQty.Sub(r.Qty)
		}
	}
	if paidQty.IsNegative() {
		paidQty = types.ZeroQty
	}

	arena := pool.carveQty(paidQty)

	boundsFor, err := s.rowBounds(ctx, req.Rows)
	if err != nil {
		return AllocateResult{}, err
	}
	arena = matchRows(arena, req.Rows, boundsFor)

	carvedPaid := totalQty(arena)

	var backorders []BackorderLine
	if req.Kind.AppliesPricingRules() && s.evaluator != nil {
		freeCarves, freeBackorders, err := s.reconcileFreeItems(ctx, req, arena, pool)
		if err != nil {
			return AllocateResult{}, err
		}
		arena = append(arena, freeCarves...)
		backorders = freeBackorders
	}

	rows := make([]AllocationResultRow, 0, len(arena))
	for _, cv := range arena {
		rows = append(rows, pool.resultRow(cv))
	}

	result := AllocateResult{
		Rows:         rows,
		RemainingQty: paidQty.Sub(carvedPaid),
		Backorders:   backorders,
	}

	logger.Info(ctx, "allocation completed",
		"item_code", req.ItemCode,
		"warehouse", req.Warehouse,
		"requested_qty", req.RequestedQty,
		"result_rows", len(result.Rows),
		"remaining_qty", result.RemainingQty,
		"backorders", len(result.Backorders),
	)

	return result, nil
}

// rowBounds pre-fetches pricing constraints for all rule IDs referenced by
// the document rows and returns the effective-bounds resolver used during
// matching.
func (s *Service) rowBounds(ctx context.Context, rows []DocumentRow) (func(DocumentRow) pricing.Bounds, error) {
	var ruleIDs []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if r.IsFreeItem || r.IgnorePricingRules {
			continue
		}
		for _, id := range r.PricingRuleIDs {
			if !seen[id] {
				seen[id] = true
				ruleIDs = append(ruleIDs, id)
			}
		}
	}

	byRule := make(map[string]pricing.Constraint)
	if len(ruleIDs) > 0 && s.constraints != nil {
		constraints, err := s.constraints.ConstraintsByRuleIDs(ctx, ruleIDs)
		if err != nil {
			return nil, err
		}
		for _, c := range constraints {
			byRule[c.RuleID] = c
		}
	}

	return func(row DocumentRow) pricing.Bounds {
		if row.IgnorePricingRules || len(row.PricingRuleIDs) == 0 {
			return pricing.Unbounded()
		}
		var attached []pricing.Constraint
		for _, id := range row.PricingRuleIDs {
			if c, ok := byRule[id]; ok {
				attached = append(attached, c)
			}
		}
		return pricing.EffectiveBounds(attached)
	}, nil
}

// candidates reads the fresh candidate snapshot, narrowed by serial numbers
// when given.
func (s *Service) candidates(ctx context.Context, itemCode, warehouse string, serials []string) ([]batches.Candidate, error) {
	if len(serials) > 0 {
		return s.catalog.CandidatesForSerials(ctx, itemCode, warehouse, serials)
	}
	return s.catalog.Candidates(ctx, itemCode, warehouse)
}

// resolveThreshold falls back to the item's configured horizon when the
// request does not carry one.
func (s *Service) resolveThreshold(ctx context.Context, itemCode string, requested int) (int, error) {
	if requested > 0 || s.items == nil {
		return requested, nil
	}
	return s.items.ShortdatedMonths(ctx, itemCode)
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
