package allocation

import (
	"context"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/pricing"
	"stockalloc/pkg/logger"
)

// freeDemand is the promotional quantity one pricing rule asks for after
// re-evaluating the paid allocation.
type freeDemand struct {
	ruleID string
	qty    types.Quantity
	rate   types.Quantity
}

// reconcileFreeItems feeds each paid carve back through the rule engine and
// carves the resulting free-item demand from the already-decremented pool.
// Demands tied to the same rule merge by taking the larger quantity seen;
// a later, larger evaluation supersedes an earlier one but never
// double-counts. Unsatisfiable remainder becomes backorder lines.
func (s *Service) reconcileFreeItems(
	ctx context.Context,
	req AllocateRequest,
	arena []carve,
	pool *batchPool,
) ([]carve, []BackorderLine, error) {
	var (
		demands []freeDemand
		byRule  = make(map[string]int)
	)

	for _, cv := range arena {
		eval, err := s.evaluator.Evaluate(ctx, pricing.EvalContext{
			ItemCode:        req.ItemCode,
			Warehouse:       req.Warehouse,
			Qty:             cv.qty,
			Rate:            cv.rate,
			PriceList:       req.PriceList,
			Customer:        req.Customer,
			CustomerGroup:   req.CustomerGroup,
			Territory:       req.Territory,
			TransactionDate: req.TransactionDate,
		})
		if err != nil {
			return nil, nil, err
		}
		if eval == nil || !eval.IsProductDiscount || !eval.FreeQty.IsPositive() {
			continue
		}
		if eval.FreeItemCode != req.ItemCode {
			// Free items of another item are allocated with that item's
			// own batch pool, not this one.
			logger.Debug(ctx, "skipping cross-item free demand",
				"rule_id", eval.RuleID,
				"free_item", eval.FreeItemCode,
			)
			continue
		}

		if idx, ok := byRule[eval.RuleID]; ok {
			if eval.FreeQty.GreaterThan(demands[idx].qty) {
				demands[idx].qty = eval.FreeQty
				demands[idx].rate = eval.FreeRate
			}
			continue
		}
		byRule[eval.RuleID] = len(demands)
		demands = append(demands, freeDemand{
			ruleID: eval.RuleID,
			qty:    eval.FreeQty,
			rate:   eval.FreeRate,
		})
	}

	if len(demands) == 0 {
		return nil, nil, nil
	}

	freeRowByRule := existingFreeRows(req.Rows)

	var (
		freeCarves []carve
		backorders []BackorderLine
	)
	for _, d := range demands {
		discountPct := s.freeDiscountPct(ctx, req, d.rate)

		rowID := RowIDNew
		if existing, ok := freeRowByRule[d.ruleID]; ok {
			rowID = existing
		}

		carved := pool.carveQty(d.qty)
		carvedSum := types.ZeroQty
		for _, cv := range carved {
			cv.rowID = rowID
			cv.isFree = true
			cv.rate = d.rate
			cv.ruleID = d.ruleID
			cv.discountPct = discountPct
			freeCarves = append(freeCarves, cv)
			carvedSum = carvedSum.Add(cv.qty)
		}

		if shortfall := d.qty.Sub(carvedSum); shortfall.IsPositive() {
			backorders = append(backorders, BackorderLine{
				Qty:    shortfall,
				Rate:   d.rate,
				RuleID: d.ruleID,
			})
		}
	}

	return freeCarves, backorders, nil
}

// existingFreeRows maps rule IDs to the free document row already carrying
// them, so re-allocation reuses row identity instead of minting duplicates.
func existingFreeRows(rows []DocumentRow) map[string]string {
	out := make(map[string]string)
	for _, r := range rows {
		if !r.IsFreeItem {
			continue
		}
		for _, ruleID := range r.PricingRuleIDs {
			if _, ok := out[ruleID]; !ok {
				out[ruleID] = r.RowID
			}
		}
	}
	return out
}

// freeDiscountPct derives the display discount of a free item from the
// price list. A missing or zero list price yields a zero percentage; the
// lookup never blocks the allocation itself.
func (s *Service) freeDiscountPct(ctx context.Context, req AllocateRequest, freeRate types.Quantity) types.Quantity {
	if s.prices == nil || req.PriceList == "" {
		return types.ZeroQty
	}
	listRate, err := s.prices.PriceListRate(ctx, req.PriceList, req.ItemCode, req.Customer)
	if err != nil {
		logger.Warn(ctx, "price list lookup failed",
			"price_list", req.PriceList,
			"item_code", req.ItemCode,
			"error", err,
		)
		return types.ZeroQty
	}
	if !listRate.IsPositive() {
		return types.ZeroQty
	}
	hundred := types.QtyFromInt(100)
	return listRate.Sub(freeRate).Div(listRate).Mul(hundred)
}
