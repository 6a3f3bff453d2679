package allocation

import (
	"context"
	"testing"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/pricing"
)

type evalFunc func(ctx context.Context, ec pricing.EvalContext) (*pricing.Evaluation, error)

func (f evalFunc) Evaluate(ctx context.Context, ec pricing.EvalContext) (*pricing.Evaluation, error) {
	return f(ctx, ec)
}

type priceFunc func(ctx context.Context, priceList, itemCode, customer string) (types.Quantity, error)

func (f priceFunc) PriceListRate(ctx context.Context, priceList, itemCode, customer string) (types.Quantity, error) {
	return f(ctx, priceList, itemCode, customer)
}

func freeEval(ruleID, itemCode, freeQty, freeRate string) evalFunc {
	return func(ctx context.Context, ec pricing.EvalContext) (*pricing.Evaluation, error) {
		return &pricing.Evaluation{
			RuleID:            ruleID,
			IsProductDiscount: true,
			FreeItemCode:      itemCode,
			FreeQty:           types.Qty(freeQty),
			FreeRate:          types.Qty(freeRate),
		}, nil
	}
}

func reconcileReq() AllocateRequest {
	return AllocateRequest{
		ItemCode:  "ITEM-001",
		Warehouse: "WH-MAIN",
		Kind:      KindSalesOrder,
	}
}

func TestReconcileCarvesFreeDemand(t *testing.T) {
	p := testPool(candidate("B1", "50", daysFromNow(400)))
	arena := p.carveQty(types.Qty("40"))

	svc := &Service{evaluator: freeEval("PR-FREE", "ITEM-001", "4", "0")}

	freeCarves, backorders, err := svc.reconcileFreeItems(context.Background(), reconcileReq(), arena, p)
	if err != nil {
		t.Fatalf("reconcileFreeItems() error = %v", err)
	}

	if len(freeCarves) != 1 {
		t.Fatalf("free carves = %d, want 1", len(freeCarves))
	}
	cv := freeCarves[0]
	if !cv.isFree || cv.rowID != RowIDNew || !cv.qty.Equal(types.Qty("4")) || cv.ruleID != "PR-FREE" {
		t.Errorf("free carve = %+v, want new free row qty 4 for PR-FREE", cv)
	}

	// Remaining capacity (10) covers the demand, so no backorder may exist.
	if len(backorders) != 0 {
		t.Errorf("backorders = %v, want none", backorders)
	}
	if !p.remaining["B1"].Equal(types.Qty("6")) {
		t.Errorf("pool remaining = %v, want 6", p.remaining["B1"])
	}
}

// Demands tied to the same rule merge by max, never by sum.
func TestReconcileMergesByRuleMax(t *testing.T) {
	p := testPool(candidate("B1", "100", daysFromNow(400)))
	arena := p.carveQty(types.Qty("30"))
	arena = append(arena, p.carveQty(types.Qty("10"))...)

	evals := []string{"3", "8"}
	i := 0
	svc := &Service{evaluator: evalFunc(func(ctx context.Context, ec pricing.EvalContext) (*pricing.Evaluation, error) {
		qty := evals[i%len(evals)]
		i++
		return &pricing.Evaluation{
			RuleID:            "PR-FREE",
			IsProductDiscount: true,
			FreeItemCode:      "ITEM-001",
			FreeQty:           types.Qty(qty),
		}, nil
	})}

	freeCarves, backorders, err := svc.reconcileFreeItems(context.Background(), reconcileReq(), arena, p)
	if err != nil {
		t.Fatalf("reconcileFreeItems() error = %v", err)
	}
	if len(backorders) != 0 {
		t.Fatalf("backorders = %v, want none", backorders)
	}

	total := types.ZeroQty
	for _, cv := range freeCarves {
		total = total.Add(cv.qty)
	}
	if !total.Equal(types.Qty("8")) {
		t.Errorf("free total = %v, want max(3,8) = 8", total)
	}
}

func TestReconcileShortfallBecomesBackorder(t *testing.T) {
	p := testPool(candidate("B1", "41", daysFromNow(400)))
	arena := p.carveQty(types.Qty("40"))

	svc := &Service{evaluator: freeEval("PR-FREE", "ITEM-001", "5", "120")}

	freeCarves, backorders, err := svc.reconcileFreeItems(context.Background(), reconcileReq(), arena, p)
	if err != nil {
		t.Fatalf("reconcileFreeItems() error = %v", err)
	}

	if len(freeCarves) != 1 || !freeCarves[0].qty.Equal(types.Qty("1")) {
		t.Fatalf("free carves = %+v, want single qty 1", freeCarves)
	}
	if len(backorders) != 1 {
		t.Fatalf("backorders = %d, want 1", len(backorders))
	}
	bo := backorders[0]
	if !bo.Qty.Equal(types.Qty("4")) || bo.RuleID != "PR-FREE" || !bo.Rate.Equal(types.Qty("120")) {
		t.Errorf("backorder = %+v, want qty 4 rate 120 for PR-FREE", bo)
	}
}

func TestReconcileReusesExistingFreeRow(t *testing.T) {
	p := testPool(candidate("B1", "50", daysFromNow(400)))
	arena := p.carveQty(types.Qty("40"))

	svc := &Service{evaluator: freeEval("PR-FREE", "ITEM-001", "4", "0")}

	req := reconcileReq()
	req.Rows = []DocumentRow{
		{RowID: "row-free-9", Qty: types.Qty("2"), IsFreeItem: true, PricingRuleIDs: []string{"PR-FREE"}},
	}

	freeCarves, _, err := svc.reconcileFreeItems(context.Background(), req, arena, p)
	if err != nil {
		t.Fatalf("reconcileFreeItems() error = %v", err)
	}
	if len(freeCarves) != 1 || freeCarves[0].rowID != "row-free-9" {
		t.Errorf("free carves = %+v, want identity row-free-9 reused", freeCarves)
	}
}

func TestReconcileSkipsCrossItemDemand(t *testing.T) {
	p := testPool(candidate("B1", "50", daysFromNow(400)))
	arena := p.carveQty(types.Qty("40"))

	svc := &Service{evaluator: freeEval("PR-FREE", "OTHER-ITEM", "4", "0")}

	freeCarves, backorders, err := svc.reconcileFreeItems(context.Background(), reconcileReq(), arena, p)
	if err != nil {
		t.Fatalf("reconcileFreeItems() error = %v", err)
	}
	if len(freeCarves) != 0 || len(backorders) != 0 {
		t.Errorf("cross-item demand produced carves %v backorders %v", freeCarves, backorders)
	}
}

func TestReconcileDiscountPct(t *testing.T) {
	p := testPool(candidate("B1", "50", daysFromNow(400)))
	arena := p.carveQty(types.Qty("40"))

	svc := &Service{
		evaluator: freeEval("PR-FREE", "ITEM-001", "2", "150"),
		prices: priceFunc(func(ctx context.Context, priceList, itemCode, customer string) (types.Quantity, error) {
			return types.Qty("200"), nil
		}),
	}

	req := reconcileReq()
	req.PriceList = "Standard Selling"

	freeCarves, _, err := svc.reconcileFreeItems(context.Background(), req, arena, p)
	if err != nil {
		t.Fatalf("reconcileFreeItems() error = %v", err)
	}
	if len(freeCarves) != 1 {
		t.Fatalf("free carves = %d, want 1", len(freeCarves))
	}
	if !freeCarves[0].discountPct.Equal(types.Qty("25")) {
		t.Errorf("discount = %v, want 25", freeCarves[0].discountPct)
	}
}
