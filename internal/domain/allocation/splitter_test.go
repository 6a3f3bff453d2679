package allocation

import (
	"testing"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/batches"
	"stockalloc/internal/domain/pricing"
)

func testPool(candidates ...batches.Candidate) *batchPool {
	alertDate := testToday.AddDate(0, 6, 0)
	return buildPool(testToday, alertDate, ModeAnyDated, candidates)
}

func boundsFromConstraints(byRule map[string]pricing.Constraint) func(DocumentRow) pricing.Bounds {
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
	}
}

func TestBuildPoolFilters(t *testing.T) {
	alertDate := testToday.AddDate(0, 6, 0)

	candidates := []batches.Candidate{
		candidate("B-OK", "10", daysFromNow(400)),
		candidate("B-SHORT", "10", daysFromNow(30)),
		candidate("B-EXPIRED", "10", daysFromNow(-5)),
		candidate("B-EMPTY", "0", daysFromNow(400)),
		candidate("B-NEG", "-2", daysFromNow(400)),
	}

	tests := []struct {
		mode SelectionMode
		want []string
	}{
		{ModeAnyDated, []string{"B-OK", "B-SHORT"}},
		{ModeShortdatedOnly, []string{"B-SHORT"}},
		{ModeLongdatedOnly, []string{"B-OK"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			p := buildPool(testToday, alertDate, tt.mode, candidates)
			if len(p.order) != len(tt.want) {
				t.Fatalf("pool order = %v, want %v", p.order, tt.want)
			}
			for i, id := range tt.want {
				if p.order[i] != id {
					t.Errorf("pool order = %v, want %v", p.order, tt.want)
				}
			}
		})
	}
}

// Two-batch FEFO carve: 50 from the soon-expiring batch, the remaining 10
// from the later one, with the first row flagged shortdated.
func TestCarveAcrossBatches(t *testing.T) {
	p := testPool(
		candidate("B1", "50", daysFromNow(10)),
		candidate("B2", "80", daysFromNow(400)),
	)

	arena := p.carveQty(types.Qty("60"))

	if len(arena) != 2 {
		t.Fatalf("carves = %d, want 2", len(arena))
	}
	rows := []AllocationResultRow{p.resultRow(arena[0]), p.resultRow(arena[1])}

	if rows[0].BatchID != "B1" || !rows[0].Qty.Equal(types.Qty("50")) || !rows[0].Shortdated {
		t.Errorf("row 0 = %+v, want B1 qty 50 shortdated", rows[0])
	}
	if rows[1].BatchID != "B2" || !rows[1].Qty.Equal(types.Qty("10")) || rows[1].Shortdated {
		t.Errorf("row 1 = %+v, want B2 qty 10 longdated", rows[1])
	}
	if !rows[0].AvailableQty.Equal(types.Qty("50")) || !rows[1].AvailableQty.Equal(types.Qty("80")) {
		t.Errorf("available quantities = %v/%v, want 50/80", rows[0].AvailableQty, rows[1].AvailableQty)
	}

	remaining := types.Qty("60").Sub(totalQty(arena))
	if !remaining.IsZero() {
		t.Errorf("remaining = %v, want 0", remaining)
	}
}

func TestCarveShortfall(t *testing.T) {
	p := testPool(candidate("B1", "15", daysFromNow(400)))

	arena := p.carveQty(types.Qty("40"))

	if !totalQty(arena).Equal(types.Qty("15")) {
		t.Errorf("carved = %v, want 15", totalQty(arena))
	}
	if !p.remaining["B1"].IsZero() {
		t.Errorf("remaining capacity = %v, want 0", p.remaining["B1"])
	}
}

// Capacity conservation: carving never exceeds any batch's capacity and
// matching never changes the carved total.
func TestCapacityConservation(t *testing.T) {
	p := testPool(
		candidate("B1", "30", daysFromNow(100)),
		candidate("B2", "25", daysFromNow(200)),
		candidate("B3", "45", daysFromNow(300)),
	)
	requested := types.Qty("90")

	arena := p.carveQty(requested)
	rows := []DocumentRow{
		{RowID: "row-1", Qty: types.Qty("40"), PricingRuleIDs: []string{"PR-1"}},
		{RowID: "row-2", Qty: types.Qty("50")},
	}
	arena = matchRows(arena, rows, boundsFromConstraints(map[string]pricing.Constraint{
		"PR-1": {RuleID: "PR-1", MaxQty: types.Qty("20")},
	}))

	carvedTotal := totalQty(arena)
	if !carvedTotal.Add(requested.Sub(carvedTotal)).Equal(requested) {
		t.Fatal("conservation identity broken")
	}

	perBatch := carvedByBatch(arena)
	for batchID, total := range perBatch {
		if total.GreaterThan(p.original[batchID]) {
			t.Errorf("batch %s allocated %v, capacity %v", batchID, total, p.original[batchID])
		}
	}
	if !carvedTotal.Equal(types.Qty("90")) {
		t.Errorf("carved = %v, want 90", carvedTotal)
	}
}

func TestMatchRowsBindsPinnedBatch(t *testing.T) {
	p := testPool(
		candidate("B1", "30", daysFromNow(100)),
		candidate("B2", "30", daysFromNow(200)),
	)
	arena := p.carveQty(types.Qty("50"))

	rows := []DocumentRow{
		{RowID: "row-b2", Qty: types.Qty("20"), BatchID: "B2"},
	}
	arena = matchRows(arena, rows, boundsFromConstraints(nil))

	var bound *carve
	for i := range arena {
		if arena[i].rowID == "row-b2" {
			bound = &arena[i]
		}
	}
	if bound == nil {
		t.Fatal("no carve bound to row-b2")
	}
	if bound.batchID != "B2" {
		t.Errorf("bound batch = %s, want B2", bound.batchID)
	}
}

// A carve exceeding the row's max bound splits: the bounded slice binds and
// the residual re-enters the pool as an unassigned row.
func TestMatchRowsSplitsOnMaxBound(t *testing.T) {
	p := testPool(candidate("B1", "35", daysFromNow(100)))
	arena := p.carveQty(types.Qty("35"))

	rows := []DocumentRow{
		{RowID: "row-1", Qty: types.Qty("35"), PricingRuleIDs: []string{"PR-MAX20"}},
	}
	arena = matchRows(arena, rows, boundsFromConstraints(map[string]pricing.Constraint{
		"PR-MAX20": {RuleID: "PR-MAX20", MaxQty: types.Qty("20")},
	}))

	if len(arena) != 2 {
		t.Fatalf("arena = %d carves, want 2 after split", len(arena))
	}
	if arena[0].rowID != "row-1" || !arena[0].qty.Equal(types.Qty("20")) {
		t.Errorf("bound carve = %+v, want row-1 qty 20", arena[0])
	}
	if arena[1].rowID != RowIDNew || !arena[1].qty.Equal(types.Qty("15")) {
		t.Errorf("residual carve = %+v, want unassigned qty 15", arena[1])
	}
	if arena[1].batchID != "B1" {
		t.Errorf("residual batch = %s, want B1", arena[1].batchID)
	}
}

func TestMatchRowsSkipsBelowMin(t *testing.T) {
	p := testPool(candidate("B1", "5", daysFromNow(100)))
	arena := p.carveQty(types.Qty("5"))

	rows := []DocumentRow{
		{RowID: "row-1", Qty: types.Qty("5"), PricingRuleIDs: []string{"PR-MIN10"}},
	}
	arena = matchRows(arena, rows, boundsFromConstraints(map[string]pricing.Constraint{
		"PR-MIN10": {RuleID: "PR-MIN10", MinQty: types.Qty("10")},
	}))

	if arena[0].rowID != RowIDNew {
		t.Errorf("carve below min bound to %s, want unassigned", arena[0].rowID)
	}
}

func TestMatchRowsIgnoresFreeRows(t *testing.T) {
	p := testPool(candidate("B1", "10", daysFromNow(100)))
	arena := p.carveQty(types.Qty("10"))

	rows := []DocumentRow{
		{RowID: "row-free", Qty: types.Qty("10"), IsFreeItem: true},
	}
	arena = matchRows(arena, rows, boundsFromConstraints(nil))

	if arena[0].rowID != RowIDNew {
		t.Errorf("carve bound to free row %s", arena[0].rowID)
	}
}

// The matching order (lower(batchID) descending, qty descending) is an
// arbitrary but load-bearing tie-break: changing it silently changes which
// document row binds to which batch.
func TestSortRowsForMatching(t *testing.T) {
	rows := []DocumentRow{
		{RowID: "r1", BatchID: "alpha", Qty: types.Qty("5")},
		{RowID: "r2", BatchID: "BETA", Qty: types.Qty("5")},
		{RowID: "r3", BatchID: "beta", Qty: types.Qty("9")},
		{RowID: "r4", BatchID: "", Qty: types.Qty("7")},
		{RowID: "r5", BatchID: "alpha", Qty: types.Qty("8")},
		{RowID: "free", BatchID: "beta", Qty: types.Qty("99"), IsFreeItem: true},
	}

	sorted := sortRowsForMatching(rows)

	want := []string{"r3", "r2", "r5", "r1", "r4"}
	if len(sorted) != len(want) {
		t.Fatalf("sorted = %d rows, want %d", len(sorted), len(want))
	}
	for i, id := range want {
		if sorted[i].RowID != id {
			t.Errorf("position %d = %s, want %s", i, sorted[i].RowID, id)
		}
	}
}
