package allocation

import (
	"sort"
	"strings"
	"time"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/batches"
	"stockalloc/internal/domain/pricing"
)

// carve is one slice of a batch's capacity. rowID stays RowIDNew until the
// matching pass binds the carve to an existing document row. The free-item
// fields are set only by the reconciliation pass.
type carve struct {
	batchID string
	qty     types.Quantity
	rowID   string

	isFree      bool
	rate        types.Quantity
	ruleID      string
	discountPct types.Quantity
}

// batchPool holds the remaining carvable capacity per batch, in FEFO order.
// original keeps the pre-carve snapshot for display on result rows.
type batchPool struct {
	order      []string
	remaining  map[string]types.Quantity
	original   map[string]types.Quantity
	shortdated map[string]bool
	expiry     map[string]*time.Time
}

// buildPool filters the candidate list down to carvable capacity: expired
// and non-positive batches drop out, then the selection mode keeps only
// shortdated or only longdated stock.
func buildPool(today, alertDate time.Time, mode SelectionMode, candidates []batches.Candidate) *batchPool {
	p := &batchPool{
		remaining:  make(map[string]types.Quantity),
		original:   make(map[string]types.Quantity),
		shortdated: make(map[string]bool),
		expiry:     make(map[string]*time.Time),
	}

	for _, c := range candidates {
		if !c.HasStock() || c.Expired(today) {
			continue
		}
		short := c.ShortdatedAt(alertDate)
		switch mode {
		case ModeShortdatedOnly:
			if !short {
				continue
			}
		case ModeLongdatedOnly:
			if short {
				continue
			}
		}

		p.order = append(p.order, c.BatchID)
		p.remaining[c.BatchID] = c.OnHandQty
		p.original[c.BatchID] = c.OnHandQty
		p.shortdated[c.BatchID] = short
		p.expiry[c.BatchID] = c.ExpiryDate
	}

	return p
}

// carveQty greedily carves need across the pool in FEFO order, decrementing
// remaining capacity. The carves come back unbound. A shortfall is not an
// error; the caller reports it as remaining or backordered demand.
func (p *batchPool) carveQty(need types.Quantity) []carve {
	var out []carve
	for _, batchID := range p.order {
		if !need.IsPositive() {
			break
		}
		rem := p.remaining[batchID]
		if !rem.IsPositive() {
			continue
		}
		take := types.MinQty(rem, need)
		p.remaining[batchID] = rem.Sub(take)
		need = need.Sub(take)
		out = append(out, carve{batchID: batchID, qty: take, rowID: RowIDNew})
	}
	return out
}

// totalQty sums the carved quantities.
func totalQty(arena []carve) types.Quantity {
	sum := types.ZeroQty
	for _, cv := range arena {
		sum = sum.Add(cv.qty)
	}
	return sum
}

// carvedByBatch sums carved quantity per batch.
func carvedByBatch(arena []carve) map[string]types.Quantity {
	totals := make(map[string]types.Quantity)
	for _, cv := range arena {
		totals[cv.batchID] = totals[cv.batchID].Add(cv.qty)
	}
	return totals
}

// sortRowsForMatching orders non-free document rows by
// (lower(batchID) descending, qty descending). The ordering is arbitrary
// but deliberately stable: downstream results are order-sensitive, so it
// must never change.
func sortRowsForMatching(rows []DocumentRow) []DocumentRow {
	sorted := make([]DocumentRow, 0, len(rows))
	for _, r := range rows {
		if !r.IsFreeItem {
			sorted = append(sorted, r)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		bi := strings.ToLower(sorted[i].BatchID)
		bj := strings.ToLower(sorted[j].BatchID)
		if bi != bj {
			return bi > bj
		}
		return sorted[i].Qty.GreaterThan(sorted[j].Qty)
	})
	return sorted
}

// matchRows binds carved capacity to existing document rows under each
// row's effective pricing bounds. The arena only grows (on splits) and is
// never reordered; carves are addressed by index so a split's residual
// re-enters the pool right behind its parent.
func matchRows(arena []carve, rows []DocumentRow, boundsFor func(DocumentRow) pricing.Bounds) []carve {
	carvedTotal := carvedByBatch(arena)
	boundTotal := make(map[string]types.Quantity)

	for _, row := range sortRowsForMatching(rows) {
		bounds := boundsFor(row)

		for i := 0; i < len(arena); i++ {
			cv := arena[i]
			if cv.rowID != RowIDNew {
				continue
			}
			if !rowAccepts(row, cv, boundTotal, carvedTotal) {
				continue
			}
			if bounds.BelowMin(cv.qty) {
				continue
			}

			if !bounds.ExceedsMax(cv.qty) {
				arena[i].rowID = row.RowID
				arena[i].rate = row.Rate
				boundTotal[cv.batchID] = boundTotal[cv.batchID].Add(cv.qty)
				break
			}

			// Split: the max-bounded slice binds to the row, the residual
			// stays unbound and re-enters the matching pool.
			arena[i].qty = bounds.Max
			arena[i].rowID = row.RowID
			arena[i].rate = row.Rate
			boundTotal[cv.batchID] = boundTotal[cv.batchID].Add(bounds.Max)

			residual := carve{
				batchID: cv.batchID,
				qty:     cv.qty.Sub(bounds.Max),
				rowID:   RowIDNew,
			}
			arena = append(arena, carve{})
			copy(arena[i+2:], arena[i+1:])
			arena[i+1] = residual
			break
		}
	}

	return arena
}

// rowAccepts decides whether a carve may bind to a document row: a row
// pinned to a batch only takes carves of that batch; an unpinned row takes
// any carve from a batch that still has unbound carved quantity.
func rowAccepts(row DocumentRow, cv carve, boundTotal, carvedTotal map[string]types.Quantity) bool {
	if row.BatchID != "" {
		return row.BatchID == cv.batchID
	}
	return boundTotal[cv.batchID].LessThan(carvedTotal[cv.batchID])
}

// resultRow materializes a carve with the pool's display metadata.
func (p *batchPool) resultRow(cv carve) AllocationResultRow {
	return AllocationResultRow{
		RowID:        cv.rowID,
		BatchID:      cv.batchID,
		Qty:          cv.qty,
		AvailableQty: p.original[cv.batchID],
		Shortdated:   p.shortdated[cv.batchID],
		IsFreeItem:   cv.isFree,
		Rate:         cv.rate,
		RuleID:       cv.ruleID,
		DiscountPct:  cv.discountPct,
	}
}
