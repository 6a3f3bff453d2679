package allocation

import (
	"time"

	"stockalloc/internal/core/apperror"
	"stockalloc/internal/domain/batches"
)

// selectFEFO picks one batch for a single quantity request from a catalog
// already sorted by expiry ascending. It never mutates the candidates and
// never errors on plain insufficient stock; that surfaces as a result
// variant.
func selectFEFO(today time.Time, req SelectRequest, candidates []batches.Candidate) (SelectResult, error) {
	if !req.RequestedQty.IsPositive() {
		return SelectResult{}, apperror.NewInvalidArgument("requestedQty must be positive").
			WithDetail("requestedQty", req.RequestedQty.String())
	}

	alertDate := today.AddDate(0, req.ThresholdMonths, 0)

	var (
		chosen              *batches.Candidate
		pinned              *batches.Candidate
		shortdatedAvailable bool
		eligible            []batches.Candidate
	)

	for i := range candidates {
		c := candidates[i]
		if !c.HasStock() || c.Expired(today) {
			continue
		}
		eligible = append(eligible, c)

		// The shortdated-available signal only matters for a fresh pick;
		// re-validating a pinned batch must not demote it to a warning.
		if req.PinnedBatchID == "" && c.ShortdatedAt(alertDate) {
			shortdatedAvailable = true
		}

		if !c.OnHandQty.LessThan(req.RequestedQty) {
			if c.BatchID == req.PinnedBatchID {
				pinned = &candidates[i]
			}
			if chosen == nil {
				chosen = &candidates[i]
			}
		}
	}

	// A still-sufficient pinned batch wins over the first-fit pick.
	if pinned != nil {
		chosen = pinned
	}

	if chosen == nil {
		if len(eligible) == 0 {
			// Nothing with stock to suggest.
			return SelectResult{}, nil
		}

		table := make([]BatchOption, 0, len(eligible))
		for _, c := range eligible {
			table = append(table, BatchOption{
				BatchID:    c.BatchID,
				Qty:        c.OnHandQty,
				ExpiryDate: c.ExpiryDate,
			})
		}
		if req.HardFail {
			return SelectResult{}, apperror.NewManualSelectionRequired(req.ItemCode, table)
		}
		return SelectResult{
			NeedsManualSelection: true,
			EligibleBatches:      table,
		}, nil
	}

	class := ClassClean
	switch {
	case chosen.ShortdatedAt(alertDate):
		class = ClassShortdated
	case shortdatedAvailable:
		class = ClassLongdatedWithShortdatedAvailable
	}

	return SelectResult{
		BatchID:        chosen.BatchID,
		Classification: class,
		AvailableQty:   chosen.OnHandQty,
		ExpiryDate:     chosen.ExpiryDate,
	}, nil
}
