package batches

import (
	"testing"
	"time"

	"stockalloc/internal/core/types"
)

func dateAt(days int) *time.Time {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	d := base.AddDate(0, 0, days)
	return &d
}

func TestCandidateExpiryClassification(t *testing.T) {
	today := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	alertDate := today.AddDate(0, 6, 0)

	tests := []struct {
		name           string
		expiry         *time.Time
		wantExpired    bool
		wantShortdated bool
	}{
		{"no expiry never expires", nil, false, false},
		{"expired yesterday", dateAt(-1), true, true},
		{"expires today is still usable", dateAt(0), false, true},
		{"inside alert window", dateAt(30), false, true},
		{"on the alert date", dateAt(184), false, false},
		{"well beyond the window", dateAt(400), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Candidate{BatchID: "B1", ExpiryDate: tt.expiry}
			if got := c.Expired(today); got != tt.wantExpired {
				t.Errorf("Expired = %v, want %v", got, tt.wantExpired)
			}
			if got := c.ShortdatedAt(alertDate); got != tt.wantShortdated {
				t.Errorf("ShortdatedAt = %v, want %v", got, tt.wantShortdated)
			}
		})
	}
}

func TestCandidateHasStock(t *testing.T) {
	if (Candidate{OnHandQty: types.Qty("0")}).HasStock() {
		t.Error("zero quantity must not count as stock")
	}
	if (Candidate{OnHandQty: types.Qty("-3")}).HasStock() {
		t.Error("negative quantity must not count as stock")
	}
	if !(Candidate{OnHandQty: types.Qty("0.5")}).HasStock() {
		t.Error("fractional positive quantity must count as stock")
	}
}
