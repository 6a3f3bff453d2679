package pricing

import (
	"testing"

	"stockalloc/internal/core/types"
)

func TestEffectiveBounds(t *testing.T) {
	tests := []struct {
		name        string
		constraints []Constraint
		wantMin     string
		wantMax     string
		wantBounded bool
	}{
		{
			name:        "no constraints is unbounded",
			constraints: nil,
			wantMin:     "0",
		},
		{
			name: "tightest window across rules",
			constraints: []Constraint{
				{RuleID: "a", MinQty: types.Qty("2"), MaxQty: types.Qty("50")},
				{RuleID: "b", MinQty: types.Qty("5")},
				{RuleID: "c", MaxQty: types.Qty("30")},
			},
			wantMin:     "5",
			wantMax:     "30",
			wantBounded: true,
		},
		{
			name: "zero max means unbounded",
			constraints: []Constraint{
				{RuleID: "a", MinQty: types.Qty("3")},
			},
			wantMin: "3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := EffectiveBounds(tt.constraints)
			if !b.Min.Equal(types.Qty(tt.wantMin)) {
				t.Errorf("Min = %v, want %s", b.Min, tt.wantMin)
			}
			if b.MaxBounded != tt.wantBounded {
				t.Fatalf("MaxBounded = %v, want %v", b.MaxBounded, tt.wantBounded)
			}
			if tt.wantBounded && !b.Max.Equal(types.Qty(tt.wantMax)) {
				t.Errorf("Max = %v, want %s", b.Max, tt.wantMax)
			}
		})
	}
}

func TestBoundsFits(t *testing.T) {
	b := Bounds{Min: types.Qty("5"), Max: types.Qty("30"), MaxBounded: true}

	if b.Fits(types.Qty("4")) {
		t.Error("4 must fall below min")
	}
	if !b.Fits(types.Qty("5")) || !b.Fits(types.Qty("30")) {
		t.Error("window endpoints must fit")
	}
	if b.Fits(types.Qty("31")) {
		t.Error("31 must exceed max")
	}

	unbounded := Unbounded()
	if !unbounded.Fits(types.Qty("1000000")) {
		t.Error("unbounded window must fit any positive quantity")
	}
}
