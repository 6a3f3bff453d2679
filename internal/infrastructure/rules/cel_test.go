package rules

import (
	"context"
	"testing"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/pricing"
	"stockalloc/internal/infrastructure/storage/postgres/pricing_repo"
)

type staticSource []pricing_repo.StoredRule

func (s staticSource) ListActiveRules(ctx context.Context) ([]pricing_repo.StoredRule, error) {
	return s, nil
}

func evalContext(itemCode, qty string) pricing.EvalContext {
	return pricing.EvalContext{
		ItemCode:      itemCode,
		Warehouse:     "WH-MAIN",
		Qty:           types.Qty(qty),
		Customer:      "CUST-1",
		CustomerGroup: "wholesale",
	}
}

func TestEngineEvaluate(t *testing.T) {
	source := staticSource{
		{
			RuleID:    "PR-BULK",
			Condition: `item_code == "ITEM-001" && qty >= 50.0`,
			MinQty:    types.Qty("50"),
			MaxQty:    types.Qty("500"),
		},
		{
			RuleID:            "PR-PROMO",
			Condition:         `customer_group == "wholesale"`,
			IsProductDiscount: true,
			FreeItemCode:      "ITEM-001",
			FreeQty:           types.Qty("5"),
		},
	}

	engine, err := NewEngine(source)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	tests := []struct {
		name     string
		ec       pricing.EvalContext
		wantRule string
	}{
		{"bulk rule matches first", evalContext("ITEM-001", "60"), "PR-BULK"},
		{"fallthrough to promo rule", evalContext("ITEM-002", "60"), "PR-PROMO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Evaluate(context.Background(), tt.ec)
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if got == nil || got.RuleID != tt.wantRule {
				t.Errorf("Evaluate() = %+v, want rule %s", got, tt.wantRule)
			}
		})
	}
}

func TestEngineNoRuleApplies(t *testing.T) {
	source := staticSource{
		{RuleID: "PR-1", Condition: `item_code == "OTHER"`},
	}
	engine, err := NewEngine(source)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	got, err := engine.Evaluate(context.Background(), evalContext("ITEM-001", "10"))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got != nil {
		t.Errorf("Evaluate() = %+v, want nil", got)
	}
}

func TestEngineEmptyConditionAlwaysApplies(t *testing.T) {
	source := staticSource{
		{RuleID: "PR-ALL", MinQty: types.Qty("1")},
	}
	engine, err := NewEngine(source)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	got, err := engine.Evaluate(context.Background(), evalContext("ITEM-001", "10"))
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got == nil || got.RuleID != "PR-ALL" {
		t.Errorf("Evaluate() = %+v, want PR-ALL", got)
	}
}

func TestEngineBadCondition(t *testing.T) {
	source := staticSource{
		{RuleID: "PR-BAD", Condition: `qty >>> 5`},
	}
	engine, err := NewEngine(source)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if _, err := engine.Evaluate(context.Background(), evalContext("ITEM-001", "10")); err == nil {
		t.Error("expected compile error for malformed condition")
	}
}

func TestEngineNonBooleanCondition(t *testing.T) {
	source := staticSource{
		{RuleID: "PR-STR", Condition: `item_code`},
	}
	engine, err := NewEngine(source)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	if _, err := engine.Evaluate(context.Background(), evalContext("ITEM-001", "10")); err == nil {
		t.Error("expected error for non-boolean condition")
	}
}
