package pricing

import (
	"context"
	"time"

	"stockalloc/internal/core/types"
)

// EvalContext carries the transaction facts a rule condition may inspect.
type EvalContext struct {
	ItemCode        string
	ItemGroup       string
	Brand           string
	Warehouse       string
	Qty             types.Quantity
	Rate            types.Quantity
	PriceList       string
	Customer        string
	CustomerGroup   string
	Territory       string
	TransactionDate time.Time
}

// Evaluation is the outcome of running the rule engine against one row.
// For product-discount rules the free-item fields describe the promotional
// demand the row generates.
type Evaluation struct {
	RuleID            string
	MinQty            types.Quantity
	MaxQty            types.Quantity
	IsProductDiscount bool
	FreeItemCode      string
	FreeQty           types.Quantity
	FreeRate          types.Quantity
}

// Evaluator is the opaque rule engine boundary. Evaluate returns nil when
// no rule applies to the context.
type Evaluator interface {
	Evaluate(ctx context.Context, ec EvalContext) (*Evaluation, error)
}

// ConstraintSource resolves quantity constraints for rule IDs already
// attached to document rows.
type ConstraintSource interface {
	ConstraintsByRuleIDs(ctx context.Context, ruleIDs []string) ([]Constraint, error)
}

// PriceSource looks up list prices. Used only to derive a free item's
// discount percentage for display, never for the allocation decision.
type PriceSource interface {
	PriceListRate(ctx context.Context, priceList, itemCode, customer string) (types.Quantity, error)
}
