// Package pricing_repo provides PostgreSQL access to pricing rules and
// price lists.
package pricing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/pricing"
	"stockalloc/internal/infrastructure/storage/postgres"
)

const (
	rulesTable  = "pricing_rules"
	pricesTable = "item_prices"
)

// StoredRule is a pricing rule as persisted: quantity bounds, an optional
// free-item specification, and a condition expression deciding whether the
// rule applies to a transaction context.
type StoredRule struct {
	RuleID            string         `db:"rule_id"`
	Condition         string         `db:"condition"`
	MinQty            types.Quantity `db:"min_qty"`
	MaxQty            types.Quantity `db:"max_qty"`
	IsProductDiscount bool           `db:"is_product_discount"`
	FreeItemCode      string         `db:"free_item_code"`
	FreeQty           types.Quantity `db:"free_qty"`
	FreeRate          types.Quantity `db:"free_rate"`
	Priority          int            `db:"priority"`
	Disabled          bool           `db:"disabled"`
}

// RulesRepo reads pricing rules and list prices.
type RulesRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewRulesRepo creates a new pricing rules repository.
func NewRulesRepo(txManager *postgres.TxManager) *RulesRepo {
	return &RulesRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListActiveRules returns all enabled rules ordered by priority. The rule
// engine compiles and caches their conditions.
func (r *RulesRepo) ListActiveRules(ctx context.Context) ([]StoredRule, error) {
	q := r.builder.
		Select(
			"rule_id", "condition", "min_qty", "max_qty",
			"is_product_discount", "free_item_code", "free_qty", "free_rate",
			"priority", "disabled",
		).
		From(rulesTable).
		Where(squirrel.Eq{"disabled": false}).
		OrderBy("priority DESC", "rule_id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build rules query: %w", err)
	}

	var rules []StoredRule
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rules, sql, args...); err != nil {
		return nil, fmt.Errorf("select rules: %w", err)
	}

	return rules, nil
}

// ConstraintsByRuleIDs resolves quantity constraints for rule IDs already
// attached to document rows. Unknown IDs are silently absent from the
// result; a stale reference must not block an allocation.
func (r *RulesRepo) ConstraintsByRuleIDs(ctx context.Context, ruleIDs []string) ([]pricing.Constraint, error) {
	if len(ruleIDs) == 0 {
		return nil, nil
	}

	q := r.builder.
		Select("rule_id", "min_qty", "max_qty").
		From(rulesTable).
		Where(squirrel.Eq{"rule_id": ruleIDs})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build constraints query: %w", err)
	}

	var constraints []pricing.Constraint
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &constraints, sql, args...); err != nil {
		return nil, fmt.Errorf("select constraints: %w", err)
	}

	return constraints, nil
}

// PriceListRate returns the list rate of an item, preferring a
// customer-specific price over the generic one.
func (r *RulesRepo) PriceListRate(ctx context.Context, priceList, itemCode, customer string) (types.Quantity, error) {
	q := r.builder.
		Select("rate").
		From(pricesTable).
		Where(squirrel.Eq{
			"price_list": priceList,
			"item_code":  itemCode,
		}).
		Where(squirrel.Or{
			squirrel.Eq{"customer": customer},
			squirrel.Eq{"customer": ""},
		}).
		OrderBy("customer DESC").
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return types.ZeroQty, fmt.Errorf("build price query: %w", err)
	}

	var rate types.Quantity
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &rate, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return types.ZeroQty, nil
		}
		return types.ZeroQty, fmt.Errorf("get price: %w", err)
	}

	return rate, nil
}
