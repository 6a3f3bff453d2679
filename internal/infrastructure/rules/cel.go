// Package rules implements the pricing-rule engine on CEL expressions.
// Each stored rule carries a condition over the transaction context; the
// first applicable rule by priority wins.
package rules

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"stockalloc/internal/core/apperror"
	"stockalloc/internal/domain/pricing"
	"stockalloc/internal/infrastructure/storage/postgres/pricing_repo"
)

// RuleSource supplies the active rule set. Reads are fresh per evaluation;
// only compiled programs are cached.
type RuleSource interface {
	ListActiveRules(ctx context.Context) ([]pricing_repo.StoredRule, error)
}

// Engine evaluates rule conditions against transaction facts. It
// implements pricing.Evaluator.
type Engine struct {
	source RuleSource
	env    *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewEngine creates a rule engine with the evaluation environment the
// stored conditions are written against.
func NewEngine(source RuleSource) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("item_code", cel.StringType),
		cel.Variable("item_group", cel.StringType),
		cel.Variable("brand", cel.StringType),
		cel.Variable("warehouse", cel.StringType),
		cel.Variable("qty", cel.DoubleType),
		cel.Variable("rate", cel.DoubleType),
		cel.Variable("price_list", cel.StringType),
		cel.Variable("customer", cel.StringType),
		cel.Variable("customer_group", cel.StringType),
		cel.Variable("territory", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}

	return &Engine{
		source:   source,
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate returns the first applicable rule for the context, or nil when
// no rule matches.
func (e *Engine) Evaluate(ctx context.Context, ec pricing.EvalContext) (*pricing.Evaluation, error) {
	rules, err := e.source.ListActiveRules(ctx)
	if err != nil {
		return nil, err
	}

	facts := map[string]any{
		"item_code":      ec.ItemCode,
		"item_group":     ec.ItemGroup,
		"brand":          ec.Brand,
		"warehouse":      ec.Warehouse,
		"qty":            ec.Qty.InexactFloat64(),
		"rate":           ec.Rate.InexactFloat64(),
		"price_list":     ec.PriceList,
		"customer":       ec.Customer,
		"customer_group": ec.CustomerGroup,
		"territory":      ec.Territory,
	}

	for _, rule := range rules {
		applies, err := e.conditionHolds(rule, facts)
		if err != nil {
			return nil, err
		}
		if !applies {
			continue
		}
		return &pricing.Evaluation{
			RuleID:            rule.RuleID,
			MinQty:            rule.MinQty,
			MaxQty:            rule.MaxQty,
			IsProductDiscount: rule.IsProductDiscount,
			FreeItemCode:      rule.FreeItemCode,
			FreeQty:           rule.FreeQty,
			FreeRate:          rule.FreeRate,
		}, nil
	}

	return nil, nil
}

// conditionHolds compiles the rule's condition on first use and evaluates
// it. A rule with an empty condition always applies.
func (e *Engine) conditionHolds(rule pricing_repo.StoredRule, facts map[string]any) (bool, error) {
	if rule.Condition == "" {
		return true, nil
	}

	prg, err := e.program(rule)
	if err != nil {
		return false, err
	}

	out, _, err := prg.Eval(facts)
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("evaluate rule %s: %w", rule.RuleID, err))
	}

	holds, ok := out.Value().(bool)
	if !ok {
		return false, apperror.NewInternal(fmt.Errorf("rule %s condition is not boolean", rule.RuleID))
	}
	return holds, nil
}

func (e *Engine) program(rule pricing_repo.StoredRule) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[rule.Condition]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(rule.Condition)
	if issues != nil && issues.Err() != nil {
		return nil, apperror.NewInternal(fmt.Errorf("compile rule %s: %w", rule.RuleID, issues.Err()))
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build rule program %s: %w", rule.RuleID, err))
	}

	e.mu.Lock()
	e.programs[rule.Condition] = prg
	e.mu.Unlock()

	return prg, nil
}
