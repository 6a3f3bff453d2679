// Package register_repo provides PostgreSQL implementations for the stock
// ledger projections the allocation engine reads.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockalloc/internal/core/types"
	"stockalloc/internal/domain/batches"
	"stockalloc/internal/infrastructure/storage/postgres"
)

const (
	ledgerTable  = "stock_ledger_entries"
	batchesTable = "batches"
	serialsTable = "serial_numbers"
)

// LedgerRepo implements batches.Repository on top of the stock ledger.
// Quantities are recomputed from signed movements on every read; nothing
// is cached.
type LedgerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ListCandidates returns non-disabled, non-expired batches for the item,
// annotated with the warehouse's current on-hand quantity, in FEFO order.
// Candidates with zero or negative quantity are retained; allocation entry
// points filter them.
func (r *LedgerRepo) ListCandidates(ctx context.Context, itemCode, warehouse string) ([]batches.Candidate, error) {
	q := r.builder.
		Select(
			"b.batch_id",
			"b.item_code",
		).
		Column(squirrel.Alias(squirrel.Expr("?", warehouse), "warehouse")).
		Column("COALESCE(SUM(l.qty), 0) AS on_hand_qty").
		Column("b.expiry_date").
		From(batchesTable+" b").
		LeftJoin(ledgerTable+" l ON l.batch_id = b.batch_id"+
			" AND l.item_code = b.item_code"+
			" AND l.warehouse = ?"+
			" AND NOT l.is_cancelled", warehouse).
		Where(squirrel.Eq{"b.item_code": itemCode}).
		Where(squirrel.Eq{"b.disabled": false}).
		Where(squirrel.Or{
			squirrel.Expr("b.expiry_date IS NULL"),
			squirrel.Expr("b.expiry_date >= CURRENT_DATE"),
		}).
		GroupBy("b.batch_id", "b.item_code", "b.expiry_date", "b.created_at").
		OrderBy("b.expiry_date ASC NULLS LAST", "b.created_at ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build candidates query: %w", err)
	}

	var candidates []batches.Candidate
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &candidates, sql, args...); err != nil {
		return nil, fmt.Errorf("select candidates: %w", err)
	}

	return candidates, nil
}

// SumQty returns the signed sum of non-cancelled ledger movements for one
// batch at one warehouse.
func (r *LedgerRepo) SumQty(ctx context.Context, itemCode, warehouse, batchID string) (types.Quantity, error) {
	q := r.builder.
		Select("COALESCE(SUM(qty), 0) AS qty").
		From(ledgerTable).
		Where(squirrel.Eq{
			"item_code":    itemCode,
			"warehouse":    warehouse,
			"batch_id":     batchID,
			"is_cancelled": false,
		})

	sql, args, err := q.ToSql()
	if err != nil {
		return types.ZeroQty, fmt.Errorf("build sum query: %w", err)
	}

	var qty types.Quantity
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &qty, sql, args...); err != nil {
		return types.ZeroQty, fmt.Errorf("sum ledger qty: %w", err)
	}

	return qty, nil
}

// BatchesForSerials returns the distinct batches the serial numbers are
// linked to. More than one entry means the serials cannot identify a
// single batch.
func (r *LedgerRepo) BatchesForSerials(ctx context.Context, itemCode, warehouse string, serials []string) ([]string, error) {
	if len(serials) == 0 {
		return nil, nil
	}

	q := r.builder.
		Select("DISTINCT batch_id").
		From(serialsTable).
		Where(squirrel.Eq{
			"item_code": itemCode,
			"warehouse": warehouse,
			"serial_no": serials,
		}).
		Where(squirrel.NotEq{"batch_id": ""})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build serials query: %w", err)
	}

	var batchIDs []string
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &batchIDs, sql, args...); err != nil {
		return nil, fmt.Errorf("select serial batches: %w", err)
	}

	return batchIDs, nil
}
