// Package ledger_repo provides the PostgreSQL implementation of the
// stock movement ledger repository.
package ledger_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/internal/domain/ledger"
	"stocklot/internal/infrastructure/storage/postgres"
)

const (
	movementsTable = "ledger_movements"
	stockTable     = "product_stock"
)

var movementColumns = []string{
	"id", "date", "kind", "action",
	"product_id", "quantity", "unit_cost", "amount", "currency",
	"transaction_id", "transaction_type", "posted_version",
	"counterparty_id", "resulting_balance", "reversed_by_movement_id",
	"created_at",
}

// Repo implements ledger.Repository.
// TxManager is obtained from context (injected per request / per job).
type Repo struct {
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new ledger repository.
func NewRepo() *Repo {
	return &Repo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

func movementRow(m *entity.StockMovement) []any {
	return []any{
		m.ID, m.Date, m.Kind, m.Action,
		m.ProductID, m.Quantity, m.UnitCost, m.Amount, m.Currency,
		m.TransactionID, m.TransactionType, m.PostedVersion,
		m.CounterpartyID, m.ResultingBalance, m.ReversedByMovementID,
		m.CreatedAt,
	}
}

// CreateMovements batch inserts movement rows.
func (r *Repo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	txm := r.getTxManager(ctx)
	if tx := txm.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(txm)
		rows := make([][]any, 0, len(movements))
		for i := range movements {
			rows = append(rows, movementRow(&movements[i]))
		}
		if _, err := inserter.CopyFromSlice(ctx, movementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	// Fallback: non-transactional insert. Prefer calling within tx.
	q := r.builder.Insert(movementsTable).Columns(movementColumns...)
	for i := range movements {
		q = q.Values(movementRow(&movements[i])...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// GetLiveMovementsByTransaction returns apply movements of a transaction
// not yet cancelled by a revert.
func (r *Repo) GetLiveMovementsByTransaction(ctx context.Context, transactionID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable).
		Where(squirrel.Eq{"transaction_id": transactionID}).
		Where(squirrel.Eq{"action": entity.MovementActionApply}).
		Where("reversed_by_movement_id IS NULL").
		OrderBy("date", "created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select live movements: %w", err)
	}

	return movements, nil
}

// MarkReversed stamps reversed_by_movement_id on the original row.
func (r *Repo) MarkReversed(ctx context.Context, originalID, revertID id.ID) error {
	q := r.builder.Update(movementsTable).
		Set("reversed_by_movement_id", revertID).
		Where(squirrel.Eq{"id": originalID}).
		Where("reversed_by_movement_id IS NULL")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark reversed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock_movement", originalID.String())
	}

	return nil
}

// List returns movements matching the filter.
func (r *Repo) List(ctx context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(movementColumns...).From(movementsTable)

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.TransactionID != nil {
		q = q.Where(squirrel.Eq{"transaction_id": *filter.TransactionID})
	}
	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}
	if filter.EffectiveOnly {
		q = q.Where(squirrel.Eq{"action": entity.MovementActionApply}).
			Where("reversed_by_movement_id IS NULL")
	}

	if filter.Descending {
		q = q.OrderBy("date DESC", "created_at DESC")
	} else {
		q = q.OrderBy("date", "created_at")
	}

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetStock returns the product's cached balance.
func (r *Repo) GetStock(ctx context.Context, productID id.ID) (entity.ProductStock, error) {
	var stock entity.ProductStock

	q := r.builder.Select(
		"product_id", "quantity", "last_movement_at", "updated_at",
	).From(stockTable).
		Where(squirrel.Eq{"product_id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return stock, fmt.Errorf("build query: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &stock, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return stock, apperror.NewNotFound("product_stock", productID.String())
		}
		return stock, fmt.Errorf("get stock: %w", err)
	}

	return stock, nil
}

// GetStockForUpdate returns the balance with a pessimistic row lock.
func (r *Repo) GetStockForUpdate(ctx context.Context, productID id.ID) (entity.ProductStock, error) {
	var stock entity.ProductStock

	sql := `
		SELECT product_id, quantity, last_movement_at, updated_at
		FROM product_stock
		WHERE product_id = $1
		FOR UPDATE
	`

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &stock, sql, productID); err != nil {
		if pgxscan.NotFound(err) {
			return stock, apperror.NewNotFound("product_stock", productID.String())
		}
		return stock, fmt.Errorf("get stock for update: %w", err)
	}

	return stock, nil
}

// AdjustStock applies a signed delta and returns the new balance.
// Upsert: a product without a row starts from zero.
func (r *Repo) AdjustStock(ctx context.Context, productID id.ID, delta decimal.Decimal, movementAt time.Time) (decimal.Decimal, error) {
	sql := `
		INSERT INTO product_stock (product_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id) DO UPDATE SET
			quantity = product_stock.quantity + EXCLUDED.quantity,
			last_movement_at = GREATEST(product_stock.last_movement_at, EXCLUDED.last_movement_at),
			updated_at = now()
		RETURNING quantity
	`

	var quantity decimal.Decimal
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, productID, delta, movementAt).Scan(&quantity); err != nil {
		return decimal.Zero, fmt.Errorf("adjust stock: %w", err)
	}

	return quantity, nil
}

// GetAllStock returns balances for every product with ledger activity.
func (r *Repo) GetAllStock(ctx context.Context) ([]entity.ProductStock, error) {
	q := r.builder.Select(
		"product_id", "quantity", "last_movement_at", "updated_at",
	).From(stockTable).OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.ProductStock
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select stock: %w", err)
	}

	return balances, nil
}

// Ensure interface compliance.
var _ ledger.Repository = (*Repo)(nil)
