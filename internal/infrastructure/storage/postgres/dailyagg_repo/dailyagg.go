// Package dailyagg_repo provides the PostgreSQL implementation of the
// daily aggregate repository. Rows are keyed (day, product, currency)
// resp. (day, customer); upserts keep rebuilds idempotent.
package dailyagg_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stocklot/internal/domain/costing"
	"stocklot/internal/domain/dailyagg"
	"stocklot/internal/infrastructure/storage/postgres"
)

const (
	productRowsTable  = "daily_product_aggregates"
	customerRowsTable = "daily_customer_aggregates"
)

// Repo implements dailyagg.Repository.
// TxManager is obtained from context (injected per request / per job).
type Repo struct {
	builder squirrel.StatementBuilderType
}

// NewRepo creates a new daily aggregate repository.
func NewRepo() *Repo {
	return &Repo{
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *Repo) getTxManager(ctx context.Context) *postgres.TxManager {
	return postgres.MustGetTxManager(ctx)
}

// UpsertRows writes product-grain rows.
func (r *Repo) UpsertRows(ctx context.Context, rows []costing.DailyRow) error {
	if len(rows) == 0 {
		return nil
	}

	q := r.builder.Insert(productRowsTable).Columns(
		"day", "product_id", "currency",
		"purchased_qty", "purchased_amount",
		"sold_qty", "sales_amount", "cogs", "profit",
	)
	for _, row := range rows {
		q = q.Values(
			row.Day, row.ProductID, row.Currency,
			row.PurchasedQty, row.PurchasedAmount,
			row.SoldQty, row.SalesAmount, row.COGS, row.Profit,
		)
	}
	q = q.Suffix(`
		ON CONFLICT (day, product_id, currency) DO UPDATE SET
			purchased_qty = EXCLUDED.purchased_qty,
			purchased_amount = EXCLUDED.purchased_amount,
			sold_qty = EXCLUDED.sold_qty,
			sales_amount = EXCLUDED.sales_amount,
			cogs = EXCLUDED.cogs,
			profit = EXCLUDED.profit
	`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert daily rows: %w", err)
	}

	return nil
}

// UpsertCustomerRows writes customer-grain rows.
func (r *Repo) UpsertCustomerRows(ctx context.Context, rows []costing.CustomerDailyRow) error {
	if len(rows) == 0 {
		return nil
	}

	q := r.builder.Insert(customerRowsTable).Columns(
		"day", "customer_id",
		"sold_qty", "sales_amount", "cogs", "profit",
	)
	for _, row := range rows {
		q = q.Values(
			row.Day, row.CustomerID,
			row.SoldQty, row.SalesAmount, row.COGS, row.Profit,
		)
	}
	q = q.Suffix(`
		ON CONFLICT (day, customer_id) DO UPDATE SET
			sold_qty = EXCLUDED.sold_qty,
			sales_amount = EXCLUDED.sales_amount,
			cogs = EXCLUDED.cogs,
			profit = EXCLUDED.profit
	`)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("upsert customer rows: %w", err)
	}

	return nil
}

// DeleteRange removes rows in [from, to] from both tables.
func (r *Repo) DeleteRange(ctx context.Context, from, to *time.Time) error {
	for _, table := range []string{productRowsTable, customerRowsTable} {
		q := r.builder.Delete(table)
		if from != nil {
			q = q.Where(squirrel.GtOrEq{"day": *from})
		}
		if to != nil {
			q = q.Where(squirrel.LtOrEq{"day": *to})
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}

		querier := r.getTxManager(ctx).GetQuerier(ctx)
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}

	return nil
}

// Read returns product-grain rows ordered by day.
func (r *Repo) Read(ctx context.Context, filter dailyagg.ReadFilter) ([]costing.DailyRow, error) {
	q := r.builder.Select(
		"day", "product_id", "currency",
		"purchased_qty", "purchased_amount",
		"sold_qty", "sales_amount", "cogs", "profit",
	).From(productRowsTable)

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"day": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"day": *filter.DateTo})
	}
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Currency != nil {
		q = q.Where(squirrel.Eq{"currency": *filter.Currency})
	}

	q = q.OrderBy("day", "product_id")
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

	var rows []costing.DailyRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select daily rows: %w", err)
	}

	return rows, nil
}

// ReadByCustomer returns customer-grain rows ordered by day.
func (r *Repo) ReadByCustomer(ctx context.Context, filter dailyagg.CustomerReadFilter) ([]costing.CustomerDailyRow, error) {
	q := r.builder.Select(
		"day", "customer_id",
		"sold_qty", "sales_amount", "cogs", "profit",
	).From(customerRowsTable)

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"day": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"day": *filter.DateTo})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	q = q.OrderBy("day", "customer_id")
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

	var rows []costing.CustomerDailyRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select customer rows: %w", err)
	}

	return rows, nil
}

// Ensure interface compliance.
var _ dailyagg.Repository = (*Repo)(nil)
