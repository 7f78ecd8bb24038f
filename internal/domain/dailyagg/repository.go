// Package dailyagg materializes day-grained FIFO aggregates.
package dailyagg

import (
	"context"
	"time"

	"stocklot/internal/core/id"
	"stocklot/internal/domain/costing"
)

// Repository defines storage for materialized daily rows.
// Implementations upsert on the composite keys (day, product, currency)
// and (day, customer) so a rebuild can run any number of times.
type Repository interface {
	// UpsertRows writes product-grain rows (ON CONFLICT DO UPDATE)
	UpsertRows(ctx context.Context, rows []costing.DailyRow) error

	// UpsertCustomerRows writes customer-grain rows
	UpsertCustomerRows(ctx context.Context, rows []costing.CustomerDailyRow) error

	// DeleteRange removes materialized rows whose day falls in [from, to].
	// Run before the upserts so days left without movements (fully
	// reverted) don't keep stale rows.
	DeleteRange(ctx context.Context, from, to *time.Time) error

	// Read returns product-grain rows ordered by day ascending
	Read(ctx context.Context, filter ReadFilter) ([]costing.DailyRow, error)

	// ReadByCustomer returns customer-grain rows ordered by day ascending
	ReadByCustomer(ctx context.Context, filter CustomerReadFilter) ([]costing.CustomerDailyRow, error)
}

// ReadFilter selects product-grain rows.
type ReadFilter struct {
	DateFrom  *time.Time
	DateTo    *time.Time
	ProductID *id.ID
	Currency  *string

	Limit  int
	Offset int
}

// CustomerReadFilter selects customer-grain rows.
type CustomerReadFilter struct {
	DateFrom   *time.Time
	DateTo     *time.Time
	CustomerID *id.ID

	Limit  int
	Offset int
}
