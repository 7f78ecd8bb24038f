package dailyagg

import (
	"context"
	"fmt"
	"time"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/tx"
	"stocklot/internal/domain/costing"
	"stocklot/internal/domain/ledger"
	"stocklot/pkg/logger"
)

// MovementSource supplies ledger movements to the materializer.
// Satisfied by ledger.Service.
type MovementSource interface {
	Query(ctx context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error)
}

// Service rebuilds and reads the materialized daily aggregates.
type Service struct {
	movements MovementSource
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new daily aggregation service.
func NewService(movements MovementSource, repo Repository, txManager tx.Manager) *Service {
	return &Service{
		movements: movements,
		repo:      repo,
		txManager: txManager,
	}
}

// Rebuild recomputes daily aggregates for days in [from, to] (either
// side open) and returns the number of materialized rows written.
// Bounds are calendar days: any time component is ignored, and the `to`
// day is covered in full.
//
// FIFO attribution for a day depends on every movement before it, so
// the pass always loads the full effective history up to `to` and only
// restricts which computed rows get written. The whole pass runs in one
// transaction: a failed rebuild leaves the previous materialization
// intact and can simply be retried.
func (s *Service) Rebuild(ctx context.Context, from, to *time.Time) (int, error) {
	started := time.Now()
	var written int

	// Day-truncated bounds for row filtering and deletion; the movement
	// query extends to the end of the `to` day so intra-day movements on
	// the boundary day are not dropped from the pass.
	var dayFrom, dayTo, queryTo *time.Time
	if from != nil {
		d := costing.DayOf(*from)
		dayFrom = &d
	}
	if to != nil {
		d := costing.DayOf(*to)
		dayTo = &d
		end := d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		queryTo = &end
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		movements, err := s.movements.Query(ctx, ledger.MovementFilter{
			EffectiveOnly: true,
			DateTo:        queryTo,
		})
		if err != nil {
			return fmt.Errorf("load movements: %w", err)
		}

		result := costing.ComputeDailyAggregates(movements)

		rows := filterRows(result.Rows, dayFrom, dayTo)
		customerRows := filterCustomerRows(result.CustomerRows, dayFrom, dayTo)

		if err := s.repo.DeleteRange(ctx, dayFrom, dayTo); err != nil {
			return fmt.Errorf("clear range: %w", err)
		}
		if err := s.repo.UpsertRows(ctx, rows); err != nil {
			return fmt.Errorf("upsert daily rows: %w", err)
		}
		if err := s.repo.UpsertCustomerRows(ctx, customerRows); err != nil {
			return fmt.Errorf("upsert customer rows: %w", err)
		}

		written = len(rows) + len(customerRows)

		if result.UnderCostedSales > 0 || result.UnpricedPurchases > 0 {
			logger.Warn(ctx, "rebuild encountered incomplete cost data",
				"under_costed_sales", result.UnderCostedSales,
				"unpriced_purchases", result.UnpricedPurchases,
			)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "daily aggregates rebuilt",
		"rows", written,
		"duration", time.Since(started).String(),
	)

	return written, nil
}

// Read returns materialized product-grain rows.
func (s *Service) Read(ctx context.Context, filter ReadFilter) ([]costing.DailyRow, error) {
	return s.repo.Read(ctx, filter)
}

// ReadByCustomer returns materialized customer-grain rows.
func (s *Service) ReadByCustomer(ctx context.Context, filter CustomerReadFilter) ([]costing.CustomerDailyRow, error) {
	return s.repo.ReadByCustomer(ctx, filter)
}

func inRange(day time.Time, from, to *time.Time) bool {
	if from != nil && day.Before(costing.DayOf(*from)) {
		return false
	}
	if to != nil && day.After(costing.DayOf(*to)) {
		return false
	}
	return true
}

func filterRows(rows []costing.DailyRow, from, to *time.Time) []costing.DailyRow {
	if from == nil && to == nil {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if inRange(r.Day, from, to) {
			out = append(out, r)
		}
	}
	return out
}

func filterCustomerRows(rows []costing.CustomerDailyRow, from, to *time.Time) []costing.CustomerDailyRow {
	if from == nil && to == nil {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if inRange(r.Day, from, to) {
			out = append(out, r)
		}
	}
	return out
}
