package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/internal/domain/analytics"
	"stocklot/internal/domain/costing"
	"stocklot/internal/domain/ledger"
	"stocklot/pkg/logger"
)

// MovementSource supplies ledger movement history.
// Satisfied by ledger.Service.
type MovementSource interface {
	Query(ctx context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error)
}

// StockSource supplies current product balances.
// Satisfied by ledger.Service.
type StockSource interface {
	AllStock(ctx context.Context) ([]entity.ProductStock, error)
}

// Service generates analytics reports. All reports are computed live
// from the effective movement set; nothing here writes.
type Service struct {
	movements MovementSource
	stock     StockSource

	now func() time.Time
}

// NewService creates a reports service.
func NewService(movements MovementSource, stock StockSource) *Service {
	return &Service{
		movements: movements,
		stock:     stock,
		now:       time.Now,
	}
}

func (s *Service) effective(ctx context.Context, productID *id.ID, from, to *time.Time) ([]entity.StockMovement, error) {
	return s.movements.Query(ctx, ledger.MovementFilter{
		ProductID:     productID,
		DateFrom:      from,
		DateTo:        to,
		EffectiveOnly: true,
	})
}

// FIFO runs a live FIFO pass over the effective movements and returns
// per-product aggregates with remaining layers and audit counters.
func (s *Service) FIFO(ctx context.Context, filter FIFOReportFilter) (*FIFOReport, error) {
	movements, err := s.effective(ctx, filter.ProductID, filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}

	result := costing.ComputeAggregates(movements)

	rows := make([]FIFOReportRow, 0, len(result.Products))
	for _, agg := range result.Products {
		rows = append(rows, FIFOReportRow{
			ProductID:       agg.ProductID,
			Currency:        agg.Currency,
			PurchasedQty:    agg.PurchasedQty,
			PurchasedAmount: agg.PurchasedAmount,
			SoldQty:         agg.SoldQty,
			SalesAmount:     agg.SalesAmount,
			COGS:            agg.COGS,
			Profit:          agg.Profit,
			RemainingQty:    agg.RemainingQty(),
			RemainingValue:  agg.RemainingValue(),
			RemainingLayers: agg.RemainingLayers,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ProductID.String() < rows[j].ProductID.String()
	})

	if result.UnderCostedSales > 0 || result.UnpricedPurchases > 0 {
		logger.Warn(ctx, "fifo report with data-sparsity degradations",
			"under_costed_sales", result.UnderCostedSales,
			"unpriced_purchases", result.UnpricedPurchases,
		)
	}

	return &FIFOReport{
		Rows:              rows,
		UnderCostedSales:  result.UnderCostedSales,
		UnpricedPurchases: result.UnpricedPurchases,
		GeneratedAt:       s.now().UTC(),
	}, nil
}

// RollingAverages reports trailing-window purchase/sale price averages.
// Empty windows fall back to DefaultRollingWindows.
func (s *Service) RollingAverages(ctx context.Context, windows []int) (*RollingAveragesReport, error) {
	if len(windows) == 0 {
		windows = DefaultRollingWindows
	}
	for _, w := range windows {
		if w <= 0 {
			return nil, apperror.NewValidation("window days must be positive").
				WithDetail("window", w)
		}
	}

	now := s.now().UTC()

	// One query bounded by the widest window
	maxWindow := windows[0]
	for _, w := range windows[1:] {
		if w > maxWindow {
			maxWindow = w
		}
	}
	from := now.AddDate(0, 0, -maxWindow)

	movements, err := s.effective(ctx, nil, &from, nil)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}

	averages := costing.ComputeRollingAverages(movements, now, windows)

	rows := make([]RollingAveragesRow, 0, len(averages))
	for productID, windowAverages := range averages {
		rows = append(rows, RollingAveragesRow{ProductID: productID, Windows: windowAverages})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ProductID.String() < rows[j].ProductID.String()
	})

	return &RollingAveragesReport{
		WindowDays:  windows,
		Rows:        rows,
		GeneratedAt: now,
	}, nil
}

// ABC classifies products by cumulative profit contribution over the
// filter period using the conventional 80/95 thresholds.
func (s *Service) ABC(ctx context.Context, filter ABCReportFilter) (*ABCReport, error) {
	movements, err := s.effective(ctx, nil, filter.DateFrom, filter.DateTo)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}

	result := costing.ComputeAggregates(movements)

	profits := make(map[id.ID]decimal.Decimal, len(result.Products))
	for productID, agg := range result.Products {
		profits[productID] = agg.Profit
	}

	return &ABCReport{
		Entries:     analytics.ClassifyABC(profits, analytics.DefaultABCThresholds()),
		GeneratedAt: s.now().UTC(),
	}, nil
}

// Depletion forecasts which products run out of stock within the horizon
// at their trailing sales rate.
func (s *Service) Depletion(ctx context.Context, filter DepletionReportFilter) (*DepletionReport, error) {
	if filter.TrailingDays <= 0 {
		filter.TrailingDays = DefaultDepletionTrailingDays
	}
	if filter.WithinDays <= 0 {
		filter.WithinDays = DefaultDepletionWithinDays
	}

	now := s.now().UTC()
	from := now.AddDate(0, 0, -filter.TrailingDays)

	kind := entity.MovementKindSale
	sales, err := s.movements.Query(ctx, ledger.MovementFilter{
		Kind:          &kind,
		DateFrom:      &from,
		EffectiveOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("load trailing sales: %w", err)
	}

	trailingSold := make(map[id.ID]decimal.Decimal)
	for i := range sales {
		m := &sales[i]
		trailingSold[m.ProductID] = trailingSold[m.ProductID].Add(m.Quantity)
	}

	balances, err := s.stock.AllStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stock: %w", err)
	}
	stock := make(map[id.ID]decimal.Decimal, len(balances))
	for _, b := range balances {
		stock[b.ProductID] = b.Quantity
	}

	return &DepletionReport{
		TrailingDays: filter.TrailingDays,
		WithinDays:   filter.WithinDays,
		Entries:      analytics.DepletionForecast(stock, trailingSold, filter.TrailingDays, filter.WithinDays),
		GeneratedAt:  now,
	}, nil
}

// Dormant lists products whose last effective sale is older than the
// horizon, or that never sold. Products are taken from ledger activity:
// an item with no movements at all has no stock to go dormant.
func (s *Service) Dormant(ctx context.Context, filter DormantReportFilter) (*DormantReport, error) {
	if filter.OlderThanDays <= 0 {
		filter.OlderThanDays = DefaultDormantOlderThanDays
	}

	movements, err := s.effective(ctx, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}

	result := costing.ComputeAggregates(movements)

	lastSales := make(map[id.ID]time.Time, len(result.Products))
	for productID, agg := range result.Products {
		lastSales[productID] = agg.LastSaleDate
	}

	now := s.now().UTC()
	return &DormantReport{
		OlderThanDays: filter.OlderThanDays,
		Entries:       analytics.DormantProducts(lastSales, now, filter.OlderThanDays),
		GeneratedAt:   now,
	}, nil
}

// Turnover computes per-product turnover and days-on-hand over a period.
func (s *Service) Turnover(ctx context.Context, filter TurnoverReportFilter) (*TurnoverReport, error) {
	if filter.DateFrom.IsZero() || filter.DateTo.IsZero() {
		return nil, apperror.NewValidation("dateFrom and dateTo are required")
	}
	if filter.DateFrom.After(filter.DateTo) {
		return nil, apperror.NewValidation("dateFrom must not be after dateTo")
	}

	// Everything up to the period end; the period start splits it into
	// opening balance and in-period activity
	movements, err := s.effective(ctx, nil, nil, &filter.DateTo)
	if err != nil {
		return nil, fmt.Errorf("load movements: %w", err)
	}

	type productTurnover struct {
		opening decimal.Decimal
		net     decimal.Decimal
		sold    decimal.Decimal
	}
	perProduct := make(map[id.ID]*productTurnover)

	for i := range movements {
		m := &movements[i]
		pt, ok := perProduct[m.ProductID]
		if !ok {
			pt = &productTurnover{}
			perProduct[m.ProductID] = pt
		}

		if m.Date.Before(filter.DateFrom) {
			pt.opening = pt.opening.Add(m.SignedQuantity())
			continue
		}
		pt.net = pt.net.Add(m.SignedQuantity())
		if m.Kind == entity.MovementKindSale {
			pt.sold = pt.sold.Add(m.Quantity)
		}
	}

	periodDays := int(filter.DateTo.Sub(filter.DateFrom).Hours()/24) + 1

	rows := make([]TurnoverReportRow, 0, len(perProduct))
	for productID, pt := range perProduct {
		closing := pt.opening.Add(pt.net)
		rows = append(rows, TurnoverReportRow{
			ProductID:      productID,
			OpeningStock:   pt.opening,
			ClosingStock:   closing,
			SoldQty:        pt.sold,
			TurnoverResult: analytics.Turnover(pt.opening, closing, pt.sold, periodDays),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ProductID.String() < rows[j].ProductID.String()
	})

	return &TurnoverReport{
		DateFrom:    filter.DateFrom,
		DateTo:      filter.DateTo,
		PeriodDays:  periodDays,
		Rows:        rows,
		GeneratedAt: s.now().UTC(),
	}, nil
}
