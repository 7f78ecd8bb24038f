package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/internal/domain/ledger"
)

// fakeLedger implements MovementSource and StockSource over a slice.
type fakeLedger struct {
	movements []entity.StockMovement
}

func (f *fakeLedger) Query(_ context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range f.movements {
		if filter.EffectiveOnly && !m.IsEffective() {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != nil && m.Kind != *filter.Kind {
			continue
		}
		if filter.DateFrom != nil && m.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && m.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeLedger) AllStock(_ context.Context) ([]entity.ProductStock, error) {
	totals := make(map[id.ID]decimal.Decimal)
	for i := range f.movements {
		m := &f.movements[i]
		totals[m.ProductID] = totals[m.ProductID].Add(m.SignedQuantity())
	}
	out := make([]entity.ProductStock, 0, len(totals))
	for productID, qty := range totals {
		out = append(out, entity.ProductStock{ProductID: productID, Quantity: qty})
	}
	return out, nil
}

var testNow = time.Date(2026, time.April, 30, 12, 0, 0, 0, time.UTC)

func newTestService(movements ...entity.StockMovement) (*Service, *fakeLedger) {
	src := &fakeLedger{movements: movements}
	svc := NewService(src, src)
	svc.now = func() time.Time { return testNow }
	return svc, src
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(d int) time.Time {
	return time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC)
}

func mv(kind entity.MovementKind, date time.Time, productID id.ID, qty, unitCost string) entity.StockMovement {
	m := entity.NewStockMovement(kind, date, productID, dec(qty))
	m.TransactionID = id.New()
	m.Currency = "USD"
	if unitCost != "" {
		cost := dec(unitCost)
		m.UnitCost = &cost
		amount := cost.Mul(m.Quantity)
		m.Amount = &amount
	}
	return m
}

func TestFIFO_Report(t *testing.T) {
	productID := id.New()
	svc, _ := newTestService(
		mv(entity.MovementKindPurchase, day(1), productID, "10", "5"),
		mv(entity.MovementKindPurchase, day(2), productID, "10", "7"),
		mv(entity.MovementKindSale, day(3), productID, "15", "10"),
	)

	report, err := svc.FIFO(context.Background(), FIFOReportFilter{})
	require.NoError(t, err)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, productID, row.ProductID)
	assert.True(t, row.COGS.Equal(dec("85")))
	assert.True(t, row.SalesAmount.Equal(dec("150")))
	assert.True(t, row.Profit.Equal(dec("65")))
	assert.True(t, row.RemainingQty.Equal(dec("5")))
	assert.True(t, row.RemainingValue.Equal(dec("35")))
	require.Len(t, row.RemainingLayers, 1)
	assert.True(t, row.RemainingLayers[0].UnitCost.Equal(dec("7")))

	assert.Zero(t, report.UnderCostedSales)
	assert.Zero(t, report.UnpricedPurchases)
	assert.Equal(t, testNow, report.GeneratedAt)
}

func TestFIFO_CountersSurface(t *testing.T) {
	productID := id.New()
	svc, _ := newTestService(
		mv(entity.MovementKindPurchase, day(1), productID, "3", ""),
		mv(entity.MovementKindSale, day(2), productID, "2", "10"),
	)

	report, err := svc.FIFO(context.Background(), FIFOReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.UnpricedPurchases)
	assert.Equal(t, 1, report.UnderCostedSales)
}

func TestRollingAverages_Defaults(t *testing.T) {
	productID := id.New()
	svc, _ := newTestService(
		mv(entity.MovementKindPurchase, day(25), productID, "10", "5"),
		mv(entity.MovementKindSale, day(28), productID, "4", "9"),
	)

	report, err := svc.RollingAverages(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultRollingWindows, report.WindowDays)
	require.Len(t, report.Rows, 1)
	require.Len(t, report.Rows[0].Windows, len(DefaultRollingWindows))

	w30 := report.Rows[0].Windows[0]
	assert.Equal(t, 30, w30.WindowDays)
	require.NotNil(t, w30.AvgPurchaseCost)
	assert.True(t, w30.AvgPurchaseCost.Equal(dec("5")))
	require.NotNil(t, w30.AvgSalePrice)
	assert.True(t, w30.AvgSalePrice.Equal(dec("9")))
}

func TestRollingAverages_RejectsNonPositiveWindow(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.RollingAverages(context.Background(), []int{30, 0})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestABC_RanksByProfit(t *testing.T) {
	bigWinner, smallWinner, loser := id.New(), id.New(), id.New()
	svc, _ := newTestService(
		mv(entity.MovementKindPurchase, day(1), bigWinner, "10", "1"),
		mv(entity.MovementKindSale, day(2), bigWinner, "10", "100"),
		mv(entity.MovementKindPurchase, day(1), smallWinner, "10", "1"),
		mv(entity.MovementKindSale, day(2), smallWinner, "2", "10"),
		mv(entity.MovementKindPurchase, day(1), loser, "5", "10"),
		mv(entity.MovementKindSale, day(2), loser, "5", "1"),
	)

	report, err := svc.ABC(context.Background(), ABCReportFilter{})
	require.NoError(t, err)
	require.Len(t, report.Entries, 2, "negative-profit products are excluded")

	assert.Equal(t, bigWinner, report.Entries[0].ProductID)
	assert.Equal(t, smallWinner, report.Entries[1].ProductID)
	last := report.Entries[len(report.Entries)-1]
	assert.True(t, last.CumulativePercent.Equal(dec("100")))
}

func TestDepletion_OmitsNoRiskProducts(t *testing.T) {
	fast, idle := id.New(), id.New()
	svc, _ := newTestService(
		// fast: 10 in stock, sells 30/30d -> 10 days left
		mv(entity.MovementKindPurchase, day(1), fast, "40", "5"),
		mv(entity.MovementKindSale, day(20), fast, "30", "9"),
		// idle: stock but no trailing sales -> no-risk, omitted
		mv(entity.MovementKindPurchase, day(1), idle, "100", "5"),
	)

	report, err := svc.Depletion(context.Background(), DepletionReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDepletionTrailingDays, report.TrailingDays)
	require.Len(t, report.Entries, 1)

	entry := report.Entries[0]
	assert.Equal(t, fast, entry.ProductID)
	assert.True(t, entry.DailySalesRate.Equal(dec("1")))
	assert.True(t, entry.DaysLeft.Equal(dec("10")))
}

func TestDormant_NeverSoldFirst(t *testing.T) {
	neverSold, staleSold, active := id.New(), id.New(), id.New()

	oldSale := mv(entity.MovementKindSale, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), staleSold, "1", "10")
	svc, _ := newTestService(
		mv(entity.MovementKindPurchase, day(1), neverSold, "10", "5"),
		mv(entity.MovementKindPurchase, time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), staleSold, "10", "5"),
		oldSale,
		mv(entity.MovementKindPurchase, day(1), active, "10", "5"),
		mv(entity.MovementKindSale, day(15), active, "2", "9"),
	)

	report, err := svc.Dormant(context.Background(), DormantReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, DefaultDormantOlderThanDays, report.OlderThanDays)
	require.Len(t, report.Entries, 2)

	assert.Equal(t, neverSold, report.Entries[0].ProductID)
	assert.Equal(t, -1, report.Entries[0].DaysSinceSale)

	assert.Equal(t, staleSold, report.Entries[1].ProductID)
	assert.True(t, report.Entries[1].LastSaleDate.Equal(oldSale.Date))
}

func TestTurnover_SplitsOpeningAndPeriod(t *testing.T) {
	productID := id.New()
	svc, _ := newTestService(
		// Before the period: opening balance 10
		mv(entity.MovementKindPurchase, day(1), productID, "10", "5"),
		// In the period: sell 6
		mv(entity.MovementKindSale, day(12), productID, "6", "9"),
	)

	report, err := svc.Turnover(context.Background(), TurnoverReportFilter{
		DateFrom: day(10),
		DateTo:   day(19),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, report.PeriodDays)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.True(t, row.OpeningStock.Equal(dec("10")))
	assert.True(t, row.ClosingStock.Equal(dec("4")))
	assert.True(t, row.SoldQty.Equal(dec("6")))
	assert.True(t, row.AvgStock.Equal(dec("7")))
	require.NotNil(t, row.Turnover)
	require.NotNil(t, row.DaysOnHand)

	// daysOnHand = avgStock / (sold/periodDays) = 7 / 0.6
	expected := dec("7").Div(dec("0.6"))
	assert.True(t, row.DaysOnHand.Equal(expected))
}

func TestTurnover_RequiresPeriod(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Turnover(context.Background(), TurnoverReportFilter{DateFrom: day(2), DateTo: day(1)})
	require.Error(t, err)
	assert.True(t, apperror.IsAppError(err))
}
