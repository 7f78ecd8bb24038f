package costing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func purchase(productID id.ID, date time.Time, qty, unitCost string) entity.StockMovement {
	m := entity.NewStockMovement(entity.MovementKindPurchase, date, productID, dec(qty))
	if unitCost != "" {
		m.UnitCost = decPtr(unitCost)
		amount := dec(unitCost).Mul(dec(qty))
		m.Amount = &amount
	}
	m.Currency = "USD"
	return m
}

func sale(productID id.ID, date time.Time, qty, unitPrice string) entity.StockMovement {
	m := entity.NewStockMovement(entity.MovementKindSale, date, productID, dec(qty))
	if unitPrice != "" {
		m.UnitCost = decPtr(unitPrice)
		amount := dec(unitPrice).Mul(dec(qty))
		m.Amount = &amount
	}
	m.Currency = "USD"
	return m
}

func TestComputeAggregates_TwoLayerSale(t *testing.T) {
	productID := id.New()
	movements := []entity.StockMovement{
		purchase(productID, day(1), "10", "5"),
		purchase(productID, day(2), "10", "7"),
		sale(productID, day(3), "15", "10"),
	}

	result := ComputeAggregates(movements)

	agg, ok := result.Products[productID]
	require.True(t, ok)

	// 10@5 fully consumed, then 5@7
	assert.True(t, agg.COGS.Equal(dec("85")), "cogs = %s", agg.COGS)
	assert.True(t, agg.SalesAmount.Equal(dec("150")), "salesAmount = %s", agg.SalesAmount)
	assert.True(t, agg.Profit.Equal(dec("65")), "profit = %s", agg.Profit)

	require.Len(t, agg.RemainingLayers, 1)
	assert.True(t, agg.RemainingLayers[0].Remaining.Equal(dec("5")))
	assert.True(t, agg.RemainingLayers[0].UnitCost.Equal(dec("7")))

	assert.Zero(t, result.UnderCostedSales)
	assert.Zero(t, result.UnpricedPurchases)
}

func TestComputeAggregates_UnderCostedSale(t *testing.T) {
	productID := id.New()
	movements := []entity.StockMovement{
		purchase(productID, day(1), "10", "5"),
		sale(productID, day(2), "12", "10"),
	}

	result := ComputeAggregates(movements)
	agg := result.Products[productID]

	// 10 units covered at 5, 2 units at zero cost
	assert.True(t, agg.COGS.Equal(dec("50")), "cogs = %s", agg.COGS)
	assert.True(t, agg.SalesAmount.Equal(dec("120")))
	assert.Equal(t, 1, result.UnderCostedSales)
	assert.Empty(t, agg.RemainingLayers)
}

func TestComputeAggregates_UnpricedPurchase(t *testing.T) {
	productID := id.New()
	movements := []entity.StockMovement{
		purchase(productID, day(1), "10", ""),
		sale(productID, day(2), "4", "10"),
	}

	result := ComputeAggregates(movements)
	agg := result.Products[productID]

	// Unpriced purchase creates no layer, so the whole sale is uncovered
	assert.True(t, agg.COGS.IsZero())
	assert.True(t, agg.PurchasedQty.Equal(dec("10")))
	assert.True(t, agg.PurchasedAmount.IsZero())
	assert.Equal(t, 1, result.UnpricedPurchases)
	assert.Equal(t, 1, result.UnderCostedSales)
}

func TestComputeAggregates_AmountDerivedCost(t *testing.T) {
	productID := id.New()
	p := purchase(productID, day(1), "4", "")
	p.Amount = decPtr("100") // 25/unit derived

	result := ComputeAggregates([]entity.StockMovement{
		p,
		sale(productID, day(2), "2", "40"),
	})
	agg := result.Products[productID]

	assert.True(t, agg.COGS.Equal(dec("50")), "cogs = %s", agg.COGS)
	assert.Zero(t, result.UnpricedPurchases)
}

func TestComputeAggregates_SkipsRevertedAndRevertRows(t *testing.T) {
	productID := id.New()

	cancelled := purchase(productID, day(1), "10", "5")
	revertID := id.New()
	cancelled.ReversedByMovementID = &revertID

	revert := cancelled.Revert(day(2))
	revert.ID = revertID

	kept := purchase(productID, day(3), "10", "7")

	result := ComputeAggregates([]entity.StockMovement{cancelled, revert, kept,
		sale(productID, day(4), "5", "10")})
	agg := result.Products[productID]

	// Only the 7-cost layer exists; the cancelled 5-cost lot is invisible
	assert.True(t, agg.COGS.Equal(dec("35")), "cogs = %s", agg.COGS)
	assert.True(t, agg.PurchasedQty.Equal(dec("10")))
}

func TestComputeAggregates_SameDayKeepsInsertionOrder(t *testing.T) {
	productID := id.New()
	movements := []entity.StockMovement{
		purchase(productID, day(1), "1", "3"),
		purchase(productID, day(1), "1", "9"),
		sale(productID, day(1), "1", "10"),
	}

	result := ComputeAggregates(movements)
	agg := result.Products[productID]

	// The 3-cost lot was recorded first, so it is consumed first
	assert.True(t, agg.COGS.Equal(dec("3")), "cogs = %s", agg.COGS)
	require.Len(t, agg.RemainingLayers, 1)
	assert.True(t, agg.RemainingLayers[0].UnitCost.Equal(dec("9")))
}

func TestComputeAggregates_MultipleProductsIsolated(t *testing.T) {
	a, b := id.New(), id.New()
	movements := []entity.StockMovement{
		purchase(a, day(1), "5", "2"),
		purchase(b, day(1), "5", "100"),
		sale(a, day(2), "5", "4"),
	}

	result := ComputeAggregates(movements)

	// Product A never touches product B's expensive layer
	assert.True(t, result.Products[a].COGS.Equal(dec("10")))
	assert.True(t, result.Products[b].COGS.IsZero())
	assert.Len(t, result.Products[b].RemainingLayers, 1)
}

func TestComputeAggregates_Deterministic(t *testing.T) {
	productID := id.New()
	movements := []entity.StockMovement{
		purchase(productID, day(1), "10", "5"),
		purchase(productID, day(2), "10", "7"),
		sale(productID, day(3), "15", "10"),
		sale(productID, day(4), "3", "11"),
	}

	first := ComputeAggregates(movements)
	second := ComputeAggregates(movements)

	fa, sa := first.Products[productID], second.Products[productID]
	assert.True(t, fa.COGS.Equal(sa.COGS))
	assert.True(t, fa.Profit.Equal(sa.Profit))
	assert.Equal(t, len(fa.RemainingLayers), len(sa.RemainingLayers))
}

func TestComputeDailyAggregates_GroupsByDay(t *testing.T) {
	productID := id.New()
	customerID := id.New()

	s1 := sale(productID, day(2), "3", "10")
	s1.CounterpartyID = &customerID
	s2 := sale(productID, day(3), "2", "10")
	s2.CounterpartyID = &customerID

	result := ComputeDailyAggregates([]entity.StockMovement{
		purchase(productID, day(1), "10", "4"),
		s1,
		s2,
	})

	require.Len(t, result.Rows, 3)

	// Day 1: purchase only
	assert.True(t, result.Rows[0].Day.Equal(day(1)))
	assert.True(t, result.Rows[0].PurchasedQty.Equal(dec("10")))
	assert.True(t, result.Rows[0].SoldQty.IsZero())

	// Day 2 sale consumes day 1's lot: 3*4 cogs
	assert.True(t, result.Rows[1].Day.Equal(day(2)))
	assert.True(t, result.Rows[1].COGS.Equal(dec("12")))
	assert.True(t, result.Rows[1].Profit.Equal(dec("18")))

	// Day 3 continues the same lot
	assert.True(t, result.Rows[2].COGS.Equal(dec("8")))

	// Customer grain accumulates both sales
	require.Len(t, result.CustomerRows, 2)
	totalCustomerProfit := result.CustomerRows[0].Profit.Add(result.CustomerRows[1].Profit)
	assert.True(t, totalCustomerProfit.Equal(dec("30")))
}

func TestComputeDailyAggregates_MatchesTotalPass(t *testing.T) {
	productID := id.New()
	movements := []entity.StockMovement{
		purchase(productID, day(1), "10", "5"),
		purchase(productID, day(2), "10", "7"),
		sale(productID, day(3), "15", "10"),
	}

	total := ComputeAggregates(movements)
	daily := ComputeDailyAggregates(movements)

	dailyCOGS := decimal.Zero
	dailyProfit := decimal.Zero
	for _, r := range daily.Rows {
		dailyCOGS = dailyCOGS.Add(r.COGS)
		dailyProfit = dailyProfit.Add(r.Profit)
	}

	agg := total.Products[productID]
	assert.True(t, dailyCOGS.Equal(agg.COGS))
	assert.True(t, dailyProfit.Equal(agg.Profit))
}
