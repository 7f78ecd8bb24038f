package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklot/internal/core/id"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestClassifyABC_Buckets(t *testing.T) {
	a, b, c := id.New(), id.New(), id.New()
	profits := map[id.ID]decimal.Decimal{
		a: dec("800"),
		b: dec("150"),
		c: dec("50"),
	}

	entries := ClassifyABC(profits, DefaultABCThresholds())
	require.Len(t, entries, 3)

	assert.Equal(t, a, entries[0].ProductID)
	assert.Equal(t, ClassA, entries[0].Class)
	assert.Equal(t, ClassB, entries[1].Class)
	assert.Equal(t, ClassC, entries[2].Class)

	// Cumulative percent is monotone and ends at 100
	prev := decimal.Zero
	for _, e := range entries {
		assert.True(t, e.CumulativePercent.GreaterThanOrEqual(prev))
		prev = e.CumulativePercent
	}
	assert.True(t, entries[2].CumulativePercent.Equal(dec("100")))
}

func TestClassifyABC_EmptyWhenNoPositiveProfit(t *testing.T) {
	profits := map[id.ID]decimal.Decimal{
		id.New(): dec("-10"),
		id.New(): dec("0"),
	}

	assert.Empty(t, ClassifyABC(profits, DefaultABCThresholds()))
	assert.Empty(t, ClassifyABC(nil, DefaultABCThresholds()))
}

func TestClassifyABC_ExcludesLossMakers(t *testing.T) {
	winner, loser := id.New(), id.New()
	profits := map[id.ID]decimal.Decimal{
		winner: dec("100"),
		loser:  dec("-40"),
	}

	entries := ClassifyABC(profits, DefaultABCThresholds())
	require.Len(t, entries, 1)
	assert.Equal(t, winner, entries[0].ProductID)
	assert.True(t, entries[0].CumulativePercent.Equal(dec("100")))
}

func TestDepletionForecast_OrdersByDaysLeft(t *testing.T) {
	urgent, relaxed := id.New(), id.New()

	stock := map[id.ID]decimal.Decimal{
		urgent:  dec("10"),
		relaxed: dec("100"),
	}
	sold30 := map[id.ID]decimal.Decimal{
		urgent:  dec("60"), // 2/day -> 5 days left
		relaxed: dec("120"), // 4/day -> 25 days left
	}

	entries := DepletionForecast(stock, sold30, 30, 30)
	require.Len(t, entries, 2)

	assert.Equal(t, urgent, entries[0].ProductID)
	assert.True(t, entries[0].DaysLeft.Equal(dec("5")))
	assert.Equal(t, relaxed, entries[1].ProductID)
	assert.True(t, entries[1].DaysLeft.Equal(dec("25")))
}

func TestDepletionForecast_ZeroSalesIsNoRisk(t *testing.T) {
	dormant := id.New()

	stock := map[id.ID]decimal.Decimal{dormant: dec("3")}
	sold30 := map[id.ID]decimal.Decimal{dormant: dec("0")}

	// No trailing sales: omitted entirely, not an error and not daysLeft=0
	entries := DepletionForecast(stock, sold30, 30, 30)
	assert.Empty(t, entries)
}

func TestDepletionForecast_HorizonFilters(t *testing.T) {
	productID := id.New()

	stock := map[id.ID]decimal.Decimal{productID: dec("900")}
	sold30 := map[id.ID]decimal.Decimal{productID: dec("30")} // 1/day -> 900 days

	assert.Empty(t, DepletionForecast(stock, sold30, 30, 30))
	assert.Len(t, DepletionForecast(stock, sold30, 30, 1000), 1)
}

func TestDormantProducts(t *testing.T) {
	now := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)
	neverSold, stale, active := id.New(), id.New(), id.New()

	lastSales := map[id.ID]time.Time{
		neverSold: {},
		stale:     now.AddDate(0, 0, -120),
		active:    now.AddDate(0, 0, -5),
	}

	out := DormantProducts(lastSales, now, 90)
	require.Len(t, out, 2)

	// Never-sold products rank first
	assert.Equal(t, neverSold, out[0].ProductID)
	assert.Equal(t, -1, out[0].DaysSinceSale)

	assert.Equal(t, stale, out[1].ProductID)
	assert.Equal(t, 120, out[1].DaysSinceSale)
}

func TestTurnover(t *testing.T) {
	result := Turnover(dec("100"), dec("60"), dec("240"), 30)

	assert.True(t, result.AvgStock.Equal(dec("80")))
	require.NotNil(t, result.Turnover)
	assert.True(t, result.Turnover.Equal(dec("3")))

	// 240/30 = 8/day; 80/8 = 10 days on hand
	require.NotNil(t, result.DaysOnHand)
	assert.True(t, result.DaysOnHand.Equal(dec("10")))
}

func TestTurnover_UndefinedMetricsAreNil(t *testing.T) {
	noStock := Turnover(dec("0"), dec("0"), dec("10"), 30)
	assert.Nil(t, noStock.Turnover)

	noSales := Turnover(dec("10"), dec("10"), dec("0"), 30)
	assert.Nil(t, noSales.DaysOnHand)
	require.NotNil(t, noSales.Turnover)
	assert.True(t, noSales.Turnover.IsZero())
}
