package costing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
)

func TestComputeRollingAverages_WindowBoundaries(t *testing.T) {
	productID := id.New()
	now := time.Date(2026, time.June, 30, 12, 0, 0, 0, time.UTC)

	movements := []entity.StockMovement{
		purchase(productID, now.AddDate(0, 0, -10), "10", "5"), // inside 30d
		purchase(productID, now.AddDate(0, 0, -45), "10", "9"), // inside 60d only
		sale(productID, now.AddDate(0, 0, -5), "4", "12"),
	}

	averages := ComputeRollingAverages(movements, now, []int{30, 60})
	require.Contains(t, averages, productID)
	windows := averages[productID]
	require.Len(t, windows, 2)

	w30, w60 := windows[0], windows[1]

	require.NotNil(t, w30.AvgPurchaseCost)
	assert.True(t, w30.AvgPurchaseCost.Equal(dec("5")))

	// 60d window blends both lots: (50+90)/20 = 7
	require.NotNil(t, w60.AvgPurchaseCost)
	assert.True(t, w60.AvgPurchaseCost.Equal(dec("7")))

	require.NotNil(t, w30.AvgSalePrice)
	assert.True(t, w30.AvgSalePrice.Equal(dec("12")))
}

func TestComputeRollingAverages_NilWhenNoData(t *testing.T) {
	productID := id.New()
	now := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)

	// Only an old purchase, far outside every window
	movements := []entity.StockMovement{
		purchase(productID, now.AddDate(0, 0, -200), "10", "5"),
	}

	averages := ComputeRollingAverages(movements, now, []int{30, 90})
	windows := averages[productID]
	require.Len(t, windows, 2)

	for _, w := range windows {
		assert.Nil(t, w.AvgPurchaseCost, "window %d", w.WindowDays)
		assert.Nil(t, w.AvgSalePrice, "window %d", w.WindowDays)
	}
}

func TestComputeRollingAverages_IgnoresUnpricedAndReverted(t *testing.T) {
	productID := id.New()
	now := time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC)

	unpriced := purchase(productID, now.AddDate(0, 0, -3), "100", "")

	reverted := purchase(productID, now.AddDate(0, 0, -2), "10", "99")
	revertID := id.New()
	reverted.ReversedByMovementID = &revertID

	movements := []entity.StockMovement{
		unpriced,
		reverted,
		purchase(productID, now.AddDate(0, 0, -1), "10", "6"),
	}

	averages := ComputeRollingAverages(movements, now, []int{30})
	w := averages[productID][0]

	require.NotNil(t, w.AvgPurchaseCost)
	assert.True(t, w.AvgPurchaseCost.Equal(dec("6")), "avg = %s", w.AvgPurchaseCost)
	assert.True(t, w.PurchasedQty.Equal(dec("10")))
}
