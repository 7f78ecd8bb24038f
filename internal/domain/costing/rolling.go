package costing

import (
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
)

type windowSums struct {
	purchasedQty    decimal.Decimal
	purchasedAmount decimal.Decimal
	soldQty         decimal.Decimal
	soldAmount      decimal.Decimal
}

// ComputeRollingAverages computes trailing-window average purchase cost and
// sale price per product. Windows are trailing day counts relative to now
// (e.g. 30, 60, 90). A single pass over the movements feeds all windows.
//
// An average is nil when the window holds no priced quantity of that side.
// Zero would be a lie: "no purchases in 30 days" is not "free goods".
func ComputeRollingAverages(movements []entity.StockMovement, now time.Time, windows []int) map[id.ID][]WindowAverage {
	cutoffs := make([]time.Time, len(windows))
	for i, w := range windows {
		cutoffs[i] = now.AddDate(0, 0, -w)
	}

	sums := make(map[id.ID][]windowSums)

	for i := range movements {
		m := &movements[i]
		if !m.IsEffective() || !m.Quantity.IsPositive() {
			continue
		}
		if m.Date.After(now) {
			continue
		}

		s, ok := sums[m.ProductID]
		if !ok {
			s = make([]windowSums, len(windows))
			for j := range s {
				s[j] = windowSums{
					purchasedQty:    decimal.Zero,
					purchasedAmount: decimal.Zero,
					soldQty:         decimal.Zero,
					soldAmount:      decimal.Zero,
				}
			}
			sums[m.ProductID] = s
		}

		for j := range windows {
			if m.Date.Before(cutoffs[j]) {
				continue
			}
			switch m.Kind {
			case entity.MovementKindPurchase:
				// Unpriced purchases carry no amount and would drag
				// the average toward zero; skip them.
				if _, priced := purchaseCost(m); !priced {
					continue
				}
				s[j].purchasedQty = s[j].purchasedQty.Add(m.Quantity)
				s[j].purchasedAmount = s[j].purchasedAmount.Add(purchaseAmount(m))
			case entity.MovementKindSale:
				s[j].soldQty = s[j].soldQty.Add(m.Quantity)
				s[j].soldAmount = s[j].soldAmount.Add(saleAmount(m))
			}
		}
	}

	out := make(map[id.ID][]WindowAverage, len(sums))
	for productID, s := range sums {
		averages := make([]WindowAverage, len(windows))
		for j, w := range windows {
			wa := WindowAverage{
				WindowDays:   w,
				PurchasedQty: s[j].purchasedQty,
				SoldQty:      s[j].soldQty,
			}
			if s[j].purchasedQty.IsPositive() {
				avg := s[j].purchasedAmount.Div(s[j].purchasedQty)
				wa.AvgPurchaseCost = &avg
			}
			if s[j].soldQty.IsPositive() {
				avg := s[j].soldAmount.Div(s[j].soldQty)
				wa.AvgSalePrice = &avg
			}
			averages[j] = wa
		}
		out[productID] = averages
	}

	return out
}
