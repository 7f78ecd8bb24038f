// Package analytics derives decision-support reports from costing output:
// ABC profit classification, depletion forecasting, dormant product
// detection and stock turnover. All functions are pure.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/id"
)

// ABCClass buckets products by cumulative profit contribution.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// ABCThresholds are cumulative-percent boundaries between classes.
type ABCThresholds struct {
	// A covers products up to this cumulative percent of total profit
	A decimal.Decimal
	// B covers products up to this cumulative percent
	B decimal.Decimal
}

// DefaultABCThresholds returns the conventional 80/95 split.
func DefaultABCThresholds() ABCThresholds {
	return ABCThresholds{
		A: decimal.NewFromInt(80),
		B: decimal.NewFromInt(95),
	}
}

// ABCEntry is one ranked row of the classification.
type ABCEntry struct {
	ProductID id.ID           `json:"productId"`
	Profit    decimal.Decimal `json:"profit"`

	// SharePercent is this product's percent of total profit
	SharePercent decimal.Decimal `json:"sharePercent"`

	// CumulativePercent is the running total down the ranking
	CumulativePercent decimal.Decimal `json:"cumulativePercent"`

	Class ABCClass `json:"class"`
}

var hundred = decimal.NewFromInt(100)

// ClassifyABC ranks products by profit descending and assigns classes by
// cumulative contribution. Products with non-positive profit are excluded
// from the ranking; when nothing remains (total profit <= 0) the result
// is empty rather than a division by zero.
func ClassifyABC(profits map[id.ID]decimal.Decimal, thresholds ABCThresholds) []ABCEntry {
	entries := make([]ABCEntry, 0, len(profits))
	total := decimal.Zero
	for productID, profit := range profits {
		if !profit.IsPositive() {
			continue
		}
		entries = append(entries, ABCEntry{ProductID: productID, Profit: profit})
		total = total.Add(profit)
	}

	if len(entries) == 0 || !total.IsPositive() {
		return nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Profit.Equal(entries[j].Profit) {
			return entries[i].Profit.GreaterThan(entries[j].Profit)
		}
		// Deterministic order for equal profits
		return entries[i].ProductID.String() < entries[j].ProductID.String()
	})

	cumulative := decimal.Zero
	for i := range entries {
		share := entries[i].Profit.Mul(hundred).Div(total)
		cumulative = cumulative.Add(share)

		entries[i].SharePercent = share
		entries[i].CumulativePercent = cumulative

		switch {
		case cumulative.LessThanOrEqual(thresholds.A):
			entries[i].Class = ClassA
		case cumulative.LessThanOrEqual(thresholds.B):
			entries[i].Class = ClassB
		default:
			entries[i].Class = ClassC
		}
	}

	return entries
}

// DepletionEntry forecasts when a product's stock runs out at the
// trailing sales rate.
type DepletionEntry struct {
	ProductID id.ID           `json:"productId"`
	Stock     decimal.Decimal `json:"stock"`

	// DailySalesRate is trailing sold quantity / trailing window days
	DailySalesRate decimal.Decimal `json:"dailySalesRate"`

	// DaysLeft = Stock / DailySalesRate
	DaysLeft decimal.Decimal `json:"daysLeft"`
}

// DepletionForecast returns products projected to deplete within
// withinDays, ascending by days left. trailingSoldQty is the effective
// sold quantity over trailingDays (usually 30). Products with zero
// trailing sales have no meaningful rate: they are no-risk and are
// omitted, never an error.
func DepletionForecast(
	stock map[id.ID]decimal.Decimal,
	trailingSoldQty map[id.ID]decimal.Decimal,
	trailingDays int,
	withinDays int,
) []DepletionEntry {
	if trailingDays <= 0 {
		return nil
	}
	days := decimal.NewFromInt(int64(trailingDays))
	horizon := decimal.NewFromInt(int64(withinDays))

	out := make([]DepletionEntry, 0)
	for productID, sold := range trailingSoldQty {
		if !sold.IsPositive() {
			continue
		}
		rate := sold.Div(days)

		qty := stock[productID]
		if qty.IsNegative() {
			qty = decimal.Zero
		}

		daysLeft := qty.Div(rate)
		if daysLeft.GreaterThan(horizon) {
			continue
		}

		out = append(out, DepletionEntry{
			ProductID:      productID,
			Stock:          qty,
			DailySalesRate: rate,
			DaysLeft:       daysLeft,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DaysLeft.Equal(out[j].DaysLeft) {
			return out[i].DaysLeft.LessThan(out[j].DaysLeft)
		}
		return out[i].ProductID.String() < out[j].ProductID.String()
	})

	return out
}

// DormantProduct is a product without recent sales activity.
type DormantProduct struct {
	ProductID id.ID `json:"productId"`

	// LastSaleDate is zero when the product never sold
	LastSaleDate time.Time `json:"lastSaleDate,omitzero"`

	// DaysSinceSale is -1 when the product never sold
	DaysSinceSale int `json:"daysSinceSale"`
}

// DormantProducts returns products whose latest effective sale is older
// than olderThanDays (or that never sold at all). lastSales maps every
// known product to its last sale date, zero time meaning "never".
func DormantProducts(lastSales map[id.ID]time.Time, now time.Time, olderThanDays int) []DormantProduct {
	cutoff := now.AddDate(0, 0, -olderThanDays)

	out := make([]DormantProduct, 0)
	for productID, last := range lastSales {
		if last.IsZero() {
			out = append(out, DormantProduct{ProductID: productID, DaysSinceSale: -1})
			continue
		}
		if last.Before(cutoff) {
			out = append(out, DormantProduct{
				ProductID:     productID,
				LastSaleDate:  last,
				DaysSinceSale: int(now.Sub(last).Hours() / 24),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		// Never-sold first, then oldest sale first
		li, lj := out[i].LastSaleDate, out[j].LastSaleDate
		if li.IsZero() != lj.IsZero() {
			return li.IsZero()
		}
		if !li.Equal(lj) {
			return li.Before(lj)
		}
		return out[i].ProductID.String() < out[j].ProductID.String()
	})

	return out
}

// TurnoverResult holds turnover metrics for one product over a period.
// Nil pointers mean the metric is undefined for the period (no average
// stock, or no sales), never zero.
type TurnoverResult struct {
	AvgStock decimal.Decimal `json:"avgStock"`

	// Turnover = soldQty / avgStock
	Turnover *decimal.Decimal `json:"turnover"`

	// DaysOnHand = avgStock / (soldQty / periodDays)
	DaysOnHand *decimal.Decimal `json:"daysOnHand"`
}

// Turnover computes stock turnover and days-on-hand from opening/closing
// balances and the sold quantity over periodDays.
func Turnover(opening, closing, soldQty decimal.Decimal, periodDays int) TurnoverResult {
	two := decimal.NewFromInt(2)
	result := TurnoverResult{AvgStock: opening.Add(closing).Div(two)}

	if result.AvgStock.IsPositive() {
		turnover := soldQty.Div(result.AvgStock)
		result.Turnover = &turnover
	}

	if periodDays > 0 && soldQty.IsPositive() {
		avgDailySales := soldQty.Div(decimal.NewFromInt(int64(periodDays)))
		daysOnHand := result.AvgStock.Div(avgDailySales)
		result.DaysOnHand = &daysOnHand
	}

	return result
}
