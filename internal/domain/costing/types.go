// Package costing implements the FIFO cost engine.
//
// All functions here are pure: they take a slice of ledger movements and
// compute aggregates without touching storage. Determinism over the same
// input is what makes materializer rebuilds idempotent.
package costing

import (
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/id"
)

// Layer is one FIFO cost layer: a priced purchase lot not yet fully
// consumed by sales.
type Layer struct {
	// Date is the business date of the purchase that created the layer
	Date time.Time `json:"date"`

	// Remaining is the unconsumed quantity of the lot
	Remaining decimal.Decimal `json:"remaining"`

	// UnitCost is the acquisition cost per unit
	UnitCost decimal.Decimal `json:"unitCost"`
}

// ProductAggregate accumulates per-product totals over the input period.
// Amounts are summed in the product's trading currency (the first one
// seen); no conversion happens.
type ProductAggregate struct {
	ProductID id.ID  `json:"productId"`
	Currency  string `json:"currency"`

	PurchasedQty    decimal.Decimal `json:"purchasedQty"`
	PurchasedAmount decimal.Decimal `json:"purchasedAmount"`

	SoldQty     decimal.Decimal `json:"soldQty"`
	SalesAmount decimal.Decimal `json:"salesAmount"`

	// COGS is the FIFO cost of goods sold
	COGS decimal.Decimal `json:"cogs"`

	// Profit = SalesAmount - COGS
	Profit decimal.Decimal `json:"profit"`

	// RemainingLayers are the open lots after the pass, oldest first
	RemainingLayers []Layer `json:"remainingLayers"`

	// LastSaleDate is the date of the latest effective sale, zero if none
	LastSaleDate time.Time `json:"lastSaleDate,omitzero"`
}

// RemainingQty sums the open layers.
func (a *ProductAggregate) RemainingQty() decimal.Decimal {
	total := decimal.Zero
	for _, l := range a.RemainingLayers {
		total = total.Add(l.Remaining)
	}
	return total
}

// RemainingValue sums quantity*cost over the open layers.
func (a *ProductAggregate) RemainingValue() decimal.Decimal {
	total := decimal.Zero
	for _, l := range a.RemainingLayers {
		total = total.Add(l.Remaining.Mul(l.UnitCost))
	}
	return total
}

// Result is the output of a full FIFO pass.
type Result struct {
	// Products keyed by product ID
	Products map[id.ID]*ProductAggregate `json:"products"`

	// UnderCostedSales counts sales whose quantity exceeded the priced
	// layers: the uncovered remainder carried zero cost. A data-sparsity
	// signal, never an error.
	UnderCostedSales int `json:"underCostedSales"`

	// UnpricedPurchases counts purchases recorded without cost information:
	// they adjusted stock bookkeeping but created no cost layer.
	UnpricedPurchases int `json:"unpricedPurchases"`
}

// DailyRow is the sale+purchase aggregate for one (day, product, currency).
type DailyRow struct {
	Day       time.Time `db:"day" json:"day"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	Currency  string    `db:"currency" json:"currency"`

	PurchasedQty    decimal.Decimal `db:"purchased_qty" json:"purchasedQty"`
	PurchasedAmount decimal.Decimal `db:"purchased_amount" json:"purchasedAmount"`

	SoldQty     decimal.Decimal `db:"sold_qty" json:"soldQty"`
	SalesAmount decimal.Decimal `db:"sales_amount" json:"salesAmount"`
	COGS        decimal.Decimal `db:"cogs" json:"cogs"`
	Profit      decimal.Decimal `db:"profit" json:"profit"`
}

// CustomerDailyRow is the sales aggregate for one (day, customer).
type CustomerDailyRow struct {
	Day        time.Time `db:"day" json:"day"`
	CustomerID id.ID     `db:"customer_id" json:"customerId"`

	SoldQty     decimal.Decimal `db:"sold_qty" json:"soldQty"`
	SalesAmount decimal.Decimal `db:"sales_amount" json:"salesAmount"`
	COGS        decimal.Decimal `db:"cogs" json:"cogs"`
	Profit      decimal.Decimal `db:"profit" json:"profit"`
}

// DailyResult is the output of the day-grained FIFO pass.
// Consumption comes from the same global per-product queues as Result;
// only the grouping of the contributions differs.
type DailyResult struct {
	Rows         []DailyRow         `json:"rows"`
	CustomerRows []CustomerDailyRow `json:"customerRows"`

	UnderCostedSales  int `json:"underCostedSales"`
	UnpricedPurchases int `json:"unpricedPurchases"`
}

// WindowAverage holds trailing-window averages for one product and window.
// Nil pointers mean "no data in window", never zero.
type WindowAverage struct {
	WindowDays int `json:"windowDays"`

	AvgPurchaseCost *decimal.Decimal `json:"avgPurchaseCost"`
	AvgSalePrice    *decimal.Decimal `json:"avgSalePrice"`

	PurchasedQty decimal.Decimal `json:"purchasedQty"`
	SoldQty      decimal.Decimal `json:"soldQty"`
}
