package costing

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
)

// layerQueue is a per-product FIFO queue of open cost layers.
// Head index avoids reslicing on every consumption.
type layerQueue struct {
	layers []Layer
	head   int
}

func (q *layerQueue) push(l Layer) {
	q.layers = append(q.layers, l)
}

func (q *layerQueue) empty() bool {
	return q.head >= len(q.layers)
}

func (q *layerQueue) front() *Layer {
	return &q.layers[q.head]
}

func (q *layerQueue) pop() {
	q.head++
}

func (q *layerQueue) remaining() []Layer {
	if q.empty() {
		return nil
	}
	out := make([]Layer, len(q.layers)-q.head)
	copy(out, q.layers[q.head:])
	return out
}

// consumption is one sale's draw against the FIFO queue.
type consumption struct {
	// cogs is the cost matched from priced layers
	cogs decimal.Decimal
	// underCosted is true when the queue ran out and a remainder
	// was costed at zero
	underCosted bool
}

// consume draws qty from the queue front, oldest layer first.
// An exhausted queue never fails: the uncovered remainder simply
// contributes zero cost and flags the sale as under-costed.
func (q *layerQueue) consume(qty decimal.Decimal) consumption {
	c := consumption{cogs: decimal.Zero}
	needed := qty

	for needed.IsPositive() && !q.empty() {
		layer := q.front()
		take := needed
		if layer.Remaining.LessThan(take) {
			take = layer.Remaining
		}

		c.cogs = c.cogs.Add(take.Mul(layer.UnitCost))
		layer.Remaining = layer.Remaining.Sub(take)
		needed = needed.Sub(take)

		if layer.Remaining.IsZero() {
			q.pop()
		}
	}

	if needed.IsPositive() {
		c.underCosted = true
	}
	return c
}

// effectiveSorted filters to effective apply movements and orders them
// chronologically. The sort is stable so same-date movements keep their
// ledger insertion order.
func effectiveSorted(movements []entity.StockMovement) []entity.StockMovement {
	out := make([]entity.StockMovement, 0, len(movements))
	for i := range movements {
		if movements[i].IsEffective() {
			out = append(out, movements[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// purchaseCost resolves the per-unit cost of a purchase movement.
// Explicit unit cost wins; otherwise it is derived from amount/quantity.
// Returns ok=false for unpriced purchases.
func purchaseCost(m *entity.StockMovement) (decimal.Decimal, bool) {
	if m.UnitCost != nil {
		return *m.UnitCost, true
	}
	if m.Amount != nil && m.Quantity.IsPositive() {
		return m.Amount.Div(m.Quantity), true
	}
	return decimal.Zero, false
}

// saleAmount resolves the revenue of a sale movement: explicit amount
// wins, otherwise price*quantity, otherwise zero.
func saleAmount(m *entity.StockMovement) decimal.Decimal {
	if m.Amount != nil {
		return *m.Amount
	}
	if m.UnitCost != nil {
		return m.UnitCost.Mul(m.Quantity)
	}
	return decimal.Zero
}

// purchaseAmount resolves the spend of a purchase movement.
func purchaseAmount(m *entity.StockMovement) decimal.Decimal {
	if m.Amount != nil {
		return *m.Amount
	}
	if m.UnitCost != nil {
		return m.UnitCost.Mul(m.Quantity)
	}
	return decimal.Zero
}

// ComputeAggregates runs a full FIFO pass over the movements and returns
// per-product aggregates, the open layers, and the audit counters.
func ComputeAggregates(movements []entity.StockMovement) Result {
	result := Result{Products: make(map[id.ID]*ProductAggregate)}
	queues := make(map[id.ID]*layerQueue)

	agg := func(m *entity.StockMovement) *ProductAggregate {
		a, ok := result.Products[m.ProductID]
		if !ok {
			// A product is assumed to trade in one currency: the
			// aggregate carries the first currency seen and amounts
			// are summed without conversion. Layers are per product,
			// so cross-currency histories would mix amounts here
			// (the day-grained rows are currency-keyed on the sale
			// side but consume the same shared queues).
			a = &ProductAggregate{
				ProductID:       m.ProductID,
				Currency:        m.Currency,
				PurchasedQty:    decimal.Zero,
				PurchasedAmount: decimal.Zero,
				SoldQty:         decimal.Zero,
				SalesAmount:     decimal.Zero,
				COGS:            decimal.Zero,
				Profit:          decimal.Zero,
			}
			result.Products[m.ProductID] = a
		}
		return a
	}

	queue := func(productID id.ID) *layerQueue {
		q, ok := queues[productID]
		if !ok {
			q = &layerQueue{}
			queues[productID] = q
		}
		return q
	}

	for _, m := range effectiveSorted(movements) {
		if !m.Quantity.IsPositive() {
			continue
		}

		switch m.Kind {
		case entity.MovementKindPurchase:
			a := agg(&m)
			a.PurchasedQty = a.PurchasedQty.Add(m.Quantity)
			a.PurchasedAmount = a.PurchasedAmount.Add(purchaseAmount(&m))

			if cost, ok := purchaseCost(&m); ok {
				queue(m.ProductID).push(Layer{
					Date:      m.Date,
					Remaining: m.Quantity,
					UnitCost:  cost,
				})
			} else {
				result.UnpricedPurchases++
			}

		case entity.MovementKindSale:
			a := agg(&m)
			a.SoldQty = a.SoldQty.Add(m.Quantity)
			a.SalesAmount = a.SalesAmount.Add(saleAmount(&m))
			if m.Date.After(a.LastSaleDate) {
				a.LastSaleDate = m.Date
			}

			c := queue(m.ProductID).consume(m.Quantity)
			a.COGS = a.COGS.Add(c.cogs)
			if c.underCosted {
				result.UnderCostedSales++
			}
		}
	}

	for productID, a := range result.Products {
		a.Profit = a.SalesAmount.Sub(a.COGS)
		if q, ok := queues[productID]; ok {
			a.RemainingLayers = q.remaining()
		}
	}

	return result
}

// DayOf truncates a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type dailyKey struct {
	day       time.Time
	productID id.ID
	currency  string
}

type customerDailyKey struct {
	day        time.Time
	customerID id.ID
}

// ComputeDailyAggregates runs the same FIFO consumption as
// ComputeAggregates but groups contributions by calendar day.
// Layers stay global per product, so a sale on Tuesday still consumes
// Monday's lot; only the attribution of the totals is day-grained.
func ComputeDailyAggregates(movements []entity.StockMovement) DailyResult {
	result := DailyResult{}
	queues := make(map[id.ID]*layerQueue)
	rows := make(map[dailyKey]*DailyRow)
	customerRows := make(map[customerDailyKey]*CustomerDailyRow)

	row := func(m *entity.StockMovement) *DailyRow {
		key := dailyKey{day: DayOf(m.Date), productID: m.ProductID, currency: m.Currency}
		r, ok := rows[key]
		if !ok {
			r = &DailyRow{
				Day:             key.day,
				ProductID:       key.productID,
				Currency:        key.currency,
				PurchasedQty:    decimal.Zero,
				PurchasedAmount: decimal.Zero,
				SoldQty:         decimal.Zero,
				SalesAmount:     decimal.Zero,
				COGS:            decimal.Zero,
				Profit:          decimal.Zero,
			}
			rows[key] = r
		}
		return r
	}

	customerRow := func(m *entity.StockMovement) *CustomerDailyRow {
		if m.CounterpartyID == nil {
			return nil
		}
		key := customerDailyKey{day: DayOf(m.Date), customerID: *m.CounterpartyID}
		r, ok := customerRows[key]
		if !ok {
			r = &CustomerDailyRow{
				Day:         key.day,
				CustomerID:  key.customerID,
				SoldQty:     decimal.Zero,
				SalesAmount: decimal.Zero,
				COGS:        decimal.Zero,
				Profit:      decimal.Zero,
			}
			customerRows[key] = r
		}
		return r
	}

	queue := func(productID id.ID) *layerQueue {
		q, ok := queues[productID]
		if !ok {
			q = &layerQueue{}
			queues[productID] = q
		}
		return q
	}

	for _, m := range effectiveSorted(movements) {
		if !m.Quantity.IsPositive() {
			continue
		}

		switch m.Kind {
		case entity.MovementKindPurchase:
			r := row(&m)
			r.PurchasedQty = r.PurchasedQty.Add(m.Quantity)
			r.PurchasedAmount = r.PurchasedAmount.Add(purchaseAmount(&m))

			if cost, ok := purchaseCost(&m); ok {
				queue(m.ProductID).push(Layer{
					Date:      m.Date,
					Remaining: m.Quantity,
					UnitCost:  cost,
				})
			} else {
				result.UnpricedPurchases++
			}

		case entity.MovementKindSale:
			amount := saleAmount(&m)
			c := queue(m.ProductID).consume(m.Quantity)
			if c.underCosted {
				result.UnderCostedSales++
			}
			profit := amount.Sub(c.cogs)

			r := row(&m)
			r.SoldQty = r.SoldQty.Add(m.Quantity)
			r.SalesAmount = r.SalesAmount.Add(amount)
			r.COGS = r.COGS.Add(c.cogs)
			r.Profit = r.Profit.Add(profit)

			if cr := customerRow(&m); cr != nil {
				cr.SoldQty = cr.SoldQty.Add(m.Quantity)
				cr.SalesAmount = cr.SalesAmount.Add(amount)
				cr.COGS = cr.COGS.Add(c.cogs)
				cr.Profit = cr.Profit.Add(profit)
			}
		}
	}

	result.Rows = make([]DailyRow, 0, len(rows))
	for _, r := range rows {
		result.Rows = append(result.Rows, *r)
	}
	sort.Slice(result.Rows, func(i, j int) bool {
		a, b := &result.Rows[i], &result.Rows[j]
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		if a.ProductID != b.ProductID {
			return a.ProductID.String() < b.ProductID.String()
		}
		return a.Currency < b.Currency
	})

	result.CustomerRows = make([]CustomerDailyRow, 0, len(customerRows))
	for _, r := range customerRows {
		result.CustomerRows = append(result.CustomerRows, *r)
	}
	sort.Slice(result.CustomerRows, func(i, j int) bool {
		a, b := &result.CustomerRows[i], &result.CustomerRows[j]
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		return a.CustomerID.String() < b.CustomerID.String()
	})

	return result
}
