// Package reports assembles analytics reports from the ledger: live FIFO
// aggregates, rolling averages, ABC classification, depletion forecast,
// dormant products and stock turnover.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/id"
	"stocklot/internal/domain/analytics"
	"stocklot/internal/domain/costing"
)

// Report defaults. Callers can override any of them via the filters.
const (
	DefaultDepletionTrailingDays = 30
	DefaultDepletionWithinDays   = 30
	DefaultDormantOlderThanDays  = 180
)

// DefaultRollingWindows are the trailing windows reported when the
// caller does not ask for specific ones.
var DefaultRollingWindows = []int{30, 90}

// --- FIFO costing report ---

// FIFOReportFilter limits the movement set fed to the FIFO pass.
type FIFOReportFilter struct {
	ProductID *id.ID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// FIFOReportRow is one product's costing aggregate.
type FIFOReportRow struct {
	ProductID id.ID  `json:"productId"`
	Currency  string `json:"currency"`

	PurchasedQty    decimal.Decimal `json:"purchasedQty"`
	PurchasedAmount decimal.Decimal `json:"purchasedAmount"`
	SoldQty         decimal.Decimal `json:"soldQty"`
	SalesAmount     decimal.Decimal `json:"salesAmount"`
	COGS            decimal.Decimal `json:"cogs"`
	Profit          decimal.Decimal `json:"profit"`

	RemainingQty   decimal.Decimal `json:"remainingQty"`
	RemainingValue decimal.Decimal `json:"remainingValue"`
	RemainingLayers []costing.Layer `json:"remainingLayers"`
}

// FIFOReport is the live FIFO costing report.
type FIFOReport struct {
	Rows []FIFOReportRow `json:"rows"`

	// Audit counters from the pass
	UnderCostedSales  int `json:"underCostedSales"`
	UnpricedPurchases int `json:"unpricedPurchases"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// --- Rolling averages ---

// RollingAveragesRow holds all requested windows for one product.
type RollingAveragesRow struct {
	ProductID id.ID                   `json:"productId"`
	Windows   []costing.WindowAverage `json:"windows"`
}

// RollingAveragesReport lists trailing-window price averages per product.
type RollingAveragesReport struct {
	WindowDays  []int                `json:"windowDays"`
	Rows        []RollingAveragesRow `json:"rows"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// --- ABC classification ---

// ABCReportFilter limits the profit ranking to a period.
type ABCReportFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
}

// ABCReport ranks products by profit contribution.
type ABCReport struct {
	Entries     []analytics.ABCEntry `json:"entries"`
	GeneratedAt time.Time            `json:"generatedAt"`
}

// --- Depletion forecast ---

// DepletionReportFilter tunes the forecast horizon.
type DepletionReportFilter struct {
	// TrailingDays is the sales-rate observation window (default 30)
	TrailingDays int
	// WithinDays is the at-risk horizon (default 30)
	WithinDays int
}

// DepletionReport lists products projected to run out of stock.
type DepletionReport struct {
	TrailingDays int                       `json:"trailingDays"`
	WithinDays   int                       `json:"withinDays"`
	Entries      []analytics.DepletionEntry `json:"entries"`
	GeneratedAt  time.Time                 `json:"generatedAt"`
}

// --- Dormant products ---

// DormantReportFilter tunes the dormancy horizon.
type DormantReportFilter struct {
	// OlderThanDays marks products dormant when their last effective sale
	// is older than this (default 180)
	OlderThanDays int
}

// DormantReport lists products without recent sales.
type DormantReport struct {
	OlderThanDays int                        `json:"olderThanDays"`
	Entries       []analytics.DormantProduct `json:"entries"`
	GeneratedAt   time.Time                  `json:"generatedAt"`
}

// --- Turnover ---

// TurnoverReportFilter is the report period (both dates required).
type TurnoverReportFilter struct {
	DateFrom time.Time
	DateTo   time.Time
}

// TurnoverReportRow holds turnover metrics for one product.
type TurnoverReportRow struct {
	ProductID id.ID `json:"productId"`

	OpeningStock decimal.Decimal `json:"openingStock"`
	ClosingStock decimal.Decimal `json:"closingStock"`
	SoldQty      decimal.Decimal `json:"soldQty"`

	analytics.TurnoverResult
}

// TurnoverReport is the per-product turnover over a period.
type TurnoverReport struct {
	DateFrom    time.Time           `json:"dateFrom"`
	DateTo      time.Time           `json:"dateTo"`
	PeriodDays  int                 `json:"periodDays"`
	Rows        []TurnoverReportRow `json:"rows"`
	GeneratedAt time.Time           `json:"generatedAt"`
}
