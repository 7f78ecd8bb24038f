// Package entity provides core domain entities.
package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/id"
)

// MovementKind defines the business nature of a stock movement.
type MovementKind string

const (
	// MovementKindPurchase increases stock (goods received)
	MovementKindPurchase MovementKind = "purchase"
	// MovementKindSale decreases stock (goods shipped)
	MovementKindSale MovementKind = "sale"
)

// MovementAction distinguishes original postings from their reversals.
type MovementAction string

const (
	// MovementActionApply is an original posting of a transaction line
	MovementActionApply MovementAction = "apply"
	// MovementActionRevert cancels a previously applied movement.
	// Reverts are appended, never edited in; the ledger is append-only.
	MovementActionRevert MovementAction = "revert"
)

// StockMovement is a single row of the append-only stock ledger.
// Movements are immutable once written; the only later mutation is
// stamping ReversedByMovementID on a row its revert cancels.
type StockMovement struct {
	// ID is unique identifier for this movement line (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Date is the business date of the movement (for period-based queries)
	Date time.Time `db:"date" json:"date"`

	Kind   MovementKind   `db:"kind" json:"kind"`
	Action MovementAction `db:"action" json:"action"`

	ProductID id.ID `db:"product_id" json:"productId"`

	// Quantity is always positive; direction comes from Kind and Action
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`

	// UnitCost is the per-unit cost (purchases) or price (sales).
	// Nil when the source line carried no pricing information.
	UnitCost *decimal.Decimal `db:"unit_cost" json:"unitCost,omitempty"`

	// Amount is the total line amount. Nil when unpriced.
	Amount *decimal.Decimal `db:"amount" json:"amount,omitempty"`

	// Currency is the ISO code of UnitCost/Amount
	Currency string `db:"currency" json:"currency"`

	// TransactionID is the document that created this movement
	TransactionID id.ID `db:"transaction_id" json:"transactionId"`

	// TransactionType is the document type (e.g., "Sale", "Purchase")
	TransactionType string `db:"transaction_type" json:"transactionType"`

	// PostedVersion tracks which posting iteration created this movement
	PostedVersion int `db:"posted_version" json:"postedVersion"`

	// CounterpartyID is the customer (sales) or supplier (purchases), if known
	CounterpartyID *id.ID `db:"counterparty_id" json:"counterpartyId,omitempty"`

	// ResultingBalance is the product's running stock after this movement
	ResultingBalance decimal.Decimal `db:"resulting_balance" json:"resultingBalance"`

	// ReversedByMovementID is set on an apply row when a revert cancels it.
	// Effective-set queries exclude both revert rows and rows with this set.
	ReversedByMovementID *id.ID `db:"reversed_by_movement_id" json:"reversedByMovementId,omitempty"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a new apply movement with generated ID.
func NewStockMovement(
	kind MovementKind,
	date time.Time,
	productID id.ID,
	quantity decimal.Decimal,
) StockMovement {
	return StockMovement{
		ID:        id.New(),
		Date:      date,
		Kind:      kind,
		Action:    MovementActionApply,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
	}
}

// SignedQuantity returns the stock delta of this movement.
// Purchase apply = +qty, sale apply = -qty; reverts flip the sign.
func (m *StockMovement) SignedQuantity() decimal.Decimal {
	q := m.Quantity
	if m.Kind == MovementKindSale {
		q = q.Neg()
	}
	if m.Action == MovementActionRevert {
		q = q.Neg()
	}
	return q
}

// IsReversed reports whether a revert has cancelled this movement.
func (m *StockMovement) IsReversed() bool {
	return m.ReversedByMovementID != nil
}

// IsEffective reports whether this row belongs to the effective set:
// an apply movement not cancelled by a revert. All costing reads
// operate on the effective set only.
func (m *StockMovement) IsEffective() bool {
	return m.Action == MovementActionApply && !m.IsReversed()
}

// Revert builds the opposite movement cancelling m.
// The revert carries the same quantity and pricing so the ledger
// stays self-describing for audit.
func (m *StockMovement) Revert(at time.Time) StockMovement {
	return StockMovement{
		ID:              id.New(),
		Date:            at,
		Kind:            m.Kind,
		Action:          MovementActionRevert,
		ProductID:       m.ProductID,
		Quantity:        m.Quantity,
		UnitCost:        m.UnitCost,
		Amount:          m.Amount,
		Currency:        m.Currency,
		TransactionID:   m.TransactionID,
		TransactionType: m.TransactionType,
		PostedVersion:   m.PostedVersion,
		CounterpartyID:  m.CounterpartyID,
		CreatedAt:       time.Now().UTC(),
	}
}

// ProductStock is the current cached balance per product.
// Maintained by the ledger service on every recorded movement.
type ProductStock struct {
	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`

	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
