// Package sale provides the Sale document.
// A posted sale ships goods to a customer and records outgoing
// ledger movements carrying the sale price.
package sale

import (
	"context"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/internal/core/types"
	"stocklot/internal/domain/posting"
)

// Sale represents a sale document.
type Sale struct {
	entity.Document

	// Customer reference
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Totals (calculated from lines)
	TotalQuantity decimal.Decimal `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`

	// Table part: sold goods
	Lines []SaleLine `db:"-" json:"lines"`
}

// SaleLine represents a line in the sale.
type SaleLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
}

// NewSale creates a new sale document.
func NewSale(customerID id.ID, currency string) *Sale {
	return &Sale{
		Document:   entity.NewDocument(currency),
		CustomerID: customerID,
		Lines:      make([]SaleLine, 0),
	}
}

// AddLine adds a line to the sale and recalculates totals.
func (s *Sale) AddLine(productID id.ID, quantity, unitPrice decimal.Decimal) {
	line := SaleLine{
		LineID:    id.New(),
		LineNo:    len(s.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    quantity.Mul(unitPrice),
	}

	s.Lines = append(s.Lines, line)
	s.recalculateTotals()
}

func (s *Sale) recalculateTotals() {
	s.TotalQuantity = decimal.Zero
	s.TotalAmount = decimal.Zero

	for _, line := range s.Lines {
		s.TotalQuantity = s.TotalQuantity.Add(line.Quantity)
		s.TotalAmount = s.TotalAmount.Add(line.Amount)
	}
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range s.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable interface implementation ---
// GetID, GetNumber, GetPostedVersion, IsPosted, CanPost, MarkPosted,
// MarkUnposted are inherited from entity.Document

func (s *Sale) GetDocumentType() string { return "Sale" }

// GenerateMovements creates ledger movements for this document.
// Sale creates outgoing movements carrying the sale price.
func (s *Sale) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := s.PostedVersion + 1
	customerID := s.CustomerID

	for _, line := range s.Lines {
		m := entity.NewStockMovement(
			entity.MovementKindSale,
			s.Date,
			line.ProductID,
			line.Quantity,
		)
		m.UnitCost = types.Ptr(line.UnitPrice)
		m.Amount = types.Ptr(line.Amount)
		m.Currency = s.Currency
		m.TransactionID = s.ID
		m.TransactionType = s.GetDocumentType()
		m.PostedVersion = newVersion
		m.CounterpartyID = &customerID

		movements.AddStock(m)
	}

	return movements, nil
}

var _ posting.Postable = (*Sale)(nil)
