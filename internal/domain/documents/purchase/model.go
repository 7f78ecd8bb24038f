// Package purchase provides the Purchase document.
// A posted purchase receives goods from a supplier and records incoming
// ledger movements carrying the acquisition cost. Lines without a price
// are allowed: the goods arrive, the cost is settled later.
package purchase

import (
	"context"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/internal/core/types"
	"stocklot/internal/domain/posting"
)

// Purchase represents a purchase document.
type Purchase struct {
	entity.Document

	// Supplier reference
	SupplierID id.ID `db:"supplier_id" json:"supplierId"`

	// Supplier's own document reference
	SupplierInvoiceNumber string `db:"supplier_invoice_number" json:"supplierInvoiceNumber,omitempty"`

	// Totals (calculated from lines; unpriced lines contribute quantity only)
	TotalQuantity decimal.Decimal `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`

	// Table part: received goods
	Lines []PurchaseLine `db:"-" json:"lines"`
}

// PurchaseLine represents a line in the purchase.
// UnitPrice and Amount are nil for unpriced receipts.
type PurchaseLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID            `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal  `db:"quantity" json:"quantity"`
	UnitPrice *decimal.Decimal `db:"unit_price" json:"unitPrice,omitempty"`
	Amount    *decimal.Decimal `db:"amount" json:"amount,omitempty"`
}

// IsPriced reports whether the line carries cost information.
func (l *PurchaseLine) IsPriced() bool {
	return l.UnitPrice != nil || l.Amount != nil
}

// NewPurchase creates a new purchase document.
func NewPurchase(supplierID id.ID, currency string) *Purchase {
	return &Purchase{
		Document:   entity.NewDocument(currency),
		SupplierID: supplierID,
		Lines:      make([]PurchaseLine, 0),
	}
}

// AddLine adds a priced line and recalculates totals.
func (p *Purchase) AddLine(productID id.ID, quantity, unitPrice decimal.Decimal) {
	amount := quantity.Mul(unitPrice)
	p.appendLine(PurchaseLine{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: types.Ptr(unitPrice),
		Amount:    types.Ptr(amount),
	})
}

// AddUnpricedLine adds a line without cost information.
func (p *Purchase) AddUnpricedLine(productID id.ID, quantity decimal.Decimal) {
	p.appendLine(PurchaseLine{
		ProductID: productID,
		Quantity:  quantity,
	})
}

func (p *Purchase) appendLine(line PurchaseLine) {
	line.LineID = id.New()
	line.LineNo = len(p.Lines) + 1
	p.Lines = append(p.Lines, line)
	p.recalculateTotals()
}

func (p *Purchase) recalculateTotals() {
	p.TotalQuantity = decimal.Zero
	p.TotalAmount = decimal.Zero

	for _, line := range p.Lines {
		p.TotalQuantity = p.TotalQuantity.Add(line.Quantity)
		if line.Amount != nil {
			p.TotalAmount = p.TotalAmount.Add(*line.Amount)
		}
	}
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range p.Lines {
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
		if line.UnitPrice != nil && line.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable interface implementation ---

func (p *Purchase) GetDocumentType() string { return "Purchase" }

// GenerateMovements creates ledger movements for this document.
// Purchase creates incoming movements; unpriced lines produce
// movements without cost fields.
func (p *Purchase) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := p.PostedVersion + 1
	supplierID := p.SupplierID

	for _, line := range p.Lines {
		m := entity.NewStockMovement(
			entity.MovementKindPurchase,
			p.Date,
			line.ProductID,
			line.Quantity,
		)
		m.UnitCost = line.UnitPrice
		m.Amount = line.Amount
		m.Currency = p.Currency
		m.TransactionID = p.ID
		m.TransactionType = p.GetDocumentType()
		m.PostedVersion = newVersion
		m.CounterpartyID = &supplierID

		movements.AddStock(m)
	}

	return movements, nil
}

var _ posting.Postable = (*Purchase)(nil)
