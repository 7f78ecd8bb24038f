package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/id"
	"stocklot/internal/domain/documents/sale"
)

// --- Request DTOs ---

// SaleLineRequest is one line of a sale document.
type SaleLineRequest struct {
	ProductID string          `json:"productId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// CreateSaleRequest is the request body for creating a sale.
type CreateSaleRequest struct {
	CustomerID string            `json:"customerId" binding:"required"`
	Date       *time.Time        `json:"date"`
	Currency   string            `json:"currency" binding:"required"`
	Comment    string            `json:"comment"`
	Lines      []SaleLineRequest `json:"lines" binding:"required,min=1"`
}

// ToEntity converts DTO to domain entity.
// Invalid IDs surface later through entity validation (nil ID).
func (r *CreateSaleRequest) ToEntity() *sale.Sale {
	customerID, _ := id.Parse(r.CustomerID)

	doc := sale.NewSale(customerID, r.Currency)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Comment = r.Comment

	for _, line := range r.Lines {
		productID, _ := id.Parse(line.ProductID)
		doc.AddLine(productID, line.Quantity, line.UnitPrice)
	}

	return doc
}

// UpdateSaleRequest is the request body for updating an unposted sale.
type UpdateSaleRequest struct {
	CustomerID string            `json:"customerId" binding:"required"`
	Date       *time.Time        `json:"date"`
	Currency   string            `json:"currency" binding:"required"`
	Comment    string            `json:"comment"`
	Lines      []SaleLineRequest `json:"lines" binding:"required,min=1"`
	Version    int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity. Lines are replaced.
func (r *UpdateSaleRequest) ApplyTo(doc *sale.Sale) {
	customerID, _ := id.Parse(r.CustomerID)
	doc.CustomerID = customerID
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.Currency = r.Currency
	doc.Comment = r.Comment
	doc.Version = r.Version

	doc.Lines = doc.Lines[:0]
	for _, line := range r.Lines {
		productID, _ := id.Parse(line.ProductID)
		doc.AddLine(productID, line.Quantity, line.UnitPrice)
	}
}

// --- Response DTOs ---

// SaleLineResponse is one line of a sale document.
type SaleLineResponse struct {
	LineID    string          `json:"lineId"`
	LineNo    int             `json:"lineNo"`
	ProductID string          `json:"productId"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Amount    decimal.Decimal `json:"amount"`
}

// SaleResponse is the response body for a sale.
type SaleResponse struct {
	DocumentResponse
	CustomerID    string             `json:"customerId"`
	TotalQuantity decimal.Decimal    `json:"totalQuantity"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	Lines         []SaleLineResponse `json:"lines"`
}

// FromSale creates response DTO from domain entity.
func FromSale(doc *sale.Sale) *SaleResponse {
	resp := &SaleResponse{
		DocumentResponse: FromDocument(doc.Document),
		CustomerID:       doc.CustomerID.String(),
		TotalQuantity:    doc.TotalQuantity,
		TotalAmount:      doc.TotalAmount,
		Lines:            make([]SaleLineResponse, len(doc.Lines)),
	}

	for i, line := range doc.Lines {
		resp.Lines[i] = SaleLineResponse{
			LineID:    line.LineID.String(),
			LineNo:    line.LineNo,
			ProductID: line.ProductID.String(),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Amount:    line.Amount,
		}
	}

	return resp
}

// SaleListResponse wraps a page of sales.
type SaleListResponse struct {
	Items      []*SaleResponse `json:"items"`
	TotalCount int64           `json:"totalCount"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}
