package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/id"
	"stocklot/internal/domain/documents/purchase"
)

// --- Request DTOs ---

// PurchaseLineRequest is one line of a purchase document.
// A nil unitPrice records the line without cost information.
type PurchaseLineRequest struct {
	ProductID string           `json:"productId" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

// CreatePurchaseRequest is the request body for creating a purchase.
type CreatePurchaseRequest struct {
	SupplierID            string                `json:"supplierId" binding:"required"`
	SupplierInvoiceNumber string                `json:"supplierInvoiceNumber"`
	Date                  *time.Time            `json:"date"`
	Currency              string                `json:"currency" binding:"required"`
	Comment               string                `json:"comment"`
	Lines                 []PurchaseLineRequest `json:"lines" binding:"required,min=1"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePurchaseRequest) ToEntity() *purchase.Purchase {
	supplierID, _ := id.Parse(r.SupplierID)

	doc := purchase.NewPurchase(supplierID, r.Currency)
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.SupplierInvoiceNumber = r.SupplierInvoiceNumber
	doc.Comment = r.Comment

	applyPurchaseLines(doc, r.Lines)

	return doc
}

// UpdatePurchaseRequest is the request body for updating an unposted purchase.
type UpdatePurchaseRequest struct {
	SupplierID            string                `json:"supplierId" binding:"required"`
	SupplierInvoiceNumber string                `json:"supplierInvoiceNumber"`
	Date                  *time.Time            `json:"date"`
	Currency              string                `json:"currency" binding:"required"`
	Comment               string                `json:"comment"`
	Lines                 []PurchaseLineRequest `json:"lines" binding:"required,min=1"`
	Version               int                   `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity. Lines are replaced.
func (r *UpdatePurchaseRequest) ApplyTo(doc *purchase.Purchase) {
	supplierID, _ := id.Parse(r.SupplierID)
	doc.SupplierID = supplierID
	if r.Date != nil {
		doc.Date = *r.Date
	}
	doc.SupplierInvoiceNumber = r.SupplierInvoiceNumber
	doc.Currency = r.Currency
	doc.Comment = r.Comment
	doc.Version = r.Version

	doc.Lines = doc.Lines[:0]
	applyPurchaseLines(doc, r.Lines)
}

func applyPurchaseLines(doc *purchase.Purchase, lines []PurchaseLineRequest) {
	for _, line := range lines {
		productID, _ := id.Parse(line.ProductID)
		if line.UnitPrice != nil {
			doc.AddLine(productID, line.Quantity, *line.UnitPrice)
		} else {
			doc.AddUnpricedLine(productID, line.Quantity)
		}
	}
}

// --- Response DTOs ---

// PurchaseLineResponse is one line of a purchase document.
type PurchaseLineResponse struct {
	LineID    string           `json:"lineId"`
	LineNo    int              `json:"lineNo"`
	ProductID string           `json:"productId"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
}

// PurchaseResponse is the response body for a purchase.
type PurchaseResponse struct {
	DocumentResponse
	SupplierID            string                 `json:"supplierId"`
	SupplierInvoiceNumber string                 `json:"supplierInvoiceNumber,omitempty"`
	TotalQuantity         decimal.Decimal        `json:"totalQuantity"`
	TotalAmount           decimal.Decimal        `json:"totalAmount"`
	Lines                 []PurchaseLineResponse `json:"lines"`
}

// FromPurchase creates response DTO from domain entity.
func FromPurchase(doc *purchase.Purchase) *PurchaseResponse {
	resp := &PurchaseResponse{
		DocumentResponse:      FromDocument(doc.Document),
		SupplierID:            doc.SupplierID.String(),
		SupplierInvoiceNumber: doc.SupplierInvoiceNumber,
		TotalQuantity:         doc.TotalQuantity,
		TotalAmount:           doc.TotalAmount,
		Lines:                 make([]PurchaseLineResponse, len(doc.Lines)),
	}

	for i, line := range doc.Lines {
		resp.Lines[i] = PurchaseLineResponse{
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

// PurchaseListResponse wraps a page of purchases.
type PurchaseListResponse struct {
	Items      []*PurchaseResponse `json:"items"`
	TotalCount int64               `json:"totalCount"`
	Limit      int                 `json:"limit"`
	Offset     int                 `json:"offset"`
}
