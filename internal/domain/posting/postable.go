// Package posting provides the document posting engine: the single code
// path through which business documents record, reverse and re-record
// their ledger movements.
package posting

import (
	"context"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
)

// Postable is implemented by documents that produce ledger movements.
// entity.Document provides defaults for everything except
// GetDocumentType and GenerateMovements.
type Postable interface {
	GetID() id.ID
	GetNumber() string
	GetDocumentType() string
	GetPostedVersion() int
	IsPosted() bool

	// CanPost validates the document before posting
	CanPost(ctx context.Context) error

	MarkPosted()
	MarkUnposted()

	// GenerateMovements builds the movement set this document records
	GenerateMovements(ctx context.Context) (*MovementSet, error)
}

// MovementSet collects the movements a document generates.
type MovementSet struct {
	Stock []entity.StockMovement
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{}
}

// AddStock appends a stock movement.
func (s *MovementSet) AddStock(m entity.StockMovement) {
	s.Stock = append(s.Stock, m)
}

// IsEmpty reports whether the set holds no movements.
func (s *MovementSet) IsEmpty() bool {
	return len(s.Stock) == 0
}

// OutgoingByProduct sums the sale-side quantities per product.
// This is what the engine checks against current stock before recording.
func (s *MovementSet) OutgoingByProduct() map[id.ID]decimal.Decimal {
	out := make(map[id.ID]decimal.Decimal)
	for i := range s.Stock {
		m := &s.Stock[i]
		if m.Kind != entity.MovementKindSale {
			continue
		}
		out[m.ProductID] = out[m.ProductID].Add(m.Quantity)
	}
	return out
}
