// Package ledger provides the append-only stock movement ledger service.
package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/pkg/logger"
)

// ProductChecker verifies product references without importing the
// product package (avoids a domain-level cycle with catalogs).
type ProductChecker interface {
	Exists(ctx context.Context, productID id.ID) (bool, error)
}

// Service provides business operations for the movement ledger.
// Transactions are managed by the caller (posting engine, rebuild job).
type Service struct {
	repo     Repository
	products ProductChecker
}

// NewService creates a new ledger service.
func NewService(repo Repository, products ProductChecker) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// RecordMovements appends apply movements from a document posting.
// Each movement adjusts the product's running balance and is stamped
// with the balance it produced. Stock sufficiency is not checked here:
// that is the posting engine's concern, before it calls this.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) ([]entity.StockMovement, error) {
	if len(movements) == 0 {
		return nil, nil
	}

	for i := range movements {
		m := &movements[i]
		if !m.Quantity.IsPositive() {
			return nil, apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.TransactionID) {
			return nil, apperror.NewValidation(fmt.Sprintf("movement %d: transaction_id is required", i))
		}
		if m.Action != entity.MovementActionApply {
			return nil, apperror.NewValidation(fmt.Sprintf("movement %d: only apply movements can be recorded", i))
		}

		exists, err := s.products.Exists(ctx, m.ProductID)
		if err != nil {
			return nil, fmt.Errorf("check product %s: %w", m.ProductID, err)
		}
		if !exists {
			return nil, apperror.NewNotFound("product", m.ProductID.String())
		}

		balance, err := s.repo.AdjustStock(ctx, m.ProductID, m.SignedQuantity(), m.Date)
		if err != nil {
			return nil, fmt.Errorf("adjust stock for %s: %w", m.ProductID, err)
		}
		m.ResultingBalance = balance
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return nil, fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded stock movements",
		"count", len(movements),
		"transaction_id", movements[0].TransactionID,
	)

	return movements, nil
}

// ReverseMovementsFor cancels every live apply movement of a transaction
// by appending opposite revert movements and stamping the originals.
// Nothing is deleted: the ledger keeps the full audit trail.
func (s *Service) ReverseMovementsFor(ctx context.Context, transactionID id.ID) (int, error) {
	live, err := s.repo.GetLiveMovementsByTransaction(ctx, transactionID)
	if err != nil {
		return 0, fmt.Errorf("load live movements: %w", err)
	}
	if len(live) == 0 {
		return 0, nil
	}

	for i := range live {
		original := &live[i]
		revert := original.Revert(original.Date)

		balance, err := s.repo.AdjustStock(ctx, revert.ProductID, revert.SignedQuantity(), revert.Date)
		if err != nil {
			return 0, fmt.Errorf("adjust stock for %s: %w", revert.ProductID, err)
		}
		revert.ResultingBalance = balance

		if err := s.repo.CreateMovements(ctx, []entity.StockMovement{revert}); err != nil {
			return 0, fmt.Errorf("create revert movement: %w", err)
		}
		if err := s.repo.MarkReversed(ctx, original.ID, revert.ID); err != nil {
			return 0, fmt.Errorf("mark movement reversed: %w", err)
		}
	}

	logger.Info(ctx, "reversed stock movements",
		"transaction_id", transactionID,
		"count", len(live),
	)

	return len(live), nil
}

// Query returns movement history matching the filter.
func (s *Service) Query(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.List(ctx, filter)
}

// CurrentStock returns the product's running balance. Products without
// any ledger activity have zero stock.
func (s *Service) CurrentStock(ctx context.Context, productID id.ID) (decimal.Decimal, error) {
	stock, err := s.repo.GetStock(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get stock: %w", err)
	}
	return stock.Quantity, nil
}

// AllStock returns balances for every product with ledger activity.
func (s *Service) AllStock(ctx context.Context) ([]entity.ProductStock, error) {
	return s.repo.GetAllStock(ctx)
}

// CheckStock validates availability with pessimistic locking.
// Must be called within a transaction before recording sale movements so
// a single document's check+record is atomic.
func (s *Service) CheckStock(ctx context.Context, productID id.ID, required decimal.Decimal) error {
	stock, err := s.repo.GetStockForUpdate(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			stock = entity.ProductStock{ProductID: productID, Quantity: decimal.Zero}
		} else {
			return fmt.Errorf("get stock for %s: %w", productID, err)
		}
	}

	if stock.Quantity.LessThan(required) {
		return apperror.NewInsufficientStock(
			productID.String(),
			required.String(),
			stock.Quantity.String(),
		)
	}

	return nil
}
