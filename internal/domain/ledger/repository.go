// Package ledger provides the append-only stock movement ledger.
package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
)

// Repository defines storage operations for the movement ledger.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// GetLiveMovementsByTransaction returns apply movements of a transaction
	// that no revert has cancelled yet
	GetLiveMovementsByTransaction(ctx context.Context, transactionID id.ID) ([]entity.StockMovement, error)

	// MarkReversed stamps reversed_by_movement_id on an original apply row.
	// This is the only mutation the ledger ever performs on written rows.
	MarkReversed(ctx context.Context, originalID, revertID id.ID) error

	// List returns movements matching the filter
	List(ctx context.Context, filter MovementFilter) ([]entity.StockMovement, error)

	// Stock operations

	// GetStock returns the product's cached running balance
	GetStock(ctx context.Context, productID id.ID) (entity.ProductStock, error)

	// GetStockForUpdate returns the balance with a row lock, for
	// check-then-record inside a posting transaction
	GetStockForUpdate(ctx context.Context, productID id.ID) (entity.ProductStock, error)

	// AdjustStock applies a signed delta to the product balance and
	// returns the new quantity (upsert, missing row counts as zero)
	AdjustStock(ctx context.Context, productID id.ID, delta decimal.Decimal, movementAt time.Time) (decimal.Decimal, error)

	// GetAllStock returns balances for every product with ledger activity
	GetAllStock(ctx context.Context) ([]entity.ProductStock, error)
}

// MovementFilter for movement history queries.
type MovementFilter struct {
	ProductID     *id.ID
	TransactionID *id.ID
	Kind          *entity.MovementKind
	DateFrom      *time.Time
	DateTo        *time.Time

	// EffectiveOnly excludes revert rows and the apply rows they
	// cancelled. All costing reads set this; audit views do not.
	EffectiveOnly bool

	// Descending orders newest-first (default is chronological)
	Descending bool

	Limit  int
	Offset int
}
