package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/internal/domain/costing"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	movements []entity.StockMovement
	stock     map[id.ID]decimal.Decimal
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{stock: make(map[id.ID]decimal.Decimal)}
}

func (r *fakeRepo) CreateMovements(_ context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeRepo) GetLiveMovementsByTransaction(_ context.Context, transactionID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.TransactionID == transactionID && m.Action == entity.MovementActionApply && m.ReversedByMovementID == nil {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkReversed(_ context.Context, originalID, revertID id.ID) error {
	for i := range r.movements {
		if r.movements[i].ID == originalID {
			rid := revertID
			r.movements[i].ReversedByMovementID = &rid
			return nil
		}
	}
	return apperror.NewNotFound("stock_movement", originalID.String())
}

func (r *fakeRepo) List(_ context.Context, filter MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if filter.EffectiveOnly && !m.IsEffective() {
			continue
		}
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != nil && m.Kind != *filter.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeRepo) GetStock(_ context.Context, productID id.ID) (entity.ProductStock, error) {
	qty, ok := r.stock[productID]
	if !ok {
		return entity.ProductStock{}, apperror.NewNotFound("product_stock", productID.String())
	}
	return entity.ProductStock{ProductID: productID, Quantity: qty}, nil
}

func (r *fakeRepo) GetStockForUpdate(ctx context.Context, productID id.ID) (entity.ProductStock, error) {
	return r.GetStock(ctx, productID)
}

func (r *fakeRepo) AdjustStock(_ context.Context, productID id.ID, delta decimal.Decimal, _ time.Time) (decimal.Decimal, error) {
	next := r.stock[productID].Add(delta)
	r.stock[productID] = next
	return next, nil
}

func (r *fakeRepo) GetAllStock(_ context.Context) ([]entity.ProductStock, error) {
	out := make([]entity.ProductStock, 0, len(r.stock))
	for productID, qty := range r.stock {
		out = append(out, entity.ProductStock{ProductID: productID, Quantity: qty})
	}
	return out, nil
}

type allProducts struct{}

func (allProducts) Exists(context.Context, id.ID) (bool, error) { return true, nil }

type noProducts struct{}

func (noProducts) Exists(context.Context, id.ID) (bool, error) { return false, nil }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(d int) time.Time {
	return time.Date(2026, time.April, d, 0, 0, 0, 0, time.UTC)
}

func mv(kind entity.MovementKind, date time.Time, productID, txID id.ID, qty, unitCost string) entity.StockMovement {
	m := entity.NewStockMovement(kind, date, productID, dec(qty))
	m.TransactionID = txID
	m.Currency = "USD"
	if unitCost != "" {
		cost := dec(unitCost)
		m.UnitCost = &cost
		amount := cost.Mul(m.Quantity)
		m.Amount = &amount
	}
	return m
}

func TestRecordMovements_StampsResultingBalance(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, allProducts{})
	ctx := context.Background()

	productID, txID := id.New(), id.New()

	recorded, err := svc.RecordMovements(ctx, []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, txID, "10", "5"),
		mv(entity.MovementKindSale, day(2), productID, txID, "4", "9"),
	})
	require.NoError(t, err)
	require.Len(t, recorded, 2)

	assert.True(t, recorded[0].ResultingBalance.Equal(dec("10")))
	assert.True(t, recorded[1].ResultingBalance.Equal(dec("6")))

	stock, err := svc.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.True(t, stock.Equal(dec("6")))
}

func TestRecordMovements_UnknownProduct(t *testing.T) {
	svc := NewService(newFakeRepo(), noProducts{})

	_, err := svc.RecordMovements(context.Background(), []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), id.New(), id.New(), "10", "5"),
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordMovements_RejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(newFakeRepo(), allProducts{})

	m := mv(entity.MovementKindPurchase, day(1), id.New(), id.New(), "1", "5")
	m.Quantity = decimal.Zero

	_, err := svc.RecordMovements(context.Background(), []entity.StockMovement{m})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestReverseMovementsFor_RestoresStockAndLayers(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, allProducts{})
	ctx := context.Background()

	productID := id.New()
	purchaseTx, saleTx := id.New(), id.New()

	_, err := svc.RecordMovements(ctx, []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, purchaseTx, "10", "5"),
		mv(entity.MovementKindPurchase, day(2), productID, purchaseTx, "10", "7"),
	})
	require.NoError(t, err)

	_, err = svc.RecordMovements(ctx, []entity.StockMovement{
		mv(entity.MovementKindSale, day(3), productID, saleTx, "15", "10"),
	})
	require.NoError(t, err)

	stock, _ := svc.CurrentStock(ctx, productID)
	require.True(t, stock.Equal(dec("5")))

	reversed, err := svc.ReverseMovementsFor(ctx, saleTx)
	require.NoError(t, err)
	assert.Equal(t, 1, reversed)

	// Stock back to pre-sale level
	stock, _ = svc.CurrentStock(ctx, productID)
	assert.True(t, stock.Equal(dec("20")))

	// The effective set looks exactly like before the sale: a FIFO pass
	// over it yields the two untouched layers and zero COGS
	effective, err := svc.Query(ctx, MovementFilter{EffectiveOnly: true})
	require.NoError(t, err)
	require.Len(t, effective, 2)

	result := costing.ComputeAggregates(effective)
	agg := result.Products[productID]
	assert.True(t, agg.COGS.IsZero())
	require.Len(t, agg.RemainingLayers, 2)
	assert.True(t, agg.RemainingLayers[0].Remaining.Equal(dec("10")))
	assert.True(t, agg.RemainingLayers[0].UnitCost.Equal(dec("5")))
	assert.True(t, agg.RemainingLayers[1].Remaining.Equal(dec("10")))
	assert.True(t, agg.RemainingLayers[1].UnitCost.Equal(dec("7")))

	// Reverts remain visible on the unrestricted audit view
	all, err := svc.Query(ctx, MovementFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestReverseMovementsFor_IdempotentOnSecondCall(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, allProducts{})
	ctx := context.Background()

	productID, txID := id.New(), id.New()
	_, err := svc.RecordMovements(ctx, []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, txID, "10", "5"),
	})
	require.NoError(t, err)

	first, err := svc.ReverseMovementsFor(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	// Nothing live remains, so the second call is a no-op
	second, err := svc.ReverseMovementsFor(ctx, txID)
	require.NoError(t, err)
	assert.Equal(t, 0, second)

	stock, _ := svc.CurrentStock(ctx, productID)
	assert.True(t, stock.IsZero())
}

func TestCheckStock(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, allProducts{})
	ctx := context.Background()

	productID, txID := id.New(), id.New()
	_, err := svc.RecordMovements(ctx, []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, txID, "5", "2"),
	})
	require.NoError(t, err)

	assert.NoError(t, svc.CheckStock(ctx, productID, dec("5")))

	err = svc.CheckStock(ctx, productID, dec("6"))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Unknown product counts as zero stock
	err = svc.CheckStock(ctx, id.New(), dec("1"))
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}
