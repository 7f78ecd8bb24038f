package posting_test

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
	"stocklot/internal/domain/documents/purchase"
	"stocklot/internal/domain/documents/sale"
	"stocklot/internal/domain/ledger"
	"stocklot/internal/domain/posting"
)

// memLedgerRepo is an in-memory ledger.Repository for engine tests.
type memLedgerRepo struct {
	movements []entity.StockMovement
	stock     map[id.ID]decimal.Decimal
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{stock: make(map[id.ID]decimal.Decimal)}
}

func (r *memLedgerRepo) CreateMovements(_ context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memLedgerRepo) GetLiveMovementsByTransaction(_ context.Context, transactionID id.ID) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.TransactionID == transactionID && m.IsEffective() {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memLedgerRepo) MarkReversed(_ context.Context, originalID, revertID id.ID) error {
	for i := range r.movements {
		if r.movements[i].ID == originalID {
			rid := revertID
			r.movements[i].ReversedByMovementID = &rid
			return nil
		}
	}
	return apperror.NewNotFound("stock_movement", originalID.String())
}

func (r *memLedgerRepo) List(_ context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if filter.EffectiveOnly && !m.IsEffective() {
			continue
		}
		if filter.TransactionID != nil && m.TransactionID != *filter.TransactionID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memLedgerRepo) GetStock(_ context.Context, productID id.ID) (entity.ProductStock, error) {
	qty, ok := r.stock[productID]
	if !ok {
		return entity.ProductStock{}, apperror.NewNotFound("product_stock", productID.String())
	}
	return entity.ProductStock{ProductID: productID, Quantity: qty}, nil
}

func (r *memLedgerRepo) GetStockForUpdate(ctx context.Context, productID id.ID) (entity.ProductStock, error) {
	return r.GetStock(ctx, productID)
}

func (r *memLedgerRepo) AdjustStock(_ context.Context, productID id.ID, delta decimal.Decimal, _ time.Time) (decimal.Decimal, error) {
	next := r.stock[productID].Add(delta)
	r.stock[productID] = next
	return next, nil
}

func (r *memLedgerRepo) GetAllStock(_ context.Context) ([]entity.ProductStock, error) {
	out := make([]entity.ProductStock, 0, len(r.stock))
	for productID, qty := range r.stock {
		out = append(out, entity.ProductStock{ProductID: productID, Quantity: qty})
	}
	return out, nil
}

type allProducts struct{}

func (allProducts) Exists(context.Context, id.ID) (bool, error) { return true, nil }

// passthroughTx runs the function directly; rollback behavior is the
// database's concern, not under test here.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type recordingAuditor struct {
	actions []posting.AuditAction
}

func (a *recordingAuditor) Record(_ context.Context, action posting.AuditAction, _ string, _ id.ID, _ any) error {
	a.actions = append(a.actions, action)
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	repo    *memLedgerRepo
	ledger  *ledger.Service
	auditor *recordingAuditor
	engine  *posting.Engine
}

func newFixture() *fixture {
	repo := newMemLedgerRepo()
	ledgerSvc := ledger.NewService(repo, allProducts{})
	auditor := &recordingAuditor{}
	return &fixture{
		repo:    repo,
		ledger:  ledgerSvc,
		auditor: auditor,
		engine:  posting.NewEngine(ledgerSvc, passthroughTx{}, auditor),
	}
}

func noopUpdate(context.Context) error { return nil }

func TestEngine_PostPurchaseThenSale(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	productID := id.New()

	po := purchase.NewPurchase(id.New(), "USD")
	po.Number = "PO-1"
	po.AddLine(productID, dec("10"), dec("5"))

	require.NoError(t, f.engine.Post(ctx, po, noopUpdate))
	assert.True(t, po.Posted)
	assert.Equal(t, 1, po.PostedVersion)

	si := sale.NewSale(id.New(), "USD")
	si.Number = "SI-1"
	si.AddLine(productID, dec("4"), dec("9"))

	require.NoError(t, f.engine.Post(ctx, si, noopUpdate))

	stock, err := f.ledger.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.True(t, stock.Equal(dec("6")))

	assert.Equal(t, []posting.AuditAction{posting.AuditActionPost, posting.AuditActionPost}, f.auditor.actions)
}

func TestEngine_PostRejectsAlreadyPosted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	po := purchase.NewPurchase(id.New(), "USD")
	po.Number = "PO-1"
	po.AddLine(id.New(), dec("1"), dec("1"))

	require.NoError(t, f.engine.Post(ctx, po, noopUpdate))

	err := f.engine.Post(ctx, po, noopUpdate)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDocumentPosted, appErr.Code)
}

func TestEngine_PostSaleInsufficientStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	productID := id.New()

	po := purchase.NewPurchase(id.New(), "USD")
	po.Number = "PO-1"
	po.AddLine(productID, dec("3"), dec("5"))
	require.NoError(t, f.engine.Post(ctx, po, noopUpdate))

	si := sale.NewSale(id.New(), "USD")
	si.Number = "SI-1"
	si.AddLine(productID, dec("4"), dec("9"))

	err := f.engine.Post(ctx, si, noopUpdate)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.False(t, si.Posted)
}

func TestEngine_UnpostRestoresStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	productID := id.New()

	po := purchase.NewPurchase(id.New(), "USD")
	po.Number = "PO-1"
	po.AddLine(productID, dec("10"), dec("5"))
	require.NoError(t, f.engine.Post(ctx, po, noopUpdate))

	si := sale.NewSale(id.New(), "USD")
	si.Number = "SI-1"
	si.AddLine(productID, dec("4"), dec("9"))
	require.NoError(t, f.engine.Post(ctx, si, noopUpdate))

	require.NoError(t, f.engine.Unpost(ctx, si, noopUpdate))
	assert.False(t, si.Posted)

	stock, err := f.ledger.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.True(t, stock.Equal(dec("10")))

	// Ledger keeps the full trail: apply + revert rows for the sale
	txID := si.ID
	all, err := f.ledger.Query(ctx, ledger.MovementFilter{TransactionID: &txID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	effective, err := f.ledger.Query(ctx, ledger.MovementFilter{TransactionID: &txID, EffectiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, effective)
}

func TestEngine_UnpostRequiresPosted(t *testing.T) {
	f := newFixture()

	si := sale.NewSale(id.New(), "USD")
	si.Number = "SI-1"
	si.AddLine(id.New(), dec("1"), dec("1"))

	err := f.engine.Unpost(context.Background(), si, noopUpdate)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDocumentNotPosted, appErr.Code)
}

func TestEngine_RepostReplacesMovements(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	productID := id.New()

	po := purchase.NewPurchase(id.New(), "USD")
	po.Number = "PO-1"
	po.AddLine(productID, dec("10"), dec("5"))
	require.NoError(t, f.engine.Post(ctx, po, noopUpdate))

	si := sale.NewSale(id.New(), "USD")
	si.Number = "SI-1"
	si.AddLine(productID, dec("4"), dec("9"))
	require.NoError(t, f.engine.Post(ctx, si, noopUpdate))

	// Edit the quantity and repost
	si.Lines[0].Quantity = dec("7")
	si.Lines[0].Amount = si.Lines[0].Quantity.Mul(si.Lines[0].UnitPrice)

	require.NoError(t, f.engine.Repost(ctx, si, noopUpdate))
	assert.Equal(t, 2, si.PostedVersion)

	stock, err := f.ledger.CurrentStock(ctx, productID)
	require.NoError(t, err)
	assert.True(t, stock.Equal(dec("3")))

	// Exactly one effective movement remains, at the new quantity
	txID := si.ID
	effective, err := f.ledger.Query(ctx, ledger.MovementFilter{TransactionID: &txID, EffectiveOnly: true})
	require.NoError(t, err)
	require.Len(t, effective, 1)
	assert.True(t, effective[0].Quantity.Equal(dec("7")))
	assert.Equal(t, 2, effective[0].PostedVersion)

	assert.Equal(t, posting.AuditActionRepost, f.auditor.actions[len(f.auditor.actions)-1])
}

// Repost with a quantity the restored balance cannot cover must fail:
// the stock check runs against the balance without the old movements.
func TestEngine_RepostChecksRestoredBalance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	productID := id.New()

	po := purchase.NewPurchase(id.New(), "USD")
	po.Number = "PO-1"
	po.AddLine(productID, dec("10"), dec("5"))
	require.NoError(t, f.engine.Post(ctx, po, noopUpdate))

	si := sale.NewSale(id.New(), "USD")
	si.Number = "SI-1"
	si.AddLine(productID, dec("8"), dec("9"))
	require.NoError(t, f.engine.Post(ctx, si, noopUpdate))

	// 8 sold out of 10; raising the sale to 10 is fine because the old
	// 8 come back first
	si.Lines[0].Quantity = dec("10")
	si.Lines[0].Amount = si.Lines[0].Quantity.Mul(si.Lines[0].UnitPrice)
	require.NoError(t, f.engine.Repost(ctx, si, noopUpdate))

	// 11 is beyond everything ever purchased
	si.Lines[0].Quantity = dec("11")
	si.Lines[0].Amount = si.Lines[0].Quantity.Mul(si.Lines[0].UnitPrice)
	err := f.engine.Repost(ctx, si, noopUpdate)
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}
