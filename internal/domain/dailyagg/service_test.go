package dailyagg

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
	"stocklot/internal/domain/costing"
	"stocklot/internal/domain/ledger"
)

// fakeMovements serves a fixed movement slice, honoring DateTo and
// EffectiveOnly the way the real ledger does.
type fakeMovements struct {
	movements []entity.StockMovement
}

func (f *fakeMovements) Query(_ context.Context, filter ledger.MovementFilter) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range f.movements {
		if filter.EffectiveOnly && !m.IsEffective() {
			continue
		}
		if filter.DateTo != nil && m.Date.After(*filter.DateTo) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// fakeAggRepo stores rows keyed the way the real upsert does.
type fakeAggRepo struct {
	rows         map[string]costing.DailyRow
	customerRows map[string]costing.CustomerDailyRow
	upsertCalls  int
}

func newFakeAggRepo() *fakeAggRepo {
	return &fakeAggRepo{
		rows:         make(map[string]costing.DailyRow),
		customerRows: make(map[string]costing.CustomerDailyRow),
	}
}

func rowKey(r costing.DailyRow) string {
	return r.Day.Format("2006-01-02") + "|" + r.ProductID.String() + "|" + r.Currency
}

func customerKey(r costing.CustomerDailyRow) string {
	return r.Day.Format("2006-01-02") + "|" + r.CustomerID.String()
}

func (f *fakeAggRepo) UpsertRows(_ context.Context, rows []costing.DailyRow) error {
	f.upsertCalls++
	for _, r := range rows {
		f.rows[rowKey(r)] = r
	}
	return nil
}

func (f *fakeAggRepo) UpsertCustomerRows(_ context.Context, rows []costing.CustomerDailyRow) error {
	for _, r := range rows {
		f.customerRows[customerKey(r)] = r
	}
	return nil
}

// deleted mirrors the SQL repo: raw timestamp comparison, no day
// truncation of the bounds.
func deleted(day time.Time, from, to *time.Time) bool {
	if from != nil && day.Before(*from) {
		return false
	}
	if to != nil && day.After(*to) {
		return false
	}
	return true
}

func (f *fakeAggRepo) DeleteRange(_ context.Context, from, to *time.Time) error {
	for k, r := range f.rows {
		if deleted(r.Day, from, to) {
			delete(f.rows, k)
		}
	}
	for k, r := range f.customerRows {
		if deleted(r.Day, from, to) {
			delete(f.customerRows, k)
		}
	}
	return nil
}

func (f *fakeAggRepo) Read(_ context.Context, _ ReadFilter) ([]costing.DailyRow, error) {
	out := make([]costing.DailyRow, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAggRepo) ReadByCustomer(_ context.Context, _ CustomerReadFilter) ([]costing.CustomerDailyRow, error) {
	out := make([]costing.CustomerDailyRow, 0, len(f.customerRows))
	for _, r := range f.customerRows {
		out = append(out, r)
	}
	return out, nil
}

// passthroughTx runs the function without a database.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func day(d int) time.Time {
	return time.Date(2026, time.May, d, 0, 0, 0, 0, time.UTC)
}

func mv(kind entity.MovementKind, date time.Time, productID id.ID, qty, price string) entity.StockMovement {
	m := entity.NewStockMovement(kind, date, productID, dec(qty))
	m.TransactionID = id.New()
	m.Currency = "USD"
	cost := dec(price)
	m.UnitCost = &cost
	amount := cost.Mul(m.Quantity)
	m.Amount = &amount
	return m
}

func TestRebuild_MaterializesRows(t *testing.T) {
	productID := id.New()
	source := &fakeMovements{movements: []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, "10", "5"),
		mv(entity.MovementKindSale, day(2), productID, "4", "9"),
	}}
	repo := newFakeAggRepo()
	svc := NewService(source, repo, passthroughTx{})

	written, err := svc.Rebuild(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	rows, err := svc.Read(context.Background(), ReadFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestRebuild_Idempotent(t *testing.T) {
	productID := id.New()
	source := &fakeMovements{movements: []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, "10", "5"),
		mv(entity.MovementKindSale, day(2), productID, "4", "9"),
	}}
	repo := newFakeAggRepo()
	svc := NewService(source, repo, passthroughTx{})
	ctx := context.Background()

	first, err := svc.Rebuild(ctx, nil, nil)
	require.NoError(t, err)
	second, err := svc.Rebuild(ctx, nil, nil)
	require.NoError(t, err)

	// Same row count, same stored content, no duplicates
	assert.Equal(t, first, second)
	rows, _ := svc.Read(ctx, ReadFilter{})
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, repo.upsertCalls)
}

func TestRebuild_RangeStillSeesPriorLayers(t *testing.T) {
	productID := id.New()
	source := &fakeMovements{movements: []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, "10", "5"),
		mv(entity.MovementKindSale, day(10), productID, "4", "9"),
	}}
	repo := newFakeAggRepo()
	svc := NewService(source, repo, passthroughTx{})
	ctx := context.Background()

	from, to := day(9), day(11)
	written, err := svc.Rebuild(ctx, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	// Only the sale day was materialized, but its COGS still comes from
	// the day-1 lot outside the range
	rows, _ := svc.Read(ctx, ReadFilter{})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Day.Equal(day(10)))
	assert.True(t, rows[0].COGS.Equal(dec("20")), "cogs = %s", rows[0].COGS)
}

func TestRebuild_DropsStaleRowsForRevertedDays(t *testing.T) {
	productID := id.New()
	saleDay := day(2)
	sale := mv(entity.MovementKindSale, saleDay, productID, "4", "9")

	source := &fakeMovements{movements: []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, "10", "5"),
		sale,
	}}
	repo := newFakeAggRepo()
	svc := NewService(source, repo, passthroughTx{})
	ctx := context.Background()

	_, err := svc.Rebuild(ctx, nil, nil)
	require.NoError(t, err)
	rows, _ := svc.Read(ctx, ReadFilter{})
	require.Len(t, rows, 2)

	// The sale gets reverted; its day no longer has effective movements
	revertID := id.New()
	source.movements[1].ReversedByMovementID = &revertID

	_, err = svc.Rebuild(ctx, nil, nil)
	require.NoError(t, err)

	rows, _ = svc.Read(ctx, ReadFilter{})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Day.Equal(day(1)))
}

func TestRebuild_CoversFullBoundaryDay(t *testing.T) {
	productID := id.New()
	source := &fakeMovements{movements: []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, "10", "5"),
		mv(entity.MovementKindSale, day(5).Add(14*time.Hour), productID, "4", "9"),
	}}
	repo := newFakeAggRepo()
	svc := NewService(source, repo, passthroughTx{})
	ctx := context.Background()

	// Date-only bound: midnight of the day the sale happens on. The
	// whole boundary day must still be materialized.
	to := day(5)
	written, err := svc.Rebuild(ctx, nil, &to)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	rows, _ := svc.Read(ctx, ReadFilter{})
	var saleRow *costing.DailyRow
	for i := range rows {
		if rows[i].Day.Equal(day(5)) {
			saleRow = &rows[i]
		}
	}
	require.NotNil(t, saleRow, "boundary-day bucket missing")
	assert.True(t, saleRow.SoldQty.Equal(dec("4")), "sold = %s", saleRow.SoldQty)
	assert.True(t, saleRow.COGS.Equal(dec("20")), "cogs = %s", saleRow.COGS)
}

func TestRebuild_TruncatesBoundsToDays(t *testing.T) {
	productID := id.New()
	sale := mv(entity.MovementKindSale, day(2), productID, "4", "9")
	source := &fakeMovements{movements: []entity.StockMovement{
		mv(entity.MovementKindPurchase, day(1), productID, "10", "5"),
		sale,
	}}
	repo := newFakeAggRepo()
	svc := NewService(source, repo, passthroughTx{})
	ctx := context.Background()

	_, err := svc.Rebuild(ctx, nil, nil)
	require.NoError(t, err)

	// The sale gets reverted; a rebuild bounded with intra-day times on
	// its day must still clear the now-stale midnight-keyed row
	revertID := id.New()
	source.movements[1].ReversedByMovementID = &revertID

	from := day(2).Add(10 * time.Hour)
	to := day(2).Add(10 * time.Hour)
	_, err = svc.Rebuild(ctx, &from, &to)
	require.NoError(t, err)

	rows, _ := svc.Read(ctx, ReadFilter{})
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Day.Equal(day(1)))
}
