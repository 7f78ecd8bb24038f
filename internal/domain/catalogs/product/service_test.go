package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklot/internal/core/apperror"
	"stocklot/internal/core/id"
	"stocklot/internal/core/numerator"
	"stocklot/internal/domain"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeRepo keeps products in memory, indexed by ID and SKU.
type fakeRepo struct {
	byID  map[id.ID]*Product
	bySKU map[string]*Product
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:  make(map[id.ID]*Product),
		bySKU: make(map[string]*Product),
	}
}

func (f *fakeRepo) store(p *Product) {
	f.byID[p.ID] = p
	if p.SKU != nil && *p.SKU != "" {
		f.bySKU[*p.SKU] = p
	}
}

func (f *fakeRepo) Create(_ context.Context, p *Product) error {
	f.store(p)
	return nil
}

func (f *fakeRepo) Update(_ context.Context, p *Product) error {
	f.store(p)
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, productID id.ID) (*Product, error) {
	p, ok := f.byID[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (f *fakeRepo) GetByCode(_ context.Context, code string) (*Product, error) {
	for _, p := range f.byID {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, apperror.NewNotFound("product", code)
}

func (f *fakeRepo) FindBySKU(_ context.Context, sku string) (*Product, error) {
	p, ok := f.bySKU[sku]
	if !ok {
		return nil, apperror.NewNotFound("product", sku)
	}
	return p, nil
}

func (f *fakeRepo) SetDeletionMark(_ context.Context, productID id.ID, marked bool) error {
	p, ok := f.byID[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.DeletionMark = marked
	return nil
}

func (f *fakeRepo) List(_ context.Context, filter domain.ListFilter) (domain.ListResult[*Product], error) {
	result := domain.ListResult[*Product]{Limit: filter.Limit, Offset: filter.Offset}
	for _, p := range f.byID {
		if p.DeletionMark && !filter.IncludeDeleted {
			continue
		}
		result.Items = append(result.Items, p)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

func (f *fakeRepo) Exists(_ context.Context, productID id.ID) (bool, error) {
	_, ok := f.byID[productID]
	return ok, nil
}

func (f *fakeRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	_, err := f.GetByCode(context.Background(), code)
	return err == nil, nil
}

var _ Repository = (*fakeRepo)(nil)

func newTestService(repo Repository) *Service {
	return NewService(repo, passthroughTx{}, &numerator.MockGenerator{})
}

func skuPtr(s string) *string { return &s }

func TestCreateGeneratesCodeWhenEmpty(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p := NewProduct("", "Oak Table")
	require.NoError(t, svc.Create(context.Background(), p))

	assert.Equal(t, "MOCK-2026-00001", p.Code)
}

func TestCreateKeepsProvidedCode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p := NewProduct("PR-001", "Oak Table")
	require.NoError(t, svc.Create(context.Background(), p))

	assert.Equal(t, "PR-001", p.Code)
}

func TestCreateRejectsDuplicateSKU(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	first := NewProduct("PR-001", "Oak Table")
	first.SKU = skuPtr("TBL-OAK-01")
	require.NoError(t, svc.Create(context.Background(), first))

	second := NewProduct("PR-002", "Oak Table v2")
	second.SKU = skuPtr("TBL-OAK-01")
	err := svc.Create(context.Background(), second)

	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestUpdateAllowsOwnSKU(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p := NewProduct("PR-001", "Oak Table")
	p.SKU = skuPtr("TBL-OAK-01")
	require.NoError(t, svc.Create(context.Background(), p))

	p.Name = "Oak Table (renamed)"
	assert.NoError(t, svc.Update(context.Background(), p))
}

func TestCreateRejectsMissingUnit(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p := NewProduct("PR-001", "Oak Table")
	p.Unit = ""

	err := svc.Create(context.Background(), p)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestFindBySKU(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	p := NewProduct("PR-001", "Oak Table")
	p.SKU = skuPtr("TBL-OAK-01")
	require.NoError(t, svc.Create(context.Background(), p))

	found, err := svc.FindBySKU(context.Background(), "TBL-OAK-01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = svc.FindBySKU(context.Background(), "NO-SUCH-SKU")
	assert.True(t, apperror.IsNotFound(err))
}
