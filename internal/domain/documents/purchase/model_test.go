package purchase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklot/internal/core/entity"
	"stocklot/internal/core/id"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPurchase_TotalsSkipUnpricedLines(t *testing.T) {
	doc := NewPurchase(id.New(), "USD")
	doc.AddLine(id.New(), dec("10"), dec("5"))
	doc.AddUnpricedLine(id.New(), dec("3"))

	require.Len(t, doc.Lines, 2)
	assert.True(t, doc.Lines[0].IsPriced())
	assert.False(t, doc.Lines[1].IsPriced())
	assert.True(t, doc.TotalQuantity.Equal(dec("13")))
	assert.True(t, doc.TotalAmount.Equal(dec("50")))
}

func TestPurchase_Validate(t *testing.T) {
	ctx := context.Background()

	doc := NewPurchase(id.New(), "USD")
	require.Error(t, doc.Validate(ctx), "no lines")

	doc.AddUnpricedLine(id.New(), dec("1"))
	require.NoError(t, doc.Validate(ctx), "unpriced lines are valid")

	doc.SupplierID = id.Nil()
	require.Error(t, doc.Validate(ctx), "supplier required")
}

func TestPurchase_GenerateMovements(t *testing.T) {
	supplierID := id.New()
	pricedProduct := id.New()
	unpricedProduct := id.New()

	doc := NewPurchase(supplierID, "USD")
	doc.AddLine(pricedProduct, dec("10"), dec("5"))
	doc.AddUnpricedLine(unpricedProduct, dec("3"))

	set, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Stock, 2)

	priced := set.Stock[0]
	assert.Equal(t, entity.MovementKindPurchase, priced.Kind)
	assert.Equal(t, pricedProduct, priced.ProductID)
	require.NotNil(t, priced.UnitCost)
	assert.True(t, priced.UnitCost.Equal(dec("5")))
	require.NotNil(t, priced.Amount)
	assert.True(t, priced.Amount.Equal(dec("50")))
	assert.Equal(t, "Purchase", priced.TransactionType)
	assert.Equal(t, 1, priced.PostedVersion)
	require.NotNil(t, priced.CounterpartyID)
	assert.Equal(t, supplierID, *priced.CounterpartyID)

	// Unpriced lines produce movements without cost fields
	unpriced := set.Stock[1]
	assert.Nil(t, unpriced.UnitCost)
	assert.Nil(t, unpriced.Amount)

	// Purchases are incoming: nothing to check against stock
	assert.Empty(t, set.OutgoingByProduct())
}
