package sale

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

func TestSale_AddLineTotals(t *testing.T) {
	doc := NewSale(id.New(), "USD")
	doc.AddLine(id.New(), dec("2"), dec("10"))
	doc.AddLine(id.New(), dec("3"), dec("4.50"))

	require.Len(t, doc.Lines, 2)
	assert.Equal(t, 1, doc.Lines[0].LineNo)
	assert.Equal(t, 2, doc.Lines[1].LineNo)
	assert.True(t, doc.Lines[1].Amount.Equal(dec("13.5")))
	assert.True(t, doc.TotalQuantity.Equal(dec("5")))
	assert.True(t, doc.TotalAmount.Equal(dec("33.5")))
}

func TestSale_Validate(t *testing.T) {
	ctx := context.Background()

	doc := NewSale(id.New(), "USD")
	require.Error(t, doc.Validate(ctx), "no lines")

	doc.AddLine(id.New(), dec("1"), dec("5"))
	require.NoError(t, doc.Validate(ctx))

	doc.CustomerID = id.Nil()
	require.Error(t, doc.Validate(ctx), "customer required")

	doc = NewSale(id.New(), "")
	doc.AddLine(id.New(), dec("1"), dec("5"))
	require.Error(t, doc.Validate(ctx), "currency required")

	doc = NewSale(id.New(), "USD")
	doc.AddLine(id.New(), dec("0"), dec("5"))
	require.Error(t, doc.Validate(ctx), "zero quantity")
}

func TestSale_GenerateMovements(t *testing.T) {
	customerID := id.New()
	productID := id.New()

	doc := NewSale(customerID, "EUR")
	doc.AddLine(productID, dec("4"), dec("9"))
	doc.PostedVersion = 2

	set, err := doc.GenerateMovements(context.Background())
	require.NoError(t, err)
	require.Len(t, set.Stock, 1)

	m := set.Stock[0]
	assert.Equal(t, entity.MovementKindSale, m.Kind)
	assert.Equal(t, entity.MovementActionApply, m.Action)
	assert.Equal(t, productID, m.ProductID)
	assert.True(t, m.Quantity.Equal(dec("4")))
	require.NotNil(t, m.UnitCost)
	assert.True(t, m.UnitCost.Equal(dec("9")))
	require.NotNil(t, m.Amount)
	assert.True(t, m.Amount.Equal(dec("36")))
	assert.Equal(t, "EUR", m.Currency)
	assert.Equal(t, doc.ID, m.TransactionID)
	assert.Equal(t, "Sale", m.TransactionType)
	assert.Equal(t, 3, m.PostedVersion)
	require.NotNil(t, m.CounterpartyID)
	assert.Equal(t, customerID, *m.CounterpartyID)

	// Outgoing quantities feed the stock check
	outgoing := set.OutgoingByProduct()
	assert.True(t, outgoing[productID].Equal(dec("4")))
}
