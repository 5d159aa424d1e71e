package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

func TestEngineQuote(t *testing.T) {
	engine := NewEngine(DefaultRates(), SnapshotServer)
	req := &models.CreateOrderRequest{
		OrderType: models.DineIn,
		Items: []models.CartItem{
			{MenuItemID: "item-1", VariantID: strPtr("var-large"), ModifierIDs: []string{"opt-hot", "opt-egg"}, Quantity: 1},
			{MenuItemID: "item-2", Quantity: 2},
			{MenuItemID: "item-1", ModifierIDs: []string{"opt-mild"}, Quantity: 1, Note: strPtr("less oil")},
		},
	}

	q, err := engine.Quote(req, menuOf(nasiGoreng(), esTeh()))
	require.NoError(t, err)

	require.Len(t, q.Items, 3)
	assert.Equal(t, models.Money(42000), q.Items[0].UnitPrice)
	assert.Equal(t, models.Money(6000), q.Items[1].LineTotal)
	assert.Equal(t, models.Money(25000), q.Items[2].UnitPrice)
	for i, it := range q.Items {
		assert.Equal(t, i, it.Position)
	}

	// 42000 + 6000 + 25000 = 73000
	assert.Equal(t, models.Totals{Subtotal: 73000, Tax: 7300, ServiceCharge: 3650, Total: 83950}, q.Totals)
}

func TestEngineQuote_MissingItemFailsWholeQuote(t *testing.T) {
	engine := NewEngine(DefaultRates(), SnapshotServer)
	req := &models.CreateOrderRequest{
		OrderType: models.TakeAway,
		Items: []models.CartItem{
			{MenuItemID: "item-2", Quantity: 1},
			{MenuItemID: "item-foreign", Quantity: 1},
		},
	}

	q, err := engine.Quote(req, menuOf(esTeh()))
	assert.Nil(t, q)
	assert.True(t, apperr.IsNotFound(err))
}

func TestEngineQuote_CollectsValidationErrors(t *testing.T) {
	engine := NewEngine(DefaultRates(), SnapshotServer)
	closed := esTeh()
	closed.Availability = models.Unavailable

	req := &models.CreateOrderRequest{
		OrderType: models.TakeAway,
		Items: []models.CartItem{
			{MenuItemID: "item-1", Quantity: 1},
			{MenuItemID: "item-2", Quantity: 1},
		},
	}

	_, err := engine.Quote(req, menuOf(nasiGoreng(), closed))
	require.True(t, apperr.IsValidation(err))
	fields := apperr.Fields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "items[0].modifierIds", fields[0].Field)
	assert.Equal(t, "items[1].menuItemId", fields[1].Field)
}
