package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

func TestSnapshotter_ServerSource(t *testing.T) {
	item := nasiGoreng()
	line, err := ResolveLine(item, strPtr("var-large"), []string{"opt-hot", "opt-egg"})
	require.NoError(t, err)

	cart := models.CartItem{
		MenuItemID:        item.ID,
		Quantity:          2,
		Note:              strPtr("no onions"),
		NameSnapshot:      "Cheap Fried Rice",
		BasePriceSnapshot: 1,
	}

	oi, err := NewSnapshotter(SnapshotServer).Build(line, cart, "items[0]")
	require.NoError(t, err)

	assert.Equal(t, "Nasi Goreng", oi.NameSnapshot)
	assert.Equal(t, models.Money(25000), oi.BasePriceSnapshot)
	assert.Equal(t, models.Money(42000), oi.UnitPrice)
	assert.Equal(t, models.Money(84000), oi.LineTotal)
	assert.Equal(t, 2, oi.Quantity)
	require.NotNil(t, oi.Note)
	assert.Equal(t, "no onions", *oi.Note)

	require.NotNil(t, oi.Variant)
	assert.Equal(t, "var-large", oi.Variant.VariantID)
	assert.Equal(t, "Large", oi.Variant.NameSnapshot)
	assert.Equal(t, models.Money(10000), oi.Variant.PriceDeltaSnapshot)

	require.Len(t, oi.Modifiers, 2)
	assert.Equal(t, models.OrderItemModifier{
		ModifierID:           "mod-spice",
		OptionID:             "opt-hot",
		ModifierNameSnapshot: "Spice Level",
		NameSnapshot:         "Extra Spicy",
		PriceDeltaSnapshot:   2000,
	}, oi.Modifiers[0])
}

func TestSnapshotter_ClientSourceKeepsClientValues(t *testing.T) {
	item := nasiGoreng()
	line, err := ResolveLine(item, nil, []string{"opt-mild"})
	require.NoError(t, err)

	cart := models.CartItem{MenuItemID: item.ID, Quantity: 1, NameSnapshot: " Nasi Goreng Spesial ", BasePriceSnapshot: 24000}
	oi, err := NewSnapshotter(SnapshotClient).Build(line, cart, "items[0]")
	require.NoError(t, err)

	assert.Equal(t, "Nasi Goreng Spesial", oi.NameSnapshot)
	assert.Equal(t, models.Money(24000), oi.BasePriceSnapshot)
	// price is still the server-side one
	assert.Equal(t, models.Money(25000), oi.UnitPrice)
	assert.Equal(t, "Mild", oi.Modifiers[0].NameSnapshot)
}

func TestSnapshotter_ClientSourceValidates(t *testing.T) {
	line, err := ResolveLine(esTeh(), nil, nil)
	require.NoError(t, err)

	_, err = NewSnapshotter(SnapshotClient).Build(line, models.CartItem{Quantity: 1, BasePriceSnapshot: -1}, "items[3]")
	require.Error(t, err)
	fields := apperr.Fields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, "items[3].nameSnapshot", fields[0].Field)
	assert.Equal(t, "items[3].basePriceSnapshot", fields[1].Field)
}

func TestSnapshotter_CopiesAreIndependentOfMenu(t *testing.T) {
	item := nasiGoreng()
	line, err := ResolveLine(item, strPtr("var-large"), []string{"opt-mild"})
	require.NoError(t, err)

	note := "extra napkins"
	oi, err := NewSnapshotter("").Build(line, models.CartItem{Quantity: 1, Note: &note}, "items[0]")
	require.NoError(t, err)

	item.Name = "Renamed"
	item.BasePrice = 99999
	item.Variants[1].Name = "XL"
	item.Variants[1].PriceDelta = 1
	item.Modifiers[0].Options[0].Name = "Not Spicy"
	note = "changed"

	assert.Equal(t, "Nasi Goreng", oi.NameSnapshot)
	assert.Equal(t, models.Money(25000), oi.BasePriceSnapshot)
	assert.Equal(t, "Large", oi.Variant.NameSnapshot)
	assert.Equal(t, models.Money(10000), oi.Variant.PriceDeltaSnapshot)
	assert.Equal(t, "Mild", oi.Modifiers[0].NameSnapshot)
	assert.Equal(t, "extra napkins", *oi.Note)
}

func TestParseSnapshotSource(t *testing.T) {
	s, err := ParseSnapshotSource("client")
	require.NoError(t, err)
	assert.Equal(t, SnapshotClient, s)

	_, err = ParseSnapshotSource("browser")
	assert.Error(t, err)
}
