package pricing

import (
	"time"

	"ordermenu/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

// nasiGoreng has base 25000, a Large variant (+10000) and two modifiers:
// a required single-choice spice level and an optional toppings group with
// at most two picks.
func nasiGoreng() *models.MenuItem {
	return &models.MenuItem{
		ID:           "item-1",
		TenantID:     "tenant-1",
		CategoryID:   "cat-1",
		Name:         "Nasi Goreng",
		BasePrice:    25000,
		Availability: models.Available,
		Lifecycle:    models.Active(),
		Variants: []models.Variant{
			{ID: "var-regular", MenuItemID: "item-1", Name: "Regular", PriceDelta: 0, Lifecycle: models.Active()},
			{ID: "var-large", MenuItemID: "item-1", Name: "Large", PriceDelta: 10000, Lifecycle: models.Active()},
			{ID: "var-old", MenuItemID: "item-1", Name: "Jumbo", PriceDelta: 20000, Lifecycle: models.Deleted(time.Now())},
		},
		Modifiers: []models.Modifier{
			{
				ID: "mod-spice", MenuItemID: "item-1", Name: "Spice Level", IsRequired: true, MaxSelect: intPtr(1),
				Lifecycle: models.Active(),
				Options: []models.ModifierOption{
					{ID: "opt-mild", ModifierID: "mod-spice", Name: "Mild", PriceDelta: 0, Lifecycle: models.Active()},
					{ID: "opt-hot", ModifierID: "mod-spice", Name: "Extra Spicy", PriceDelta: 2000, Lifecycle: models.Active()},
				},
			},
			{
				ID: "mod-top", MenuItemID: "item-1", Name: "Toppings", MaxSelect: intPtr(2),
				Lifecycle: models.Active(),
				Options: []models.ModifierOption{
					{ID: "opt-egg", ModifierID: "mod-top", Name: "Fried Egg", PriceDelta: 5000, Lifecycle: models.Active()},
					{ID: "opt-chicken", ModifierID: "mod-top", Name: "Chicken", PriceDelta: 8000, Lifecycle: models.Active()},
					{ID: "opt-cheese", ModifierID: "mod-top", Name: "Cheese", PriceDelta: 4000, Lifecycle: models.Active()},
					{ID: "opt-gone", ModifierID: "mod-top", Name: "Shrimp", PriceDelta: 9000, Lifecycle: models.Deleted(time.Now())},
				},
			},
		},
	}
}

// esTeh is a plain drink with no variants or modifiers
func esTeh() *models.MenuItem {
	return &models.MenuItem{
		ID:           "item-2",
		TenantID:     "tenant-1",
		CategoryID:   "cat-2",
		Name:         "Es Teh",
		BasePrice:    3000,
		Availability: models.Available,
		Lifecycle:    models.Active(),
	}
}

func menuOf(items ...*models.MenuItem) map[string]*models.MenuItem {
	m := make(map[string]*models.MenuItem, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}
