package order

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/apperr"
	"ordermenu/internal/models"
)

func TestCreateOrder_DineInTotals(t *testing.T) {
	env := newTestEnv(t)
	req := env.dineIn(env.fullNasi(1), models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 2})

	o, err := env.service.CreateOrder(context.Background(), env.tenant, req, "req-1")
	require.NoError(t, err)

	assert.Equal(t, "DEMO-RESTO-000001", o.OrderNumber)
	assert.Equal(t, models.StatusPlaced, o.Status)
	require.Len(t, o.Items, 2)
	assert.Equal(t, models.Money(42000), o.Items[0].UnitPrice)
	assert.Equal(t, models.Money(11000), o.Items[1].LineTotal)

	assert.Equal(t, models.Money(53000), o.Subtotal)
	assert.Equal(t, models.Money(5300), o.Tax)
	assert.Equal(t, models.Money(2650), o.ServiceCharge)
	assert.Equal(t, models.Money(60950), o.Total)
	assert.Equal(t, env.session.ID, *o.TableSessionID)

	require.NotNil(t, o.Items[0].Variant)
	assert.Equal(t, "Large", o.Items[0].Variant.NameSnapshot)
	require.Len(t, o.Items[0].Modifiers, 2)
	assert.Equal(t, "Spice Level", o.Items[0].Modifiers[0].ModifierNameSnapshot)
	assert.Equal(t, "Extra Hot", o.Items[0].Modifiers[0].NameSnapshot)

	require.Len(t, env.events.orders, 1)
	assert.Equal(t, o.OrderNumber, env.events.orders[0].OrderNumber)
	assert.Equal(t, models.DineIn, env.events.orders[0].OrderType)
}

func TestCreateOrder_TakeAwayHasNoServiceCharge(t *testing.T) {
	env := newTestEnv(t)
	req := env.takeAway(models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 2})
	req.TableSessionID = &env.session.ID

	o, err := env.service.CreateOrder(context.Background(), env.tenant, req, "")
	require.NoError(t, err)
	assert.Zero(t, o.ServiceCharge)
	assert.Equal(t, models.Money(1100), o.Tax)
	assert.Equal(t, models.Money(12100), o.Total)
	assert.Nil(t, o.TableSessionID)
}

func TestCreateOrder_RejectsBeforePricing(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		req   *models.CreateOrderRequest
		field string
	}{
		{"empty cart", env.takeAway(), "items"},
		{"zero quantity", env.takeAway(models.CartItem{MenuItemID: env.esTeh.ID}), "items[0].quantity"},
		{"dine-in without session", &models.CreateOrderRequest{OrderType: models.DineIn, Items: []models.CartItem{{MenuItemID: env.esTeh.ID, Quantity: 1}}}, "tableSessionId"},
		{"unknown order type", &models.CreateOrderRequest{OrderType: "delivery", Items: []models.CartItem{{MenuItemID: env.esTeh.ID, Quantity: 1}}}, "orderType"},
		{"bad email", &models.CreateOrderRequest{OrderType: models.TakeAway, CustomerEmail: strPtr("not-an-email"), Items: []models.CartItem{{MenuItemID: env.esTeh.ID, Quantity: 1}}}, "customerEmail"},
		{"missing required modifier", env.takeAway(models.CartItem{MenuItemID: env.nasi.ID, Quantity: 1}), "items[0].modifierIds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.CreateOrder(context.Background(), env.tenant, tt.req, "")
			require.True(t, apperr.IsValidation(err), "got %v", err)

			var fields []string
			for _, f := range apperr.Fields(err) {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
	assert.Empty(t, env.events.orders)
}

func TestCreateOrder_UnknownItemPersistsNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	other := newTenant(t, env.store, "other-resto")
	foreign := &models.MenuItem{TenantID: other.ID, CategoryID: "x", Name: "Foreign", BasePrice: 1000, Availability: models.Available}
	require.NoError(t, env.store.Menu.CreateItem(ctx, foreign))

	for _, id := range []string{"missing-item", foreign.ID} {
		req := env.takeAway(models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 1}, models.CartItem{MenuItemID: id, Quantity: 1})
		_, err := env.service.CreateOrder(ctx, env.tenant, req, "")
		assert.True(t, apperr.IsNotFound(err), "got %v", err)
	}

	_, total, err := env.store.Orders.List(ctx, env.tenant.ID, models.OrderFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, env.events.orders)

	o, err := env.service.CreateOrder(ctx, env.tenant, env.takeAway(models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 1}), "")
	require.NoError(t, err)
	assert.Equal(t, "DEMO-RESTO-000001", o.OrderNumber)
}

func TestCreateOrder_UnknownVariantIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	line := env.fullNasi(1)
	line.VariantID = strPtr("no-such-variant")

	_, err := env.service.CreateOrder(context.Background(), env.tenant, env.takeAway(line), "")
	assert.True(t, apperr.IsNotFound(err))
}

func TestCreateOrder_TableSessionChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	line := models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 1}

	req := env.dineIn(line)
	req.TableSessionID = strPtr("missing-session")
	_, err := env.service.CreateOrder(ctx, env.tenant, req, "")
	assert.True(t, apperr.IsNotFound(err))

	other := newTenant(t, env.store, "other-resto")
	table := &models.Table{TenantID: other.ID, Code: "X", Name: "X", Capacity: 2, QRCodeToken: "tok"}
	require.NoError(t, env.store.Tables.Create(ctx, table))
	foreign, err := env.store.Tables.OpenSession(ctx, other.ID, table.ID)
	require.NoError(t, err)
	req = env.dineIn(line)
	req.TableSessionID = &foreign.ID
	_, err = env.service.CreateOrder(ctx, env.tenant, req, "")
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, env.store.Tables.CloseSession(ctx, env.tenant.ID, env.session.ID))
	_, err = env.service.CreateOrder(ctx, env.tenant, env.dineIn(line), "")
	assert.True(t, apperr.IsValidation(err))
}

func TestCreateOrder_SnapshotsIgnoreLaterMenuEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	o, err := env.service.CreateOrder(ctx, env.tenant, env.takeAway(env.fullNasi(1)), "")
	require.NoError(t, err)

	edited := *env.nasi
	edited.Name = "Nasi Goreng Spesial"
	edited.BasePrice = 30000
	require.NoError(t, env.store.Menu.UpdateItem(ctx, &edited))
	hot := *env.hot
	hot.PriceDelta = 9000
	require.NoError(t, env.store.Menu.UpdateOption(ctx, &hot))
	require.NoError(t, env.store.Menu.DeleteVariant(ctx, env.tenant.ID, env.nasi.ID, env.large.ID))

	got, err := env.service.GetOrder(ctx, env.tenant.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nasi Goreng", got.Items[0].NameSnapshot)
	assert.Equal(t, models.Money(25000), got.Items[0].BasePriceSnapshot)
	assert.Equal(t, models.Money(42000), got.Items[0].UnitPrice)
	assert.Equal(t, models.Money(10000), got.Items[0].Variant.PriceDeltaSnapshot)
	assert.Equal(t, models.Money(2000), got.Items[0].Modifiers[0].PriceDeltaSnapshot)
	assert.Equal(t, o.Total, got.Total)
}

func TestCreateOrder_ConcurrentNumbersAreDistinct(t *testing.T) {
	env := newTestEnv(t)
	const n = 25

	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := env.takeAway(models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 1})
			o, err := env.service.CreateOrder(context.Background(), env.tenant, req, "")
			if assert.NoError(t, err) {
				results <- o.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for num := range results {
		require.False(t, seen[num], "duplicate order number %s", num)
		seen[num] = true
	}
	for i := 1; i <= n; i++ {
		assert.True(t, seen[fmt.Sprintf("DEMO-RESTO-%06d", i)])
	}
}

func TestCreateOrder_PublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	env.events.fail = true

	o, err := env.service.CreateOrder(context.Background(), env.tenant, env.takeAway(models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 1}), "")
	require.NoError(t, err)
	assert.NotEmpty(t, o.OrderNumber)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	o, err := env.service.CreateOrder(ctx, env.tenant, env.takeAway(models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 1}), "")
	require.NoError(t, err)

	updated, err := env.service.UpdateOrderStatus(ctx, env.tenant, o.ID, models.StatusPreparing, "owner@demo.test", strPtr("  "), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Status)
	assert.Equal(t, o.Total, updated.Total)

	require.Len(t, env.events.statuses, 1)
	msg := env.events.statuses[0]
	assert.Equal(t, models.StatusPlaced, msg.OldStatus)
	assert.Equal(t, models.StatusPreparing, msg.NewStatus)
	assert.Equal(t, "demo-resto", msg.TenantSlug)

	_, err = env.service.UpdateOrderStatus(ctx, env.tenant, o.ID, models.StatusServed, "owner@demo.test", nil, "")
	assert.True(t, apperr.IsConflict(err))

	_, err = env.service.UpdateOrderStatus(ctx, env.tenant, o.ID, "eaten", "owner@demo.test", nil, "")
	assert.True(t, apperr.IsValidation(err))

	_, err = env.service.UpdateOrderStatus(ctx, env.tenant, "missing", models.StatusReady, "owner@demo.test", nil, "")
	assert.True(t, apperr.IsNotFound(err))
	assert.Len(t, env.events.statuses, 1)
}

func TestListOrders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := env.service.CreateOrder(ctx, env.tenant, env.takeAway(models.CartItem{MenuItemID: env.esTeh.ID, Quantity: 1}), "")
		require.NoError(t, err)
	}

	orders, total, err := env.service.ListOrders(ctx, env.tenant.ID, models.OrderFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, orders, 2)

	bad := models.OrderStatus("lost")
	_, _, err = env.service.ListOrders(ctx, env.tenant.ID, models.OrderFilter{Status: &bad})
	assert.True(t, apperr.IsValidation(err))
}

func strPtr(s string) *string { return &s }
