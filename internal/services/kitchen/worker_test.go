package kitchen

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/logger"
	"ordermenu/internal/messaging"
	"ordermenu/internal/models"
	"ordermenu/internal/repository"
)

type recordingPublisher struct {
	messaging.NopPublisher
	statuses []*models.StatusUpdateMessage
}

func (p *recordingPublisher) PublishNotification(_ context.Context, msg *models.StatusUpdateMessage) error {
	p.statuses = append(p.statuses, msg)
	return nil
}

func placeOrder(t *testing.T, store *repository.Store, tenant *models.Tenant, orderType models.OrderType) *models.Order {
	t.Helper()
	order, err := store.Orders.Place(context.Background(), tenant, "customer", func(context.Context, repository.MenuView) (*models.Order, error) {
		return &models.Order{
			TenantID:  tenant.ID,
			OrderType: orderType,
			Status:    models.StatusPlaced,
			Totals:    models.Totals{Subtotal: 10000, Total: 10000},
			Items: []models.OrderItem{{
				NameSnapshot:      "Es Teh",
				BasePriceSnapshot: 10000,
				UnitPrice:         10000,
				Quantity:          1,
				LineTotal:         10000,
			}},
		}, nil
	})
	require.NoError(t, err)
	return order
}

func setup(t *testing.T, types ...models.OrderType) (*Worker, *repository.Store, *recordingPublisher, *models.Tenant) {
	t.Helper()
	store := repository.NewMemoryStore()
	tenant := &models.Tenant{ID: uuid.NewString(), Name: "Demo", Slug: "demo", IsActive: true}
	user := &models.User{ID: uuid.NewString(), Email: "owner@demo.test", Name: "Owner", PasswordHash: "x"}
	require.NoError(t, store.Tenants.Register(context.Background(), user, tenant))

	events := &recordingPublisher{}
	return NewWorker("grill", types, nil, store.Orders, events, logger.NewNop()), store, events, tenant
}

func body(t *testing.T, tenant *models.Tenant, order *models.Order) []byte {
	t.Helper()
	b, err := json.Marshal(models.NewOrderPlacedMessage(tenant, order))
	require.NoError(t, err)
	return b
}

func TestHandleMessage_AcceptsOrder(t *testing.T) {
	w, store, events, tenant := setup(t, models.DineIn)
	ctx := context.Background()
	order := placeOrder(t, store, tenant, models.DineIn)

	require.NoError(t, w.HandleMessage(ctx, body(t, tenant, order)))

	got, err := store.Orders.Get(ctx, tenant.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, got.Status)

	history, err := store.Orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "kitchen:grill", history[1].ChangedBy)

	require.Len(t, events.statuses, 1)
	assert.Equal(t, models.StatusPlaced, events.statuses[0].OldStatus)
	assert.Equal(t, models.StatusPreparing, events.statuses[0].NewStatus)

	// redelivery of an accepted order is acknowledged without another change
	require.NoError(t, w.HandleMessage(ctx, body(t, tenant, order)))
	assert.Len(t, events.statuses, 1)
}

func TestHandleMessage_RejectsOtherOrderTypes(t *testing.T) {
	w, store, events, tenant := setup(t, models.DineIn)
	order := placeOrder(t, store, tenant, models.TakeAway)

	assert.Error(t, w.HandleMessage(context.Background(), body(t, tenant, order)))
	assert.Empty(t, events.statuses)
}

func TestHandleMessage_SkipsCanceledOrders(t *testing.T) {
	w, store, events, tenant := setup(t)
	ctx := context.Background()
	order := placeOrder(t, store, tenant, models.TakeAway)
	_, _, err := store.Orders.UpdateStatus(ctx, tenant.ID, order.ID, models.StatusCanceled, "owner", nil)
	require.NoError(t, err)

	require.NoError(t, w.HandleMessage(ctx, body(t, tenant, order)))
	assert.Empty(t, events.statuses)
	assert.Error(t, w.HandleMessage(ctx, []byte("nope")))
}

func TestQueueFor(t *testing.T) {
	assert.Equal(t, messaging.KitchenDineInQueue, QueueFor(models.DineIn))
	assert.Equal(t, messaging.KitchenTakeAwayQueue, QueueFor(models.TakeAway))
}
