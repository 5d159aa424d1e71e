package order

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/pricing"
	"ordermenu/internal/repository"
)

type recordingPublisher struct {
	mu       sync.Mutex
	orders   []*models.OrderPlacedMessage
	statuses []*models.StatusUpdateMessage
	fail     bool
}

func (p *recordingPublisher) PublishOrder(_ context.Context, msg *models.OrderPlacedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.orders = append(p.orders, msg)
	return nil
}

func (p *recordingPublisher) PublishNotification(_ context.Context, msg *models.StatusUpdateMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.statuses = append(p.statuses, msg)
	return nil
}

type testEnv struct {
	store   *repository.Store
	service *Service
	events  *recordingPublisher
	tenant  *models.Tenant
	nasi    *models.MenuItem
	large   *models.Variant
	spice   *models.Modifier
	hot     *models.ModifierOption
	mild    *models.ModifierOption
	topping *models.Modifier
	egg     *models.ModifierOption
	esTeh   *models.MenuItem
	table   *models.Table
	session *models.TableSession
}

func newTenant(t *testing.T, store *repository.Store, slug string) *models.Tenant {
	t.Helper()
	tenant := &models.Tenant{ID: uuid.NewString(), Name: slug, Slug: slug, IsActive: true}
	user := &models.User{ID: uuid.NewString(), Email: slug + "@owner.test", Name: "Owner", PasswordHash: "x"}
	require.NoError(t, store.Tenants.Register(context.Background(), user, tenant))
	return tenant
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	env := &testEnv{store: store, events: &recordingPublisher{}}
	env.tenant = newTenant(t, store, "demo-resto")
	tid := env.tenant.ID

	cat := &models.Category{TenantID: tid, Name: "Makanan", IsActive: true}
	require.NoError(t, store.Categories.Create(ctx, cat))

	env.nasi = &models.MenuItem{TenantID: tid, CategoryID: cat.ID, Name: "Nasi Goreng", BasePrice: 25000, Availability: models.Available}
	require.NoError(t, store.Menu.CreateItem(ctx, env.nasi))
	env.esTeh = &models.MenuItem{TenantID: tid, CategoryID: cat.ID, Name: "Es Teh", BasePrice: 5500, Availability: models.Available}
	require.NoError(t, store.Menu.CreateItem(ctx, env.esTeh))

	env.large = &models.Variant{TenantID: tid, MenuItemID: env.nasi.ID, Name: "Large", PriceDelta: 10000}
	require.NoError(t, store.Menu.CreateVariant(ctx, env.large))

	one, two := 1, 2
	env.spice = &models.Modifier{TenantID: tid, MenuItemID: env.nasi.ID, Name: "Spice Level", IsRequired: true, MaxSelect: &one}
	require.NoError(t, store.Menu.CreateModifier(ctx, env.spice))
	env.mild = &models.ModifierOption{TenantID: tid, ModifierID: env.spice.ID, Name: "Mild"}
	require.NoError(t, store.Menu.CreateOption(ctx, env.mild))
	env.hot = &models.ModifierOption{TenantID: tid, ModifierID: env.spice.ID, Name: "Extra Hot", PriceDelta: 2000}
	require.NoError(t, store.Menu.CreateOption(ctx, env.hot))

	env.topping = &models.Modifier{TenantID: tid, MenuItemID: env.nasi.ID, Name: "Topping", MaxSelect: &two}
	require.NoError(t, store.Menu.CreateModifier(ctx, env.topping))
	env.egg = &models.ModifierOption{TenantID: tid, ModifierID: env.topping.ID, Name: "Telur", PriceDelta: 5000}
	require.NoError(t, store.Menu.CreateOption(ctx, env.egg))

	env.table = &models.Table{TenantID: tid, Code: "T1", Name: "Table 1", Capacity: 4, QRCodeToken: uuid.NewString()}
	require.NoError(t, store.Tables.Create(ctx, env.table))
	session, err := store.Tables.OpenSession(ctx, tid, env.table.ID)
	require.NoError(t, err)
	env.session = session

	engine := pricing.NewEngine(pricing.DefaultRates(), pricing.SnapshotServer)
	env.service = NewService(store.Orders, engine, env.events, logger.NewNop(), 50)
	return env
}

// fullNasi is Nasi Goreng Large, Extra Hot, Telur: 25000 + 10000 + 2000 + 5000
func (e *testEnv) fullNasi(qty int) models.CartItem {
	return models.CartItem{
		MenuItemID:  e.nasi.ID,
		VariantID:   &e.large.ID,
		ModifierIDs: []string{e.hot.ID, e.egg.ID},
		Quantity:    qty,
	}
}

func (e *testEnv) takeAway(items ...models.CartItem) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{OrderType: models.TakeAway, Items: items}
}

func (e *testEnv) dineIn(items ...models.CartItem) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{OrderType: models.DineIn, TableSessionID: &e.session.ID, Items: items}
}
