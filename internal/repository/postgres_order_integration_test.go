//go:build integration

package repository

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/apperr"
	"ordermenu/internal/config"
	"ordermenu/internal/database"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/pricing"
)

// Run with: ORDERMENU_TEST_DB_HOST=localhost go test -tags integration ./internal/repository/

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getTestDB(t *testing.T) *database.DB {
	t.Helper()
	host := os.Getenv("ORDERMENU_TEST_DB_HOST")
	if host == "" {
		t.Skip("Skipping integration test: ORDERMENU_TEST_DB_HOST is not set")
	}
	port, err := strconv.Atoi(getEnv("ORDERMENU_TEST_DB_PORT", "5432"))
	require.NoError(t, err)

	cfg := &config.Config{Database: config.DatabaseConfig{
		Enabled:  true,
		Host:     host,
		Port:     port,
		User:     getEnv("ORDERMENU_TEST_DB_USER", "postgres"),
		Password: getEnv("ORDERMENU_TEST_DB_PASSWORD", "postgres"),
		Database: getEnv("ORDERMENU_TEST_DB_NAME", "ordermenu_test"),
		SSLMode:  getEnv("ORDERMENU_TEST_DB_SSLMODE", "disable"),
		MaxConns: 10,
	}}

	ctx := context.Background()
	db, err := database.New(ctx, cfg, logger.NewNop())
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
	}
	t.Cleanup(db.Close)
	require.NoError(t, db.RunMigrations(ctx, "../../migrations"))
	return db
}

// newPgFixture seeds a tenant with a fresh slug so runs never share numbers
func newPgFixture(t *testing.T, attempts int) (*fixture, *database.DB) {
	t.Helper()
	db := getTestDB(t)
	slug := "it-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return seedFixture(t, NewPostgresStore(db, logger.NewNop(), attempts), slug), db
}

// importOrder stores an order with a fixed number outside the sequence
func importOrder(t *testing.T, db *database.DB, tenantID, number string) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO orders (id, tenant_id, order_number, order_type, subtotal_amount, tax_amount, total_amount)
		 VALUES ($1, $2, $3, 'take_away', 0, 0, 0)`, newID(), tenantID, number)
	require.NoError(t, err)
}

func countOrders(t *testing.T, db *database.DB, tenantID string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM orders WHERE tenant_id = $1`, tenantID).Scan(&n))
	return n
}

func TestPostgresPlace_NumbersAndPersistsSnapshots(t *testing.T) {
	f, _ := newPgFixture(t, 5)
	ctx := context.Background()

	first, err := f.store.Orders.Place(ctx, f.tenant, "customer", f.simpleBuild(2))
	require.NoError(t, err)
	second, err := f.store.Orders.Place(ctx, f.tenant, "customer", f.simpleBuild(1))
	require.NoError(t, err)

	assert.Equal(t, pricing.FormatOrderNumber(f.tenant.Slug, 1), first.OrderNumber)
	assert.Equal(t, pricing.FormatOrderNumber(f.tenant.Slug, 2), second.OrderNumber)

	got, err := f.store.Orders.Get(ctx, f.tenant.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Nasi Goreng", got.Items[0].NameSnapshot)
	assert.Equal(t, models.Money(50000), got.Items[0].LineTotal)

	history, err := f.store.Orders.History(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.StatusPlaced, history[0].Status)
}

func TestPostgresPlace_RetriesPastTakenNumber(t *testing.T) {
	f, db := newPgFixture(t, 5)

	// the counter starts at COUNT(*)+1 = 2, which is already taken
	importOrder(t, db, f.tenant.ID, pricing.FormatOrderNumber(f.tenant.Slug, 2))

	o, err := f.store.Orders.Place(context.Background(), f.tenant, "customer", f.simpleBuild(1))
	require.NoError(t, err)
	assert.Equal(t, pricing.FormatOrderNumber(f.tenant.Slug, 3), o.OrderNumber)
	assert.Equal(t, 2, countOrders(t, db, f.tenant.ID))
}

func TestPostgresPlace_ExhaustedRetriesRollBack(t *testing.T) {
	f, db := newPgFixture(t, 1)
	ctx := context.Background()
	importOrder(t, db, f.tenant.ID, pricing.FormatOrderNumber(f.tenant.Slug, 2))

	_, err := f.store.Orders.Place(ctx, f.tenant, "customer", f.simpleBuild(1))
	require.Error(t, err)
	assert.True(t, apperr.IsConflict(err))
	assert.Equal(t, 1, countOrders(t, db, f.tenant.ID))

	var seqRows int
	require.NoError(t, db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tenant_order_sequences WHERE tenant_id = $1`, f.tenant.ID).Scan(&seqRows))
	assert.Zero(t, seqRows)
}

func TestPostgresPlace_FailedBuildStoresNothing(t *testing.T) {
	f, db := newPgFixture(t, 5)
	ctx := context.Background()

	_, err := f.store.Orders.Place(ctx, f.tenant, "customer", func(context.Context, MenuView) (*models.Order, error) {
		return nil, apperr.Invalid("items[0].quantity", "quantity must be at least 1")
	})
	require.Error(t, err)
	assert.Zero(t, countOrders(t, db, f.tenant.ID))

	o, err := f.store.Orders.Place(ctx, f.tenant, "customer", f.simpleBuild(1))
	require.NoError(t, err)
	assert.Equal(t, pricing.FormatOrderNumber(f.tenant.Slug, 1), o.OrderNumber)
}

func TestPostgresPlace_ConcurrentNumbersAreUnique(t *testing.T) {
	f, _ := newPgFixture(t, 5)
	const n = 10

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := f.store.Orders.Place(context.Background(), f.tenant, "customer", f.simpleBuild(1))
			if assert.NoError(t, err) {
				numbers <- o.OrderNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "duplicate %s", num)
		seen[num] = true
	}
	assert.Len(t, seen, n)
	for i := 1; i <= n; i++ {
		assert.True(t, seen[pricing.FormatOrderNumber(f.tenant.Slug, int64(i))])
	}
}

func TestPostgresSnapshotRowsRejectUpdates(t *testing.T) {
	f, db := newPgFixture(t, 5)
	ctx := context.Background()
	o, err := f.store.Orders.Place(ctx, f.tenant, "customer", f.simpleBuild(1))
	require.NoError(t, err)

	_, err = db.Exec(ctx, `UPDATE order_items SET name_snapshot = 'tampered' WHERE order_id = $1`, o.ID)
	assert.Error(t, err)
}
