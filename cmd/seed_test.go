package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/logger"
	"ordermenu/internal/repository"
)

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	require.NoError(t, seed(ctx, store, "secret", "http://localhost:3000", logger.NewNop()))

	tenant, err := store.Tenants.GetBySlug(ctx, demoSlug)
	require.NoError(t, err)

	items, err := store.Menu.ListItems(ctx, tenant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, items, 4)

	stats, err := store.Tenants.Stats(ctx, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTables)
	assert.Equal(t, 4, stats.TotalMenuItems)

	// running it again is a no-op
	require.NoError(t, seed(ctx, store, "secret", "http://localhost:3000", logger.NewNop()))
	items, err = store.Menu.ListItems(ctx, tenant.ID, nil)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}
