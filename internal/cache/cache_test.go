package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordermenu/internal/models"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	c := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { c.Close() })
	return mr, c
}

func TestRedisMenus_RoundTripAndInvalidate(t *testing.T) {
	mr, c := setupTestRedis(t)
	menus := NewRedisMenus(c, time.Minute)
	ctx := context.Background()

	_, err := menus.Get(ctx, "demo")
	assert.Equal(t, ErrMiss, err)

	menu := &models.PublicMenu{
		Tenant: models.Tenant{ID: "t1", Slug: "demo", Name: "Demo"},
		Categories: []models.MenuCategory{{
			Category: models.Category{ID: "c1", Name: "Mains"},
			Items:    []models.MenuItem{{ID: "i1", Name: "Nasi Goreng", BasePrice: 25000}},
		}},
	}
	require.NoError(t, menus.Set(ctx, "demo", menu))
	assert.True(t, mr.Exists("ordermenu:menu:demo"))

	got, err := menus.Get(ctx, "demo")
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, models.Money(25000), got.Categories[0].Items[0].BasePrice)

	mr.FastForward(2 * time.Minute)
	_, err = menus.Get(ctx, "demo")
	assert.Equal(t, ErrMiss, err)

	require.NoError(t, menus.Set(ctx, "demo", menu))
	require.NoError(t, menus.Invalidate(ctx, "demo"))
	_, err = menus.Get(ctx, "demo")
	assert.Equal(t, ErrMiss, err)
}

func TestRedisMenus_CorruptEntryIsMiss(t *testing.T) {
	mr, c := setupTestRedis(t)
	require.NoError(t, mr.Set("ordermenu:menu:demo", "{not json"))

	_, err := NewRedisMenus(c, time.Minute).Get(context.Background(), "demo")
	assert.Equal(t, ErrMiss, err)
}

func TestLockout(t *testing.T) {
	tests := []struct {
		failures, max int
		want          time.Duration
	}{
		{0, 3, 0},
		{2, 3, 0},
		{3, 3, 8 * time.Second},
		{4, 3, 16 * time.Second},
		{5, 3, 30 * time.Second},
		{40, 3, 30 * time.Second},
		{1, 1, 2 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Lockout(tt.failures, tt.max), "failures=%d max=%d", tt.failures, tt.max)
	}
}

func TestRedisThrottle(t *testing.T) {
	mr, c := setupTestRedis(t)
	th := NewRedisThrottle(c, 3)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		lock, err := th.Fail(ctx, "Owner@Demo.test")
		require.NoError(t, err)
		assert.Zero(t, lock)
	}
	locked, err := th.Locked(ctx, "owner@demo.test")
	require.NoError(t, err)
	assert.Zero(t, locked)

	lock, err := th.Fail(ctx, "owner@demo.test")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, lock)

	locked, err = th.Locked(ctx, "owner@demo.test")
	require.NoError(t, err)
	assert.Greater(t, locked, time.Duration(0))

	mr.FastForward(9 * time.Second)
	locked, err = th.Locked(ctx, "owner@demo.test")
	require.NoError(t, err)
	assert.Zero(t, locked)

	require.NoError(t, th.Reset(ctx, "owner@demo.test"))
	assert.False(t, mr.Exists("ordermenu:login:fail:owner@demo.test"))
}

func TestNops(t *testing.T) {
	ctx := context.Background()
	_, err := NopMenus{}.Get(ctx, "demo")
	assert.Equal(t, ErrMiss, err)
	assert.NoError(t, NopMenus{}.Set(ctx, "demo", &models.PublicMenu{}))

	lock, err := NopThrottle{}.Fail(ctx, "a@b.c")
	assert.NoError(t, err)
	assert.Zero(t, lock)
}
