// Package cache keeps the public menu and login throttle state in Redis.
// Nop implementations stand in when Redis is disabled.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"ordermenu/internal/config"
	"ordermenu/internal/models"
)

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

// Menus caches rendered public menus per tenant slug
type Menus interface {
	Get(ctx context.Context, slug string) (*models.PublicMenu, error)
	Set(ctx context.Context, slug string, menu *models.PublicMenu) error
	Invalidate(ctx context.Context, slug string) error
}

// NewClient creates a Redis client and checks the connection
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, errors.Wrap(err, "failed to ping redis")
	}
	return c, nil
}

func menuKey(slug string) string {
	return "ordermenu:menu:" + slug
}

// RedisMenus stores menus as JSON with a fixed TTL
type RedisMenus struct {
	c   *redis.Client
	ttl time.Duration
}

func NewRedisMenus(c *redis.Client, ttl time.Duration) *RedisMenus {
	return &RedisMenus{c: c, ttl: ttl}
}

func (r *RedisMenus) Get(ctx context.Context, slug string) (*models.PublicMenu, error) {
	raw, err := r.c.Get(ctx, menuKey(slug)).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read cached menu")
	}

	var menu models.PublicMenu
	if err := json.Unmarshal(raw, &menu); err != nil {
		// a corrupt entry behaves like a miss and is overwritten on the next Set
		return nil, ErrMiss
	}
	return &menu, nil
}

func (r *RedisMenus) Set(ctx context.Context, slug string, menu *models.PublicMenu) error {
	raw, err := json.Marshal(menu)
	if err != nil {
		return errors.Wrap(err, "failed to encode menu")
	}
	return errors.Wrap(r.c.Set(ctx, menuKey(slug), raw, r.ttl).Err(), "failed to cache menu")
}

func (r *RedisMenus) Invalidate(ctx context.Context, slug string) error {
	return errors.Wrap(r.c.Del(ctx, menuKey(slug)).Err(), "failed to invalidate menu")
}

// NopMenus never caches anything
type NopMenus struct{}

func (NopMenus) Get(context.Context, string) (*models.PublicMenu, error) { return nil, ErrMiss }
func (NopMenus) Set(context.Context, string, *models.PublicMenu) error  { return nil }
func (NopMenus) Invalidate(context.Context, string) error               { return nil }
