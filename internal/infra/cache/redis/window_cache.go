package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"roomfinder/internal/infra/pms"
)

// WindowCache keeps raw PMS window payloads in Redis so several service
// instances share them.
type WindowCache struct {
	client *goredis.Client
}

func NewWindowCache(addr string) (*WindowCache, error) {
	if addr == "" {
		return nil, errors.New("redis: address is required")
	}
	return &WindowCache{client: goredis.NewClient(&goredis.Options{Addr: addr})}, nil
}

func (c *WindowCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return data, true, nil
}

func (c *WindowCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

func (c *WindowCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *WindowCache) Close() error {
	return c.client.Close()
}

var _ pms.WindowCache = (*WindowCache)(nil)
