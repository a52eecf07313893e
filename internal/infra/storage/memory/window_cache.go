package memory

import (
	"context"
	"sync"
	"time"
)

type cachedWindow struct {
	payload []byte
	expires time.Time
}

// WindowCache is the single-process window cache used when no Redis is
// configured. Expired entries are dropped lazily on read.
type WindowCache struct {
	mu    sync.Mutex
	items map[string]cachedWindow
	now   func() time.Time
}

func NewWindowCache() *WindowCache {
	return &WindowCache{items: make(map[string]cachedWindow), now: time.Now}
}

func (c *WindowCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return nil, false, nil
	}
	if !item.expires.IsZero() && !c.now().Before(item.expires) {
		delete(c.items, key)
		return nil, false, nil
	}
	return item.payload, true, nil
}

// Set stores a copy of payload. A non-positive ttl keeps it until replaced.
func (c *WindowCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	item := cachedWindow{payload: append([]byte(nil), payload...)}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ttl > 0 {
		item.expires = c.now().Add(ttl)
	}
	c.items[key] = item
	return nil
}

func (c *WindowCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
