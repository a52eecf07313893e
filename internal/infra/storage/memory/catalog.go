package memory

import (
	"context"
	"sync"

	"roomfinder/internal/domain/rooms"
)

// RoomCatalog keeps room metadata in memory, in the order it was loaded.
type RoomCatalog struct {
	mu    sync.RWMutex
	items []rooms.RoomSpec
}

// NewRoomCatalog validates specs and builds a catalog over a copy of them.
func NewRoomCatalog(specs []rooms.RoomSpec) (*RoomCatalog, error) {
	c := &RoomCatalog{}
	if err := c.Replace(specs); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns a copy of the catalog so callers cannot mutate it.
func (c *RoomCatalog) List(ctx context.Context) ([]rooms.RoomSpec, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]rooms.RoomSpec, len(c.items))
	copy(out, c.items)
	return out, nil
}

// Replace swaps the whole catalog atomically. Invalid input leaves the old one in place.
func (c *RoomCatalog) Replace(specs []rooms.RoomSpec) error {
	if err := rooms.Validate(specs); err != nil {
		return err
	}
	items := make([]rooms.RoomSpec, len(specs))
	copy(items, specs)
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

var _ rooms.Catalog = (*RoomCatalog)(nil)
