package rooms

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyRoomNo      = errors.New("rooms: room number is required")
	ErrInvalidCapacity  = errors.New("rooms: capacity must be positive")
	ErrNegativeRate     = errors.New("rooms: nightly rates cannot be negative")
	ErrCatalogEmpty     = errors.New("rooms: catalog is empty")
	ErrCatalogDuplicate = errors.New("rooms: duplicate room number")
)

// Rates are nightly prices in THB per pricing tier.
type Rates struct {
	Weekday int64
	Weekend int64
	Holiday int64
}

// RoomSpec is the static description of a physical room. The catalog is the
// authority on which rooms exist; PMS rooms missing from it are never offered.
type RoomSpec struct {
	RoomNo   string
	TypeID   string
	TypeName string
	Capacity int
	Rates    Rates
	Image    string
}

// Key normalises the room number for lookups against PMS data.
func (r RoomSpec) Key() string {
	return Key(r.RoomNo)
}

func Key(roomNo string) string {
	return strings.ToLower(strings.TrimSpace(roomNo))
}

func (r RoomSpec) Validate() error {
	if strings.TrimSpace(r.RoomNo) == "" {
		return ErrEmptyRoomNo
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("%w: room %s", ErrInvalidCapacity, r.RoomNo)
	}
	if r.Rates.Weekday < 0 || r.Rates.Weekend < 0 || r.Rates.Holiday < 0 {
		return fmt.Errorf("%w: room %s", ErrNegativeRate, r.RoomNo)
	}
	return nil
}

// Catalog lists room metadata in its configured order.
type Catalog interface {
	List(ctx context.Context) ([]RoomSpec, error)
}

// Validate checks every spec and rejects duplicate room numbers.
func Validate(specs []RoomSpec) error {
	if len(specs) == 0 {
		return ErrCatalogEmpty
	}
	seen := make(map[string]struct{}, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seen[s.Key()]; dup {
			return fmt.Errorf("%w: %s", ErrCatalogDuplicate, s.RoomNo)
		}
		seen[s.Key()] = struct{}{}
	}
	return nil
}
