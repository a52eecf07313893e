package policies

import (
	"context"
	"time"

	"roomfinder/internal/domain/availability"
)

// AvailabilityFetcher returns the merged PMS availability covering [from, to].
// The snapshot may extend past to when the last window does.
type AvailabilityFetcher interface {
	Fetch(ctx context.Context, from, to time.Time) (availability.Snapshot, error)
}

// ImageResolver maps a room number to the token the front-end renders as a
// picture. An empty token means the room has no picture.
type ImageResolver interface {
	ImageToken(ctx context.Context, roomNo string) string
}
