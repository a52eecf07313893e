package matching

import (
	"errors"
	"sort"

	"roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
)

// DefaultWindowLimit caps how many rooms a window search returns.
const DefaultWindowLimit = 5

var ErrInvalidDuration = errors.New("matching: duration must be at least 1 night")

// WindowCategory ranks rooms found by a flexible-date search.
type WindowCategory string

const (
	DurationMatchCapacityMatch       WindowCategory = "DurationMatchCapacityMatch"
	DurationMatchRequireBedExtension WindowCategory = "DurationMatchRequireBedExtension"
	DurationMatchLargeRoom           WindowCategory = "DurationMatchLargeRoom"
)

func (c WindowCategory) rank() int {
	switch c {
	case DurationMatchCapacityMatch:
		return 1
	case DurationMatchRequireBedExtension:
		return 2
	}
	return 3
}

func windowCategoryOf(guests, capacity int) WindowCategory {
	switch {
	case capacity == guests:
		return DurationMatchCapacityMatch
	case capacity+1 == guests:
		return DurationMatchRequireBedExtension
	}
	return DurationMatchLargeRoom
}

// WindowRequest asks for any stretch of Duration nights inside a span.
type WindowRequest struct {
	Guests   int
	Duration int
	Limit    int
}

func (r WindowRequest) Validate() error {
	if r.Guests < 1 {
		return ErrInvalidGuests
	}
	if r.Duration < 1 {
		return ErrInvalidDuration
	}
	return nil
}

type WindowMatch struct {
	Room     rooms.RoomSpec
	Category WindowCategory
	Combos   []daterange.Run
}

// FindWindows lists rooms that fit the party (one extra bed allowed) and
// have at least one run of Duration free days. Results are ordered by
// category, catalog order within a category, and cut at Limit.
func FindWindows(req WindowRequest, specs []rooms.RoomSpec, avail availability.Map) ([]WindowMatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultWindowLimit
	}
	out := make([]WindowMatch, 0, len(specs))
	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		key := spec.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if FitOf(req.Guests, spec.Capacity) == TooSmall {
			continue
		}
		combos := Combos(avail.Dates(key), req.Duration)
		if len(combos) == 0 {
			continue
		}
		out = append(out, WindowMatch{Room: spec, Category: windowCategoryOf(req.Guests, spec.Capacity), Combos: combos})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Category.rank() < out[j].Category.rank()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
