package matching

import (
	"errors"
	"time"

	"roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
)

var ErrInvalidGuests = errors.New("matching: guests must be at least 1")

// Request is an exact-stay search.
type Request struct {
	Guests int
	Stay   daterange.DateRange
}

func (r Request) Validate() error {
	if r.Guests < 1 {
		return ErrInvalidGuests
	}
	return r.Stay.Validate()
}

// Candidate is one room that survived classification.
type Candidate struct {
	Room     rooms.RoomSpec
	Category MatchType
	Dates    daterange.Set
	Combos   []daterange.Run
}

// Classification holds every category bucket, all computed even though
// only the best non-empty one is offered.
type Classification struct {
	buckets map[MatchType][]Candidate
}

func (c Classification) Bucket(t MatchType) []Candidate {
	return c.buckets[t]
}

// Best returns the highest priority non-empty bucket, or NoMatch.
func (c Classification) Best() (MatchType, []Candidate) {
	for _, t := range Priority {
		if b := c.buckets[t]; len(b) > 0 {
			return t, b
		}
	}
	return NoMatch, nil
}

// Classify puts every admissible room in exactly one category. Rooms are
// taken in catalog order; a room number seen twice is only classified once.
func Classify(req Request, specs []rooms.RoomSpec, avail availability.Map) Classification {
	out := Classification{buckets: make(map[MatchType][]Candidate, len(Priority))}
	seen := make(map[string]struct{}, len(specs))
	nights := req.Stay.Nightly()
	for _, spec := range specs {
		key := spec.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		fit := FitOf(req.Guests, spec.Capacity)
		if fit == TooSmall {
			continue
		}
		dates := avail.Dates(key)
		if len(dates) == 0 {
			continue
		}
		if coversAll(dates, nights) {
			cat := fit.exactCategory()
			out.buckets[cat] = append(out.buckets[cat], Candidate{Room: spec, Category: cat, Dates: dates})
			continue
		}
		combos := Combos(dates, len(nights))
		if len(combos) == 0 {
			continue
		}
		out.buckets[DurationMatchAlternativeDates] = append(out.buckets[DurationMatchAlternativeDates],
			Candidate{Room: spec, Category: DurationMatchAlternativeDates, Dates: dates, Combos: combos})
	}
	return out
}

func coversAll(dates daterange.Set, nights []time.Time) bool {
	for _, n := range nights {
		if !dates.Has(n) {
			return false
		}
	}
	return true
}

// Combos returns the maximal runs of consecutive free days that are at
// least minLen days long.
func Combos(dates daterange.Set, minLen int) []daterange.Run {
	days := make([]time.Time, 0, len(dates))
	for _, s := range dates.Sorted() {
		d, err := daterange.ParseDay(s)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	var out []daterange.Run
	for _, run := range daterange.RunsOf(days) {
		if run.Len() >= minLen {
			out = append(out, run)
		}
	}
	return out
}
