package matching

import (
	"testing"

	"roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
)

func spec(no, typeID string, capacity int) rooms.RoomSpec {
	return rooms.RoomSpec{
		RoomNo:   no,
		TypeID:   typeID,
		TypeName: "Type " + typeID,
		Capacity: capacity,
		Rates:    rooms.Rates{Weekday: 1000, Weekend: 1200, Holiday: 1500},
	}
}

func stay(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(in, out)
	if err != nil {
		t.Fatalf("stay: %v", err)
	}
	return dr
}

func days(t *testing.T, list ...string) daterange.Set {
	t.Helper()
	s := daterange.Set{}
	for _, raw := range list {
		d, err := daterange.ParseDay(raw)
		if err != nil {
			t.Fatalf("day: %v", err)
		}
		s.Add(d)
	}
	return s
}

func span(t *testing.T, from, to string) daterange.Set {
	t.Helper()
	a, _ := daterange.ParseDay(from)
	b, _ := daterange.ParseDay(to)
	return daterange.NewSet(daterange.Span(a, b)...)
}

func availMap(byRoom map[string]daterange.Set) availability.Map {
	m := availability.Map{Rooms: make(map[string]availability.RoomDates, len(byRoom))}
	for no, set := range byRoom {
		m.Rooms[rooms.Key(no)] = availability.RoomDates{RoomNo: no, Dates: set}
	}
	return m
}
