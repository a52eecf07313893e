package availability

import (
	"context"
	"testing"
	"time"

	"roomfinder/internal/domain/matching"
	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
	"roomfinder/internal/infra/pms"
)

// windowSource serves one calendar payload per window start.
type windowSource map[string]string

func (s windowSource) FetchWindow(_ context.Context, start time.Time) ([]byte, error) {
	p, ok := s[daterange.Format(start)]
	if !ok {
		return nil, nil
	}
	return []byte(p), nil
}

func newFetchingCheckHandler(specs []rooms.RoomSpec, payload string) *CheckRoomHandler {
	h := newCheckHandler(specs, nil, &captureSink{})
	h.Fetcher = &pms.Fetcher{Source: windowSource{"2026-01-09": payload}, ExpectedVersion: "1.61"}
	return h
}

const januaryRoster = `
  "startDate": "2026-01-09",
  "endDate": "2026-01-22",
  "version": "1.61",
  "roomList": [
    {"id": "r1", "roomNo": "S1", "roomTypeId": "T1"},
    {"id": "r2", "roomNo": "S2", "roomTypeId": "T1"}
  ],
  "roomTypeList": [{"id": "T1", "name": "Superior"}],`

func TestCheckRoomFindsAlternativeDatesPastCheckout(t *testing.T) {
	payload := `{` + januaryRoster + `
	  "reservationRoomList": {"T1": {"r1": {
	    "2026-01-09": [{"checkIn": "2026-01-09", "checkOut": "2026-01-13"}]
	  }}}}`
	h := newFetchingCheckHandler([]rooms.RoomSpec{superior("S1", 2)}, payload)

	res, err := h.Handle(context.Background(), CheckRoomQuery{Guests: 2, CheckIn: "2026-01-10", CheckOut: "2026-01-12"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.MatchType != matching.DurationMatchAlternativeDates {
		t.Fatalf("match_type=%s want DurationMatchAlternativeDates", res.MatchType)
	}
	if len(res.Results) != 1 {
		t.Fatalf("results=%+v", res.Results)
	}
	ranges := res.Results[0].AvailableRange
	if len(ranges) != 1 || ranges[0] != "2026-01-13 to 2026-01-22" {
		t.Fatalf("ranges=%v want the whole free run of the window", ranges)
	}
}

func TestCheckRoomGapScoreSeesWholeWindow(t *testing.T) {
	payload := `{` + januaryRoster + `
	  "reservationRoomList": {"T1": {
	    "r1": {
	      "2026-01-09": [{"checkIn": "2026-01-09", "checkOut": "2026-01-10"}],
	      "2026-01-13": [{"checkIn": "2026-01-13", "checkOut": "2026-01-23"}]
	    },
	    "r2": {
	      "2026-01-09": [{"checkIn": "2026-01-09", "checkOut": "2026-01-10"}],
	      "2026-01-18": [{"checkIn": "2026-01-18", "checkOut": "2026-01-23"}]
	    }
	  }}}`
	h := newFetchingCheckHandler([]rooms.RoomSpec{superior("S1", 2), superior("S2", 2)}, payload)

	res, err := h.Handle(context.Background(), CheckRoomQuery{Guests: 2, CheckIn: "2026-01-10", CheckOut: "2026-01-12"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if res.MatchType != matching.PerfectMatch {
		t.Fatalf("match_type=%s want PerfectMatch", res.MatchType)
	}
	if len(res.Results) != 1 || res.Results[0].RoomNo != "S1" {
		t.Fatalf("results=%+v want only S1, the room with one free day after checkout", res.Results)
	}
}
