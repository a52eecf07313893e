package availability

import (
	"errors"
	"testing"
)

const windowTwo = `{
  "startDate": "2026-05-15",
  "endDate": "2026-05-28",
  "version": "1.62",
  "roomList": [{"id": "r1", "roomNo": "101", "roomTypeId": "t1"}],
  "roomTypeList": [{"id": "t1", "name": "Standard"}],
  "reservationRoomList": {
    "t1": {"r1": {"2026-05-20": [{"checkIn": "2026-05-20", "checkOut": "2026-05-21"}]}}
  }
}`

func TestMergeAcrossWindows(t *testing.T) {
	w1, err := ParseWindow(day(t, "2026-05-01"), []byte(windowOne), "1.61")
	if err != nil {
		t.Fatalf("parse w1: %v", err)
	}
	w2, err := ParseWindow(day(t, "2026-05-15"), []byte(windowTwo), "1.61")
	if err != nil {
		t.Fatalf("parse w2: %v", err)
	}
	snap, err := Merge(day(t, "2026-05-01"), day(t, "2026-05-25"), []Window{w1, w2}, nil, "1.61")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	dates := snap.Dates("101")
	for _, d := range []string{"2026-05-01", "2026-05-15", "2026-05-21", "2026-05-25"} {
		if !dates.Has(day(t, d)) {
			t.Errorf("%s should be free", d)
		}
	}
	for _, d := range []string{"2026-05-03", "2026-05-20", "2026-05-26"} {
		if dates.Has(day(t, d)) {
			t.Errorf("%s should not be present", d)
		}
	}
	// s1 only appears in the first window and keeps its dates.
	if got := len(snap.Dates("s1")); got != 14 {
		t.Fatalf("s1 free nights=%d want=14", got)
	}
	if len(snap.Mismatches) != 1 || snap.Mismatches[0].Received != "1.62" {
		t.Fatalf("mismatches=%v", snap.Mismatches)
	}
	if len(snap.Warnings()) != 2 {
		t.Fatalf("warnings=%v want mismatch + unknown room", snap.Warnings())
	}
}

func TestMergeKeepsGoodWindowsWhenOneFails(t *testing.T) {
	w1, err := ParseWindow(day(t, "2026-05-01"), []byte(windowOne), "1.61")
	if err != nil {
		t.Fatalf("parse w1: %v", err)
	}
	_, bad := ParseWindow(day(t, "2026-05-15"), []byte(`{"version":"9.9","startDate":1}`), "1.61")
	we := IsWindowError(bad)
	if we == nil {
		t.Fatalf("expected window error, got %v", bad)
	}
	snap, err := Merge(day(t, "2026-05-01"), day(t, "2026-05-25"), []Window{w1}, []*WindowError{we}, "1.61")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(snap.Dates("101")) != 12 {
		t.Fatalf("room 101 dates=%v", snap.Dates("101").Sorted())
	}
	if len(snap.WindowErrors) != 1 {
		t.Fatalf("window errors=%d want=1", len(snap.WindowErrors))
	}
	if len(snap.Mismatches) != 1 || snap.Mismatches[0].Received != "9.9" {
		t.Fatalf("mismatches=%v", snap.Mismatches)
	}
}

func TestMergeFailsWithoutAnyWindow(t *testing.T) {
	we := &WindowError{WindowStart: day(t, "2026-05-01"), Err: ErrMalformedWindow}
	_, err := Merge(day(t, "2026-05-01"), day(t, "2026-05-10"), nil, []*WindowError{we}, "1.61")
	if !errors.Is(err, ErrNoUsableWindow) || !errors.Is(err, ErrMalformedWindow) {
		t.Fatalf("err=%v", err)
	}
}

func TestMapWithinNarrowsCopy(t *testing.T) {
	w, err := ParseWindow(day(t, "2026-05-15"), []byte(windowTwo), "1.62")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	snap, err := Merge(day(t, "2026-05-15"), day(t, "2026-05-28"), []Window{w}, nil, "1.62")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	narrow := snap.Within(day(t, "2026-05-16"), day(t, "2026-05-18"))
	if got := len(narrow.Dates("101")); got != 3 {
		t.Fatalf("narrowed nights=%d want=3", got)
	}
	if got := len(snap.Dates("101")); got != 13 {
		t.Fatalf("original map must be untouched, nights=%d want=13", got)
	}
}
