package matching

import (
	"testing"

	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
)

func TestFindWindowsRanksAndLimits(t *testing.T) {
	free := span(t, "2026-10-01", "2026-10-05")
	specs := []rooms.RoomSpec{
		spec("L1", "T3", 6),
		spec("E1", "T1", 1),
		spec("C1", "T2", 2),
		spec("C2", "T2", 2),
		spec("X1", "T1", 2),
		spec("Z1", "T4", 2),
	}
	avail := availMap(map[string]daterange.Set{
		"L1": free,
		"E1": free,
		"C1": free,
		"C2": days(t, "2026-10-01", "2026-10-02", "2026-10-04"),
		"X1": free,
	})
	got, err := FindWindows(WindowRequest{Guests: 2, Duration: 3, Limit: 3}, specs, avail)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	want := []struct {
		no  string
		cat WindowCategory
	}{
		{"C1", DurationMatchCapacityMatch},
		{"X1", DurationMatchCapacityMatch},
		{"E1", DurationMatchRequireBedExtension},
	}
	if len(got) != len(want) {
		t.Fatalf("results=%d want=%d", len(got), len(want))
	}
	for i, w := range want {
		if got[i].Room.RoomNo != w.no || got[i].Category != w.cat {
			t.Fatalf("result[%d]=%s/%s want=%s/%s", i, got[i].Room.RoomNo, got[i].Category, w.no, w.cat)
		}
	}
}

func TestFindWindowsValidates(t *testing.T) {
	if _, err := FindWindows(WindowRequest{Guests: 2, Duration: 0}, nil, availMap(nil)); err != ErrInvalidDuration {
		t.Fatalf("err=%v want ErrInvalidDuration", err)
	}
	got, err := FindWindows(WindowRequest{Guests: 2, Duration: 1}, nil, availMap(nil))
	if err != nil || len(got) != 0 {
		t.Fatalf("got=%v err=%v want empty", got, err)
	}
}
