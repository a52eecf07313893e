package matching

import (
	"testing"

	"roomfinder/internal/domain/shared/daterange"
)

func TestGapScore(t *testing.T) {
	st := stay(t, "2026-01-10", "2026-01-12")
	cases := []struct {
		name  string
		dates daterange.Set
		want  int
	}{
		{"no slack", days(t, "2026-01-10", "2026-01-11"), 0},
		{"one each side", days(t, "2026-01-09", "2026-01-10", "2026-01-11", "2026-01-12"), 2},
		{"checkout day counts", days(t, "2026-01-10", "2026-01-11", "2026-01-12", "2026-01-13"), 2},
		{"broken before", days(t, "2026-01-07", "2026-01-08", "2026-01-10", "2026-01-11"), 0},
	}
	for _, tc := range cases {
		if got := GapScore(tc.dates, st); got != tc.want {
			t.Errorf("%s: score=%d want=%d", tc.name, got, tc.want)
		}
	}
}

func TestKeepTightestPerType(t *testing.T) {
	st := stay(t, "2026-01-10", "2026-01-12")
	loose := days(t, "2026-01-09", "2026-01-10", "2026-01-11", "2026-01-12")
	tight := days(t, "2026-01-10", "2026-01-11")
	cands := []Candidate{
		{Room: spec("S1", "T1", 2), Dates: loose},
		{Room: spec("S2", "T1", 2), Dates: tight},
		{Room: spec("S3", "T1", 2), Dates: tight},
		{Room: spec("D1", "T2", 2), Dates: loose},
	}
	got := KeepTightest(cands, st)
	var nos []string
	for _, c := range got {
		nos = append(nos, c.Room.RoomNo)
	}
	want := []string{"S2", "S3", "D1"}
	if len(nos) != len(want) {
		t.Fatalf("kept=%v want=%v", nos, want)
	}
	for i := range want {
		if nos[i] != want[i] {
			t.Fatalf("kept=%v want=%v", nos, want)
		}
	}
}
