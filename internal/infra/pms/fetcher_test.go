package pms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/shared/daterange"
)

const firstHalfOfMay = `{
  "startDate": "2026-05-01",
  "endDate": "2026-05-14",
  "version": "1.61",
  "roomList": [{"id": "r1", "roomNo": "101", "roomTypeId": "t1"}],
  "roomTypeList": [{"id": "t1", "name": "Standard"}],
  "reservationRoomList": []
}`

const secondHalfOfMay = `{
  "startDate": "2026-05-15",
  "endDate": "2026-05-28",
  "version": "1.61",
  "roomList": [{"id": "r1", "roomNo": "101", "roomTypeId": "t1"}],
  "roomTypeList": [{"id": "t1", "name": "Standard"}],
  "reservationRoomList": {
    "t1": {"r1": {"2026-05-20": [{"checkIn": "2026-05-20", "checkOut": "2026-05-21"}]}}
  }
}`

type fakeSource struct {
	mu       sync.Mutex
	payloads map[string]string
	errs     map[string]error
	calls    []string
}

func (s *fakeSource) FetchWindow(_ context.Context, start time.Time) ([]byte, error) {
	day := daterange.Format(start)
	s.mu.Lock()
	s.calls = append(s.calls, day)
	s.mu.Unlock()
	if err := s.errs[day]; err != nil {
		return nil, err
	}
	p, ok := s.payloads[day]
	if !ok {
		return nil, nil
	}
	return []byte(p), nil
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.data[key]
	return p, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = map[string][]byte{}
	}
	c.data[key] = payload
	return nil
}

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := daterange.ParseDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestFetchMergesWindows(t *testing.T) {
	src := &fakeSource{payloads: map[string]string{
		"2026-05-01": firstHalfOfMay,
		"2026-05-15": secondHalfOfMay,
	}}
	f := &Fetcher{Source: src, ExpectedVersion: "1.61", Concurrency: 2}

	snap, err := f.Fetch(context.Background(), mustDay(t, "2026-05-01"), mustDay(t, "2026-05-25"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(src.calls) != 2 {
		t.Fatalf("expected 2 windows, fetched %v", src.calls)
	}
	if !snap.To.Equal(mustDay(t, "2026-05-28")) {
		t.Fatalf("expected the map to reach the last window's end, got %s", daterange.Format(snap.To))
	}
	dates := snap.Dates("101")
	if len(dates) != 27 {
		t.Fatalf("expected 27 free nights, got %d", len(dates))
	}
	if dates.Has(mustDay(t, "2026-05-20")) {
		t.Fatal("2026-05-20 is reserved")
	}
	if !dates.Has(mustDay(t, "2026-05-26")) {
		t.Fatal("days of the last window past the requested end must be kept")
	}
	if len(snap.Warnings()) != 0 {
		t.Fatalf("unexpected warnings %v", snap.Warnings())
	}
}

func TestFetchIsolatesMalformedWindow(t *testing.T) {
	src := &fakeSource{payloads: map[string]string{
		"2026-05-01": firstHalfOfMay,
		"2026-05-15": `{"version": "1.62", "startDate": 7`,
	}}
	f := &Fetcher{Source: src, ExpectedVersion: "1.61"}

	snap, err := f.Fetch(context.Background(), mustDay(t, "2026-05-01"), mustDay(t, "2026-05-25"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(snap.WindowErrors) != 1 {
		t.Fatalf("expected one failed window, got %v", snap.WindowErrors)
	}
	if !errors.Is(snap.WindowErrors[0], availability.ErrMalformedWindow) {
		t.Fatalf("expected malformed window, got %v", snap.WindowErrors[0])
	}
	if len(snap.Dates("101")) != 14 {
		t.Fatalf("expected the first window's 14 nights, got %d", len(snap.Dates("101")))
	}
}

func TestFetchFailsOnTransportError(t *testing.T) {
	boom := errors.New("dial tcp: refused")
	src := &fakeSource{
		payloads: map[string]string{"2026-05-01": firstHalfOfMay},
		errs:     map[string]error{"2026-05-15": boom},
	}
	f := &Fetcher{Source: src, Concurrency: 2}

	if _, err := f.Fetch(context.Background(), mustDay(t, "2026-05-01"), mustDay(t, "2026-05-25")); !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestFetchRejectsLongSpanWithoutCallingPMS(t *testing.T) {
	src := &fakeSource{}
	f := &Fetcher{Source: src}

	_, err := f.Fetch(context.Background(), mustDay(t, "2026-05-01"), mustDay(t, "2026-06-15"))
	if !errors.Is(err, availability.ErrRangeTooLarge) {
		t.Fatalf("expected ErrRangeTooLarge, got %v", err)
	}
	if len(src.calls) != 0 {
		t.Fatalf("PMS should not be called, got %v", src.calls)
	}
}

func TestFetchUsesCache(t *testing.T) {
	src := &fakeSource{payloads: map[string]string{"2026-05-01": firstHalfOfMay}}
	cache := &mapCache{}
	f := &Fetcher{Source: src, Cache: cache, CacheTTL: time.Minute}
	from, to := mustDay(t, "2026-05-01"), mustDay(t, "2026-05-10")

	for i := 0; i < 2; i++ {
		snap, err := f.Fetch(context.Background(), from, to)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(snap.Dates("101")) != 14 {
			t.Fatalf("fetch %d: expected the whole window's 14 nights, got %d", i, len(snap.Dates("101")))
		}
	}
	if len(src.calls) != 1 {
		t.Fatalf("expected the second fetch to be served from cache, got calls %v", src.calls)
	}
	if _, ok := cache.data[DefaultCacheKeyPrefix+"2026-05-01"]; !ok {
		t.Fatalf("expected payload cached under the window key, got %v", cache.data)
	}
}

func TestFetchDoesNotCacheMalformedPayload(t *testing.T) {
	src := &fakeSource{payloads: map[string]string{"2026-05-01": `not json`}}
	cache := &mapCache{}
	f := &Fetcher{Source: src, Cache: cache, CacheTTL: time.Minute}

	_, err := f.Fetch(context.Background(), mustDay(t, "2026-05-01"), mustDay(t, "2026-05-10"))
	if !errors.Is(err, availability.ErrNoUsableWindow) {
		t.Fatalf("expected ErrNoUsableWindow, got %v", err)
	}
	if len(cache.data) != 0 {
		t.Fatalf("malformed payload must not be cached, got %v", cache.data)
	}
}
