package pms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"roomfinder/internal/app/policies"
	"roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/shared/daterange"
)

const DefaultCacheKeyPrefix = "pms:window:"

// WindowSource returns the raw calendar payload of the window starting at start.
type WindowSource interface {
	FetchWindow(ctx context.Context, start time.Time) ([]byte, error)
}

// WindowCache keeps raw payloads that parsed cleanly.
type WindowCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// Fetcher builds an availability snapshot for a span by fetching every
// covering window concurrently and merging what parsed.
type Fetcher struct {
	Source          WindowSource
	Cache           WindowCache
	CacheTTL        time.Duration
	CacheKeyPrefix  string
	ExpectedVersion string
	Concurrency     int
	Logger          *slog.Logger
	Tracer          trace.Tracer
}

var _ policies.AvailabilityFetcher = (*Fetcher)(nil)

type fetched struct {
	payload []byte
	cached  bool
}

// Fetch returns the merged availability of every window covering [from, to].
// The snapshot keeps each window whole, so it may reach up to 13 days past to.
// A transport failure on any window fails the whole call; a window whose
// payload cannot be parsed is reported in the snapshot and skipped.
func (f *Fetcher) Fetch(ctx context.Context, from, to time.Time) (availability.Snapshot, error) {
	if f.Source == nil {
		return availability.Snapshot{}, ErrNotConfigured
	}
	starts, err := availability.PlanWindows(from, to)
	if err != nil {
		return availability.Snapshot{}, err
	}

	ctx, span := f.tracer().Start(ctx, "pms.fetch_span", trace.WithAttributes(
		attribute.String("from", daterange.Format(from)),
		attribute.String("to", daterange.Format(to)),
		attribute.Int("windows", len(starts)),
	))
	defer span.End()

	results := make([]fetched, len(starts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency())
	for i, start := range starts {
		g.Go(func() error {
			res, err := f.window(gctx, start)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return availability.Snapshot{}, err
	}

	windows := make([]availability.Window, 0, len(starts))
	var failed []*availability.WindowError
	for i, start := range starts {
		w, err := availability.ParseWindow(start, results[i].payload, f.ExpectedVersion)
		if err != nil {
			we := availability.IsWindowError(err)
			if we == nil {
				we = &availability.WindowError{WindowStart: start, Err: err}
			}
			f.logger().WarnContext(ctx, "pms window unusable", "window_start", daterange.Format(start), "error", err)
			failed = append(failed, we)
			continue
		}
		if w.Mismatch != nil {
			f.logger().WarnContext(ctx, "pms schema version changed",
				"window_start", daterange.Format(start),
				"expected", w.Mismatch.Expected,
				"received", w.Mismatch.Received,
			)
		}
		if !results[i].cached {
			f.store(ctx, start, results[i].payload)
		}
		windows = append(windows, w)
	}

	snap, err := availability.Merge(from, availability.CoverageEnd(starts), windows, failed, f.ExpectedVersion)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return snap, err
	}
	span.SetAttributes(attribute.Int("rooms", len(snap.Rooms)), attribute.Int("failed_windows", len(failed)))
	return snap, nil
}

func (f *Fetcher) window(ctx context.Context, start time.Time) (fetched, error) {
	if f.Cache != nil {
		payload, ok, err := f.Cache.Get(ctx, f.key(start))
		switch {
		case err != nil:
			f.logger().WarnContext(ctx, "window cache read failed", "window_start", daterange.Format(start), "error", err)
		case ok:
			return fetched{payload: payload, cached: true}, nil
		}
	}
	payload, err := f.Source.FetchWindow(ctx, start)
	if err != nil {
		return fetched{}, fmt.Errorf("window %s: %w", daterange.Format(start), err)
	}
	return fetched{payload: payload}, nil
}

// store skips empty payloads so a 204 is asked again next time.
func (f *Fetcher) store(ctx context.Context, start time.Time, payload []byte) {
	if f.Cache == nil || f.CacheTTL <= 0 || len(payload) == 0 {
		return
	}
	if err := f.Cache.Set(ctx, f.key(start), payload, f.CacheTTL); err != nil && !errors.Is(err, context.Canceled) {
		f.logger().WarnContext(ctx, "window cache write failed", "window_start", daterange.Format(start), "error", err)
	}
}

func (f *Fetcher) key(start time.Time) string {
	prefix := f.CacheKeyPrefix
	if prefix == "" {
		prefix = DefaultCacheKeyPrefix
	}
	return prefix + daterange.Format(start)
}

func (f *Fetcher) concurrency() int {
	if f.Concurrency < 1 {
		return 1
	}
	return f.Concurrency
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return f.Logger
}

func (f *Fetcher) tracer() trace.Tracer {
	if f.Tracer == nil {
		return otel.Tracer(tracerName)
	}
	return f.Tracer
}
