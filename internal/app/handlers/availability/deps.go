package availability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"roomfinder/internal/app/outbox"
	"roomfinder/internal/app/policies"
	domainavailability "roomfinder/internal/domain/availability"
	"roomfinder/internal/domain/rooms"
	"roomfinder/internal/domain/shared/daterange"
	"roomfinder/internal/domain/shared/events"
)

const tracerName = "roomfinder/internal/app/handlers/availability"

// Deps are the collaborators shared by the availability tools.
type Deps struct {
	Catalog rooms.Catalog
	Fetcher policies.AvailabilityFetcher
	Images  policies.ImageResolver
	Events  outbox.Sink
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Now     func() time.Time
	NewID   func() string
}

func (d Deps) tracer() trace.Tracer {
	if d.Tracer != nil {
		return d.Tracer
	}
	return otel.Tracer(tracerName)
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now().UTC()
}

func (d Deps) newID() string {
	if d.NewID != nil {
		return d.NewID()
	}
	return uuid.NewString()
}

func (d Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// load fetches the catalog and the PMS availability for [from, to].
func (d Deps) load(ctx context.Context, from, to time.Time) ([]rooms.RoomSpec, domainavailability.Snapshot, error) {
	if d.Catalog == nil || d.Fetcher == nil {
		return nil, domainavailability.Snapshot{}, upstream(errNotWired)
	}
	specs, err := d.Catalog.List(ctx)
	if err != nil {
		return nil, domainavailability.Snapshot{}, upstream(err)
	}
	snap, err := d.Fetcher.Fetch(ctx, from, to)
	if err != nil {
		return nil, domainavailability.Snapshot{}, upstream(err)
	}
	return specs, snap, nil
}

func (d Deps) image(ctx context.Context, room rooms.RoomSpec) string {
	if room.Image != "" {
		return room.Image
	}
	if d.Images == nil {
		return ""
	}
	return d.Images.ImageToken(ctx, room.RoomNo)
}

// warnings logs every non-fatal problem of the snapshot and renders it for
// the caller. Schema drift is also recorded as an event.
func (d Deps) warnings(ctx context.Context, searchID string, snap domainavailability.Snapshot, rec *events.Recorder) []string {
	var out []string
	for _, w := range snap.Warnings() {
		d.logger().WarnContext(ctx, "availability warning", "search_id", searchID, "error", w)
		out = append(out, w.Error())
	}
	for _, m := range snap.Mismatches {
		rec.Record(domainavailability.SchemaDrift{
			SearchID:    searchID,
			Expected:    m.Expected,
			Received:    m.Received,
			WindowStart: daterange.Format(m.WindowStart),
			At:          d.now(),
		})
	}
	return out
}

// publish is best effort: a broker outage never fails a search.
func (d Deps) publish(ctx context.Context, rec *events.Recorder) {
	if err := outbox.Dispatch(ctx, d.Events, d.Encoder, rec.Pending()); err != nil {
		d.logger().ErrorContext(ctx, "publish events failed", "error", err)
	}
	rec.Clear()
}
