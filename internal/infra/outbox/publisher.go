package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudevents/sdk-go/v2/event"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	appoutbox "roomfinder/internal/app/outbox"
)

// Producer sends one message to a broker topic.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Publisher wraps each record in a CloudEvents envelope and hands it to the
// producer. Every record is attempted; the failures are joined.
type Publisher struct {
	Producer    Producer
	TopicPrefix string
	Source      string
}

func (p *Publisher) Publish(ctx context.Context, records ...appoutbox.EventRecord) error {
	if p.Producer == nil {
		return ErrPublisherNotConfigured
	}
	var errs []error
	for _, rec := range records {
		payload, headers, err := p.format(ctx, rec)
		if err != nil {
			errs = append(errs, fmt.Errorf("format %s: %w", rec.Name, err))
			continue
		}
		if err := p.Producer.Publish(ctx, p.topicFor(rec.Name), rec.Aggregate, payload, headers); err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", rec.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) format(ctx context.Context, rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	headers := map[string]string{}
	for k, v := range rec.Headers {
		headers[k] = v
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.MapCarrier(headers))

	evt := event.New()
	evt.SetID(rec.ID)
	evt.SetType(rec.Name + ".v1")
	evt.SetSource(p.source())
	evt.SetTime(rec.OccurredAt)
	if rec.Aggregate != "" {
		evt.SetSubject(rec.Aggregate)
	}
	if tp, ok := headers["traceparent"]; ok {
		evt.SetExtension("traceparent", tp)
	}
	if err := evt.SetData(event.ApplicationJSON, json.RawMessage(rec.Payload)); err != nil {
		return nil, nil, err
	}
	if err := evt.Validate(); err != nil {
		return nil, nil, err
	}
	payload, err := evt.MarshalJSON()
	if err != nil {
		return nil, nil, err
	}
	headers["content-type"] = "application/cloudevents+json"
	return payload, headers, nil
}

// topicFor maps "availability.checked" to "<prefix>availability.events.v1".
func (p *Publisher) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	return p.TopicPrefix + base + ".events.v1"
}

func (p *Publisher) source() string {
	if p.Source != "" {
		return p.Source
	}
	return "app://roomfinder"
}

var ErrPublisherNotConfigured = errors.New("outbox: publisher missing producer")

var _ appoutbox.Sink = (*Publisher)(nil)
