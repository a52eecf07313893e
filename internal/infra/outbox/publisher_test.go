package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	appoutbox "roomfinder/internal/app/outbox"
)

type sent struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	sent []sent
	fail map[string]error
}

func (f *fakeProducer) Publish(_ context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if err := f.fail[key]; err != nil {
		return err
	}
	f.sent = append(f.sent, sent{topic, key, payload, headers})
	return nil
}

func TestPublisherWrapsCloudEvent(t *testing.T) {
	prod := &fakeProducer{}
	p := &Publisher{Producer: prod, TopicPrefix: "hotel."}
	at := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), appoutbox.EventRecord{
		ID:         "evt-1",
		Name:       "availability.checked",
		Payload:    []byte(`{"search_id":"s-1","results":2}`),
		OccurredAt: at,
		Aggregate:  "s-1",
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(prod.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(prod.sent))
	}
	msg := prod.sent[0]
	if msg.topic != "hotel.availability.events.v1" || msg.key != "s-1" {
		t.Fatalf("unexpected routing %s/%s", msg.topic, msg.key)
	}
	if msg.headers["content-type"] != "application/cloudevents+json" {
		t.Fatalf("headers=%v", msg.headers)
	}

	var envelope struct {
		SpecVersion string          `json:"specversion"`
		ID          string          `json:"id"`
		Type        string          `json:"type"`
		Source      string          `json:"source"`
		Subject     string          `json:"subject"`
		Time        time.Time       `json:"time"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(msg.payload, &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.SpecVersion != "1.0" || envelope.ID != "evt-1" || envelope.Type != "availability.checked.v1" {
		t.Fatalf("envelope=%+v", envelope)
	}
	if envelope.Source != "app://roomfinder" || envelope.Subject != "s-1" || !envelope.Time.Equal(at) {
		t.Fatalf("envelope=%+v", envelope)
	}
	var data map[string]any
	if err := json.Unmarshal(envelope.Data, &data); err != nil || data["search_id"] != "s-1" {
		t.Fatalf("data=%s err=%v", envelope.Data, err)
	}
}

func TestPublisherKeepsGoingAfterFailure(t *testing.T) {
	boom := errors.New("broker down")
	prod := &fakeProducer{fail: map[string]error{"a": boom}}
	p := &Publisher{Producer: prod}

	err := p.Publish(context.Background(),
		appoutbox.EventRecord{ID: "1", Name: "pms.schema_drift", Payload: []byte(`{}`), Aggregate: "a", OccurredAt: time.Now()},
		appoutbox.EventRecord{ID: "2", Name: "pms.schema_drift", Payload: []byte(`{}`), Aggregate: "b", OccurredAt: time.Now()},
	)
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined broker error, got %v", err)
	}
	if len(prod.sent) != 1 || prod.sent[0].topic != "pms.events.v1" {
		t.Fatalf("second record should still be sent, got %+v", prod.sent)
	}
}

func TestPublisherRequiresProducer(t *testing.T) {
	if err := (&Publisher{}).Publish(context.Background()); !errors.Is(err, ErrPublisherNotConfigured) {
		t.Fatalf("expected ErrPublisherNotConfigured, got %v", err)
	}
}
