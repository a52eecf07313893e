package queries

import (
	"context"
	"errors"
	"testing"
)

type echoQuery struct{ Text string }

func (echoQuery) Key() string { return "test.echo" }

type otherQuery struct{}

func (otherQuery) Key() string { return "test.other" }

func TestAskRoutesByKey(t *testing.T) {
	bus := NewInMemoryBus()
	RegisterHandler[echoQuery, string](bus, echoQuery{}.Key(), HandlerFunc[echoQuery, string](func(ctx context.Context, q echoQuery) (string, error) {
		return "echo:" + q.Text, nil
	}))

	got, err := Ask[echoQuery, string](context.Background(), bus, echoQuery{Text: "hi"})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if got != "echo:hi" {
		t.Fatalf("got=%q want=%q", got, "echo:hi")
	}
	if _, err := Ask[otherQuery, string](context.Background(), bus, otherQuery{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("err=%v want ErrHandlerNotFound", err)
	}
	if _, err := Ask[echoQuery, int](context.Background(), bus, echoQuery{}); !errors.Is(err, ErrResultType) {
		t.Fatalf("err=%v want ErrResultType", err)
	}
}

func TestAskKeepsPartialResultWithError(t *testing.T) {
	boom := errors.New("boom")
	bus := NewInMemoryBus()
	RegisterHandler[echoQuery, string](bus, echoQuery{}.Key(), HandlerFunc[echoQuery, string](func(ctx context.Context, q echoQuery) (string, error) {
		return "partial", boom
	}))
	got, err := Ask[echoQuery, string](context.Background(), bus, echoQuery{})
	if !errors.Is(err, boom) || got != "partial" {
		t.Fatalf("got=%q err=%v", got, err)
	}
}
