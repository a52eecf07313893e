package pms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakePMS issues tok-1, tok-2, ... on each login and serves the calendar
// through calendar.
type fakePMS struct {
	logins   atomic.Int32
	hits     atomic.Int32
	calendar func(w http.ResponseWriter, r *http.Request, token string)
}

func (f *fakePMS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth":
		var body loginRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.HotelCode != "H1" || body.UserName != "front" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n := f.logins.Add(1)
		_ = json.NewEncoder(w).Encode(loginResponse{AccessToken: fmt.Sprintf("tok-%d", n)})
	case r.Method == http.MethodGet:
		f.hits.Add(1)
		f.calendar(w, r, r.Header.Get("Access-Token"))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, pms *fakePMS) *Client {
	t.Helper()
	srv := httptest.NewServer(pms)
	t.Cleanup(srv.Close)
	policy, _ := noWait(DefaultRetryPolicy())
	c, err := NewClient(Config{
		BaseURL:     srv.URL + "/",
		Credentials: Credentials{HotelCode: "H1", Username: "front", Password: "secret"},
		Retry:       policy,
	}, srv.Client(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

var may1 = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://pms"}, nil, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFetchWindowSendsToken(t *testing.T) {
	pms := &fakePMS{calendar: func(w http.ResponseWriter, r *http.Request, token string) {
		if r.URL.Path != "/calendar/detail/2026-05-01" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			t.Errorf("authorization header %q does not carry %q", r.Header.Get("Authorization"), token)
		}
		_, _ = w.Write([]byte(`{"version":"1.61"}`))
	}}
	c := newTestClient(t, pms)

	for i := 0; i < 2; i++ {
		body, err := c.FetchWindow(context.Background(), may1)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if string(body) != `{"version":"1.61"}` {
			t.Fatalf("unexpected body %s", body)
		}
	}
	if c.Logins() != 1 {
		t.Fatalf("expected the token to be reused, got %d logins", c.Logins())
	}
}

func TestFetchWindowLogsInAgainOnRejectedToken(t *testing.T) {
	pms := &fakePMS{calendar: func(w http.ResponseWriter, _ *http.Request, token string) {
		if token == "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}}
	c := newTestClient(t, pms)

	if _, err := c.FetchWindow(context.Background(), may1); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := pms.logins.Load(); got != 2 {
		t.Fatalf("expected 2 logins, got %d", got)
	}
	if got := pms.hits.Load(); got != 2 {
		t.Fatalf("expected 2 calendar calls, got %d", got)
	}
}

func TestFetchWindowGivesUpAfterSecondRejection(t *testing.T) {
	pms := &fakePMS{calendar: func(w http.ResponseWriter, _ *http.Request, _ string) {
		w.WriteHeader(http.StatusForbidden)
	}}
	c := newTestClient(t, pms)

	_, err := c.FetchWindow(context.Background(), may1)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if got := pms.logins.Load(); got != 2 {
		t.Fatalf("expected exactly one re-login, got %d logins", got)
	}
	if got := pms.hits.Load(); got != 2 {
		t.Fatalf("expected 2 calendar calls, got %d", got)
	}
}

func TestConcurrentRejectionsShareOneLogin(t *testing.T) {
	pms := &fakePMS{calendar: func(w http.ResponseWriter, _ *http.Request, token string) {
		if token == "tok-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}}
	c := newTestClient(t, pms)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.FetchWindow(context.Background(), may1.AddDate(0, 0, 14*i))
		}()
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if got := pms.logins.Load(); got != 2 {
		t.Fatalf("expected 2 logins in total, got %d", got)
	}
}

func TestFetchWindowRetriesServerErrors(t *testing.T) {
	pms := &fakePMS{calendar: func(w http.ResponseWriter, _ *http.Request, _ string) {
		http.Error(w, "upstream down", http.StatusServiceUnavailable)
	}}
	c := newTestClient(t, pms)

	_, err := c.FetchWindow(context.Background(), may1)
	se := IsStatusError(err)
	if se == nil || se.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected a 503 status error, got %v", err)
	}
	if se.Body != "upstream down" {
		t.Fatalf("expected body snippet, got %q", se.Body)
	}
	if got := pms.hits.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestFetchWindowDoesNotRetryNotFound(t *testing.T) {
	pms := &fakePMS{calendar: func(w http.ResponseWriter, _ *http.Request, _ string) {
		w.WriteHeader(http.StatusNotFound)
	}}
	c := newTestClient(t, pms)

	if _, err := c.FetchWindow(context.Background(), may1); IsStatusError(err) == nil {
		t.Fatalf("expected status error, got %v", err)
	}
	if got := pms.hits.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestFetchWindowNoContent(t *testing.T) {
	pms := &fakePMS{calendar: func(w http.ResponseWriter, _ *http.Request, _ string) {
		w.WriteHeader(http.StatusNoContent)
	}}
	c := newTestClient(t, pms)

	body, err := c.FetchWindow(context.Background(), may1)
	if err != nil || body != nil {
		t.Fatalf("expected nil body and error, got %q, %v", body, err)
	}
}

func TestTokenRefreshedBeforeExpiry(t *testing.T) {
	pms := &fakePMS{calendar: func(w http.ResponseWriter, _ *http.Request, _ string) {
		_, _ = w.Write([]byte(`{}`))
	}}
	c := newTestClient(t, pms)
	clock := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	if _, err := c.FetchWindow(context.Background(), may1); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	clock = clock.Add(58 * time.Minute)
	if _, err := c.FetchWindow(context.Background(), may1); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if c.Logins() != 1 {
		t.Fatalf("token should still be fresh, got %d logins", c.Logins())
	}
	clock = clock.Add(90 * time.Second)
	if _, err := c.FetchWindow(context.Background(), may1); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if c.Logins() != 2 {
		t.Fatalf("token inside the refresh margin should be replaced, got %d logins", c.Logins())
	}
}

func TestLoginWithoutTokenFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"accessToken":""}`))
	}))
	defer srv.Close()
	c, err := NewClient(Config{BaseURL: srv.URL, Credentials: Credentials{HotelCode: "H1", Username: "u", Password: "p"}}, srv.Client(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := c.Ping(context.Background()); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("expected ErrEmptyToken, got %v", err)
	}
}
