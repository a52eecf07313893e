package pms

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"
)

// RetryPolicy retries a call with exponential backoff and full jitter: the
// wait before retry n is uniform in [0, min(BaseDelay*2^n, MaxDelay)).
// Status codes in NonRetryable fail immediately.
type RetryPolicy struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	NonRetryable map[int]bool

	// Jitter picks the actual wait below ceiling; nil means uniform random.
	Jitter func(ceiling time.Duration) time.Duration
	// Sleep waits for d or until ctx is done; nil means a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    10 * time.Second,
		NonRetryable: map[int]bool{
			http.StatusBadRequest:   true,
			http.StatusUnauthorized: true,
			http.StatusForbidden:    true,
			http.StatusNotFound:     true,
		},
	}
}

// Ceiling is the backoff cap for the given zero-based attempt.
func (p RetryPolicy) Ceiling(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Retryable reports whether err is worth another attempt.
func (p RetryPolicy) Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if se := IsStatusError(err); se != nil {
		return !p.NonRetryable[se.Code]
	}
	return true
}

// Do runs fn until it succeeds, fails with a non-retryable error or runs out
// of attempts. The last error is returned.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !p.Retryable(err) || attempt == attempts-1 {
			return err
		}
		delay := p.jitter(p.Ceiling(attempt))
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if serr := p.sleep(ctx, delay); serr != nil {
			return errors.Join(err, serr)
		}
	}
	return err
}

func (p RetryPolicy) jitter(ceiling time.Duration) time.Duration {
	if ceiling <= 0 {
		return 0
	}
	if p.Jitter != nil {
		return p.Jitter(ceiling)
	}
	return rand.N(ceiling)
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
