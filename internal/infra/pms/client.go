package pms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"roomfinder/internal/domain/shared/daterange"
)

const (
	tracerName = "roomfinder/internal/infra/pms"
	// tokenSkew makes a token count as stale this long before it expires.
	tokenSkew    = 60 * time.Second
	maxBodyBytes = 16 << 20
	snippetBytes = 512
)

type Credentials struct {
	HotelCode string
	Username  string
	Password  string
}

func (c Credentials) complete() bool {
	return c.HotelCode != "" && c.Username != "" && c.Password != ""
}

type Config struct {
	BaseURL     string
	Credentials Credentials
	Timeout     time.Duration
	TokenTTL    time.Duration
	RateLimit   float64
	RateBurst   int
	Retry       RetryPolicy
}

// Client talks to the PMS calendar API. It owns its access token; concurrent
// callers share it and at most one of them logs in at a time.
type Client struct {
	HTTP   *http.Client
	Logger *slog.Logger

	baseURL  string
	creds    Credentials
	tokenTTL time.Duration
	retry    RetryPolicy
	limiter  *rate.Limiter
	tracer   trace.Tracer
	now      func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
	logins int
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || !cfg.Credentials.complete() {
		return nil, ErrNotConfigured
	}
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}
	policy := cfg.Retry
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, delay time.Duration, err error) {
			logger.Warn("pms request failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		}
	}
	return &Client{
		HTTP:     httpClient,
		Logger:   logger,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		creds:    cfg.Credentials,
		tokenTTL: ttl,
		retry:    policy,
		limiter:  rate.NewLimiter(limit, burst),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
	}, nil
}

// Logins counts completed login exchanges.
func (c *Client) Logins() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logins
}

// FetchWindow returns the raw 14-day calendar snapshot starting at start.
// A 204 answer yields a nil payload.
func (c *Client) FetchWindow(ctx context.Context, start time.Time) ([]byte, error) {
	day := daterange.Format(start)
	ctx, span := c.tracer.Start(ctx, "pms.fetch_window", trace.WithAttributes(attribute.String("window.start", day)))
	defer span.End()

	body, err := c.get(ctx, c.baseURL+"/calendar/detail/"+day)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("fetch window %s: %w", day, err)
	}
	span.SetAttributes(attribute.Int("response.bytes", len(body)))
	return body, nil
}

// Ping checks that the PMS accepts our credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.currentToken(ctx)
	return err
}

// get performs an authenticated GET. A 401/403 answer triggers exactly one
// re-login followed by one more round of the retry policy.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	token, err := c.currentToken(ctx)
	if err != nil {
		return nil, err
	}
	body, err := c.getWithRetry(ctx, url, token)
	if err == nil || !isAuthFailure(err) {
		return body, err
	}

	c.Logger.WarnContext(ctx, "pms rejected token, logging in again", "url", url, "error", err)
	token, err = c.refreshToken(ctx, token)
	if err != nil {
		return nil, err
	}
	body, err = c.getWithRetry(ctx, url, token)
	if err != nil && isAuthFailure(err) {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return body, err
}

func (c *Client) getWithRetry(ctx context.Context, url, token string) ([]byte, error) {
	var body []byte
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		body, err = c.getOnce(ctx, url, token)
		return err
	})
	return body, err
}

func (c *Client) getOnce(ctx context.Context, url, token string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Access-Token", token)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(req, resp)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

func (c *Client) currentToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fresh() {
		return c.token, nil
	}
	return c.loginLocked(ctx)
}

// refreshToken replaces a rejected token. If another caller already swapped
// it while we waited for the lock, that token is reused.
func (c *Client) refreshToken(ctx context.Context, rejected string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != rejected && c.fresh() {
		return c.token, nil
	}
	return c.loginLocked(ctx)
}

func (c *Client) fresh() bool {
	return c.token != "" && c.now().Before(c.expiry.Add(-tokenSkew))
}

type loginRequest struct {
	HotelCode string `json:"hotelCode"`
	OTP       string `json:"otp"`
	Password  string `json:"password"`
	UserName  string `json:"userName"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

func (c *Client) loginLocked(ctx context.Context) (string, error) {
	ctx, span := c.tracer.Start(ctx, "pms.login")
	defer span.End()

	token, err := c.login(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.token = ""
		return "", fmt.Errorf("pms login: %w", err)
	}
	c.token = token
	c.expiry = c.now().Add(c.tokenTTL)
	c.logins++
	c.Logger.InfoContext(ctx, "pms login succeeded", "expires_at", c.expiry)
	return token, nil
}

func (c *Client) login(ctx context.Context) (string, error) {
	payload, err := json.Marshal(loginRequest{
		HotelCode: c.creds.HotelCode,
		Password:  c.creds.Password,
		UserName:  c.creds.Username,
	})
	if err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", statusError(req, resp)
	}
	var out loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if out.AccessToken == "" {
		return "", ErrEmptyToken
	}
	return out.AccessToken, nil
}

func statusError(req *http.Request, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, snippetBytes))
	return &StatusError{
		Method: req.Method,
		URL:    req.URL.String(),
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(string(snippet)),
	}
}
