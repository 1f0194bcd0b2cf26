package solarapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"pvmonitor-cloud/internal/observability/metrics"
	performance "pvmonitor-cloud/internal/performance/domain"
)

var (
	// ErrYearNotFound marks a 404 for an installation-year.
	ErrYearNotFound = errors.New("solarapi: year not found")

	errRateLimited = errors.New("solarapi: rate limited")
	errServerError = errors.New("solarapi: server error")
	errCircuitOpen = errors.New("solarapi: circuit breaker open")
)

// BackoffConfig controls retry behaviour for transient failures.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// Client fetches per-year PV string records from the monitoring data API.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	backoff BackoffConfig
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

// WithBackoff overrides retry settings.
func WithBackoff(backoff BackoffConfig) Option {
	return func(c *Client) { c.backoff = backoff }
}

// NewClient constructs a data API client.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("solarapi: empty base url")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		backoff: BackoffConfig{
			MaxRetries:      2,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
		},
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "solarapi",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchYear retrieves the raw per-string payload for one installation-year.
func (c *Client) FetchYear(ctx context.Context, installationID string, year int) (performance.RawYearRecord, error) {
	start := time.Now()
	raw, err := c.fetchYear(ctx, installationID, year)
	if err != nil {
		metrics.ObserveFetch(metrics.ResultError, time.Since(start))
		return performance.RawYearRecord{}, err
	}
	metrics.ObserveFetch(metrics.ResultSuccess, time.Since(start))
	return raw, nil
}

func (c *Client) fetchYear(ctx context.Context, installationID string, year int) (performance.RawYearRecord, error) {
	if installationID == "" {
		return performance.RawYearRecord{}, errors.New("solarapi: empty installation id")
	}
	path := fmt.Sprintf("/api/v1/installations/%s/years/%d/strings", url.PathEscape(installationID), year)

	resp, err := c.doWithResilience(ctx, path)
	if err != nil {
		return performance.RawYearRecord{}, err
	}
	defer resp.Body.Close()

	var raw performance.RawYearRecord
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return performance.RawYearRecord{}, fmt.Errorf("solarapi: decode year payload: %w", err)
	}
	if raw.Year == 0 {
		raw.Year = year
	}
	return raw, nil
}

// doWithResilience executes the GET with retries, exponential backoff
// and a circuit breaker. 404 is terminal (the year does not exist);
// 429/5xx are retried until the retry budget runs out.
func (c *Client) doWithResilience(ctx context.Context, path string) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")
			if c.token != "" {
				req.Header.Set("Authorization", "Bearer "+c.token)
			}

			resp, err := c.client.Do(req)
			if err != nil {
				return nil, err
			}
			switch {
			case resp.StatusCode == http.StatusNotFound:
				resp.Body.Close()
				return nil, ErrYearNotFound
			case resp.StatusCode == http.StatusTooManyRequests:
				resp.Body.Close()
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				resp.Body.Close()
				return nil, errServerError
			case resp.StatusCode >= 300:
				resp.Body.Close()
				return nil, fmt.Errorf("solarapi: http %d", resp.StatusCode)
			}
			return resp, nil
		})
		if err == nil {
			return result.(*http.Response), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		if errors.Is(err, ErrYearNotFound) {
			return nil, err
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if c.backoff.MaxInterval > 0 && delay > c.backoff.MaxInterval {
			delay = c.backoff.MaxInterval
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		attempt++
	}
}
