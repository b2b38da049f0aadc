package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/constants"
)

// ClientConfig configures the shared source HTTP transport.
type ClientConfig struct {
	Timeout     time.Duration
	UserAgent   string
	MaxRetries  int
	RetryDelay  time.Duration
	MaxBodySize int64
}

// Client is the HTTP transport shared by sources. It applies the configured
// timeout and user agent, retries transient failures with exponential
// backoff, and maps response statuses onto the source error taxonomy.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	maxRetries  uint64
	retryDelay  time.Duration
	maxBodySize int64
}

// NewClient creates a client, filling zero config values with defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultHTTPTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.DefaultUserAgent
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = constants.DefaultRetryInitialWait
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = constants.DefaultMaxBodySize
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		userAgent:   cfg.UserAgent,
		maxRetries:  uint64(cfg.MaxRetries),
		retryDelay:  cfg.RetryDelay,
		maxBodySize: cfg.MaxBodySize,
	}
}

// Get fetches rawURL and returns the response body. Network errors and 5xx
// responses are retried with exponential backoff up to the retry limit; not
// found and rate limited responses surface immediately as taxonomy errors.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte

	operation := func() error {
		var fetchErr error
		body, fetchErr = c.fetch(ctx, rawURL)
		return fetchErr
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryDelay
	expo.MaxInterval = constants.DefaultRetryMaxWait

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, c.maxRetries), ctx)

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}

	return body, nil
}

// fetch performs a single GET attempt. Errors that must not be retried are
// wrapped with backoff.Permanent.
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if reqErr != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", reqErr))
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, fmt.Errorf("http fetch: %w", doErr)
	}
	defer resp.Body.Close()

	if classifyErr := ClassifyResponse(resp.StatusCode, resp.Header.Get("Retry-After")); classifyErr != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, classifyErr
		}
		return nil, backoff.Permanent(classifyErr)
	}

	limited := io.LimitReader(resp.Body, c.maxBodySize)

	body, readErr := io.ReadAll(limited)
	if readErr != nil {
		return nil, fmt.Errorf("read response body: %w", readErr)
	}

	return body, nil
}
