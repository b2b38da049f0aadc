package sources

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates an item is gone from its source.
	ErrNotFound = errors.New("item not found")
	// ErrUnknownSource indicates a source ID with no registered source.
	ErrUnknownSource = errors.New("unknown source")
)

// UnavailableError reports that a source listing could not be served. The run
// for that source aborts without touching tracker state.
type UnavailableError struct {
	Source string
	Cause  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// RateLimitError reports upstream throttling for one request. The affected
// item stays eligible for the next run.
type RateLimitError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Cause)
	}

	return fmt.Sprintf("rate limited: %v", e.Cause)
}

func (e *RateLimitError) Unwrap() error {
	return e.Cause
}

// IsRateLimited reports whether err carries a RateLimitError.
func IsRateLimited(err error) bool {
	var rateErr *RateLimitError
	return errors.As(err, &rateErr)
}

// ClassifyResponse maps an HTTP status onto the source error taxonomy. A nil
// return means the response is usable.
func ClassifyResponse(statusCode int, retryAfter string) error {
	switch {
	case statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices:
		return nil
	case statusCode == http.StatusNotFound:
		return ErrNotFound
	case statusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			RetryAfter: parseRetryAfter(retryAfter),
			Cause:      fmt.Errorf("http status %d", statusCode),
		}
	default:
		return fmt.Errorf("http status %d", statusCode)
	}
}

// parseRetryAfter reads the delay-seconds form of a Retry-After header.
// HTTP-date values and garbage yield zero.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}
