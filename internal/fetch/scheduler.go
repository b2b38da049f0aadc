// Package fetch runs bounded-concurrency body fetches over listed candidates.
package fetch

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
)

// BodyFetcher retrieves the content of one candidate item.
type BodyFetcher interface {
	FetchBody(ctx context.Context, candidate domain.Candidate) ([]byte, error)
}

// SchedulerLogger provides structured logging.
type SchedulerLogger interface {
	Warn(msg string, fields ...any)
}

// Config bounds the scheduler's parallelism and pacing.
type Config struct {
	// MaxConcurrency caps how many fetches run at once. Values below one
	// are treated as one.
	MaxConcurrency int
	// RandomDelayMin and RandomDelayMax bound the uniform politeness delay
	// applied before each fetch.
	RandomDelayMin time.Duration
	RandomDelayMax time.Duration
	// RequestsPerSecond caps the aggregate request rate across all workers.
	// Zero or less disables the limiter.
	RequestsPerSecond float64
}

// Result pairs one candidate with its fetched body or failure. A fetch error
// never aborts the batch; callers inspect Err per item.
type Result struct {
	Candidate domain.Candidate
	Body      []byte
	Err       error
}

// Scheduler fans a candidate batch out to a bounded worker pool. Results come
// back in candidate order regardless of fetch completion order.
type Scheduler struct {
	fetcher BodyFetcher
	limiter *rate.Limiter
	log     SchedulerLogger
	cfg     Config
}

// NewScheduler creates a scheduler for the given fetcher.
func NewScheduler(fetcher BodyFetcher, log SchedulerLogger, cfg Config) *Scheduler {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Scheduler{
		fetcher: fetcher,
		limiter: limiter,
		log:     log,
		cfg:     cfg,
	}
}

// FetchAll fetches every candidate and returns one Result per candidate, in
// input order. At most MaxConcurrency fetches run at once. Cancelling ctx
// stops the remaining fetches; their results carry the context error.
func (s *Scheduler) FetchAll(ctx context.Context, candidates []domain.Candidate) []Result {
	results := make([]Result, len(candidates))
	if len(candidates) == 0 {
		return results
	}

	workers := min(s.cfg.MaxConcurrency, len(candidates))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = s.fetchOne(ctx, candidates[idx])
			}
		}()
	}

	for idx := range candidates {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return results
}

// fetchOne paces and fetches a single candidate.
func (s *Scheduler) fetchOne(ctx context.Context, candidate domain.Candidate) Result {
	if err := s.pace(ctx); err != nil {
		return Result{Candidate: candidate, Err: err}
	}

	body, err := s.fetcher.FetchBody(ctx, candidate)
	if err != nil {
		s.log.Warn("fetch failed", "item_id", candidate.ID, "error", err.Error())
		return Result{Candidate: candidate, Err: err}
	}

	return Result{Candidate: candidate, Body: body}
}

// pace applies the rate limit and the randomized politeness delay before a
// fetch. Returns the context error if cancelled while waiting.
func (s *Scheduler) pace(ctx context.Context) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	delay := s.randomDelay()
	if delay <= 0 {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// randomDelay picks a uniform duration in [RandomDelayMin, RandomDelayMax].
func (s *Scheduler) randomDelay() time.Duration {
	minDelay := max(s.cfg.RandomDelayMin, 0)
	maxDelay := s.cfg.RandomDelayMax
	if maxDelay <= minDelay {
		return minDelay
	}

	return minDelay + time.Duration(rand.Int63n(int64(maxDelay-minDelay)+1))
}
