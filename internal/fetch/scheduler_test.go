package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/fetch"
)

const (
	schedulerTestConcurrency = 3
	schedulerTestFetchDelay  = 20 * time.Millisecond
)

var errFetchBoom = errors.New("boom")

// --- Mock implementations ---

// mockBodyFetcher implements fetch.BodyFetcher and records concurrency.
type mockBodyFetcher struct {
	mu        sync.Mutex
	fetchFunc func(ctx context.Context, candidate domain.Candidate) ([]byte, error)
	calls     int
	active    int
	maxActive int
}

func (m *mockBodyFetcher) FetchBody(ctx context.Context, candidate domain.Candidate) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.active++
	if m.active > m.maxActive {
		m.maxActive = m.active
	}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, candidate)
	}

	return []byte("body-" + candidate.ID), nil
}

func (m *mockBodyFetcher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.calls
}

func (m *mockBodyFetcher) peakConcurrency() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.maxActive
}

// mockSchedulerLogger implements fetch.SchedulerLogger for testing.
type mockSchedulerLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (m *mockSchedulerLogger) Warn(msg string, _ ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.warnings = append(m.warnings, msg)
}

func (m *mockSchedulerLogger) warningCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.warnings)
}

// --- Test helpers ---

func newTestCandidates(n int) []domain.Candidate {
	candidates := make([]domain.Candidate, n)
	for i := range candidates {
		candidates[i] = domain.Candidate{
			ID:  fmt.Sprintf("item-%d", i+1),
			Seq: int64(i + 1),
		}
	}

	return candidates
}

// --- Tests ---

func TestFetchAll_ResultsInCandidateOrder(t *testing.T) {
	t.Parallel()

	candidates := newTestCandidates(6)
	fetcher := &mockBodyFetcher{
		// Later candidates finish first so completion order differs from
		// input order.
		fetchFunc: func(_ context.Context, candidate domain.Candidate) ([]byte, error) {
			time.Sleep(time.Duration(7-candidate.Seq) * 5 * time.Millisecond)
			return []byte("body-" + candidate.ID), nil
		},
	}

	scheduler := fetch.NewScheduler(fetcher, &mockSchedulerLogger{}, fetch.Config{
		MaxConcurrency: schedulerTestConcurrency,
	})

	results := scheduler.FetchAll(context.Background(), candidates)

	if len(results) != len(candidates) {
		t.Fatalf("expected %d results, got %d", len(candidates), len(results))
	}
	for i, result := range results {
		if result.Candidate.ID != candidates[i].ID {
			t.Errorf("expected results[%d] for %s, got %s", i, candidates[i].ID, result.Candidate.ID)
		}
		if string(result.Body) != "body-"+candidates[i].ID {
			t.Errorf("expected body for %s, got %q", candidates[i].ID, result.Body)
		}
		if result.Err != nil {
			t.Errorf("unexpected error for %s: %v", candidates[i].ID, result.Err)
		}
	}
}

func TestFetchAll_BoundsConcurrency(t *testing.T) {
	t.Parallel()

	candidates := newTestCandidates(12)
	fetcher := &mockBodyFetcher{
		fetchFunc: func(_ context.Context, candidate domain.Candidate) ([]byte, error) {
			time.Sleep(schedulerTestFetchDelay)
			return []byte(candidate.ID), nil
		},
	}

	scheduler := fetch.NewScheduler(fetcher, &mockSchedulerLogger{}, fetch.Config{
		MaxConcurrency: schedulerTestConcurrency,
	})

	results := scheduler.FetchAll(context.Background(), candidates)

	if len(results) != 12 {
		t.Fatalf("expected 12 results, got %d", len(results))
	}
	if fetcher.callCount() != 12 {
		t.Errorf("expected 12 fetch calls, got %d", fetcher.callCount())
	}
	if peak := fetcher.peakConcurrency(); peak > schedulerTestConcurrency {
		t.Errorf("concurrency exceeded limit: peak %d > %d", peak, schedulerTestConcurrency)
	}
	if peak := fetcher.peakConcurrency(); peak < 2 {
		t.Errorf("expected parallel fetches, peak was %d", peak)
	}
}

func TestFetchAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	candidates := newTestCandidates(3)
	fetcher := &mockBodyFetcher{
		fetchFunc: func(_ context.Context, candidate domain.Candidate) ([]byte, error) {
			if candidate.ID == "item-2" {
				return nil, errFetchBoom
			}
			return []byte("body-" + candidate.ID), nil
		},
	}
	log := &mockSchedulerLogger{}

	scheduler := fetch.NewScheduler(fetcher, log, fetch.Config{MaxConcurrency: 1})

	results := scheduler.FetchAll(context.Background(), candidates)

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("expected healthy items to succeed, got %v and %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, errFetchBoom) {
		t.Errorf("expected item-2 failure to surface, got %v", results[1].Err)
	}
	if log.warningCount() != 1 {
		t.Errorf("expected 1 warning, got %d", log.warningCount())
	}
}

func TestFetchAll_AppliesRandomDelay(t *testing.T) {
	t.Parallel()

	const delay = 30 * time.Millisecond

	candidates := newTestCandidates(2)
	fetcher := &mockBodyFetcher{}

	scheduler := fetch.NewScheduler(fetcher, &mockSchedulerLogger{}, fetch.Config{
		MaxConcurrency: 2,
		RandomDelayMin: delay,
		RandomDelayMax: delay,
	})

	start := time.Now()
	results := scheduler.FetchAll(context.Background(), candidates)

	if elapsed := time.Since(start); elapsed < delay {
		t.Errorf("expected at least %v of politeness delay, finished in %v", delay, elapsed)
	}
	for _, result := range results {
		if result.Err != nil {
			t.Errorf("unexpected error: %v", result.Err)
		}
	}
}

func TestFetchAll_RateLimitsAggregateThroughput(t *testing.T) {
	t.Parallel()

	candidates := newTestCandidates(3)
	fetcher := &mockBodyFetcher{}

	// 50 req/s spaces tokens 20ms apart; two waits for three fetches.
	scheduler := fetch.NewScheduler(fetcher, &mockSchedulerLogger{}, fetch.Config{
		MaxConcurrency:    schedulerTestConcurrency,
		RequestsPerSecond: 50,
	})

	start := time.Now()
	scheduler.FetchAll(context.Background(), candidates)

	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("expected rate limiting to spread fetches, finished in %v", elapsed)
	}
}

func TestFetchAll_ContextCancellation(t *testing.T) {
	t.Parallel()

	candidates := newTestCandidates(4)
	fetcher := &mockBodyFetcher{}

	scheduler := fetch.NewScheduler(fetcher, &mockSchedulerLogger{}, fetch.Config{
		MaxConcurrency: 2,
		RandomDelayMin: 50 * time.Millisecond,
		RandomDelayMax: 50 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := scheduler.FetchAll(ctx, candidates)

	if len(results) != 4 {
		t.Fatalf("expected a result per candidate, got %d", len(results))
	}
	for i, result := range results {
		if !errors.Is(result.Err, context.Canceled) {
			t.Errorf("expected results[%d] to carry the context error, got %v", i, result.Err)
		}
	}
	if fetcher.callCount() != 0 {
		t.Errorf("expected no fetches after cancellation, got %d", fetcher.callCount())
	}
}

func TestFetchAll_EmptyCandidates(t *testing.T) {
	t.Parallel()

	fetcher := &mockBodyFetcher{}
	scheduler := fetch.NewScheduler(fetcher, &mockSchedulerLogger{}, fetch.Config{
		MaxConcurrency: schedulerTestConcurrency,
	})

	results := scheduler.FetchAll(context.Background(), nil)

	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
	if fetcher.callCount() != 0 {
		t.Errorf("expected no fetch calls, got %d", fetcher.callCount())
	}
}
