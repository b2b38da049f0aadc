// Package metrics provides metrics collection and reporting functionality.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds the crawl run metrics.
type Metrics struct {
	// CandidatesListed is the number of candidates returned by source listings.
	CandidatesListed int64
	// NewItems is the number of candidates left after seen filtering.
	NewItems int64
	// Fetched is the number of bodies fetched successfully.
	Fetched int64
	// FetchFailures is the number of per-item fetch failures.
	FetchFailures int64
	// RateLimited is the number of rate-limited fetches.
	RateLimited int64
	// Matched is the number of bodies with at least one matched signal.
	Matched int64
	// RecordsWritten is the number of match records appended to the sink.
	RecordsWritten int64
	// RunsCompleted is the number of runs that reached the done phase.
	RunsCompleted int64
	// LastRunTime is the completion time of the most recent run.
	LastRunTime time.Time
	// StartTime is when the metrics collection began.
	StartTime time.Time
	// CurrentSource is the source currently being crawled.
	CurrentSource string
	// mu protects concurrent access to metrics.
	mu sync.Mutex
}

// NewMetrics creates a new Metrics instance with default values.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
	}
}

// GetStartTime returns the time when metrics collection began.
func (m *Metrics) GetStartTime() time.Time {
	return m.StartTime
}

// SetCurrentSource sets the source currently being crawled.
func (m *Metrics) SetCurrentSource(source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentSource = source
}

// GetCurrentSource returns the source currently being crawled.
func (m *Metrics) GetCurrentSource() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CurrentSource
}

// AddCandidatesListed adds n to the listed candidate counter.
func (m *Metrics) AddCandidatesListed(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidatesListed += n
}

// GetCandidatesListed returns the number of listed candidates.
func (m *Metrics) GetCandidatesListed() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CandidatesListed
}

// AddNewItems adds n to the new item counter.
func (m *Metrics) AddNewItems(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewItems += n
}

// GetNewItems returns the number of new items after filtering.
func (m *Metrics) GetNewItems() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NewItems
}

// IncrementFetched increments the fetched body counter.
func (m *Metrics) IncrementFetched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetched++
}

// GetFetched returns the number of fetched bodies.
func (m *Metrics) GetFetched() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Fetched
}

// IncrementFetchFailures increments the fetch failure counter.
func (m *Metrics) IncrementFetchFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchFailures++
}

// GetFetchFailures returns the number of fetch failures.
func (m *Metrics) GetFetchFailures() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FetchFailures
}

// IncrementRateLimited increments the rate-limited fetch counter.
func (m *Metrics) IncrementRateLimited() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimited++
}

// GetRateLimited returns the number of rate-limited fetches.
func (m *Metrics) GetRateLimited() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RateLimited
}

// IncrementMatched increments the matched body counter.
func (m *Metrics) IncrementMatched() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Matched++
}

// GetMatched returns the number of matched bodies.
func (m *Metrics) GetMatched() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Matched
}

// IncrementRecordsWritten increments the written record counter.
func (m *Metrics) IncrementRecordsWritten() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordsWritten++
}

// GetRecordsWritten returns the number of written match records.
func (m *Metrics) GetRecordsWritten() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RecordsWritten
}

// IncrementRunsCompleted increments the completed run counter and stamps the
// last run time.
func (m *Metrics) IncrementRunsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsCompleted++
	m.LastRunTime = time.Now()
}

// GetRunsCompleted returns the number of completed runs.
func (m *Metrics) GetRunsCompleted() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RunsCompleted
}

// GetLastRunTime returns the completion time of the most recent run.
func (m *Metrics) GetLastRunTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LastRunTime
}

// ResetMetrics resets all metrics to their initial values.
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CandidatesListed = 0
	m.NewItems = 0
	m.Fetched = 0
	m.FetchFailures = 0
	m.RateLimited = 0
	m.Matched = 0
	m.RecordsWritten = 0
	m.RunsCompleted = 0
	m.LastRunTime = time.Time{}
	m.CurrentSource = ""
}
