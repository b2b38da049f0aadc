package pipeline

import "time"

// Summary reports what one crawl run did.
type Summary struct {
	// Source is the source the run crawled.
	Source string
	// Phase is the terminal phase, done or failed.
	Phase Phase
	// CandidatesListed is the number of candidates the listing returned.
	CandidatesListed int
	// NewItems is the number of candidates left after filtering and the
	// fetch limit.
	NewItems int
	// Fetched is the number of bodies fetched successfully.
	Fetched int
	// FetchFailures is the number of per-item fetch failures skipped.
	FetchFailures int
	// RateLimited is the number of items held back by rate limiting.
	RateLimited int
	// Matched is the number of bodies with at least one matched signal.
	Matched int
	// RecordsWritten is the number of match records appended to the sink.
	RecordsWritten int
	// Duration is the wall time of the run.
	Duration time.Duration
	// Err is the fatal error for failed runs, nil otherwise.
	Err error
}

// Failed reports whether the run ended in the failed phase.
func (s Summary) Failed() bool {
	return s.Phase == PhaseFailed
}
