// Package pipeline orchestrates crawl runs: list candidates from a source,
// filter out seen items, fetch bodies in parallel, match, append records,
// and commit progress.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/domain"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/fetch"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/logger"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/matcher"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/metrics"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
)

// Phase is the stage a crawl run is in.
type Phase string

const (
	// PhaseIdle means the run has not started.
	PhaseIdle Phase = "idle"
	// PhaseListing means candidates are being listed from the source.
	PhaseListing Phase = "listing"
	// PhaseFiltering means seen candidates are being filtered out.
	PhaseFiltering Phase = "filtering"
	// PhaseFetching means bodies are being fetched in parallel.
	PhaseFetching Phase = "fetching"
	// PhaseMatching means fetched bodies are being matched.
	PhaseMatching Phase = "matching"
	// PhaseWriting means match records are being appended to the sink.
	PhaseWriting Phase = "writing"
	// PhaseAdvancing means run progress is being committed to the tracker.
	PhaseAdvancing Phase = "advancing"
	// PhaseDone means the run completed.
	PhaseDone Phase = "done"
	// PhaseFailed means the run aborted on a fatal error.
	PhaseFailed Phase = "failed"
)

// MatchWriter appends one match record durably.
type MatchWriter interface {
	Append(record domain.MatchRecord) error
}

// BodyScheduler fetches candidate bodies with bounded parallelism.
type BodyScheduler interface {
	FetchAll(ctx context.Context, candidates []domain.Candidate) []fetch.Result
}

// Config holds the per-run bounds of a Runner.
type Config struct {
	// FetchLimit caps the number of new items fetched per run.
	// Zero or negative means no cap.
	FetchLimit int
}

// Runner executes crawl runs for a single source.
type Runner struct {
	cfg       Config
	source    sources.Source
	scheduler BodyScheduler
	matcher   *matcher.Matcher
	sink      MatchWriter
	tracker   SeenTracker
	metrics   *metrics.Metrics
	logger    logger.Interface
}

// NewRunner wires a runner for one source.
func NewRunner(
	cfg Config,
	source sources.Source,
	scheduler BodyScheduler,
	m *matcher.Matcher,
	sink MatchWriter,
	tracker SeenTracker,
	met *metrics.Metrics,
	log logger.Interface,
) *Runner {
	return &Runner{
		cfg:       cfg,
		source:    source,
		scheduler: scheduler,
		matcher:   m,
		sink:      sink,
		tracker:   tracker,
		metrics:   met,
		logger:    log,
	}
}

// Run executes one crawl for the runner's source.
//
// The returned error is non-nil only for fatal outcomes: the source could not
// be listed, or a match record could not be appended. Per-item fetch failures
// are absorbed into the summary and never abort the run. Progress is committed
// only after every match record of the batch is durable, so a crash or a
// fatal error mid-run re-processes the same window instead of losing items.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{Source: r.source.ID(), Phase: PhaseIdle}
	log := r.logger.WithSource(r.source.ID())

	r.metrics.SetCurrentSource(r.source.ID())

	r.enterPhase(&summary, PhaseListing, log)
	listed, err := r.source.ListCandidates(ctx, 0)
	if err != nil {
		return r.fail(&summary, start, fmt.Errorf("list candidates: %w", err))
	}
	summary.CandidatesListed = len(listed)
	r.metrics.AddCandidatesListed(int64(len(listed)))

	r.enterPhase(&summary, PhaseFiltering, log)
	fresh, err := r.tracker.FilterNew(ctx, listed)
	if err != nil {
		log.Error("Seen filter failed, treating every candidate as new", "error", err)
		fresh = listed
	}
	if r.cfg.FetchLimit > 0 && len(fresh) > r.cfg.FetchLimit {
		fresh = fresh[:r.cfg.FetchLimit]
	}
	summary.NewItems = len(fresh)
	r.metrics.AddNewItems(int64(len(fresh)))

	r.enterPhase(&summary, PhaseFetching, log)
	results := r.scheduler.FetchAll(ctx, fresh)

	r.enterPhase(&summary, PhaseMatching, log)
	var rateLimited []domain.Candidate
	var pending []domain.MatchRecord
	for i := range results {
		res := &results[i]
		if res.Err != nil {
			if sources.IsRateLimited(res.Err) {
				summary.RateLimited++
				r.metrics.IncrementRateLimited()
				rateLimited = append(rateLimited, res.Candidate)
			} else {
				summary.FetchFailures++
				r.metrics.IncrementFetchFailures()
			}
			continue
		}
		summary.Fetched++
		r.metrics.IncrementFetched()

		match := r.matcher.Match(string(res.Body))
		if match.Empty() {
			continue
		}
		summary.Matched++
		r.metrics.IncrementMatched()
		pending = append(pending, r.buildRecord(res.Candidate, match))
	}

	r.enterPhase(&summary, PhaseWriting, log)
	for i := range pending {
		if appendErr := r.sink.Append(pending[i]); appendErr != nil {
			// Aborting before the commit keeps the whole batch eligible for
			// the next run; records appended so far persist.
			return r.fail(&summary, start,
				fmt.Errorf("append match record for item %s: %w", pending[i].ItemID, appendErr))
		}
		summary.RecordsWritten++
		r.metrics.IncrementRecordsWritten()
	}

	r.enterPhase(&summary, PhaseAdvancing, log)
	if commitErr := r.tracker.Commit(ctx, fresh, rateLimited); commitErr != nil {
		log.Error("Progress commit failed, items stay eligible for the next run", "error", commitErr)
	}

	summary.Phase = PhaseDone
	summary.Duration = time.Since(start)
	r.metrics.IncrementRunsCompleted()
	log.Info("Crawl run complete",
		"listed", summary.CandidatesListed,
		"new", summary.NewItems,
		"fetched", summary.Fetched,
		"fetch_failures", summary.FetchFailures,
		"rate_limited", summary.RateLimited,
		"matched", summary.Matched,
		"written", summary.RecordsWritten,
		"duration", summary.Duration,
	)
	return summary, nil
}

// enterPhase records and logs a phase transition.
func (r *Runner) enterPhase(summary *Summary, phase Phase, log logger.Interface) {
	summary.Phase = phase
	log.Debug("Run phase changed", "phase", string(phase))
}

// fail finalizes the summary for a fatal outcome.
func (r *Runner) fail(summary *Summary, start time.Time, err error) (Summary, error) {
	summary.Phase = PhaseFailed
	summary.Duration = time.Since(start)
	summary.Err = err
	return *summary, err
}

// buildRecord turns a matched candidate into a match record. The record URL is
// the candidate's listing URL when known, otherwise the first extracted URL.
func (r *Runner) buildRecord(candidate domain.Candidate, match matcher.Result) domain.MatchRecord {
	url := candidate.URL
	if url == "" && len(match.URLs) > 0 {
		url = match.URLs[0]
	}
	return domain.NewMatchRecord(r.source.ID(), candidate.ID, url, matchContext(match), match.Keywords)
}

// matchContext renders the matched signals as a human-readable line.
func matchContext(match matcher.Result) string {
	parts := make([]string, 0, 2)
	if len(match.Keywords) > 0 {
		parts = append(parts, "keywords: "+strings.Join(match.Keywords, ", "))
	}
	if len(match.URLs) > 0 {
		parts = append(parts, "urls: "+strings.Join(match.URLs, " "))
	}
	return strings.Join(parts, "; ")
}
