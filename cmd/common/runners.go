package common

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/signal-crawler/internal/checkpoint"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/config/monitor"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/constants"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/fetch"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/matcher"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/metrics"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/pipeline"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/seenstore"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sink"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources/pastebin"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/sources/telegram"
)

// BuildOptions selects and overrides what BuildRunners assembles.
type BuildOptions struct {
	// SourceID restricts the set to a single source. An explicitly named
	// source runs even when its entry is disabled. Empty means every
	// enabled source.
	SourceID string

	// FetchLimit overrides the configured per-run fetch cap when positive.
	FetchLimit int
}

// RunnerSet holds one pipeline runner per selected source plus the shared
// state handles behind them.
type RunnerSet struct {
	// Runners are in sources-file order.
	Runners []*pipeline.Runner

	// Metrics aggregates counters across all runners.
	Metrics *metrics.Metrics

	deps     CommandDeps
	sink     *sink.Writer
	seenDB   *sqlx.DB
	registry *sources.Registry
}

// Close releases the match sink and the seen-item database.
func (s *RunnerSet) Close() {
	if s.sink != nil {
		if err := s.sink.Close(); err != nil {
			s.deps.Logger.Error("Failed to close match output", "error", err)
		}
	}
	if s.seenDB != nil {
		if err := s.seenDB.Close(); err != nil {
			s.deps.Logger.Error("Failed to close seen database", "error", err)
		}
	}
}

// RunAll executes every runner sequentially and returns one summary per
// source. A fatal run does not stop the remaining sources; cancelling ctx
// does.
func (s *RunnerSet) RunAll(ctx context.Context) []pipeline.Summary {
	summaries := make([]pipeline.Summary, 0, len(s.Runners))

	for _, runner := range s.Runners {
		if ctx.Err() != nil {
			break
		}

		summary, _ := runner.Run(ctx)
		summaries = append(summaries, summary)
	}

	return summaries
}

// BuildRunners assembles one pipeline runner per selected source: the source
// itself on the shared HTTP client, its matcher, its fetch scheduler, its
// progress tracker, and the shared match sink. Callers own the returned set
// and must Close it.
func BuildRunners(deps CommandDeps, opts BuildOptions) (*RunnerSet, error) {
	monitorCfg := deps.Config.GetMonitorConfig()

	configs, err := selectSources(monitorCfg.SourcesFile, opts.SourceID)
	if err != nil {
		return nil, err
	}

	writer, err := sink.NewWriter(monitorCfg.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open match output: %w", err)
	}

	set := &RunnerSet{
		Metrics:  metrics.NewMetrics(),
		deps:     deps,
		sink:     writer,
		registry: sources.NewRegistry(),
	}

	client := sources.NewClient(sources.ClientConfig{
		Timeout:     monitorCfg.RequestTimeout,
		UserAgent:   monitorCfg.UserAgent,
		MaxRetries:  monitorCfg.MaxRetries,
		RetryDelay:  monitorCfg.RetryDelay,
		MaxBodySize: int64(monitorCfg.MaxBodySize),
	})

	for i := range configs {
		runner, buildErr := set.buildRunner(&configs[i], client, monitorCfg, opts)
		if buildErr != nil {
			set.Close()
			return nil, fmt.Errorf("failed to build runner for source %s: %w", configs[i].ID, buildErr)
		}
		set.Runners = append(set.Runners, runner)
	}

	return set, nil
}

// selectSources loads the sources file and narrows it to the requested
// source, or to the enabled sources when none is named.
func selectSources(sourcesFile, sourceID string) ([]sources.Config, error) {
	configs, err := sources.NewLoader(sourcesFile).Load()
	if err != nil {
		return nil, err
	}

	if sourceID != "" {
		for i := range configs {
			if configs[i].ID == sourceID {
				return configs[i : i+1], nil
			}
		}
		return nil, fmt.Errorf("%w: %s", sources.ErrUnknownSource, sourceID)
	}

	enabled := make([]sources.Config, 0, len(configs))
	for i := range configs {
		if configs[i].IsEnabled() {
			enabled = append(enabled, configs[i])
		}
	}
	if len(enabled) == 0 {
		return nil, sources.ErrNoSources
	}

	return enabled, nil
}

// buildRunner wires the per-source pieces around the shared client and sink.
func (s *RunnerSet) buildRunner(
	cfg *sources.Config,
	client *sources.Client,
	monitorCfg *monitor.Config,
	opts BuildOptions,
) (*pipeline.Runner, error) {
	source, err := newSource(cfg, client)
	if err != nil {
		return nil, err
	}

	// Two entries sharing an ID would also share checkpoint state; reject the
	// second one instead of corrupting progress.
	if err := s.registry.Register(source); err != nil {
		return nil, err
	}

	m, err := newMatcher(cfg, monitorCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build matcher: %w", err)
	}

	tracker, err := s.newTracker(source, monitorCfg)
	if err != nil {
		return nil, err
	}

	scheduler := fetch.NewScheduler(source, s.deps.Logger, fetch.Config{
		MaxConcurrency:    monitorCfg.MaxConcurrency,
		RandomDelayMin:    monitorCfg.RandomDelayMin,
		RandomDelayMax:    monitorCfg.RandomDelayMax,
		RequestsPerSecond: monitorCfg.RequestsPerSecond,
	})

	runnerCfg := pipeline.Config{FetchLimit: resolveFetchLimit(cfg, monitorCfg, opts)}

	return pipeline.NewRunner(runnerCfg, source, scheduler, m, s.sink, tracker, s.Metrics, s.deps.Logger), nil
}

// newSource constructs the source implementation for the entry's kind.
func newSource(cfg *sources.Config, client *sources.Client) (sources.Source, error) {
	switch cfg.Kind {
	case constants.SourceKindArchive:
		return pastebin.New(pastebin.Config{ID: cfg.ID, BaseURL: cfg.URL}, client), nil
	case constants.SourceKindChannel:
		return telegram.New(telegram.Config{
			ID:       cfg.ID,
			Channel:  cfg.Channel,
			TokenEnv: cfg.TokenEnv,
		}, client)
	default:
		return nil, fmt.Errorf("%w: %q", sources.ErrInvalidSourceKind, cfg.Kind)
	}
}

// newMatcher builds the source's matcher from its overrides or the global
// criteria. Channel sources with no configured patterns extract onion links.
func newMatcher(cfg *sources.Config, monitorCfg *monitor.Config) (*matcher.Matcher, error) {
	keywords := monitorCfg.Keywords
	if len(cfg.Keywords) > 0 {
		keywords = cfg.Keywords
	}

	patterns := monitorCfg.URLPatterns
	if len(cfg.URLPatterns) > 0 {
		patterns = cfg.URLPatterns
	}
	if len(patterns) == 0 && cfg.Kind == constants.SourceKindChannel {
		patterns = []string{matcher.OnionURLPattern}
	}

	return matcher.New(keywords, patterns)
}

// newTracker selects the progress tracker by the source's ordering: a scalar
// watermark for ordered sources, the shared seen-item store otherwise.
func (s *RunnerSet) newTracker(source sources.Source, monitorCfg *monitor.Config) (pipeline.SeenTracker, error) {
	if source.Ordered() {
		path := filepath.Join(monitorCfg.StateDir, source.ID()+constants.CheckpointFileSuffix)
		return pipeline.NewWatermarkTracker(checkpoint.NewStore(path, s.deps.Logger)), nil
	}

	if s.seenDB == nil {
		db, err := seenstore.NewConnection(filepath.Join(monitorCfg.StateDir, constants.SeenDBFileName))
		if err != nil {
			return nil, fmt.Errorf("failed to open seen database: %w", err)
		}
		s.seenDB = db
	}

	repo := seenstore.NewRepository(s.seenDB)
	return pipeline.NewSeenSetTracker(repo, source.ID(), monitorCfg.SeenCapacity), nil
}

// resolveFetchLimit applies the override chain: command flag, then the
// source entry, then the global monitor configuration.
func resolveFetchLimit(cfg *sources.Config, monitorCfg *monitor.Config, opts BuildOptions) int {
	if opts.FetchLimit > 0 {
		return opts.FetchLimit
	}
	if cfg.FetchLimit > 0 {
		return cfg.FetchLimit
	}
	return monitorCfg.FetchLimit
}
