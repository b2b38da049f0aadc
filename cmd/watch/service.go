// Package watch implements the watch command: crawl passes on a cron
// schedule until interrupted.
package watch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	cmdcommon "github.com/jonesrussell/north-cloud/signal-crawler/cmd/common"
	"github.com/jonesrussell/north-cloud/signal-crawler/internal/logger"
)

// Service runs crawl passes over a runner set on a cron schedule.
type Service struct {
	logger     logger.Interface
	runners    *cmdcommon.RunnerSet
	schedule   string
	cron       *cron.Cron
	cronParser cron.Parser
	done       chan struct{}
	doneOnce   sync.Once   // Ensures done channel is only closed once
	running    atomic.Bool // Guards against overlapping passes
}

// NewService creates a new watch service instance.
func NewService(
	log logger.Interface,
	runners *cmdcommon.RunnerSet,
	schedule string,
	done chan struct{},
) *Service {
	// Use standard 5-field cron parser (minute hour day month weekday)
	cronParser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(cronParser), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	return &Service{
		logger:     log,
		runners:    runners,
		schedule:   schedule,
		cron:       c,
		cronParser: cronParser,
		done:       done,
	}
}

// Start registers the schedule and begins the cron loop. The first pass runs
// immediately so a fresh deployment does not wait for the first tick.
func (s *Service) Start(ctx context.Context) error {
	// Parse the cron schedule up front to get next run time for logging
	schedule, err := s.cronParser.Parse(s.schedule)
	if err != nil {
		return fmt.Errorf("failed to parse watch schedule %q: %w", s.schedule, err)
	}

	if _, addErr := s.cron.AddFunc(s.schedule, func() {
		s.runPass(ctx)
	}); addErr != nil {
		return fmt.Errorf("failed to register watch schedule: %w", addErr)
	}

	nextRun := schedule.Next(time.Now())
	s.logger.Info("Watch schedule registered",
		"schedule", s.schedule,
		"sources", len(s.runners.Runners),
		"next_run", nextRun.Format("2006-01-02 15:04:05"))

	go s.runPass(ctx)
	s.cron.Start()

	return nil
}

// Stop halts the cron loop and waits for an in-flight pass to finish, bounded
// by ctx.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping watch service")

	cronCtx := s.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-ctx.Done():
		return fmt.Errorf("waiting for running pass: %w", ctx.Err())
	}

	// Signal completion (safe to call multiple times)
	s.doneOnce.Do(func() {
		close(s.done)
	})

	s.logger.Info("Watch service stopped")
	return nil
}

// runPass executes one crawl pass over every runner. A trigger that arrives
// while the previous pass is still running is skipped.
func (s *Service) runPass(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("Previous crawl pass still running, skipping this trigger")
		return
	}
	defer s.running.Store(false)

	start := time.Now()
	summaries := s.runners.RunAll(ctx)

	failed := 0
	written := 0
	for i := range summaries {
		summary := &summaries[i]
		if summary.Failed() {
			failed++
			s.logger.Error("Crawl failed for source", "source", summary.Source, "error", summary.Err)
		}
		written += summary.RecordsWritten
	}

	s.logger.Info("Crawl pass complete",
		"sources", len(summaries),
		"failed", failed,
		"records_written", written,
		"duration", time.Since(start))
}
