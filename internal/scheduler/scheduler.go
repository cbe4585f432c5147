// Package scheduler fires the daily housekeeping sweeps at a fixed
// wall-clock hour in a configured time zone. Jobs run sequentially; each
// carries its own run ID and failure boundary, so one failing sweep never
// stops the others or the loop.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/stewardhq/steward/common/id"
	"github.com/stewardhq/steward/common/logger"
	"github.com/stewardhq/steward/core/config"
)

type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

type Scheduler struct {
	jobs []Job
	hour int
	loc  *time.Location
}

func New(cfg config.ScheduleConfig, jobs []Job) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load schedule timezone %q: %w", cfg.Timezone, err)
	}
	return &Scheduler{jobs: jobs, hour: cfg.Hour, loc: loc}, nil
}

// Run blocks until ctx is canceled, firing all jobs once per day.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := NextFire(time.Now().In(s.loc), s.hour)
		slog.InfoContext(ctx, "next scheduled sweep", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.tick(ctx)
	}
}

// NextFire returns the next daily fire time at the given hour, strictly
// after t, in t's location.
func NextFire(t time.Time, hour int) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s *Scheduler) tick(ctx context.Context) {
	for _, job := range s.jobs {
		s.runJob(ctx, job)
	}
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	runCtx := logger.WithLogFields(ctx, logger.LogFields{
		Job:   logger.Ptr(job.Name),
		RunID: logger.Ptr(id.New()),
	})

	sc := logger.StartSpan(runCtx, "steward.job."+job.Name)
	defer sc.End()
	runCtx = sc.Context()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(runCtx, "panic in scheduled job",
				"error", r,
				"stack", string(debug.Stack()))
		}
	}()

	start := time.Now()
	slog.InfoContext(runCtx, "scheduled job starting")
	if err := job.Run(runCtx); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(runCtx, "scheduled job failed", "error", err)
		return
	}
	slog.InfoContext(runCtx, "scheduled job finished", "duration_ms", time.Since(start).Milliseconds())
}
