// Package jobs exposes the three catalog batch jobs and runs them under the catalog lock.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/cinebox-platform/internal/platform/analytics"
	"github.com/example/cinebox-platform/services/movie-batch/internal/joblock"
	"github.com/example/cinebox-platform/services/movie-batch/internal/movie"
	"github.com/example/cinebox-platform/services/movie-batch/internal/pipeline"
)

const (
	DailyCatalogRefreshJob = "daily_catalog_refresh"
	YearBoundaryRefreshJob = "year_boundary_refresh"
	LifecycleAdvanceJob    = "lifecycle_advance"
)

// catalogLockKey is shared by every job: they all write the same movie rows.
const catalogLockKey = "movie-catalog"

const defaultLockTTL = 2 * time.Hour

var (
	ErrUnknownJob = errors.New("jobs: unknown job")
	// ErrJobBusy means another catalog job holds the lock; the run was skipped.
	ErrJobBusy = errors.New("jobs: catalog job already running")
)

// Names lists the job names in schedule order.
func Names() []string {
	return []string{DailyCatalogRefreshJob, LifecycleAdvanceJob, YearBoundaryRefreshJob}
}

type Refresher interface {
	Run(ctx context.Context, year int) (pipeline.Report, error)
}

type Advancer interface {
	Advance(ctx context.Context, today time.Time) (int, error)
}

// EventPublisher receives one event per job outcome. *analytics.Publisher satisfies it.
type EventPublisher interface {
	Publish(subject, eventName string, props map[string]any)
}

// Result is what a finished job reports back to its trigger.
type Result struct {
	Job      string           `json:"job"`
	Report   *pipeline.Report `json:"report,omitempty"`
	Advanced *int             `json:"advanced,omitempty"`
}

type Orchestrator struct {
	Log       *zap.Logger
	Refresher Refresher
	Advancer  Advancer
	// Locker is optional; without it runs are not serialized beyond the schedule.
	Locker   joblock.Locker
	LockTTL  time.Duration
	Location *time.Location
	Now      func() time.Time
	// Events is optional.
	Events EventPublisher
}

// DailyCatalogRefresh refreshes movies opening in the current year.
func (o *Orchestrator) DailyCatalogRefresh(ctx context.Context) (pipeline.Report, error) {
	return o.refresh(ctx, DailyCatalogRefreshJob, o.now().Year())
}

// YearBoundaryRefresh refreshes movies opening next year, ahead of the calendar flip.
func (o *Orchestrator) YearBoundaryRefresh(ctx context.Context) (pipeline.Report, error) {
	return o.refresh(ctx, YearBoundaryRefreshJob, o.now().Year()+1)
}

// LifecycleAdvance promotes released UPCOMING movies using today's date.
func (o *Orchestrator) LifecycleAdvance(ctx context.Context) (int, error) {
	var n int
	today := movie.DateOf(o.now())
	err := o.withLock(ctx, LifecycleAdvanceJob, func(ctx context.Context) (map[string]any, error) {
		var err error
		n, err = o.Advancer.Advance(ctx, today)
		return map[string]any{"today": movie.FormatDate(today), "advanced": n}, err
	})
	return n, err
}

// Run dispatches by job name.
func (o *Orchestrator) Run(ctx context.Context, job string) (Result, error) {
	res := Result{Job: job}
	switch job {
	case DailyCatalogRefreshJob:
		report, err := o.DailyCatalogRefresh(ctx)
		res.Report = &report
		return res, err
	case YearBoundaryRefreshJob:
		report, err := o.YearBoundaryRefresh(ctx)
		res.Report = &report
		return res, err
	case LifecycleAdvanceJob:
		n, err := o.LifecycleAdvance(ctx)
		res.Advanced = &n
		return res, err
	}
	return res, fmt.Errorf("%w: %q", ErrUnknownJob, job)
}

func (o *Orchestrator) refresh(ctx context.Context, job string, year int) (pipeline.Report, error) {
	var report pipeline.Report
	err := o.withLock(ctx, job, func(ctx context.Context) (map[string]any, error) {
		var err error
		report, err = o.Refresher.Run(ctx, year)
		return map[string]any{
			"year":    year,
			"listed":  report.Listed,
			"saved":   report.Saved,
			"skipped": report.Skipped,
			"dropped": report.Dropped(),
		}, err
	})
	return report, err
}

func (o *Orchestrator) withLock(ctx context.Context, job string, fn func(context.Context) (map[string]any, error)) error {
	log := o.logger().With(zap.String("job", job))
	start := time.Now()

	if o.Locker != nil {
		ttl := o.LockTTL
		if ttl <= 0 {
			ttl = defaultLockTTL
		}
		token, ok, err := o.Locker.Acquire(ctx, catalogLockKey, ttl)
		if err != nil {
			log.Error("job lock unavailable", zap.Error(err))
			return fmt.Errorf("%s: acquire lock: %w", job, err)
		}
		if !ok {
			log.Warn("job skipped, catalog lock held")
			o.publish(analytics.SubjectBatchJobSkipped, "batch_job_skipped", map[string]any{"job": job})
			return fmt.Errorf("%s: %w", job, ErrJobBusy)
		}
		defer func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := o.Locker.Release(rctx, catalogLockKey, token); err != nil {
				log.Warn("job lock release failed", zap.Error(err))
			}
		}()
	}

	log.Info("job started")
	props, err := fn(ctx)
	if props == nil {
		props = map[string]any{}
	}
	props["job"] = job
	props["took_ms"] = time.Since(start).Milliseconds()
	if err != nil {
		log.Error("job failed", zap.Duration("took", time.Since(start)), zap.Error(err))
		props["error"] = err.Error()
		o.publish(analytics.SubjectBatchJobFailed, "batch_job_failed", props)
		return fmt.Errorf("%s: %w", job, err)
	}
	log.Info("job finished", zap.Duration("took", time.Since(start)))
	o.publish(analytics.SubjectBatchJobFinished, "batch_job_finished", props)
	return nil
}

func (o *Orchestrator) publish(subject, eventName string, props map[string]any) {
	if o.Events != nil {
		o.Events.Publish(subject, eventName, props)
	}
}

func (o *Orchestrator) now() time.Time {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	if o.Location != nil {
		return now().In(o.Location)
	}
	return now()
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}
