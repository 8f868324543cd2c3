package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunFunc runs a job by name.
type RunFunc func(ctx context.Context, job string) error

// Scheduler fires the table's jobs. A job whose previous run is still going is skipped.
type Scheduler struct {
	log     *zap.Logger
	cron    *cron.Cron
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(log *zap.Logger, loc *time.Location, table Table, known []string, run RunFunc) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if run == nil {
		return nil, errors.New("schedule: run func is required")
	}
	if err := table.Validate(known); err != nil {
		return nil, err
	}

	logger := cronLogger{log: log.Sugar()}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{log: log, cron: c, entries: make(map[string]cron.EntryID, len(table)), ctx: ctx, cancel: cancel}

	for _, e := range table {
		job := e.Job
		id, err := c.AddFunc(e.Spec, func() { s.fire(job, run) })
		if err != nil {
			cancel()
			return nil, err
		}
		s.entries[job] = id
		log.Info("job scheduled", zap.String("job", job), zap.String("spec", e.Spec), zap.String("tz", loc.String()))
	}
	return s, nil
}

func (s *Scheduler) fire(job string, run RunFunc) {
	if err := run(s.ctx, job); err != nil {
		s.log.Warn("scheduled job ended with error", zap.String("job", job), zap.Error(err))
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs, cancels running ones and waits for them until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NextRuns returns the next fire time per job after from.
func (s *Scheduler) NextRuns(from time.Time) map[string]time.Time {
	out := make(map[string]time.Time, len(s.entries))
	for job, id := range s.entries {
		out[job] = s.cron.Entry(id).Schedule.Next(from)
	}
	return out
}

// RunNow fires job through the same middleware chain as a scheduled run and waits for it.
func (s *Scheduler) RunNow(job string) error {
	id, ok := s.entries[job]
	if !ok {
		return fmt.Errorf("schedule: job %q not scheduled", job)
	}
	s.cron.Entry(id).WrappedJob.Run()
	return nil
}

// cronLogger bridges cron's logr-style logger to zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
