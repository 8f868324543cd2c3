// Package schedule maps job names to cron expressions and drives them.
package schedule

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/example/cinebox-platform/services/movie-batch/internal/jobs"
)

// Entry binds one job to one cron expression (seconds first).
type Entry struct {
	Job  string
	Spec string
}

// Table is the full trigger description, kept outside the job code.
type Table []Entry

const (
	DefaultDailyRefreshSpec        = "0 0 0 * * *"
	DefaultLifecycleAdvanceSpec    = "0 30 0 * * *"
	DefaultYearBoundaryRefreshSpec = "0 0 1 15 12 *"
)

// DefaultTable staggers the jobs: refresh at midnight, advance half an hour later, and the
// next-year refresh once a year on Dec 15 at 01:00.
func DefaultTable() Table {
	return Table{
		{Job: jobs.DailyCatalogRefreshJob, Spec: DefaultDailyRefreshSpec},
		{Job: jobs.LifecycleAdvanceJob, Spec: DefaultLifecycleAdvanceSpec},
		{Job: jobs.YearBoundaryRefreshJob, Spec: DefaultYearBoundaryRefreshSpec},
	}
}

// parser accepts six fields with seconds, plus descriptors such as @daily.
// "?" is read as "*" for day-of-month and day-of-week.
var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse reads one spec with the scheduler's parser.
func Parse(spec string) (cron.Schedule, error) {
	return parser.Parse(strings.TrimSpace(spec))
}

// Validate checks every spec parses, every job is known and no job appears twice.
func (t Table) Validate(known []string) error {
	if len(t) == 0 {
		return errors.New("schedule: empty table")
	}
	seen := make(map[string]bool, len(t))
	for _, e := range t {
		if !slices.Contains(known, e.Job) {
			return fmt.Errorf("schedule: unknown job %q", e.Job)
		}
		if seen[e.Job] {
			return fmt.Errorf("schedule: job %q scheduled twice", e.Job)
		}
		seen[e.Job] = true
		if _, err := Parse(e.Spec); err != nil {
			return fmt.Errorf("schedule: job %q spec %q: %w", e.Job, e.Spec, err)
		}
	}
	return nil
}
