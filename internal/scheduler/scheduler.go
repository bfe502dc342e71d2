package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"farmhub-backend/internal/jobs"
	"farmhub-backend/internal/logger"
)

// Scheduler fires the runner's jobs on their cron specs. Specs carry a
// seconds field and are evaluated in UTC.
type Scheduler struct {
	cron    *cron.Cron
	entries map[string]cron.EntryID
}

func NewScheduler(runner *jobs.JobRunner) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC), cron.WithSeconds()),
		entries: make(map[string]cron.EntryID),
	}
	for _, job := range runner.Jobs() {
		id, err := s.cron.AddFunc(job.Spec, job.Run)
		if err != nil {
			return nil, fmt.Errorf("schedule %s (%q): %w", job.Name, job.Spec, err)
		}
		s.entries[job.Name] = id
		logger.Info("Job scheduled", "job", job.Name, "spec", job.Spec)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler running", "jobs", len(s.entries))
}

// Stop halts scheduling and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs still running at shutdown: %w", ctx.Err())
	}
}

func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Next reports when the named job fires next.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	id, ok := s.entries[name]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}
