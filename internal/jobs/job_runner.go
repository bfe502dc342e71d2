package jobs

import (
	"context"
	"time"

	"farmhub-backend/internal/config"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/repository"
	"farmhub-backend/internal/service"
)

const RepairLockedListingsJob = "repair-locked-listings"

// Job is one named unit of background work and the cron spec it runs on.
type Job struct {
	Name string
	Spec string
	Run  func()
}

// JobRunner owns the background jobs of the marketplace.
type JobRunner struct {
	listingRepo repository.ListingRepository
	bookingRepo repository.BookingRepository
	booking     service.BookingService
	schedule    config.SchedulerConfig
	timeout     time.Duration
}

func NewJobRunner(
	listingRepo repository.ListingRepository,
	bookingRepo repository.BookingRepository,
	booking service.BookingService,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		listingRepo: listingRepo,
		bookingRepo: bookingRepo,
		booking:     booking,
		schedule:    cfg.Scheduler,
		timeout:     5 * time.Minute,
	}
}

// Jobs lists every job in the order RunAll executes them.
func (jr *JobRunner) Jobs() []Job {
	return []Job{
		{Name: RepairLockedListingsJob, Spec: jr.schedule.RepairLockedListings, Run: jr.RepairLockedListings},
	}
}

// Lookup finds a job by name.
func (jr *JobRunner) Lookup(name string) (Job, bool) {
	for _, j := range jr.Jobs() {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}

// RunAll runs every job once, in sequence.
func (jr *JobRunner) RunAll() {
	for _, j := range jr.Jobs() {
		j.Run()
	}
}

// runWithRecovery runs fn under the runner's deadline. A panic is logged
// and swallowed so one bad run never takes the cron process down.
func (jr *JobRunner) runWithRecovery(name string, fn func(ctx context.Context) error) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", name, "panic", r, "elapsed", time.Since(started))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	logger.Info("Job started", "job", name)
	if err := fn(ctx); err != nil {
		logger.Error("Job failed", "job", name, "error", err, "elapsed", time.Since(started))
		return
	}
	logger.Info("Job finished", "job", name, "elapsed", time.Since(started))
}
