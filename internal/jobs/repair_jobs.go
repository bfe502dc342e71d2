package jobs

import (
	"context"
	"errors"
	"fmt"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/metrics"
)

// RepairLockedListings re-runs the sibling sweep on every locked listing so
// that no request on a Rented or Sold listing stays Pending. It converges
// listings whose accept-time sweep failed part way, and requests that were
// written just as their listing locked.
func (jr *JobRunner) RepairLockedListings() {
	jr.runWithRecovery(RepairLockedListingsJob, func(ctx context.Context) error {
		swept, err := jr.repairLockedListings(ctx)
		logger.Info("Locked listing repair finished", "swept", swept)
		return err
	})
}

func (jr *JobRunner) repairLockedListings(ctx context.Context) (int, error) {
	listings, err := jr.listingRepo.ListLocked(ctx)
	if err != nil {
		return 0, fmt.Errorf("list locked listings: %w", err)
	}

	total := 0
	var errs []error
	for _, l := range listings {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		winner := ""
		approved, err := jr.bookingRepo.ListByListing(ctx, l.ID, domain.RequestStatusApproved)
		if err != nil {
			errs = append(errs, fmt.Errorf("listing %s: %w", l.ID, err))
			continue
		}
		if len(approved) > 0 {
			winner = approved[0].ID
		}
		if len(approved) > 1 {
			logger.Error("Listing has more than one approved request", "listing_id", l.ID, "approved", len(approved))
		}

		n, err := jr.booking.SweepListing(ctx, l.ID, winner)
		total += n
		if n > 0 {
			logger.Warn("Repaired pending requests on locked listing", "listing_id", l.ID, "swept", n)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("listing %s: %w", l.ID, err))
		}
	}
	metrics.RepairRuns.Inc()
	return total, errors.Join(errs...)
}
