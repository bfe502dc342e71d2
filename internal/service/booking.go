package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/events"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/metrics"
	"farmhub-backend/internal/repository"
)

type bookingService struct {
	listingRepo repository.ListingRepository
	bookingRepo repository.BookingRepository
	notifier    *notifier
	publisher   events.Publisher
}

func NewBookingService(
	listingRepo repository.ListingRepository,
	bookingRepo repository.BookingRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	directory PartyDirectory,
	publisher events.Publisher,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		listingRepo: listingRepo,
		bookingRepo: bookingRepo,
		notifier:    newNotifier(noteRepo, emailSvc, directory),
		publisher:   publisher,
	}
}

func (s *bookingService) RequestBooking(ctx context.Context, requesterID, listingID string) (req *domain.BookingRequest, err error) {
	const method = "bookingService.RequestBooking"
	logger.EnterMethod(method, "requesterID", requesterID, "listingID", listingID)
	defer func() { s.finish(method, "request", err) }()

	if requesterID == "" || listingID == "" {
		return nil, ErrInvalidInput
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrListingUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	if listing.Status != domain.ListingStatusAvailable {
		return nil, ErrListingUnavailable
	}
	if listing.OwnerID == requesterID {
		return nil, ErrInvalidActor
	}

	req = &domain.BookingRequest{
		ListingID:     listing.ID,
		ListingName:   listing.Name,
		ListingImage:  listing.ImageRef,
		Kind:          listing.Kind,
		OwnerID:       listing.OwnerID,
		RequesterID:   requesterID,
		RequesterName: s.notifier.displayName(ctx, requesterID),
		Status:        domain.RequestStatusPending,
	}
	if err := s.bookingRepo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// The listing may have been locked between the availability check and
	// the write above, after the winner's sweep already ran.
	if repaired, err := s.repairIfLocked(ctx, req); err != nil || repaired != nil {
		return repaired, err
	}

	s.notifier.bookingRequested(ctx, req)
	s.publish(ctx, events.Event{
		Type:      events.TypeBookingRequested,
		Key:       req.ListingID,
		ListingID: req.ListingID,
		RequestID: req.ID,
		ActorID:   requesterID,
		Status:    string(req.Status),
	})
	logger.Info("Booking requested", "request_id", req.ID, "listing_id", req.ListingID, "requester_id", requesterID)
	return req, nil
}

// repairIfLocked re-reads the listing of a freshly written request. If the
// listing is no longer Available the request is moved to Item Unavailable
// and ErrListingUnavailable is returned. A nil request and nil error mean
// the listing is still open.
func (s *bookingService) repairIfLocked(ctx context.Context, req *domain.BookingRequest) (*domain.BookingRequest, error) {
	current, err := s.listingRepo.GetByID(ctx, req.ListingID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		// The request stays Pending; the repair job sweeps it if the
		// listing turns out to be locked.
		logger.Warn("Listing re-read failed after booking request", "request_id", req.ID, "listing_id", req.ListingID, "error", err)
		return nil, nil
	case current.Status == domain.ListingStatusAvailable:
		return nil, nil
	}

	err = s.bookingRepo.Transition(ctx, req.ID, domain.RequestStatusPending, domain.RequestStatusItemUnavailable)
	if err == nil {
		logger.Transition("request", req.ID, domain.RequestStatusPending, domain.RequestStatusItemUnavailable, "reason", "listing locked during request")
		return nil, ErrListingUnavailable
	}
	if !errors.Is(err, repository.ErrConflict) {
		logger.Warn("Failed to retire request on locked listing", "request_id", req.ID, "error", err)
		return nil, ErrListingUnavailable
	}

	// Someone moved the request first. The owner may have accepted it.
	latest, gerr := s.bookingRepo.GetByID(ctx, req.ID)
	if gerr == nil && latest.Status == domain.RequestStatusApproved {
		return latest, nil
	}
	return nil, ErrListingUnavailable
}

func (s *bookingService) AcceptRequest(ctx context.Context, ownerID, requestID string) (req *domain.BookingRequest, err error) {
	const method = "bookingService.AcceptRequest"
	logger.EnterMethod(method, "ownerID", ownerID, "requestID", requestID)
	defer func() { s.finish(method, "accept", err) }()

	req, err = s.bookingRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req.Status != domain.RequestStatusPending {
		return nil, ErrStaleRequest
	}
	if req.OwnerID != ownerID {
		return nil, ErrInvalidActor
	}

	lockTo := req.Kind.LockedStatus()
	if !domain.ListingStatusAvailable.CanTransitionTo(lockTo) {
		return nil, ErrInvalidInput
	}

	err = s.bookingRepo.LockAndApprove(ctx, req.ListingID, lockTo, req.ID)
	var conflict *repository.ConflictError
	if errors.As(err, &conflict) {
		if conflict.Kind == repository.KindListing {
			if _, gerr := s.listingRepo.GetByID(ctx, req.ListingID); errors.Is(gerr, repository.ErrNotFound) {
				return nil, ErrListingUnavailable
			}
			return nil, ErrListingAlreadyLocked
		}
		return nil, ErrStaleRequest
	}
	if err != nil {
		return nil, fmt.Errorf("lock listing: %w", err)
	}

	now := time.Now().UTC()
	req.Status = domain.RequestStatusApproved
	req.UpdatedOn = now
	logger.Transition("listing", req.ListingID, domain.ListingStatusAvailable, lockTo, "request_id", req.ID)
	logger.Transition("request", req.ID, domain.RequestStatusPending, domain.RequestStatusApproved)

	// The sweep is part of the operation but its failures are not the
	// caller's: the lock above already committed.
	if swept, serr := s.sweepSiblings(ctx, req.ListingID, req.ID); serr != nil {
		logger.Warn("Sibling sweep incomplete", "listing_id", req.ListingID, "swept", swept, "error", serr)
	}

	s.notifier.bookingDecided(ctx, req)
	s.publish(ctx, events.Event{
		Type:      events.TypeBookingAccepted,
		Key:       req.ListingID,
		ListingID: req.ListingID,
		RequestID: req.ID,
		ActorID:   ownerID,
		Status:    string(req.Status),
	})
	s.publish(ctx, events.Event{
		Type:      events.TypeListingLocked,
		Key:       req.ListingID,
		ListingID: req.ListingID,
		RequestID: req.ID,
		ActorID:   ownerID,
		Status:    string(lockTo),
	})
	return req, nil
}

func (s *bookingService) RejectRequest(ctx context.Context, ownerID, requestID string) (req *domain.BookingRequest, err error) {
	const method = "bookingService.RejectRequest"
	logger.EnterMethod(method, "ownerID", ownerID, "requestID", requestID)
	defer func() { s.finish(method, "reject", err) }()

	req, err = s.bookingRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if req.OwnerID != ownerID {
		return nil, ErrInvalidActor
	}
	switch req.Status {
	case domain.RequestStatusRejected:
		return req, nil
	case domain.RequestStatusPending:
	default:
		return nil, ErrStaleRequest
	}

	err = s.bookingRepo.Transition(ctx, req.ID, domain.RequestStatusPending, domain.RequestStatusRejected)
	if errors.Is(err, repository.ErrConflict) {
		latest, gerr := s.bookingRepo.GetByID(ctx, req.ID)
		if gerr == nil && latest.Status == domain.RequestStatusRejected {
			return latest, nil
		}
		return nil, ErrStaleRequest
	}
	if err != nil {
		return nil, fmt.Errorf("reject request: %w", err)
	}

	req.Status = domain.RequestStatusRejected
	req.UpdatedOn = time.Now().UTC()

	s.notifier.bookingDecided(ctx, req)
	s.publish(ctx, events.Event{
		Type:      events.TypeBookingRejected,
		Key:       req.ListingID,
		ListingID: req.ListingID,
		RequestID: req.ID,
		ActorID:   ownerID,
		Status:    string(req.Status),
	})
	logger.Transition("request", req.ID, domain.RequestStatusPending, domain.RequestStatusRejected, "listing_id", req.ListingID)
	return req, nil
}

func (s *bookingService) DeriveChatEligibility(ctx context.Context, requestID string) (bool, error) {
	req, err := s.bookingRepo.GetByID(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("load request: %w", err)
	}
	return req.Status == domain.RequestStatusApproved, nil
}

func (s *bookingService) SweepListing(ctx context.Context, listingID, winnerID string) (int, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
	case err != nil:
		return 0, fmt.Errorf("load listing: %w", err)
	case !listing.Status.IsLocked():
		return 0, nil
	}
	return s.sweepSiblings(ctx, listingID, winnerID)
}

// sweepSiblings moves every Pending request on the listing except winnerID
// to Item Unavailable. Requests that already left Pending are skipped, so
// the sweep can be repeated. The returned error joins per-request failures.
func (s *bookingService) sweepSiblings(ctx context.Context, listingID, winnerID string) (int, error) {
	pending, err := s.bookingRepo.ListByListing(ctx, listingID, domain.RequestStatusPending)
	if err != nil {
		metrics.SweepTransitions.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("list pending requests: %w", err)
	}

	swept := 0
	var errs []error
	for i := range pending {
		sibling := &pending[i]
		if sibling.ID == winnerID {
			continue
		}
		err := s.bookingRepo.Transition(ctx, sibling.ID, domain.RequestStatusPending, domain.RequestStatusItemUnavailable)
		switch {
		case err == nil:
			swept++
			logger.Transition("request", sibling.ID, domain.RequestStatusPending, domain.RequestStatusItemUnavailable, "listing_id", listingID, "winner_id", winnerID)
			metrics.SweepTransitions.WithLabelValues("swept").Inc()
			sibling.Status = domain.RequestStatusItemUnavailable
			s.notifier.bookingDecided(ctx, sibling)
		case errors.Is(err, repository.ErrConflict):
			metrics.SweepTransitions.WithLabelValues("skipped").Inc()
		default:
			metrics.SweepTransitions.WithLabelValues("failed").Inc()
			logger.Warn("Failed to sweep request", "listing_id", listingID, "request_id", sibling.ID, "error", err)
			errs = append(errs, fmt.Errorf("sweep %s: %w", sibling.ID, err))
		}
	}
	return swept, errors.Join(errs...)
}

func (s *bookingService) GetRequest(ctx context.Context, actorID, requestID string) (*domain.BookingRequest, error) {
	req, err := s.bookingRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	if !req.IsParty(actorID) {
		return nil, ErrInvalidActor
	}
	return req, nil
}

func (s *bookingService) ListIncoming(ctx context.Context, ownerID string) ([]domain.BookingRequest, error) {
	return s.bookingRepo.ListByOwner(ctx, ownerID)
}

func (s *bookingService) ListOutgoing(ctx context.Context, requesterID string) ([]domain.BookingRequest, error) {
	return s.bookingRepo.ListByRequester(ctx, requesterID)
}

func (s *bookingService) publish(ctx context.Context, ev events.Event) {
	ev.OccurredAt = time.Now().UTC()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		logger.Warn("Failed to publish booking event", "type", ev.Type, "listing_id", ev.ListingID, "error", err)
	}
}

func (s *bookingService) finish(method, operation string, err error) {
	metrics.BookingOutcomes.WithLabelValues(operation, outcome(err)).Inc()
	if err != nil {
		logger.ExitMethodWithError(method, err, IsExpected(err))
		return
	}
	logger.ExitMethod(method)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, ErrListingUnavailable):
		return metrics.OutcomeListingUnavailable
	case errors.Is(err, ErrInvalidActor):
		return metrics.OutcomeInvalidActor
	case errors.Is(err, ErrStaleRequest):
		return metrics.OutcomeStaleRequest
	case errors.Is(err, ErrListingAlreadyLocked):
		return metrics.OutcomeListingAlreadyLocked
	}
	return metrics.OutcomeError
}
