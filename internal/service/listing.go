package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/repository"
)

type listingService struct {
	listingRepo repository.ListingRepository
	bookingRepo repository.BookingRepository
	notifier    *notifier
}

func NewListingService(
	listingRepo repository.ListingRepository,
	bookingRepo repository.BookingRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
	directory PartyDirectory,
) ListingService {
	return &listingService{
		listingRepo: listingRepo,
		bookingRepo: bookingRepo,
		notifier:    newNotifier(noteRepo, emailSvc, directory),
	}
}

func (s *listingService) CreateListing(ctx context.Context, ownerID string, l *domain.Listing) (*domain.Listing, error) {
	logger.EnterMethod("listingService.CreateListing", "ownerID", ownerID)

	l.Name = strings.TrimSpace(l.Name)
	switch {
	case ownerID == "":
		return nil, ErrInvalidActor
	case l.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case !l.Kind.Valid():
		return nil, fmt.Errorf("%w: offer kind must be Rent or Sale", ErrInvalidInput)
	case l.Price < 0:
		return nil, fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}

	l.ID = ""
	l.OwnerID = ownerID
	l.OwnerName = s.notifier.displayName(ctx, ownerID)
	l.Status = domain.ListingStatusAvailable
	l.CreatedOn = time.Now().UTC()

	if err := s.listingRepo.Create(ctx, l); err != nil {
		logger.ExitMethodWithError("listingService.CreateListing", err, false)
		return nil, fmt.Errorf("create listing: %w", err)
	}
	logger.Info("Listing created", "listing_id", l.ID, "owner_id", ownerID, "kind", l.Kind)
	logger.ExitMethod("listingService.CreateListing", "listingID", l.ID)
	return l, nil
}

func (s *listingService) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	return s.listingRepo.GetByID(ctx, id)
}

func (s *listingService) ListListings(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown offer kind %q", ErrInvalidInput, filter.Kind)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	return s.listingRepo.List(ctx, filter)
}

func (s *listingService) ListMyListings(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	return s.listingRepo.ListByOwner(ctx, ownerID)
}

// DeleteListing removes a listing. Requests still Pending on it can never be
// accepted afterwards, so they are retired to Item Unavailable.
func (s *listingService) DeleteListing(ctx context.Context, actor domain.Actor, id string) error {
	logger.EnterMethod("listingService.DeleteListing", "actorID", actor.ID, "listingID", id)

	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.OwnerID != actor.ID && !actor.Admin {
		return ErrInvalidActor
	}
	if err := s.listingRepo.Delete(ctx, id); err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.ExitMethodWithError("listingService.DeleteListing", err, false)
		return fmt.Errorf("delete listing: %w", err)
	}

	pending, err := s.bookingRepo.ListByListing(ctx, id, domain.RequestStatusPending)
	if err != nil {
		logger.Warn("Could not list requests of deleted listing", "listing_id", id, "error", err)
		return nil
	}
	for i := range pending {
		req := &pending[i]
		err := s.bookingRepo.Transition(ctx, req.ID, domain.RequestStatusPending, domain.RequestStatusItemUnavailable)
		if err != nil {
			if !errors.Is(err, repository.ErrConflict) {
				logger.Warn("Failed to retire request of deleted listing", "listing_id", id, "request_id", req.ID, "error", err)
			}
			continue
		}
		req.Status = domain.RequestStatusItemUnavailable
		s.notifier.bookingDecided(ctx, req)
	}

	logger.Info("Listing deleted", "listing_id", id, "actor_id", actor.ID, "admin", actor.Admin)
	logger.ExitMethod("listingService.DeleteListing")
	return nil
}
