package repository

import (
	"context"
	"errors"
	"fmt"

	"farmhub-backend/internal/domain"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record changed concurrently")
)

// ConflictError names the record whose precondition failed in a
// conditional write. Nothing in the write was applied.
type ConflictError struct {
	Kind string
	ID   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s changed concurrently", e.Kind, e.ID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

const (
	KindListing = "listing"
	KindRequest = "request"
	KindChannel = "channel"
)

type ListingFilter struct {
	Kind   domain.OfferKind
	Status domain.ListingStatus
}

type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	// List returns listings newest first.
	List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error)
	ListLocked(ctx context.Context) ([]domain.Listing, error)
	SetImage(ctx context.Context, id, imageRef string) error
	Delete(ctx context.Context, id string) error
}

type BookingRepository interface {
	Create(ctx context.Context, req *domain.BookingRequest) error
	GetByID(ctx context.Context, id string) (*domain.BookingRequest, error)
	// ListByListing returns requests for a listing; an empty status means any.
	ListByListing(ctx context.Context, listingID string, status domain.RequestStatus) ([]domain.BookingRequest, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.BookingRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.BookingRequest, error)
	// Transition moves a request from one status to another only if it is
	// still in the from status. Returns a *ConflictError otherwise.
	Transition(ctx context.Context, id string, from, to domain.RequestStatus) error
	// LockAndApprove atomically moves the listing Available -> lockTo and the
	// request Pending -> Approved. If either precondition fails nothing is
	// written and a *ConflictError names the failing record.
	LockAndApprove(ctx context.Context, listingID string, lockTo domain.ListingStatus, requestID string) error
}

type ChannelRepository interface {
	// Append allocates the next sequence number of the request's channel and
	// stores msg in one conditional write. Returns a *ConflictError when
	// another writer took the sequence number first.
	Append(ctx context.Context, msg *domain.Message) error
	// List returns messages ordered by (sent_at, seq).
	List(ctx context.Context, requestID string) ([]domain.Message, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID string) error
}
