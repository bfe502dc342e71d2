package service

import (
	"context"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/repository"
)

type ListingService interface {
	CreateListing(ctx context.Context, ownerID string, listing *domain.Listing) (*domain.Listing, error)
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	ListListings(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, error)
	ListMyListings(ctx context.Context, ownerID string) ([]domain.Listing, error)
	DeleteListing(ctx context.Context, actor domain.Actor, id string) error
}

// BookingService is the booking coordinator: the only writer of request
// status and of listing status.
type BookingService interface {
	RequestBooking(ctx context.Context, requesterID, listingID string) (*domain.BookingRequest, error)
	AcceptRequest(ctx context.Context, ownerID, requestID string) (*domain.BookingRequest, error)
	RejectRequest(ctx context.Context, ownerID, requestID string) (*domain.BookingRequest, error)
	DeriveChatEligibility(ctx context.Context, requestID string) (bool, error)
	// SweepListing moves every Pending request on a locked listing, other
	// than winnerID, to Item Unavailable. Safe to run any number of times.
	SweepListing(ctx context.Context, listingID, winnerID string) (int, error)

	GetRequest(ctx context.Context, actorID, requestID string) (*domain.BookingRequest, error)
	ListIncoming(ctx context.Context, ownerID string) ([]domain.BookingRequest, error)
	ListOutgoing(ctx context.Context, requesterID string) ([]domain.BookingRequest, error)
}

type ChannelService interface {
	PostMessage(ctx context.Context, senderID, requestID, text string) (*domain.Message, error)
	ListMessages(ctx context.Context, readerID, requestID string) ([]domain.Message, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
}

type ImageStorageService interface {
	GetUploadURL(ctx context.Context, ownerID, listingID, filename, contentType string) (uploadURL, key string, expiresAt int64, err error)
	ConfirmImage(ctx context.Context, ownerID, listingID, key string) (*domain.Listing, error)
	GetDownloadURL(ctx context.Context, key string) (string, int64, error)
}

type EmailService interface {
	SendBookingRequested(ctx context.Context, ownerEmail, requesterName, listingName string) error
	SendBookingDecision(ctx context.Context, requesterEmail, listingName string, status domain.RequestStatus) error
}

// PartyDirectory resolves an identity to a display name and contact address.
type PartyDirectory interface {
	Lookup(ctx context.Context, id string) (*domain.Party, error)
}
