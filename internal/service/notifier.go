package service

import (
	"context"
	"fmt"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/repository"
)

// notifier fans booking transitions out to in-app notifications and email.
// Every delivery is best-effort: failures are logged and dropped.
type notifier struct {
	noteRepo  repository.NotificationRepository
	emailSvc  EmailService
	directory PartyDirectory
}

func newNotifier(noteRepo repository.NotificationRepository, emailSvc EmailService, directory PartyDirectory) *notifier {
	return &notifier{noteRepo: noteRepo, emailSvc: emailSvc, directory: directory}
}

func (n *notifier) lookup(ctx context.Context, id string) *domain.Party {
	if n.directory == nil {
		return nil
	}
	p, err := n.directory.Lookup(ctx, id)
	if err != nil {
		logger.Debug("Party lookup failed", "identity", id, "error", err)
		return nil
	}
	return p
}

// displayName falls back to the identity itself when the directory has no
// name for it.
func (n *notifier) displayName(ctx context.Context, id string) string {
	if p := n.lookup(ctx, id); p != nil && p.Name != "" {
		return p.Name
	}
	return id
}

func (n *notifier) create(ctx context.Context, userID, title, message, kind string, req *domain.BookingRequest) {
	if n.noteRepo == nil {
		return
	}
	note := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Attributes: map[string]string{
			"type":       kind,
			"request_id": req.ID,
			"listing_id": req.ListingID,
		},
	}
	if err := n.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to store notification", "user_id", userID, "type", kind, "error", err)
	}
}

func (n *notifier) bookingRequested(ctx context.Context, req *domain.BookingRequest) {
	n.create(ctx, req.OwnerID, "New Booking Request",
		fmt.Sprintf("%s wants to book %s", req.RequesterName, req.ListingName),
		domain.NotificationTypeBookingRequested, req)

	if n.emailSvc == nil {
		return
	}
	if owner := n.lookup(ctx, req.OwnerID); owner != nil && owner.Email != "" {
		if err := n.emailSvc.SendBookingRequested(ctx, owner.Email, req.RequesterName, req.ListingName); err != nil {
			logger.Warn("Failed to email booking request", "request_id", req.ID, "error", err)
		}
	}
}

func (n *notifier) bookingDecided(ctx context.Context, req *domain.BookingRequest) {
	var title, message, kind string
	switch req.Status {
	case domain.RequestStatusApproved:
		title, kind = "Booking Approved", domain.NotificationTypeBookingApproved
		message = fmt.Sprintf("Your request for %s was accepted. You can now chat with the owner.", req.ListingName)
	case domain.RequestStatusRejected:
		title, kind = "Booking Rejected", domain.NotificationTypeBookingRejected
		message = fmt.Sprintf("Your request for %s was declined", req.ListingName)
	case domain.RequestStatusItemUnavailable:
		title, kind = "Item No Longer Available", domain.NotificationTypeItemUnavailable
		message = fmt.Sprintf("%s is no longer available", req.ListingName)
	default:
		return
	}
	n.create(ctx, req.RequesterID, title, message, kind, req)

	if n.emailSvc == nil {
		return
	}
	if requester := n.lookup(ctx, req.RequesterID); requester != nil && requester.Email != "" {
		if err := n.emailSvc.SendBookingDecision(ctx, requester.Email, req.ListingName, req.Status); err != nil {
			logger.Warn("Failed to email booking decision", "request_id", req.ID, "error", err)
		}
	}
}
