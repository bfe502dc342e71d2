package service

import (
	"context"
	"fmt"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/repository"
)

const (
	defaultNotificationPage = 20
	maxNotificationPage     = 100
)

// notificationService is the read side of party notifications. Writes
// happen in the notifier as a side effect of booking transitions.
type notificationService struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationService(noteRepo repository.NotificationRepository) NotificationService {
	return &notificationService{noteRepo: noteRepo}
}

// GetNotifications returns one page of userID's notifications, newest
// first, and the total count. Pages are 1-based.
func (s *notificationService) GetNotifications(ctx context.Context, userID string, page, pageSize int32) ([]domain.Notification, int32, error) {
	logger.EnterMethod("notificationService.GetNotifications", "userID", userID, "page", page, "pageSize", pageSize)
	if userID == "" {
		return nil, 0, ErrInvalidInput
	}
	page = max(page, 1)
	switch {
	case pageSize < 1:
		pageSize = defaultNotificationPage
	case pageSize > maxNotificationPage:
		pageSize = maxNotificationPage
	}

	notes, total, err := s.noteRepo.List(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	logger.ExitMethod("notificationService.GetNotifications", "returned", len(notes), "total", total)
	return notes, total, nil
}

// MarkAsRead flags a notification as read. Another party's notification
// reports repository.ErrNotFound.
func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	if userID == "" || notificationID == "" {
		return ErrInvalidInput
	}
	if err := s.noteRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return fmt.Errorf("mark notification %s read: %w", notificationID, err)
	}
	return nil
}
