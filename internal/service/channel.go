package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/logger"
	"farmhub-backend/internal/metrics"
	"farmhub-backend/internal/repository"
)

// maxAppendAttempts bounds retries when two parties post to the same
// channel at once and one loses the sequence number.
const maxAppendAttempts = 3

type channelService struct {
	bookingRepo repository.BookingRepository
	channelRepo repository.ChannelRepository
	booking     BookingService
}

func NewChannelService(bookingRepo repository.BookingRepository, channelRepo repository.ChannelRepository, booking BookingService) ChannelService {
	return &channelService{bookingRepo: bookingRepo, channelRepo: channelRepo, booking: booking}
}

// authorize lets exactly the two parties of an Approved request in.
func (s *channelService) authorize(ctx context.Context, actorID, requestID string) error {
	req, err := s.bookingRepo.GetByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if !req.IsParty(actorID) {
		return ErrInvalidActor
	}
	open, err := s.booking.DeriveChatEligibility(ctx, requestID)
	if err != nil {
		return err
	}
	if !open {
		return ErrChatLocked
	}
	return nil
}

func (s *channelService) PostMessage(ctx context.Context, senderID, requestID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.authorize(ctx, senderID, requestID); err != nil {
		return nil, err
	}

	var err error
	for attempt := 1; attempt <= maxAppendAttempts; attempt++ {
		msg := &domain.Message{RequestID: requestID, SenderID: senderID, Text: text}
		err = s.channelRepo.Append(ctx, msg)
		if err == nil {
			return msg, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("append message: %w", err)
		}
		metrics.ChannelRetries.Inc()
		logger.Debug("Channel sequence taken, retrying", "request_id", requestID, "attempt", attempt)
	}
	return nil, fmt.Errorf("append message after %d attempts: %w", maxAppendAttempts, err)
}

func (s *channelService) ListMessages(ctx context.Context, readerID, requestID string) ([]domain.Message, error) {
	if err := s.authorize(ctx, readerID, requestID); err != nil {
		return nil, err
	}
	return s.channelRepo.List(ctx, requestID)
}
