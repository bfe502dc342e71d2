package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/logger"
)

// mailSender is the part of *sendgrid.Client the email service uses.
type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return newEmailService(sendgrid.NewSendClient(apiKey), fromEmail, fromName)
}

func newEmailService(client mailSender, fromEmail, fromName string) *emailService {
	return &emailService{client: client, fromEmail: fromEmail, fromName: fromName}
}

func (s *emailService) SendBookingRequested(ctx context.Context, ownerEmail, requesterName, listingName string) error {
	subject := fmt.Sprintf("New booking request: %s", listingName)
	body := fmt.Sprintf("Hello,\n\n%s wants to book your listing %s.\nOpen FarmHub to accept or decline the request.\n\nThe FarmHub Team", requesterName, listingName)
	return s.send(ctx, ownerEmail, subject, body)
}

func (s *emailService) SendBookingDecision(ctx context.Context, requesterEmail, listingName string, status domain.RequestStatus) error {
	var subject, body string
	switch status {
	case domain.RequestStatusApproved:
		subject = fmt.Sprintf("Your request for %s was accepted", listingName)
		body = fmt.Sprintf("Hello,\n\nThe owner accepted your request for %s. You can now chat with them in FarmHub to arrange the details.\n\nThe FarmHub Team", listingName)
	case domain.RequestStatusRejected:
		subject = fmt.Sprintf("Your request for %s was declined", listingName)
		body = fmt.Sprintf("Hello,\n\nThe owner declined your request for %s.\n\nThe FarmHub Team", listingName)
	case domain.RequestStatusItemUnavailable:
		subject = fmt.Sprintf("%s is no longer available", listingName)
		body = fmt.Sprintf("Hello,\n\n%s has been booked by someone else.\n\nThe FarmHub Team", listingName)
	default:
		return fmt.Errorf("no email for request status %q", status)
	}
	return s.send(ctx, requesterEmail, subject, body)
}

func (s *emailService) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), body, "")

	logger.ExternalServiceCall("sendgrid", "send", "subject", subject)
	response, err := s.client.Send(message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// noopEmailService is used when no SendGrid key is configured.
type noopEmailService struct{}

func NewNoopEmailService() EmailService { return noopEmailService{} }

func (noopEmailService) SendBookingRequested(ctx context.Context, ownerEmail, requesterName, listingName string) error {
	logger.Debug("Email disabled, skipping booking request mail", "listing", listingName)
	return nil
}

func (noopEmailService) SendBookingDecision(ctx context.Context, requesterEmail, listingName string, status domain.RequestStatus) error {
	logger.Debug("Email disabled, skipping booking decision mail", "listing", listingName, "status", status)
	return nil
}
