package domain

import "time"

const (
	NotificationTypeBookingRequested = "BOOKING_REQUESTED"
	NotificationTypeBookingApproved  = "BOOKING_APPROVED"
	NotificationTypeBookingRejected  = "BOOKING_REJECTED"
	NotificationTypeItemUnavailable  = "ITEM_UNAVAILABLE"
)

type Notification struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  time.Time         `json:"created_on"`
}

// Party is the contact card of an identity, as resolved by the auth provider.
type Party struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
