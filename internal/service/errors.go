package service

import (
	"errors"

	"farmhub-backend/internal/repository"
)

// Precondition failures. The error text is what the initiating party is
// shown, so every kind carries its own message.
var (
	ErrListingUnavailable   = errors.New("this item is no longer available")
	ErrInvalidActor         = errors.New("you are not allowed to do this")
	ErrStaleRequest         = errors.New("this request has already been handled")
	ErrListingAlreadyLocked = errors.New("this item was just booked by someone else")
	ErrChatLocked           = errors.New("chat opens once the owner accepts the request")
	ErrEmptyMessage         = errors.New("message cannot be empty")
	ErrInvalidInput         = errors.New("invalid input")
)

// IsExpected reports whether err is a precondition failure rather than a
// store or transport fault.
func IsExpected(err error) bool {
	switch {
	case errors.Is(err, ErrListingUnavailable),
		errors.Is(err, ErrInvalidActor),
		errors.Is(err, ErrStaleRequest),
		errors.Is(err, ErrListingAlreadyLocked),
		errors.Is(err, ErrChatLocked),
		errors.Is(err, ErrEmptyMessage),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, repository.ErrNotFound):
		return true
	}
	return false
}
