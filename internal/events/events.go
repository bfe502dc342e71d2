// Package events publishes booking domain events.
package events

import (
	"context"
	"time"
)

const (
	TypeBookingRequested = "booking.requested"
	TypeBookingAccepted  = "booking.accepted"
	TypeBookingRejected  = "booking.rejected"
	TypeListingLocked    = "listing.locked"
)

// Event is one booking transition. Key is the partition key; events for
// the same listing share a key so consumers see them in order.
type Event struct {
	Type       string            `json:"type"`
	Key        string            `json:"-"`
	ListingID  string            `json:"listing_id"`
	RequestID  string            `json:"request_id,omitempty"`
	ActorID    string            `json:"actor_id"`
	Status     string            `json:"status,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NoopPublisher) Close() error                                   { return nil }
