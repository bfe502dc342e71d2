package domain

import "time"

// Message is one entry of a negotiation channel. Channels are keyed by
// booking request id.
type Message struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id"`
	SenderID  string    `json:"sender_id"`
	Text      string    `json:"text"`
	Seq       int64     `json:"seq"`
	SentAt    time.Time `json:"sent_at"`
}
