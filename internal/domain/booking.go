package domain

import "time"

type RequestStatus string

const (
	RequestStatusPending         RequestStatus = "Pending"
	RequestStatusApproved        RequestStatus = "Approved"
	RequestStatusRejected        RequestStatus = "Rejected"
	RequestStatusItemUnavailable RequestStatus = "Item Unavailable"
)

// IsTerminal reports whether no further transition is allowed.
func (s RequestStatus) IsTerminal() bool {
	return s != RequestStatusPending
}

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusItemUnavailable:
		return true
	}
	return false
}

type BookingRequest struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	// Listing display snapshot, captured when the request is created.
	// Later edits to the listing are not reflected here.
	ListingName   string        `json:"listing_name"`
	ListingImage  string        `json:"listing_image"`
	Kind          OfferKind     `json:"kind"`
	OwnerID       string        `json:"owner_id"`
	RequesterID   string        `json:"requester_id"`
	RequesterName string        `json:"requester_name"`
	Status        RequestStatus `json:"status"`
	CreatedOn     time.Time     `json:"created_on"`
	UpdatedOn     time.Time     `json:"updated_on"`
}

// IsParty reports whether identity is the owner or the requester.
func (r *BookingRequest) IsParty(identity string) bool {
	return identity != "" && (identity == r.OwnerID || identity == r.RequesterID)
}

// Counterpart returns the other party of the request.
func (r *BookingRequest) Counterpart(identity string) string {
	if identity == r.OwnerID {
		return r.RequesterID
	}
	return r.OwnerID
}
