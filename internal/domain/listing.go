package domain

import "time"

type ListingStatus string

const (
	ListingStatusAvailable ListingStatus = "Available"
	ListingStatusRented    ListingStatus = "Rented"
	ListingStatusSold      ListingStatus = "Sold"
)

// CanTransitionTo reports whether a listing may move from s to next.
// Locked listings are terminal; only Available may lock.
func (s ListingStatus) CanTransitionTo(next ListingStatus) bool {
	if s != ListingStatusAvailable {
		return false
	}
	return next == ListingStatusRented || next == ListingStatusSold
}

func (s ListingStatus) IsLocked() bool {
	return s == ListingStatusRented || s == ListingStatusSold
}

func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusAvailable, ListingStatusRented, ListingStatusSold:
		return true
	}
	return false
}

type OfferKind string

const (
	OfferKindRent OfferKind = "Rent"
	OfferKindSale OfferKind = "Sale"
)

func (k OfferKind) Valid() bool {
	return k == OfferKindRent || k == OfferKindSale
}

// LockedStatus is the status a listing takes when a request for it is accepted.
func (k OfferKind) LockedStatus() ListingStatus {
	if k == OfferKindRent {
		return ListingStatusRented
	}
	return ListingStatusSold
}

type Listing struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	OwnerName   string        `json:"owner_name"`
	Name        string        `json:"name"`
	Kind        OfferKind     `json:"kind"`
	Price       float64       `json:"price"`
	Location    string        `json:"location"`
	Description string        `json:"description"`
	ImageRef    string        `json:"image_ref"`
	Status      ListingStatus `json:"status"`
	CreatedOn   time.Time     `json:"created_on"`
}
