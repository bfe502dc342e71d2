package grpc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"farmhub-backend/internal/api/grpc"
	"farmhub-backend/internal/domain"
)

func TestMapDomainListingToProto(t *testing.T) {
	now := time.Now()
	l := &domain.Listing{
		ID:        "l1",
		OwnerID:   "owner",
		OwnerName: "Olga",
		Name:      "Tractor",
		Kind:      domain.OfferKindRent,
		Price:     90,
		ImageRef:  "listings/l1/a.jpg",
		Status:    domain.ListingStatusRented,
		CreatedOn: now,
	}

	proto := grpc.MapDomainListingToProto(l)

	assert.NotNil(t, proto)
	assert.Equal(t, "l1", proto.ID)
	assert.Equal(t, "Olga", proto.OwnerName)
	assert.Equal(t, "Rent", proto.Kind)
	assert.Equal(t, "Rented", proto.Status)
	assert.Equal(t, l.ImageRef, proto.ImageRef)
	assert.Equal(t, now.UnixMilli(), proto.CreatedOn)

	assert.Nil(t, grpc.MapDomainListingToProto(nil))
}

func TestMapDomainRequestToProto(t *testing.T) {
	r := &domain.BookingRequest{
		ID:            "r1",
		ListingID:     "l1",
		ListingName:   "Tractor",
		Kind:          domain.OfferKindSale,
		OwnerID:       "owner",
		RequesterID:   "alice",
		RequesterName: "Alice",
		Status:        domain.RequestStatusItemUnavailable,
	}

	proto := grpc.MapDomainRequestToProto(r)

	assert.Equal(t, "Item Unavailable", proto.Status)
	assert.Equal(t, "Sale", proto.Kind)
	assert.Equal(t, "Alice", proto.RequesterName)
	assert.Zero(t, proto.CreatedOn, "zero time maps to 0")

	assert.Nil(t, grpc.MapDomainRequestToProto(nil))
	assert.Empty(t, grpc.MapDomainRequestsToProto(nil))
}

func TestMapDomainMessageToProto(t *testing.T) {
	sent := time.UnixMilli(1_700_000_000_000)
	proto := grpc.MapDomainMessageToProto(&domain.Message{ID: "m1", RequestID: "r1", SenderID: "alice", Text: "hi", Seq: 3, SentAt: sent})

	assert.Equal(t, int64(3), proto.Seq)
	assert.Equal(t, int64(1_700_000_000_000), proto.SentAt)
	assert.Equal(t, "hi", proto.Text)
}
