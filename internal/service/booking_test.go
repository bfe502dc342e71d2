package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"farmhub-backend/internal/docstore"
	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/events"
	"farmhub-backend/internal/repository"
)

func TestBookingService_AcceptSweepsSiblings(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l1 := f.newListing(t, "owner", domain.OfferKindRent)

	r1 := f.request(t, l1.ID, "alice")
	r2 := f.request(t, l1.ID, "bob")
	assert.Equal(t, domain.RequestStatusPending, r1.Status)
	assert.Equal(t, domain.RequestStatusPending, r2.Status)

	accepted, err := f.booking.AcceptRequest(ctx, "owner", r1.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, accepted.Status)

	assert.Equal(t, domain.RequestStatusApproved, f.status(t, r1.ID))
	assert.Equal(t, domain.ListingStatusRented, f.listingStatus(t, l1.ID))
	assert.Equal(t, domain.RequestStatusItemUnavailable, f.status(t, r2.ID))
}

func TestBookingService_SaleLocksAsSold(t *testing.T) {
	f := newFixture(t, nil)
	l := f.newListing(t, "owner", domain.OfferKindSale)
	r := f.request(t, l.ID, "alice")

	_, err := f.booking.AcceptRequest(context.Background(), "owner", r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ListingStatusSold, f.listingStatus(t, l.ID))
}

func TestBookingService_AcceptAfterSweepIsStale(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l1 := f.newListing(t, "owner", domain.OfferKindRent)
	r1 := f.request(t, l1.ID, "alice")
	r2 := f.request(t, l1.ID, "bob")

	_, err := f.booking.AcceptRequest(ctx, "owner", r2.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusItemUnavailable, f.status(t, r1.ID))

	_, err = f.booking.AcceptRequest(ctx, "owner", r1.ID)
	assert.ErrorIs(t, err, ErrStaleRequest)
	assert.Equal(t, domain.RequestStatusItemUnavailable, f.status(t, r1.ID))
	assert.Equal(t, domain.RequestStatusApproved, f.status(t, r2.ID))
}

func TestBookingService_IndependentListingsDoNotInteract(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l1 := f.newListing(t, "owner", domain.OfferKindRent)
	l2 := f.newListing(t, "bob", domain.OfferKindSale)
	r1 := f.request(t, l1.ID, "alice")
	r2 := f.request(t, l2.ID, "alice")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() { defer wg.Done(); _, errs[0] = f.booking.AcceptRequest(ctx, "owner", r1.ID) }()
	go func() { defer wg.Done(); _, errs[1] = f.booking.AcceptRequest(ctx, "bob", r2.ID) }()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, domain.ListingStatusRented, f.listingStatus(t, l1.ID))
	assert.Equal(t, domain.ListingStatusSold, f.listingStatus(t, l2.ID))
}

func TestBookingService_RejectIsIdempotent(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r := f.request(t, l.ID, "alice")

	first, err := f.booking.RejectRequest(ctx, "owner", r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, first.Status)

	second, err := f.booking.RejectRequest(ctx, "owner", r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, second.Status)

	assert.Equal(t, domain.ListingStatusAvailable, f.listingStatus(t, l.ID))
	assert.Equal(t, []string{events.TypeBookingRequested, events.TypeBookingRejected}, f.publisher.types())
}

func TestBookingService_RejectTerminalRequestIsStale(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r := f.request(t, l.ID, "alice")
	_, err := f.booking.AcceptRequest(ctx, "owner", r.ID)
	require.NoError(t, err)

	_, err = f.booking.RejectRequest(ctx, "owner", r.ID)
	assert.ErrorIs(t, err, ErrStaleRequest)
	assert.Equal(t, domain.RequestStatusApproved, f.status(t, r.ID))
}

func TestBookingService_RejectByNonOwner(t *testing.T) {
	f := newFixture(t, nil)
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r := f.request(t, l.ID, "alice")

	_, err := f.booking.RejectRequest(context.Background(), "alice", r.ID)
	assert.ErrorIs(t, err, ErrInvalidActor)
	assert.Equal(t, domain.RequestStatusPending, f.status(t, r.ID))
}

func TestBookingService_SelfBookingRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)

	_, err := f.booking.RequestBooking(ctx, "owner", l.ID)
	assert.ErrorIs(t, err, ErrInvalidActor)

	reqs, err := f.bookings.ListByListing(ctx, l.ID, "")
	require.NoError(t, err)
	assert.Empty(t, reqs)
	assert.Equal(t, domain.ListingStatusAvailable, f.listingStatus(t, l.ID))
}

func TestBookingService_RequestOnUnavailableListing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r := f.request(t, l.ID, "alice")
	_, err := f.booking.AcceptRequest(ctx, "owner", r.ID)
	require.NoError(t, err)

	_, err = f.booking.RequestBooking(ctx, "bob", l.ID)
	assert.ErrorIs(t, err, ErrListingUnavailable)

	_, err = f.booking.RequestBooking(ctx, "bob", "no-such-listing")
	assert.ErrorIs(t, err, ErrListingUnavailable)
}

func TestBookingService_RequestSnapshotsListing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	require.NoError(t, f.listings.SetImage(ctx, l.ID, "listings/"+l.ID+"/a.jpg"))

	r := f.request(t, l.ID, "alice")
	assert.Equal(t, l.Name, r.ListingName)
	assert.Equal(t, "listings/"+l.ID+"/a.jpg", r.ListingImage)
	assert.Equal(t, "owner", r.OwnerID)
	assert.Equal(t, domain.OfferKindRent, r.Kind)
	assert.Equal(t, "Alice", r.RequesterName)

	require.NoError(t, f.listings.SetImage(ctx, l.ID, "listings/"+l.ID+"/b.jpg"))
	stored, err := f.bookings.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "listings/"+l.ID+"/a.jpg", stored.ListingImage)
}

func TestBookingService_DuplicateRequestsAreSwept(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	dup1 := f.request(t, l.ID, "alice")
	dup2 := f.request(t, l.ID, "alice")
	winner := f.request(t, l.ID, "bob")

	_, err := f.booking.AcceptRequest(ctx, "owner", winner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusItemUnavailable, f.status(t, dup1.ID))
	assert.Equal(t, domain.RequestStatusItemUnavailable, f.status(t, dup2.ID))
}

func TestBookingService_AcceptByNonOwner(t *testing.T) {
	f := newFixture(t, nil)
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r := f.request(t, l.ID, "alice")

	_, err := f.booking.AcceptRequest(context.Background(), "alice", r.ID)
	assert.ErrorIs(t, err, ErrInvalidActor)
	assert.Equal(t, domain.RequestStatusPending, f.status(t, r.ID))
	assert.Equal(t, domain.ListingStatusAvailable, f.listingStatus(t, l.ID))
}

func TestBookingService_AcceptOnDeletedListing(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r := f.request(t, l.ID, "alice")
	require.NoError(t, f.listings.Delete(ctx, l.ID))

	_, err := f.booking.AcceptRequest(ctx, "owner", r.ID)
	assert.ErrorIs(t, err, ErrListingUnavailable)
	assert.Equal(t, domain.RequestStatusPending, f.status(t, r.ID))
}

func TestBookingService_AcceptMissingRequest(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.booking.AcceptRequest(context.Background(), "owner", "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBookingService_ConcurrentAcceptsHaveOneWinner(t *testing.T) {
	for round := 0; round < 20; round++ {
		t.Run(fmt.Sprintf("round-%d", round), func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()
			l := f.newListing(t, "owner", domain.OfferKindRent)

			const contenders = 8
			reqs := make([]*domain.BookingRequest, contenders)
			for i := range reqs {
				reqs[i] = f.request(t, l.ID, fmt.Sprintf("farmer-%d", i))
			}

			var wg sync.WaitGroup
			start := make(chan struct{})
			results := make([]error, contenders)
			for i := range reqs {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					_, results[i] = f.booking.AcceptRequest(ctx, "owner", reqs[i].ID)
				}(i)
			}
			close(start)
			wg.Wait()

			winners := 0
			for _, err := range results {
				switch {
				case err == nil:
					winners++
				case errors.Is(err, ErrListingAlreadyLocked), errors.Is(err, ErrStaleRequest):
					// A loser either hits the listing lock or reads its request
					// after the winner's sweep retired it.
				default:
					t.Fatalf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, winners)
			assert.Equal(t, domain.ListingStatusRented, f.listingStatus(t, l.ID))

			approved := 0
			for _, r := range reqs {
				switch f.status(t, r.ID) {
				case domain.RequestStatusApproved:
					approved++
				case domain.RequestStatusPending:
					t.Errorf("request %s left Pending", r.ID)
				}
			}
			assert.Equal(t, 1, approved)
		})
	}
}

func TestBookingService_TerminalStatesNeverChange(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	rejected := f.request(t, l.ID, "alice")
	winner := f.request(t, l.ID, "bob")
	swept := f.request(t, l.ID, "alice")

	_, err := f.booking.RejectRequest(ctx, "owner", rejected.ID)
	require.NoError(t, err)
	_, err = f.booking.AcceptRequest(ctx, "owner", winner.ID)
	require.NoError(t, err)

	for _, id := range []string{rejected.ID, winner.ID, swept.ID} {
		before := f.status(t, id)
		_, _ = f.booking.AcceptRequest(ctx, "owner", id)
		_, _ = f.booking.RejectRequest(ctx, "owner", id)
		_, _ = f.booking.SweepListing(ctx, l.ID, winner.ID)
		assert.Equal(t, before, f.status(t, id))
	}
	assert.Equal(t, domain.ListingStatusRented, f.listingStatus(t, l.ID))
}

func TestBookingService_ChatEligibilityFollowsApproval(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r1 := f.request(t, l.ID, "alice")
	r2 := f.request(t, l.ID, "bob")

	ok, err := f.booking.DeriveChatEligibility(ctx, r1.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.booking.AcceptRequest(ctx, "owner", r1.ID)
	require.NoError(t, err)

	ok, err = f.booking.DeriveChatEligibility(ctx, r1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.booking.DeriveChatEligibility(ctx, r2.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _ = f.booking.AcceptRequest(ctx, "owner", r2.ID)
	ok, err = f.booking.DeriveChatEligibility(ctx, r2.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookingService_SweepFailureDoesNotFailAccept(t *testing.T) {
	store := newFaultyStore()
	f := newFixture(t, store)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	winner := f.request(t, l.ID, "alice")
	stuck := f.request(t, l.ID, "bob")
	store.failRequest(stuck.ID, errStoreDown)

	accepted, err := f.booking.AcceptRequest(ctx, "owner", winner.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, accepted.Status)
	assert.Equal(t, domain.RequestStatusPending, f.status(t, stuck.ID))

	// A repeat sweep converges once the store recovers.
	store.restore(stuck.ID)
	n, err := f.booking.SweepListing(ctx, l.ID, winner.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.RequestStatusItemUnavailable, f.status(t, stuck.ID))
	assert.Equal(t, domain.RequestStatusApproved, f.status(t, winner.ID))

	n, err = f.booking.SweepListing(ctx, l.ID, winner.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestBookingService_SweepReportsFailures(t *testing.T) {
	store := newFaultyStore()
	f := newFixture(t, store)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	winner := f.request(t, l.ID, "alice")
	stuck := f.request(t, l.ID, "bob")
	other := f.request(t, l.ID, "bob")
	require.NoError(t, f.bookings.LockAndApprove(ctx, l.ID, domain.ListingStatusRented, winner.ID))

	store.failRequest(stuck.ID, errStoreDown)
	n, err := f.booking.SweepListing(ctx, l.ID, winner.ID)
	assert.ErrorIs(t, err, errStoreDown)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.RequestStatusItemUnavailable, f.status(t, other.ID))
}

func TestBookingService_SweepIgnoresOpenListing(t *testing.T) {
	f := newFixture(t, nil)
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r := f.request(t, l.ID, "alice")

	n, err := f.booking.SweepListing(context.Background(), l.ID, "")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, domain.RequestStatusPending, f.status(t, r.ID))
}

func TestBookingService_RequestRacingLockIsRepaired(t *testing.T) {
	store := newFaultyStore()
	f := newFixture(t, store)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	winner := f.request(t, l.ID, "alice")

	// The lock lands after the availability check but before the re-read.
	store.onCreate = func() {
		store.onCreate = nil
		require.NoError(t, store.Store.Apply(ctx,
			docstore.UpdateOp("listings", l.ID, docstore.Fields{"status": "Available"}, docstore.Fields{"status": "Rented"}),
			docstore.UpdateOp("requests", winner.ID, docstore.Fields{"status": "Pending"}, docstore.Fields{"status": "Approved"}),
		))
	}

	_, err := f.booking.RequestBooking(ctx, "bob", l.ID)
	assert.ErrorIs(t, err, ErrListingUnavailable)

	reqs, err := f.bookings.ListByListing(ctx, l.ID, domain.RequestStatusPending)
	require.NoError(t, err)
	assert.Empty(t, reqs)
}

func TestBookingService_NotifiesAndPublishes(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	email := new(MockEmailService)
	f.booking = NewBookingService(f.listings, f.bookings, f.notes, email, f.directory, f.publisher)

	l := f.newListing(t, "owner", domain.OfferKindSale)
	email.On("SendBookingRequested", mock.Anything, "olga@farm.test", "Alice", l.Name).Return(nil).Once()
	email.On("SendBookingRequested", mock.Anything, "olga@farm.test", "Bob", l.Name).Return(errors.New("smtp down")).Once()
	r1 := f.request(t, l.ID, "alice")
	r2 := f.request(t, l.ID, "bob")

	email.On("SendBookingDecision", mock.Anything, "alice@farm.test", l.Name, domain.RequestStatusApproved).Return(nil).Once()
	email.On("SendBookingDecision", mock.Anything, "bob@farm.test", l.Name, domain.RequestStatusItemUnavailable).Return(nil).Once()
	_, err := f.booking.AcceptRequest(ctx, "owner", r1.ID)
	require.NoError(t, err)
	email.AssertExpectations(t)

	ownerNotes, total, err := f.notes.List(ctx, "owner", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), total)
	assert.Equal(t, domain.NotificationTypeBookingRequested, ownerNotes[0].Attributes["type"])

	bobNotes, _, err := f.notes.List(ctx, "bob", 10, 0)
	require.NoError(t, err)
	require.Len(t, bobNotes, 1)
	assert.Equal(t, domain.NotificationTypeItemUnavailable, bobNotes[0].Attributes["type"])
	assert.Equal(t, r2.ID, bobNotes[0].Attributes["request_id"])

	assert.Equal(t, []string{
		events.TypeBookingRequested,
		events.TypeBookingRequested,
		events.TypeBookingAccepted,
		events.TypeListingLocked,
	}, f.publisher.types())
	for _, ev := range f.publisher.events {
		assert.Equal(t, l.ID, ev.Key)
		assert.False(t, ev.OccurredAt.IsZero())
	}
}

func TestBookingService_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.publisher.err = errors.New("broker down")
	l := f.newListing(t, "owner", domain.OfferKindRent)

	r := f.request(t, l.ID, "alice")
	_, err := f.booking.AcceptRequest(context.Background(), "owner", r.ID)
	assert.NoError(t, err)
}

func TestBookingService_GetRequestAndLists(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	l := f.newListing(t, "owner", domain.OfferKindRent)
	r := f.request(t, l.ID, "alice")
	f.request(t, l.ID, "bob")

	got, err := f.booking.GetRequest(ctx, "alice", r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	_, err = f.booking.GetRequest(ctx, "owner", r.ID)
	require.NoError(t, err)
	_, err = f.booking.GetRequest(ctx, "bob", r.ID)
	assert.ErrorIs(t, err, ErrInvalidActor)

	incoming, err := f.booking.ListIncoming(ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, incoming, 2)

	outgoing, err := f.booking.ListOutgoing(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, outgoing, 1)
}

func TestIsExpected(t *testing.T) {
	assert.True(t, IsExpected(ErrListingAlreadyLocked))
	assert.True(t, IsExpected(fmt.Errorf("wrapped: %w", ErrStaleRequest)))
	assert.True(t, IsExpected(fmt.Errorf("x: %w", repository.ErrNotFound)))
	assert.False(t, IsExpected(errStoreDown))
	assert.Equal(t, "this item was just booked by someone else", ErrListingAlreadyLocked.Error())
}
