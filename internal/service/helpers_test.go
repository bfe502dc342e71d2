package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"farmhub-backend/internal/docstore"
	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/events"
	"farmhub-backend/internal/repository"
	"farmhub-backend/internal/repository/document"
)

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBookingRequested(ctx context.Context, ownerEmail, requesterName, listingName string) error {
	args := m.Called(ctx, ownerEmail, requesterName, listingName)
	return args.Error(0)
}

func (m *MockEmailService) SendBookingDecision(ctx context.Context, requesterEmail, listingName string, status domain.RequestStatus) error {
	args := m.Called(ctx, requesterEmail, listingName, status)
	return args.Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// faultyStore fails Apply batches that touch a chosen request, and can
// simulate a listing locked between two reads.
type faultyStore struct {
	docstore.Store
	mu         sync.Mutex
	failWrites map[string]error
	onCreate   func()
}

func newFaultyStore() *faultyStore {
	return &faultyStore{Store: docstore.NewMemoryStore(), failWrites: map[string]error{}}
}

func (s *faultyStore) failRequest(id string, err error) {
	s.mu.Lock()
	s.failWrites[id] = err
	s.mu.Unlock()
}

func (s *faultyStore) restore(id string) {
	s.mu.Lock()
	delete(s.failWrites, id)
	s.mu.Unlock()
}

func (s *faultyStore) Apply(ctx context.Context, ops ...docstore.Op) error {
	s.mu.Lock()
	var injected error
	for _, op := range ops {
		if err, ok := s.failWrites[op.ID]; ok && op.Collection == "requests" {
			injected = err
		}
	}
	hook := s.onCreate
	s.mu.Unlock()
	if injected != nil {
		return injected
	}
	if err := s.Store.Apply(ctx, ops...); err != nil {
		return err
	}
	if hook != nil && len(ops) == 1 && ops[0].Create && ops[0].Collection == "requests" {
		hook()
	}
	return nil
}

var errStoreDown = errors.New("store unavailable")

type fixture struct {
	store     docstore.Store
	listings  repository.ListingRepository
	bookings  repository.BookingRepository
	channels  repository.ChannelRepository
	notes     repository.NotificationRepository
	directory *StaticDirectory
	email     *MockEmailService
	publisher *recordingPublisher
	booking   BookingService
	listing   ListingService
	channel   ChannelService
}

func newFixture(t *testing.T, store docstore.Store) *fixture {
	t.Helper()
	if store == nil {
		store = docstore.NewMemoryStore()
	}
	f := &fixture{
		store:    store,
		listings: document.NewListingRepository(store),
		bookings: document.NewBookingRepository(store),
		channels: document.NewChannelRepository(store),
		notes:    document.NewNotificationRepository(store),
		directory: NewStaticDirectory(
			domain.Party{ID: "owner", Name: "Olga", Email: "olga@farm.test"},
			domain.Party{ID: "alice", Name: "Alice", Email: "alice@farm.test"},
			domain.Party{ID: "bob", Name: "Bob", Email: "bob@farm.test"},
		),
		email:     new(MockEmailService),
		publisher: &recordingPublisher{},
	}
	f.email.On("SendBookingRequested", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.email.On("SendBookingDecision", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f.booking = NewBookingService(f.listings, f.bookings, f.notes, f.email, f.directory, f.publisher)
	f.listing = NewListingService(f.listings, f.bookings, f.notes, f.email, f.directory)
	f.channel = NewChannelService(f.bookings, f.channels, f.booking)
	return f
}

func (f *fixture) newListing(t *testing.T, owner string, kind domain.OfferKind) *domain.Listing {
	t.Helper()
	l, err := f.listing.CreateListing(context.Background(), owner, &domain.Listing{
		Name:  "Tractor " + string(kind),
		Kind:  kind,
		Price: 150,
	})
	require.NoError(t, err)
	return l
}

func (f *fixture) request(t *testing.T, listingID, requester string) *domain.BookingRequest {
	t.Helper()
	req, err := f.booking.RequestBooking(context.Background(), requester, listingID)
	require.NoError(t, err)
	return req
}

func (f *fixture) status(t *testing.T, requestID string) domain.RequestStatus {
	t.Helper()
	req, err := f.bookings.GetByID(context.Background(), requestID)
	require.NoError(t, err)
	return req.Status
}

func (f *fixture) listingStatus(t *testing.T, listingID string) domain.ListingStatus {
	t.Helper()
	l, err := f.listings.GetByID(context.Background(), listingID)
	require.NoError(t, err)
	return l.Status
}
