package document

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"farmhub-backend/internal/docstore"
	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/repository"
)

type bookingRepository struct {
	store docstore.Store
}

func NewBookingRepository(store docstore.Store) repository.BookingRepository {
	return &bookingRepository{store: store}
}

func requestFields(b *domain.BookingRequest) docstore.Fields {
	return docstore.Fields{
		"listing_id":     b.ListingID,
		"listing_name":   b.ListingName,
		"listing_image":  b.ListingImage,
		"kind":           string(b.Kind),
		"owner_id":       b.OwnerID,
		"requester_id":   b.RequesterID,
		"requester_name": b.RequesterName,
		"status":         string(b.Status),
		"created_on":     b.CreatedOn.UTC(),
		"updated_on":     b.UpdatedOn.UTC(),
	}
}

func requestFromDoc(doc docstore.Document) domain.BookingRequest {
	f := doc.Fields
	return domain.BookingRequest{
		ID:            doc.ID,
		ListingID:     str(f, "listing_id"),
		ListingName:   str(f, "listing_name"),
		ListingImage:  str(f, "listing_image"),
		Kind:          domain.OfferKind(str(f, "kind")),
		OwnerID:       str(f, "owner_id"),
		RequesterID:   str(f, "requester_id"),
		RequesterName: str(f, "requester_name"),
		Status:        domain.RequestStatus(str(f, "status")),
		CreatedOn:     timestamp(f, "created_on"),
		UpdatedOn:     timestamp(f, "updated_on"),
	}
}

func (r *bookingRepository) Create(ctx context.Context, b *domain.BookingRequest) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if b.CreatedOn.IsZero() {
		b.CreatedOn = now
	}
	b.UpdatedOn = b.CreatedOn
	err := r.store.Apply(ctx, docstore.CreateOp(requestsCollection, b.ID, requestFields(b)))
	return translate(err, repository.KindRequest, b.ID)
}

func (r *bookingRepository) GetByID(ctx context.Context, id string) (*domain.BookingRequest, error) {
	doc, err := r.store.Get(ctx, requestsCollection, id)
	if err != nil {
		return nil, translate(err, repository.KindRequest, id)
	}
	b := requestFromDoc(*doc)
	return &b, nil
}

func (r *bookingRepository) ListByListing(ctx context.Context, listingID string, status domain.RequestStatus) ([]domain.BookingRequest, error) {
	filters := []docstore.Filter{docstore.Eq("listing_id", listingID)}
	if status != "" {
		filters = append(filters, docstore.Eq("status", string(status)))
	}
	return r.query(ctx, filters...)
}

func (r *bookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.BookingRequest, error) {
	return r.query(ctx, docstore.Eq("owner_id", ownerID))
}

func (r *bookingRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.BookingRequest, error) {
	return r.query(ctx, docstore.Eq("requester_id", requesterID))
}

func (r *bookingRepository) Transition(ctx context.Context, id string, from, to domain.RequestStatus) error {
	err := r.store.Apply(ctx, transitionOp(id, from, to, time.Now().UTC()))
	return translate(err, repository.KindRequest, id)
}

func (r *bookingRepository) LockAndApprove(ctx context.Context, listingID string, lockTo domain.ListingStatus, requestID string) error {
	now := time.Now().UTC()
	err := r.store.Apply(ctx,
		docstore.UpdateOp(listingsCollection, listingID,
			docstore.Fields{"status": string(domain.ListingStatusAvailable)},
			docstore.Fields{"status": string(lockTo)}),
		transitionOp(requestID, domain.RequestStatusPending, domain.RequestStatusApproved, now),
	)
	switch docstore.FailedOp(err) {
	case 0:
		return &repository.ConflictError{Kind: repository.KindListing, ID: listingID}
	case 1:
		return &repository.ConflictError{Kind: repository.KindRequest, ID: requestID}
	}
	return translate(err, repository.KindRequest, requestID)
}

func transitionOp(id string, from, to domain.RequestStatus, at time.Time) docstore.Op {
	return docstore.UpdateOp(requestsCollection, id,
		docstore.Fields{"status": string(from)},
		docstore.Fields{"status": string(to), "updated_on": at})
}

func (r *bookingRepository) query(ctx context.Context, filters ...docstore.Filter) ([]domain.BookingRequest, error) {
	docs, err := r.store.Query(ctx, requestsCollection, filters...)
	if err != nil {
		return nil, translate(err, repository.KindRequest, "*")
	}
	reqs := make([]domain.BookingRequest, 0, len(docs))
	for _, d := range docs {
		reqs = append(reqs, requestFromDoc(d))
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		if reqs[i].CreatedOn.Equal(reqs[j].CreatedOn) {
			return reqs[i].ID < reqs[j].ID
		}
		return reqs[i].CreatedOn.After(reqs[j].CreatedOn)
	})
	return reqs, nil
}
