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

type listingRepository struct {
	store docstore.Store
}

func NewListingRepository(store docstore.Store) repository.ListingRepository {
	return &listingRepository{store: store}
}

func listingFields(l *domain.Listing) docstore.Fields {
	return docstore.Fields{
		"owner_id":    l.OwnerID,
		"owner_name":  l.OwnerName,
		"name":        l.Name,
		"kind":        string(l.Kind),
		"price":       l.Price,
		"location":    l.Location,
		"description": l.Description,
		"image_ref":   l.ImageRef,
		"status":      string(l.Status),
		"created_on":  l.CreatedOn.UTC(),
	}
}

func listingFromDoc(doc docstore.Document) domain.Listing {
	f := doc.Fields
	return domain.Listing{
		ID:          doc.ID,
		OwnerID:     str(f, "owner_id"),
		OwnerName:   str(f, "owner_name"),
		Name:        str(f, "name"),
		Kind:        domain.OfferKind(str(f, "kind")),
		Price:       float(f, "price"),
		Location:    str(f, "location"),
		Description: str(f, "description"),
		ImageRef:    str(f, "image_ref"),
		Status:      domain.ListingStatus(str(f, "status")),
		CreatedOn:   timestamp(f, "created_on"),
	}
}

func (r *listingRepository) Create(ctx context.Context, l *domain.Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedOn.IsZero() {
		l.CreatedOn = time.Now().UTC()
	}
	err := r.store.Apply(ctx, docstore.CreateOp(listingsCollection, l.ID, listingFields(l)))
	return translate(err, repository.KindListing, l.ID)
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	doc, err := r.store.Get(ctx, listingsCollection, id)
	if err != nil {
		return nil, translate(err, repository.KindListing, id)
	}
	l := listingFromDoc(*doc)
	return &l, nil
}

func (r *listingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	var filters []docstore.Filter
	if filter.Kind != "" {
		filters = append(filters, docstore.Eq("kind", string(filter.Kind)))
	}
	if filter.Status != "" {
		filters = append(filters, docstore.Eq("status", string(filter.Status)))
	}
	return r.query(ctx, filters...)
}

func (r *listingRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Listing, error) {
	return r.query(ctx, docstore.Eq("owner_id", ownerID))
}

func (r *listingRepository) ListLocked(ctx context.Context) ([]domain.Listing, error) {
	rented, err := r.query(ctx, docstore.Eq("status", string(domain.ListingStatusRented)))
	if err != nil {
		return nil, err
	}
	sold, err := r.query(ctx, docstore.Eq("status", string(domain.ListingStatusSold)))
	if err != nil {
		return nil, err
	}
	listings := append(rented, sold...)
	sortNewestFirst(listings)
	return listings, nil
}

func (r *listingRepository) SetImage(ctx context.Context, id, imageRef string) error {
	// Only an existing listing may take an image; the precondition on the
	// id-bearing owner field makes the merge fail instead of creating a stub.
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	err = docstore.ConditionalWrite(ctx, r.store, listingsCollection, id,
		docstore.Fields{"owner_id": cur.OwnerID},
		docstore.Fields{"image_ref": imageRef})
	return translate(err, repository.KindListing, id)
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	return translate(r.store.Delete(ctx, listingsCollection, id), repository.KindListing, id)
}

func (r *listingRepository) query(ctx context.Context, filters ...docstore.Filter) ([]domain.Listing, error) {
	docs, err := r.store.Query(ctx, listingsCollection, filters...)
	if err != nil {
		return nil, translate(err, repository.KindListing, "*")
	}
	listings := make([]domain.Listing, 0, len(docs))
	for _, d := range docs {
		listings = append(listings, listingFromDoc(d))
	}
	sortNewestFirst(listings)
	return listings, nil
}

func sortNewestFirst(listings []domain.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		if listings[i].CreatedOn.Equal(listings[j].CreatedOn) {
			return listings[i].ID < listings[j].ID
		}
		return listings[i].CreatedOn.After(listings[j].CreatedOn)
	})
}
