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

type notificationRepository struct {
	store docstore.Store
}

func NewNotificationRepository(store docstore.Store) repository.NotificationRepository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedOn.IsZero() {
		n.CreatedOn = time.Now().UTC()
	}
	attrs := make(map[string]any, len(n.Attributes))
	for k, v := range n.Attributes {
		attrs[k] = v
	}
	err := r.store.Apply(ctx, docstore.CreateOp(notificationsCollection, n.ID, docstore.Fields{
		"user_id":    n.UserID,
		"title":      n.Title,
		"message":    n.Message,
		"is_read":    n.IsRead,
		"attributes": attrs,
		"created_on": n.CreatedOn.UTC(),
	}))
	return translate(err, "notification", n.ID)
}

func (r *notificationRepository) List(ctx context.Context, userID string, limit, offset int32) ([]domain.Notification, int32, error) {
	docs, err := r.store.Query(ctx, notificationsCollection, docstore.Eq("user_id", userID))
	if err != nil {
		return nil, 0, translate(err, "notification", "*")
	}
	notes := make([]domain.Notification, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, domain.Notification{
			ID:         d.ID,
			UserID:     str(d.Fields, "user_id"),
			Title:      str(d.Fields, "title"),
			Message:    str(d.Fields, "message"),
			IsRead:     boolean(d.Fields, "is_read"),
			Attributes: stringMap(d.Fields, "attributes"),
			CreatedOn:  timestamp(d.Fields, "created_on"),
		})
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedOn.After(notes[j].CreatedOn)
	})

	total := int32(len(notes))
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Notification{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return notes[offset:end], total, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	err := docstore.ConditionalWrite(ctx, r.store, notificationsCollection, id,
		docstore.Fields{"user_id": userID},
		docstore.Fields{"is_read": true})
	if err != nil && errorsIsPrecondition(err) {
		// Another user's notification looks the same as a missing one.
		return translate(docstore.ErrNotFound, "notification", id)
	}
	return translate(err, "notification", id)
}
