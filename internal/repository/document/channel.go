package document

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"farmhub-backend/internal/docstore"
	"farmhub-backend/internal/domain"
	"farmhub-backend/internal/repository"
)

// channelRepository keeps one head document per channel holding the last
// allocated sequence number, and one document per message.
type channelRepository struct {
	store docstore.Store
}

func NewChannelRepository(store docstore.Store) repository.ChannelRepository {
	return &channelRepository{store: store}
}

func (r *channelRepository) Append(ctx context.Context, msg *domain.Message) error {
	var headOp docstore.Op
	head, err := r.store.Get(ctx, channelsCollection, msg.RequestID)
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		msg.Seq = 1
		headOp = docstore.CreateOp(channelsCollection, msg.RequestID, docstore.Fields{"seq": msg.Seq})
	case err != nil:
		return translate(err, repository.KindChannel, msg.RequestID)
	default:
		last := integer(head.Fields, "seq")
		msg.Seq = last + 1
		headOp = docstore.UpdateOp(channelsCollection, msg.RequestID,
			docstore.Fields{"seq": last},
			docstore.Fields{"seq": msg.Seq})
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SentAt.IsZero() {
		msg.SentAt = time.Now().UTC()
	}
	err = r.store.Apply(ctx, headOp, docstore.CreateOp(messagesCollection, msg.ID, docstore.Fields{
		"request_id": msg.RequestID,
		"sender_id":  msg.SenderID,
		"text":       msg.Text,
		"seq":        msg.Seq,
		"sent_at":    msg.SentAt.UTC(),
	}))
	if docstore.FailedOp(err) == 0 {
		return &repository.ConflictError{Kind: repository.KindChannel, ID: msg.RequestID}
	}
	return translate(err, repository.KindChannel, msg.RequestID)
}

func (r *channelRepository) List(ctx context.Context, requestID string) ([]domain.Message, error) {
	docs, err := r.store.Query(ctx, messagesCollection, docstore.Eq("request_id", requestID))
	if err != nil {
		return nil, translate(err, repository.KindChannel, requestID)
	}
	msgs := make([]domain.Message, 0, len(docs))
	for _, d := range docs {
		msgs = append(msgs, domain.Message{
			ID:        d.ID,
			RequestID: str(d.Fields, "request_id"),
			SenderID:  str(d.Fields, "sender_id"),
			Text:      str(d.Fields, "text"),
			Seq:       integer(d.Fields, "seq"),
			SentAt:    timestamp(d.Fields, "sent_at"),
		})
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].SentAt.Equal(msgs[j].SentAt) {
			return msgs[i].SentAt.Before(msgs[j].SentAt)
		}
		return msgs[i].Seq < msgs[j].Seq
	})
	return msgs, nil
}
