package docstore

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"farmhub-backend/internal/logger"
)

// FirestoreStore maps collections onto top-level Firestore collections.
// Apply runs inside a Firestore transaction: every precondition is read
// through the transaction before any write, and Firestore aborts and
// retries the closure if a read document changes before commit.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	logger.StoreCall("get", collection, "id", id)
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		logger.StoreResult("get", collection, err, "id", id)
		return nil, err
	}
	return &Document{ID: snap.Ref.ID, Fields: Fields(snap.Data())}, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	logger.StoreCall("set", collection, "id", id)
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]interface{}(fields), firestore.MergeAll)
	if err != nil {
		logger.StoreResult("set", collection, err, "id", id)
	}
	return err
}

func (s *FirestoreStore) Apply(ctx context.Context, ops ...Op) error {
	logger.StoreCall("apply", "", "ops", len(ops))
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		refs := make([]*firestore.DocumentRef, len(ops))
		for i, op := range ops {
			refs[i] = s.client.Collection(op.Collection).Doc(op.ID)
		}

		for i, op := range ops {
			if !op.Create && op.Expect == nil {
				continue
			}
			snap, err := tx.Get(refs[i])
			exists := err == nil && snap != nil && snap.Exists()
			if err != nil && status.Code(err) != codes.NotFound {
				return err
			}
			if op.Create && exists {
				return &PreconditionError{Index: i, Collection: op.Collection, ID: op.ID}
			}
			if op.Expect != nil && (!exists || !Matches(Fields(snap.Data()), op.Expect)) {
				return &PreconditionError{Index: i, Collection: op.Collection, ID: op.ID}
			}
		}

		for i, op := range ops {
			data := map[string]interface{}(op.Fields)
			var err error
			if op.Create {
				err = tx.Create(refs[i], data)
			} else {
				err = tx.Set(refs[i], data, firestore.MergeAll)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})

	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe
	}
	if err != nil {
		logger.StoreResult("apply", "", err, "ops", len(ops))
	}
	return err
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	logger.StoreCall("query", collection, "filters", len(filters))
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, "==", f.Value)
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		logger.StoreResult("query", collection, err)
		return nil, err
	}

	docs := make([]Document, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, Document{ID: snap.Ref.ID, Fields: Fields(snap.Data())})
	}
	return docs, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	logger.StoreCall("delete", collection, "id", id)
	ref := s.client.Collection(collection).Doc(id)
	_, err := ref.Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
