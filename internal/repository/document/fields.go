// Package document implements the repositories on top of a docstore.Store.
// Every backend round-trips values differently (JSONB hands back strings
// and float64, Firestore hands back time.Time and int64), so decoding goes
// through the helpers below.
package document

import (
	"errors"
	"fmt"
	"time"

	"farmhub-backend/internal/docstore"
	"farmhub-backend/internal/repository"
)

const (
	listingsCollection      = "listings"
	requestsCollection      = "requests"
	channelsCollection      = "channels"
	messagesCollection      = "messages"
	notificationsCollection = "notifications"
)

func str(f docstore.Fields, key string) string {
	switch v := f[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func boolean(f docstore.Fields, key string) bool {
	b, _ := f[key].(bool)
	return b
}

func float(f docstore.Fields, key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	}
	return 0
}

func integer(f docstore.Fields, key string) int64 {
	switch v := f[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func timestamp(f docstore.Fields, key string) time.Time {
	switch v := f[key].(type) {
	case time.Time:
		return v.UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func stringMap(f docstore.Fields, key string) map[string]string {
	out := map[string]string{}
	switch v := f[key].(type) {
	case map[string]string:
		for k, s := range v {
			out[k] = s
		}
	case map[string]any:
		for k, s := range v {
			out[k] = fmt.Sprint(s)
		}
	}
	return out
}

// translate maps store errors onto repository errors, keeping the store
// error in the chain.
func translate(err error, kind, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("%s %s: %w", kind, id, repository.ErrNotFound)
	case errors.Is(err, docstore.ErrPreconditionFailed):
		return &repository.ConflictError{Kind: kind, ID: id}
	}
	return fmt.Errorf("%s %s: %w", kind, id, err)
}

func errorsIsPrecondition(err error) bool {
	return errors.Is(err, docstore.ErrPreconditionFailed)
}
