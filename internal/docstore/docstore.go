// Package docstore is the document store boundary: per-document CRUD,
// equality queries and all-or-nothing conditional batches.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"
)

var (
	ErrNotFound           = errors.New("document not found")
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Fields holds the top-level fields of a document.
type Fields map[string]any

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

type Document struct {
	ID     string
	Fields Fields
}

// Op is one write inside an Apply batch.
//
// Create requires the document to be absent. A non-nil Expect requires the
// document to exist with every expected field equal to its current value.
// Otherwise the write is an unconditional merge.
type Op struct {
	Collection string
	ID         string
	Create     bool
	Expect     Fields
	Fields     Fields
}

func CreateOp(collection, id string, fields Fields) Op {
	return Op{Collection: collection, ID: id, Create: true, Fields: fields}
}

func UpdateOp(collection, id string, expect, fields Fields) Op {
	return Op{Collection: collection, ID: id, Expect: expect, Fields: fields}
}

func SetOp(collection, id string, fields Fields) Op {
	return Op{Collection: collection, ID: id, Fields: fields}
}

type Filter struct {
	Field string
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

// PreconditionError reports which op of a batch failed its precondition.
// Nothing in the batch was written.
type PreconditionError struct {
	Index      int
	Collection string
	ID         string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed for %s/%s (op %d)", e.Collection, e.ID, e.Index)
}

func (e *PreconditionError) Is(target error) bool {
	return target == ErrPreconditionFailed
}

// FailedOp returns the failing op index of a precondition error, or -1.
func FailedOp(err error) int {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Index
	}
	return -1
}

type Store interface {
	Get(ctx context.Context, collection, id string) (*Document, error)
	Set(ctx context.Context, collection, id string, fields Fields) error
	Apply(ctx context.Context, ops ...Op) error
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// ConditionalWrite merges fields into collection/id only if the document
// currently matches expect.
func ConditionalWrite(ctx context.Context, s Store, collection, id string, expect, fields Fields) error {
	return s.Apply(ctx, UpdateOp(collection, id, expect, fields))
}

// Matches reports whether every field in expect equals the value in fields.
func Matches(fields, expect Fields) bool {
	for k, want := range expect {
		got, ok := fields[k]
		if !ok {
			return false
		}
		if !Equal(got, want) {
			return false
		}
	}
	return true
}

// Equal compares two field values across backend representations:
// numbers compare by value, named string types by their string, times by instant.
func Equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return nil
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return v
}
