package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps documents in process memory. Apply batches run under
// a single lock, so conditional writes are linearizable.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Fields
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]Fields)}
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: f.Clone()}, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	return m.Apply(ctx, SetOp(collection, id, fields))
}

func (m *MemoryStore) Apply(ctx context.Context, ops ...Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	type key struct{ collection, id string }
	staged := make(map[key]Fields, len(ops))
	order := make([]key, 0, len(ops))

	for i, op := range ops {
		k := key{op.Collection, op.ID}
		cur, exists := staged[k]
		if !exists {
			cur, exists = m.data[op.Collection][op.ID]
		}
		switch {
		case op.Create && exists:
			return &PreconditionError{Index: i, Collection: op.Collection, ID: op.ID}
		case op.Expect != nil && (!exists || !Matches(cur, op.Expect)):
			return &PreconditionError{Index: i, Collection: op.Collection, ID: op.ID}
		}

		next := make(Fields, len(cur)+len(op.Fields))
		for k, v := range cur {
			next[k] = v
		}
		for k, v := range op.Fields {
			next[k] = v
		}
		if _, seen := staged[k]; !seen {
			order = append(order, k)
		}
		staged[k] = next
	}

	for _, k := range order {
		coll, ok := m.data[k.collection]
		if !ok {
			coll = make(map[string]Fields)
			m.data[k.collection] = coll
		}
		coll[k.id] = staged[k]
	}
	return nil
}

func (m *MemoryStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document
	for id, f := range m.data[collection] {
		if !matchesFilters(f, filters) {
			continue
		}
		docs = append(docs, Document{ID: id, Fields: f.Clone()})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[collection], id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func matchesFilters(f Fields, filters []Filter) bool {
	for _, flt := range filters {
		got, ok := f[flt.Field]
		if !ok || !Equal(got, flt.Value) {
			return false
		}
	}
	return true
}
