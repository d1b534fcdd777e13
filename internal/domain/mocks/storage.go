package mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/ersonp/entrylink/internal/domain/entities"
)

// EntryStore is a mock implementation of ports.EntryStore.
// Records are copied on every read and write, like files on disk.
type EntryStore struct {
	Err error

	mu      sync.Mutex
	entries map[string]map[string]entities.Record
	writes  int
}

// NewEntryStore creates a new mock EntryStore.
func NewEntryStore() *EntryStore {
	return &EntryStore{entries: make(map[string]map[string]entities.Record)}
}

// Put seeds an entry without counting it as a write.
func (m *EntryStore) Put(collection, name string, record entities.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[collection] == nil {
		m.entries[collection] = make(map[string]entities.Record)
	}
	m.entries[collection][name] = cloneRecord(record)
}

// Get returns a copy of an entry for assertions.
func (m *EntryStore) Get(collection, name string) entities.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneRecord(m.entries[collection][name])
}

// Writes returns how many times WriteEntry succeeded.
func (m *EntryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// ListEntries returns the sorted entry names of a collection.
func (m *EntryStore) ListEntries(_ context.Context, collection string) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.entries[collection]))
	for name := range m.entries[collection] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadEntry returns a copy of an entry.
func (m *EntryStore) ReadEntry(_ context.Context, collection, name string) (entities.Record, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.entries[collection][name]
	if !ok {
		return nil, entities.ErrEntryNotFound
	}
	return cloneRecord(rec), nil
}

// WriteEntry stores a copy of record.
func (m *EntryStore) WriteEntry(_ context.Context, collection, name string, record entities.Record) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[collection] == nil {
		m.entries[collection] = make(map[string]entities.Record)
	}
	m.entries[collection][name] = cloneRecord(record)
	m.writes++
	return nil
}

// IndexStore is a mock implementation of ports.IndexStore.
type IndexStore struct {
	Err error

	mu      sync.Mutex
	indexes map[entities.IndexKey]entities.ForeignKeyIndex
	saves   int
}

// NewIndexStore creates a new mock IndexStore.
func NewIndexStore() *IndexStore {
	return &IndexStore{indexes: make(map[entities.IndexKey]entities.ForeignKeyIndex)}
}

// Saves returns how many indices were saved.
func (m *IndexStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// SaveIndex stores idx under key.
func (m *IndexStore) SaveIndex(_ context.Context, key entities.IndexKey, idx entities.ForeignKeyIndex) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexes[key] = idx
	m.saves++
	return nil
}

// LoadIndex returns the index stored under key.
func (m *IndexStore) LoadIndex(_ context.Context, key entities.IndexKey) (entities.ForeignKeyIndex, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	idx, ok := m.indexes[key]
	if !ok {
		return nil, entities.ErrIndexNotFound
	}
	return idx, nil
}

func cloneRecord(r entities.Record) entities.Record {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		panic(err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out entities.Record
	if err := dec.Decode(&out); err != nil {
		panic(err)
	}
	return out
}
