package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process SnapshotStore used in tests and when no
// cache backend is configured. Entries round-trip through JSON so callers
// get the same value-copy semantics the Redis store has.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key][]byte)}
}

// Load returns the stored entry or ErrNotFound.
func (s *MemoryStore) Load(_ context.Context, key Key) (*Entry, error) {
	s.mu.RLock()
	data, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Save stores the entry, replacing any previous snapshot for the key.
func (s *MemoryStore) Save(_ context.Context, key Key, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[key] = data
	s.mu.Unlock()
	return nil
}
