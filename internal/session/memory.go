package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store with per-record expiry. It is the
// default backend and the one used in tests. Thread-safe via mutex.
type MemoryStore struct {
	ttl     time.Duration
	nowFunc func() time.Time // for testing

	mu      sync.Mutex
	records map[string]memoryRecord
}

type memoryRecord struct {
	creds     Credentials
	expiresAt time.Time
}

// MemoryOption configures the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.nowFunc = f
	}
}

// NewMemoryStore creates an in-memory session store whose records
// expire ttl after their last write.
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		ttl:     ttl,
		nowFunc: time.Now,
		records: make(map[string]memoryRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get implements Store.Get. Expired records are dropped on read.
func (s *MemoryStore) Get(_ context.Context, id string) (*Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	if s.nowFunc().After(rec.expiresAt) {
		delete(s.records, id)
		return nil, nil
	}

	creds := rec.creds
	return &creds, nil
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, id string, creds *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = memoryRecord{
		creds:     *creds,
		expiresAt: s.nowFunc().Add(s.ttl),
	}
	return nil
}

// Delete implements Store.Delete.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// Ping implements Store.Ping. The in-memory store is always reachable.
func (*MemoryStore) Ping(_ context.Context) error {
	return nil
}
