package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory with an optional TTL.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Session
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore constructs a MemoryStore. A zero ttl keeps sessions forever.
func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{items: make(map[string]Session), ttl: ttl, now: now}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if expired(s, m.now()) {
		delete(m.items, id)
		return Session{}, ErrNotFound
	}
	s.Payload = append([]byte(nil), s.Payload...)
	return s, nil
}

func (m *MemoryStore) Set(ctx context.Context, s Session) error {
	if s.ID == "" {
		return ErrMissingID
	}
	now := m.now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.items[s.ID]; ok && !prev.CreatedAt.IsZero() {
		s.CreatedAt = prev.CreatedAt
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.ExpiresAt == nil && m.ttl > 0 {
		exp := now.Add(m.ttl)
		s.ExpiresAt = &exp
	}
	s.Payload = append([]byte(nil), s.Payload...)
	m.items[s.ID] = s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}
