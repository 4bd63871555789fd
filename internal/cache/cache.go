package cache

import (
	"context"
	"sync"
	"time"

	"sahasatis/backend/internal/cart"
	"sahasatis/backend/internal/payment"
)

// SessionSnapshot is the serialized state of one open order session: the
// cart, the payment composer, and the bound customer. Saved after every
// mutation so an in-progress order survives a process restart.
type SessionSnapshot struct {
	ID         string           `json:"id"`
	CustomerID string           `json:"customer_id,omitempty"`
	Cart       cart.Snapshot    `json:"cart"`
	Payments   payment.Snapshot `json:"payments"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

type SessionStore interface {
	Save(ctx context.Context, snap SessionSnapshot, ttl time.Duration) error
	Load(ctx context.Context, id string) (*SessionSnapshot, bool, error)
	Delete(ctx context.Context, id string) error
}

// MemorySessionStore keeps snapshots in process memory. TTLs are honored
// lazily on Load; good enough for dev mode and tests.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	snap      SessionSnapshot
	expiresAt time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[string]memoryEntry)}
}

func (s *MemorySessionStore) Save(_ context.Context, snap SessionSnapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memoryEntry{snap: snap}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	s.entries[snap.ID] = entry
	return nil
}

func (s *MemorySessionStore) Load(_ context.Context, id string) (*SessionSnapshot, bool, error) {
	s.mu.RLock()
	entry, exists := s.entries[id]
	s.mu.RUnlock()

	if !exists {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		return nil, false, nil
	}
	snap := entry.snap
	return &snap, true, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, id)
	return nil
}
