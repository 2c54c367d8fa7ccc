package store

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/LiveSession/internal/domain"
)

// MemoryStore keeps sessions in process memory. Nothing survives a restart,
// so it is meant for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.Session),
		now:      time.Now,
	}
}

func (m *MemoryStore) Create(_ context.Context, s domain.Session) (domain.Session, error) {
	if s.Identifier == "" {
		return domain.Session{}, domain.ErrEmptyIdentifier
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.Identifier]; ok {
		return domain.Session{}, domain.ErrDuplicateIdentifier
	}
	now := m.now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	m.sessions[s.Identifier] = s
	return s, nil
}

func (m *MemoryStore) FindByIdentifier(_ context.Context, id string) (domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) Close() error { return nil }
