package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage keeps sessions in process memory. Suitable for tests and
// single-process deployments without durability needs.
type MemoryStorage struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{sessions: make(map[string]*Session)}
}

func (m *MemoryStorage) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return copySession(s), nil
	}
	return &Session{ID: id}, nil
}

func (m *MemoryStorage) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := copySession(s)
	stored.UpdatedAt = time.Now().UTC()
	m.sessions[s.ID] = stored
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func copySession(s *Session) *Session {
	c := *s
	c.Contexts = append(c.Contexts[:0:0], s.Contexts...)
	return &c
}
