package session_store

import (
	"context"
	"sync"

	"github.com/jsamit27/ava/internal/core/domain"
)

// MemoryStore сессии в памяти процесса, теряются при перезапуске
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
	byLead   map[string]string
	logs     map[string][]domain.LogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]domain.Session),
		byLead:   make(map[string]string),
		logs:     make(map[string][]domain.LogEntry),
	}
}

func (s *MemoryStore) Save(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	s.byLead[sess.LeadID] = sess.ID
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) FindByLead(_ context.Context, leadID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byLead[leadID]
	if !ok {
		return nil, nil
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return &sess, nil
}

func (s *MemoryStore) AppendLog(_ context.Context, id string, entry domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	s.logs[id] = append(s.logs[id], entry)
	return nil
}

func (s *MemoryStore) Logs(_ context.Context, id string) ([]domain.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[id]; !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := make([]domain.LogEntry, len(s.logs[id]))
	copy(out, s.logs[id])
	return out, nil
}
