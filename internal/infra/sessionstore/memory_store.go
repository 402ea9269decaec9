package sessionstore

import (
	"context"
	"sync"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/pkg/util"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]auth.SessionTicket
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]auth.SessionTicket)}
}

func (s *MemoryStore) Save(_ context.Context, ticket auth.SessionTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[ticket.ID] = ticket
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (auth.SessionTicket, error) {
	s.mu.RLock()
	ticket, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return auth.SessionTicket{}, auth.ErrSessionNotFound
	}
	if ticket.Expired(util.NowUTC()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return auth.SessionTicket{}, auth.ErrSessionNotFound
	}
	return ticket, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

var _ auth.SessionStore = (*MemoryStore)(nil)
