package tokenstore

import (
	"context"
	"crypto/subtle"
	"sync"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/pkg/util"
)

// MemoryStore keeps refresh tokens in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]auth.RefreshTokenRecord
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]auth.RefreshTokenRecord)}
}

func (s *MemoryStore) Replace(_ context.Context, ownerID, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[ownerID] = auth.RefreshTokenRecord{OwnerID: ownerID, Value: value, IssuedAt: util.NowUTC()}
	return nil
}

func (s *MemoryStore) Validate(_ context.Context, ownerID, presented string) (bool, error) {
	s.mu.RLock()
	record, ok := s.records[ownerID]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return matches(record.Value, presented), nil
}

func matches(stored, presented string) bool {
	if stored == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

var _ auth.RefreshTokenStore = (*MemoryStore)(nil)
