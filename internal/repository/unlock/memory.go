// Package unlock holds the session-scoped folder unlock stores.
package unlock

import (
	"context"
	"sync"
	"time"

	vaultRepo "docvault/internal/domain/repositories/vault"
)

type sessionKey struct {
	organizationID string
	userID         string
	sessionID      string
}

// MemoryStore keeps unlock entries in process memory. Entries expire after ttl
// (zero disables expiry).
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[sessionKey]map[string]time.Time // folder id -> unlocked at
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[sessionKey]map[string]time.Time),
	}
}

func keyOf(k vaultRepo.UnlockKey) sessionKey {
	return sessionKey{organizationID: k.OrganizationID, userID: k.UserID, sessionID: k.SessionID}
}

func (s *MemoryStore) MarkUnlocked(_ context.Context, key vaultRepo.UnlockKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk := keyOf(key)
	folders, ok := s.sessions[sk]
	if !ok {
		folders = make(map[string]time.Time)
		s.sessions[sk] = folders
	}
	folders[key.FolderID] = s.now()
	return nil
}

func (s *MemoryStore) IsUnlocked(_ context.Context, key vaultRepo.UnlockKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folders, ok := s.sessions[keyOf(key)]
	if !ok {
		return false, nil
	}
	at, ok := folders[key.FolderID]
	if !ok {
		return false, nil
	}
	if s.ttl > 0 && s.now().Sub(at) > s.ttl {
		delete(folders, key.FolderID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) ForgetSession(_ context.Context, orgID, userID, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey{organizationID: orgID, userID: userID, sessionID: sessionID})
	return nil
}
