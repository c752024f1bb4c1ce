package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/PeterJohnBishop/go-chat-cli/internal/domain"
)

// MemoryStore keeps the session in process memory. Used by tests and for
// ephemeral sessions that should not outlive the command.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Save stores the session triple. The map is swapped under one lock
// acquisition, so readers never observe a partial write.
func (m *MemoryStore) Save(_ context.Context, s Session) error {
	userJSON, err := json.Marshal(s.User.Redacted())
	if err != nil {
		return fmt.Errorf("encode current user: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[keyToken] = s.Token
	m.values[keyRefreshToken] = s.RefreshToken
	m.values[keyCurrentUser] = string(userJSON)
	return nil
}

// Token returns the stored bearer token, if any.
func (m *MemoryStore) Token(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[keyToken]
	return v, ok, nil
}

// RefreshToken returns the stored refresh token, if any.
func (m *MemoryStore) RefreshToken(_ context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[keyRefreshToken]
	return v, ok, nil
}

// CurrentUser returns the stored user snapshot, if any.
func (m *MemoryStore) CurrentUser(_ context.Context) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[keyCurrentUser]
	if !ok {
		return domain.User{}, false, nil
	}
	var user domain.User
	if err := json.Unmarshal([]byte(v), &user); err != nil {
		return domain.User{}, false, fmt.Errorf("decode current user: %w", err)
	}
	return user, true, nil
}

// Clear removes all three values under one lock acquisition.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, keyToken)
	delete(m.values, keyRefreshToken)
	delete(m.values, keyCurrentUser)
	return nil
}
