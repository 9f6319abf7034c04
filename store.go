package skillsprint

import (
	"context"
	"sync"
)

// Keys under which the session fields are persisted
const (
	KeyToken    = "token"
	KeyRole     = "role"
	KeyUsername = "username"
)

// SessionKeys lists every key owned by the session
var SessionKeys = []string{KeyToken, KeyRole, KeyUsername}

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps the session in process memory. It survives hard
// redirects within the process but not a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range SessionKeys {
		delete(m.values, key)
	}
	return nil
}
