// Package store persists the current session so it survives a restart.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gundaabinav333/authshell/internal/core/domain"
)

// MemoryStore keeps the record in process memory. It backs tests and the
// --ephemeral CLI mode.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	codec  codec
	logger *slog.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		logger: slog.Default(),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, token string, cred *domain.Credential) error {
	tokenVal, userVal, err := m.codec.encode(token, cred)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[KeyToken] = tokenVal
	m.values[KeyUser] = userVal
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) (*Record, error) {
	m.mu.RLock()
	tokenVal, hasToken := m.values[KeyToken]
	userVal, hasUser := m.values[KeyUser]
	m.mu.RUnlock()

	if !hasToken && !hasUser {
		return nil, nil
	}

	rec, err := m.codec.decode(tokenVal, userVal)
	if err != nil {
		m.logger.Warn("ignoring persisted session", "error", err)
		return nil, nil
	}
	return rec, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, KeyToken)
	delete(m.values, KeyUser)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}

// Len returns the number of persisted keys (0 or 2 for well-formed records).
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
