// Package prefs persists small user selections (last viewed months, the
// session credential) across restarts of the client.
package prefs

import (
	"sync"
)

// Keys persisted by the client.
const (
	KeyBudgetMonth    = "lastBudgetMonth"
	KeyAnalyticsMonth = "analyticsMonth"
	KeyToken          = "token"
)

// Store is a process-wide key/value store. Values never expire.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// Memory is an in-process Store, used by tests and as a fallback when no
// preference file is configured.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// GetOr returns the stored value for key, or def when the key was never set.
func GetOr(s Store, key, def string) string {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}
