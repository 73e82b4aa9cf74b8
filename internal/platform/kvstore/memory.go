package kvstore

import (
	"context"
	"strings"
	"sync"
)

// Memory is an in-process Store. It is used for local runs and as the fake in tests.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string

	// FailWith, when set, is returned by every operation. Tests use it to simulate quota
	// or permission failures.
	FailWith error
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	if strings.TrimSpace(key) == "" {
		return "", false, ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return "", false, m.FailWith
	}
	value, ok := m.values[key]
	return value, ok, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key, value string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.values[key] = value
	return nil
}

// Remove implements Store.
func (m *Memory) Remove(_ context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	delete(m.values, key)
	return nil
}

// Ping implements Pinger.
func (m *Memory) Ping(context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.FailWith
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
