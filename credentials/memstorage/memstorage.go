package memstorage

import (
	"context"
	"sync"

	"github.com/jrsteele09/fogeapi-client/credentials"
)

var _ credentials.Storage = (*MemStorage)(nil)

// MemStorage keeps entries in process memory. Used by tests and STORAGE_BACKEND=memory.
type MemStorage struct {
	values map[string]string
	lock   sync.RWMutex
}

func New() *MemStorage {
	return &MemStorage{
		values: make(map[string]string),
	}
}

func (m *MemStorage) Get(_ context.Context, key string) (string, bool, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	value, ok := m.values[key]
	return value, ok, nil
}

func (m *MemStorage) SetAll(_ context.Context, entries map[string]string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for k, v := range entries {
		m.values[k] = v
	}
	return nil
}

func (m *MemStorage) RemoveAll(_ context.Context, keys ...string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Set writes a single entry. Tests use it to build partial states.
func (m *MemStorage) Set(key, value string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.values[key] = value
}

// Len returns the number of stored entries.
func (m *MemStorage) Len() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.values)
}

func (m *MemStorage) Close() error {
	return nil
}
