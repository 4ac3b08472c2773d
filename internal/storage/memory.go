package storage

import "sync"

// MemoryStore keeps serialized records in memory. Values go through the same
// encoding as the SQLite store so decode failures behave identically.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Get implements Store.
func (m *MemoryStore) Get(key string, v any) error {
	m.mu.RLock()
	data, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return decode(key, data, v)
}

// Set implements Store.
func (m *MemoryStore) Set(key string, v any) error {
	data, err := encode(key, v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()
	return nil
}

// SetRaw stores bytes verbatim under key, bypassing encoding.
func (m *MemoryStore) SetRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
}

// Close implements Store.
func (m *MemoryStore) Close() error { return nil }
