package localstore

import (
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store used by tests and ephemeral setups.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailSaves forces Save to return this error when set.
	FailSaves error
}

func NewMemory() *MemoryStore {
	return &MemoryStore{data: map[string][]byte{}}
}

func (m *MemoryStore) Save(key string, value any) error {
	if m.FailSaves != nil {
		return m.FailSaves
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = payload
	return nil
}

func (m *MemoryStore) Load(key string, dest any) error {
	m.mu.RLock()
	payload, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(payload, dest)
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
