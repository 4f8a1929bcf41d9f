package store

import (
	"encoding/json"
	"sync"
)

// KV is the generic collection store the core works against. Collections
// (orders, customers, ledger entries, config override) are read and written
// wholesale as JSON documents under a single key, so every mutation is one
// atomic replace.
type KV interface {
	// Get unmarshals the value stored under key into dest. It returns false
	// when the key has never been written.
	Get(key string, dest interface{}) (bool, error)
	Set(key string, value interface{}) error
	Delete(key string) error
}

// Memory is an in-process KV used in tests and as a last-resort fallback
// when no database is reachable.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(key string, dest interface{}) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
