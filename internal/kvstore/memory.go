package kvstore

import (
	"sort"
	"sync"
)

// Memory is an in-memory Store.
type Memory struct {
	// m maps a store to its keys.
	m map[string]map[string]string

	// mu provides mutual exclusion
	mu sync.Mutex
}

var _ Store = &Memory{}

// NewMemory creates a new Memory store.
func NewMemory() *Memory {
	return &Memory{m: map[string]map[string]string{}}
}

// Get implements Store.
func (kvs *Memory) Get(store, key string) (string, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	value, ok := kvs.m[store][key]
	if !ok {
		return "", ErrNoSuchKey
	}
	return value, nil
}

// Set implements Store.
func (kvs *Memory) Set(store, key, value string) error {
	if err := validateNames(store, key); err != nil {
		return err
	}
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	if kvs.m == nil {
		kvs.m = map[string]map[string]string{}
	}
	if kvs.m[store] == nil {
		kvs.m[store] = map[string]string{}
	}
	kvs.m[store][key] = value
	return nil
}

// Remove implements Store.
func (kvs *Memory) Remove(store, key string) error {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	delete(kvs.m[store], key)
	return nil
}

// Has implements Store.
func (kvs *Memory) Has(store, key string) (bool, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	_, ok := kvs.m[store][key]
	return ok, nil
}

// Clear implements Store.
func (kvs *Memory) Clear(store string) error {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	delete(kvs.m, store)
	return nil
}

// Keys implements Store.
func (kvs *Memory) Keys(store string) ([]string, error) {
	kvs.mu.Lock()
	defer kvs.mu.Unlock()
	keys := []string{}
	for key := range kvs.m[store] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close implements Store.
func (kvs *Memory) Close() error {
	return nil
}
