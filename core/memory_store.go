package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryKeyValueStore is the default store when none is configured. Nothing
// survives a restart, so production wiring should supply a persistent store.
type MemoryKeyValueStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryKeyValueStore() *MemoryKeyValueStore {
	return &MemoryKeyValueStore{entries: map[string]string{}}
}

func (s *MemoryKeyValueStore) Get(_ context.Context, key string) (string, bool, error) {
	if s == nil {
		return "", false, fmt.Errorf("core: memory key-value store is not configured")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[strings.TrimSpace(key)]
	return value, ok, nil
}

func (s *MemoryKeyValueStore) Set(_ context.Context, key string, value string) error {
	if s == nil {
		return fmt.Errorf("core: memory key-value store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("core: key is required")
	}
	s.mu.Lock()
	s.entries[key] = value
	s.mu.Unlock()
	return nil
}

func (s *MemoryKeyValueStore) Remove(_ context.Context, key string) error {
	if s == nil {
		return fmt.Errorf("core: memory key-value store is not configured")
	}
	s.mu.Lock()
	delete(s.entries, strings.TrimSpace(key))
	s.mu.Unlock()
	return nil
}

// Snapshot returns a copy of all entries.
func (s *MemoryKeyValueStore) Snapshot() map[string]string {
	if s == nil {
		return map[string]string{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.entries))
	for key, value := range s.entries {
		out[key] = value
	}
	return out
}

var _ KeyValueStore = (*MemoryKeyValueStore)(nil)
