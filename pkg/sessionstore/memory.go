package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// Memory is a process-local Store. Expired entries are hidden on read and
// removed by Sweep.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string, dst any) error {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expires) {
		return ErrNotFound
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return fmt.Errorf("decode session %s: %w", key, err)
	}
	return nil
}

func (m *Memory) Put(_ context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", key, err)
	}
	m.mu.Lock()
	m.entries[key] = memoryEntry{data: data, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Sweep drops expired entries and returns how many it removed
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Len counts stored entries, expired ones included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
