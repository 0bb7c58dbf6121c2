package repository

import (
	"context"
	"fmt"
	"github.com/nikolayk812/spicecart/internal/port"
	"sync"
)

// MemoryKV is a process-local store. It can be capped and switched off, which
// makes it useful for exercising the degraded paths of callers.
type MemoryKV struct {
	mu          sync.RWMutex
	entries     map[string]string
	quotaBytes  int
	unavailable bool
}

// NewMemoryKV returns an empty store. A positive quotaBytes caps the total
// size of all stored values.
func NewMemoryKV(quotaBytes int) *MemoryKV {
	return &MemoryKV{
		entries:    make(map[string]string),
		quotaBytes: quotaBytes,
	}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.unavailable {
		return "", false, fmt.Errorf("memory.Get: %w", port.ErrUnavailable)
	}
	value, ok := m.entries[key]
	return value, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unavailable {
		return fmt.Errorf("memory.Set: %w", port.ErrUnavailable)
	}
	if m.quotaBytes > 0 {
		used := 0
		for k, v := range m.entries {
			if k != key {
				used += len(v)
			}
		}
		if used+len(value) > m.quotaBytes {
			return fmt.Errorf("memory.Set key[%s]: %w", key, port.ErrQuotaExceeded)
		}
	}

	m.entries[key] = value
	return nil
}

// SetAvailable toggles whether the store accepts reads and writes.
func (m *MemoryKV) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = !available
}

// SetQuota changes the byte cap; zero removes it.
func (m *MemoryKV) SetQuota(quotaBytes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotaBytes = quotaBytes
}

// Put writes value bypassing quota and availability checks.
func (m *MemoryKV) Put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}
