package faq

import (
	"context"
	"sync"

	domfaq "github.com/kailas-cloud/askdex/internal/domain/faq"
)

// Memory is an in-process FAQ store for library embedding and tests.
type Memory struct {
	mu      sync.RWMutex
	entries []domfaq.Entry
}

// NewMemory creates an in-memory FAQ store seeded with the given entries.
func NewMemory(entries ...domfaq.Entry) *Memory {
	m := &Memory{}
	m.entries = append(m.entries, entries...)
	return m
}

// Put appends an entry, replacing any previous answer for the same question.
func (m *Memory) Put(_ context.Context, e domfaq.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.entries {
		if existing.Question() == e.Question() {
			m.entries[i] = e
			return nil
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

// List returns all entries in insertion order.
func (m *Memory) List(_ context.Context) ([]domfaq.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domfaq.Entry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
