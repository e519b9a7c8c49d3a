package statestore

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// Memory is an in-process store. The clock is injected so expiry can be
// driven deterministically.
type Memory[T any] struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[int64]memoryEntry[T]
}

func NewMemory[T any](ttl time.Duration, now func() time.Time) *Memory[T] {
	if now == nil {
		now = time.Now
	}
	return &Memory[T]{
		ttl:   ttl,
		now:   now,
		items: make(map[int64]memoryEntry[T]),
	}
}

func (m *Memory[T]) Get(_ context.Context, userID int64) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.live(userID)
	if !ok {
		var zero T
		return zero, false, nil
	}
	return entry.value, true, nil
}

// Create stores value only if the user has no live entry.
func (m *Memory[T]) Create(_ context.Context, userID int64, value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(userID); ok {
		return ErrExists
	}
	m.items[userID] = memoryEntry[T]{value: value, expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Put replaces a live entry and restarts its TTL.
func (m *Memory[T]) Put(_ context.Context, userID int64, value T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(userID); !ok {
		return ErrNotFound
	}
	m.items[userID] = memoryEntry[T]{value: value, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.items, userID)
	m.mu.Unlock()
	return nil
}

// Sweep drops expired entries and reports how many were removed.
func (m *Memory[T]) Sweep(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, entry := range m.items {
		if !now.Before(entry.expiresAt) {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// live must be called with mu held.
func (m *Memory[T]) live(userID int64) (memoryEntry[T], bool) {
	entry, ok := m.items[userID]
	if !ok {
		return memoryEntry[T]{}, false
	}
	if !m.now().Before(entry.expiresAt) {
		delete(m.items, userID)
		return memoryEntry[T]{}, false
	}
	return entry, true
}
