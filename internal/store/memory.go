package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/interview-planner/internal/planner"
)

// memoryEntry guards one session
type memoryEntry struct {
	mu         sync.Mutex
	session    *planner.Session
	lastAccess time.Time
	deleted    bool
}

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	entries map[string]*memoryEntry
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Create implements Store.
func (m *MemoryStore) Create(_ context.Context, s *planner.Session) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("session id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[s.ID]; exists {
		return ErrExists
	}
	m.entries[s.ID] = &memoryEntry{session: s, lastAccess: m.now()}
	return nil
}

// Get implements Store. The returned session is a deep copy.
func (m *MemoryStore) Get(_ context.Context, id string) (*planner.Session, error) {
	entry, err := m.lock(id)
	if err != nil {
		return nil, err
	}
	defer entry.mu.Unlock()

	return cloneSession(entry.session)
}

// Update implements Store.
func (m *MemoryStore) Update(_ context.Context, id string, fn func(*planner.Session) error) error {
	entry, err := m.lock(id)
	if err != nil {
		return err
	}
	defer entry.mu.Unlock()

	working, err := cloneSession(entry.session)
	if err != nil {
		return err
	}
	if err := fn(working); err != nil {
		return err
	}
	entry.session = working
	entry.lastAccess = m.now()
	return nil
}

// Take implements Store.
func (m *MemoryStore) Take(_ context.Context, id string, fn func(*planner.Session) error) error {
	entry, err := m.lock(id)
	if err != nil {
		return err
	}

	working, err := cloneSession(entry.session)
	if err == nil {
		err = fn(working)
	}
	if err != nil {
		entry.mu.Unlock()
		return err
	}
	entry.deleted = true
	entry.mu.Unlock()

	m.mu.Lock()
	if m.entries[id] == entry {
		delete(m.entries, id)
	}
	m.mu.Unlock()
	return nil
}

// remove drops the session once in-flight operations on it have finished.
func (m *MemoryStore) remove(id string) error {
	m.mu.Lock()
	entry, exists := m.entries[id]
	if !exists {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.entries, id)
	m.mu.Unlock()

	entry.mu.Lock()
	taken := entry.deleted
	entry.deleted = true
	entry.mu.Unlock()
	if taken {
		return ErrNotFound
	}
	return nil
}

// Len implements Store.
func (m *MemoryStore) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Sweep deletes sessions that have not been touched for longer than ttl and returns
// their ids.
func (m *MemoryStore) Sweep(ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	cutoff := m.now().Add(-ttl)

	m.mu.RLock()
	candidates := make([]string, 0)
	for id, entry := range m.entries {
		entry.mu.Lock()
		if entry.lastAccess.Before(cutoff) {
			candidates = append(candidates, id)
		}
		entry.mu.Unlock()
	}
	m.mu.RUnlock()

	removed := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if err := m.remove(id); err == nil {
			removed = append(removed, id)
		}
	}
	return removed
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}

// lock returns the entry for id with its mutex held.
func (m *MemoryStore) lock(id string) (*memoryEntry, error) {
	m.mu.RLock()
	entry, exists := m.entries[id]
	m.mu.RUnlock()
	if !exists {
		return nil, ErrNotFound
	}

	entry.mu.Lock()
	if entry.deleted {
		entry.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry, nil
}

// cloneSession copies a session so callers never share slices with the store.
func cloneSession(s *planner.Session) (*planner.Session, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to copy session: %w", err)
	}
	var out planner.Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to copy session: %w", err)
	}
	return &out, nil
}
