package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory storage. Suitable for a
// single replica; use RedisStore when sessions must survive restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Record
	ticker   *time.Ticker
	done     chan struct{}
}

// NewMemoryStore creates an in-memory session store. A positive
// cleanupInterval starts a background loop evicting expired records.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]Record),
		done:     make(chan struct{}),
	}

	if cleanupInterval > 0 {
		store.ticker = time.NewTicker(cleanupInterval)
		go store.cleanupLoop()
	}

	return store
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	if rec.Token == "" {
		return ErrInvalidToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[rec.Token] = rec
	return nil
}

func (m *MemoryStore) Get(_ context.Context, token string) (Record, error) {
	m.mu.RLock()
	rec, exists := m.sessions[token]
	m.mu.RUnlock()

	if !exists {
		return Record{}, ErrSessionNotFound
	}

	if rec.IsExpired() {
		m.mu.Lock()
		delete(m.sessions, token)
		m.mu.Unlock()
		return Record{}, ErrSessionExpired
	}

	return rec, nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
	return nil
}

// Close stops the cleanup loop.
func (m *MemoryStore) Close() {
	if m.ticker != nil {
		m.ticker.Stop()
		close(m.done)
	}
}

func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			m.deleteExpired()
		case <-m.done:
			return
		}
	}
}

func (m *MemoryStore) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for token, rec := range m.sessions {
		if now.After(rec.ExpiresAt) {
			delete(m.sessions, token)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
