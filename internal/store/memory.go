// internal/store/memory.go
//
// In-memory registry of live game sessions.
//
// Characteristics:
//   - Stores *session.Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Sessions idle longer than the TTL are closed and evicted by Sweep / Run.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nicorema/wedding/internal/session"
)

// ErrNotFound is returned by Get and Delete for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Store defines the registry interface for game sessions.
type Store interface {
	// Save adds or replaces a session under its ID.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete closes and removes a session.
	Delete(ctx context.Context, id string) error

	// Len reports the number of live sessions.
	Len() int

	// Sweep closes and evicts sessions idle since before now-ttl.
	Sweep(now time.Time, ttl time.Duration) int

	// Close closes and evicts every session.
	Close()
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex                // guards sessions map
	sessions map[string]*session.Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*session.Session)}
}

// Save adds or replaces the session in the map. A replaced session is closed.
func (m *memory) Save(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	old, ok := m.sessions[s.ID()]
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	if ok && old != s {
		old.Close()
	}
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(_ context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *memory) Sweep(now time.Time, ttl time.Duration) int {
	cutoff := now.Add(-ttl)
	var stale []*session.Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	// Close outside the map lock; Close waits for the tick goroutine.
	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		log.Debug().Int("evicted", len(stale)).Dur("ttl", ttl).Msg("swept idle sessions")
	}
	return len(stale)
}

func (m *memory) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*session.Session)
	m.mu.Unlock()
	for _, s := range all {
		s.Close()
	}
}

// Run sweeps st every interval until ctx is done.
func Run(ctx context.Context, st Store, interval, ttl time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			st.Sweep(now, ttl)
		}
	}
}
