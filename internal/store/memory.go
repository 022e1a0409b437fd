// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Holds live bowling sessions; finished games are archived by sqlstore.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Idle sessions are dropped by Prune.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/bowling/internal/game"
)

// ErrNotFound is returned by Get for unknown session IDs.
var ErrNotFound = errors.New("game not found")

// Store defines the persistence interface for live sessions.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session is unknown.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Delete drops a session; unknown IDs are ignored.
	Delete(ctx context.Context, id string) error
}

// Memory is an in-memory map-based Store implementation.
type Memory struct {
	mu    sync.RWMutex          // guards games map
	games map[string]*game.Game // keyed by Game.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() *Memory {
	return &Memory{games: make(map[string]*game.Game)}
}

// Save adds or updates the session in the map.
func (m *Memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = g
	return nil
}

// Get looks up a session by ID.
func (m *Memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

// Delete removes a session.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

// Len reports the number of live sessions.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Prune drops sessions not touched since before cutoff and returns how many went.
func (m *Memory) Prune(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, g := range m.games {
		if g.LastSeen().Before(cutoff) {
			delete(m.games, id)
			n++
		}
	}
	return n
}
