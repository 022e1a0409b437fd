// internal/game/types.go
//
// Type definitions for a bowling session.
// Defines:
//   - State: coarse session state reported to clients.
//   - Game: one session wrapping a scoring engine.
//   - Snapshot: an immutable copy of a session for readers.

package game

import (
	"sync"
	"time"

	"github.com/robalobadob/bowling/internal/bowling"
)

// State is the coarse session state.
type State string

const (
	StatePlaying  State = "playing"
	StateFinished State = "finished"
)

// Game holds a single bowling session.
// The engine is not safe for concurrent use, so every access goes through mu.
type Game struct {
	ID         string    // uuid
	OwnerID    string    // user ID or anonymous cookie ID
	StartedAt  time.Time // set on New and on Reset
	FinishedAt time.Time // zero while playing

	mu     sync.Mutex
	engine *bowling.Engine
	rolls  []int // accepted rolls, in order
	seen   time.Time
}

// Snapshot is a point-in-time copy of a Game.
type Snapshot struct {
	ID         string
	OwnerID    string
	State      State
	Frames     []bowling.Frame
	Cursor     bowling.Cursor
	Rolls      []int
	Total      int
	StartedAt  time.Time
	FinishedAt time.Time
}
