// internal/game/game.go
//
// Session layer around the scoring engine.
// Responsibilities:
//   - Create sessions with a uuid and a configurable frame count.
//   - Apply rolls through the guarded engine entry point.
//   - Track state transitions: playing → finished, and reset while playing.
//
// Notes:
//   - Each Game owns its own engine; nothing is shared between games.
//   - All methods lock the game, so handlers may call them concurrently.
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/bowling/internal/bowling"
)

// now is replaced in tests.
var now = time.Now

// New constructs a session for a game of frames frames.
func New(ownerID string, frames int) *Game {
	t := now().UTC()
	return &Game{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		StartedAt: t,
		engine:    bowling.New(frames),
		rolls:     []int{},
		seen:      t,
	}
}

// ApplyRoll validates and records a roll.
// It returns the session as it stood right after the roll, taken under the
// same lock, or bowling.ErrGameFinished / bowling.ErrInvalidPins.
func (g *Game) ApplyRoll(pins int) (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seen = now().UTC()

	if _, err := g.engine.Play(pins); err != nil {
		return g.snapshot(), err
	}
	g.rolls = append(g.rolls, pins)
	if g.engine.IsGameFinished() {
		g.FinishedAt = g.seen
	}
	return g.snapshot(), nil
}

// Reset starts an unfinished session over with the same ID and frame count.
// A finished session is archived and cannot be replayed; Reset returns
// bowling.ErrGameFinished and leaves it untouched.
func (g *Game) Reset() (Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.engine.IsGameFinished() {
		return g.snapshot(), bowling.ErrGameFinished
	}
	g.engine.Reset()
	g.rolls = g.rolls[:0]
	g.seen = now().UTC()
	g.StartedAt = g.seen
	return g.snapshot(), nil
}

// Snapshot copies the session state under the lock.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() Snapshot {
	return Snapshot{
		ID:         g.ID,
		OwnerID:    g.OwnerID,
		State:      g.state(),
		Frames:     g.engine.Frames(),
		Cursor:     g.engine.Cursor(),
		Rolls:      append([]int{}, g.rolls...),
		Total:      g.engine.Total(),
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
	}
}

// FrameCount reports the configured number of frames.
func (g *Game) FrameCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.engine.FrameCount()
}

// LastSeen reports when the session was last touched.
func (g *Game) LastSeen() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.seen
}

// state reports the coarse session state. Callers hold mu.
func (g *Game) state() State {
	if g.engine.IsGameFinished() {
		return StateFinished
	}
	return StatePlaying
}
