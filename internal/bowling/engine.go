// internal/bowling/engine.go
//
// Scoring state machine for a single game of ten-pin bowling.
// Responsibilities:
//   - Validate pin counts against the pins standing on the current rack.
//   - Record rolls into the frame ledger.
//   - Credit strike/spare bonus into earlier frames' running totals.
//   - Advance the (frame, slot) cursor, including the last-frame bonus rolls.
//
// Notes:
//   - The frame count is a constructor argument so tests can play short games.
//   - An Engine is not safe for concurrent use; callers own one per game
//     and serialise access to it.
//   - Roll trusts its input. Use IsPinCountValid first, or call Play.
package bowling

import "fmt"

// Engine owns the frame ledger and the cursor of one game.
type Engine struct {
	frames []Frame
	cur    Cursor
}

// New constructs an engine for a game of n frames.
// n below 1 is treated as 1.
func New(n int) *Engine {
	if n < 1 {
		n = 1
	}
	e := &Engine{frames: make([]Frame, n)}
	e.Reset()
	return e
}

// Reset discards all progress and returns to frame 0, first roll.
func (e *Engine) Reset() {
	for i := range e.frames {
		e.frames[i] = blankFrame()
	}
	e.cur = Cursor{Frame: 0, Slot: SlotFirst}
}

// FrameCount reports the number of frames in the game.
func (e *Engine) FrameCount() int { return len(e.frames) }

// Frames returns a copy of the frame ledger.
func (e *Engine) Frames() []Frame {
	out := make([]Frame, len(e.frames))
	copy(out, e.frames)
	return out
}

// Frame returns frame i, or a blank frame when i is out of range.
func (e *Engine) Frame(i int) Frame {
	if i < 0 || i >= len(e.frames) {
		return blankFrame()
	}
	return e.frames[i]
}

// Cursor reports the position of the next roll.
func (e *Engine) Cursor() Cursor { return e.cur }

// IsGameFinished reports whether the cursor moved past the last frame.
func (e *Engine) IsGameFinished() bool { return e.cur.Frame >= len(e.frames) }

// Total returns the running score of the latest scored frame (0 before the first roll).
func (e *Engine) Total() int {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if p := e.frames[i].Points; p != Unset {
			return p
		}
	}
	return 0
}

// IsPinCountValid reports whether pins is a legal next roll.
//
// Rules:
//   - No roll is legal once the game is finished.
//   - pins must be within [0, MaxPins].
//   - pins must not exceed the pins left standing on the current rack.
//     In non-last frames the second roll sees MaxPins-First. In the last
//     frame the rack is reset after a strike or a spare, so 10,10,10 and
//     5,5,10 are legal while 10,6,5 is not.
func (e *Engine) IsPinCountValid(pins int) bool {
	if pins < 0 || pins > MaxPins || e.IsGameFinished() {
		return false
	}
	return pins <= e.standing()
}

// Roll records pins at the cursor and returns whether the game continues.
//
// Steps:
//  1. Store pins in the current slot.
//  2. Credit pins to the earlier frames still owed bonus rolls.
//  3. Recompute the current frame total from the previous frame's total.
//  4. Advance the cursor.
//
// Roll does not check pins; an illegal count yields meaningless totals.
// On a finished game Roll leaves the ledger untouched and returns false.
func (e *Engine) Roll(pins int) bool {
	if e.IsGameFinished() {
		return false
	}
	i := e.cur.Frame
	e.frames[i].set(e.cur.Slot, pins)
	e.creditBonus(pins)

	base := 0
	if i > 0 {
		base = e.frames[i-1].Points
	}
	_, sum := e.frames[i].rolls()
	e.frames[i].Points = base + sum

	return e.advance(pins)
}

// Play is the guarded form of Roll.
// It returns ErrGameFinished or ErrInvalidPins without touching the ledger.
func (e *Engine) Play(pins int) (bool, error) {
	if e.IsGameFinished() {
		return false, ErrGameFinished
	}
	if !e.IsPinCountValid(pins) {
		return true, fmt.Errorf("%w: %d", ErrInvalidPins, pins)
	}
	return e.Roll(pins), nil
}

// standing returns the pins on the rack for the roll at the cursor.
func (e *Engine) standing() int {
	f := e.frames[e.cur.Frame]
	switch e.cur.Slot {
	case SlotSecond:
		if e.isLast(e.cur.Frame) && f.First == MaxPins {
			return MaxPins
		}
		return MaxPins - f.First
	case SlotThird:
		if f.First == MaxPins && f.Second != MaxPins {
			return MaxPins - f.Second
		}
		return MaxPins
	}
	return MaxPins
}

// creditBonus adds pins to every earlier frame that is still owed this roll.
// A strike is owed the next two rolls and a spare the next one, so no more
// than two frames back can qualify. Totals are cumulative: crediting frame f
// also raises every frame after it up to the current one.
func (e *Engine) creditBonus(pins int) {
	i := e.cur.Frame
	since := int(e.cur.Slot) // rolls taken after frame f, excluding this one
	for f := i - 1; f >= 0 && f >= i-2; f-- {
		if since < owed(e.frames[f].Kind()) {
			for j := f; j < i; j++ {
				e.frames[j].Points += pins
			}
		}
		n, _ := e.frames[f].rolls()
		since += n
	}
}

// owed is the number of bonus rolls a frame of kind k collects.
func owed(k Kind) int {
	switch k {
	case KindStrike:
		return 2
	case KindSpare:
		return 1
	}
	return 0
}

// advance moves the cursor after a roll of pins and reports whether more rolls follow.
//
// Non-last frames end on a strike or after the second roll.
// The last frame always gets a second roll, and a third one only when the
// first two produced a strike or a spare.
func (e *Engine) advance(pins int) bool {
	i := e.cur.Frame
	if e.isLast(i) {
		switch {
		case e.cur.Slot == SlotFirst:
			e.cur.Slot = SlotSecond
			return true
		case e.cur.Slot == SlotSecond && e.frames[i].Kind() != KindOpen:
			e.cur.Slot = SlotThird
			return true
		}
		return e.nextFrame()
	}
	if pins == MaxPins || e.cur.Slot != SlotFirst {
		return e.nextFrame()
	}
	e.cur.Slot = SlotSecond
	return true
}

func (e *Engine) nextFrame() bool {
	e.cur = Cursor{Frame: e.cur.Frame + 1, Slot: SlotFirst}
	return !e.IsGameFinished()
}

func (e *Engine) isLast(i int) bool { return i == len(e.frames)-1 }
