// internal/bowling/types.go
//
// Core type definitions for the scoring engine.
// Defines:
//   - Slot: the roll position inside a frame (first/second/third).
//   - Kind: open/spare/strike classification of a frame.
//   - Frame: recorded rolls and the cumulative running total.
//   - Cursor: the engine's current (frame, slot) position.

package bowling

import "errors"

const (
	// DefaultFrames is the number of frames in a regulation game.
	DefaultFrames = 10

	// MaxPins is the number of pins standing on a fresh rack.
	MaxPins = 10

	// Unset marks a roll or total that has not been recorded yet.
	Unset = -1
)

var (
	ErrGameFinished = errors.New("game finished")
	ErrInvalidPins  = errors.New("invalid pin count")
)

// Slot is the roll position within a frame.
type Slot int

const (
	SlotFirst Slot = iota
	SlotSecond
	SlotThird
)

func (s Slot) String() string {
	switch s {
	case SlotFirst:
		return "first"
	case SlotSecond:
		return "second"
	case SlotThird:
		return "third"
	}
	return "unknown"
}

// Kind classifies a frame by its first two rolls.
type Kind int

const (
	KindOpen Kind = iota
	KindSpare
	KindStrike
)

func (k Kind) String() string {
	switch k {
	case KindSpare:
		return "spare"
	case KindStrike:
		return "strike"
	}
	return "open"
}

// Frame holds one scoring unit of the game.
// Every field is Unset until the corresponding roll happened.
type Frame struct {
	First  int `json:"first"`
	Second int `json:"second"`
	Third  int `json:"third"`  // last frame only
	Points int `json:"points"` // cumulative total through this frame
}

func blankFrame() Frame {
	return Frame{First: Unset, Second: Unset, Third: Unset, Points: Unset}
}

// Kind derives the frame classification from the recorded rolls.
// A frame with missing rolls is reported as open.
func (f Frame) Kind() Kind {
	switch {
	case f.First == MaxPins:
		return KindStrike
	case f.First != Unset && f.Second != Unset && f.First+f.Second == MaxPins:
		return KindSpare
	}
	return KindOpen
}

// Roll returns the pins recorded in slot s and whether that slot was rolled.
func (f Frame) Roll(s Slot) (int, bool) {
	var v int
	switch s {
	case SlotFirst:
		v = f.First
	case SlotSecond:
		v = f.Second
	case SlotThird:
		v = f.Third
	default:
		return 0, false
	}
	return v, v != Unset
}

func (f *Frame) set(s Slot, pins int) {
	switch s {
	case SlotFirst:
		f.First = pins
	case SlotSecond:
		f.Second = pins
	case SlotThird:
		f.Third = pins
	}
}

// rolls returns the number of recorded rolls and their pin sum.
func (f Frame) rolls() (n, sum int) {
	for _, v := range [...]int{f.First, f.Second, f.Third} {
		if v != Unset {
			n++
			sum += v
		}
	}
	return n, sum
}

// Cursor is the position of the next roll.
// Frame equals the frame count once the game is finished.
type Cursor struct {
	Frame int  `json:"frame"`
	Slot  Slot `json:"slot"`
}
