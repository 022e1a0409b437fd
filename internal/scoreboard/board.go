// Package scoreboard turns an engine's frame ledger into display strings.
// It only reads frames; nothing here mutates a game.
package scoreboard

import (
	"strconv"

	"github.com/robalobadob/bowling/internal/bowling"
)

// Display symbols.
const (
	Blank  = "_"
	Strike = "X"
	Spare  = "/"
	Miss   = "-"
)

// Ledger is the read side of a bowling.Engine.
type Ledger interface {
	Frames() []bowling.Frame
	IsGameFinished() bool
	Total() int
}

// FrameView is one frame box: up to three roll cells and the running total.
type FrameView struct {
	Rolls  [3]string `json:"rolls"`
	Points string    `json:"points"`
	Kind   string    `json:"kind"`
}

// Board is the printable state of a game.
type Board struct {
	Frames   []FrameView `json:"frames"`
	Total    int         `json:"total"`
	Finished bool        `json:"finished"`
}

// Build formats every frame of l.
func Build(l Ledger) Board {
	return Render(l.Frames(), l.Total(), l.IsGameFinished())
}

// Render formats a copied ledger, e.g. from a session snapshot.
func Render(frames []bowling.Frame, total int, finished bool) Board {
	b := Board{
		Frames:   make([]FrameView, len(frames)),
		Total:    total,
		Finished: finished,
	}
	for i, f := range frames {
		b.Frames[i] = View(f, i == len(frames)-1)
	}
	return b
}

// View formats a single frame. last selects the last-frame rules where the
// rack is reset after a strike or a spare.
func View(f bowling.Frame, last bool) FrameView {
	v := FrameView{
		Rolls:  [3]string{Blank, Blank, Blank},
		Points: Blank,
		Kind:   f.Kind().String(),
	}
	if f.Points != bowling.Unset {
		v.Points = strconv.Itoa(f.Points)
	}
	if f.First == bowling.Unset {
		return v
	}
	v.Rolls[0] = freshRack(f.First)
	if f.Second == bowling.Unset {
		return v
	}
	if last && f.First == bowling.MaxPins {
		v.Rolls[1] = freshRack(f.Second)
	} else {
		v.Rolls[1] = afterRoll(f.First, f.Second)
	}
	if !last || f.Third == bowling.Unset {
		return v
	}
	if f.First == bowling.MaxPins && f.Second != bowling.MaxPins {
		v.Rolls[2] = afterRoll(f.Second, f.Third)
	} else {
		v.Rolls[2] = freshRack(f.Third)
	}
	return v
}

// freshRack formats a roll taken at a full rack.
func freshRack(pins int) string {
	if pins == bowling.MaxPins {
		return Strike
	}
	return count(pins)
}

// afterRoll formats a roll taken at a rack where prev pins already fell.
func afterRoll(prev, pins int) string {
	if prev+pins == bowling.MaxPins {
		return Spare
	}
	return count(pins)
}

func count(pins int) string {
	if pins == 0 {
		return Miss
	}
	return strconv.Itoa(pins)
}
