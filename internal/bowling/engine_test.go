package bowling

import (
	"errors"
	"testing"
)

// step is one roll and what the ledger must look like right after it.
type step struct {
	pins   int
	totals []int // expected Points of frames 0..len(totals)-1
	next   Cursor
}

func playSteps(t *testing.T, e *Engine, steps []step) {
	t.Helper()
	for i, s := range steps {
		at := e.Cursor()
		if !e.IsPinCountValid(s.pins) {
			t.Fatalf("step %d: %d pins rejected at %+v", i, s.pins, at)
		}
		if !e.Roll(s.pins) {
			t.Fatalf("step %d: game reported finished after %d pins", i, s.pins)
		}
		if got, _ := e.Frame(at.Frame).Roll(at.Slot); got != s.pins {
			t.Fatalf("step %d: recorded %d pins at %+v, want %d", i, got, at, s.pins)
		}
		if got := e.Cursor(); got != s.next {
			t.Fatalf("step %d: cursor = %+v, want %+v", i, got, s.next)
		}
		for f, want := range s.totals {
			if got := e.Frame(f).Points; got != want {
				t.Fatalf("step %d: frame %d points = %d, want %d", i, f, got, want)
			}
		}
	}
}

func TestRollSequences(t *testing.T) {
	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "open frames",
			steps: []step{
				{3, []int{3}, Cursor{0, SlotSecond}},
				{6, []int{9}, Cursor{1, SlotFirst}},
				{5, []int{9, 14}, Cursor{1, SlotSecond}},
				{1, []int{9, 15}, Cursor{2, SlotFirst}},
				{0, []int{9, 15, 15}, Cursor{2, SlotSecond}},
				{3, []int{9, 15, 18}, Cursor{3, SlotFirst}},
				{4, []int{9, 15, 18, 22}, Cursor{3, SlotSecond}},
				{0, []int{9, 15, 18, 22}, Cursor{4, SlotFirst}},
			},
		},
		{
			name: "strike collects two rolls",
			steps: []step{
				{10, []int{10}, Cursor{1, SlotFirst}},
				{2, []int{12, 14}, Cursor{1, SlotSecond}},
				{1, []int{13, 16}, Cursor{2, SlotFirst}},
				{10, []int{13, 16, 26}, Cursor{3, SlotFirst}},
				{5, []int{13, 16, 31, 36}, Cursor{3, SlotSecond}},
				{3, []int{13, 16, 34, 42}, Cursor{4, SlotFirst}},
			},
		},
		{
			name: "spare collects one roll",
			steps: []step{
				{3, []int{3}, Cursor{0, SlotSecond}},
				{7, []int{10}, Cursor{1, SlotFirst}},
				{2, []int{12, 14}, Cursor{1, SlotSecond}},
				{1, []int{12, 15}, Cursor{2, SlotFirst}},
				{8, []int{12, 15, 23}, Cursor{2, SlotSecond}},
				{2, []int{12, 15, 25}, Cursor{3, SlotFirst}},
				{0, []int{12, 15, 25, 25}, Cursor{3, SlotSecond}},
				{2, []int{12, 15, 25, 27}, Cursor{4, SlotFirst}},
			},
		},
		{
			name: "consecutive strikes",
			steps: []step{
				{10, []int{10}, Cursor{1, SlotFirst}},
				{10, []int{20, 30}, Cursor{2, SlotFirst}},
				{10, []int{30, 50, 60}, Cursor{3, SlotFirst}},
				{10, []int{30, 60, 80, 90}, Cursor{4, SlotFirst}},
				{10, []int{30, 60, 90, 110, 120}, Cursor{5, SlotFirst}},
			},
		},
		{
			name: "consecutive spares",
			steps: []step{
				{3, []int{3}, Cursor{0, SlotSecond}},
				{7, []int{10}, Cursor{1, SlotFirst}},
				{5, []int{15, 20}, Cursor{1, SlotSecond}},
				{5, []int{15, 25}, Cursor{2, SlotFirst}},
				{5, []int{15, 30, 35}, Cursor{2, SlotSecond}},
				{5, []int{15, 30, 40}, Cursor{3, SlotFirst}},
				{5, []int{15, 30, 45, 50}, Cursor{3, SlotSecond}},
				{5, []int{15, 30, 45, 55}, Cursor{4, SlotFirst}},
				{5, []int{15, 30, 45, 60, 65}, Cursor{4, SlotSecond}},
				{5, []int{15, 30, 45, 60, 70}, Cursor{5, SlotFirst}},
			},
		},
		{
			name: "strike then spare",
			steps: []step{
				{10, []int{10}, Cursor{1, SlotFirst}},
				{5, []int{15, 20}, Cursor{1, SlotSecond}},
				{5, []int{20, 30}, Cursor{2, SlotFirst}},
				{10, []int{20, 40, 50}, Cursor{3, SlotFirst}},
				{5, []int{20, 40, 55, 60}, Cursor{3, SlotSecond}},
				{5, []int{20, 40, 60, 70}, Cursor{4, SlotFirst}},
			},
		},
		{
			name: "strike then open frame",
			steps: []step{
				{10, []int{10}, Cursor{1, SlotFirst}},
				{5, []int{15, 20}, Cursor{1, SlotSecond}},
				{3, []int{18, 26}, Cursor{2, SlotFirst}},
			},
		},
		{
			name: "double strike then five",
			steps: []step{
				{10, []int{10}, Cursor{1, SlotFirst}},
				{10, []int{20, 30}, Cursor{2, SlotFirst}},
				{5, []int{25, 40, 45}, Cursor{2, SlotSecond}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			playSteps(t, New(DefaultFrames), tt.steps)
		})
	}
}

func rollAll(t *testing.T, e *Engine, pins ...int) bool {
	t.Helper()
	more := true
	for i, p := range pins {
		if !more {
			t.Fatalf("roll %d: game already finished", i)
		}
		if !e.IsPinCountValid(p) {
			t.Fatalf("roll %d: %d pins rejected at %+v", i, p, e.Cursor())
		}
		more = e.Roll(p)
	}
	return more
}

func repeat(pins, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = pins
	}
	return out
}

func TestGutterGame(t *testing.T) {
	e := New(DefaultFrames)
	if more := rollAll(t, e, repeat(0, 19)...); !more {
		t.Fatal("game finished before the last roll")
	}
	if e.IsGameFinished() {
		t.Fatal("finished after 19 rolls")
	}
	if e.Roll(0) {
		t.Fatal("Roll returned true on the final roll")
	}
	if !e.IsGameFinished() {
		t.Fatal("game not finished after frame 10's second roll")
	}
	for i, f := range e.Frames() {
		if f.Points != 0 {
			t.Fatalf("frame %d points = %d, want 0", i, f.Points)
		}
		if f.Third != Unset {
			t.Fatalf("frame %d third roll = %d, want unset", i, f.Third)
		}
	}
}

func TestPerfectGame(t *testing.T) {
	e := New(DefaultFrames)
	if more := rollAll(t, e, repeat(MaxPins, 11)...); !more {
		t.Fatal("finished before the twelfth strike")
	}
	if got := e.Cursor(); got != (Cursor{9, SlotThird}) {
		t.Fatalf("cursor before last roll = %+v", got)
	}
	if e.Roll(MaxPins) {
		t.Fatal("Roll returned true on the twelfth strike")
	}
	for i, f := range e.Frames() {
		if want := 30 * (i + 1); f.Points != want {
			t.Fatalf("frame %d points = %d, want %d", i, f.Points, want)
		}
	}
	if e.Frame(8).Points != 270 || e.Total() != 300 {
		t.Fatalf("frame 8 = %d, total = %d", e.Frame(8).Points, e.Total())
	}
	last := e.Frame(9)
	if last.First != 10 || last.Second != 10 || last.Third != 10 {
		t.Fatalf("last frame = %+v", last)
	}
}

func TestAllSpares(t *testing.T) {
	e := New(DefaultFrames)
	if rollAll(t, e, repeat(5, 21)...) {
		t.Fatal("game should be finished after the bonus roll")
	}
	if got := e.Total(); got != 150 {
		t.Fatalf("total = %d, want 150", got)
	}
	if got := e.Frame(9).Third; got != 5 {
		t.Fatalf("bonus roll = %d, want 5", got)
	}
}

func TestOpenLastFrameHasNoBonusRoll(t *testing.T) {
	e := New(DefaultFrames)
	if rollAll(t, e, append(repeat(0, 18), 3, 4)...) {
		t.Fatal("open last frame should end the game")
	}
	if got := e.Total(); got != 7 {
		t.Fatalf("total = %d, want 7", got)
	}
	if e.IsPinCountValid(0) {
		t.Fatal("finished game accepts another roll")
	}
}

func TestLastFrameRack(t *testing.T) {
	tests := []struct {
		name    string
		rolls   []int
		valid   []int
		invalid []int
	}{
		{"fresh rack", nil, []int{0, 10}, []int{-1, 11}},
		{"after strike", []int{10}, []int{0, 10}, []int{11}},
		{"after two strikes", []int{10, 10}, []int{10}, []int{11}},
		{"strike then six", []int{10, 6}, []int{0, 4}, []int{5, 10}},
		{"after spare", []int{5, 5}, []int{10}, []int{11}},
		{"after five", []int{5}, []int{5}, []int{6, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(1)
			rollAll(t, e, tt.rolls...)
			for _, p := range tt.valid {
				if !e.IsPinCountValid(p) {
					t.Errorf("%d pins rejected", p)
				}
			}
			for _, p := range tt.invalid {
				if e.IsPinCountValid(p) {
					t.Errorf("%d pins accepted", p)
				}
			}
		})
	}
}

func TestNonLastFrameSecondRollLimit(t *testing.T) {
	e := New(DefaultFrames)
	rollAll(t, e, 7)
	if e.IsPinCountValid(4) {
		t.Fatal("7 + 4 accepted in a non-last frame")
	}
	if !e.IsPinCountValid(3) {
		t.Fatal("spare rejected")
	}
}

func TestPinsOutOfRangeAlwaysInvalid(t *testing.T) {
	states := map[string][]int{
		"initial":      nil,
		"second roll":  {4},
		"last frame":   append(repeat(10, 9), 10),
		"bonus roll":   append(repeat(10, 9), 5, 5),
		"finished":     repeat(0, 20),
		"after strike": {10},
	}
	for name, rolls := range states {
		t.Run(name, func(t *testing.T) {
			e := New(DefaultFrames)
			rollAll(t, e, rolls...)
			for _, p := range []int{-10, -1, 11, 100} {
				if e.IsPinCountValid(p) {
					t.Fatalf("%d pins accepted", p)
				}
			}
		})
	}
}

func TestRollAfterFinishIsNoop(t *testing.T) {
	e := New(1)
	rollAll(t, e, 3, 4)
	before := e.Frames()
	if e.Roll(5) {
		t.Fatal("Roll on a finished game returned true")
	}
	after := e.Frames()
	if before[0] != after[0] {
		t.Fatalf("ledger changed: %+v -> %+v", before[0], after[0])
	}
}

func TestPlay(t *testing.T) {
	e := New(1)
	if _, err := e.Play(11); !errors.Is(err, ErrInvalidPins) {
		t.Fatalf("err = %v, want ErrInvalidPins", err)
	}
	if f := e.Frame(0); f.First != Unset {
		t.Fatalf("invalid play recorded %d", f.First)
	}
	if more, err := e.Play(6); err != nil || !more {
		t.Fatalf("Play(6) = %v, %v", more, err)
	}
	if _, err := e.Play(5); !errors.Is(err, ErrInvalidPins) {
		t.Fatalf("err = %v, want ErrInvalidPins", err)
	}
	if more, err := e.Play(3); err != nil || more {
		t.Fatalf("Play(3) = %v, %v", more, err)
	}
	if _, err := e.Play(0); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("err = %v, want ErrGameFinished", err)
	}
}

func TestReset(t *testing.T) {
	e := New(3)
	rollAll(t, e, 10, 4, 6, 10, 10, 10)
	if !e.IsGameFinished() {
		t.Fatal("game should be finished")
	}
	e.Reset()
	if got := e.Cursor(); got != (Cursor{0, SlotFirst}) {
		t.Fatalf("cursor = %+v", got)
	}
	if e.IsGameFinished() {
		t.Fatal("finished after reset")
	}
	for i, f := range e.Frames() {
		if f != blankFrame() {
			t.Fatalf("frame %d = %+v, want blank", i, f)
		}
	}
	if e.Total() != 0 {
		t.Fatalf("total = %d", e.Total())
	}
}

func TestReadersDoNotMutate(t *testing.T) {
	e := New(DefaultFrames)
	rollAll(t, e, 10, 3)
	cur := e.Cursor()
	for i := 0; i < 3; i++ {
		if !e.IsPinCountValid(7) || e.IsPinCountValid(8) {
			t.Fatal("validity changed between calls")
		}
	}
	frames := e.Frames()
	frames[0].Points = 999
	if e.Frame(0).Points == 999 {
		t.Fatal("Frames exposed the internal ledger")
	}
	if e.Cursor() != cur {
		t.Fatal("cursor moved")
	}
}

func TestNewClampsFrameCount(t *testing.T) {
	e := New(0)
	if e.FrameCount() != 1 {
		t.Fatalf("frame count = %d, want 1", e.FrameCount())
	}
	if got := e.Frame(5); got != blankFrame() {
		t.Fatalf("out of range frame = %+v", got)
	}
}

func TestFrameKind(t *testing.T) {
	tests := []struct {
		f    Frame
		want Kind
	}{
		{Frame{First: 10, Second: Unset, Third: Unset}, KindStrike},
		{Frame{First: 0, Second: 10, Third: Unset}, KindSpare},
		{Frame{First: 4, Second: 6, Third: Unset}, KindSpare},
		{Frame{First: 4, Second: 5, Third: Unset}, KindOpen},
		{Frame{First: 4, Second: Unset, Third: Unset}, KindOpen},
		{blankFrame(), KindOpen},
	}
	for _, tt := range tests {
		if got := tt.f.Kind(); got != tt.want {
			t.Errorf("%+v kind = %s, want %s", tt.f, got, tt.want)
		}
	}
}
