// Package input turns raw key and mouse events into one immutable snapshot
// per frame.
package input

import "maps"

// Key names a key the way the terminal reports it: the printed text for
// printable keys ("w", "?") and a lowercase name for the rest ("up",
// "space", "esc").
type Key string

// Named keys.
const (
	KeyUp     Key = "up"
	KeyDown   Key = "down"
	KeyLeft   Key = "left"
	KeyRight  Key = "right"
	KeySpace  Key = "space"
	KeyEscape Key = "esc"
	KeyEnter  Key = "enter"
	KeyTab    Key = "tab"
)

// Button is a mouse button.
type Button int

const (
	MouseLeft Button = iota
	MouseMiddle
	MouseRight
	buttonCount
)

// Snapshot is the input state for one frame. It is never mutated after the
// Tracker hands it out.
type Snapshot struct {
	down     map[Key]bool
	pressed  map[Key]bool
	released map[Key]bool

	mouseX, mouseY  int
	buttons         [buttonCount]bool
	buttonsPressed  [buttonCount]bool
	buttonsReleased [buttonCount]bool
	wheel           int
}

// Down reports whether k is held this frame.
func (s Snapshot) Down(k Key) bool { return s.down[k] }

// Pressed reports whether k went down during this frame.
func (s Snapshot) Pressed(k Key) bool { return s.pressed[k] }

// Released reports whether k went up during this frame.
func (s Snapshot) Released(k Key) bool { return s.released[k] }

// Mouse returns the last known pointer position.
func (s Snapshot) Mouse() (x, y int) { return s.mouseX, s.mouseY }

// ButtonDown reports whether b is held.
func (s Snapshot) ButtonDown(b Button) bool { return validButton(b) && s.buttons[b] }

// ButtonPressed reports whether b went down during this frame.
func (s Snapshot) ButtonPressed(b Button) bool { return validButton(b) && s.buttonsPressed[b] }

// ButtonReleased reports whether b went up during this frame.
func (s Snapshot) ButtonReleased(b Button) bool { return validButton(b) && s.buttonsReleased[b] }

// Wheel returns the net wheel steps this frame, positive away from the user.
func (s Snapshot) Wheel() int { return s.wheel }

func validButton(b Button) bool { return b >= 0 && b < buttonCount }

// Tracker accumulates events between frames. It is not safe for concurrent
// use; feed it from the frame loop.
type Tracker struct {
	down     map[Key]bool
	pressed  map[Key]bool
	released map[Key]bool
	taps     map[Key]bool

	mouseX, mouseY  int
	buttons         [buttonCount]bool
	buttonsPressed  [buttonCount]bool
	buttonsReleased [buttonCount]bool
	wheel           int
}

// NewTracker creates a tracker with nothing held.
func NewTracker() *Tracker {
	return &Tracker{
		down:     make(map[Key]bool),
		pressed:  make(map[Key]bool),
		released: make(map[Key]bool),
		taps:     make(map[Key]bool),
	}
}

// KeyDown records k going down. Repeats while held are ignored.
func (t *Tracker) KeyDown(k Key) {
	if !t.down[k] {
		t.pressed[k] = true
	}
	t.down[k] = true
}

// KeyUp records k going up.
func (t *Tracker) KeyUp(k Key) {
	if t.down[k] {
		t.released[k] = true
	}
	delete(t.down, k)
}

// Tap records a press with no matching release, as terminals without key
// release reporting deliver them. The key reads as down and pressed for
// exactly one snapshot.
func (t *Tracker) Tap(k Key) {
	t.pressed[k] = true
	t.taps[k] = true
}

// MouseMove records the pointer position.
func (t *Tracker) MouseMove(x, y int) {
	t.mouseX, t.mouseY = x, y
}

// MouseButton records b going down or up at (x, y).
func (t *Tracker) MouseButton(b Button, down bool, x, y int) {
	t.MouseMove(x, y)
	if !validButton(b) {
		return
	}
	switch {
	case down && !t.buttons[b]:
		t.buttonsPressed[b] = true
	case !down && t.buttons[b]:
		t.buttonsReleased[b] = true
	}
	t.buttons[b] = down
}

// Scroll adds wheel steps.
func (t *Tracker) Scroll(steps int) {
	t.wheel += steps
}

// Snapshot returns the state accumulated since the previous call and starts
// a new frame: edges, taps and wheel steps are cleared, held keys and
// buttons carry over.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		down:            maps.Clone(t.down),
		pressed:         maps.Clone(t.pressed),
		released:        maps.Clone(t.released),
		mouseX:          t.mouseX,
		mouseY:          t.mouseY,
		buttons:         t.buttons,
		buttonsPressed:  t.buttonsPressed,
		buttonsReleased: t.buttonsReleased,
		wheel:           t.wheel,
	}
	for k := range t.taps {
		s.down[k] = true
	}

	clear(t.pressed)
	clear(t.released)
	clear(t.taps)
	t.buttonsPressed = [buttonCount]bool{}
	t.buttonsReleased = [buttonCount]bool{}
	t.wheel = 0
	return s
}
