package input

import uv "github.com/charmbracelet/ultraviolet"

// Terminal feeds ultraviolet events into a Tracker.
//
// Most terminals report key presses only. Until a release event arrives,
// presses are recorded as taps; after the first release the terminal is
// trusted to report both edges.
type Terminal struct {
	tracker  *Tracker
	releases bool

	// PixelsPerRow scales mouse rows to framebuffer rows. Half-block output
	// packs two pixel rows into each cell.
	PixelsPerRow int
}

// NewTerminal creates an adapter for a half-block display.
func NewTerminal(t *Tracker) *Terminal {
	return &Terminal{tracker: t, PixelsPerRow: 2}
}

// Handle records ev and reports whether it was an input event.
func (a *Terminal) Handle(ev uv.Event) bool {
	switch ev := ev.(type) {
	case uv.KeyPressEvent:
		if ev.IsRepeat {
			return true
		}
		k := Key(ev.String())
		if a.releases {
			a.tracker.KeyDown(k)
		} else {
			a.tracker.Tap(k)
		}
	case uv.KeyReleaseEvent:
		a.releases = true
		a.tracker.KeyUp(Key(ev.String()))
	case uv.MouseClickEvent:
		a.button(ev.Mouse(), true)
	case uv.MouseReleaseEvent:
		a.button(ev.Mouse(), false)
	case uv.MouseMotionEvent:
		x, y := a.scale(ev.Mouse())
		a.tracker.MouseMove(x, y)
	case uv.MouseWheelEvent:
		switch ev.Button {
		case uv.MouseWheelUp:
			a.tracker.Scroll(1)
		case uv.MouseWheelDown:
			a.tracker.Scroll(-1)
		}
	default:
		return false
	}
	return true
}

func (a *Terminal) button(m uv.Mouse, down bool) {
	x, y := a.scale(m)
	var b Button
	switch m.Button {
	case uv.MouseLeft:
		b = MouseLeft
	case uv.MouseMiddle:
		b = MouseMiddle
	case uv.MouseRight:
		b = MouseRight
	case uv.MouseNone:
		// X10 style reports do not say which button went up.
		if !down {
			for b := range buttonCount {
				a.tracker.MouseButton(b, false, x, y)
			}
			return
		}
		a.tracker.MouseMove(x, y)
		return
	default:
		a.tracker.MouseMove(x, y)
		return
	}
	a.tracker.MouseButton(b, down, x, y)
}

func (a *Terminal) scale(m uv.Mouse) (x, y int) {
	return m.X, m.Y * max(a.PixelsPerRow, 1)
}
