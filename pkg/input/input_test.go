package input

import (
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
)

func TestKeyEdges(t *testing.T) {
	tr := NewTracker()

	tr.KeyDown("w")
	tr.KeyDown("w") // repeat
	s := tr.Snapshot()
	if !s.Down("w") || !s.Pressed("w") || s.Released("w") {
		t.Errorf("frame 1: down=%v pressed=%v released=%v", s.Down("w"), s.Pressed("w"), s.Released("w"))
	}

	s = tr.Snapshot()
	if !s.Down("w") || s.Pressed("w") {
		t.Errorf("frame 2: held key should be down but not pressed")
	}

	tr.KeyUp("w")
	s = tr.Snapshot()
	if s.Down("w") || !s.Released("w") {
		t.Errorf("frame 3: down=%v released=%v", s.Down("w"), s.Released("w"))
	}

	tr.KeyUp("q")
	if s = tr.Snapshot(); s.Released("q") {
		t.Error("release without press reported")
	}
}

func TestPressAndReleaseInOneFrame(t *testing.T) {
	tr := NewTracker()
	tr.KeyDown(KeySpace)
	tr.KeyUp(KeySpace)

	s := tr.Snapshot()
	if !s.Pressed(KeySpace) || !s.Released(KeySpace) || s.Down(KeySpace) {
		t.Errorf("pressed=%v released=%v down=%v", s.Pressed(KeySpace), s.Released(KeySpace), s.Down(KeySpace))
	}
}

func TestTapLastsOneFrame(t *testing.T) {
	tr := NewTracker()
	tr.Tap("k")

	s := tr.Snapshot()
	if !s.Down("k") || !s.Pressed("k") {
		t.Errorf("tap frame: down=%v pressed=%v", s.Down("k"), s.Pressed("k"))
	}
	s = tr.Snapshot()
	if s.Down("k") || s.Pressed("k") {
		t.Errorf("after tap: down=%v pressed=%v", s.Down("k"), s.Pressed("k"))
	}
}

func TestSnapshotIsImmutable(t *testing.T) {
	tr := NewTracker()
	tr.KeyDown("a")
	s := tr.Snapshot()

	tr.KeyUp("a")
	tr.KeyDown("b")
	tr.MouseMove(9, 9)

	if !s.Down("a") || s.Down("b") {
		t.Error("snapshot changed after later events")
	}
	if x, y := s.Mouse(); x != 0 || y != 0 {
		t.Errorf("snapshot mouse = (%d, %d)", x, y)
	}
}

func TestMouseButtons(t *testing.T) {
	tr := NewTracker()
	tr.MouseButton(MouseLeft, true, 3, 4)
	tr.Scroll(2)
	tr.Scroll(-1)

	s := tr.Snapshot()
	if !s.ButtonDown(MouseLeft) || !s.ButtonPressed(MouseLeft) {
		t.Error("left button not pressed")
	}
	if s.ButtonDown(MouseRight) {
		t.Error("right button down")
	}
	if x, y := s.Mouse(); x != 3 || y != 4 {
		t.Errorf("Mouse = (%d, %d), want (3, 4)", x, y)
	}
	if s.Wheel() != 1 {
		t.Errorf("Wheel = %d, want 1", s.Wheel())
	}

	tr.MouseMove(5, 6)
	tr.MouseButton(MouseLeft, false, 7, 8)
	s = tr.Snapshot()
	if s.ButtonDown(MouseLeft) || s.ButtonPressed(MouseLeft) || !s.ButtonReleased(MouseLeft) {
		t.Error("left button not released")
	}
	if x, y := s.Mouse(); x != 7 || y != 8 {
		t.Errorf("Mouse = (%d, %d), want (7, 8)", x, y)
	}
	if s.Wheel() != 0 {
		t.Errorf("Wheel carried over: %d", s.Wheel())
	}
	if s.ButtonDown(Button(42)) || s.ButtonPressed(-1) {
		t.Error("invalid button reported")
	}
}

func TestTerminalEvents(t *testing.T) {
	tests := []struct {
		name   string
		events []uv.Event
		check  func(t *testing.T, s Snapshot)
	}{
		{
			name:   "printable key taps",
			events: []uv.Event{uv.KeyPressEvent{Code: 'x', Text: "x"}},
			check: func(t *testing.T, s Snapshot) {
				if !s.Pressed("x") || !s.Down("x") {
					t.Error("x not tapped")
				}
			},
		},
		{
			name:   "arrow key name",
			events: []uv.Event{uv.KeyPressEvent{Code: uv.KeyUp}},
			check: func(t *testing.T, s Snapshot) {
				if !s.Pressed(KeyUp) {
					t.Error("up not pressed")
				}
			},
		},
		{
			name:   "space",
			events: []uv.Event{uv.KeyPressEvent{Code: uv.KeySpace, Text: " "}},
			check: func(t *testing.T, s Snapshot) {
				if !s.Pressed(KeySpace) {
					t.Error("space not pressed")
				}
			},
		},
		{
			name:   "repeat ignored",
			events: []uv.Event{uv.KeyPressEvent{Code: 'r', Text: "r", IsRepeat: true}},
			check: func(t *testing.T, s Snapshot) {
				if s.Pressed("r") {
					t.Error("repeat counted as press")
				}
			},
		},
		{
			name: "left click scales rows",
			events: []uv.Event{
				uv.MouseClickEvent{X: 10, Y: 5, Button: uv.MouseLeft},
			},
			check: func(t *testing.T, s Snapshot) {
				if !s.ButtonPressed(MouseLeft) {
					t.Error("left not pressed")
				}
				if x, y := s.Mouse(); x != 10 || y != 10 {
					t.Errorf("Mouse = (%d, %d), want (10, 10)", x, y)
				}
			},
		},
		{
			name: "drag and release",
			events: []uv.Event{
				uv.MouseClickEvent{X: 1, Y: 1, Button: uv.MouseRight},
				uv.MouseMotionEvent{X: 4, Y: 2, Button: uv.MouseRight},
				uv.MouseReleaseEvent{X: 4, Y: 2, Button: uv.MouseNone},
			},
			check: func(t *testing.T, s Snapshot) {
				if !s.ButtonPressed(MouseRight) || !s.ButtonReleased(MouseRight) || s.ButtonDown(MouseRight) {
					t.Error("right button edges wrong")
				}
				if x, y := s.Mouse(); x != 4 || y != 4 {
					t.Errorf("Mouse = (%d, %d), want (4, 4)", x, y)
				}
			},
		},
		{
			name: "wheel",
			events: []uv.Event{
				uv.MouseWheelEvent{Button: uv.MouseWheelUp},
				uv.MouseWheelEvent{Button: uv.MouseWheelUp},
				uv.MouseWheelEvent{Button: uv.MouseWheelDown},
			},
			check: func(t *testing.T, s Snapshot) {
				if s.Wheel() != 1 {
					t.Errorf("Wheel = %d, want 1", s.Wheel())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			term := NewTerminal(tr)
			for _, ev := range tt.events {
				if !term.Handle(ev) {
					t.Fatalf("event %T not handled", ev)
				}
			}
			tt.check(t, tr.Snapshot())
		})
	}
}

func TestTerminalReleaseReporting(t *testing.T) {
	tr := NewTracker()
	term := NewTerminal(tr)

	term.Handle(uv.KeyReleaseEvent{Code: 'a', Text: "a"})
	term.Handle(uv.KeyPressEvent{Code: 'w', Text: "w"})
	tr.Snapshot()

	if s := tr.Snapshot(); !s.Down("w") {
		t.Error("w should stay down once releases are reported")
	}
	term.Handle(uv.KeyReleaseEvent{Code: 'w', Text: "w"})
	if s := tr.Snapshot(); s.Down("w") || !s.Released("w") {
		t.Error("w not released")
	}
}

func TestTerminalIgnoresOtherEvents(t *testing.T) {
	term := NewTerminal(NewTracker())
	if term.Handle(uv.WindowSizeEvent{Width: 80, Height: 24}) {
		t.Error("window size handled as input")
	}
}
