// Package engine runs the per-frame control flow: it reads an input
// snapshot, moves the camera, lights and focus node, and renders the scene.
package engine

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/taigrr/scanline/pkg/input"
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
)

// FOV limits in degrees.
const (
	minFOV = 10
	maxFOV = 150
)

// Rates applied while keys are held, per second.
const (
	orbitKeySpeed = 1.0  // radians
	lightSpeed    = 3.0  // radians
	fovSpeed      = 30.0 // degrees
	scaleSpeed    = 0.6  // fraction of current size
)

// Per-pixel drag rates in radians.
const (
	orbitDragSpeed  = 0.01
	rotateDragSpeed = 0.01
)

// fovTweenSeconds is how long the FOV takes to reach a new target.
const fovTweenSeconds = 0.25

// Distance limits for wheel zoom. The far limit is further capped by
// zoomLimit so the focus never leaves the far plane.
const (
	minDistance = 1
	maxDistance = 100
)

// State is the engine's view state. It only changes in Update.
type State struct {
	Orbit    Orbit
	Distance float64
	FOV      float64 // Current, possibly mid-tween, in degrees
	FOVGoal  float64 // Where the tween is heading, in degrees
	ShowHUD  bool
	Options  render.Options

	// Drag tracking: the pointer position at the previous frame while a
	// button is held.
	dragging     [2]bool
	lastX, lastY int
}

// Engine owns a scene and a renderer and advances them one frame at a time.
// It is not safe for concurrent use.
type Engine struct {
	Scene    *scene.Scene
	Renderer *render.Renderer

	cfg    Config
	focus  scene.NodeID
	target math3d.Vec3
	state  State
	fov    *gween.Tween
	hud    HUD
}

// New creates an engine rendering sc from cfg's camera parameters. focus is
// the node that right-drag rotates and N/M scale; pass scene.NoNode for none.
// The camera orbits the focus node's world origin.
func New(cfg Config, sc *scene.Scene, focus scene.NodeID) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sc.Camera == nil {
		sc.Camera = render.NewCamera(math3d.V3(0, 0, -cfg.Distance), math3d.Zero3(), math3d.Up())
	}

	e := &Engine{
		Scene:    sc,
		Renderer: render.NewRenderer(cfg.Width, cfg.Height),
		cfg:      cfg,
		focus:    focus,
	}
	if focus != scene.NoNode {
		world, err := sc.Graph.World(focus)
		if err != nil {
			return nil, fmt.Errorf("focus: %w", err)
		}
		e.target = world.Translation()
	}
	e.Reset()
	return e, nil
}

// Reset returns the view to the configured orbit, distance, FOV and options.
// The scene itself is left alone.
func (e *Engine) Reset() {
	e.state = State{
		Orbit:    NewOrbit(e.cfg),
		Distance: e.cfg.Distance,
		FOV:      e.cfg.FOV,
		FOVGoal:  e.cfg.FOV,
		ShowHUD:  e.state.ShowHUD,
		Options:  e.cfg.Options,
	}
	e.fov = nil
	e.Renderer.Options = e.state.Options
	e.Scene.Camera.SetProjection(radians(e.cfg.FOV), e.cfg.aspect(), e.cfg.Near, e.cfg.Far)
	e.placeCamera()
}

// ToggleHUD shows or hides the overlay text.
func (e *Engine) ToggleHUD() { e.state.ShowHUD = !e.state.ShowHUD }

// State returns a copy of the view state.
func (e *Engine) State() State { return e.state }

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Resize changes the framebuffer size and the camera aspect ratio. The
// previous frame is discarded.
func (e *Engine) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == e.cfg.Width && height == e.cfg.Height) {
		return
	}
	e.cfg.Width, e.cfg.Height = width, height
	e.Renderer.Resize(width, height)
	e.Renderer.Options = e.state.Options
	e.Scene.Camera.SetAspectRatio(e.cfg.aspect())
}

// Update applies one frame of input. dt is the frame time in seconds and
// scales every held-key rate; the orbit springs step once per call. An
// error means the focus node could not be changed; the camera and lights
// are still updated.
func (e *Engine) Update(snap input.Snapshot, dt float64) error {
	dt = max(dt, 0)
	e.hud.Tick(dt)

	e.toggles(snap)
	if snap.Pressed("r") {
		e.Reset()
	}

	e.orbitInput(snap, dt)
	e.zoomInput(snap)
	e.fovInput(snap, dt)
	e.lightInput(snap, dt)
	err := e.focusInput(snap, dt)

	e.state.Orbit.Update()
	e.placeCamera()
	return err
}

// toggle flips *b when key was pressed this frame.
func toggle(snap input.Snapshot, key input.Key, b *bool) {
	if snap.Pressed(key) {
		*b = !*b
	}
}

func (e *Engine) toggles(snap input.Snapshot) {
	o := &e.state.Options
	toggle(snap, "k", &o.Axes)
	toggle(snap, "g", &o.Grid)
	toggle(snap, "h", &o.Faces)
	toggle(snap, "l", &o.LightVectors)
	toggle(snap, "b", &o.Bounds)
	toggle(snap, "z", &o.DepthView)
	toggle(snap, "v", &o.VertexNormals)
	toggle(snap, "x", &o.Wireframe)
	toggle(snap, "?", &e.state.ShowHUD)
	e.Renderer.Options = *o
}

// axis returns +1, -1 or 0 for a pair of opposing held keys.
func axis(snap input.Snapshot, pos, neg input.Key) float64 {
	var v float64
	if snap.Down(pos) {
		v++
	}
	if snap.Down(neg) {
		v--
	}
	return v
}

// drag returns the pointer movement since the previous frame while b is
// held, and zero on the frame the button goes down.
func (e *Engine) drag(snap input.Snapshot, b input.Button) (dx, dy int) {
	x, y := snap.Mouse()
	i := 0
	if b == input.MouseRight {
		i = 1
	}
	if !snap.ButtonDown(b) {
		e.state.dragging[i] = false
		return 0, 0
	}
	if e.state.dragging[i] {
		dx, dy = x-e.state.lastX, y-e.state.lastY
	}
	e.state.dragging[i] = true
	return dx, dy
}

func (e *Engine) orbitInput(snap input.Snapshot, dt float64) {
	yaw := axis(snap, input.KeyRight, input.KeyLeft) * orbitKeySpeed * dt
	pitch := axis(snap, input.KeyUp, input.KeyDown) * orbitKeySpeed * dt

	dx, dy := e.drag(snap, input.MouseLeft)
	yaw += float64(dx) * orbitDragSpeed
	pitch += float64(dy) * orbitDragSpeed

	if yaw != 0 || pitch != 0 {
		e.state.Orbit.Nudge(yaw, pitch)
	}
}

func (e *Engine) zoomInput(snap input.Snapshot) {
	steps := snap.Wheel()
	if snap.Pressed("+") || snap.Pressed("=") {
		steps++
	}
	if snap.Pressed("-") {
		steps--
	}
	for range max(steps, -steps) {
		if steps > 0 {
			e.state.Distance *= 0.9
		} else {
			e.state.Distance /= 0.9
		}
	}
	e.state.Distance = max(minDistance, min(e.zoomLimit(), e.state.Distance))
}

// zoomLimit is the furthest the camera may orbit: half the far plane, so a
// focus model a few units across stays inside the frustum.
func (e *Engine) zoomLimit() float64 {
	return min(maxDistance, e.cfg.Far/2)
}

// fovInput moves the FOV goal while O or P is held and eases the camera's
// FOV toward it.
func (e *Engine) fovInput(snap input.Snapshot, dt float64) {
	if d := axis(snap, "o", "p"); d != 0 {
		goal := max(minFOV+1, min(maxFOV-1, e.state.FOVGoal+d*fovSpeed*dt))
		if goal != e.state.FOVGoal {
			e.state.FOVGoal = goal
			e.fov = gween.New(float32(e.state.FOV), float32(goal), fovTweenSeconds, ease.OutCubic)
		}
	}
	if e.fov == nil {
		return
	}
	cur, done := e.fov.Update(float32(dt))
	e.state.FOV = float64(cur)
	if done {
		e.state.FOV = e.state.FOVGoal
		e.fov = nil
	}
	e.Scene.Camera.SetFOV(radians(e.state.FOV))
}

// lightInput rotates every light about the world origin: W/S around X and
// A/D around Y.
func (e *Engine) lightInput(snap input.Snapshot, dt float64) {
	rx := axis(snap, "w", "s") * lightSpeed * dt
	ry := axis(snap, "d", "a") * lightSpeed * dt
	if rx == 0 && ry == 0 {
		return
	}
	rot := math3d.RotateY(ry).Mul(math3d.RotateX(rx))
	for i := range e.Scene.Lights {
		e.Scene.Lights[i].Position = rot.MulPoint(e.Scene.Lights[i].Position)
	}
}

// focusInput rotates the focus node with a right-drag and scales it with
// N/M.
func (e *Engine) focusInput(snap input.Snapshot, dt float64) error {
	dx, dy := e.drag(snap, input.MouseRight)
	x, y := snap.Mouse()
	e.state.lastX, e.state.lastY = x, y

	if e.focus == scene.NoNode {
		return nil
	}
	g := e.Scene.Graph
	if dx != 0 || dy != 0 {
		rot := math3d.RotateX(float64(dy) * rotateDragSpeed).Mul(math3d.RotateY(float64(dx) * rotateDragSpeed))
		if err := g.Rotate(e.focus, rot); err != nil {
			return fmt.Errorf("rotate focus: %w", err)
		}
	}
	if s := axis(snap, "m", "n"); s != 0 {
		f := 1 + s*scaleSpeed*dt
		if f > 0 {
			if err := g.Scale(e.focus, math3d.V3(f, f, f)); err != nil {
				return fmt.Errorf("scale focus: %w", err)
			}
		}
	}
	return nil
}

// placeCamera puts the camera on the orbit sphere around the target.
func (e *Engine) placeCamera() {
	cam := e.Scene.Camera
	cam.SetPosition(e.target.Add(math3d.V3(0, 0, -e.state.Distance)))
	cam.Orbit(e.target, e.state.Orbit.Yaw.Position, e.state.Orbit.Pitch.Position)
}

// Render draws the current frame. On error the renderer keeps showing the
// previous frame.
func (e *Engine) Render() error {
	var lines []string
	if e.state.ShowHUD {
		lines = e.hud.Lines(e)
	}
	if err := e.Renderer.Render(e.Scene.Frame(lines...)); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Frame returns the last completed frame.
func (e *Engine) Frame() *render.Framebuffer { return e.Renderer.Front() }

// Pixels returns the last completed frame as packed 0x00RRGGBB.
func (e *Engine) Pixels() []uint32 { return e.Renderer.Pixels() }
