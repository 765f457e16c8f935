package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Camera is a perspective camera described by a position and an orthonormal
// basis. View, projection and their product are cached and recomputed on the
// next query after any setter runs.
type Camera struct {
	position  math3d.Vec3
	direction math3d.Vec3
	up        math3d.Vec3
	right     math3d.Vec3
	worldUp   math3d.Vec3

	// Projection parameters
	fov    float64 // Vertical field of view in radians
	aspect float64
	near   float64
	far    float64

	// Cached matrices
	view       math3d.Mat4
	projection math3d.Mat4
	frustum    math3d.Mat4
	dirty      bool
}

// NewCamera creates a camera at position looking at target. up must not be
// parallel to target-position; a parallel up yields a degenerate basis.
// The projection defaults to a 60° FOV, 16:9, near 0.1 and far 1000.
func NewCamera(position, target, up math3d.Vec3) *Camera {
	c := &Camera{
		position: position,
		worldUp:  up,
		fov:      math.Pi / 3,
		aspect:   16.0 / 9.0,
		near:     0.1,
		far:      1000,
	}
	c.LookAt(target)
	return c
}

// SetPosition moves the camera without changing its orientation.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.position = pos
	c.dirty = true
}

// LookAt points the camera at target, re-deriving the basis from the up
// vector given at construction.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.direction = target.Sub(c.position).Normalize()
	c.right = c.direction.Cross(c.worldUp).Normalize()
	c.up = c.right.Cross(c.direction).Normalize()
	c.dirty = true
}

// SetProjection sets the vertical FOV (radians), aspect ratio and clip planes.
func (c *Camera) SetProjection(fov, aspect, near, far float64) {
	c.fov = fov
	c.aspect = aspect
	c.near = near
	c.far = far
	c.dirty = true
}

// SetFOV sets the field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.fov = fov
	c.dirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.aspect = aspect
	c.dirty = true
}

// Orbit places the camera on a sphere around target at its current distance,
// yaw radians around the world up axis and pitch radians above the horizon,
// and looks at target. Pitch is clamped short of the poles.
func (c *Camera) Orbit(target math3d.Vec3, yaw, pitch float64) {
	const maxPitch = math.Pi/2 - 0.01
	pitch = max(-maxPitch, min(maxPitch, pitch))

	dist := c.position.Distance(target)
	offset := math3d.V3(
		math.Cos(pitch)*math.Sin(yaw),
		math.Sin(pitch),
		-math.Cos(pitch)*math.Cos(yaw),
	).Scale(dist)

	c.position = target.Add(offset)
	c.LookAt(target)
}

// Position returns the camera position.
func (c *Camera) Position() math3d.Vec3 { return c.position }

// Direction returns the unit view direction.
func (c *Camera) Direction() math3d.Vec3 { return c.direction }

// Up returns the camera's unit up vector.
func (c *Camera) Up() math3d.Vec3 { return c.up }

// Right returns the camera's unit right vector.
func (c *Camera) Right() math3d.Vec3 { return c.right }

// FOV returns the vertical field of view in radians.
func (c *Camera) FOV() float64 { return c.fov }

// Aspect returns the aspect ratio.
func (c *Camera) Aspect() float64 { return c.aspect }

// ClipPlanes returns the near and far distances.
func (c *Camera) ClipPlanes() (near, far float64) { return c.near, c.far }

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	c.update()
	return c.view
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	c.update()
	return c.projection
}

// FrustumMatrix returns the combined projection·view matrix.
func (c *Camera) FrustumMatrix() math3d.Mat4 {
	c.update()
	return c.frustum
}

// Frustum builds the culling volume for the current matrices.
func (c *Camera) Frustum() (Frustum, error) {
	return NewFrustum(c.FrustumMatrix())
}

func (c *Camera) update() {
	if !c.dirty {
		return
	}
	c.view = math3d.LookAt(c.position, c.position.Add(c.direction), c.up)
	c.projection = math3d.Perspective(c.fov, c.aspect, c.near, c.far)
	c.frustum = c.projection.Mul(c.view)
	c.dirty = false
}

// WorldToScreen projects a world point onto a width×height screen.
// Returns (screenX, screenY, depth, visible); visible is false behind the
// camera or outside the view volume.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clip := c.FrustumMatrix().MulVec4(worldPos.Point())
	if clip.W <= MinClipW {
		return 0, 0, 0, false
	}
	ndc, _ := clip.PerspectiveDivide(MinClipW)
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}
	s := Viewport(screenWidth, screenHeight).MulPoint(ndc)
	return s.X, s.Y, s.Z, true
}
