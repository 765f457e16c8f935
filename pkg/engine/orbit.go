package engine

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// maxPitch keeps the orbit short of the poles, where the camera basis
// degenerates.
const maxPitch = 89 * math.Pi / 180

// Axis is one orbit angle. Position chases Target on a spring, so input
// moves the target and the camera eases after it.
type Axis struct {
	Position float64
	Velocity float64
	Target   float64
	spring   harmonica.Spring
}

// NewAxis creates an axis at rest at pos.
func NewAxis(fps int, frequency, damping, pos float64) Axis {
	return Axis{
		Position: pos,
		Target:   pos,
		spring:   harmonica.NewSpring(harmonica.FPS(fps), frequency, damping),
	}
}

// Update advances the spring by one frame.
func (a *Axis) Update() {
	a.Position, a.Velocity = a.spring.Update(a.Position, a.Velocity, a.Target)
}

// Settled reports whether the axis is within tol of its target and nearly
// still.
func (a *Axis) Settled(tol float64) bool {
	return math.Abs(a.Target-a.Position) < tol && math.Abs(a.Velocity) < tol
}

// Orbit is the camera's yaw and pitch around the focus point, in radians.
type Orbit struct {
	Yaw, Pitch Axis
}

// NewOrbit creates an orbit at rest from the config's degrees.
func NewOrbit(cfg Config) Orbit {
	return Orbit{
		Yaw:   NewAxis(cfg.TargetFPS, cfg.OrbitFrequency, cfg.OrbitDamping, radians(cfg.Yaw)),
		Pitch: NewAxis(cfg.TargetFPS, cfg.OrbitFrequency, cfg.OrbitDamping, clampPitch(radians(cfg.Pitch))),
	}
}

// Nudge moves the targets. Pitch is clamped short of the poles.
func (o *Orbit) Nudge(yaw, pitch float64) {
	o.Yaw.Target += yaw
	o.Pitch.Target = clampPitch(o.Pitch.Target + pitch)
}

// Update advances both springs by one frame.
func (o *Orbit) Update() {
	o.Yaw.Update()
	o.Pitch.Update()
}

func clampPitch(p float64) float64 {
	return max(-maxPitch, min(maxPitch, p))
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
