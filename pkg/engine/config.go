package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/scanline/pkg/render"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("engine: invalid config")

// Config holds everything needed to start an engine.
type Config struct {
	Width, Height int // Framebuffer size in pixels

	FOV       float64 // Vertical field of view in degrees
	Near, Far float64

	// Camera orbit around the focus point. Yaw and Pitch are in degrees.
	Distance   float64
	Yaw, Pitch float64

	// Spring parameters for the orbit. Frequency is in radians per second;
	// a damping ratio of 1 is critically damped.
	OrbitFrequency float64
	OrbitDamping   float64

	TargetFPS int
	Options   render.Options
}

// DefaultConfig returns a 320×180 view of the origin from 10 units away,
// with the axes and ground grid visible.
func DefaultConfig() Config {
	opts := render.DefaultOptions()
	opts.Axes = true
	opts.Grid = true
	return Config{
		Width:          320,
		Height:         180,
		FOV:            60,
		Near:           1,
		Far:            75,
		Distance:       10,
		Yaw:            150,
		Pitch:          10,
		OrbitFrequency: 6,
		OrbitDamping:   1,
		TargetFPS:      60,
		Options:        opts,
	}
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("size %dx%d: %w", c.Width, c.Height, ErrInvalidConfig)
	case !(c.FOV > minFOV && c.FOV < maxFOV):
		return fmt.Errorf("fov %v outside (%v, %v): %w", c.FOV, minFOV, maxFOV, ErrInvalidConfig)
	case !(c.Near > 0) || !(c.Far > c.Near) || math.IsInf(c.Far, 0):
		return fmt.Errorf("clip planes near %v far %v: %w", c.Near, c.Far, ErrInvalidConfig)
	case !(c.Distance > 0):
		return fmt.Errorf("distance %v: %w", c.Distance, ErrInvalidConfig)
	case c.TargetFPS <= 0:
		return fmt.Errorf("target fps %d: %w", c.TargetFPS, ErrInvalidConfig)
	case !(c.OrbitFrequency > 0) || c.OrbitDamping < 0:
		return fmt.Errorf("orbit spring %v/%v: %w", c.OrbitFrequency, c.OrbitDamping, ErrInvalidConfig)
	}
	return nil
}

// aspect returns the framebuffer aspect ratio.
func (c Config) aspect() float64 {
	return float64(c.Width) / float64(c.Height)
}
