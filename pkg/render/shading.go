package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Shading selects the ShadingModel a material is lit with.
type Shading int

const (
	ShadeFlat  Shading = iota // Blinn-Phong ambient, diffuse and specular
	ShadeUnlit                // Base color only
)

// Model returns the shading model for s.
func (s Shading) Model() ShadingModel {
	if s == ShadeUnlit {
		return UnlitShader{}
	}
	return FlatShader{}
}

// String implements fmt.Stringer.
func (s Shading) String() string {
	if s == ShadeUnlit {
		return "unlit"
	}
	return "flat"
}

// Material describes how a surface reflects light.
type Material struct {
	Name      string
	Base      math3d.Vec3 // Linear RGB in 0-1
	Ambient   float64
	Diffuse   float64
	Specular  float64
	Shininess float64
	Shading   Shading
	Texture   *Texture // Optional, modulates the shaded color
}

// DefaultMaterial is a light gray, moderately shiny material.
func DefaultMaterial() Material {
	return Material{
		Name:      "default",
		Base:      math3d.V3(0.8, 0.8, 0.8),
		Ambient:   0.1,
		Diffuse:   0.7,
		Specular:  0.3,
		Shininess: 32,
	}
}

// Light is a point light.
type Light struct {
	Position  math3d.Vec3
	Color     math3d.Vec3 // Linear RGB in 0-1
	Intensity float64
}

// ShadingModel computes the color of a surface point.
//
// point and normal are in the same space as the light positions; view is
// the direction from point toward the eye. The result is clamped to [0, 1]
// per channel.
type ShadingModel interface {
	CalcColor(point, normal, view math3d.Vec3, m Material, lights []Light) math3d.Vec3
}

// FlatShader is the Blinn-Phong reference model:
//
//	ambient·base + Σ[(diffuse·base·max(L·N,0) + specular·max(H·N,0)^shininess)·color·intensity] / n
//
// where H is the half vector between L and view. With no lights only the
// ambient term remains.
type FlatShader struct{}

// CalcColor implements ShadingModel.
func (FlatShader) CalcColor(point, normal, view math3d.Vec3, m Material, lights []Light) math3d.Vec3 {
	result := m.Base.Scale(m.Ambient)
	if len(lights) == 0 {
		return result.Clamp(0, 1)
	}

	n := normal.Normalize()
	v := view.Normalize()
	white := math3d.V3(1, 1, 1)

	var sum math3d.Vec3
	for _, light := range lights {
		l := light.Position.Sub(point).Normalize()
		h := l.Add(v).Normalize()

		diffuse := m.Base.Scale(m.Diffuse * math.Max(l.Dot(n), 0))
		specular := white.Scale(m.Specular * math.Pow(math.Max(h.Dot(n), 0), m.Shininess))

		sum = sum.Add(diffuse.Add(specular).Mul(light.Color).Scale(light.Intensity))
	}

	return result.Add(sum.Scale(1 / float64(len(lights)))).Clamp(0, 1)
}

// UnlitShader returns the base color unchanged.
type UnlitShader struct{}

// CalcColor implements ShadingModel.
func (UnlitShader) CalcColor(_, _, _ math3d.Vec3, m Material, _ []Light) math3d.Vec3 {
	return m.Base.Clamp(0, 1)
}
