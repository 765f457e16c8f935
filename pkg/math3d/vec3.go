// Package math3d provides the vector and matrix types used by the
// rendering pipeline. Matrices are row-major and act on column vectors.
package math3d

import "math"

// Epsilon is the tolerance below which lengths and homogeneous w values are
// treated as zero.
const Epsilon = 1e-9

// Vec3 is a point or direction in 3D.
type Vec3 struct {
	X, Y, Z float64
}

// V3 creates a new Vec3.
func V3(x, y, z float64) Vec3 {
	return Vec3{x, y, z}
}

// Zero3 returns the origin.
func Zero3() Vec3 { return Vec3{} }

// Up returns +Y, the world up axis.
func Up() Vec3 { return Vec3{Y: 1} }

// Add returns a + b.
func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

// Sub returns a - b.
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

// Mul multiplies component by component.
func (a Vec3) Mul(b Vec3) Vec3 { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }

// Scale multiplies every component by s.
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

// Negate returns -a.
func (a Vec3) Negate() Vec3 { return Vec3{-a.X, -a.Y, -a.Z} }

// Dot returns a · b.
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns a × b (right-handed).
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// LenSq returns the squared length, skipping the square root.
func (a Vec3) LenSq() float64 { return a.Dot(a) }

// Len returns the Euclidean length.
func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Distance returns |a - b|.
func (a Vec3) Distance(b Vec3) float64 { return a.Sub(b).Len() }

// Normalize scales a to unit length. Anything shorter than Epsilon comes
// back as the zero vector rather than NaN.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l < Epsilon {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Min returns the per-component minimum of a and b.
func (a Vec3) Min(b Vec3) Vec3 { return a.zip(b, math.Min) }

// Max returns the per-component maximum of a and b.
func (a Vec3) Max(b Vec3) Vec3 { return a.zip(b, math.Max) }

// Clamp limits every component to [lo, hi].
func (a Vec3) Clamp(lo, hi float64) Vec3 {
	return a.Max(Vec3{lo, lo, lo}).Min(Vec3{hi, hi, hi})
}

func (a Vec3) zip(b Vec3, f func(x, y float64) float64) Vec3 {
	return Vec3{f(a.X, b.X), f(a.Y, b.Y), f(a.Z, b.Z)}
}

// AngleTo returns the unsigned angle between a and b in radians, or 0 if
// either is zero length.
func (a Vec3) AngleTo(b Vec3) float64 {
	denom := a.Len() * b.Len()
	if denom < Epsilon {
		return 0
	}
	cos := max(-1, min(1, a.Dot(b)/denom))
	return math.Acos(cos)
}

// IsFinite reports whether every component is a real number.
func (a Vec3) IsFinite() bool {
	for _, c := range [3]float64{a.X, a.Y, a.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares per component with an absolute tolerance.
func (a Vec3) ApproxEqual(b Vec3, tol float64) bool {
	d := a.Sub(b)
	return math.Abs(d.X) <= tol && math.Abs(d.Y) <= tol && math.Abs(d.Z) <= tol
}

// Point lifts a to homogeneous coordinates with w=1.
func (a Vec3) Point() Vec4 { return Vec4{a.X, a.Y, a.Z, 1} }

// Direction lifts a with w=0, so translations do not apply.
func (a Vec3) Direction() Vec4 { return Vec4{a.X, a.Y, a.Z, 0} }
