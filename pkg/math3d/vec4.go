package math3d

import "math"

// Vec4 is a homogeneous coordinate. Points carry W=1, free directions W=0.
type Vec4 struct {
	X, Y, Z, W float64
}

// V4 creates a new Vec4.
func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// Vec3 drops W without dividing.
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// IsPoint reports whether W is non-zero.
func (v Vec4) IsPoint() bool {
	return math.Abs(v.W) >= Epsilon
}

// PerspectiveDivide returns (x/w, y/w, z/w). ok is false, and the result
// the zero vector, when |w| < minW or w is NaN.
func (v Vec4) PerspectiveDivide(minW float64) (p Vec3, ok bool) {
	if !(math.Abs(v.W) >= minW) {
		return Vec3{}, false
	}
	return v.Vec3().Scale(1 / v.W), true
}

// Lerp moves from v toward o by t, W included. Clipping against w = const
// uses it to find the crossing point.
func (v Vec4) Lerp(o Vec4, t float64) Vec4 {
	return Vec4{
		X: v.X + t*(o.X-v.X),
		Y: v.Y + t*(o.Y-v.Y),
		Z: v.Z + t*(o.Z-v.Z),
		W: v.W + t*(o.W-v.W),
	}
}
