package render

import (
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
)

// BackfaceEpsilon is the threshold for IsFrontFacing. Faces whose normal is
// nearly perpendicular to the view ray still count as front facing.
const BackfaceEpsilon = 0.1

// Plane is a plane through Point with unit Normal. Normals of frustum planes
// point out of the volume.
type Plane struct {
	Normal math3d.Vec3
	Point  math3d.Vec3
}

// newPlane builds the plane through a, b and c with normal (b-a)×(c-a).
func newPlane(a, b, c math3d.Vec3) Plane {
	return Plane{Normal: b.Sub(a).Cross(c.Sub(a)).Normalize(), Point: a}
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point.Sub(p.Point))
}

// Frustum is the visible volume as six outward-facing planes.
// Planes are ordered: Left, Right, Bottom, Top, Near, Far.
type Frustum struct {
	Planes  [6]Plane
	Corners [8]math3d.Vec3 // World-space corners, index bits: x | y<<1 | z<<2
}

// FrustumPlane indices for clarity.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// NewFrustum unprojects the eight corners of the NDC cube through the
// inverse of viewProjection and builds the six bounding planes from them.
func NewFrustum(viewProjection math3d.Mat4) (Frustum, error) {
	var f Frustum

	inv, err := viewProjection.Inverse()
	if err != nil {
		return f, fmt.Errorf("frustum: %w", err)
	}

	for i := range f.Corners {
		ndc := math3d.V4(
			float64(i&1)*2-1,
			float64(i>>1&1)*2-1,
			float64(i>>2&1)*2-1,
			1,
		)
		p, ok := inv.MulVec4(ndc).PerspectiveDivide(math3d.Epsilon)
		if !ok || !p.IsFinite() {
			return f, fmt.Errorf("frustum corner %d: %w", i, ErrNonFinite)
		}
		f.Corners[i] = p
	}

	c := f.Corners
	// Corner names: n/f near/far, b/t bottom/top, l/r left/right.
	nbl, nbr, ntl, ntr := c[0], c[1], c[2], c[3]
	fbl, fbr, ftl := c[4], c[5], c[6]

	f.Planes[FrustumLeft] = newPlane(nbl, ntl, fbl)
	f.Planes[FrustumRight] = newPlane(nbr, fbr, ntr)
	f.Planes[FrustumBottom] = newPlane(nbl, fbl, nbr)
	f.Planes[FrustumTop] = newPlane(ntl, ntr, ftl)
	f.Planes[FrustumNear] = newPlane(nbl, nbr, ntl)
	f.Planes[FrustumFar] = newPlane(fbl, ftl, fbr)

	// Orient every normal away from the centroid. This keeps the planes
	// outward regardless of the handedness the matrix introduces.
	var centroid math3d.Vec3
	for _, p := range c {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1.0 / 8)
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(centroid) > 0 {
			f.Planes[i].Normal = f.Planes[i].Normal.Negate()
		}
	}

	return f, nil
}

// PointInBounds reports whether p is strictly inside every plane.
func (f Frustum) PointInBounds(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) >= 0 {
			return false
		}
	}
	return true
}

// TriangleVisible rejects a triangle only when all three vertices lie
// outside the same plane. Triangles straddling the volume are kept.
func (f Frustum) TriangleVisible(a, b, c math3d.Vec3) bool {
	for i := range f.Planes {
		pl := f.Planes[i]
		if pl.DistanceToPoint(a) > 0 && pl.DistanceToPoint(b) > 0 && pl.DistanceToPoint(c) > 0 {
			return false
		}
	}
	return true
}

// IsFrontFacing reports whether a face with the given normal faces a viewer
// looking along viewDir. Both vectors are normalized first.
func IsFrontFacing(faceNormal, viewDir math3d.Vec3) bool {
	return faceNormal.Normalize().Dot(viewDir.Normalize()) < BackfaceEpsilon
}

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max math3d.Vec3
}

// NewAABB creates a box from its minimum and maximum corners.
func NewAABB(lo, hi math3d.Vec3) AABB {
	return AABB{Min: lo, Max: hi}
}

// Corner returns corner i of the box. Bit 0 of i picks Max.X over Min.X,
// bit 1 Max.Y and bit 2 Max.Z.
func (b AABB) Corner(i int) math3d.Vec3 {
	c := b.Min
	if i&1 != 0 {
		c.X = b.Max.X
	}
	if i&2 != 0 {
		c.Y = b.Max.Y
	}
	if i&4 != 0 {
		c.Z = b.Max.Z
	}
	return c
}

// Transform bounds the eight transformed corners of b.
func (b AABB) Transform(m math3d.Mat4) AABB {
	p := m.MulPoint(b.Corner(0))
	out := AABB{Min: p, Max: p}
	for i := 1; i < 8; i++ {
		p = m.MulPoint(b.Corner(i))
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectAABB reports whether any part of box may lie inside f. For each
// plane it tests the corner furthest against the outward normal; if even
// that corner is outside, so is the box. Boxes near a frustum edge can pass
// while being outside, never the reverse.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, pl := range f.Planes {
		i := 0
		if pl.Normal.X < 0 {
			i |= 1
		}
		if pl.Normal.Y < 0 {
			i |= 2
		}
		if pl.Normal.Z < 0 {
			i |= 4
		}
		if pl.DistanceToPoint(box.Corner(i)) > 0 {
			return false
		}
	}
	return true
}
