package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Overlay draws world-space lines straight onto a framebuffer, without
// depth testing. It is used for debug geometry drawn over the shaded image.
type Overlay struct {
	fb     *Framebuffer
	toClip math3d.Mat4 // World to clip
	toScr  math3d.Mat4 // NDC to screen
}

// NewOverlay creates an overlay for fb. clipFromWorld is usually the
// camera's frustum matrix.
func NewOverlay(fb *Framebuffer, clipFromWorld math3d.Mat4) *Overlay {
	return &Overlay{
		fb:     fb,
		toClip: clipFromWorld,
		toScr:  Viewport(fb.Width, fb.Height),
	}
}

// DrawLine3D draws a line in 3D space. The part of the line behind the eye
// is cut off in clip space before the perspective divide.
func (o *Overlay) DrawLine3D(p1, p2 math3d.Vec3, color Color) {
	a := o.toClip.MulVec4(p1.Point())
	b := o.toClip.MulVec4(p2.Point())

	if a.W <= MinClipW && b.W <= MinClipW {
		return
	}
	if a.W <= MinClipW {
		a = a.Lerp(b, (MinClipW-a.W)/(b.W-a.W))
	} else if b.W <= MinClipW {
		b = b.Lerp(a, (MinClipW-b.W)/(a.W-b.W))
	}

	na, okA := a.PerspectiveDivide(MinClipW / 2)
	nb, okB := b.PerspectiveDivide(MinClipW / 2)
	if !okA || !okB {
		return
	}
	sa := o.toScr.MulPoint(na)
	sb := o.toScr.MulPoint(nb)
	o.fb.DrawLine(toPixel(sa.X), toPixel(sa.Y), toPixel(sb.X), toPixel(sb.Y), color)
}

// toPixel rounds a screen coordinate down, limiting far off-screen values
// so the int conversion stays defined.
func toPixel(f float64) int {
	const limit = 1 << 20
	if math.IsNaN(f) {
		return -limit
	}
	return int(math.Floor(math.Max(-limit, math.Min(limit, f))))
}

// DrawAABB draws the twelve edges of box after transform.
func (o *Overlay) DrawAABB(box AABB, transform math3d.Mat4, color Color) {
	var corners [8]math3d.Vec3
	for i := range corners {
		corners[i] = transform.MulPoint(box.Corner(i))
	}

	// Corners differing in exactly one bit share an edge
	for i := range corners {
		for bit := 1; bit < 8; bit <<= 1 {
			if i&bit == 0 {
				o.DrawLine3D(corners[i], corners[i|bit], color)
			}
		}
	}
}

// DrawAxes draws the coordinate axes at the origin.
func (o *Overlay) DrawAxes(length float64) {
	origin := math3d.Zero3()
	o.DrawLine3D(origin, math3d.V3(length, 0, 0), ColorRed)   // X axis
	o.DrawLine3D(origin, math3d.V3(0, length, 0), ColorGreen) // Y axis
	o.DrawLine3D(origin, math3d.V3(0, 0, length), ColorBlue)  // Z axis
}

// DrawGrid draws a grid on the XZ plane at y=0.
func (o *Overlay) DrawGrid(size, step float64, color Color) {
	if step <= 0 {
		return
	}
	half := size / 2
	n := int(math.Round(size / step))
	for i := 0; i <= n; i++ {
		d := -half + float64(i)*step
		o.DrawLine3D(math3d.V3(d, 0, -half), math3d.V3(d, 0, half), color)
		o.DrawLine3D(math3d.V3(-half, 0, d), math3d.V3(half, 0, d), color)
	}
}

// DrawPoint draws a point as a small cross.
func (o *Overlay) DrawPoint(pos math3d.Vec3, size float64, color Color) {
	h := size / 2
	o.DrawLine3D(pos.Sub(math3d.V3(h, 0, 0)), pos.Add(math3d.V3(h, 0, 0)), color)
	o.DrawLine3D(pos.Sub(math3d.V3(0, h, 0)), pos.Add(math3d.V3(0, h, 0)), color)
	o.DrawLine3D(pos.Sub(math3d.V3(0, 0, h)), pos.Add(math3d.V3(0, 0, h)), color)
}
