package render

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// MinClipW is the smallest clip-space w accepted by the perspective divide.
// Vertices at or below it are at or behind the eye and are never divided.
const MinClipW = 1e-6

// ScreenVertex is a vertex after the viewport transform.
type ScreenVertex struct {
	X, Y  float64     // Screen coordinates, pixel centers at +0.5
	Z     float64     // NDC depth, -1 near to 1 far
	InvW  float64     // 1/w from clip space, for perspective-correct UVs
	Color math3d.Vec3 // Shaded color in 0-1
	UV    math3d.Vec2
}

// Fragment is a pixel that passed the depth test, waiting to be blended.
type Fragment struct {
	X, Y       int
	Z          float32
	Color      Color
	MaterialID int
}

// Rasterizer scan-converts screen-space triangles against a z-buffer and
// emits fragments. Fragments are committed to a framebuffer by Blend in the
// order they were produced.
type Rasterizer struct {
	zbuf      *ZBuffer
	fragments []Fragment
}

// NewRasterizer creates a rasterizer writing depth into zbuf.
func NewRasterizer(zbuf *ZBuffer) *Rasterizer {
	return &Rasterizer{zbuf: zbuf}
}

// Fragments returns the fragments emitted since the last Blend or Reset.
func (r *Rasterizer) Fragments() []Fragment {
	return r.fragments
}

// Reset drops pending fragments. The z-buffer is left alone.
func (r *Rasterizer) Reset() {
	r.fragments = r.fragments[:0]
}

// Blend writes pending fragments into fb and returns how many were written.
func (r *Rasterizer) Blend(fb *Framebuffer) int {
	n := len(r.fragments)
	for _, f := range r.fragments {
		fb.SetPixel(f.X, f.Y, f.Color)
	}
	r.Reset()
	return n
}

// Barycentric returns the weights (α, β, γ) of p relative to triangle abc,
// computed as ratios of signed areas. The weights sum to 1. ok is false for
// a degenerate (zero-area) triangle.
func Barycentric(a, b, c, p math3d.Vec2) (w math3d.Vec3, ok bool) {
	area := b.Sub(a).Cross(c.Sub(a))
	if area == 0 {
		return math3d.Vec3{}, false
	}
	alpha := c.Sub(b).Cross(p.Sub(b)) / area
	beta := a.Sub(c).Cross(p.Sub(c)) / area
	return math3d.V3(alpha, beta, 1-alpha-beta), true
}

// edgeCoeffs returns A, B, C for the edge function A*x + B*y + C of the
// directed edge (x0,y0)->(x1,y1), equal to cross(p1-p0, p-p0).
func edgeCoeffs(x0, y0, x1, y1 float64) (A, B, C float64) {
	A = y0 - y1 // dy
	B = x1 - x0 // -dx
	C = x0*y1 - x1*y0
	return
}

// edgeFunc evaluates edge function at point (x, y)
func edgeFunc(A, B, C, x, y float64) float64 {
	return A*x + B*y + C
}

// DrawTriangle rasterizes a screen-space triangle and returns the number of
// fragments emitted.
//
// Every pixel center (x+0.5, y+0.5) in the clamped bounding box whose
// barycentric weights all lie in [0, 1] is covered. Depth and color are
// interpolated linearly in screen space; UVs are perspective-correct. A
// fragment is emitted only if its depth is strictly less than the stored
// depth. Both windings are accepted; degenerate triangles emit nothing.
func (r *Rasterizer) DrawTriangle(v [3]ScreenVertex, materialID int, tex *Texture) int {
	width, height := r.zbuf.Width, r.zbuf.Height

	// Twice the signed area
	area2 := (v[1].X-v[0].X)*(v[2].Y-v[0].Y) - (v[1].Y-v[0].Y)*(v[2].X-v[0].X)
	if area2 == 0 || math.IsNaN(area2) {
		return 0
	}
	invArea := 1.0 / area2

	// Bounding box (clamped to screen)
	minX := int(math.Max(0, math.Floor(min3(v[0].X, v[1].X, v[2].X))))
	maxX := int(math.Min(float64(width-1), math.Ceil(max3(v[0].X, v[1].X, v[2].X))))
	minY := int(math.Max(0, math.Floor(min3(v[0].Y, v[1].Y, v[2].Y))))
	maxY := int(math.Min(float64(height-1), math.Ceil(max3(v[0].Y, v[1].Y, v[2].Y))))
	if minX > maxX || minY > maxY {
		return 0
	}

	// Edge 0: v1 -> v2, Edge 1: v2 -> v0, Edge 2: v0 -> v1
	A0, B0, C0 := edgeCoeffs(v[1].X, v[1].Y, v[2].X, v[2].Y)
	A1, B1, C1 := edgeCoeffs(v[2].X, v[2].Y, v[0].X, v[0].Y)
	A2, B2, C2 := edgeCoeffs(v[0].X, v[0].Y, v[1].X, v[1].Y)

	// Evaluate edge functions at the first pixel center
	px := float64(minX) + 0.5
	py := float64(minY) + 0.5
	w0Row := edgeFunc(A0, B0, C0, px, py)
	w1Row := edgeFunc(A1, B1, C1, px, py)
	w2Row := edgeFunc(A2, B2, C2, px, py)

	emitted := 0
	for y := minY; y <= maxY; y++ {
		w0, w1, w2 := w0Row, w1Row, w2Row

		for x := minX; x <= maxX; x++ {
			bc0 := w0 * invArea
			bc1 := w1 * invArea
			bc2 := w2 * invArea

			if inUnit(bc0) && inUnit(bc1) && inUnit(bc2) {
				z := float32(bc0*v[0].Z + bc1*v[1].Z + bc2*v[2].Z)
				if r.zbuf.TestAndSet(x, y, z) {
					c := ColorFromVec3(v[0].Color.Scale(bc0).
						Add(v[1].Color.Scale(bc1)).
						Add(v[2].Color.Scale(bc2)))
					if tex != nil {
						c = ModulateColor(c, sampleCorrected(tex, v, bc0, bc1, bc2))
					}
					r.fragments = append(r.fragments, Fragment{
						X: x, Y: y, Z: z, Color: c, MaterialID: materialID,
					})
					emitted++
				}
			}

			// Step in X direction
			w0 += A0
			w1 += A1
			w2 += A2
		}

		// Step in Y direction
		w0Row += B0
		w1Row += B1
		w2Row += B2
	}
	return emitted
}

// sampleCorrected interpolates UV/w and 1/w, then divides, so textures do
// not swim under perspective.
func sampleCorrected(tex *Texture, v [3]ScreenVertex, bc0, bc1, bc2 float64) Color {
	pw0 := bc0 * v[0].InvW
	pw1 := bc1 * v[1].InvW
	pw2 := bc2 * v[2].InvW
	oneOverW := pw0 + pw1 + pw2
	if oneOverW == 0 {
		return ColorWhite
	}
	u := (pw0*v[0].UV.X + pw1*v[1].UV.X + pw2*v[2].UV.X) / oneOverW
	t := (pw0*v[0].UV.Y + pw1*v[1].UV.Y + pw2*v[2].UV.Y) / oneOverW
	return tex.Sample(u, t)
}

func inUnit(f float64) bool {
	return f >= 0 && f <= 1
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
