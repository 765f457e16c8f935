package render

import "math"

// ZBuffer holds one float32 depth per pixel. Smaller is nearer.
type ZBuffer struct {
	Width  int
	Height int
	Depth  []float32
}

// NewZBuffer creates a depth buffer cleared to +Inf.
func NewZBuffer(width, height int) *ZBuffer {
	z := &ZBuffer{
		Width:  width,
		Height: height,
		Depth:  make([]float32, width*height),
	}
	z.Clear()
	return z
}

// Clear resets every depth to +Inf.
func (z *ZBuffer) Clear() {
	// Use copy-doubling for faster clearing
	n := len(z.Depth)
	if n == 0 {
		return
	}
	z.Depth[0] = float32(math.Inf(1))
	for i := 1; i < n; i *= 2 {
		copy(z.Depth[i:], z.Depth[:i])
	}
}

// At returns the depth at (x, y), or +Inf outside the buffer.
func (z *ZBuffer) At(x, y int) float32 {
	if x < 0 || x >= z.Width || y < 0 || y >= z.Height {
		return float32(math.Inf(1))
	}
	return z.Depth[y*z.Width+x]
}

// TestAndSet stores depth at (x, y) if it is strictly nearer than the
// stored value and reports whether it did.
func (z *ZBuffer) TestAndSet(x, y int, depth float32) bool {
	if x < 0 || x >= z.Width || y < 0 || y >= z.Height {
		return false
	}
	idx := y*z.Width + x
	if !(depth < z.Depth[idx]) {
		return false
	}
	z.Depth[idx] = depth
	return true
}

// Range returns the smallest and largest finite depths. ok is false when
// nothing has been written.
func (z *ZBuffer) Range() (lo, hi float32, ok bool) {
	lo, hi = float32(math.Inf(1)), float32(math.Inf(-1))
	for _, d := range z.Depth {
		if math.IsInf(float64(d), 0) {
			continue
		}
		lo = min(lo, d)
		hi = max(hi, d)
		ok = true
	}
	return lo, hi, ok
}
