package render

import "github.com/taigrr/scanline/pkg/math3d"

// Viewport returns the matrix mapping normalized device coordinates to
// screen space. X in [-1, 1] maps to [0, width]; Y is flipped so +1 lands
// on row 0; Z passes through unchanged.
func Viewport(width, height int) math3d.Mat4 {
	hw, hh := float64(width)/2, float64(height)/2
	return math3d.Mat4{
		{hw, 0, 0, hw},
		{0, -hh, 0, hh},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}
