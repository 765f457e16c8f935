package render

import (
	"image/color"
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// Color is an 8-bit RGBA color. Framebuffers store colors packed as
// 0x00RRGGBB and ignore alpha.
type Color = color.RGBA

var (
	ColorBlack   = RGB(0, 0, 0)
	ColorWhite   = RGB(255, 255, 255)
	ColorRed     = RGB(255, 0, 0)
	ColorGreen   = RGB(0, 255, 0)
	ColorBlue    = RGB(0, 0, 255)
	ColorYellow  = RGB(255, 255, 0)
	ColorCyan    = RGB(0, 255, 255)
	ColorMagenta = RGB(255, 0, 255)
	ColorGray    = RGB(128, 128, 128)
	ColorSky     = RGB(135, 206, 235) // default background
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// Pack converts c to 0x00RRGGBB.
func Pack(c Color) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Unpack converts 0x00RRGGBB to an opaque color.
func Unpack(p uint32) Color {
	return RGB(uint8(p>>16), uint8(p>>8), uint8(p))
}

// ColorFromVec3 converts linear 0-1 components to 8-bit, clamping each
// channel first. NaN channels become 0.
func ColorFromVec3(v math3d.Vec3) Color {
	return RGB(channel(v.X), channel(v.Y), channel(v.Z))
}

func channel(f float64) uint8 {
	switch {
	case math.IsNaN(f), f <= 0:
		return 0
	case f >= 1:
		return 255
	}
	return uint8(math.Round(f * 255))
}

// perChannel applies f to the red, green and blue channels of a and b. The
// result is opaque.
func perChannel(a, b Color, f func(x, y float64) float64) Color {
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(max(0, min(255, f(float64(x), float64(y))))))
	}
	return RGB(ch(a.R, b.R), ch(a.G, b.G), ch(a.B, b.B))
}

func lerpColor(a, b Color, t float64) Color {
	return perChannel(a, b, func(x, y float64) float64 { return x + (y-x)*t })
}

// MultiplyColor scales c by intensity, saturating at 255.
func MultiplyColor(c Color, intensity float64) Color {
	return perChannel(c, c, func(x, _ float64) float64 { return x * intensity })
}

// ModulateColor multiplies a and b channel by channel, treating 255 as 1.
// Textures tint shaded colors with it.
func ModulateColor(a, b Color) Color {
	return perChannel(a, b, func(x, y float64) float64 { return x * y / 255 })
}
