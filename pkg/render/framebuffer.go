// Package render implements the software rasterization pipeline: camera,
// frustum culling, vertex processing, triangle and line rasterization with a
// z-buffer, shading and the packed-RGB framebuffer handed to a display.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Framebuffer is a row-major, top-to-bottom grid of packed 0x00RRGGBB
// pixels. It implements draw.Image so it can be encoded or drawn on by
// image/draw and font packages.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []uint32
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]uint32, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c Color) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = Pack(c)
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// CopyFrom copies src's pixels. Both buffers must have the same size.
func (fb *Framebuffer) CopyFrom(src *Framebuffer) {
	copy(fb.Pixels, src.Pixels)
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = Pack(c)
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return Color{}
	}
	return Unpack(fb.Pixels[y*fb.Width+x])
}

// ColorModel implements image.Image.
func (fb *Framebuffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds implements image.Image.
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// At implements image.Image.
func (fb *Framebuffer) At(x, y int) color.Color {
	return fb.GetPixel(x, y)
}

// Set implements draw.Image. Alpha is discarded.
func (fb *Framebuffer) Set(x, y int, c color.Color) {
	rgba, _ := color.RGBAModel.Convert(c).(color.RGBA)
	fb.SetPixel(x, y, rgba)
}

// DrawLine draws a line from (x0, y0) to (x1, y1), both ends included.
//
// Horizontal and vertical lines are filled directly. Other lines use a DDA:
// the major axis (the larger of |dx| and |dy|) is stepped one pixel at a time
// and the minor coordinate is interpolated in floating point and rounded. This
// is not Bresenham and may differ from integer rasterizers by one pixel on
// the minor axis. Only the on-screen span of the major axis is walked.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color) {
	switch {
	case y0 == y1:
		lo, hi := max(min(x0, x1), 0), min(max(x0, x1), fb.Width-1)
		for x := lo; x <= hi; x++ {
			fb.SetPixel(x, y0, c)
		}
		return
	case x0 == x1:
		lo, hi := max(min(y0, y1), 0), min(max(y0, y1), fb.Height-1)
		for y := lo; y <= hi; y++ {
			fb.SetPixel(x0, y, c)
		}
		return
	}

	dx := float64(x1 - x0)
	dy := float64(y1 - y0)
	if math.Abs(dx) >= math.Abs(dy) {
		slope := dy / dx
		lo, hi := max(min(x0, x1), 0), min(max(x0, x1), fb.Width-1)
		for x := lo; x <= hi; x++ {
			y := float64(y0) + slope*float64(x-x0)
			fb.SetPixel(x, int(math.Round(y)), c)
		}
		return
	}

	slope := dx / dy
	lo, hi := max(min(y0, y1), 0), min(max(y0, y1), fb.Height-1)
	for y := lo; y <= hi; y++ {
		x := float64(x0) + slope*float64(y-y0)
		fb.SetPixel(int(math.Round(x)), y, c)
	}
}

// DrawRect draws a filled rectangle.
func (fb *Framebuffer) DrawRect(x, y, w, h int, c Color) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			fb.SetPixel(px, py, c)
		}
	}
}

// DrawRectOutline draws a rectangle outline.
func (fb *Framebuffer) DrawRectOutline(x, y, w, h int, c Color) {
	fb.DrawLine(x, y, x+w-1, y, c)
	fb.DrawLine(x, y+h-1, x+w-1, y+h-1, c)
	fb.DrawLine(x, y, x, y+h-1, c)
	fb.DrawLine(x+w-1, y, x+w-1, y+h-1, c)
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for i, p := range fb.Pixels {
		img.Pix[i*4+0] = uint8(p >> 16)
		img.Pix[i*4+1] = uint8(p >> 8)
		img.Pix[i*4+2] = uint8(p)
		img.Pix[i*4+3] = 255
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	return f.Close()
}
