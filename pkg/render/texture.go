package render

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
)

// WrapMode decides what happens to texel coordinates outside the image.
type WrapMode int

const (
	WrapRepeat WrapMode = iota
	WrapClamp
)

// FilterMode selects how Sample reconstructs between texels.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterBilinear
)

// Texture is an RGB image sampled with normalized UVs. Texels are stored
// packed as 0x00RRGGBB, row 0 at the top.
type Texture struct {
	Width, Height int
	Wrap          WrapMode
	Filter        FilterMode

	texels []uint32
}

// NewTexture creates a black width×height texture.
func NewTexture(width, height int) *Texture {
	return &Texture{
		Width:  width,
		Height: height,
		texels: make([]uint32, width*height),
	}
}

// LoadTexture decodes a PNG or JPEG file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return TextureFromImage(img), nil
}

// TextureFromImage copies img into a new texture. Alpha is dropped.
func TextureFromImage(img image.Image) *Texture {
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	t := NewTexture(b.Dx(), b.Dy())
	for i := range t.texels {
		p := rgba.Pix[i*4 : i*4+3 : i*4+3]
		t.texels[i] = uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
	}
	return t
}

// NewCheckerTexture fills a width×height texture with cell-sized squares,
// starting with a in the top-left corner.
func NewCheckerTexture(width, height, cell int, a, b Color) *Texture {
	t := NewTexture(width, height)
	cell = max(cell, 1)
	pa, pb := Pack(a), Pack(b)
	for y := range height {
		row := t.texels[y*width : (y+1)*width]
		for x := range row {
			if (x/cell+y/cell)%2 == 0 {
				row[x] = pa
			} else {
				row[x] = pb
			}
		}
	}
	return t
}

// SetPixel writes one texel. Out-of-range writes are dropped.
func (t *Texture) SetPixel(x, y int, c Color) {
	if uint(x) < uint(t.Width) && uint(y) < uint(t.Height) {
		t.texels[y*t.Width+x] = Pack(c)
	}
}

// GetPixel reads one texel, or black outside the texture.
func (t *Texture) GetPixel(x, y int) Color {
	if uint(x) >= uint(t.Width) || uint(y) >= uint(t.Height) {
		return ColorBlack
	}
	return Unpack(t.texels[y*t.Width+x])
}

// Sample looks up the texture at (u, v). v runs bottom to top, so v=1 is
// row 0. Coordinates outside [0, 1] follow the wrap mode.
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return ColorWhite
	}
	x := u * float64(t.Width)
	y := (1 - v) * float64(t.Height)

	if t.Filter == FilterNearest {
		return Unpack(t.texel(int(math.Floor(x)), int(math.Floor(y))))
	}

	// Texel centers sit at +0.5.
	x -= 0.5
	y -= 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	top := lerpColor(Unpack(t.texel(ix, iy)), Unpack(t.texel(ix+1, iy)), fx)
	bottom := lerpColor(Unpack(t.texel(ix, iy+1)), Unpack(t.texel(ix+1, iy+1)), fx)
	return lerpColor(top, bottom, fy)
}

// texel reads a packed texel after wrapping x and y.
func (t *Texture) texel(x, y int) uint32 {
	return t.texels[t.wrap(y, t.Height)*t.Width+t.wrap(x, t.Width)]
}

func (t *Texture) wrap(i, n int) int {
	if t.Wrap == WrapClamp {
		return max(0, min(n-1, i))
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
