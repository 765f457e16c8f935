package render

import (
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

func TestPackUnpack(t *testing.T) {
	c := RGB(0x12, 0x34, 0x56)
	if got := Pack(c); got != 0x123456 {
		t.Errorf("Pack() = %#x, want 0x123456", got)
	}
	if got := Unpack(0xabcdef); got != RGB(0xab, 0xcd, 0xef) {
		t.Errorf("Unpack() = %v", got)
	}
	// Alpha is not stored
	if got := Pack(color.RGBA{1, 2, 3, 0}); got != 0x010203 {
		t.Errorf("Pack() with zero alpha = %#x", got)
	}
}

func TestColorFromVec3(t *testing.T) {
	tests := []struct {
		name string
		in   math3d.Vec3
		want Color
	}{
		{"black", math3d.V3(0, 0, 0), ColorBlack},
		{"white", math3d.V3(1, 1, 1), ColorWhite},
		{"clamped", math3d.V3(-2, 7, 0.5), RGB(0, 255, 128)},
		{"nan", math3d.V3(math.NaN(), 1, math.Inf(1)), RGB(0, 255, 255)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ColorFromVec3(tc.in); got != tc.want {
				t.Errorf("ColorFromVec3(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFramebufferClear(t *testing.T) {
	fb := NewFramebuffer(7, 5)
	fb.Clear(ColorSky)
	for i, p := range fb.Pixels {
		if p != Pack(ColorSky) {
			t.Fatalf("pixel %d = %#x after Clear", i, p)
		}
	}
}

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(0, 4, ColorRed)
	for _, p := range fb.Pixels {
		if p != 0 {
			t.Fatal("out of bounds SetPixel wrote to the buffer")
		}
	}
	if got := fb.GetPixel(10, 10); got != (Color{}) {
		t.Errorf("GetPixel out of bounds = %v, want zero", got)
	}
}

func TestFramebufferDrawImage(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Set(1, 2, color.Gray{Y: 200})

	if got := fb.GetPixel(1, 2); got != RGB(200, 200, 200) {
		t.Errorf("pixel after Set = %v, want gray 200", got)
	}
	r, g, b, _ := fb.At(1, 2).RGBA()
	if r>>8 != 200 || g>>8 != 200 || b>>8 != 200 {
		t.Errorf("At() = %v %v %v", r>>8, g>>8, b>>8)
	}
	if fb.Bounds().Dx() != 4 || fb.Bounds().Dy() != 4 {
		t.Errorf("Bounds() = %v", fb.Bounds())
	}
}

func TestDrawLine(t *testing.T) {
	type pt struct{ x, y int }

	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		want           []pt
	}{
		{"shallow", 0, 0, 4, 2, []pt{{0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}}},
		{"shallow reversed", 4, 2, 0, 0, []pt{{0, 0}, {1, 1}, {2, 1}, {3, 2}, {4, 2}}},
		{"steep", 0, 0, 1, 3, []pt{{0, 0}, {0, 1}, {1, 2}, {1, 3}}},
		{"horizontal", 1, 3, 4, 3, []pt{{1, 3}, {2, 3}, {3, 3}, {4, 3}}},
		{"vertical", 2, 5, 2, 3, []pt{{2, 3}, {2, 4}, {2, 5}}},
		{"single point", 6, 6, 6, 6, []pt{{6, 6}}},
		{"offscreen endpoints", -10, 5, 20, 5, []pt{{0, 5}, {1, 5}, {2, 5}, {3, 5}, {4, 5}, {5, 5}, {6, 5}, {7, 5}}},
		{"fully offscreen", -10, -10, -2, -3, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFramebuffer(8, 8)
			fb.DrawLine(tc.x0, tc.y0, tc.x1, tc.y1, ColorWhite)

			want := make(map[pt]bool)
			for _, p := range tc.want {
				want[p] = true
			}
			for y := range 8 {
				for x := range 8 {
					lit := fb.GetPixel(x, y) == ColorWhite
					if lit != want[pt{x, y}] {
						t.Errorf("pixel (%d,%d) lit = %v, want %v", x, y, lit, want[pt{x, y}])
					}
				}
			}
		})
	}
}

func TestDrawLineHugeCoordinates(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	// Only the on-screen span is walked
	fb.DrawLine(-1<<20, 0, 1<<20, 1, ColorWhite)

	lit := 0
	for _, p := range fb.Pixels {
		if p != 0 {
			lit++
		}
	}
	if lit != 8 {
		t.Errorf("%d pixels lit, want 8", lit)
	}
}

func TestSavePNG(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(ColorBlue)
	fb.SetPixel(2, 1, ColorYellow)

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := fb.SavePNG(path); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("image size = %v", img.Bounds())
	}
	if got := color.RGBAModel.Convert(img.At(2, 1)); got != ColorYellow {
		t.Errorf("pixel (2,1) = %v, want yellow", got)
	}
	if got := color.RGBAModel.Convert(img.At(0, 0)); got != ColorBlue {
		t.Errorf("pixel (0,0) = %v, want blue", got)
	}
}

func TestDrawText(t *testing.T) {
	fb := NewFramebuffer(64, 16)
	DrawText(fb, 2, 2, "hud", ColorWhite)

	lit := 0
	for _, p := range fb.Pixels {
		if p == Pack(ColorWhite) {
			lit++
		}
	}
	if lit == 0 {
		t.Error("DrawText() drew nothing")
	}
	if w := TextWidth("hud"); w != 21 {
		t.Errorf("TextWidth() = %d, want 21", w)
	}
}

func TestCheckerTexture(t *testing.T) {
	tex := NewCheckerTexture(4, 4, 2, ColorWhite, ColorBlack)

	tests := []struct {
		name string
		u, v float64
		want Color
	}{
		// V is flipped: v near 1 samples the top row
		{"top left", 0.1, 0.9, ColorWhite},
		{"top right", 0.9, 0.9, ColorBlack},
		{"bottom left", 0.1, 0.1, ColorBlack},
		{"wraps", 1.1, 0.9, ColorWhite},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tex.Sample(tc.u, tc.v); got != tc.want {
				t.Errorf("Sample(%v, %v) = %v, want %v", tc.u, tc.v, got, tc.want)
			}
		})
	}
}

func BenchmarkFramebufferClear(b *testing.B) {
	fb := NewFramebuffer(320, 180)
	for b.Loop() {
		fb.Clear(ColorSky)
	}
}
