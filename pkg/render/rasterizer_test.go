package render

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

func sv(x, y, z float64, c math3d.Vec3) ScreenVertex {
	return ScreenVertex{X: x, Y: y, Z: z, InvW: 1, Color: c}
}

func TestBarycentricAtVertices(t *testing.T) {
	a, b, c := math3d.V2(1, 1), math3d.V2(9, 2), math3d.V2(4, 8)

	tests := []struct {
		name string
		p    math3d.Vec2
		want math3d.Vec3
	}{
		{"a", a, math3d.V3(1, 0, 0)},
		{"b", b, math3d.V3(0, 1, 0)},
		{"c", c, math3d.V3(0, 0, 1)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, ok := Barycentric(a, b, c, tc.p)
			if !ok {
				t.Fatal("Barycentric() reported degenerate triangle")
			}
			if !w.ApproxEqual(tc.want, 1e-12) {
				t.Errorf("Barycentric() = %v, want %v", w, tc.want)
			}
		})
	}
}

func TestBarycentricSumsToOne(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	a, b, c := math3d.V2(-3, 0), math3d.V2(5, 1), math3d.V2(0, 7)

	for range 200 {
		// Points inside and well outside the triangle
		p := math3d.V2(rng.Float64()*30-15, rng.Float64()*30-15)
		w, ok := Barycentric(a, b, c, p)
		if !ok {
			t.Fatal("Barycentric() reported degenerate triangle")
		}
		if sum := w.X + w.Y + w.Z; math.Abs(sum-1) > 1e-9 {
			t.Fatalf("weights %v at %v sum to %v, want 1", w, p, sum)
		}
		// Reconstruct the point from the weights
		got := a.Scale(w.X).Add(b.Scale(w.Y)).Add(c.Scale(w.Z))
		if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
			t.Fatalf("weights %v rebuild %v, want %v", w, got, p)
		}
	}
}

func TestBarycentricDegenerate(t *testing.T) {
	a, b, c := math3d.V2(0, 0), math3d.V2(1, 1), math3d.V2(2, 2)
	if _, ok := Barycentric(a, b, c, math3d.V2(1, 0)); ok {
		t.Error("collinear triangle should be degenerate")
	}
}

func TestDrawTriangleCoverage(t *testing.T) {
	red := math3d.V3(1, 0, 0)
	tri := [3]ScreenVertex{sv(0, 0, 0.5, red), sv(10, 0, 0.5, red), sv(0, 10, 0.5, red)}

	for _, wind := range []struct {
		name string
		v    [3]ScreenVertex
	}{
		{"ccw", tri},
		{"cw", [3]ScreenVertex{tri[0], tri[2], tri[1]}},
	} {
		t.Run(wind.name, func(t *testing.T) {
			fb := NewFramebuffer(16, 16)
			fb.Clear(ColorBlack)
			r := NewRasterizer(NewZBuffer(16, 16))

			n := r.DrawTriangle(wind.v, 0, nil)
			if n != 55 {
				t.Errorf("DrawTriangle() emitted %d fragments, want 55", n)
			}
			r.Blend(fb)

			// A pixel is covered when its center satisfies x+y <= 10
			for y := range 16 {
				for x := range 16 {
					want := ColorBlack
					if x+y <= 9 {
						want = ColorRed
					}
					if got := fb.GetPixel(x, y); got != want {
						t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
					}
				}
			}
		})
	}
}

func TestDrawTriangleDegenerate(t *testing.T) {
	r := NewRasterizer(NewZBuffer(8, 8))
	c := math3d.V3(1, 1, 1)
	n := r.DrawTriangle([3]ScreenVertex{sv(1, 1, 0, c), sv(4, 4, 0, c), sv(7, 7, 0, c)}, 0, nil)
	if n != 0 {
		t.Errorf("zero-area triangle emitted %d fragments", n)
	}
}

func TestDrawTriangleOffscreen(t *testing.T) {
	r := NewRasterizer(NewZBuffer(8, 8))
	c := math3d.V3(1, 1, 1)
	n := r.DrawTriangle([3]ScreenVertex{sv(20, 20, 0, c), sv(30, 20, 0, c), sv(20, 30, 0, c)}, 0, nil)
	if n != 0 {
		t.Errorf("off-screen triangle emitted %d fragments", n)
	}

	// Covers only x+y <= 0, which no pixel center reaches.
	n = r.DrawTriangle([3]ScreenVertex{sv(-100, -100, 0, c), sv(100, -100, 0, c), sv(-100, 100, 0, c)}, 0, nil)
	if n != 0 {
		t.Errorf("triangle beside the screen emitted %d fragments", n)
	}

	// Partially visible triangles are clipped to the screen
	n = r.DrawTriangle([3]ScreenVertex{sv(-100, -100, 0, c), sv(300, -100, 0, c), sv(-100, 300, 0, c)}, 0, nil)
	if n != 64 {
		t.Errorf("screen-covering triangle emitted %d fragments, want 64", n)
	}
}

// The nearer triangle must win regardless of submission order.
func TestDepthOrderIndependence(t *testing.T) {
	near := func(c math3d.Vec3) [3]ScreenVertex {
		return [3]ScreenVertex{sv(0, 0, 0.2, c), sv(12, 0, 0.2, c), sv(0, 12, 0.2, c)}
	}
	far := func(c math3d.Vec3) [3]ScreenVertex {
		return [3]ScreenVertex{sv(0, 0, 0.5, c), sv(12, 0, 0.5, c), sv(0, 12, 0.5, c)}
	}
	red, blue := math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)

	tests := []struct {
		name  string
		order [][3]ScreenVertex
	}{
		{"near first", [][3]ScreenVertex{near(red), far(blue)}},
		{"far first", [][3]ScreenVertex{far(blue), near(red)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			zbuf := NewZBuffer(12, 12)
			fb := NewFramebuffer(12, 12)
			r := NewRasterizer(zbuf)
			for _, tri := range tc.order {
				r.DrawTriangle(tri, 0, nil)
			}
			r.Blend(fb)

			if got := fb.GetPixel(2, 2); got != ColorRed {
				t.Errorf("pixel (2,2) = %v, want red", got)
			}
			if got := zbuf.At(2, 2); got != 0.2 {
				t.Errorf("depth (2,2) = %v, want 0.2", got)
			}
		})
	}
}

func TestDrawTriangleInterpolatesColor(t *testing.T) {
	zbuf := NewZBuffer(32, 32)
	r := NewRasterizer(zbuf)
	tri := [3]ScreenVertex{
		sv(0, 0, 0, math3d.V3(1, 0, 0)),
		sv(64, 0, 0, math3d.V3(0, 1, 0)),
		sv(0, 64, 0, math3d.V3(0, 0, 1)),
	}
	r.DrawTriangle(tri, 7, nil)

	frags := r.Fragments()
	if len(frags) == 0 {
		t.Fatal("no fragments emitted")
	}
	for _, f := range frags {
		if f.MaterialID != 7 {
			t.Fatalf("fragment material = %d, want 7", f.MaterialID)
		}
	}
	// Near the first vertex red dominates
	first := frags[0]
	if first.X != 0 || first.Y != 0 {
		t.Fatalf("first fragment at (%d,%d), want (0,0)", first.X, first.Y)
	}
	if first.Color.R < 240 || first.Color.G > 10 || first.Color.B > 10 {
		t.Errorf("color near red vertex = %v", first.Color)
	}
}

func TestDrawTriangleTexture(t *testing.T) {
	tex := NewTexture(1, 1)
	tex.SetPixel(0, 0, RGB(0, 255, 0))

	r := NewRasterizer(NewZBuffer(8, 8))
	white := math3d.V3(1, 1, 1)
	r.DrawTriangle([3]ScreenVertex{sv(0, 0, 0, white), sv(16, 0, 0, white), sv(0, 16, 0, white)}, 0, tex)

	for _, f := range r.Fragments() {
		if f.Color != RGB(0, 255, 0) {
			t.Fatalf("textured fragment = %v, want green", f.Color)
		}
	}
}

func TestZBufferTestAndSet(t *testing.T) {
	z := NewZBuffer(4, 4)

	if !z.TestAndSet(1, 1, 0.5) {
		t.Fatal("first write should pass")
	}
	if z.TestAndSet(1, 1, 0.5) {
		t.Error("equal depth should fail the strict test")
	}
	if z.TestAndSet(1, 1, 0.7) {
		t.Error("farther depth should fail")
	}
	if !z.TestAndSet(1, 1, 0.1) {
		t.Error("nearer depth should pass")
	}
	if z.TestAndSet(-1, 0, 0) || z.TestAndSet(4, 0, 0) {
		t.Error("out of bounds writes should fail")
	}

	lo, hi, ok := z.Range()
	if !ok || lo != 0.1 || hi != 0.1 {
		t.Errorf("Range() = %v, %v, %v, want 0.1, 0.1, true", lo, hi, ok)
	}

	z.Clear()
	if !math.IsInf(float64(z.At(1, 1)), 1) {
		t.Errorf("depth after Clear = %v, want +Inf", z.At(1, 1))
	}
	if _, _, ok := z.Range(); ok {
		t.Error("Range() of cleared buffer should report nothing written")
	}
}

func BenchmarkDrawTriangleSmall(b *testing.B) {
	r := NewRasterizer(NewZBuffer(200, 100))
	c := math3d.V3(1, 0.5, 0.25)
	tri := [3]ScreenVertex{sv(10, 10, 0.5, c), sv(30, 10, 0.5, c), sv(20, 30, 0.5, c)}

	for b.Loop() {
		r.zbuf.Clear()
		r.DrawTriangle(tri, 0, nil)
		r.Reset()
	}
}

func BenchmarkDrawTriangleLarge(b *testing.B) {
	r := NewRasterizer(NewZBuffer(200, 100))
	c := math3d.V3(1, 0.5, 0.25)
	tri := [3]ScreenVertex{sv(0, 0, 0.5, c), sv(200, 0, 0.5, c), sv(100, 100, 0.5, c)}

	for b.Loop() {
		r.zbuf.Clear()
		r.DrawTriangle(tri, 0, nil)
		r.Reset()
	}
}
