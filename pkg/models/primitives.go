package models

import (
	"math"

	"github.com/taigrr/scanline/pkg/math3d"
)

// white is the default vertex color for primitives.
var white = math3d.V3(1, 1, 1)

// cubeFace describes one side of a cube: its outward normal and two in-plane
// axes with u × v = normal.
type cubeFace struct {
	n, u, v math3d.Vec3
}

var cubeFaces = [6]cubeFace{
	{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},
	{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},
	{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},
	{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},
	{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)},
}

// NewCube returns an axis-aligned cube centered on the origin. Each side has
// its own four vertices so the faces shade flat.
func NewCube(size float64) *Mesh {
	h := size / 2
	m := NewMesh("cube")
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4]math3d.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}

	for _, face := range cubeFaces {
		base := len(m.Vertices)
		for i, c := range corners {
			p := face.n.Add(face.u.Scale(c[0])).Add(face.v.Scale(c[1])).Scale(h)
			m.AddVertex(Vertex{Position: p, Normal: face.n, Color: white, UV: uvs[i]})
		}
		m.Faces = append(m.Faces,
			Face{V: [3]int{base, base + 1, base + 2}, Material: -1},
			Face{V: [3]int{base, base + 2, base + 3}, Material: -1},
		)
	}

	m.BuildAdjacency()
	m.CalculateBounds()
	return m
}

// NewPlane returns a square grid on the XZ plane facing +Y.
func NewPlane(size float64, divisions int) *Mesh {
	divisions = max(divisions, 1)
	m := NewMesh("plane")
	step := size / float64(divisions)
	half := size / 2
	up := math3d.Up()

	for k := 0; k <= divisions; k++ {
		for i := 0; i <= divisions; i++ {
			m.AddVertex(Vertex{
				Position: math3d.V3(-half+float64(i)*step, 0, -half+float64(k)*step),
				Normal:   up,
				Color:    white,
				UV:       math3d.V2(float64(i)/float64(divisions), float64(k)/float64(divisions)),
			})
		}
	}

	row := divisions + 1
	for k := range divisions {
		for i := range divisions {
			a := k*row + i // (x0, z0)
			b := a + 1     // (x1, z0)
			c := a + row   // (x0, z1)
			d := c + 1     // (x1, z1)
			m.Faces = append(m.Faces,
				Face{V: [3]int{c, d, b}, Material: -1},
				Face{V: [3]int{c, b, a}, Material: -1},
			)
		}
	}

	m.BuildAdjacency()
	m.CalculateBounds()
	return m
}

// NewSphere returns a UV sphere with smooth normals.
func NewSphere(radius float64, rings, segments int) *Mesh {
	rings = max(rings, 2)
	segments = max(segments, 3)
	m := NewMesh("sphere")

	for i := 0; i <= rings; i++ {
		theta := math.Pi * float64(i) / float64(rings)
		for j := 0; j <= segments; j++ {
			phi := 2 * math.Pi * float64(j) / float64(segments)
			n := math3d.V3(
				math.Sin(theta)*math.Cos(phi),
				math.Cos(theta),
				math.Sin(theta)*math.Sin(phi),
			)
			m.AddVertex(Vertex{
				Position: n.Scale(radius),
				Normal:   n,
				Color:    white,
				UV:       math3d.V2(float64(j)/float64(segments), float64(i)/float64(rings)),
			})
		}
	}

	row := segments + 1
	for i := range rings {
		for j := range segments {
			a := i*row + j // (i, j)
			b := a + 1     // (i, j+1)
			c := a + row   // (i+1, j)
			d := c + 1     // (i+1, j+1)
			if i != 0 {
				m.Faces = append(m.Faces, Face{V: [3]int{a, b, d}, Material: -1})
			}
			if i != rings-1 {
				m.Faces = append(m.Faces, Face{V: [3]int{a, d, c}, Material: -1})
			}
		}
	}

	m.BuildAdjacency()
	m.CalculateBounds()
	return m
}
