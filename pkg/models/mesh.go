// Package models provides mesh geometry, built-in primitives and importers
// for OBJ and GLB files.
package models

import (
	"errors"
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
)

// ErrIndexOutOfRange is returned when a triangle references a vertex that is
// not in the vertex buffer.
var ErrIndexOutOfRange = errors.New("models: vertex index out of range")

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3

	// adjacency[v] lists the faces that use vertex v.
	adjacency [][]int
}

// Vertex holds all vertex attributes.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Color    math3d.Vec3 // Linear RGB in 0-1; the zero value renders as white
	UV       math3d.Vec2
}

// Face is one triangle of the index buffer.
type Face struct {
	V        [3]int // Indices into Mesh.Vertices
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the surface description carried by imported files.
type Material struct {
	Name      string
	BaseColor [4]float64 // RGBA in 0-1 range
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]Vertex, 0),
		Faces:    make([]Face, 0),
	}
}

// Build creates a mesh from finished vertex and face buffers. It rejects the
// whole mesh if any face references a missing vertex, then builds adjacency,
// fills in missing normals and computes bounds.
func Build(name string, vertices []Vertex, faces []Face) (*Mesh, error) {
	m := &Mesh{Name: name, Vertices: vertices, Faces: faces}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.BuildAdjacency()
	if !m.hasNormals() {
		m.CalculateVertexNormals()
	}
	m.CalculateBounds()
	return m, nil
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v Vertex) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddTriangle appends a face. Indices must already exist in the vertex
// buffer.
func (m *Mesh) AddTriangle(a, b, c, material int) error {
	for _, idx := range [3]int{a, b, c} {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("triangle (%d, %d, %d): %w", a, b, c, ErrIndexOutOfRange)
		}
	}
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}, Material: material})
	m.adjacency = nil
	return nil
}

// Validate checks that every face index is inside the vertex buffer.
func (m *Mesh) Validate() error {
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, idx := range f.V {
			if idx < 0 || idx >= n {
				return fmt.Errorf("mesh %q face %d index %d (have %d vertices): %w",
					m.Name, i, idx, n, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// BuildAdjacency records, for every vertex, the faces that reference it.
// It is a single pass over the index buffer.
func (m *Mesh) BuildAdjacency() {
	adj := make([][]int, len(m.Vertices))
	for fi, f := range m.Faces {
		for _, v := range f.V {
			adj[v] = append(adj[v], fi)
		}
	}
	m.adjacency = adj
}

// Adjacent returns the faces that use vertex v.
func (m *Mesh) Adjacent(v int) []int {
	if m.adjacency == nil || len(m.adjacency) != len(m.Vertices) {
		m.BuildAdjacency()
	}
	if v < 0 || v >= len(m.adjacency) {
		return nil
	}
	return m.adjacency[v]
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceNormal returns the unit normal of face i using counter-clockwise
// winding.
func (m *Mesh) FaceNormal(i int) math3d.Vec3 {
	f := m.Faces[i]
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}

// CalculateVertexNormals computes smooth normals. Each incident face adds its
// unit normal weighted by the face area and by the angle the face subtends at
// the vertex. Vertices with no usable faces get a zero normal.
func (m *Mesh) CalculateVertexNormals() {
	if m.adjacency == nil || len(m.adjacency) != len(m.Vertices) {
		m.BuildAdjacency()
	}

	for vi := range m.Vertices {
		var sum math3d.Vec3
		p := m.Vertices[vi].Position
		for _, fi := range m.adjacency[vi] {
			f := m.Faces[fi]
			v0 := m.Vertices[f.V[0]].Position
			v1 := m.Vertices[f.V[1]].Position
			v2 := m.Vertices[f.V[2]].Position

			cross := v1.Sub(v0).Cross(v2.Sub(v0))
			area := cross.Len() / 2
			if area == 0 {
				continue
			}

			// The two edges leaving this vertex.
			var e1, e2 math3d.Vec3
			switch vi {
			case f.V[0]:
				e1, e2 = v1.Sub(p), v2.Sub(p)
			case f.V[1]:
				e1, e2 = v2.Sub(p), v0.Sub(p)
			default:
				e1, e2 = v0.Sub(p), v1.Sub(p)
			}
			angle := e1.AngleTo(e2)

			sum = sum.Add(cross.Normalize().Scale(area * angle))
		}
		m.Vertices[vi].Normal = sum.Normalize()
	}
}

// Transform applies a transformation matrix to all vertex positions. Normals
// are recomputed from the new geometry rather than transformed, which keeps
// them correct under non-uniform scale.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulPoint(m.Vertices[i].Position)
	}
	m.CalculateVertexNormals()
	m.CalculateBounds()
}

// Normalize recenters the mesh on the origin and scales it so its largest
// dimension equals size.
func (m *Mesh) Normalize(size float64) {
	m.CalculateBounds()
	dims := m.Size()
	maxDim := max(dims.X, dims.Y, dims.Z)
	if maxDim <= 0 {
		return
	}
	scale := size / maxDim
	m.Transform(math3d.ScaleUniform(scale).Mul(math3d.Translate(m.Center().Negate())))
}

// SetColor paints every vertex with c.
func (m *Mesh) SetColor(c math3d.Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Color = c
	}
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]Vertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetBounds returns the axis-aligned bounding box.
func (m *Mesh) GetBounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

func (m *Mesh) hasNormals() bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}
