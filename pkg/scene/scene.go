package scene

import (
	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/render"
)

// Scene bundles a graph with what is needed to light and view it.
type Scene struct {
	Graph     *Graph
	Camera    *render.Camera
	Lights    []render.Light
	Materials []render.Material

	batch render.Batch
	spans map[*models.Mesh]span
}

// span locates one mesh's geometry inside the batch.
type span struct {
	firstVertex, vertexCount int
	firstIndex, indexCount   int
	bounds                   render.AABB
}

// New creates a scene with an empty graph, the default material and no
// lights.
func New(cam *render.Camera) *Scene {
	return &Scene{
		Graph:     NewGraph(),
		Camera:    cam,
		Materials: []render.Material{render.DefaultMaterial()},
		spans:     make(map[*models.Mesh]span),
	}
}

// AddMaterial appends m and returns its id.
func (s *Scene) AddMaterial(m render.Material) int {
	s.Materials = append(s.Materials, m)
	return len(s.Materials) - 1
}

// AddLight appends a light.
func (s *Scene) AddLight(l render.Light) {
	s.Lights = append(s.Lights, l)
}

// Collect walks the graph and rebuilds the batch: every distinct mesh is
// uploaded once and each node carrying it gets its own draw command with the
// node's world transform. Subtrees are visited parents first. Nodes with a
// negative material id use material 0. The returned batch is reused by the
// next call.
func (s *Scene) Collect() *render.Batch {
	s.batch.Reset()
	if s.spans == nil {
		s.spans = make(map[*models.Mesh]span)
	}
	clear(s.spans)

	s.Graph.Walk(func(id NodeID, _ int) bool {
		n := &s.Graph.nodes[id]
		if n.mesh == nil || len(n.mesh.Faces) == 0 {
			return true
		}
		sp, ok := s.spans[n.mesh]
		if !ok {
			sp = s.upload(n.mesh)
			s.spans[n.mesh] = sp
		}
		world, _ := s.Graph.World(id)
		bounds := sp.bounds
		s.batch.Commands = append(s.batch.Commands, render.DrawCommand{
			FirstVertex: sp.firstVertex,
			VertexCount: sp.vertexCount,
			FirstIndex:  sp.firstIndex,
			IndexCount:  sp.indexCount,
			MaterialID:  max(n.material, 0),
			Transform:   world,
			Bounds:      &bounds,
		})
		return true
	})
	return &s.batch
}

func (s *Scene) upload(m *models.Mesh) span {
	// Bounds come from the vertices themselves; Mesh.BoundsMin/Max is only
	// current after Build or CalculateBounds.
	var bounds render.AABB
	vertices := make([]render.Vertex, len(m.Vertices))
	for i, v := range m.Vertices {
		vertices[i] = render.Vertex{Position: v.Position, Normal: v.Normal, Color: v.Color, UV: v.UV}
		if i == 0 {
			bounds = render.NewAABB(v.Position, v.Position)
			continue
		}
		bounds.Min = bounds.Min.Min(v.Position)
		bounds.Max = bounds.Max.Max(v.Position)
	}
	indices := make([]int, 0, len(m.Faces)*3)
	for _, f := range m.Faces {
		indices = append(indices, f.V[0], f.V[1], f.V[2])
	}
	fv, fi := s.batch.AppendGeometry(vertices, indices)
	return span{
		firstVertex: fv,
		vertexCount: len(vertices),
		firstIndex:  fi,
		indexCount:  len(indices),
		bounds:      bounds,
	}
}

// Frame collects the scene into a frame ready for render.Renderer.Render.
func (s *Scene) Frame(hud ...string) render.Frame {
	return render.Frame{
		Camera:    s.Camera,
		Batch:     s.Collect(),
		Materials: s.Materials,
		Lights:    s.Lights,
		HUD:       hud,
	}
}

// ImportMaterials converts the materials carried by an imported mesh,
// appending them to the scene and returning the id of the first one. It
// returns -1 if the mesh has none.
func (s *Scene) ImportMaterials(m *models.Mesh) int {
	if len(m.Materials) == 0 {
		return -1
	}
	first := len(s.Materials)
	for _, mm := range m.Materials {
		mat := render.DefaultMaterial()
		mat.Name = mm.Name
		mat.Base = math3d.V3(mm.BaseColor[0], mm.BaseColor[1], mm.BaseColor[2])
		s.Materials = append(s.Materials, mat)
	}
	return first
}
