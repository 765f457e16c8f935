package engine

import (
	"fmt"

	"github.com/taigrr/scanline/pkg/math3d"
	"github.com/taigrr/scanline/pkg/models"
	"github.com/taigrr/scanline/pkg/render"
	"github.com/taigrr/scanline/pkg/scene"
)

var segmentColors = []math3d.Vec3{
	math3d.V3(0, 1, 0.8),
	math3d.V3(0.78, 0.42, 0),
	math3d.V3(0.78, 0, 0.6),
}

// DemoScene builds a chain of linked spheres, each a child of the previous
// one and offset 2.5 units along X, lit by one white light. It returns the
// scene and the first sphere, which is the natural focus node.
func DemoScene(segments int) (*scene.Scene, scene.NodeID, error) {
	sc := scene.New(nil)
	sc.AddLight(render.Light{
		Position:  math3d.V3(0, 5, -5),
		Color:     math3d.V3(1, 1, 1),
		Intensity: 1,
	})

	ball := models.NewSphere(1, 12, 24)
	g := sc.Graph
	parent := scene.NoNode
	first := scene.NoNode
	for i := range max(segments, 1) {
		mat := render.DefaultMaterial()
		mat.Name = ball.Name
		mat.Base = segmentColors[i%len(segmentColors)]

		id := g.NewNode("segment")
		if err := g.SetMesh(id, ball, sc.AddMaterial(mat)); err != nil {
			return nil, scene.NoNode, fmt.Errorf("segment %d: %w", i, err)
		}
		if parent == scene.NoNode {
			first, parent = id, id
			continue
		}
		if err := g.SetPosition(id, math3d.V3(2.5, 0, 0)); err != nil {
			return nil, scene.NoNode, fmt.Errorf("segment %d: %w", i, err)
		}
		if err := g.AddChild(parent, id); err != nil {
			return nil, scene.NoNode, fmt.Errorf("segment %d: %w", i, err)
		}
		parent = id
	}
	return sc, first, nil
}

// MeshScene places m at the origin, scaled to fit a 2 unit cube, with the
// same light as DemoScene. Materials carried by m become scene materials and
// the first one is used for the node.
func MeshScene(m *models.Mesh) (*scene.Scene, scene.NodeID, error) {
	sc := scene.New(nil)
	sc.AddLight(render.Light{
		Position:  math3d.V3(0, 5, -5),
		Color:     math3d.V3(1, 1, 1),
		Intensity: 1,
	})

	m.Normalize(2)
	mat := sc.ImportMaterials(m)
	if mat < 0 {
		mat = 0
	}
	id := sc.Graph.NewNode(m.Name)
	if err := sc.Graph.SetMesh(id, m, mat); err != nil {
		return nil, scene.NoNode, fmt.Errorf("mesh %q: %w", m.Name, err)
	}
	return sc, id, nil
}
