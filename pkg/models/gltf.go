package models

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/scanline/pkg/math3d"
)

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// RecalculateNormals replaces stored normals with the weighted smooth
	// normals. Files without normals always get computed ones.
	RecalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{}
}

// LoadGLB loads a binary GLTF (.glb) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a GLTF or GLB file and merges every triangle primitive into one
// Mesh. Primitive materials become Mesh.Materials.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	var (
		vertices []Vertex
		faces    []Face
	)
	for _, m := range doc.Meshes {
		vertices, faces, err = l.appendMesh(doc, m, vertices, faces)
		if err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("gltf %s: no triangle primitives", filepath.Base(path))
	}

	mesh, err := Build(filepath.Base(path), vertices, faces)
	if err != nil {
		return nil, err
	}
	mesh.Materials = readMaterials(doc)
	if l.RecalculateNormals {
		mesh.CalculateVertexNormals()
	}
	return mesh, nil
}

// appendMesh extracts geometry from a GLTF mesh.
func (l *GLTFLoader) appendMesh(doc *gltf.Document, m *gltf.Mesh, vertices []Vertex, faces []Face) ([]Vertex, []Face, error) {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Lines, points and strips are not rendered
			continue
		}

		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
		if err != nil {
			return nil, nil, fmt.Errorf("read positions: %w", err)
		}

		var normals [][3]float32
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs [][2]float32
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("read uvs: %w", err)
			}
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		base := len(vertices)
		for i, p := range positions {
			v := Vertex{
				Position: math3d.V3(float64(p[0]), float64(p[1]), float64(p[2])),
				Color:    white,
			}
			if i < len(normals) {
				n := normals[i]
				v.Normal = math3d.V3(float64(n[0]), float64(n[1]), float64(n[2]))
			}
			if i < len(uvs) {
				v.UV = math3d.V2(float64(uvs[i][0]), float64(uvs[i][1]))
			}
			vertices = append(vertices, v)
		}

		// GLTF front faces are counter-clockwise, matching ours.
		if prim.Indices != nil {
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return nil, nil, fmt.Errorf("read indices: %w", err)
			}
			for i := 0; i+2 < len(indices); i += 3 {
				faces = append(faces, Face{
					V: [3]int{
						base + int(indices[i]),
						base + int(indices[i+1]),
						base + int(indices[i+2]),
					},
					Material: material,
				})
			}
		} else {
			for i := 0; i+2 < len(positions); i += 3 {
				faces = append(faces, Face{
					V:        [3]int{base + i, base + i + 1, base + i + 2},
					Material: material,
				})
			}
		}
	}

	return vertices, faces, nil
}

func readMaterials(doc *gltf.Document) []Material {
	materials := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		materials[i] = Material{Name: gm.Name, BaseColor: [4]float64{1, 1, 1, 1}}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			materials[i].BaseColor = pbr.BaseColorFactorOrDefault()
		}
	}
	return materials
}
