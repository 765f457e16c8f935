package models

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/scanline/pkg/math3d"
)

// writeTriangleGLTF writes a one-triangle .gltf with an embedded buffer:
// three float32 positions followed by three uint16 indices.
func writeTriangleGLTF(t *testing.T, withIndices bool) string {
	t.Helper()

	var buf bytes.Buffer
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}} {
		must(t, binary.Write(&buf, binary.LittleEndian, p))
	}
	must(t, binary.Write(&buf, binary.LittleEndian, [3]uint16{0, 1, 2}))
	data := base64.StdEncoding.EncodeToString(buf.Bytes())

	indices := ""
	if withIndices {
		indices = `, "indices": 1`
	}
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "buffers": [{"byteLength": %d, "uri": "data:application/octet-stream;base64,%s"}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 36},
    {"buffer": 0, "byteOffset": 36, "byteLength": 6}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]},
    {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
  ],
  "materials": [{"name": "paint", "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1]}}],
  "meshes": [{"name": "tri", "primitives": [{"attributes": {"POSITION": 0}, "material": 0, "mode": 4%s}]}]
}`, buf.Len(), data, indices)

	path := filepath.Join(t.TempDir(), "tri.gltf")
	must(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func TestGLTFLoad(t *testing.T) {
	for _, indexed := range []bool{true, false} {
		t.Run(fmt.Sprintf("indexed=%v", indexed), func(t *testing.T) {
			m, err := LoadGLB(writeTriangleGLTF(t, indexed))
			if err != nil {
				t.Fatal(err)
			}
			if m.VertexCount() != 3 || m.TriangleCount() != 1 {
				t.Fatalf("got %d vertices, %d triangles", m.VertexCount(), m.TriangleCount())
			}
			if m.Faces[0].V != [3]int{0, 1, 2} || m.Faces[0].Material != 0 {
				t.Errorf("face = %+v", m.Faces[0])
			}
			if len(m.Materials) != 1 || m.Materials[0].BaseColor != [4]float64{1, 0, 0, 1} {
				t.Errorf("materials = %+v", m.Materials)
			}
			// No NORMAL attribute, so normals are derived from the winding.
			for i, v := range m.Vertices {
				if !v.Normal.ApproxEqual(math3d.V3(0, 0, 1), 1e-9) {
					t.Errorf("vertex %d normal = %v", i, v.Normal)
				}
			}
			if m.BoundsMax != math3d.V3(1, 1, 0) {
				t.Errorf("bounds max = %v", m.BoundsMax)
			}
		})
	}
}

func TestGLTFLoadErrors(t *testing.T) {
	if _, err := LoadGLB("/nonexistent/path.glb"); err == nil {
		t.Error("missing file should fail")
	}

	empty := filepath.Join(t.TempDir(), "empty.gltf")
	must(t, os.WriteFile(empty, []byte(`{"asset": {"version": "2.0"}}`), 0o644))
	if _, err := LoadGLB(empty); err == nil {
		t.Error("document without triangles should fail")
	}
}
