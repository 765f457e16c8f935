package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/taigrr/scanline/pkg/math3d"
)

// ErrMalformedOBJ is returned for OBJ input that cannot be parsed.
var ErrMalformedOBJ = errors.New("models: malformed OBJ")

// LoadOBJ parses a Wavefront .obj file.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	return ParseOBJ(filepath.Base(path), f)
}

// ParseOBJ reads OBJ text. It understands v, vn, vt, f, usemtl and o/g
// statements. Face corners may be written as v, v/t, v//n or v/t/n with
// 1-based or negative (relative) indices; polygons are fan-triangulated
// from their first corner.
func ParseOBJ(name string, r io.Reader) (*Mesh, error) {
	var (
		positions []math3d.Vec3
		normals   []math3d.Vec3
		uvs       []math3d.Vec2
		vertices  []Vertex
		faces     []Face
		materials []Material
	)
	material := -1
	explicitNormals := false
	corners := make(map[cornerKey]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "v":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", lineNo, err)
			}
			positions = append(positions, math3d.V3(v[0], v[1], v[2]))
		case "vn":
			v, err := parseFloats(parts[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: normal: %w", lineNo, err)
			}
			normals = append(normals, math3d.V3(v[0], v[1], v[2]).Normalize())
		case "vt":
			v, err := parseFloats(parts[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: texcoord: %w", lineNo, err)
			}
			uvs = append(uvs, math3d.V2(v[0], v[1]))
		case "f":
			if len(parts) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 corners: %w", lineNo, ErrMalformedOBJ)
			}
			face := make([]int, 0, len(parts)-1)
			for _, corner := range parts[1:] {
				v, key, err := parseCorner(corner, positions, normals, uvs)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				if idx, ok := corners[key]; ok {
					face = append(face, idx)
					continue
				}
				explicitNormals = explicitNormals || key.normal >= 0
				corners[key] = len(vertices)
				face = append(face, len(vertices))
				vertices = append(vertices, v)
			}

			// Fan triangulation
			for i := 2; i < len(face); i++ {
				faces = append(faces, Face{V: [3]int{face[0], face[i-1], face[i]}, Material: material})
			}
		case "usemtl":
			if len(parts) < 2 {
				continue
			}
			material = materialIndex(&materials, parts[1])
		case "o", "g":
			if len(parts) > 1 && len(faces) == 0 {
				name = parts[1]
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	if len(faces) == 0 {
		return nil, fmt.Errorf("no faces: %w", ErrMalformedOBJ)
	}

	mesh, err := Build(name, vertices, faces)
	if err != nil {
		return nil, err
	}
	mesh.Materials = materials
	if explicitNormals && !allNormalsSet(mesh) {
		mesh.CalculateVertexNormals()
	}
	return mesh, nil
}

// cornerKey identifies a face corner by its resolved 0-based position,
// texcoord and normal indices, -1 when absent. Relative indices point at
// different data as the file grows, so the text of a corner is not a key.
type cornerKey struct {
	position, uv, normal int
}

// parseCorner resolves one "v/vt/vn" face corner.
func parseCorner(corner string, positions, normals []math3d.Vec3, uvs []math3d.Vec2) (Vertex, cornerKey, error) {
	fields := strings.Split(corner, "/")
	v := Vertex{Color: white}
	key := cornerKey{uv: -1, normal: -1}

	var err error
	if key.position, err = resolveIndex(fields[0], len(positions)); err != nil {
		return v, key, fmt.Errorf("corner %q position: %w", corner, err)
	}
	v.Position = positions[key.position]

	if len(fields) > 1 && fields[1] != "" {
		if key.uv, err = resolveIndex(fields[1], len(uvs)); err != nil {
			return v, key, fmt.Errorf("corner %q texcoord: %w", corner, err)
		}
		v.UV = uvs[key.uv]
	}

	if len(fields) > 2 && fields[2] != "" {
		if key.normal, err = resolveIndex(fields[2], len(normals)); err != nil {
			return v, key, fmt.Errorf("corner %q normal: %w", corner, err)
		}
		v.Normal = normals[key.normal]
	}
	return v, key, nil
}

// resolveIndex converts a 1-based or negative OBJ index into a 0-based one.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", s, ErrMalformedOBJ)
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("index %d of %d: %w", i, n, ErrIndexOutOfRange)
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d: %w", n, len(fields), ErrMalformedOBJ)
	}
	out := make([]float64, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", fields[i], ErrMalformedOBJ)
		}
		out[i] = f
	}
	return out, nil
}

// allNormalsSet reports whether every vertex carries a normal. Files that
// mix corners with and without normals get smooth normals everywhere.
func allNormalsSet(m *Mesh) bool {
	for _, v := range m.Vertices {
		if v.Normal.LenSq() < 1e-6 {
			return false
		}
	}
	return true
}

func materialIndex(materials *[]Material, name string) int {
	for i, m := range *materials {
		if m.Name == name {
			return i
		}
	}
	*materials = append(*materials, Material{Name: name, BaseColor: [4]float64{0.8, 0.8, 0.8, 1}})
	return len(*materials) - 1
}
