package loaders

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/math"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
)

// ModelLoader reads Wavefront OBJ files.
type ModelLoader struct{}

func (ml *ModelLoader) Load(path string) (interface{}, error) {
	f, err := openAsset(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseOBJ(assetName(path), f)
}

type objIndex struct {
	position, uv, normal int
}

// ParseOBJ builds an indexed mesh. Polygons are fanned into triangles and
// identical vertices are shared. Vertices without a color are white; if the
// file has no normals they are generated from the faces.
func ParseOBJ(name string, r io.Reader) (*metadata.MeshData, error) {
	var (
		positions []mgl32.Vec3
		colors    []mgl32.Vec3
		normals   []mgl32.Vec3
		uvs       []mgl32.Vec2
	)
	mesh := &metadata.MeshData{Name: name}
	unique := make(map[metadata.MeshVertex]uint32)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			values, err := parseFloats(fields[1:])
			if err != nil || (len(values) != 3 && len(values) != 4 && len(values) != 6) {
				return nil, invalid(name, "line %d: bad vertex %q", lineNo, line)
			}
			positions = append(positions, mgl32.Vec3{values[0], values[1], values[2]})
			color := mgl32.Vec3{1, 1, 1}
			if len(values) == 6 {
				color = mgl32.Vec3{values[3], values[4], values[5]}
			}
			colors = append(colors, color)
		case "vn":
			values, err := parseFloats(fields[1:])
			if err != nil || len(values) != 3 {
				return nil, invalid(name, "line %d: bad normal %q", lineNo, line)
			}
			normals = append(normals, mgl32.Vec3{values[0], values[1], values[2]})
		case "vt":
			values, err := parseFloats(fields[1:])
			if err != nil || len(values) < 2 {
				return nil, invalid(name, "line %d: bad texture coordinate %q", lineNo, line)
			}
			uvs = append(uvs, mgl32.Vec2{values[0], values[1]})
		case "f":
			if len(fields) < 4 {
				return nil, invalid(name, "line %d: face needs at least 3 vertices", lineNo)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				idx, err := parseFaceIndex(ref, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, invalid(name, "line %d: %s", lineNo, err)
				}
				v := metadata.MeshVertex{
					Position: positions[idx.position],
					Color:    colors[idx.position],
				}
				if idx.uv >= 0 {
					v.UV = uvs[idx.uv]
				}
				if idx.normal >= 0 {
					v.Normal = normals[idx.normal]
				}
				index, ok := unique[v]
				if !ok {
					index = uint32(len(mesh.Vertices))
					unique[v] = index
					mesh.Vertices = append(mesh.Vertices, v)
				}
				corners = append(corners, index)
			}
			for i := 1; i+1 < len(corners); i++ {
				mesh.Indices = append(mesh.Indices, corners[0], corners[i], corners[i+1])
			}
		default:
			// o, g, s, usemtl, mtllib: materials come from the scene
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mesh.Vertices) < 3 {
		return nil, invalid(name, "mesh has %d vertices, need at least 3", len(mesh.Vertices))
	}

	if len(normals) == 0 {
		generated := math.GenerateNormals(mesh.Positions(), mesh.Indices)
		for i := range mesh.Vertices {
			mesh.Vertices[i].Normal = generated[i]
		}
	}
	core.LogDebug("OBJ %s parsed: %d vertices, %d indices.", name, mesh.VertexCount(), mesh.IndexCount())
	return mesh, nil
}

func parseFloats(fields []string) ([]float32, error) {
	out := make([]float32, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out = append(out, float32(v))
	}
	return out, nil
}

// parseFaceIndex reads v, v/t, v//n or v/t/n. Indices are 1 based, negative
// ones count back from the end. Missing parts are -1.
func parseFaceIndex(ref string, positions, uvs, normals int) (objIndex, error) {
	parts := strings.Split(ref, "/")
	idx := objIndex{position: -1, uv: -1, normal: -1}
	if len(parts) > 3 {
		return idx, errInvalidFaceRef(ref)
	}

	var err error
	if idx.position, err = resolveIndex(parts[0], positions); err != nil || idx.position < 0 {
		return idx, errInvalidFaceRef(ref)
	}
	if len(parts) > 1 && parts[1] != "" {
		if idx.uv, err = resolveIndex(parts[1], uvs); err != nil || idx.uv < 0 {
			return idx, errInvalidFaceRef(ref)
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if idx.normal, err = resolveIndex(parts[2], normals); err != nil || idx.normal < 0 {
			return idx, errInvalidFaceRef(ref)
		}
	}
	return idx, nil
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return -1, err
	}
	switch {
	case i > 0 && i <= count:
		return i - 1, nil
	case i < 0 && -i <= count:
		return count + i, nil
	}
	return -1, nil
}

func errInvalidFaceRef(ref string) error {
	return fmt.Errorf("bad face reference %q", ref)
}
