package loader

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50
)

// stlLoader is the FormatLoader for binary and ASCII STL files. STL carries no UVs and
// its stored facet normals are unreliable, so every triangle gets its own flat normal.
type stlLoader struct {
	extensionMatcher
}

var _ FormatLoader = &stlLoader{}

// NewSTLLoader creates the STL FormatLoader.
//
// Returns:
//   - FormatLoader: the STL loader
func NewSTLLoader() FormatLoader {
	return &stlLoader{extensionMatcher: extensionMatcher{".stl"}}
}

func (l *stlLoader) Name() string { return "STL" }

func (l *stlLoader) Load(path string) (mesh.MeshData, error) {
	all, err := l.LoadAll(path)
	if err != nil {
		return mesh.MeshData{}, err
	}
	return Merge(stem(path), all), nil
}

// LoadAll returns one MeshData per ASCII solid, or a single mesh for binary files.
func (l *stlLoader) LoadAll(path string) ([]mesh.MeshData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isBinarySTL(data) {
		d, err := parseBinarySTL(data)
		if err != nil {
			return nil, err
		}
		d.Name = stem(path)
		return []mesh.MeshData{d}, nil
	}
	return parseASCIISTL(data, stem(path))
}

// isBinarySTL reports whether data is binary STL. Some exporters write "solid" into binary
// headers, so the triangle count must also match the file size.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	if int64(len(data)) == stlHeaderSize+4+int64(n)*stlTriangleSize {
		return true
	}
	return !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid"))
}

func parseBinarySTL(data []byte) (mesh.MeshData, error) {
	n := int(binary.LittleEndian.Uint32(data[stlHeaderSize:]))
	body := data[stlHeaderSize+4:]
	if n == 0 {
		return mesh.MeshData{}, fmt.Errorf("no facets found")
	}
	if len(body) < n*stlTriangleSize {
		return mesh.MeshData{}, fmt.Errorf("binary STL declares %d triangles but holds %d", n, len(body)/stlTriangleSize)
	}

	var d mesh.MeshData
	readVec := func(b []byte) common.Vec3 {
		return common.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
			math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		}
	}
	for i := 0; i < n; i++ {
		tri := body[i*stlTriangleSize:]
		// the stored facet normal at tri[0:12] is skipped
		addFacet(&d, readVec(tri[12:]), readVec(tri[24:]), readVec(tri[36:]))
	}
	return d, nil
}

func parseASCIISTL(data []byte, fallbackName string) ([]mesh.MeshData, error) {
	var out []mesh.MeshData
	cur := -1
	var verts []common.Vec3

	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "solid":
			name := fallbackName
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			out = append(out, mesh.MeshData{Name: name})
			cur = len(out) - 1
		case "vertex":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex: %w", line, err)
			}
			verts = append(verts, common.Vec3{v[0], v[1], v[2]})
		case "endloop":
			if cur < 0 {
				return nil, fmt.Errorf("line %d: facet outside solid", line)
			}
			if len(verts) != 3 {
				return nil, fmt.Errorf("line %d: facet has %d vertices, want 3", line, len(verts))
			}
			addFacet(&out[cur], verts[0], verts[1], verts[2])
			verts = verts[:0]
		case "endsolid":
			cur = -1
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	kept := out[:0]
	for _, d := range out {
		if len(d.Indices) > 0 {
			kept = append(kept, d)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("no facets found")
	}
	return kept, nil
}

func addFacet(d *mesh.MeshData, a, b, c common.Vec3) {
	n := flatNormal(a, b, c)
	i0 := d.AppendVertex(a, n, common.Vec2{})
	i1 := d.AppendVertex(b, n, common.Vec2{})
	i2 := d.AppendVertex(c, n, common.Vec2{})
	d.Indices = append(d.Indices, i0, i1, i2)
}
