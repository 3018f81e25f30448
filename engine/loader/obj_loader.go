package loader

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
)

// objLoader is the FormatLoader for Wavefront OBJ files.
// Materials (mtllib, usemtl) and free-form geometry are ignored.
type objLoader struct {
	extensionMatcher
}

var _ FormatLoader = &objLoader{}

// NewOBJLoader creates the Wavefront OBJ FormatLoader.
//
// Returns:
//   - FormatLoader: the OBJ loader
func NewOBJLoader() FormatLoader {
	return &objLoader{extensionMatcher: extensionMatcher{".obj"}}
}

func (l *objLoader) Name() string { return "Wavefront OBJ" }

func (l *objLoader) Load(path string) (mesh.MeshData, error) {
	all, err := l.LoadAll(path)
	if err != nil {
		return mesh.MeshData{}, err
	}
	return Merge(stem(path), all), nil
}

// LoadAll returns one MeshData per "o" or "g" group that has faces.
func (l *objLoader) LoadAll(path string) ([]mesh.MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st := objState{name: stem(path)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if err := st.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	st.flush()

	if len(st.out) == 0 {
		return nil, fmt.Errorf("no faces found")
	}
	return st.out, nil
}

// objVertexKey identifies a unique position/uv/normal combination; -1 means absent.
type objVertexKey struct {
	p, t, n int
}

type objState struct {
	positions []common.Vec3
	normals   []common.Vec3
	uvs       []common.Vec2

	name  string
	cur   mesh.MeshData
	dedup map[objVertexKey]uint32
	out   []mesh.MeshData
}

func (s *objState) parseLine(text string) error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("v: %w", err)
		}
		s.positions = append(s.positions, common.Vec3{v[0], v[1], v[2]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return fmt.Errorf("vn: %w", err)
		}
		s.normals = append(s.normals, common.Vec3{v[0], v[1], v[2]}.Normalize())
	case "vt":
		v, err := parseFloats(fields[1:], 1)
		if err != nil {
			return fmt.Errorf("vt: %w", err)
		}
		uv := common.Vec2{v[0], 0}
		if len(v) > 1 {
			uv[1] = v[1]
		}
		s.uvs = append(s.uvs, uv)
	case "f":
		return s.parseFace(fields[1:])
	case "o", "g":
		s.flush()
		if len(fields) > 1 {
			s.name = strings.Join(fields[1:], " ")
		}
	}
	return nil
}

// parseFace adds a polygon as a triangle fan around its first vertex.
func (s *objState) parseFace(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("f: face needs at least 3 vertices, got %d", len(refs))
	}
	idx := make([]uint32, len(refs))
	for i, ref := range refs {
		key, err := s.resolve(ref)
		if err != nil {
			return fmt.Errorf("f: %w", err)
		}
		idx[i] = s.vertex(key)
	}
	for i := 1; i+1 < len(idx); i++ {
		s.cur.Indices = append(s.cur.Indices, idx[0], idx[i], idx[i+1])
	}
	return nil
}

// resolve parses v, v/vt, v//vn or v/vt/vn into zero-based indices.
func (s *objState) resolve(ref string) (objVertexKey, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objVertexKey{}, fmt.Errorf("malformed vertex %q", ref)
	}
	key := objVertexKey{p: -1, t: -1, n: -1}

	var err error
	if key.p, err = objIndex(parts[0], len(s.positions)); err != nil {
		return key, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if key.t, err = objIndex(parts[1], len(s.uvs)); err != nil {
			return key, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if key.n, err = objIndex(parts[2], len(s.normals)); err != nil {
			return key, err
		}
	}
	return key, nil
}

// objIndex converts a 1-based or negative (relative) OBJ index into a zero-based one.
func objIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad index %q", s)
	}
	switch {
	case i > 0:
		i--
	case i < 0:
		i += count
	default:
		return 0, fmt.Errorf("index 0 is not valid")
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("index %s out of range (%d defined)", s, count)
	}
	return i, nil
}

func (s *objState) vertex(key objVertexKey) uint32 {
	if s.dedup == nil {
		s.dedup = make(map[objVertexKey]uint32)
	}
	if idx, ok := s.dedup[key]; ok {
		return idx
	}
	normal := common.Vec3{0, 1, 0}
	if key.n >= 0 {
		normal = s.normals[key.n]
	}
	var uv common.Vec2
	if key.t >= 0 {
		uv = s.uvs[key.t]
	}
	idx := s.cur.AppendVertex(s.positions[key.p], normal, uv)
	s.dedup[key] = idx
	return idx
}

// flush closes the current group, keeping it only if it produced faces.
func (s *objState) flush() {
	if len(s.cur.Indices) > 0 {
		s.cur.Name = s.name
		s.out = append(s.out, s.cur)
	}
	s.cur = mesh.MeshData{}
	s.dedup = nil
}

// parseFloats parses at least want floats from fields, ignoring any beyond four.
func parseFloats(fields []string, want int) ([]float32, error) {
	if len(fields) < want {
		return nil, fmt.Errorf("want %d components, got %d", want, len(fields))
	}
	if len(fields) > 4 {
		fields = fields[:4]
	}
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}
