package mesh

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
)

var (
	vertexEntryRegex   = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)
)

// ErrNoVertexEntry is returned when a shader source declares no @vertex function.
var ErrNoVertexEntry = errors.New("no @vertex entry point")

// Shader is a compiled WGSL module identified by a key and, for file shaders, a source path.
// A Shader is shared by every scene object drawn with it and is released by its owner.
type Shader struct {
	once          sync.Once
	key           string
	path          string
	source        string
	vertexEntry   string
	fragmentEntry string
	module        Handle
}

// NewShader compiles WGSL source on the device.
//
// Parameters:
//   - device: the device to compile on
//   - key: identity of the shader in the resource cache
//   - source: WGSL source with at least one @vertex function
//
// Returns:
//   - *Shader: the compiled shader
//   - error: a contract violation for sources without a vertex entry point, or a resource creation failure
func NewShader(device Device, key, source string) (*Shader, error) {
	s := &Shader{key: key, source: source}
	cleaned := stripComments(source)
	s.vertexEntry = parseEntryPoint(cleaned, vertexEntryRegex)
	s.fragmentEntry = parseEntryPoint(cleaned, fragmentEntryRegex)
	if s.vertexEntry == "" {
		return nil, common.NewError(common.KindContractViolation, "mesh.NewShader", key, ErrNoVertexEntry)
	}

	module, err := device.CreateShaderModule(key, source)
	if err != nil {
		return nil, common.ResourceError("mesh.NewShader", key, err)
	}
	s.module = module
	return s, nil
}

// LoadShader reads a WGSL file and compiles it. The path doubles as the cache key.
//
// Parameters:
//   - device: the device to compile on
//   - path: path to a .wgsl file
//
// Returns:
//   - *Shader: the compiled shader
//   - error: an import failure if the file cannot be read, or any NewShader error
func LoadShader(device Device, path string) (*Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.ImportError("mesh.LoadShader", path, err)
	}
	s, err := NewShader(device, path, string(data))
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// Key returns the shader's cache key.
func (s *Shader) Key() string { return s.key }

// Path returns the source path, empty for shaders compiled from an in-memory source.
func (s *Shader) Path() string { return s.path }

// Source returns the WGSL source.
func (s *Shader) Source() string { return s.source }

// VertexEntry returns the name of the @vertex function.
func (s *Shader) VertexEntry() string { return s.vertexEntry }

// FragmentEntry returns the name of the @fragment function, or "" if none is declared.
func (s *Shader) FragmentEntry() string { return s.fragmentEntry }

// Module returns the compiled module handle.
func (s *Shader) Module() Handle { return s.module }

// Release frees the shader module. Subsequent calls are no-ops.
func (s *Shader) Release() {
	s.once.Do(func() {
		if s.module != nil {
			s.module.Release()
		}
	})
}

func parseEntryPoint(cleaned string, re *regexp.Regexp) string {
	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// stripComments removes // and nested /* */ comments so annotations inside comments are ignored.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case source[i] == '/' && source[i+1] == '/' && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
