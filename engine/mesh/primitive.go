package mesh

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/chewxy/math32"
)

// PrimitiveKind identifies a generated shape.
type PrimitiveKind int

const (
	PrimitiveCube PrimitiveKind = iota
	PrimitiveSphere
	PrimitivePlane
	PrimitiveCylinder
	PrimitiveTriangle
)

var primitiveNames = map[PrimitiveKind]string{
	PrimitiveCube:     "Cube",
	PrimitiveSphere:   "Sphere",
	PrimitivePlane:    "Plane",
	PrimitiveCylinder: "Cylinder",
	PrimitiveTriangle: "Triangle",
}

func (k PrimitiveKind) String() string {
	if n, ok := primitiveNames[k]; ok {
		return n
	}
	return fmt.Sprintf("PrimitiveKind(%d)", int(k))
}

// ParsePrimitiveKind maps a case-insensitive shape name to its kind.
func ParsePrimitiveKind(s string) (PrimitiveKind, bool) {
	for k, n := range primitiveNames {
		if strings.EqualFold(n, s) {
			return k, true
		}
	}
	return 0, false
}

// MarshalText encodes the kind by name for scene files.
func (k PrimitiveKind) MarshalText() ([]byte, error) {
	if _, ok := primitiveNames[k]; !ok {
		return nil, fmt.Errorf("unknown primitive kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind written by MarshalText.
func (k *PrimitiveKind) UnmarshalText(text []byte) error {
	parsed, ok := ParsePrimitiveKind(string(text))
	if !ok {
		return fmt.Errorf("unknown primitive kind %q", text)
	}
	*k = parsed
	return nil
}

// PrimitiveParams holds the shape parameters for Generate. Zero fields take the defaults of DefaultParams.
type PrimitiveParams struct {
	Size           float32 `yaml:"size,omitempty"`
	Radius         float32 `yaml:"radius,omitempty"`
	RadiusTop      float32 `yaml:"radius_top,omitempty"`
	RadiusBottom   float32 `yaml:"radius_bottom,omitempty"`
	Width          float32 `yaml:"width,omitempty"`
	Depth          float32 `yaml:"depth,omitempty"`
	Height         float32 `yaml:"height,omitempty"`
	Segments       int     `yaml:"segments,omitempty"`
	Rings          int     `yaml:"rings,omitempty"`
	HeightSegments int     `yaml:"height_segments,omitempty"`
}

// DefaultParams returns the parameters the editor uses when a shape is created without arguments.
func DefaultParams(kind PrimitiveKind) PrimitiveParams {
	switch kind {
	case PrimitiveSphere:
		return PrimitiveParams{Radius: 0.5, Segments: 32, Rings: 16}
	case PrimitivePlane:
		return PrimitiveParams{Width: 1, Depth: 1, Segments: 1, Rings: 1}
	case PrimitiveCylinder:
		return PrimitiveParams{RadiusTop: 0.5, RadiusBottom: 0.5, Height: 1, Segments: 32, HeightSegments: 1}
	default:
		return PrimitiveParams{Size: 1}
	}
}

func (p PrimitiveParams) withDefaults(kind PrimitiveKind) PrimitiveParams {
	d := DefaultParams(kind)
	return PrimitiveParams{
		Size:           common.Coalesce(p.Size, d.Size),
		Radius:         common.Coalesce(p.Radius, d.Radius),
		RadiusTop:      common.Coalesce(p.RadiusTop, d.RadiusTop),
		RadiusBottom:   common.Coalesce(p.RadiusBottom, d.RadiusBottom),
		Width:          common.Coalesce(p.Width, d.Width),
		Depth:          common.Coalesce(p.Depth, d.Depth),
		Height:         common.Coalesce(p.Height, d.Height),
		Segments:       common.Coalesce(p.Segments, d.Segments),
		Rings:          common.Coalesce(p.Rings, d.Rings),
		HeightSegments: common.Coalesce(p.HeightSegments, d.HeightSegments),
	}
}

// Signature returns the resource key for a generated primitive. Equal kinds and effective
// parameters produce equal keys, so identical shapes share one GPU mesh.
func Signature(kind PrimitiveKind, params PrimitiveParams) string {
	p := params.withDefaults(kind)
	switch kind {
	case PrimitiveSphere:
		return fmt.Sprintf("primitive:sphere(r=%g,seg=%d,rings=%d)", p.Radius, p.Segments, p.Rings)
	case PrimitivePlane:
		return fmt.Sprintf("primitive:plane(w=%g,d=%g,%dx%d)", p.Width, p.Depth, p.Segments, p.Rings)
	case PrimitiveCylinder:
		return fmt.Sprintf("primitive:cylinder(rt=%g,rb=%g,h=%g,seg=%d,hseg=%d)",
			p.RadiusTop, p.RadiusBottom, p.Height, p.Segments, p.HeightSegments)
	case PrimitiveTriangle:
		return fmt.Sprintf("primitive:triangle(size=%g)", p.Size)
	default:
		return fmt.Sprintf("primitive:cube(size=%g)", p.Size)
	}
}

// Generate builds the mesh data for kind.
//
// Parameters:
//   - kind: the shape to build
//   - params: shape parameters, zero fields take defaults
//
// Returns:
//   - MeshData: the generated mesh
//   - error: a contract violation for unknown kinds or too few segments
func Generate(kind PrimitiveKind, params PrimitiveParams) (MeshData, error) {
	p := params.withDefaults(kind)
	var d MeshData
	switch kind {
	case PrimitiveCube:
		d = Cube(p.Size)
	case PrimitiveSphere:
		if p.Segments < 3 || p.Rings < 2 {
			return MeshData{}, common.ContractError("mesh.Generate", "sphere needs at least 3 segments and 2 rings")
		}
		d = Sphere(p.Radius, p.Segments, p.Rings)
	case PrimitivePlane:
		if p.Segments < 1 || p.Rings < 1 {
			return MeshData{}, common.ContractError("mesh.Generate", "plane needs at least one segment per axis")
		}
		d = Plane(p.Width, p.Depth, p.Segments, p.Rings)
	case PrimitiveCylinder:
		if p.Segments < 3 || p.HeightSegments < 1 {
			return MeshData{}, common.ContractError("mesh.Generate", "cylinder needs at least 3 radial segments and 1 height segment")
		}
		d = Cylinder(p.RadiusTop, p.RadiusBottom, p.Height, p.Segments, p.HeightSegments)
	case PrimitiveTriangle:
		d = Triangle(p.Size)
	default:
		return MeshData{}, common.ContractError("mesh.Generate", "unknown primitive kind %d", int(kind))
	}
	d.Name = kind.String()
	return d, nil
}

type cubeFace struct {
	normal, u, v common.Vec3
}

// u x v == normal for every face, so corners listed (-u-v, +u-v, +u+v, -u+v) wind counter-clockwise
// seen from outside.
var cubeFaces = [6]cubeFace{
	{common.Vec3{0, 0, 1}, common.Vec3{1, 0, 0}, common.Vec3{0, 1, 0}},
	{common.Vec3{0, 0, -1}, common.Vec3{-1, 0, 0}, common.Vec3{0, 1, 0}},
	{common.Vec3{-1, 0, 0}, common.Vec3{0, 0, 1}, common.Vec3{0, 1, 0}},
	{common.Vec3{1, 0, 0}, common.Vec3{0, 0, -1}, common.Vec3{0, 1, 0}},
	{common.Vec3{0, 1, 0}, common.Vec3{1, 0, 0}, common.Vec3{0, 0, -1}},
	{common.Vec3{0, -1, 0}, common.Vec3{1, 0, 0}, common.Vec3{0, 0, 1}},
}

// Cube builds an axis-aligned cube of edge length size centered at the origin: 24 vertices with
// per-face normals and 12 triangles.
func Cube(size float32) MeshData {
	h := size / 2
	var d MeshData
	corners := [4]common.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	uvs := [4]common.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for _, f := range cubeFaces {
		center := f.normal.Scale(h)
		base := uint32(d.VertexCount())
		for i, c := range corners {
			pos := center.Add(f.u.Scale(c[0] * h)).Add(f.v.Scale(c[1] * h))
			d.AppendVertex(pos, f.normal, uvs[i])
		}
		d.Indices = append(d.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return d
}

// Plane builds a grid in the XZ plane facing +Y, centered at the origin.
//
// Parameters:
//   - width: extent along X
//   - depth: extent along Z
//   - widthSegments: grid cells along X
//   - depthSegments: grid cells along Z
func Plane(width, depth float32, widthSegments, depthSegments int) MeshData {
	var d MeshData
	up := common.Vec3{0, 1, 0}
	for z := 0; z <= depthSegments; z++ {
		for x := 0; x <= widthSegments; x++ {
			u := float32(x) / float32(widthSegments)
			v := float32(z) / float32(depthSegments)
			d.AppendVertex(common.Vec3{(u - 0.5) * width, 0, (v - 0.5) * depth}, up, common.Vec2{u, v})
		}
	}
	row := uint32(widthSegments + 1)
	for z := 0; z < depthSegments; z++ {
		for x := 0; x < widthSegments; x++ {
			a := uint32(z)*row + uint32(x)
			b := a + 1
			c := a + row
			e := c + 1
			d.Indices = append(d.Indices, a, c, b, b, c, e)
		}
	}
	return d
}

// Sphere builds a UV sphere centered at the origin. The degenerate triangles at the poles are skipped.
//
// Parameters:
//   - radius: sphere radius
//   - segments: subdivisions around the Y axis
//   - rings: subdivisions from pole to pole
func Sphere(radius float32, segments, rings int) MeshData {
	var d MeshData
	for y := 0; y <= rings; y++ {
		v := float32(y) / float32(rings)
		sinPhi, cosPhi := math32.Sincos(math32.Pi * v)
		for x := 0; x <= segments; x++ {
			u := float32(x) / float32(segments)
			sinTheta, cosTheta := math32.Sincos(2 * math32.Pi * u)
			n := common.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			d.AppendVertex(n.Scale(radius), n, common.Vec2{u, v})
		}
	}
	row := uint32(segments + 1)
	for y := 0; y < rings; y++ {
		for x := 0; x < segments; x++ {
			a := uint32(y)*row + uint32(x)
			b := a + 1
			c := a + row
			e := c + 1
			if y != 0 {
				d.Indices = append(d.Indices, a, b, c)
			}
			if y != rings-1 {
				d.Indices = append(d.Indices, b, e, c)
			}
		}
	}
	return d
}

// Cylinder builds a capped cylinder (or truncated cone) along Y centered at the origin.
// A cap is omitted when its radius is zero.
//
// Parameters:
//   - radiusTop: radius at +height/2
//   - radiusBottom: radius at -height/2
//   - height: extent along Y
//   - radialSegments: subdivisions around the Y axis
//   - heightSegments: subdivisions along Y
func Cylinder(radiusTop, radiusBottom, height float32, radialSegments, heightSegments int) MeshData {
	var d MeshData
	half := height / 2
	// side normals tilt with the cone slope
	slope := (radiusBottom - radiusTop) / height
	for y := 0; y <= heightSegments; y++ {
		v := float32(y) / float32(heightSegments)
		r := radiusBottom + v*(radiusTop-radiusBottom)
		for x := 0; x <= radialSegments; x++ {
			u := float32(x) / float32(radialSegments)
			sinT, cosT := math32.Sincos(2 * math32.Pi * u)
			n := common.Vec3{cosT, slope, sinT}.Normalize()
			d.AppendVertex(common.Vec3{r * cosT, -half + v*height, r * sinT}, n, common.Vec2{u, v})
		}
	}
	row := uint32(radialSegments + 1)
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < radialSegments; x++ {
			a := uint32(y)*row + uint32(x)
			b := a + 1
			c := a + row
			e := c + 1
			d.Indices = append(d.Indices, a, c, b, b, c, e)
		}
	}

	cylinderCap(&d, radiusTop, half, radialSegments, true)
	cylinderCap(&d, radiusBottom, -half, radialSegments, false)
	return d
}

func cylinderCap(d *MeshData, radius, y float32, segments int, top bool) {
	if radius <= 0 {
		return
	}
	n := common.Vec3{0, -1, 0}
	if top {
		n = common.Vec3{0, 1, 0}
	}
	center := d.AppendVertex(common.Vec3{0, y, 0}, n, common.Vec2{0.5, 0.5})
	for x := 0; x <= segments; x++ {
		sinT, cosT := math32.Sincos(2 * math32.Pi * float32(x) / float32(segments))
		d.AppendVertex(common.Vec3{radius * cosT, y, radius * sinT}, n, common.Vec2{0.5 + cosT/2, 0.5 + sinT/2})
	}
	for x := 0; x < segments; x++ {
		a := center + 1 + uint32(x)
		b := a + 1
		if top {
			d.Indices = append(d.Indices, center, b, a)
		} else {
			d.Indices = append(d.Indices, center, a, b)
		}
	}
}

// Triangle builds a single triangle in the XY plane facing +Z.
func Triangle(size float32) MeshData {
	h := size / 2
	var d MeshData
	n := common.Vec3{0, 0, 1}
	d.AppendVertex(common.Vec3{0, h, 0}, n, common.Vec2{0.5, 1})
	d.AppendVertex(common.Vec3{-h, -h, 0}, n, common.Vec2{0, 0})
	d.AppendVertex(common.Vec3{h, -h, 0}, n, common.Vec2{1, 0})
	d.Indices = []uint32{0, 1, 2}
	return d
}
