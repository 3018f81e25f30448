package camera

import (
	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/chewxy/math32"
)

// orthoReferenceDistance is the orbit distance at which an orthographic camera shows exactly Size
// units above and below the target. Zooming scales the visible height linearly from there.
const orthoReferenceDistance = 10

// Projection is the part of a camera that differs between perspective and orthographic views.
// The set of implementations is closed: Perspective and Orthographic.
type Projection interface {
	// Matrix returns the projection matrix for the given viewport aspect and orbit distance.
	//
	// Parameters:
	//   - aspect: viewport width divided by height
	//   - distance: current distance from the eye to the orbit target
	//
	// Returns:
	//   - common.Mat4: a projection mapping depth to [0, 1]
	Matrix(aspect, distance float32) common.Mat4

	// FitDistance returns the orbit distance at which a sphere of the given radius around the target
	// fills the view without being clipped at the sides.
	//
	// Parameters:
	//   - radius: bounding sphere radius
	//   - aspect: viewport width divided by height
	//
	// Returns:
	//   - float32: the orbit distance
	FitDistance(radius, aspect float32) float32

	// Clip returns the near and far clip distances.
	Clip() (near, far float32)

	isProjection()
}

// Perspective is a pinhole projection with a vertical field of view in radians.
type Perspective struct {
	FovY float32
	Near float32
	Far  float32
}

// Orthographic is a parallel projection. Size is the half height of the view volume at the
// reference distance of 10 units.
type Orthographic struct {
	Size float32
	Near float32
	Far  float32
}

var (
	_ Projection = Perspective{}
	_ Projection = Orthographic{}
)

// NewPerspective returns a 45 degree perspective with a [0.1, 1000] clip range.
func NewPerspective() Perspective {
	return Perspective{FovY: common.Radians(45), Near: 0.1, Far: 1000}
}

// NewOrthographic returns an orthographic projection with half height 5 at the reference distance.
func NewOrthographic() Orthographic {
	return Orthographic{Size: 5, Near: 0.01, Far: 1000}
}

func (p Perspective) Matrix(aspect, _ float32) common.Mat4 {
	return common.Perspective(p.FovY, aspect, p.Near, p.Far)
}

func (p Perspective) FitDistance(radius, aspect float32) float32 {
	half := p.FovY / 2
	if aspect < 1 {
		half = math32.Atan(math32.Tan(half) * aspect)
	}
	return radius / math32.Sin(half)
}

func (p Perspective) Clip() (near, far float32) { return p.Near, p.Far }

func (Perspective) isProjection() {}

func (o Orthographic) halfHeight(distance float32) float32 {
	return o.Size * distance / orthoReferenceDistance
}

func (o Orthographic) Matrix(aspect, distance float32) common.Mat4 {
	h := o.halfHeight(distance)
	w := h * aspect
	return common.Orthographic(-w, w, -h, h, o.Near, o.Far)
}

func (o Orthographic) FitDistance(radius, aspect float32) float32 {
	return radius * orthoReferenceDistance / (o.Size * math32.Min(1, aspect))
}

func (o Orthographic) Clip() (near, far float32) { return o.Near, o.Far }

func (Orthographic) isProjection() {}
