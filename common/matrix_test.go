package common

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTol = float32(1e-4)

func randomTRS(r *rand.Rand) Mat4 {
	f := func(lo, hi float32) float32 { return lo + r.Float32()*(hi-lo) }
	pos := Vec3{f(-10, 10), f(-10, 10), f(-10, 10)}
	rot := Vec3{f(-3, 3), f(-3, 3), f(-3, 3)}
	scale := Vec3{f(0.25, 4), f(0.25, 4), f(0.25, 4)}
	return BuildModelMatrix(pos, rot, scale)
}

func TestInverseTimesMatrixIsIdentity(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		m := randomTRS(r)
		inv, ok := m.Inverse()
		require.True(t, ok, "matrix %d should be invertible", i)
		assert.True(t, inv.Mul(m).ApproxEqual(Ident4(), testTol), "inv*m != I for matrix %d", i)
		assert.True(t, m.Mul(inv).ApproxEqual(Ident4(), testTol), "m*inv != I for matrix %d", i)
	}
}

func TestInverseGeneralMatrix(t *testing.T) {
	m := Mat4{
		2, 0, 1, 0,
		1, 3, 0, 0,
		0, 1, 4, 1,
		5, 0, 0, 1,
	}
	require.NotZero(t, m.Determinant())
	inv, ok := m.Inverse()
	require.True(t, ok)
	assert.True(t, inv.Mul(m).ApproxEqual(Ident4(), testTol))
}

func TestInverseSingularFallsBackToIdentity(t *testing.T) {
	singular := Scaling(Vec3{1, 0, 1})
	inv, ok := singular.Inverse()
	assert.False(t, ok)
	assert.Equal(t, Ident4(), inv)

	out := make([]float32, 16)
	out[0] = 42
	assert.False(t, Invert4(out, singular[:]))
	assert.Equal(t, float32(42), out[0], "Invert4 must leave out untouched")
}

func TestMulOrder(t *testing.T) {
	// scale first, then translate: (1,0,0) -> (2,0,0) -> (3,1,1)
	m := Translation(Vec3{1, 1, 1}).Mul(Scaling(Vec3{2, 2, 2}))
	assert.Equal(t, Vec3{3, 1, 1}, m.TransformPoint(Vec3{1, 0, 0}))
	assert.Equal(t, Vec3{2, 0, 0}, m.TransformVector(Vec3{1, 0, 0}))
}

func TestBuildModelMatrixMatchesComposition(t *testing.T) {
	pos := Vec3{1, 2, 3}
	rot := Vec3{0.3, -0.7, 1.1}
	scale := Vec3{2, 0.5, 1.5}

	sx, cx := sincos(rot[0])
	sy, cy := sincos(rot[1])
	sz, cz := sincos(rot[2])
	rx := Ident4()
	rx[5], rx[6], rx[9], rx[10] = cx, sx, -sx, cx
	ry := Ident4()
	ry[0], ry[2], ry[8], ry[10] = cy, -sy, sy, cy
	rz := Ident4()
	rz[0], rz[1], rz[4], rz[5] = cz, sz, -sz, cz

	want := Translation(pos).Mul(ry).Mul(rx).Mul(rz).Mul(Scaling(scale))
	assert.True(t, BuildModelMatrix(pos, rot, scale).ApproxEqual(want, testTol))
}

func TestTransformAABB(t *testing.T) {
	m := Translation(Vec3{10, 0, 0}).Mul(Scaling(Vec3{2, 2, 2}))
	lo, hi := m.TransformAABB(Vec3{-1, -1, -1}, Vec3{1, 1, 1})
	assert.True(t, lo.ApproxEqual(Vec3{8, -2, -2}, testTol))
	assert.True(t, hi.ApproxEqual(Vec3{12, 2, 2}, testTol))
}

func TestPerspectiveDepthRange(t *testing.T) {
	p := Perspective(Radians(60), 1, 0.5, 100)
	near := p.TransformPoint(Vec3{0, 0, -0.5})
	far := p.TransformPoint(Vec3{0, 0, -100})
	assert.InDelta(t, 0, near[2], 1e-5)
	assert.InDelta(t, 1, far[2], 1e-4)
}

func TestOrthographicDepthRange(t *testing.T) {
	o := Orthographic(-2, 2, -1, 1, 0.1, 10)
	assert.True(t, o.TransformPoint(Vec3{2, 1, -0.1}).ApproxEqual(Vec3{1, 1, 0}, testTol))
	assert.True(t, o.TransformPoint(Vec3{-2, -1, -10}).ApproxEqual(Vec3{-1, -1, 1}, testTol))
}

func TestLookAtMapsEyeToOrigin(t *testing.T) {
	eye := Vec3{3, 4, 5}
	view := LookAt(eye, Vec3{}, Vec3{0, 1, 0})
	assert.True(t, view.TransformPoint(eye).ApproxEqual(Vec3{}, testTol))
	// target lies straight down -Z in view space
	p := view.TransformPoint(Vec3{})
	assert.InDelta(t, 0, p[0], 1e-5)
	assert.InDelta(t, 0, p[1], 1e-5)
	assert.InDelta(t, -eye.Length(), p[2], 1e-4)
}

func TestFrustumCulling(t *testing.T) {
	vp := Perspective(Radians(60), 1, 0.1, 50).Mul(LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0}))
	f := ExtractFrustum(vp)
	assert.True(t, f.IntersectsAABB(Vec3{-1, -1, -1}, Vec3{1, 1, 1}))
	assert.False(t, f.IntersectsAABB(Vec3{-1, -1, 10}, Vec3{1, 1, 12}), "box behind the camera")
	assert.False(t, f.IntersectsAABB(Vec3{100, -1, -1}, Vec3{102, 1, 1}), "box far to the right")
	assert.True(t, f.ContainsPoint(Vec3{}))
}
