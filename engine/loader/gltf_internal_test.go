package loader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/stretchr/testify/assert"
)

func TestTriangulate(t *testing.T) {
	idx := []uint32{0, 1, 2, 3, 4}
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3, 2, 3, 4}, triangulate(gltfModeTriangleStrip, idx))
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3, 0, 3, 4}, triangulate(gltfModeTriangleFan, idx))
	assert.Equal(t, []uint32{0, 1, 2}, triangulate(gltfModeTriangles, idx))
}

func TestNodeMatrixPrefersExplicitMatrix(t *testing.T) {
	m := common.Translation(common.Vec3{1, 2, 3})
	raw := [16]float32(m)
	n := &gltfNode{Matrix: &raw, Translation: &[3]float32{9, 9, 9}}
	assert.Equal(t, m, nodeMatrix(n))

	trs := &gltfNode{Translation: &[3]float32{1, 0, 0}, Scale: &[3]float32{2, 2, 2}}
	assert.Equal(t, common.Vec3{3, 0, 0}, nodeMatrix(trs).TransformPoint(common.Vec3{1, 0, 0}))
}

func TestQuatMatrixIdentity(t *testing.T) {
	assert.True(t, quatMatrix([4]float32{0, 0, 0, 1}).ApproxEqual(common.Ident4(), 1e-6))
	// unnormalized input is normalized first
	assert.True(t, quatMatrix([4]float32{0, 0, 0, 3}).ApproxEqual(common.Ident4(), 1e-6))
}

func TestDecodeDataURI(t *testing.T) {
	data, err := decodeDataURI("data:application/octet-stream;base64,AQID")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, err = decodeDataURI("data:text/plain,hello")
	assert.Error(t, err)
	_, err = decodeDataURI("data:nocomma")
	assert.ErrorIs(t, err, errInvalidBufferURI)
}
