package renderer

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-editor/common"
)

// UniformStride is the distance in bytes between consecutive DrawUniforms in the frame's uniform
// block. WebGPU requires dynamic uniform offsets to be aligned to 256.
const UniformStride = 256

// DrawUniform is the per-draw data bound at group 0, binding 0 of the mesh shader.
// The layout matches the WGSL struct: two mat4x4<f32> followed by a vec4<f32>.
type DrawUniform struct {
	ViewProj common.Mat4
	Model    common.Mat4
	Color    common.Vec4
}

// Size returns the byte size of the uniform as seen by the shader.
func (u *DrawUniform) Size() uint64 {
	return uint64(unsafe.Sizeof(*u))
}

// Marshal writes the uniform into buf in little-endian order. buf must hold at least Size() bytes.
func (u *DrawUniform) Marshal(buf []byte) {
	off := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
		off += 4
	}
	for _, v := range u.ViewProj {
		put(v)
	}
	for _, v := range u.Model {
		put(v)
	}
	for _, v := range u.Color {
		put(v)
	}
}

// packUniforms lays out one DrawUniform per draw at UniformStride intervals, reusing dst when it is
// large enough.
func packUniforms(dst []byte, draws []drawItem) []byte {
	size := len(draws) * UniformStride
	if cap(dst) < size {
		dst = make([]byte, size)
	}
	dst = dst[:size]
	for i := range draws {
		draws[i].uniform.Marshal(dst[i*UniformStride:])
	}
	return dst
}
