// Package meshtest provides an in-memory mesh.Device for tests that exercise GPU resource lifecycles
// without a GPU.
package meshtest

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-editor/engine/mesh"
)

// ErrInjected is returned by Device when a failure has been scheduled with FailAfter.
var ErrInjected = errors.New("meshtest: injected device failure")

// Handle is a fake GPU object that records how often it was released.
type Handle struct {
	Label    string
	Usage    mesh.BufferUsage
	Size     int
	released atomic.Int32
}

// Release marks the handle released.
func (h *Handle) Release() { h.released.Add(1) }

// Releases returns the number of Release calls.
func (h *Handle) Releases() int { return int(h.released.Load()) }

// Device is a mesh.Device that hands out Handles and can be told to fail.
type Device struct {
	mu        sync.Mutex
	handles   []*Handle
	failAfter int
}

var _ mesh.Device = &Device{}

// NewDevice returns a Device that never fails.
func NewDevice() *Device {
	return &Device{failAfter: -1}
}

// FailAfter makes every creation after the next n succeed calls fail. A negative n disables failures.
func (d *Device) FailAfter(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAfter = n
}

func (d *Device) create(label string, usage mesh.BufferUsage, size int) (mesh.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAfter == 0 {
		return nil, ErrInjected
	}
	if d.failAfter > 0 {
		d.failAfter--
	}
	h := &Handle{Label: label, Usage: usage, Size: size}
	d.handles = append(d.handles, h)
	return h, nil
}

func (d *Device) CreateBuffer(label string, usage mesh.BufferUsage, data []byte) (mesh.Handle, error) {
	return d.create(label, usage, len(data))
}

func (d *Device) CreateShaderModule(label, source string) (mesh.Handle, error) {
	return d.create(label, -1, len(source))
}

// Handles returns every handle created so far.
func (d *Device) Handles() []*Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Handle(nil), d.handles...)
}

// Live returns the number of created handles that have not been released.
func (d *Device) Live() int {
	n := 0
	for _, h := range d.Handles() {
		if h.Releases() == 0 {
			n++
		}
	}
	return n
}
