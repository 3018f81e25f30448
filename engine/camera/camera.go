package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/ray"
	"github.com/chewxy/math32"
)

// maxElevation keeps the eye just short of the poles so the view basis never degenerates.
var maxElevation = common.Radians(89)

// frameMargin pads FrameBounds so the framed object does not touch the viewport edges.
const frameMargin = 1.2

var worldUp = common.Vec3{0, 1, 0}

// Viewport is a rectangle in window pixels with the origin at the top left.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// Contains reports whether the pixel (x, y) lies inside v, edges included.
func (v Viewport) Contains(x, y float32) bool {
	return x >= v.X && x <= v.X+v.Width && y >= v.Y && y <= v.Y+v.Height
}

// Aspect returns Width / Height, or 1 for an empty viewport.
func (v Viewport) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return v.Width / v.Height
}

type cameraImpl struct {
	mu *sync.Mutex

	state      State
	projection Projection
	aspect     float32

	minDistance float32
	maxDistance float32

	animator   Animator
	easing     Easing
	onComplete func()

	inputEnabled bool

	view           common.Mat4
	proj           common.Mat4
	viewProjection common.Mat4
}

// Camera is an orbit camera. Its pose is a State around a target point; the Projection decides
// whether it renders in perspective or orthographically. Navigation cancels any running animation
// and continues from the pose the animation had reached.
type Camera interface {
	// View returns the world-to-view matrix.
	//
	// Returns:
	//   - common.Mat4: the view matrix
	View() common.Mat4

	// Projection returns the view-to-clip matrix.
	//
	// Returns:
	//   - common.Mat4: the projection matrix
	Projection() common.Mat4

	// ViewProjection returns Projection * View.
	//
	// Returns:
	//   - common.Mat4: the combined matrix
	ViewProjection() common.Mat4

	// ProjectionMode returns the projection backend in use.
	//
	// Returns:
	//   - Projection: a Perspective or Orthographic value
	ProjectionMode() Projection

	// SetProjectionMode switches the projection backend, keeping the orbit pose.
	//
	// Parameters:
	//   - p: the new projection
	SetProjectionMode(p Projection)

	// Position returns the eye position in world space.
	Position() common.Vec3

	// Target returns the orbit target.
	Target() common.Vec3

	// Up returns the world up vector.
	Up() common.Vec3

	// Forward returns the unit view direction.
	Forward() common.Vec3

	// Right returns the unit vector pointing to the right of the view.
	Right() common.Vec3

	// Distance returns the orbit distance.
	Distance() float32

	// Aspect returns the viewport aspect ratio used for projection.
	Aspect() float32

	// SetAspect sets the viewport aspect ratio. Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: width divided by height
	SetAspect(aspect float32)

	// State returns the current pose, which is the interpolated pose while animating.
	//
	// Returns:
	//   - State: the pose
	State() State

	// SetState replaces the pose, cancelling any animation. Distance and elevation are clamped.
	//
	// Parameters:
	//   - s: the new pose
	SetState(s State)

	// Orbit rotates the eye around the target. Elevation is clamped short of the poles.
	//
	// Parameters:
	//   - dAzimuth: change of azimuth in radians
	//   - dElevation: change of elevation in radians
	Orbit(dAzimuth, dElevation float32)

	// Pan moves the target and eye together in the view plane.
	//
	// Parameters:
	//   - dx: world units along Right
	//   - dy: world units along the view's up axis
	Pan(dx, dy float32)

	// Zoom moves the eye toward the target by delta world units, clamped to the distance limits.
	//
	// Parameters:
	//   - delta: positive to move closer
	Zoom(delta float32)

	// FocusOn animates the target to a point, keeping the viewing angles.
	//
	// Parameters:
	//   - target: the new orbit target
	//   - distance: the new orbit distance, or <= 0 to keep the current one
	//   - duration: animation length in seconds, 0 to snap
	FocusOn(target common.Vec3, distance, duration float32)

	// FrameBounds animates the camera to fit an axis-aligned box in view.
	//
	// Parameters:
	//   - minV, maxV: the box corners in world space
	//   - duration: animation length in seconds, 0 to snap
	FrameBounds(minV, maxV common.Vec3, duration float32)

	// AnimateTo starts an animation toward s. The end pose is clamped to the camera limits.
	// A duration of zero applies s immediately and calls onComplete before returning.
	//
	// Parameters:
	//   - s: the goal pose
	//   - duration: animation length in seconds
	//   - easing: progress curve, or nil for the camera default
	//   - onComplete: called once when the animation finishes; not called when cancelled
	AnimateTo(s State, duration float32, easing Easing, onComplete func())

	// CancelAnimation stops the running animation and keeps the current pose.
	CancelAnimation()

	// IsAnimating reports whether an animation is running.
	IsAnimating() bool

	// Update advances the animation by dt seconds and recomputes the matrices.
	//
	// Parameters:
	//   - dt: frame time in seconds
	Update(dt float32)

	// IsInputEnabled reports whether navigation input should reach this camera.
	IsInputEnabled() bool

	// SetInputEnabled enables or disables navigation input.
	SetInputEnabled(enabled bool)

	// IsMouseInViewport reports whether the cursor lies in the viewport this camera renders to.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	//   - vp: the viewport rectangle
	IsMouseInViewport(x, y float32, vp Viewport) bool

	// ScreenToWorldRay unprojects a cursor position through the inverse view-projection matrix.
	// The ray starts on the near plane and points away from the eye.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	//   - vp: the viewport rectangle the camera renders to
	//
	// Returns:
	//   - ray.Ray: the picking ray in world space
	//   - error: a contract violation for an empty viewport or a singular view-projection
	ScreenToWorldRay(x, y float32, vp Viewport) (ray.Ray, error)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective orbit camera at DefaultState.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:           &sync.Mutex{},
		state:        DefaultState,
		projection:   NewPerspective(),
		aspect:       1,
		minDistance:  0.5,
		maxDistance:  100,
		easing:       EaseInOut,
		inputEnabled: true,
	}
	for _, option := range options {
		option(c)
	}
	c.state = c.clamp(c.state)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) View() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *cameraImpl) Projection() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proj
}

func (c *cameraImpl) ViewProjection() common.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjection
}

func (c *cameraImpl) ProjectionMode() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projection
}

func (c *cameraImpl) SetProjectionMode(p Projection) {
	if p == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projection = p
	c.updateMatrices()
}

func (c *cameraImpl) Position() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Position()
}

func (c *cameraImpl) Target() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Target
}

func (c *cameraImpl) Up() common.Vec3 {
	return worldUp
}

func (c *cameraImpl) Forward() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, _, _ := c.axes()
	return f
}

func (c *cameraImpl) Right() common.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, r, _ := c.axes()
	return r
}

func (c *cameraImpl) Distance() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Distance
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 || math32.IsNaN(aspect) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *cameraImpl) SetState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	c.state = c.clamp(s)
	c.updateMatrices()
}

func (c *cameraImpl) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	c.state.Azimuth += dAzimuth
	c.state.Elevation += dElevation
	c.state = c.clamp(c.state)
	c.updateMatrices()
}

func (c *cameraImpl) Pan(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	_, right, up := c.axes()
	c.state.Target = c.state.Target.Add(right.Scale(dx)).Add(up.Scale(dy))
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
	c.state.Distance -= delta
	c.state = c.clamp(c.state)
	c.updateMatrices()
}

func (c *cameraImpl) FocusOn(target common.Vec3, distance, duration float32) {
	c.mu.Lock()
	goal := c.state
	c.mu.Unlock()
	goal.Target = target
	if distance > 0 {
		goal.Distance = distance
	}
	c.AnimateTo(goal, duration, nil, nil)
}

func (c *cameraImpl) FrameBounds(minV, maxV common.Vec3, duration float32) {
	center := minV.Add(maxV).Scale(0.5)
	radius := maxV.Sub(minV).Length() / 2
	c.mu.Lock()
	distance := c.state.Distance
	if radius > 0 {
		distance = c.projection.FitDistance(radius, c.aspect) * frameMargin
	}
	c.mu.Unlock()
	c.FocusOn(center, distance, duration)
}

func (c *cameraImpl) AnimateTo(s State, duration float32, easing Easing, onComplete func()) {
	c.mu.Lock()
	if easing == nil {
		easing = c.easing
	}
	goal := c.clamp(s)
	c.onComplete = nil
	if c.animator.Start(c.state, goal, duration, easing) {
		c.onComplete = onComplete
		c.mu.Unlock()
		return
	}
	c.state = goal
	c.updateMatrices()
	c.mu.Unlock()
	if onComplete != nil {
		onComplete()
	}
}

func (c *cameraImpl) CancelAnimation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
}

func (c *cameraImpl) IsAnimating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.animator.Active()
}

func (c *cameraImpl) Update(dt float32) {
	c.mu.Lock()
	var done func()
	if c.animator.Active() {
		s, finished := c.animator.Advance(dt)
		c.state = s
		if finished {
			done, c.onComplete = c.onComplete, nil
		}
	}
	c.updateMatrices()
	c.mu.Unlock()
	if done != nil {
		done()
	}
}

func (c *cameraImpl) IsInputEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputEnabled
}

func (c *cameraImpl) SetInputEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputEnabled = enabled
}

func (c *cameraImpl) IsMouseInViewport(x, y float32, vp Viewport) bool {
	return vp.Contains(x, y)
}

func (c *cameraImpl) ScreenToWorldRay(x, y float32, vp Viewport) (ray.Ray, error) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return ray.Ray{}, common.ContractError("camera.ScreenToWorldRay", "empty viewport %vx%v", vp.Width, vp.Height)
	}
	c.mu.Lock()
	inv, ok := c.viewProjection.Inverse()
	c.mu.Unlock()
	if !ok {
		return ray.Ray{}, common.ContractError("camera.ScreenToWorldRay", "view-projection matrix is singular")
	}

	ndcX := 2*(x-vp.X)/vp.Width - 1
	ndcY := 1 - 2*(y-vp.Y)/vp.Height
	near := inv.TransformPoint(common.Vec3{ndcX, ndcY, 0})
	far := inv.TransformPoint(common.Vec3{ndcX, ndcY, 1})
	return ray.New(near, far.Sub(near))
}

// cancel drops the running animation and its completion callback. The current pose is already the
// last interpolated one. Caller must hold the mutex.
func (c *cameraImpl) cancel() {
	c.animator.Cancel()
	c.onComplete = nil
}

// clamp applies the distance and elevation limits to s.
func (c *cameraImpl) clamp(s State) State {
	s.Distance = common.Clamp(s.Distance, c.minDistance, c.maxDistance)
	s.Elevation = common.Clamp(s.Elevation, -maxElevation, maxElevation)
	return s
}

// axes returns the view basis: forward, right and the view's up. Caller must hold the mutex.
func (c *cameraImpl) axes() (forward, right, up common.Vec3) {
	forward = c.state.Target.Sub(c.state.Position()).Normalize()
	right = forward.Cross(worldUp).Normalize()
	up = right.Cross(forward)
	return
}

// updateMatrices recalculates the view, projection and view-projection matrices from the pose.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.view = common.LookAt(c.state.Position(), c.state.Target, worldUp)
	c.proj = c.projection.Matrix(c.aspect, c.state.Distance)
	c.viewProjection = c.proj.Mul(c.view)
}
