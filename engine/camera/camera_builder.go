package camera

type CameraBuilderOption func(*cameraImpl)

// WithState sets the initial orbit pose.
//
// Parameters:
//   - s: the pose
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's pose
func WithState(s State) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.state = s
	}
}

// WithProjection sets the projection backend. Defaults to NewPerspective().
//
// Parameters:
//   - p: a Perspective or Orthographic value
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's projection
func WithProjection(p Projection) CameraBuilderOption {
	return func(c *cameraImpl) {
		if p != nil {
			c.projection = p
		}
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithDistanceLimits sets the closest and farthest orbit distances. Defaults to [0.5, 100].
// The bounds are swapped if given in the wrong order.
//
// Parameters:
//   - minDistance: closest distance to the target
//   - maxDistance: farthest distance from the target
//
// Returns:
//   - CameraBuilderOption: a function that sets the distance limits
func WithDistanceLimits(minDistance, maxDistance float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if minDistance > maxDistance {
			minDistance, maxDistance = maxDistance, minDistance
		}
		c.minDistance = minDistance
		c.maxDistance = maxDistance
	}
}

// WithEasing sets the easing used when AnimateTo is given nil. Defaults to EaseInOut.
//
// Parameters:
//   - e: the easing function
//
// Returns:
//   - CameraBuilderOption: a function that sets the default easing
func WithEasing(e Easing) CameraBuilderOption {
	return func(c *cameraImpl) {
		if e != nil {
			c.easing = e
		}
	}
}

// WithInputEnabled sets whether navigation input starts enabled. Defaults to true.
//
// Parameters:
//   - enabled: the initial input state
//
// Returns:
//   - CameraBuilderOption: a function that sets the input state
func WithInputEnabled(enabled bool) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.inputEnabled = enabled
	}
}
