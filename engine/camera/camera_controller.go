package camera

// CameraController translates viewport input into Camera navigation. Middle-drag orbits,
// Shift+middle-drag pans, Ctrl+middle-drag dollies, the scroll wheel zooms and F frames the
// selection. Input is ignored while the camera's input is disabled, and a drag only starts when the
// cursor is inside the controller's viewport.
type CameraController interface {
	pointerInput
	keyboardInput

	// Camera returns the controlled camera.
	//
	// Returns:
	//   - Camera: the camera
	Camera() Camera

	// Viewport returns the rectangle input is accepted in.
	//
	// Returns:
	//   - Viewport: the viewport in window pixels
	Viewport() Viewport

	// SetViewport sets the rectangle input is accepted in and updates the camera aspect.
	//
	// Parameters:
	//   - vp: the viewport in window pixels
	SetViewport(vp Viewport)

	// Cursor returns the last cursor position reported to the controller.
	//
	// Returns:
	//   - x, y: cursor position in window pixels
	Cursor() (x, y float32)

	// IsNavigating reports whether a middle-drag is in progress.
	IsNavigating() bool
}

// pointerInput receives mouse events in window pixels.
type pointerInput interface {
	// MouseDown handles a button press.
	//
	// Parameters:
	//   - button: common.MouseButtonLeft, Right or Middle
	//   - x, y: cursor position
	MouseDown(button int, x, y float32)

	// MouseUp handles a button release.
	//
	// Parameters:
	//   - button: the released button
	//   - x, y: cursor position
	MouseUp(button int, x, y float32)

	// MouseMove handles cursor movement. Per-event deltas are clamped to the mouse clamp delta.
	//
	// Parameters:
	//   - x, y: cursor position
	MouseMove(x, y float32)

	// Scroll handles wheel movement. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: wheel steps
	Scroll(delta float32)
}

// keyboardInput receives key events using the codes in common/key_codes.go.
type keyboardInput interface {
	// KeyDown handles a key press or repeat.
	KeyDown(key uint32)

	// KeyUp handles a key release.
	KeyUp(key uint32)
}
