package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyA         = 65  // A key (ASCII)
	KeyD         = 68  // D key (ASCII)
	KeyF         = 70  // F key (ASCII)
	KeyO         = 79  // O key (ASCII), toggles orthographic/perspective
	KeyS         = 83  // S key (ASCII)
	KeyDelete    = 261 // Delete key (GLFW)
	KeyBackspace = 259 // Backspace key (GLFW)
	KeyEsc       = 256 // Escape key (GLFW)

	Key1 = 49 // 1 key (ASCII), cube
	Key2 = 50 // 2 key (ASCII), sphere
	Key3 = 51 // 3 key (ASCII), plane
	Key4 = 52 // 4 key (ASCII), cylinder
	Key5 = 53 // 5 key (ASCII), triangle
)

// Additional non-printable keys
const (
	KeyLeftShift    = 340 // Left Shift (GLFW)
	KeyLeftControl  = 341 // Left Control (GLFW)
	KeyRightShift   = 344 // Right Shift (GLFW)
	KeyRightControl = 345 // Right Control (GLFW)
)

// Mouse buttons, matching GLFW button indices.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)
