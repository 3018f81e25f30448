// Package config holds the editor's user settings and their TOML persistence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-editor/common"
	"github.com/Carmen-Shannon/oxy-editor/engine/camera"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the settings path used when none is given on the command line.
const DefaultFile = "~/.oxy-editor/settings.toml"

// Projection names accepted by CameraSettings.Projection.
const (
	ProjectionPerspective  = "perspective"
	ProjectionOrthographic = "orthographic"
)

// EngineSettings are the user-tunable editor settings.
type EngineSettings struct {
	Window   WindowSettings   `toml:"window"`
	Camera   CameraSettings   `toml:"camera"`
	Renderer RendererSettings `toml:"renderer"`
	Picking  PickingSettings  `toml:"picking"`

	// Workspace is the directory relative asset paths are resolved against. `~` is expanded.
	Workspace string `toml:"workspace"`
}

type WindowSettings struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

// CameraSettings tune viewport navigation.
type CameraSettings struct {
	OrbitSpeed      float32 `toml:"orbit_speed"`       // degrees per pixel
	PanSpeed        float32 `toml:"pan_speed"`         // world units per pixel per unit of distance
	ZoomSpeed       float32 `toml:"zoom_speed"`        // multiplier on the scroll step
	MinDistance     float32 `toml:"min_distance"`      // closest orbit distance
	MaxDistance     float32 `toml:"max_distance"`      // farthest orbit distance
	MouseClampDelta float32 `toml:"mouse_clamp_delta"` // largest per-event cursor delta in pixels

	AnimationDuration float32 `toml:"animation_duration"` // seconds, 0 snaps
	Easing            string  `toml:"easing"`             // see camera.EasingNames
	Projection        string  `toml:"projection"`         // perspective or orthographic
	FieldOfView       float32 `toml:"field_of_view"`      // vertical, degrees
}

type RendererSettings struct {
	ClearColor    common.Vec4 `toml:"clear_color"`
	SelectionTint common.Vec4 `toml:"selection_tint"`
	MSAA          uint32      `toml:"msaa"`
	VSync         bool        `toml:"vsync"`
	ShaderFile    string      `toml:"shader_file"`
	HotReload     bool        `toml:"hot_reload"`
}

type PickingSettings struct {
	Cull string `toml:"cull"` // none, back or front
}

// Default returns the settings a fresh install starts with.
//
// Returns:
//   - EngineSettings: the defaults
func Default() EngineSettings {
	return EngineSettings{
		Window: WindowSettings{
			Width:  1280,
			Height: 720,
			Title:  "Oxy Editor",
		},
		Camera: CameraSettings{
			OrbitSpeed:        0.3,
			PanSpeed:          0.002,
			ZoomSpeed:         1,
			MinDistance:       0.5,
			MaxDistance:       100,
			MouseClampDelta:   22,
			AnimationDuration: 0.5,
			Easing:            "ease-in-out",
			Projection:        ProjectionPerspective,
			FieldOfView:       45,
		},
		Renderer: RendererSettings{
			ClearColor:    common.Vec4{0.1, 0.1, 0.1, 1},
			SelectionTint: common.Vec4{1, 0.6, 0.1, 0.5},
			MSAA:          4,
			VSync:         true,
			HotReload:     true,
		},
		Picking: PickingSettings{
			Cull: "none",
		},
	}
}

// Load reads settings from a TOML file over the defaults. A missing file yields the defaults and no
// error. Unknown keys are logged and ignored.
//
// Parameters:
//   - path: the settings file, `~` is expanded
//
// Returns:
//   - EngineSettings: the loaded settings
//   - error: an unreadable or malformed file, or settings that fail Validate
func Load(path string) (EngineSettings, error) {
	s := Default()
	path, err := homedir.Expand(path)
	if err != nil {
		return s, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}

	err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&s)
	var strict *toml.StrictMissingError
	if errors.As(err, &strict) {
		log.Printf("[Config] ignoring unknown settings in %s:\n%s", path, strict.String())
		err = nil
	}
	if err != nil {
		return Default(), fmt.Errorf("parse settings %s: %w", path, err)
	}

	s.Sanitize()
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings as TOML, creating parent directories as needed.
//
// Parameters:
//   - path: the settings file, `~` is expanded
//   - s: the settings to write
//
// Returns:
//   - error: error if the file could not be written
func Save(path string, s EngineSettings) error {
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Sanitize repairs values a user can reasonably mistype: a maximum distance below the minimum is raised
// to it, and an empty title, easing, projection or cull mode falls back to its default.
func (s *EngineSettings) Sanitize() {
	def := Default()
	if s.Camera.MaxDistance < s.Camera.MinDistance {
		s.Camera.MaxDistance = s.Camera.MinDistance
	}
	if s.Window.Title == "" {
		s.Window.Title = def.Window.Title
	}
	if s.Camera.Easing == "" {
		s.Camera.Easing = def.Camera.Easing
	}
	if s.Camera.Projection == "" {
		s.Camera.Projection = def.Camera.Projection
	}
	if s.Picking.Cull == "" {
		s.Picking.Cull = def.Picking.Cull
	}
}

// Validate reports settings the editor cannot run with.
//
// Returns:
//   - error: a ContractViolation naming every invalid field, or nil
func (s EngineSettings) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if s.Window.Width <= 0 || s.Window.Height <= 0 {
		bad("window size %dx%d must be positive", s.Window.Width, s.Window.Height)
	}
	c := s.Camera
	if c.OrbitSpeed <= 0 || c.PanSpeed <= 0 || c.ZoomSpeed <= 0 {
		bad("camera speeds must be positive")
	}
	if c.MinDistance <= 0 {
		bad("camera min_distance %g must be positive", c.MinDistance)
	}
	if c.MouseClampDelta <= 0 {
		bad("camera mouse_clamp_delta %g must be positive", c.MouseClampDelta)
	}
	if c.AnimationDuration < 0 {
		bad("camera animation_duration %g must not be negative", c.AnimationDuration)
	}
	if _, ok := camera.EasingByName(c.Easing); !ok {
		bad("unknown camera easing %q", c.Easing)
	}
	if c.Projection != ProjectionPerspective && c.Projection != ProjectionOrthographic {
		bad("unknown camera projection %q", c.Projection)
	}
	if c.FieldOfView <= 0 || c.FieldOfView >= 180 {
		bad("camera field_of_view %g must be in (0, 180)", c.FieldOfView)
	}
	if s.Renderer.MSAA != 1 && s.Renderer.MSAA != 4 {
		bad("renderer msaa %d must be 1 or 4", s.Renderer.MSAA)
	}
	switch s.Picking.Cull {
	case "none", "back", "front":
	default:
		bad("unknown picking cull mode %q", s.Picking.Cull)
	}

	if len(errs) == 0 {
		return nil
	}
	return common.NewError(common.KindContractViolation, "config.Validate", "", errors.Join(errs...))
}

// WorkspaceDir returns the expanded workspace directory, or the current directory when unset.
//
// Returns:
//   - string: an absolute directory path
//   - error: error if `~` could not be expanded
func (s EngineSettings) WorkspaceDir() (string, error) {
	if s.Workspace == "" {
		return os.Getwd()
	}
	dir, err := homedir.Expand(s.Workspace)
	if err != nil {
		return "", err
	}
	return filepath.Abs(dir)
}

// ResolvePath resolves an asset path against the workspace. Absolute and `~` paths are returned
// expanded but otherwise unchanged.
//
// Parameters:
//   - path: the asset path
//
// Returns:
//   - string: the resolved path
//   - error: error if `~` could not be expanded
func (s EngineSettings) ResolvePath(path string) (string, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	dir, err := s.WorkspaceDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, path), nil
}
