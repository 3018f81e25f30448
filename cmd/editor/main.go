// Command editor opens the 3D scene editor viewport.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-editor/engine"
	"github.com/Carmen-Shannon/oxy-editor/engine/camera"
	"github.com/Carmen-Shannon/oxy-editor/engine/config"
	"github.com/Carmen-Shannon/oxy-editor/engine/loader"
	"github.com/Carmen-Shannon/oxy-editor/engine/profiler"
	"github.com/Carmen-Shannon/oxy-editor/engine/renderer"
	"github.com/Carmen-Shannon/oxy-editor/engine/resource"
	"github.com/Carmen-Shannon/oxy-editor/engine/scene"
	"github.com/Carmen-Shannon/oxy-editor/engine/viewport"
	"github.com/Carmen-Shannon/oxy-editor/engine/window"
)

type options struct {
	settings   string
	workspace  string
	scene      string
	imports    []string
	profile    bool
	software   bool
	frameLimit float64
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.settings, "settings", config.DefaultFile, "settings file")
	flag.StringVar(&o.workspace, "workspace", "", "workspace directory, overrides the settings file")
	flag.StringVar(&o.scene, "scene", "", "scene file to open, Ctrl+S saves to it")
	flag.BoolVar(&o.profile, "profile", false, "log frame timings every second")
	flag.BoolVar(&o.software, "software", false, "force the software GPU adapter")
	flag.Float64Var(&o.frameLimit, "fps", 0, "frame rate cap, 0 for uncapped")
	flag.Func("import", "asset to import on startup, may be repeated", func(path string) error {
		o.imports = append(o.imports, path)
		return nil
	})
	flag.Parse()
	return o
}

func main() {
	if err := run(parseFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "editor:", err)
		os.Exit(1)
	}
}

func run(o options) error {
	settings, err := config.Load(o.settings)
	if err != nil {
		return fmt.Errorf("settings %s: %w", o.settings, err)
	}
	if o.workspace != "" {
		settings.Workspace = o.workspace
	}

	var resOpts []resource.ManagerBuilderOption
	if settings.Renderer.HotReload {
		resOpts = append(resOpts, resource.WithFileWatcher())
	}
	res, err := resource.NewManager(resOpts...)
	if err != nil {
		return fmt.Errorf("resource manager: %w", err)
	}
	// a no-op once the engine has shut it down
	defer res.Shutdown()

	win, err := window.NewWindow(settings.WindowOptions()...)
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}

	rendererOpts, err := settings.RendererOptions()
	if err != nil {
		return fmt.Errorf("renderer settings: %w", err)
	}
	rendererOpts = append(rendererOpts,
		renderer.WithResourceManager(res),
		renderer.WithForceSoftwareRenderer(o.software),
	)
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, win, rendererOpts...)
	if err != nil {
		win.Close()
		return fmt.Errorf("renderer: %w", err)
	}

	var factoryOpts []scene.FactoryBuilderOption
	if settings.Renderer.HotReload {
		factoryOpts = append(factoryOpts, scene.WithHotReload())
	}
	meshLoader := loader.NewMeshLoader()
	factoryOpts = append(factoryOpts, scene.WithMeshLoader(meshLoader))

	sc := scene.NewScene()
	factory := scene.NewFactory(sc, r.Device(), res, factoryOpts...)
	cam := camera.NewCamera(settings.CameraOptions()...)

	vpOpts := append(settings.ViewportOptions(), viewport.WithImporter(loader.NewImporter(meshLoader)))
	if o.scene != "" {
		path, err := settings.ResolvePath(o.scene)
		if err != nil {
			return err
		}
		vpOpts = append(vpOpts, viewport.WithScenePath(path))
		o.scene = path
	}
	vp := viewport.NewViewport(sc, factory, res, cam, vpOpts...)
	vp.SetImportCallback(func(s viewport.ImportStatus) {
		if s.State == viewport.ImportFailed {
			win.SetTitle(fmt.Sprintf("%s - import failed: %s", settings.Window.Title, s.Path))
		}
	})

	if o.scene != "" {
		if _, statErr := os.Stat(o.scene); statErr == nil {
			if err := vp.LoadScene(o.scene); err != nil {
				log.Printf("[Editor] scene %s loaded with errors: %v", o.scene, err)
			}
		}
	}
	for _, p := range o.imports {
		path, err := settings.ResolvePath(p)
		if err != nil {
			return err
		}
		if err := vp.Import(path); err != nil {
			return err
		}
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithViewport(vp),
		engine.WithResourceManager(res),
		engine.WithProfiling(o.profile),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogging(o.profile))),
		engine.WithRenderFrameLimit(o.frameLimit),
	)
	return eng.Run()
}
