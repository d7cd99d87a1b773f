package engine

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/qtk/engine/assets"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/platform"
	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/headless"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
	"github.com/spaghettifunk/qtk/engine/renderer/opengl"
	"github.com/spaghettifunk/qtk/engine/renderer/views"
	"github.com/spaghettifunk/qtk/engine/scene"
	"github.com/spaghettifunk/qtk/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine completed boot process and is ready to be initialized
	EngineStageBootComplete
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

const (
	jobWorkers   = 4
	jobQueueSize = 32
	// frames between two metrics log lines
	metricsInterval = 600
	// quiet time after the last write before a new model file is imported
	modelSettleDelay = 250 * time.Millisecond
)

/**
 * @brief Owns the window, the GPU backend and the scene, and drives the
 * frame loop. Everything touching the scene runs on the goroutine calling
 * Initialize and Run.
 */
type Engine struct {
	currentStage Stage
	game         *Game
	config       *ApplicationConfig
	isRunning    bool
	isSuspended  bool

	events       *core.EventSystem
	input        *core.InputState
	platform     *platform.Platform
	renderer     *renderer.Renderer
	assetManager *assets.AssetManager
	jobSystem    *systems.JobSystem
	resources    *scene.Resources
	scene        *scene.Scene

	clock    *core.Clock
	metrics  *core.Metrics
	width    uint32
	height   uint32
	lastTime float64
	frames   uint64

	// new model files waiting for their writes to settle, by last event time
	settling map[string]time.Time
	now      func() time.Time
}

func New(g *Game) (*Engine, error) {
	if g.ApplicationConfig == nil {
		g.ApplicationConfig = DefaultApplicationConfig()
	}
	config := g.ApplicationConfig
	if err := config.Validate(); err != nil {
		return nil, err
	}
	core.SetLogLevel(config.LogLevel())

	js, err := systems.NewJobSystem(jobWorkers, jobQueueSize)
	if err != nil {
		return nil, err
	}

	events := core.NewEventSystem()
	return &Engine{
		currentStage: EngineStageBootComplete,
		game:         g,
		config:       config,
		events:       events,
		input:        core.NewInputState(events),
		assetManager: assets.NewAssetManager(config.Assets.Dir),
		jobSystem:    js,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        config.Window.Width,
		height:       config.Window.Height,
		settling:     make(map[string]time.Time),
		now:          time.Now,
	}, nil
}

/**
 * @brief Opens the window (unless the headless backend is configured), builds
 * the scene and runs its Init hook.
 */
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageBootComplete {
		return fmt.Errorf("engine cannot initialize from stage %d", e.currentStage)
	}

	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	for code, fn := range e.game.Listeners {
		e.events.Register(code, e.game, fn)
	}

	backend, err := e.createBackend()
	if err != nil {
		return err
	}
	e.renderer = renderer.New(backend, e.width, e.height)
	e.resources = scene.NewResources(backend, e.assetManager, e.jobSystem)

	sc := e.config.Scene
	e.scene = scene.New(sc.Name, e.resources, e.game.Behaviour, e.events,
		scene.WithCamera(e.config.CameraDefaults()),
		scene.WithProjection(e.config.Renderer.FieldOfView, e.config.Renderer.Near, e.config.Renderer.Far),
		scene.WithSize(int(e.width), int(e.height)),
	)
	switch sc.Skybox {
	case "", "none":
	case "default":
		e.scene.SetSkybox(views.NewDefaultSkybox(e.resources.Textures, e.resources.Shaders))
	default:
		e.scene.SetSkybox(views.NewSkyboxTiled(e.resources.Textures, e.resources.Shaders, sc.Skybox))
	}
	for _, m := range sc.Models {
		e.scene.LoadModel(m)
	}
	if err := e.scene.Attach(); err != nil {
		return err
	}

	if e.config.Assets.Watch {
		if err := e.assetManager.Watch(); err != nil {
			core.LogWarn("not watching assets: %s", err)
		}
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) createBackend() (renderer.Backend, error) {
	kind, err := renderer.ParseRendererType(e.config.Renderer.Backend)
	if err != nil {
		return nil, err
	}
	if kind == renderer.Headless {
		return headless.New(), nil
	}

	e.platform = platform.New(e.events, e.input)
	w := e.config.Window
	if err := e.platform.Startup(w.Name, w.X, w.Y, w.Width, w.Height); err != nil {
		return nil, err
	}
	// The framebuffer can be larger than the window on high DPI displays.
	e.width, e.height = e.platform.FramebufferSize()
	return opengl.New()
}

// Run loops until the window closes or a quit event arrives.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine is not initialized")
	}
	if e.platform == nil {
		return fmt.Errorf("the %s backend has no window to run, drive it with Frame", e.renderer.Backend().Name())
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true
	e.clock.Start()
	e.lastTime = e.clock.Elapsed()

	for e.isRunning {
		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}
		if e.isSuspended {
			continue
		}
		e.Frame()
		e.platform.SwapBuffers()
	}
	return nil
}

/**
 * @brief Runs one frame: applies pending asset changes, moves the camera,
 * updates and draws the scene.
 */
func (e *Engine) Frame() {
	e.clock.Update()
	currentTime := e.clock.Elapsed()
	delta := currentTime - e.lastTime

	e.drainAssetEvents()
	e.loadSettledModels()
	e.moveCamera(delta)
	if err := e.scene.Update(delta); err != nil {
		core.LogError("%s", err)
	}

	e.renderer.BeginFrame()
	e.scene.Draw()

	// Input state copying must come after everything reading this frame's input.
	e.input.Update(delta)

	e.clock.Update()
	e.metrics.Update(e.clock.Elapsed() - currentTime)
	e.frames++
	if e.frames%metricsInterval == 0 {
		core.LogDebug("fps %.0f, frame time %.2fms", e.metrics.FPS(), e.metrics.FrameTime())
	}
	e.lastTime = currentTime
}

func (e *Engine) drainAssetEvents() {
	for {
		select {
		case ev, ok := <-e.assetManager.Events():
			if !ok {
				return
			}
			e.handleAssetEvent(ev)
		default:
			return
		}
	}
}

/**
 * @brief New model files are loaded into the scene once no write touched
 * them for modelSettleDelay. Edited shaders are re-read and every object
 * using them is rebuilt.
 */
func (e *Engine) handleAssetEvent(ev assets.AssetEvent) {
	rel := e.assetPath(ev.Path)
	switch ev.Type {
	case metadata.ResourceTypeModel:
		_, pending := e.settling[rel]
		switch {
		case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
			delete(e.settling, rel)
		case ev.Op.Has(fsnotify.Create) || (pending && ev.Op.Has(fsnotify.Write)):
			e.settling[rel] = e.now()
		}
	case metadata.ResourceTypeShader:
		if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
			e.resources.Shaders.Invalidate(rel)
			if n := e.scene.ReloadShaders(rel); n > 0 {
				core.LogInfo("reloaded '%s' for %d objects", rel, n)
			}
		}
	}
}

// loadSettledModels queues the new model files that stopped changing.
func (e *Engine) loadSettledModels() {
	now := e.now()
	for rel, last := range e.settling {
		if now.Sub(last) < modelSettleDelay {
			continue
		}
		delete(e.settling, rel)
		core.LogInfo("loading new model '%s'", rel)
		e.scene.LoadModel(rel)
	}
}

// assetPath returns p relative to the assets directory, the form objects
// refer to files by.
func (e *Engine) assetPath(p string) string {
	dir := e.assetManager.AssetsDir()
	if dir == "" {
		return p
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return p
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	rel, err := filepath.Rel(absDir, absPath)
	if err != nil {
		return p
	}
	return filepath.ToSlash(rel)
}

func (e *Engine) moveCamera(delta float64) {
	camera := e.scene.Camera()
	step := e.config.Camera.MoveSpeed * float32(delta)
	moves := []struct {
		key  core.KeyCode
		move func(float32)
	}{
		{core.KEY_W, camera.MoveForward},
		{core.KEY_UP, camera.MoveForward},
		{core.KEY_S, camera.MoveBackward},
		{core.KEY_DOWN, camera.MoveBackward},
		{core.KEY_A, camera.MoveLeft},
		{core.KEY_LEFT, camera.MoveLeft},
		{core.KEY_D, camera.MoveRight},
		{core.KEY_RIGHT, camera.MoveRight},
		{core.KEY_E, camera.MoveUp},
		{core.KEY_Q, camera.MoveDown},
	}
	for _, m := range moves {
		if e.input.IsKeyDown(m.key) {
			m.move(step)
		}
	}

	if e.input.IsButtonDown(core.BUTTON_RIGHT) {
		dx, dy := e.input.MouseDelta()
		camera.Yaw(-float32(dx) * e.config.Camera.LookSpeed)
		camera.Pitch(-float32(dy) * e.config.Camera.LookSpeed)
	}
}

func (e *Engine) Shutdown() error {
	if e.currentStage == EngineStageShuttingDown {
		return nil
	}
	e.currentStage = EngineStageShuttingDown
	e.isRunning = false

	if e.scene != nil {
		e.scene.Destroy()
	}
	if e.game.FnShutdown != nil {
		if err := e.game.FnShutdown(); err != nil {
			core.LogError("game shutdown: %s", err)
		}
	}
	if err := e.assetManager.Close(); err != nil {
		core.LogError("%s", err)
	}
	if err := e.jobSystem.Shutdown(); err != nil {
		core.LogError("%s", err)
	}
	e.events.Shutdown()
	if e.platform != nil {
		return e.platform.Shutdown()
	}
	return nil
}

func (e *Engine) Scene() *scene.Scene {
	return e.scene
}

func (e *Engine) Resources() *scene.Resources {
	return e.resources
}

func (e *Engine) Input() *core.InputState {
	return e.input
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

func (e *Engine) onEvent(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	if code == core.EVENT_CODE_APPLICATION_QUIT {
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	switch core.KeyCode(data.Data.U16[0]) {
	case core.KEY_ESCAPE:
		// NOTE: firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, e, core.EventContext{})
		return true
	case core.KEY_P:
		e.scene.SetPause(!e.scene.IsPaused())
		core.LogInfo("scene '%s' paused: %t", e.scene.GetSceneName(), e.scene.IsPaused())
		return true
	case core.KEY_R:
		e.scene.Camera().Reset()
		return true
	}
	return false
}

func (e *Engine) onResized(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	width, height := data.Data.U32[0], data.Data.U32[1]
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("window resize: %d, %d", width, height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application")
		e.isSuspended = false
	}
	e.renderer.OnResize(width, height)
	e.scene.Resize(int(width), int(height))
	if e.game.FnOnResize != nil {
		if err := e.game.FnOnResize(width, height); err != nil {
			core.LogError("game resize: %s", err)
		}
	}
	return false
}
