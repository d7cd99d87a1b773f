package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/components"
)

type WindowConfig struct {
	// The application name used in windowing.
	Name string `toml:"name"`
	// Window starting position x axis.
	X uint32 `toml:"x"`
	// Window starting position y axis.
	Y      uint32 `toml:"y"`
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type RendererConfig struct {
	// "opengl" or "headless"
	Backend string `toml:"backend"`
	// Vertical field of view in degrees.
	FieldOfView float32 `toml:"fov"`
	Near        float32 `toml:"near"`
	Far         float32 `toml:"far"`
}

type CameraConfig struct {
	Translation   [3]float32 `toml:"translation"`
	RotationAngle float32    `toml:"rotation_angle"`
	RotationAxis  [3]float32 `toml:"rotation_axis"`
	// Units per second for keyboard movement, degrees per pixel for the mouse.
	MoveSpeed float32 `toml:"move_speed"`
	LookSpeed float32 `toml:"look_speed"`
}

type AssetsConfig struct {
	Dir string `toml:"dir"`
	// Watch the directory and reload models and shaders on change.
	Watch bool `toml:"watch"`
}

type SceneConfig struct {
	Name string `toml:"name"`
	// "default", "none" or a single image used on all six faces.
	Skybox string `toml:"skybox"`
	// Model files loaded when the scene starts.
	Models []string `toml:"models"`
}

/**
 * @brief Everything the engine needs to start, usually read from a TOML file.
 */
type ApplicationConfig struct {
	Window   WindowConfig   `toml:"window"`
	Log      LogConfig      `toml:"log"`
	Renderer RendererConfig `toml:"renderer"`
	Camera   CameraConfig   `toml:"camera"`
	Assets   AssetsConfig   `toml:"assets"`
	Scene    SceneConfig    `toml:"scene"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	defaults := components.DefaultCameraDefaults()
	return &ApplicationConfig{
		Window: WindowConfig{
			Name:   "Qtk",
			X:      100,
			Y:      100,
			Width:  1280,
			Height: 720,
		},
		Log: LogConfig{Level: "info"},
		Renderer: RendererConfig{
			Backend:     "opengl",
			FieldOfView: 45,
			Near:        0.1,
			Far:         1000,
		},
		Camera: CameraConfig{
			Translation:   [3]float32{defaults.Translation.X, defaults.Translation.Y, defaults.Translation.Z},
			RotationAngle: defaults.RotationAngle,
			RotationAxis:  [3]float32{defaults.RotationAxis.X, defaults.RotationAxis.Y, defaults.RotationAxis.Z},
			MoveSpeed:     10,
			LookSpeed:     0.1,
		},
		Assets: AssetsConfig{Dir: "assets", Watch: true},
		Scene: SceneConfig{
			Name:   "Main",
			Skybox: "default",
		},
	}
}

/**
 * @brief Reads the TOML file at path over the defaults. Keys missing from the
 * file keep their default value. A missing file yields the defaults.
 */
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	config := DefaultApplicationConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("config file '%s' not found, using defaults", path)
		return config, nil
	}
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config file '%s': %w", path, err)
	}
	return config, nil
}

// Validate rejects values the engine cannot start with.
func (c *ApplicationConfig) Validate() error {
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("window size %dx%d is empty", c.Window.Width, c.Window.Height)
	}
	if c.Renderer.Near <= 0 || c.Renderer.Far <= c.Renderer.Near {
		return fmt.Errorf("clip planes near=%g far=%g are invalid", c.Renderer.Near, c.Renderer.Far)
	}
	if c.Renderer.FieldOfView <= 0 || c.Renderer.FieldOfView >= 180 {
		return fmt.Errorf("field of view %g is out of range", c.Renderer.FieldOfView)
	}
	return nil
}

// CameraDefaults converts the camera section for components.NewCameraWithDefaults.
func (c *ApplicationConfig) CameraDefaults() components.CameraDefaults {
	t, a := c.Camera.Translation, c.Camera.RotationAxis
	return components.CameraDefaults{
		Translation:   math.NewVec3(t[0], t[1], t[2]),
		RotationAngle: c.Camera.RotationAngle,
		RotationAxis:  math.NewVec3(a[0], a[1], a[2]),
	}
}

func (c *ApplicationConfig) LogLevel() core.LogLevel {
	return core.ParseLogLevel(c.Log.Level)
}
