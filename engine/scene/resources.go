package scene

import (
	"github.com/spaghettifunk/qtk/engine/assets"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/components"
	"github.com/spaghettifunk/qtk/engine/systems"
)

/**
 * @brief The collaborators every renderable needs: the GPU backend, asset
 * resolution, and the texture and shader factories. A Scene hands a copy
 * carrying its own camera to the objects it creates.
 */
type Resources struct {
	Backend  renderer.Backend
	Assets   *assets.AssetManager
	Textures *systems.TextureSystem
	Shaders  *systems.ShaderSystem
	// Camera is the eye of the owning scene. May be nil outside a scene.
	Camera *components.Camera
}

// NewResources wires the texture and shader systems on top of backend.
// js may be nil.
func NewResources(backend renderer.Backend, am *assets.AssetManager, js *systems.JobSystem) *Resources {
	return &Resources{
		Backend:  backend,
		Assets:   am,
		Textures: systems.NewTextureSystem(backend, am, js),
		Shaders:  systems.NewShaderSystem(backend, am),
	}
}

func (r *Resources) withCamera(camera *components.Camera) *Resources {
	out := *r
	out.Camera = camera
	return &out
}

func (r *Resources) eye() math.Vec3 {
	if r.Camera == nil {
		return math.NewVec3Zero()
	}
	return r.Camera.GetTranslation()
}
