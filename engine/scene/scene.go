package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/qtk/engine/containers"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/components"
	"github.com/spaghettifunk/qtk/engine/renderer/views"
)

const (
	DefaultFieldOfView float32 = 45
	DefaultNearClip    float32 = 0.1
	DefaultFarClip     float32 = 1000
	DefaultWidth       int     = 800
	DefaultHeight      int     = 600
)

/**
 * @brief The hooks a scene is built with. Init runs once, the first time the
 * scene is attached, with the GPU context current. Update runs every frame.
 */
type Behaviour interface {
	Init(s *Scene) error
	Update(s *Scene, deltaTime float64)
}

// BaseBehaviour implements Behaviour with no-ops. Embed it to override only
// the hooks you need.
type BaseBehaviour struct{}

func (BaseBehaviour) Init(*Scene) error { return nil }

func (BaseBehaviour) Update(*Scene, float64) {}

type modelLoad struct {
	name string
	path string
}

type Option func(*Scene)

// WithCamera sets the pose the scene camera starts from and resets to.
func WithCamera(defaults components.CameraDefaults) Option {
	return func(s *Scene) {
		s.cameraDefaults = defaults
	}
}

// WithProjection sets the perspective parameters, fov in degrees.
func WithProjection(fov, near, far float32) Option {
	return func(s *Scene) {
		s.fov, s.near, s.far = fov, near, far
	}
}

// WithSize sets the initial viewport size used for the aspect ratio.
func WithSize(width, height int) Option {
	return func(s *Scene) {
		s.width, s.height = width, height
	}
}

/**
 * @brief A drawable collection of meshes and models sharing a camera, a
 * projection and an optional skybox.
 *
 * Object names are unique within a scene: adding an object whose name is
 * taken appends " (N)", N being how many objects have asked for that name.
 * Everything here runs on the thread owning the GPU context.
 */
type Scene struct {
	name      string
	res       *Resources
	behaviour Behaviour
	events    *core.EventSystem

	cameraDefaults components.CameraDefaults
	camera         *components.Camera
	projection     math.Mat4
	fov            float32
	near           float32
	far            float32
	width          int
	height         int

	skybox *views.Skybox
	meshes []*MeshRenderer
	models []*Model
	// renderables that are neither meshes nor models, drawn last
	extras []Renderable

	counts   map[string]int
	registry *Registry
	loads    *containers.RingQueue[modelLoad]

	paused   bool
	attached bool
}

/**
 * @brief Creates a scene. The behaviour may be nil, events may be nil when
 * nobody observes scene changes. Nothing touches the GPU until Attach.
 */
func New(name string, res *Resources, behaviour Behaviour, events *core.EventSystem, opts ...Option) *Scene {
	if behaviour == nil {
		behaviour = BaseBehaviour{}
	}
	s := &Scene{
		name:           name,
		behaviour:      behaviour,
		events:         events,
		cameraDefaults: components.DefaultCameraDefaults(),
		fov:            DefaultFieldOfView,
		near:           DefaultNearClip,
		far:            DefaultFarClip,
		width:          DefaultWidth,
		height:         DefaultHeight,
		counts:         make(map[string]int),
		registry:       NewRegistry(),
		loads:          containers.NewRingQueue[modelLoad](4),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.camera = components.NewCameraWithDefaults(s.cameraDefaults)
	s.res = res.withCamera(s.camera)
	s.updateProjection()
	return s
}

// Resources returns the collaborators objects of this scene are built with.
func (s *Scene) Resources() *Resources {
	return s.res
}

/**
 * @brief Runs the behaviour's Init once. Later calls do nothing. The scene
 * counts as attached even when Init fails.
 */
func (s *Scene) Attach() error {
	if s.attached {
		return nil
	}
	s.attached = true
	if err := s.behaviour.Init(s); err != nil {
		return fmt.Errorf("scene '%s' init: %w", s.name, err)
	}
	core.LogDebug("scene '%s' attached", s.name)
	return nil
}

func (s *Scene) IsAttached() bool {
	return s.attached
}

/**
 * @brief Draws one frame: attaches if needed, performs pending model loads,
 * then unless paused draws the skybox, the models and the meshes in the order
 * they were added.
 */
func (s *Scene) Draw() {
	if !s.attached {
		if err := s.Attach(); err != nil {
			core.LogError("%s", err)
		}
	}
	s.drainModelLoads()
	if s.paused {
		return
	}

	view := s.GetViewMatrix()
	if s.skybox != nil {
		s.skybox.Draw(view, s.projection)
	}
	for _, m := range s.models {
		m.Draw(view, s.projection)
	}
	for _, m := range s.meshes {
		m.Draw(view, s.projection)
	}
	for _, r := range s.extras {
		r.Draw(view, s.projection)
	}
}

// Update forwards to the behaviour. A scene that was never attached is not
// updated.
func (s *Scene) Update(deltaTime float64) error {
	if !s.attached {
		return fmt.Errorf("scene '%s': %w", s.name, core.ErrSceneNotAttached)
	}
	s.behaviour.Update(s, deltaTime)
	return nil
}

func (s *Scene) drainModelLoads() {
	for !s.loads.IsEmpty() {
		load, err := s.loads.Dequeue()
		if err != nil {
			return
		}
		if _, err := s.AddModel(NewModel(s.res, load.name, load.path)); err != nil {
			core.LogError("scene '%s': %s", s.name, err)
		}
	}
}

// uniqueName returns name, or name suffixed with " (N)" when an object with
// that name was already added.
func (s *Scene) uniqueName(name string) string {
	s.counts[name]++
	candidate := name
	if s.counts[name] > 1 {
		candidate = fmt.Sprintf("%s (%d)", name, s.counts[name])
	}
	for s.registry.Has(candidate) || s.findExtra(candidate) >= 0 {
		s.counts[name]++
		candidate = fmt.Sprintf("%s (%d)", name, s.counts[name])
	}
	return candidate
}

// adopt names o uniquely within the scene and makes the scene its owner.
func (s *Scene) adopt(o *Object) {
	o.name = s.uniqueName(o.name)
	o.owner = s
}

func (s *Scene) AddMeshRenderer(m *MeshRenderer) (*MeshRenderer, error) {
	if m.owner != nil {
		return nil, fmt.Errorf("mesh '%s' already belongs to scene '%s': %w", m.Name(), m.owner.name, core.ErrDuplicateObjectName)
	}
	s.adopt(m.Object)
	if err := s.registry.RegisterMesh(m); err != nil {
		m.owner = nil
		return nil, err
	}
	s.meshes = append(s.meshes, m)
	s.fireUpdated(m.Name())
	return m, nil
}

func (s *Scene) AddModel(m *Model) (*Model, error) {
	if m.owner != nil {
		return nil, fmt.Errorf("model '%s' already belongs to scene '%s': %w", m.Name(), m.owner.name, core.ErrDuplicateObjectName)
	}
	s.adopt(m.Object)
	if err := s.registry.RegisterModel(m); err != nil {
		m.owner = nil
		return nil, err
	}
	s.models = append(s.models, m)
	s.fireUpdated(m.Name())
	return m, nil
}

/**
 * @brief Adds any renderable. Meshes and models go through AddMeshRenderer and
 * AddModel; other renderables are drawn after them and are not registered.
 */
func (s *Scene) AddObject(r Renderable) (Renderable, error) {
	switch obj := r.(type) {
	case *MeshRenderer:
		return s.AddMeshRenderer(obj)
	case *Model:
		return s.AddModel(obj)
	default:
		if r.Base().owner != nil {
			return nil, fmt.Errorf("object '%s' already belongs to scene '%s': %w", r.Base().Name(), r.Base().owner.name, core.ErrDuplicateObjectName)
		}
		s.adopt(r.Base())
		s.extras = append(s.extras, r)
		s.fireUpdated(r.Base().Name())
		return r, nil
	}
}

func (s *Scene) fireUpdated(object string) {
	if s.events == nil {
		return
	}
	ctx := core.EventContext{}
	ctx.Data.C[0] = s.name
	ctx.Data.C[1] = object
	s.events.Fire(core.EVENT_CODE_SCENE_UPDATED, s, ctx)
}

func (s *Scene) findExtra(name string) int {
	return slices.IndexFunc(s.extras, func(r Renderable) bool {
		return r.Base().Name() == name
	})
}

// GetObject scans meshes, then models, then other renderables. Returns nil
// if nothing is named name.
func (s *Scene) GetObject(name string) Renderable {
	for _, m := range s.meshes {
		if m.Name() == name {
			return m
		}
	}
	for _, m := range s.models {
		if m.Name() == name {
			return m
		}
	}
	if i := s.findExtra(name); i >= 0 {
		return s.extras[i]
	}
	return nil
}

// GetObjects returns every object in scan order.
func (s *Scene) GetObjects() []Renderable {
	out := make([]Renderable, 0, len(s.meshes)+len(s.models)+len(s.extras))
	for _, m := range s.meshes {
		out = append(out, m)
	}
	for _, m := range s.models {
		out = append(out, m)
	}
	return append(out, s.extras...)
}

// ObjectNames lists the registered meshes and models by name, sorted.
func (s *Scene) ObjectNames() []string {
	return s.registry.Names()
}

// GetObjectCount returns how many objects were added asking for name.
func (s *Scene) GetObjectCount(name string) int {
	return s.counts[name]
}

func (s *Scene) GetMeshRenderer(name string) *MeshRenderer {
	return s.registry.Mesh(name)
}

func (s *Scene) GetModel(name string) *Model {
	return s.registry.Model(name)
}

func (s *Scene) Meshes() []*MeshRenderer {
	return s.meshes
}

func (s *Scene) Models() []*Model {
	return s.models
}

/**
 * @brief Destroys and forgets the object named name. The name's count is
 * kept, so adding the same name again still gets a suffix.
 */
func (s *Scene) RemoveObject(name string) bool {
	var removed Renderable
	if i := slices.IndexFunc(s.meshes, func(m *MeshRenderer) bool { return m.Name() == name }); i >= 0 {
		removed = s.meshes[i]
		s.meshes = slices.Delete(s.meshes, i, i+1)
	} else if i := slices.IndexFunc(s.models, func(m *Model) bool { return m.Name() == name }); i >= 0 {
		removed = s.models[i]
		s.models = slices.Delete(s.models, i, i+1)
	} else if i := s.findExtra(name); i >= 0 {
		removed = s.extras[i]
		s.extras = slices.Delete(s.extras, i, i+1)
	}
	if removed == nil {
		return false
	}
	s.registry.Unregister(name)
	removed.Base().owner = nil
	removed.Destroy()
	s.fireUpdated(name)
	return true
}

/**
 * @brief Renames the object called old. The new name goes through the same
 * disambiguation as an add, and the resolved name is returned. Returns false
 * if no object is called old.
 */
func (s *Scene) RenameObject(old, name string) (string, bool) {
	r := s.GetObject(old)
	if r == nil {
		return "", false
	}
	if old == name {
		return old, true
	}
	o := r.Base()
	s.registry.Unregister(old)
	o.name = s.uniqueName(name)
	switch obj := r.(type) {
	case *MeshRenderer:
		_ = s.registry.RegisterMesh(obj)
	case *Model:
		_ = s.registry.RegisterModel(obj)
	}
	s.fireUpdated(o.name)
	return o.name, true
}

/**
 * @brief Queues the model at path to be loaded on the next Draw. The object
 * is named after the file without its extension.
 */
func (s *Scene) LoadModel(path string) {
	base := filepath.Base(path)
	s.LoadModelNamed(strings.TrimSuffix(base, filepath.Ext(base)), path)
}

func (s *Scene) LoadModelNamed(name, path string) {
	s.loads.Enqueue(modelLoad{name: name, path: path})
}

// PendingModelLoads returns how many queued loads the next Draw will perform.
func (s *Scene) PendingModelLoads() int {
	return s.loads.Len()
}

// SetSkybox replaces the skybox. The previous one is destroyed.
func (s *Scene) SetSkybox(sb *views.Skybox) {
	if s.skybox != nil && s.skybox != sb {
		s.skybox.Destroy()
	}
	s.skybox = sb
}

func (s *Scene) Skybox() *views.Skybox {
	return s.skybox
}

func (s *Scene) SetPause(paused bool) {
	s.paused = paused
}

func (s *Scene) IsPaused() bool {
	return s.paused
}

func (s *Scene) SetSceneName(name string) {
	s.name = name
}

func (s *Scene) GetSceneName() string {
	return s.name
}

func (s *Scene) Camera() *components.Camera {
	return s.camera
}

func (s *Scene) GetViewMatrix() math.Mat4 {
	return s.camera.ToMatrix()
}

func (s *Scene) GetProjectionMatrix() math.Mat4 {
	return s.projection
}

// SetProjectionMatrix overrides the projection until the next Resize.
func (s *Scene) SetProjectionMatrix(projection math.Mat4) {
	s.projection = projection
}

// Resize recomputes the perspective projection for a width x height viewport.
func (s *Scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	s.updateProjection()
}

func (s *Scene) updateProjection() {
	aspect := float32(s.width) / float32(s.height)
	s.projection = math.NewMat4Perspective(math.DegToRad(s.fov), aspect, s.near, s.far)
}

/**
 * @brief Rebuilds the program of every object using the shader file at path.
 * The shader cache entry must already be invalidated. Returns how many
 * objects were rebuilt.
 */
func (s *Scene) ReloadShaders(path string) int {
	n := 0
	for _, m := range s.meshes {
		if m.VertexShader() == path || m.FragmentShader() == path {
			m.Init()
			n++
		}
	}
	for _, m := range s.models {
		if m.VertexShader() == path || m.FragmentShader() == path {
			m.SetShaders(m.VertexShader(), m.FragmentShader())
			n++
		}
	}
	return n
}

// Destroy releases every object and the skybox. The scene is empty afterwards.
func (s *Scene) Destroy() {
	for _, r := range s.GetObjects() {
		r.Base().owner = nil
		r.Destroy()
	}
	if s.skybox != nil {
		s.skybox.Destroy()
		s.skybox = nil
	}
	s.meshes, s.models, s.extras = nil, nil, nil
	s.registry = NewRegistry()
}
