package scene

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/qtk/engine/assets"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/components"
	"github.com/spaghettifunk/qtk/engine/renderer/headless"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
	"github.com/spaghettifunk/qtk/engine/renderer/views"
	"github.com/spaghettifunk/qtk/engine/systems"
)

const quadsOBJ = `mtllib quads.mtl
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 2 0 0
v 2 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl brick
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl metal
f 2/1/1 5/2/1 6/3/1 3/4/1
`

const quadsMTL = `newmtl brick
Kd 1.0 0.5 0.25
map_Kd textures/brick.png
newmtl metal
map_Ks metal_spec.png
map_Bump metal_normal.png
`

func writePNG(t *testing.T, path string, w, h int) {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.Set(0, 0, color.NRGBA{R: 10, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// newTestResources returns resources over a headless backend and a temporary
// assets directory holding a two-part model.
func newTestResources(t *testing.T) (*Resources, *headless.Backend, string) {
	dir := t.TempDir()
	models := filepath.Join(dir, "models")
	require.NoError(t, os.MkdirAll(models, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(models, "quads.obj"), []byte(quadsOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(models, "quads.mtl"), []byte(quadsMTL), 0o644))
	writePNG(t, filepath.Join(models, "textures", "brick.png"), 4, 4)
	writePNG(t, filepath.Join(models, "metal_spec.png"), 2, 2)
	writePNG(t, filepath.Join(models, "metal_normal.png"), 2, 2)

	js, err := systems.NewJobSystem(2, 4)
	require.NoError(t, err)
	t.Cleanup(func() { js.Shutdown() })

	backend := headless.New()
	res := NewResources(backend, assets.NewAssetManager(dir), js)
	return res, backend, dir
}

type countingBehaviour struct {
	BaseBehaviour
	inits   int
	updates []float64
	err     error
}

func (b *countingBehaviour) Init(s *Scene) error {
	b.inits++
	return b.err
}

func (b *countingBehaviour) Update(s *Scene, dt float64) {
	b.updates = append(b.updates, dt)
}

func TestAddObjectDisambiguatesNames(t *testing.T) {
	res, _, _ := newTestResources(t)
	s := New("lights", res, nil, nil)

	var names []string
	for i := 0; i < 3; i++ {
		m, err := s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "Light", nil))
		require.NoError(t, err)
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"Light", "Light (2)", "Light (3)"}, names)
	assert.Equal(t, 3, s.GetObjectCount("Light"))
	assert.Equal(t, 0, s.GetObjectCount("Box"))

	for _, n := range names {
		assert.NotNil(t, s.GetMeshRenderer(n))
		assert.NotNil(t, s.GetObject(n))
	}
	assert.Len(t, s.GetObjects(), 3)
	assert.Equal(t, names, s.ObjectNames())
	assert.Nil(t, s.GetObject("Light (4)"))
}

func TestAddObjectSkipsTakenSuffix(t *testing.T) {
	res, _, _ := newTestResources(t)
	s := New("boxes", res, nil, nil)

	_, err := s.AddObject(NewMeshRenderer(s.Resources(), "Box (2)", nil))
	require.NoError(t, err)
	_, err = s.AddObject(NewMeshRenderer(s.Resources(), "Box", nil))
	require.NoError(t, err)
	third, err := s.AddObject(NewMeshRenderer(s.Resources(), "Box", nil))
	require.NoError(t, err)

	assert.Equal(t, "Box (3)", third.Base().Name())
}

func TestRenameKeepsNamesUnique(t *testing.T) {
	res, _, _ := newTestResources(t)
	s := New("renames", res, nil, nil)

	a, err := s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "A", nil))
	require.NoError(t, err)
	a.SetName("B")
	assert.Equal(t, "B", a.Name())
	assert.Nil(t, s.GetObject("A"))
	assert.Same(t, a, s.GetMeshRenderer("B"))

	b, err := s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "B", nil))
	require.NoError(t, err)
	assert.Equal(t, "B (2)", b.Name())
	assert.Equal(t, []string{"B", "B (2)"}, s.ObjectNames())

	assert.True(t, s.RemoveObject("B"))
	assert.Equal(t, []string{"B (2)"}, s.ObjectNames())
	assert.Same(t, b, s.GetMeshRenderer("B (2)"))

	name, ok := s.RenameObject("B (2)", "C")
	assert.True(t, ok)
	assert.Equal(t, "C", name)
	assert.Same(t, b, s.GetMeshRenderer("C"))
	_, ok = s.RenameObject("missing", "D")
	assert.False(t, ok)

	// the same object cannot be added twice
	_, err = s.AddMeshRenderer(b)
	assert.ErrorIs(t, err, core.ErrDuplicateObjectName)

	// removed objects are free again and rename locally
	assert.True(t, s.RemoveObject("C"))
	b.SetName("Free")
	assert.Equal(t, "Free", b.Name())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	res, _, _ := newTestResources(t)
	r := NewRegistry()

	require.NoError(t, r.RegisterMesh(NewMeshRenderer(res, "Box", nil)))
	err := r.RegisterMesh(NewMeshRenderer(res, "Box", nil))
	assert.True(t, errors.Is(err, core.ErrDuplicateObjectName))

	err = r.RegisterModel(NewModel(res, "Box", "models/missing.obj"))
	assert.True(t, errors.Is(err, core.ErrDuplicateObjectName))

	require.NoError(t, r.RegisterModel(NewModel(res, "Asteroid", "models/missing.obj")))
	assert.Equal(t, []string{"Asteroid", "Box"}, r.Names())
	assert.True(t, r.Unregister("Asteroid"))

	assert.True(t, r.Has("Box"))
	assert.True(t, r.Unregister("Box"))
	assert.False(t, r.Unregister("Box"))
	assert.Equal(t, 0, r.Len())
}

func TestAttachRunsInitOnce(t *testing.T) {
	res, _, _ := newTestResources(t)
	b := &countingBehaviour{}
	s := New("lifecycle", res, b, nil)

	err := s.Update(0.016)
	assert.True(t, errors.Is(err, core.ErrSceneNotAttached))
	assert.Empty(t, b.updates)

	s.Draw()
	s.Draw()
	require.NoError(t, s.Attach())
	assert.Equal(t, 1, b.inits)
	assert.True(t, s.IsAttached())

	require.NoError(t, s.Update(0.5))
	assert.Equal(t, []float64{0.5}, b.updates)
}

func TestAttachReportsInitError(t *testing.T) {
	res, _, _ := newTestResources(t)
	b := &countingBehaviour{err: errors.New("boom")}
	s := New("broken", res, b, nil)

	assert.Error(t, s.Attach())
	assert.NoError(t, s.Attach())
	assert.Equal(t, 1, b.inits)
}

func TestModelLoadQueueDrainedWhilePaused(t *testing.T) {
	res, backend, _ := newTestResources(t)
	s := New("paused", res, nil, nil)
	s.SetPause(true)
	assert.True(t, s.IsPaused())

	assert.Equal(t, 0, s.PendingModelLoads())
	s.LoadModel("models/missing.obj")
	assert.Equal(t, 1, s.PendingModelLoads())

	s.Draw()
	assert.Equal(t, 0, s.PendingModelLoads())
	assert.Empty(t, backend.DrawCalls())

	// A model that failed to load is still registered, empty.
	m := s.GetModel("missing")
	require.NotNil(t, m)
	assert.Empty(t, m.Meshes())

	s.SetPause(false)
	s.Draw()
	m.Draw(s.GetViewMatrix(), s.GetProjectionMatrix())
	assert.Empty(t, backend.DrawCalls())
}

func TestDrawOrderSkyboxModelsMeshes(t *testing.T) {
	res, backend, _ := newTestResources(t)
	s := New("ordered", res, nil, nil)

	mesh, err := s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "Cube", nil))
	require.NoError(t, err)
	s.LoadModelNamed("Quads", "models/quads.obj")
	s.SetSkybox(views.NewDefaultSkybox(res.Textures, res.Shaders))

	s.Draw()
	calls := backend.DrawCalls()
	require.Len(t, calls, 4)

	assert.Equal(t, s.Skybox().Program(), calls[0].Program)
	assert.Equal(t, metadata.DepthFuncLessEqual, calls[0].DepthFunc)

	model := s.GetModel("Quads")
	require.NotNil(t, model)
	require.Len(t, model.Meshes(), 2)
	assert.Equal(t, model.Meshes()[0].Program(), calls[1].Program)
	assert.Equal(t, model.Meshes()[1].Program(), calls[2].Program)
	assert.Equal(t, metadata.DepthFuncLess, calls[1].DepthFunc)

	assert.Equal(t, mesh.Program(), calls[3].Program)
	assert.False(t, calls[3].Indexed)
	assert.Equal(t, int32(36), calls[3].Count)
}

func TestSceneUpdatedEvent(t *testing.T) {
	res, _, _ := newTestResources(t)
	events := core.NewEventSystem()
	var seen [][2]string
	events.Register(core.EVENT_CODE_SCENE_UPDATED, "observer", func(code core.SystemEventCode, sender, listener interface{}, ctx core.EventContext) bool {
		seen = append(seen, [2]string{ctx.Data.C[0], ctx.Data.C[1]})
		return true
	})

	s := New("observed", res, nil, events)
	_, err := s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "Box", nil))
	require.NoError(t, err)
	_, err = s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "Box", nil))
	require.NoError(t, err)
	assert.True(t, s.RemoveObject("Box"))
	assert.False(t, s.RemoveObject("Box"))

	assert.Equal(t, [][2]string{
		{"observed", "Box"},
		{"observed", "Box (2)"},
		{"observed", "Box"},
	}, seen)
	assert.Nil(t, s.GetMeshRenderer("Box"))
	assert.NotNil(t, s.GetMeshRenderer("Box (2)"))
}

func TestRemoveObjectReleasesResources(t *testing.T) {
	res, backend, _ := newTestResources(t)
	s := New("removal", res, nil, nil)
	_, err := s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "Box", nil))
	require.NoError(t, err)
	require.Equal(t, 1, backend.LiveVertexArrays())

	require.True(t, s.RemoveObject("Box"))
	assert.Equal(t, 0, backend.LiveVertexArrays())
	assert.Equal(t, 0, backend.LiveBuffers())
	assert.Equal(t, 0, backend.LivePrograms())
	assert.Equal(t, 1, s.GetObjectCount("Box"))
}

func TestProjectionAndResize(t *testing.T) {
	res, _, _ := newTestResources(t)
	s := New("projection", res, nil, nil, WithProjection(60, 1, 100), WithSize(400, 400))

	expected := math.NewMat4Perspective(math.DegToRad(60), 1, 1, 100)
	assert.Equal(t, expected, s.GetProjectionMatrix())

	s.Resize(800, 400)
	assert.Equal(t, math.NewMat4Perspective(math.DegToRad(60), 2, 1, 100), s.GetProjectionMatrix())

	s.Resize(0, 10)
	assert.Equal(t, math.NewMat4Perspective(math.DegToRad(60), 2, 1, 100), s.GetProjectionMatrix())

	s.SetProjectionMatrix(math.NewMat4Identity())
	assert.Equal(t, math.NewMat4Identity(), s.GetProjectionMatrix())
}

func TestScenesOwnTheirCamera(t *testing.T) {
	res, _, _ := newTestResources(t)
	a := New("a", res, nil, nil)
	b := New("b", res, nil, nil, WithCamera(components.CameraDefaults{Translation: math.NewVec3(1, 2, 3)}))

	a.Camera().Translate(math.NewVec3(5, 0, 0))
	assert.Equal(t, math.NewVec3(1, 2, 3), b.Camera().GetTranslation())
	assert.Equal(t, a.Camera(), a.Resources().Camera)
	assert.Nil(t, res.Camera)
	assert.Equal(t, b.Camera().ToMatrix(), b.GetViewMatrix())
}

func TestSceneNameAndDestroy(t *testing.T) {
	res, backend, _ := newTestResources(t)
	s := New("first", res, nil, nil)
	s.SetSceneName("second")
	assert.Equal(t, "second", s.GetSceneName())

	_, err := s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "Box", nil))
	require.NoError(t, err)
	s.SetSkybox(views.NewDefaultSkybox(res.Textures, res.Shaders))

	s.Destroy()
	assert.Empty(t, s.GetObjects())
	assert.Nil(t, s.Skybox())
	assert.Equal(t, 0, backend.LiveVertexArrays())
	assert.Equal(t, 0, backend.LiveTextures())
}

func TestReloadShadersRebuildsMatchingObjects(t *testing.T) {
	res, backend, dir := newTestResources(t)
	vert := filepath.Join(dir, "shaders", "flat.vert")
	frag := filepath.Join(dir, "shaders", "flat.frag")
	require.NoError(t, os.MkdirAll(filepath.Dir(vert), 0o755))
	require.NoError(t, os.WriteFile(vert, []byte("#version 410 core\nvoid main() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(frag, []byte("#version 410 core\nvoid main() {}\n"), 0o644))

	s := New("reload", res, nil, nil)
	m, err := s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "Flat", nil))
	require.NoError(t, err)
	_, err = s.AddMeshRenderer(NewMeshRenderer(s.Resources(), "Other", nil))
	require.NoError(t, err)
	m.SetShaders("shaders/flat.vert", "shaders/flat.frag")
	require.NotEqual(t, metadata.Program(0), m.Program())

	edited := "#version 410 core\n// edited\nvoid main() {}\n"
	require.NoError(t, os.WriteFile(frag, []byte(edited), 0o644))
	assert.True(t, res.Shaders.Invalidate("shaders/flat.frag"))
	assert.Equal(t, 1, s.ReloadShaders("shaders/flat.frag"))

	rec, ok := backend.Program(m.Program())
	require.True(t, ok)
	assert.Equal(t, edited, rec.FragmentSource)
}
