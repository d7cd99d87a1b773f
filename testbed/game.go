package testbed

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/spaghettifunk/qtk/engine"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
	"github.com/spaghettifunk/qtk/engine/scene"
	"github.com/spaghettifunk/qtk/engine/systems"
)

const (
	spinDegreesPerSecond float32 = 45
	bobHeight            float32 = 2
	bobSeconds           float32 = 1.5
)

/**
 * @brief The example scene: a few procedural shapes, spinning and bobbing,
 * next to whatever models the configuration lists.
 */
type TestScene struct {
	scene.BaseBehaviour

	spinning []*scene.MeshRenderer
	bobbing  *scene.MeshRenderer
	bob      *gween.Tween
	bobUp    bool
}

func NewTestGame(config *engine.ApplicationConfig) *engine.Game {
	return &engine.Game{
		ApplicationConfig: config,
		Behaviour:         &TestScene{},
		Listeners: map[core.SystemEventCode]core.FnOnEvent{
			core.EVENT_CODE_SCENE_UPDATED: onSceneUpdated,
		},
	}
}

func (ts *TestScene) Init(s *scene.Scene) error {
	core.LogDebug("testbed scene init")
	res := s.Resources()

	colored, err := s.AddMeshRenderer(scene.NewMeshRenderer(res, "Cube", systems.NewCube(metadata.DrawArrays)))
	if err != nil {
		return err
	}
	colored.Transform().SetTranslation(math.NewVec3(-4, 0, 0))

	indexed, err := s.AddMeshRenderer(scene.NewMeshRenderer(res, "Cube", systems.NewCube(metadata.DrawElements)))
	if err != nil {
		return err
	}
	indexed.Transform().SetTranslation(math.NewVec3(4, 0, 0))
	indexed.SetColor(math.NewVec3(0.2, 0.4, 0.9))

	textured, err := s.AddMeshRenderer(scene.NewMeshRenderer(res, "Crate", systems.NewCube(metadata.DrawElementsNormals)))
	if err != nil {
		return err
	}
	textured.SetShaders(":/shaders/texture2d.vert", ":/shaders/texture2d.frag")
	textured.ReallocateTexCoords(textured.GetTexCoords(), 2)
	textured.SetTexture(":/textures/skybox/front.png", false, true)
	textured.Transform().SetTranslation(math.NewVec3(0, 0, -4))

	triangle, err := s.AddMeshRenderer(scene.NewMeshRenderer(res, "Triangle", systems.NewTriangle(metadata.DrawArrays)))
	if err != nil {
		return err
	}
	triangle.Transform().SetTranslation(math.NewVec3(0, 3, 0))

	floor, err := s.AddMeshRenderer(scene.NewMeshRenderer(res, "Floor", systems.NewPlane(20, 20, 4, 4, 1, 1)))
	if err != nil {
		return err
	}
	floor.SetColor(math.NewVec3(0.3, 0.3, 0.3))
	floor.Transform().SetTranslation(math.NewVec3(0, -2, 0))

	ts.spinning = []*scene.MeshRenderer{colored, indexed, textured}
	ts.bobbing = triangle
	ts.bob = gween.New(0, bobHeight, bobSeconds, ease.InOutQuad)
	ts.bobUp = true
	return nil
}

func (ts *TestScene) Update(s *scene.Scene, deltaTime float64) {
	dt := float32(deltaTime)
	for _, m := range ts.spinning {
		m.Transform().RotateAxisAngle(spinDegreesPerSecond*dt, math.NewVec3(0, 1, 0))
	}

	offset, finished := ts.bob.Update(dt)
	if !ts.bobUp {
		offset = bobHeight - offset
	}
	if finished {
		ts.bob.Reset()
		ts.bobUp = !ts.bobUp
	}
	t := ts.bobbing.Transform().GetTranslation()
	ts.bobbing.Transform().SetTranslation(math.NewVec3(t.X, 3+offset, t.Z))
}

func onSceneUpdated(code core.SystemEventCode, sender, listener interface{}, data core.EventContext) bool {
	core.LogDebug("scene '%s' updated: %s", data.Data.C[0], data.Data.C[1])
	return false
}
