package views

import (
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
	"github.com/spaghettifunk/qtk/engine/systems"
)

const (
	SkyboxVertexShader   = ":/shaders/skybox.vert"
	SkyboxFragmentShader = ":/shaders/skybox.frag"

	skyboxProjectionUniform = "uProjectionMatrix"
	skyboxViewUniform       = "uViewMatrix"
	skyboxTextureUniform    = "uTexture"
)

/** @brief Faces of the builtin skybox, in right, top, front, left, bottom, back order. */
var DefaultSkyboxFaces = [6]string{
	":/textures/skybox/right.png",
	":/textures/skybox/top.png",
	":/textures/skybox/front.png",
	":/textures/skybox/left.png",
	":/textures/skybox/bottom.png",
	":/textures/skybox/back.png",
}

/**
 * @brief A cube map drawn behind everything else. It is drawn with depth
 * writes disabled and the camera translation removed, so it never occludes
 * scene geometry and never moves relative to the eye.
 */
type Skybox struct {
	backend  renderer.Backend
	textures *systems.TextureSystem
	shaders  *systems.ShaderSystem

	texture    *metadata.Texture
	ownTexture bool

	program    metadata.Program
	vao        metadata.VertexArray
	vbo        metadata.Buffer
	ebo        metadata.Buffer
	indexCount int32
}

// NewSkybox loads a cube map from six face images.
func NewSkybox(ts *systems.TextureSystem, ss *systems.ShaderSystem, right, top, front, left, bottom, back string) *Skybox {
	return newSkybox(ts, ss, ts.InitCubeMap(right, top, front, left, bottom, back), true)
}

// NewSkyboxTiled uses the same image on every face.
func NewSkyboxTiled(ts *systems.TextureSystem, ss *systems.ShaderSystem, path string) *Skybox {
	return newSkybox(ts, ss, ts.InitCubeMapTiled(path), true)
}

// NewSkyboxFromTexture wraps an existing cube map. The skybox does not destroy it.
func NewSkyboxFromTexture(ts *systems.TextureSystem, ss *systems.ShaderSystem, cubeMap *metadata.Texture) *Skybox {
	return newSkybox(ts, ss, cubeMap, false)
}

// NewDefaultSkybox uses the cube map compiled into the binary.
func NewDefaultSkybox(ts *systems.TextureSystem, ss *systems.ShaderSystem) *Skybox {
	f := DefaultSkyboxFaces
	return NewSkybox(ts, ss, f[0], f[1], f[2], f[3], f[4], f[5])
}

func newSkybox(ts *systems.TextureSystem, ss *systems.ShaderSystem, cubeMap *metadata.Texture, own bool) *Skybox {
	sb := &Skybox{
		backend:    ts.Backend(),
		textures:   ts,
		shaders:    ss,
		texture:    cubeMap,
		ownTexture: own,
	}
	if cubeMap != nil && cubeMap.TextureType != metadata.TextureTypeCube {
		core.LogWarn("skybox texture '%s' is not a cube map", cubeMap.Name)
	}
	sb.init()
	return sb
}

func (sb *Skybox) init() {
	program, err := sb.shaders.Program(SkyboxVertexShader, SkyboxFragmentShader)
	if err != nil {
		core.LogError("skybox disabled: %s", err)
	}
	sb.program = program

	cube := systems.NewCube(metadata.DrawElements)
	positions := math.FlattenVec3(cube.Vertices)
	sb.indexCount = int32(len(cube.Indices))

	b := sb.backend
	sb.vao = b.CreateVertexArray()
	b.BindVertexArray(sb.vao)

	sb.vbo = b.CreateBuffer(metadata.BufferTargetArray)
	b.BindBuffer(metadata.BufferTargetArray, sb.vbo)
	b.AllocateBuffer(metadata.BufferTargetArray, len(positions)*renderer.ElementSize)
	b.WriteBuffer(metadata.BufferTargetArray, 0, positions)
	b.EnableAttribute(0)
	b.AttributePointer(0, 3, 0, 0)

	sb.ebo = b.CreateBuffer(metadata.BufferTargetElementArray)
	b.BindBuffer(metadata.BufferTargetElementArray, sb.ebo)
	b.AllocateBuffer(metadata.BufferTargetElementArray, len(cube.Indices)*renderer.ElementSize)
	b.WriteBuffer(metadata.BufferTargetElementArray, 0, cube.Indices)

	b.BindVertexArray(0)
	b.BindBuffer(metadata.BufferTargetArray, 0)
}

func (sb *Skybox) Texture() *metadata.Texture {
	return sb.texture
}

func (sb *Skybox) Program() metadata.Program {
	return sb.program
}

/**
 * @brief Draws the skybox. The depth function is LEQUAL and depth writes are
 * off for the duration of the draw; both are restored to LESS / on afterwards.
 */
func (sb *Skybox) Draw(view, projection math.Mat4) {
	if sb.program == 0 || sb.texture == nil {
		return
	}
	b := sb.backend
	b.SetDepthFunc(metadata.DepthFuncLessEqual)
	b.SetDepthMask(false)

	scope := renderer.NewShaderBindScope(b, sb.program)
	for name, value := range map[string]interface{}{
		skyboxProjectionUniform: projection,
		skyboxViewUniform:       view.WithoutTranslation(),
		skyboxTextureUniform:    int32(0),
	} {
		if err := b.SetUniform(sb.program, name, value); err != nil {
			core.LogWarn("skybox: %s", err)
		}
	}

	b.BindVertexArray(sb.vao)
	b.ActiveTexture(0)
	b.BindTexture(metadata.TextureTypeCube, sb.texture.Handle)
	b.DrawElements(metadata.PrimitiveTriangles, sb.indexCount)
	b.BindTexture(metadata.TextureTypeCube, 0)
	b.BindVertexArray(0)
	scope.Release()

	b.SetDepthFunc(metadata.DepthFuncLess)
	b.SetDepthMask(true)
}

func (sb *Skybox) Destroy() {
	b := sb.backend
	if sb.vao != 0 {
		b.DestroyVertexArray(sb.vao)
		sb.vao = 0
	}
	if sb.vbo != 0 {
		b.DestroyBuffer(sb.vbo)
		sb.vbo = 0
	}
	if sb.ebo != 0 {
		b.DestroyBuffer(sb.ebo)
		sb.ebo = 0
	}
	if sb.program != 0 {
		sb.shaders.Destroy(sb.program)
		sb.program = 0
	}
	if sb.ownTexture {
		sb.textures.Destroy(sb.texture)
	}
}
