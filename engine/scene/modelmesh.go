package scene

import (
	"fmt"
	"image"
	"io/fs"

	"github.com/spaghettifunk/qtk/engine/assets/loaders"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

// Vertex layout of model meshes: position, normal, tangent, bitangent, uv.
const (
	modelVertexFloats = 14
	modelVertexStride = modelVertexFloats * renderer.ElementSize

	modelAttributePosition  uint32 = 0
	modelAttributeNormal    uint32 = 1
	modelAttributeTexCoord  uint32 = 2
	modelAttributeTangent   uint32 = 3
	modelAttributeBitangent uint32 = 4
)

const (
	uniformDiffuseColor = "uDiffuseColor"
	uniformDiffuseMaps  = "uDiffuseMaps"
)

/**
 * @brief A texture used by one or more meshes of a model. Meshes hold
 * pointers, so reloading it in place updates every mesh.
 */
type ModelTexture struct {
	Use metadata.TextureUse
	// Path relative to the model file, or a generated key for embedded images.
	Path    string
	Texture *metadata.Texture

	// where the texture came from, for reloads
	fsys     fs.FS
	name     string
	embedded *image.RGBA
}

func (mt *ModelTexture) load(flipX, flipY bool) *image.RGBA {
	if mt.embedded != nil {
		img := image.NewRGBA(mt.embedded.Bounds())
		copy(img.Pix, mt.embedded.Pix)
		loaders.FlipImage(img, flipX, flipY)
		return img
	}
	if mt.fsys == nil {
		return nil
	}
	il := &loaders.ImageLoader{}
	res, err := il.Load(mt.fsys, mt.name, &loaders.ImageParams{FlipX: flipX, FlipY: flipY})
	if err != nil {
		core.LogWarn("model texture '%s': %s", mt.Path, err)
		return nil
	}
	return res.Data.(*image.RGBA)
}

/**
 * @brief One drawable part of a Model with its own buffers, program and
 * textures.
 */
type ModelMesh struct {
	res *Resources

	name         string
	vertices     []math.ModelVertex
	indices      []uint32
	textures     []*ModelTexture
	diffuseColor math.Vec4

	program metadata.Program
	vao     metadata.VertexArray
	vbo     metadata.Buffer
	ebo     metadata.Buffer
}

func newModelMesh(res *Resources, name string, vertices []math.ModelVertex, indices []uint32, textures []*ModelTexture, diffuse math.Vec4) *ModelMesh {
	return &ModelMesh{
		res:          res,
		name:         name,
		vertices:     vertices,
		indices:      indices,
		textures:     textures,
		diffuseColor: diffuse,
	}
}

func (mm *ModelMesh) init(vertexShader, fragmentShader string) {
	program, err := mm.res.Shaders.Program(vertexShader, fragmentShader)
	if err != nil {
		core.LogError("model mesh '%s': %s", mm.name, err)
	}
	mm.program = program

	data := make([]float32, 0, len(mm.vertices)*modelVertexFloats)
	for _, v := range mm.vertices {
		data = append(data,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z,
			v.Tangent.X, v.Tangent.Y, v.Tangent.Z,
			v.Bitangent.X, v.Bitangent.Y, v.Bitangent.Z,
			v.Texcoord.X, v.Texcoord.Y,
		)
	}

	b := mm.res.Backend
	mm.vao = b.CreateVertexArray()
	b.BindVertexArray(mm.vao)

	mm.vbo = b.CreateBuffer(metadata.BufferTargetArray)
	b.BindBuffer(metadata.BufferTargetArray, mm.vbo)
	b.AllocateBuffer(metadata.BufferTargetArray, len(data)*renderer.ElementSize)
	b.WriteBuffer(metadata.BufferTargetArray, 0, data)

	mm.ebo = b.CreateBuffer(metadata.BufferTargetElementArray)
	b.BindBuffer(metadata.BufferTargetElementArray, mm.ebo)
	b.AllocateBuffer(metadata.BufferTargetElementArray, len(mm.indices)*renderer.ElementSize)
	b.WriteBuffer(metadata.BufferTargetElementArray, 0, mm.indices)

	for _, attr := range []struct {
		location   uint32
		components int32
		offset     int
	}{
		{modelAttributePosition, 3, 0},
		{modelAttributeNormal, 3, 3 * renderer.ElementSize},
		{modelAttributeTangent, 3, 6 * renderer.ElementSize},
		{modelAttributeBitangent, 3, 9 * renderer.ElementSize},
		{modelAttributeTexCoord, 2, 12 * renderer.ElementSize},
	} {
		b.EnableAttribute(attr.location)
		b.AttributePointer(attr.location, attr.components, modelVertexStride, attr.offset)
	}

	b.BindVertexArray(0)
	b.BindBuffer(metadata.BufferTargetArray, 0)
}

func (mm *ModelMesh) Name() string {
	return mm.name
}

func (mm *ModelMesh) Vertices() []math.ModelVertex {
	return mm.vertices
}

func (mm *ModelMesh) Indices() []uint32 {
	return mm.indices
}

func (mm *ModelMesh) Textures() []*ModelTexture {
	return mm.textures
}

func (mm *ModelMesh) Program() metadata.Program {
	return mm.program
}

// distanceTo returns the distance from p to the first vertex, which stands
// in for the position of the whole mesh.
func (mm *ModelMesh) distanceTo(p math.Vec3) float32 {
	if len(mm.vertices) == 0 {
		return 0
	}
	return mm.vertices[0].Position.Distance(p)
}

/**
 * @brief Draws the mesh with program. Textures are bound to sequential units
 * and exposed as texture_diffuseN, texture_specularN and texture_normalN,
 * N counting from 1 per kind. The active unit is reset to 0 afterwards.
 */
func (mm *ModelMesh) Draw(program metadata.Program, model, view, projection math.Mat4, eye math.Vec3) {
	if program == 0 || mm.vao == 0 {
		return
	}
	b := mm.res.Backend
	scope := renderer.NewShaderBindScope(b, program)
	defer scope.Release()

	counters := make(map[metadata.TextureUse]int, 3)
	for unit, t := range mm.textures {
		counters[t.Use]++
		sampler := fmt.Sprintf("%s%d", t.Use.SamplerPrefix(), counters[t.Use])
		b.ActiveTexture(uint32(unit))
		b.BindTexture(metadata.TextureType2d, t.Texture.Handle)
		mm.setUniform(program, sampler, int32(unit))
	}

	mm.setUniform(program, metadata.UniformModel, model)
	mm.setUniform(program, metadata.UniformNormalMatrix, model.NormalMatrix())
	mm.setUniform(program, metadata.UniformView, view)
	mm.setUniform(program, metadata.UniformProjection, projection)
	mm.setUniform(program, metadata.UniformCameraPosition, eye)
	mm.setUniform(program, uniformDiffuseColor, mm.diffuseColor)
	mm.setUniform(program, uniformDiffuseMaps, int32(counters[metadata.TextureUseMapDiffuse]))

	b.BindVertexArray(mm.vao)
	b.DrawElements(metadata.PrimitiveTriangles, int32(len(mm.indices)))
	b.BindVertexArray(0)

	for unit := range mm.textures {
		b.ActiveTexture(uint32(unit))
		b.BindTexture(metadata.TextureType2d, 0)
	}
	b.ActiveTexture(0)
}

func (mm *ModelMesh) setUniform(program metadata.Program, name string, value interface{}) {
	if err := mm.res.Backend.SetUniform(program, name, value); err != nil {
		core.LogWarn("model mesh '%s': %s", mm.name, err)
	}
}

// SetUniform sets a uniform on the mesh's own program.
func (mm *ModelMesh) SetUniform(name string, value interface{}) error {
	if mm.program == 0 {
		return fmt.Errorf("model mesh '%s' has no program: %w", mm.name, core.ErrInvalidHandle)
	}
	scope := renderer.NewShaderBindScope(mm.res.Backend, mm.program)
	defer scope.Release()
	return mm.res.Backend.SetUniform(mm.program, name, value)
}

func (mm *ModelMesh) reloadProgram(vertexShader, fragmentShader string) {
	if mm.program != 0 {
		mm.res.Shaders.Destroy(mm.program)
	}
	program, err := mm.res.Shaders.Program(vertexShader, fragmentShader)
	if err != nil {
		core.LogError("model mesh '%s': %s", mm.name, err)
	}
	mm.program = program
}

// destroy releases the buffers and program. Textures belong to the model.
func (mm *ModelMesh) destroy() {
	b := mm.res.Backend
	if mm.vao != 0 {
		b.DestroyVertexArray(mm.vao)
		mm.vao = 0
	}
	if mm.vbo != 0 {
		b.DestroyBuffer(mm.vbo)
		mm.vbo = 0
	}
	if mm.ebo != 0 {
		b.DestroyBuffer(mm.ebo)
		mm.ebo = 0
	}
	if mm.program != 0 {
		mm.res.Shaders.Destroy(mm.program)
		mm.program = 0
	}
}
