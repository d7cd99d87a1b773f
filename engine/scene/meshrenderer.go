package scene

import (
	"fmt"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
	"github.com/spaghettifunk/qtk/engine/systems"
)

const (
	DefaultMeshVertexShader   = ":/shaders/multi-color.vert"
	DefaultMeshFragmentShader = ":/shaders/multi-color.frag"
)

// Attribute locations used by mesh renderers.
const (
	attributePosition  uint32 = 0
	attributeSecondary uint32 = 1
)

/**
 * @brief Draws procedural geometry. Positions and colors share one buffer,
 * colors stored after all positions. Attribute 0 is the position and
 * attribute 1 the color, unless a Reallocate call rebinds it to normals
 * or texture coordinates.
 */
type MeshRenderer struct {
	*Object

	drawType metadata.Primitive
	uniforms metadata.UniformNames
	// components of the data bound to attribute 1 by a Reallocate call, 0 if none
	secondaryDims int32
}

/**
 * @brief Creates a mesh renderer and uploads its geometry. A nil shape is
 * replaced by a cube drawn with DrawArrays.
 */
func NewMeshRenderer(res *Resources, name string, shape *metadata.Shape) *MeshRenderer {
	if shape == nil {
		shape = systems.NewCube(metadata.DrawArrays)
	}
	m := &MeshRenderer{
		Object:   newObject(res, name, ObjectMesh, shape),
		drawType: metadata.PrimitiveTriangles,
		uniforms: metadata.DefaultUniformNames(),
	}
	m.vertexShader = DefaultMeshVertexShader
	m.fragmentShader = DefaultMeshFragmentShader
	m.Init()
	return m
}

/**
 * @brief Recreates the vertex array, program and buffers from the current
 * shape and shader paths. A shader that fails to build leaves the program
 * at 0 and the mesh is skipped at draw time.
 */
func (m *MeshRenderer) Init() {
	m.releaseBuffers()
	m.secondaryDims = 0

	program, err := m.res.Shaders.Program(m.vertexShader, m.fragmentShader)
	if err != nil {
		core.LogError("mesh '%s': %s", m.name, err)
	}
	m.program = program

	positions := math.FlattenVec3(m.shape.Vertices)
	colors := math.FlattenVec3(m.shape.Colors)

	b := m.res.Backend
	m.vao = b.CreateVertexArray()
	b.BindVertexArray(m.vao)

	m.vbo = b.CreateBuffer(metadata.BufferTargetArray)
	b.BindBuffer(metadata.BufferTargetArray, m.vbo)
	b.AllocateBuffer(metadata.BufferTargetArray, (len(positions)+len(colors))*renderer.ElementSize)
	b.WriteBuffer(metadata.BufferTargetArray, 0, positions)
	b.EnableAttribute(attributePosition)
	b.AttributePointer(attributePosition, 3, 0, 0)
	if len(colors) > 0 {
		offset := len(positions) * renderer.ElementSize
		b.WriteBuffer(metadata.BufferTargetArray, offset, colors)
		b.EnableAttribute(attributeSecondary)
		b.AttributePointer(attributeSecondary, 3, 0, offset)
	}

	if m.shape.DrawMode.UsesIndices() {
		m.ebo = b.CreateBuffer(metadata.BufferTargetElementArray)
		b.BindBuffer(metadata.BufferTargetElementArray, m.ebo)
		b.AllocateBuffer(metadata.BufferTargetElementArray, len(m.shape.Indices)*renderer.ElementSize)
		b.WriteBuffer(metadata.BufferTargetElementArray, 0, m.shape.Indices)
	}

	b.BindVertexArray(0)
	b.BindBuffer(metadata.BufferTargetArray, 0)
}

/**
 * @brief Draws the mesh with the object's transform as the model matrix.
 * Everything bound here is unbound before returning.
 */
func (m *MeshRenderer) Draw(view, projection math.Mat4) {
	if m.program == 0 || m.vao == 0 {
		return
	}
	b := m.res.Backend
	scope := renderer.NewShaderBindScope(b, m.program)
	defer scope.Release()

	if m.texture != nil {
		b.ActiveTexture(0)
		b.BindTexture(m.texture.TextureType, m.texture.Handle)
	}
	b.BindVertexArray(m.vao)

	m.setUniform(m.uniforms.Model, m.transform.ToMatrix())
	m.setUniform(m.uniforms.View, view)
	m.setUniform(m.uniforms.Projection, projection)

	if m.shape.DrawMode.UsesIndices() {
		b.DrawElements(m.drawType, int32(len(m.shape.Indices)))
	} else {
		b.DrawArrays(m.drawType, 0, int32(len(m.shape.Vertices)))
	}

	b.BindVertexArray(0)
	if m.texture != nil {
		b.BindTexture(m.texture.TextureType, 0)
	}
}

func (m *MeshRenderer) setUniform(name string, value interface{}) {
	if err := m.res.Backend.SetUniform(m.program, name, value); err != nil {
		core.LogWarn("mesh '%s': %s", m.name, err)
	}
}

/**
 * @brief Sets a uniform on the mesh's program, binding it only if needed.
 */
func (m *MeshRenderer) SetUniform(name string, value interface{}) error {
	if m.program == 0 {
		return fmt.Errorf("mesh '%s' has no program: %w", m.name, core.ErrInvalidHandle)
	}
	scope := renderer.NewShaderBindScope(m.res.Backend, m.program)
	defer scope.Release()
	return m.res.Backend.SetUniform(m.program, name, value)
}

// SetUniformNames changes the names the model, view and projection matrices
// are uploaded under.
func (m *MeshRenderer) SetUniformNames(names metadata.UniformNames) {
	m.uniforms = names
}

func (m *MeshRenderer) UniformNames() metadata.UniformNames {
	return m.uniforms
}

func (m *MeshRenderer) DrawType() metadata.Primitive {
	return m.drawType
}

// SetShaders switches to the given shader files and reinitializes.
func (m *MeshRenderer) SetShaders(vertex, fragment string) {
	m.vertexShader = vertex
	m.fragmentShader = fragment
	m.Init()
}

// SetShape replaces the geometry with a copy of shape and reinitializes.
func (m *MeshRenderer) SetShape(shape *metadata.Shape) {
	if shape == nil {
		return
	}
	m.shape = shape.Clone()
	m.Init()
}

func (m *MeshRenderer) SetDrawType(prim metadata.Primitive) {
	m.drawType = prim
	m.Init()
}

/**
 * @brief Paints every vertex with color and reinitializes. Shapes without
 * colors get one color per vertex.
 */
func (m *MeshRenderer) SetColor(color math.Vec3) {
	if len(m.shape.Colors) != len(m.shape.Vertices) {
		m.shape.Colors = make([]math.Vec3, len(m.shape.Vertices))
	}
	for i := range m.shape.Colors {
		m.shape.Colors[i] = color
	}
	m.Init()
}

/**
 * @brief Uploads normals into the secondary buffer and binds them to
 * attribute 1 with dims components.
 */
func (m *MeshRenderer) ReallocateNormals(normals []math.Vec3, dims int32) {
	m.shape.Normals = append(m.shape.Normals[:0], normals...)
	m.reallocateSecondary(math.FlattenVec3(normals), dims)
}

/**
 * @brief Uploads texture coordinates into the secondary buffer and binds
 * them to attribute 1 with dims components.
 */
func (m *MeshRenderer) ReallocateTexCoords(uvs []math.Vec2, dims int32) {
	m.shape.TexCoords = append(m.shape.TexCoords[:0], uvs...)
	m.reallocateSecondary(math.FlattenVec2(uvs), dims)
}

func (m *MeshRenderer) reallocateSecondary(data []float32, dims int32) {
	if m.vao == 0 {
		core.LogWarn("mesh '%s': reallocate before init", m.name)
		return
	}
	b := m.res.Backend
	b.BindVertexArray(m.vao)
	if m.nbo != 0 {
		b.DestroyBuffer(m.nbo)
	}
	m.nbo = b.CreateBuffer(metadata.BufferTargetArray)
	b.BindBuffer(metadata.BufferTargetArray, m.nbo)
	b.AllocateBuffer(metadata.BufferTargetArray, len(data)*renderer.ElementSize)
	b.WriteBuffer(metadata.BufferTargetArray, 0, data)
	b.EnableAttribute(attributeSecondary)
	b.AttributePointer(attributeSecondary, dims, 0, 0)
	b.BindVertexArray(0)
	b.BindBuffer(metadata.BufferTargetArray, 0)
	m.secondaryDims = dims
}

// SecondaryDims returns the component count bound by the last Reallocate
// call, or 0 when attribute 1 still holds colors.
func (m *MeshRenderer) SecondaryDims() int32 {
	return m.secondaryDims
}

func (m *MeshRenderer) Destroy() {
	m.destroy()
}
