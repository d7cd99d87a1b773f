package renderer

import (
	"image"

	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/**
 * @brief The GPU capability every renderable talks to. Implementations wrap a
 * real graphics API (OpenGL) or record calls in memory (headless). All methods
 * must be called from the thread that owns the graphics context.
 */
type Backend interface {
	/** @brief Name of the backend, used in logs. */
	Name() string

	// Vertex arrays
	CreateVertexArray() metadata.VertexArray
	BindVertexArray(vao metadata.VertexArray)
	DestroyVertexArray(vao metadata.VertexArray)

	// Buffers
	CreateBuffer(target metadata.BufferTarget) metadata.Buffer
	BindBuffer(target metadata.BufferTarget, buffer metadata.Buffer)
	/** @brief Allocates size bytes of uninitialized storage for the buffer bound to target. */
	AllocateBuffer(target metadata.BufferTarget, size int)
	/**
	 * @brief Writes data into the buffer bound to target at the given byte offset.
	 * data must be a []float32 or a []uint32.
	 */
	WriteBuffer(target metadata.BufferTarget, offset int, data interface{})
	DestroyBuffer(buffer metadata.Buffer)

	// Vertex attributes. Offsets and strides are in bytes.
	EnableAttribute(location uint32)
	AttributePointer(location uint32, components int32, stride int32, offset int)

	// Programs
	/** @brief Compiles and links a program from vertex and fragment sources. */
	CreateProgram(vertexSource, fragmentSource string) (metadata.Program, error)
	UseProgram(program metadata.Program)
	/** @brief The program currently in use, 0 if none. */
	BoundProgram() metadata.Program
	DestroyProgram(program metadata.Program)
	/**
	 * @brief Sets a uniform on the program. Supported values are math.Mat4, math.Vec2,
	 * math.Vec3, math.Vec4, float32, int32, int and bool. Anything else returns
	 * core.ErrUnsupportedUniform.
	 */
	SetUniform(program metadata.Program, name string, value interface{}) error

	// Textures. faces holds one image for 2D textures and six for cube maps.
	CreateTexture(spec metadata.TextureSpec, faces []*image.RGBA) metadata.TextureHandle
	ActiveTexture(unit uint32)
	BindTexture(kind metadata.TextureType, texture metadata.TextureHandle)
	DestroyTexture(texture metadata.TextureHandle)

	// Drawing. DrawElements reads uint32 indices from the element buffer of the bound vertex array.
	DrawArrays(mode metadata.Primitive, first, count int32)
	DrawElements(mode metadata.Primitive, count int32)

	// Depth state
	SetDepthFunc(fn metadata.DepthFunc)
	SetDepthMask(write bool)

	// Frame
	Viewport(width, height int32)
	Clear(color math.Vec4)
}

/** @brief Size in bytes of one float32 or uint32 element. */
const ElementSize = 4
