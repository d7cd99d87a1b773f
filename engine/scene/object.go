package scene

import (
	"github.com/google/uuid"

	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

type ObjectKind int

const (
	ObjectMesh ObjectKind = iota
	ObjectModel
)

func (k ObjectKind) String() string {
	if k == ObjectModel {
		return "model"
	}
	return "mesh"
}

/**
 * @brief Anything a Scene can hold and draw.
 */
type Renderable interface {
	/** @brief The shared object state. */
	Base() *Object
	/** @brief Draws with the given camera matrices. */
	Draw(view, projection math.Mat4)
	/** @brief Releases every GPU resource owned by the renderable. */
	Destroy()
}

/**
 * @brief State shared by meshes and models: a name, a transform, optional
 * geometry and texture, and the GPU handles built from them.
 *
 * Mutating geometry does not touch the GPU. The owner must re-run its
 * initialization (MeshRenderer.Init or one of the Reallocate calls) before
 * the next draw.
 */
type Object struct {
	res *Resources
	// scene the object was added to, nil while unowned
	owner *Scene

	name      string
	id        uuid.UUID
	kind      ObjectKind
	shape     *metadata.Shape
	transform *math.Transform
	texture   *metadata.Texture

	vertexShader   string
	fragmentShader string

	program metadata.Program
	vao     metadata.VertexArray
	vbo     metadata.Buffer
	// secondary attribute buffer, holds either normals or texture coordinates
	nbo metadata.Buffer
	ebo metadata.Buffer
}

func newObject(res *Resources, name string, kind ObjectKind, shape *metadata.Shape) *Object {
	o := &Object{
		res:       res,
		name:      name,
		id:        uuid.New(),
		kind:      kind,
		transform: math.NewTransform(),
	}
	if shape != nil {
		o.shape = shape.Clone()
	}
	return o
}

func (o *Object) Base() *Object {
	return o
}

func (o *Object) Name() string {
	return o.name
}

// SetName renames the object. Once added to a scene the rename goes through
// Scene.RenameObject, so the name may come back suffixed.
func (o *Object) SetName(name string) {
	if o.owner != nil {
		o.owner.RenameObject(o.name, name)
		return
	}
	o.name = name
}

func (o *Object) ID() uuid.UUID {
	return o.id
}

func (o *Object) Kind() ObjectKind {
	return o.kind
}

func (o *Object) Transform() *math.Transform {
	return o.transform
}

func (o *Object) Shape() *metadata.Shape {
	return o.shape
}

func (o *Object) Texture() *metadata.Texture {
	return o.texture
}

func (o *Object) Program() metadata.Program {
	return o.program
}

func (o *Object) VertexShader() string {
	return o.vertexShader
}

func (o *Object) FragmentShader() string {
	return o.fragmentShader
}

func (o *Object) GetVertices() []math.Vec3 {
	if o.shape == nil {
		return nil
	}
	return o.shape.Vertices
}

func (o *Object) GetColors() []math.Vec3 {
	if o.shape == nil {
		return nil
	}
	return o.shape.Colors
}

func (o *Object) GetIndexData() []uint32 {
	if o.shape == nil {
		return nil
	}
	return o.shape.Indices
}

func (o *Object) GetTexCoords() []math.Vec2 {
	if o.shape == nil {
		return nil
	}
	return o.shape.TexCoords
}

func (o *Object) GetNormals() []math.Vec3 {
	if o.shape == nil {
		return nil
	}
	return o.shape.Normals
}

/**
 * @brief Replaces the object's texture with the image at path. A file that
 * cannot be read yields the placeholder texture.
 */
func (o *Object) SetTexture(path string, flipX, flipY bool) {
	o.replaceTexture(o.res.Textures.InitTexture(path, flipX, flipY))
}

/**
 * @brief Replaces the object's texture with a cube map using path on all faces.
 */
func (o *Object) SetCubeMap(path string) {
	o.replaceTexture(o.res.Textures.InitCubeMapTiled(path))
}

func (o *Object) replaceTexture(t *metadata.Texture) {
	if o.texture != nil {
		o.res.Textures.Destroy(o.texture)
	}
	o.texture = t
}

// releaseBuffers destroys the vertex array, buffers and program.
func (o *Object) releaseBuffers() {
	b := o.res.Backend
	if o.vao != 0 {
		b.DestroyVertexArray(o.vao)
		o.vao = 0
	}
	for _, buf := range []*metadata.Buffer{&o.vbo, &o.nbo, &o.ebo} {
		if *buf != 0 {
			b.DestroyBuffer(*buf)
			*buf = 0
		}
	}
	if o.program != 0 {
		o.res.Shaders.Destroy(o.program)
		o.program = 0
	}
}

func (o *Object) destroy() {
	o.releaseBuffers()
	if o.texture != nil {
		o.res.Textures.Destroy(o.texture)
		o.texture = nil
	}
}
