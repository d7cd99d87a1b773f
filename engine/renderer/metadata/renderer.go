package metadata

/** @brief Opaque handle to a vertex array object. Zero means none. */
type VertexArray uint32

/** @brief Opaque handle to a GPU buffer. Zero means none. */
type Buffer uint32

/** @brief Opaque handle to a linked shader program. Zero means none. */
type Program uint32

/** @brief Opaque handle to a GPU texture. Zero means none. */
type TextureHandle uint32

/** @brief The binding point a buffer is attached to. */
type BufferTarget int

const (
	/** @brief Vertex attribute data. */
	BufferTargetArray BufferTarget = iota
	/** @brief Index data. */
	BufferTargetElementArray
)

/** @brief Comparison used by the depth test. */
type DepthFunc int

const (
	DepthFuncLess DepthFunc = iota
	DepthFuncLessEqual
	DepthFuncAlways
)

/** @brief Default uniform names for the model-view-projection matrices. */
const (
	UniformModel          = "uModel"
	UniformView           = "uView"
	UniformProjection     = "uProjection"
	UniformCameraPosition = "uCameraPosition"
	UniformNormalMatrix   = "uNormalMatrix"
)

/** @brief The uniform names an object uses for its matrices. */
type UniformNames struct {
	Model      string
	View       string
	Projection string
}

func DefaultUniformNames() UniformNames {
	return UniformNames{
		Model:      UniformModel,
		View:       UniformView,
		Projection: UniformProjection,
	}
}
