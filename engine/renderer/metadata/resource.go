package metadata

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown resource type. */
	ResourceTypeNone ResourceType = iota
	/** @brief Image resource type. */
	ResourceTypeImage
	/** @brief Shader source resource type. */
	ResourceTypeShader
	/** @brief Model resource type (a scene of meshes and materials). */
	ResourceTypeModel
	/** @brief Material library resource type. */
	ResourceTypeMaterial
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeImage:
		return "image"
	case ResourceTypeShader:
		return "shader"
	case ResourceTypeModel:
		return "model"
	case ResourceTypeMaterial:
		return "material"
	default:
		return "none"
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource. */
	Name string
	/** @brief The full path of the resource, as requested. */
	FullPath string
	/** @brief The resource type. */
	ResourceType ResourceType
	/** @brief The size of the raw resource data in bytes. */
	DataSize uint64
	/** @brief The decoded resource data. */
	Data interface{}
}
