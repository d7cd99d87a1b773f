package metadata

/** @brief The side length of the generated placeholder texture. */
const PLACEHOLDER_TEXTURE_SIZE int = 128

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = iota
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear
	/** @brief Trilinear filtering across generated mipmaps. Minification only. */
	TextureFilterModeLinearMipmapLinear
)

type TextureRepeat int

const (
	TextureRepeatRepeat TextureRepeat = iota
	TextureRepeatMirroredRepeat
	TextureRepeatClampToEdge
)

/**
 * @brief Sampling and storage options used when a texture is created.
 */
type TextureSpec struct {
	/** @brief The texture type. */
	TextureType TextureType
	/** @brief Texture filtering mode for minification. */
	FilterMinify TextureFilter
	/** @brief Texture filtering mode for magnification. */
	FilterMagnify TextureFilter
	/** @brief The repeat mode on every axis. */
	Repeat TextureRepeat
	/** @brief Generate the mip chain after upload. */
	GenerateMipmaps bool
}

/**
 * @brief Options used for 2D textures: repeat wrap, trilinear minification.
 */
func Texture2DSpec() TextureSpec {
	return TextureSpec{
		TextureType:     TextureType2d,
		FilterMinify:    TextureFilterModeLinearMipmapLinear,
		FilterMagnify:   TextureFilterModeLinear,
		Repeat:          TextureRepeatRepeat,
		GenerateMipmaps: true,
	}
}

/**
 * @brief Options used for cube maps: clamped edges, linear filtering.
 */
func CubeMapSpec() TextureSpec {
	return TextureSpec{
		TextureType:   TextureTypeCube,
		FilterMinify:  TextureFilterModeLinear,
		FilterMagnify: TextureFilterModeLinear,
		Repeat:        TextureRepeatClampToEdge,
	}
}

/**
 * @brief Represents a texture living on the GPU.
 */
type Texture struct {
	/** @brief The backend handle. */
	Handle TextureHandle
	/** @brief The texture type. */
	TextureType TextureType
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The path the texture was loaded from, if any. */
	Name string
	/** @brief Set when the image could not be loaded and the placeholder was used. */
	IsPlaceholder bool
}

/** @brief How a model texture is consumed by the shader. */
type TextureUse int

const (
	TextureUseMapDiffuse TextureUse = iota
	TextureUseMapSpecular
	TextureUseMapNormal
)

/** @brief The sampler uniform prefix for the use, e.g. "texture_diffuse". */
func (u TextureUse) SamplerPrefix() string {
	switch u {
	case TextureUseMapSpecular:
		return "texture_specular"
	case TextureUseMapNormal:
		return "texture_normal"
	default:
		return "texture_diffuse"
	}
}
