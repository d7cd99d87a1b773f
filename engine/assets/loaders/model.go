package loaders

import (
	"fmt"
	"image"
	"io/fs"
	"path"
	"strings"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/**
 * @brief A texture referenced by an imported material.
 */
type ImportedTexture struct {
	Use metadata.TextureUse
	/** @brief File path relative to the model's directory. Empty for embedded images. */
	Path string
	/** @brief Embedded image data, when the model carries the pixels itself. */
	Image *image.RGBA
	/** @brief Identifies the texture within the model, used for deduplication. */
	Key string
}

type ImportedMaterial struct {
	Name         string
	DiffuseColor math.Vec4
	Textures     []ImportedTexture
}

type ImportedMesh struct {
	Name     string
	Vertices []math.ModelVertex
	Indices  []uint32
	/** @brief Index into ImportedScene.Materials, -1 when the mesh has none. */
	Material int
}

type ImportedNode struct {
	Name     string
	Meshes   []int
	Children []*ImportedNode
}

/**
 * @brief The result of a mesh import: a node tree referencing meshes and materials.
 */
type ImportedScene struct {
	Root      *ImportedNode
	Meshes    []*ImportedMesh
	Materials []*ImportedMaterial
	/** @brief Set when the importer could only read part of the file. */
	Incomplete bool
}

// Validate reports core.ErrIncompleteScene when the scene cannot be used.
func (s *ImportedScene) Validate() error {
	if s == nil || s.Root == nil || s.Incomplete {
		return core.ErrIncompleteScene
	}
	for _, m := range s.Meshes {
		for _, idx := range m.Indices {
			if int(idx) >= len(m.Vertices) {
				return fmt.Errorf("mesh %q index %d out of range: %w", m.Name, idx, core.ErrIncompleteScene)
			}
		}
	}
	return nil
}

/** @brief Loads mesh data from a file inside fsys. */
type MeshImporter interface {
	Import(fsys fs.FS, name string) (*ImportedScene, error)
}

// finalize fills in normals and tangents the file did not provide.
func finalize(scene *ImportedScene, hasNormals, hasTangents map[*ImportedMesh]bool) {
	for _, m := range scene.Meshes {
		if !hasNormals[m] {
			math.GeometryGenerateNormals(m.Vertices, m.Indices)
		}
		if !hasTangents[m] {
			math.GeometryGenerateTangents(m.Vertices, m.Indices)
		}
	}
}

// ModelLoader picks an importer from the file extension.
type ModelLoader struct {
	importers map[string]MeshImporter
}

func NewModelLoader() *ModelLoader {
	gltfImporter := &GLTFImporter{}
	return &ModelLoader{
		importers: map[string]MeshImporter{
			".gltf": gltfImporter,
			".glb":  gltfImporter,
			".obj":  &WavefrontImporter{},
		},
	}
}

// Supports reports whether a file with this name can be imported.
func (ml *ModelLoader) Supports(name string) bool {
	_, ok := ml.importers[strings.ToLower(path.Ext(name))]
	return ok
}

func (ml *ModelLoader) Import(fsys fs.FS, name string) (*ImportedScene, error) {
	importer, ok := ml.importers[strings.ToLower(path.Ext(name))]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, core.ErrUnsupportedFormat)
	}
	scene, err := importer.Import(fsys, name)
	if err != nil {
		return nil, err
	}
	if err := scene.Validate(); err != nil {
		return scene, fmt.Errorf("%s: %w", name, err)
	}
	return scene, nil
}

func (ml *ModelLoader) Load(fsys fs.FS, name string, params interface{}) (*metadata.Resource, error) {
	scene, err := ml.Import(fsys, name)
	if err != nil {
		return nil, err
	}
	size := 0
	for _, m := range scene.Meshes {
		size += len(m.Vertices)*14*4 + len(m.Indices)*4
	}
	return &metadata.Resource{
		Name:         strings.TrimSuffix(path.Base(name), path.Ext(name)),
		FullPath:     name,
		ResourceType: metadata.ResourceTypeModel,
		DataSize:     uint64(size),
		Data:         scene,
	}, nil
}

func (ml *ModelLoader) Unload(*metadata.Resource) error {
	return nil
}
