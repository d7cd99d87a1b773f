package scene

import (
	"errors"
	"fmt"
	"io/fs"
	"path"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/qtk/engine/assets/loaders"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

const (
	DefaultModelVertexShader   = ":/shaders/model-basic.vert"
	DefaultModelFragmentShader = ":/shaders/model-basic.frag"
)

/**
 * @brief A mesh file loaded into a set of ModelMesh parts that share one
 * transform. A model whose file cannot be imported has no meshes and draws
 * nothing.
 */
type Model struct {
	*Object

	path   string
	meshes []*ModelMesh
	// textures by path (or embedded key), shared between meshes
	textures map[string]*ModelTexture
}

/**
 * @brief Imports the file at path. shaders optionally overrides the vertex
 * and fragment shader paths, in that order.
 */
func NewModel(res *Resources, name, path string, shaders ...string) *Model {
	m := &Model{
		Object:   newObject(res, name, ObjectModel, nil),
		path:     path,
		textures: make(map[string]*ModelTexture),
	}
	m.vertexShader = DefaultModelVertexShader
	m.fragmentShader = DefaultModelFragmentShader
	if len(shaders) > 0 && shaders[0] != "" {
		m.vertexShader = shaders[0]
	}
	if len(shaders) > 1 && shaders[1] != "" {
		m.fragmentShader = shaders[1]
	}

	if err := m.load(); err != nil {
		core.LogError("model '%s' from '%s': %s", name, path, err)
		return m
	}
	m.sortModelMeshes(res.eye())
	core.LogInfo("loaded model '%s' with %d meshes", name, len(m.meshes))
	return m
}

func (m *Model) load() error {
	fsys, name, err := m.res.Assets.Resolve(m.path)
	if err != nil {
		return err
	}
	imported, err := m.res.Assets.Models().Import(fsys, name)
	if err != nil {
		return err
	}

	// Material textures are created once and shared by every mesh using them.
	materials := make([][]*ModelTexture, len(imported.Materials))
	for i, mat := range imported.Materials {
		for _, it := range mat.Textures {
			materials[i] = append(materials[i], m.texture(fsys, path.Dir(name), it))
		}
	}

	var walk func(node *loaders.ImportedNode)
	walk = func(node *loaders.ImportedNode) {
		for _, idx := range node.Meshes {
			im := imported.Meshes[idx]
			var textures []*ModelTexture
			diffuse := math.NewVec4(1, 1, 1, 1)
			if im.Material >= 0 {
				textures = materials[im.Material]
				diffuse = imported.Materials[im.Material].DiffuseColor
			}
			mesh := newModelMesh(m.res, im.Name, im.Vertices, im.Indices, textures, diffuse)
			mesh.init(m.vertexShader, m.fragmentShader)
			m.meshes = append(m.meshes, mesh)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(imported.Root)
	return nil
}

func (m *Model) texture(fsys fs.FS, dir string, it loaders.ImportedTexture) *ModelTexture {
	key := it.Key
	if key == "" {
		key = it.Path
	}
	if mt, ok := m.textures[key]; ok {
		return mt
	}
	mt := &ModelTexture{Use: it.Use, Path: key, embedded: it.Image}
	if it.Image == nil {
		mt.fsys = fsys
		mt.name = path.Join(dir, it.Path)
	}
	mt.Texture = m.res.Textures.InitTextureFromImage(key, mt.load(false, false))
	m.textures[key] = mt
	return mt
}

/**
 * @brief Orders the meshes by ascending distance from eye to each mesh's
 * first vertex. Runs once after loading; moving the camera later does not
 * reorder them.
 */
func (m *Model) sortModelMeshes(eye math.Vec3) {
	slices.SortStableFunc(m.meshes, func(a, b *ModelMesh) int {
		da, db := a.distanceTo(eye), b.distanceTo(eye)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		default:
			return 0
		}
	})
}

func (m *Model) Path() string {
	return m.path
}

func (m *Model) Meshes() []*ModelMesh {
	return m.meshes
}

// Textures returns the model's textures keyed by path.
func (m *Model) Textures() map[string]*ModelTexture {
	return m.textures
}

// Draw draws every mesh with its own program.
func (m *Model) Draw(view, projection math.Mat4) {
	model := m.transform.ToMatrix()
	eye := m.res.eye()
	for _, mesh := range m.meshes {
		mesh.Draw(mesh.program, model, view, projection, eye)
	}
}

// DrawWithProgram draws every mesh with program instead of their own.
func (m *Model) DrawWithProgram(program metadata.Program, view, projection math.Mat4) {
	model := m.transform.ToMatrix()
	eye := m.res.eye()
	for _, mesh := range m.meshes {
		mesh.Draw(program, model, view, projection, eye)
	}
}

// SetUniform sets the uniform on the program of every mesh.
func (m *Model) SetUniform(name string, value interface{}) error {
	var errs []error
	for _, mesh := range m.meshes {
		if err := mesh.SetUniform(name, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetShaders rebuilds the program of every mesh from the given files.
func (m *Model) SetShaders(vertex, fragment string) {
	m.vertexShader = vertex
	m.fragmentShader = fragment
	for _, mesh := range m.meshes {
		mesh.reloadProgram(vertex, fragment)
	}
}

/**
 * @brief Reloads the texture registered under path, mirrored as requested.
 * Every mesh using it sees the new texture.
 */
func (m *Model) FlipTexture(path string, flipX, flipY bool) error {
	mt, ok := m.textures[path]
	if !ok {
		return fmt.Errorf("model '%s' has no texture '%s': %w", m.name, path, core.ErrAssetNotFound)
	}
	m.res.Textures.Destroy(mt.Texture)
	mt.Texture = m.res.Textures.InitTextureFromImage(path, mt.load(flipX, flipY))
	return nil
}

func (m *Model) Destroy() {
	for _, mesh := range m.meshes {
		mesh.destroy()
	}
	m.meshes = nil
	for _, mt := range m.textures {
		m.res.Textures.Destroy(mt.Texture)
	}
	m.textures = make(map[string]*ModelTexture)
	m.destroy()
}
