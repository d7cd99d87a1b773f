package loaders

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

// WavefrontImporter reads .obj files and the .mtl libraries they reference.
// Polygonal faces are triangulated as fans.
type WavefrontImporter struct{}

type objVertexKey struct {
	v, vt, vn int
}

type wavefrontReader struct {
	name  string
	fsys  fs.FS
	dir   string
	scene *ImportedScene

	positions []math.Vec3
	normals   []math.Vec3
	uvs       []math.Vec2

	materialIndex map[string]int
	curMaterial   int
	curMesh       *ImportedMesh
	// dedup of v/vt/vn triples inside the current mesh
	vertexIndex map[objVertexKey]uint32
	hasNormals  map[*ImportedMesh]bool
}

func (wi *WavefrontImporter) Import(fsys fs.FS, name string) (*ImportedScene, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, core.ErrAssetNotFound)
	}
	defer f.Close()

	r := &wavefrontReader{
		name:          name,
		fsys:          fsys,
		dir:           path.Dir(name),
		scene:         &ImportedScene{},
		materialIndex: make(map[string]int),
		curMaterial:   -1,
		hasNormals:    make(map[*ImportedMesh]bool),
	}
	if err := r.parse(f); err != nil {
		return nil, err
	}

	// Drop meshes that never received a face.
	meshes := r.scene.Meshes[:0]
	for _, m := range r.scene.Meshes {
		if len(m.Indices) > 0 {
			meshes = append(meshes, m)
		}
	}
	r.scene.Meshes = meshes

	root := &ImportedNode{Name: path.Base(name)}
	for i, m := range r.scene.Meshes {
		root.Children = append(root.Children, &ImportedNode{Name: m.Name, Meshes: []int{i}})
	}
	r.scene.Root = root
	finalize(r.scene, r.hasNormals, nil)
	return r.scene, nil
}

func (r *wavefrontReader) emitError(line int, msgFormat string, args ...interface{}) error {
	return fmt.Errorf("%s:%d: %s: %w", r.name, line, fmt.Sprintf(msgFormat, args...), core.ErrIncompleteScene)
}

func (r *wavefrontReader) startMesh(name string) {
	r.curMesh = &ImportedMesh{Name: name, Material: r.curMaterial}
	r.vertexIndex = make(map[objVertexKey]uint32)
	r.scene.Meshes = append(r.scene.Meshes, r.curMesh)
}

func (r *wavefrontReader) parse(res io.Reader) error {
	lineNum := 0
	scanner := bufio.NewScanner(res)
	for scanner.Scan() {
		lineNum++
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		switch lineTokens[0] {
		case "mtllib":
			if len(lineTokens) < 2 {
				return r.emitError(lineNum, "expected a file name for 'mtllib'")
			}
			lib := path.Join(r.dir, strings.Join(lineTokens[1:], " "))
			if err := r.parseMaterials(lib); err != nil {
				// A missing material library only loses textures.
				core.LogWarn("%s:%d: %s", r.name, lineNum, err)
			}
		case "usemtl":
			if len(lineTokens) != 2 {
				return r.emitError(lineNum, "unsupported syntax for 'usemtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}
			idx, ok := r.materialIndex[lineTokens[1]]
			if !ok {
				core.LogWarn("%s:%d: undefined material '%s'", r.name, lineNum, lineTokens[1])
				idx = -1
			}
			r.curMaterial = idx
			// A material switch inside an object starts a new mesh part.
			if r.curMesh != nil && len(r.curMesh.Indices) > 0 {
				r.startMesh(r.curMesh.Name)
			} else if r.curMesh != nil {
				r.curMesh.Material = idx
			}
		case "v":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(lineNum, err.Error())
			}
			r.positions = append(r.positions, v)
		case "vn":
			v, err := parseVec3(lineTokens)
			if err != nil {
				return r.emitError(lineNum, err.Error())
			}
			r.normals = append(r.normals, v)
		case "vt":
			v, err := parseVec2(lineTokens)
			if err != nil {
				return r.emitError(lineNum, err.Error())
			}
			r.uvs = append(r.uvs, v)
		case "g", "o":
			name := "default"
			if len(lineTokens) > 1 {
				name = strings.Join(lineTokens[1:], " ")
			}
			r.startMesh(name)
		case "f":
			if r.curMesh == nil {
				r.startMesh("default")
			}
			if err := r.parseFace(lineTokens); err != nil {
				return r.emitError(lineNum, err.Error())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return r.emitError(lineNum, err.Error())
	}
	return nil
}

func (r *wavefrontReader) parseFace(lineTokens []string) error {
	if len(lineTokens) < 4 {
		return fmt.Errorf("expected at least 3 vertices for 'f'; got %d", len(lineTokens)-1)
	}

	corners := make([]uint32, 0, len(lineTokens)-1)
	for arg, token := range lineTokens[1:] {
		vTokens := strings.Split(token, "/")
		if vTokens[0] == "" {
			return fmt.Errorf("face argument %d does not include a vertex index", arg)
		}

		key := objVertexKey{v: -1, vt: -1, vn: -1}
		var err error
		if key.v, err = selectFaceCoordIndex(vTokens[0], len(r.positions)); err != nil {
			return fmt.Errorf("could not parse vertex coord for face argument %d: %s", arg, err)
		}
		if len(vTokens) > 1 && vTokens[1] != "" {
			if key.vt, err = selectFaceCoordIndex(vTokens[1], len(r.uvs)); err != nil {
				return fmt.Errorf("could not parse tex coord for face argument %d: %s", arg, err)
			}
		}
		if len(vTokens) > 2 && vTokens[2] != "" {
			if key.vn, err = selectFaceCoordIndex(vTokens[2], len(r.normals)); err != nil {
				return fmt.Errorf("could not parse normal coord for face argument %d: %s", arg, err)
			}
		}

		idx, ok := r.vertexIndex[key]
		if !ok {
			vertex := math.ModelVertex{Position: r.positions[key.v]}
			if key.vt >= 0 {
				vertex.Texcoord = r.uvs[key.vt]
			}
			if key.vn >= 0 {
				vertex.Normal = r.normals[key.vn]
				r.hasNormals[r.curMesh] = true
			}
			idx = uint32(len(r.curMesh.Vertices))
			r.curMesh.Vertices = append(r.curMesh.Vertices, vertex)
			r.vertexIndex[key] = idx
		}
		corners = append(corners, idx)
	}

	for i := 1; i+1 < len(corners); i++ {
		r.curMesh.Indices = append(r.curMesh.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// parseMaterials reads a material library and records its texture maps.
func (r *wavefrontReader) parseMaterials(lib string) error {
	f, err := r.fsys.Open(lib)
	if err != nil {
		return fmt.Errorf("material library %s: %w", lib, core.ErrAssetNotFound)
	}
	defer f.Close()

	var curMaterial *ImportedMaterial
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineTokens := strings.Fields(scanner.Text())
		if len(lineTokens) == 0 || strings.HasPrefix(lineTokens[0], "#") {
			continue
		}

		if lineTokens[0] == "newmtl" {
			if len(lineTokens) != 2 {
				return fmt.Errorf("unsupported syntax for 'newmtl'; expected 1 argument; got %d", len(lineTokens)-1)
			}
			curMaterial = &ImportedMaterial{Name: lineTokens[1], DiffuseColor: math.NewVec4(1, 1, 1, 1)}
			r.materialIndex[curMaterial.Name] = len(r.scene.Materials)
			r.scene.Materials = append(r.scene.Materials, curMaterial)
			continue
		}
		if curMaterial == nil {
			return fmt.Errorf("got '%s' without a 'newmtl'", lineTokens[0])
		}

		switch lineTokens[0] {
		case "Kd":
			kd, err := parseVec3(lineTokens)
			if err != nil {
				return err
			}
			curMaterial.DiffuseColor = kd.ToVec4(curMaterial.DiffuseColor.W)
		case "d":
			if len(lineTokens) == 2 {
				if d, err := strconv.ParseFloat(lineTokens[1], 32); err == nil {
					curMaterial.DiffuseColor.W = float32(d)
				}
			}
		case "map_Kd", "map_Ks", "map_Bump", "map_bump", "bump", "norm":
			if len(lineTokens) < 2 {
				return fmt.Errorf("expected a file name for '%s'", lineTokens[0])
			}
			// Options such as -bm come before the file name.
			file := lineTokens[len(lineTokens)-1]
			use := metadata.TextureUseMapDiffuse
			switch lineTokens[0] {
			case "map_Ks":
				use = metadata.TextureUseMapSpecular
			case "map_Bump", "map_bump", "bump", "norm":
				use = metadata.TextureUseMapNormal
			}
			// Texture paths are relative to the library; keep them relative to the model.
			texPath := path.Join(path.Dir(lib), file)
			if r.dir != "." {
				texPath = strings.TrimPrefix(texPath, r.dir+"/")
			}
			curMaterial.Textures = append(curMaterial.Textures, ImportedTexture{
				Use:  use,
				Path: texPath,
				Key:  texPath,
			})
		}
	}
	return scanner.Err()
}

func parseFloats(lineTokens []string, count int) ([]float32, error) {
	if len(lineTokens) < count+1 {
		return nil, fmt.Errorf("unsupported syntax for '%s'; expected %d arguments; got %d", lineTokens[0], count, len(lineTokens)-1)
	}
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		v, err := strconv.ParseFloat(lineTokens[i+1], 32)
		if err != nil {
			return nil, fmt.Errorf("could not parse float32 value '%s': %s", lineTokens[i+1], err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseVec3(lineTokens []string) (math.Vec3, error) {
	f, err := parseFloats(lineTokens, 3)
	if err != nil {
		return math.Vec3{}, err
	}
	return math.NewVec3(f[0], f[1], f[2]), nil
}

func parseVec2(lineTokens []string) (math.Vec2, error) {
	f, err := parseFloats(lineTokens, 2)
	if err != nil {
		return math.Vec2{}, err
	}
	return math.NewVec2(f[0], f[1]), nil
}

// selectFaceCoordIndex converts a 1-based or negative (relative) index into a slice offset.
func selectFaceCoordIndex(token string, listLen int) (int, error) {
	index, err := strconv.ParseInt(token, 10, 32)
	if err != nil {
		return -1, err
	}
	var offset int
	if index < 0 {
		offset = listLen + int(index)
	} else {
		offset = int(index) - 1
	}
	if offset < 0 || offset >= listLen {
		return -1, fmt.Errorf("index out of bounds")
	}
	return offset, nil
}
