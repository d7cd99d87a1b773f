package loaders

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

// GLTFImporter reads .gltf and .glb files. External buffers and images are
// resolved relative to the model inside the same fs.
type GLTFImporter struct{}

func (gi *GLTFImporter) Import(fsys fs.FS, name string) (*ImportedScene, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, core.ErrAssetNotFound)
	}

	dir := path.Dir(name)
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		sub = fsys
	}

	doc := gltf.NewDocument()
	decoder := gltf.NewDecoderFS(bytes.NewReader(data), sub)
	if err := decoder.Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %v: %w", name, err, core.ErrIncompleteScene)
	}
	return gi.convert(doc, name)
}

func (gi *GLTFImporter) convert(doc *gltf.Document, name string) (*ImportedScene, error) {
	scene := &ImportedScene{}
	hasNormals := make(map[*ImportedMesh]bool)
	hasTangents := make(map[*ImportedMesh]bool)

	for i, mat := range doc.Materials {
		scene.Materials = append(scene.Materials, gi.material(doc, i, mat))
	}

	// One imported mesh per primitive; meshIndex maps glTF meshes to their primitives.
	meshIndex := make([][]int, len(doc.Meshes))
	for mi, mesh := range doc.Meshes {
		for pi, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				core.LogWarn("%s: skipping non-triangle primitive %d of mesh %q", name, pi, mesh.Name)
				continue
			}
			im, normals, tangents, err := gi.primitive(doc, mesh.Name, prim)
			if err != nil {
				core.LogWarn("%s: mesh %q primitive %d: %s", name, mesh.Name, pi, err)
				scene.Incomplete = true
				continue
			}
			hasNormals[im] = normals
			hasTangents[im] = tangents
			meshIndex[mi] = append(meshIndex[mi], len(scene.Meshes))
			scene.Meshes = append(scene.Meshes, im)
		}
	}
	finalize(scene, hasNormals, hasTangents)

	root := &ImportedNode{Name: path.Base(name)}
	var roots []int
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		roots = doc.Scenes[*doc.Scene].Nodes
	} else if len(doc.Scenes) > 0 {
		roots = doc.Scenes[0].Nodes
	} else {
		roots = topLevelNodes(doc)
	}
	visited := make(map[int]bool)
	for _, n := range roots {
		if child := gi.node(doc, n, meshIndex, visited); child != nil {
			root.Children = append(root.Children, child)
		}
	}
	scene.Root = root
	return scene, nil
}

func topLevelNodes(doc *gltf.Document) []int {
	isChild := make(map[int]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[c] = true
		}
	}
	var out []int
	for i := range doc.Nodes {
		if !isChild[i] {
			out = append(out, i)
		}
	}
	return out
}

func (gi *GLTFImporter) node(doc *gltf.Document, idx int, meshIndex [][]int, visited map[int]bool) *ImportedNode {
	if idx < 0 || idx >= len(doc.Nodes) || visited[idx] {
		return nil
	}
	visited[idx] = true
	n := doc.Nodes[idx]
	out := &ImportedNode{Name: n.Name}
	if n.Mesh != nil && *n.Mesh < len(meshIndex) {
		out.Meshes = append(out.Meshes, meshIndex[*n.Mesh]...)
	}
	for _, c := range n.Children {
		if child := gi.node(doc, c, meshIndex, visited); child != nil {
			out.Children = append(out.Children, child)
		}
	}
	return out
}

func (gi *GLTFImporter) primitive(doc *gltf.Document, meshName string, prim *gltf.Primitive) (*ImportedMesh, bool, bool, error) {
	posAccessor, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, false, false, fmt.Errorf("missing POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posAccessor], nil)
	if err != nil {
		return nil, false, false, err
	}

	im := &ImportedMesh{
		Name:     meshName,
		Vertices: make([]math.ModelVertex, len(positions)),
		Material: -1,
	}
	for i, p := range positions {
		im.Vertices[i].Position = math.NewVec3(p[0], p[1], p[2])
	}

	hasNormals := false
	if acc, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[acc], nil)
		if err != nil {
			return nil, false, false, err
		}
		for i := 0; i < len(normals) && i < len(im.Vertices); i++ {
			im.Vertices[i].Normal = math.NewVec3(normals[i][0], normals[i][1], normals[i][2])
		}
		hasNormals = true
	}

	if acc, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[acc], nil)
		if err != nil {
			return nil, false, false, err
		}
		for i := 0; i < len(uvs) && i < len(im.Vertices); i++ {
			im.Vertices[i].Texcoord = math.NewVec2(uvs[i][0], uvs[i][1])
		}
	}

	hasTangents := false
	if acc, ok := prim.Attributes[gltf.TANGENT]; ok && hasNormals {
		tangents, err := modeler.ReadTangent(doc, doc.Accessors[acc], nil)
		if err != nil {
			return nil, false, false, err
		}
		for i := 0; i < len(tangents) && i < len(im.Vertices); i++ {
			t := math.NewVec3(tangents[i][0], tangents[i][1], tangents[i][2])
			v := &im.Vertices[i]
			v.Tangent = t
			v.Bitangent = v.Normal.Cross(t).MulScalar(tangents[i][3])
		}
		hasTangents = true
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, false, false, err
		}
		im.Indices = indices
	} else {
		im.Indices = make([]uint32, len(im.Vertices))
		for i := range im.Indices {
			im.Indices[i] = uint32(i)
		}
	}

	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		im.Material = *prim.Material
	}
	return im, hasNormals, hasTangents, nil
}

func (gi *GLTFImporter) material(doc *gltf.Document, idx int, mat *gltf.Material) *ImportedMaterial {
	out := &ImportedMaterial{
		Name:         mat.Name,
		DiffuseColor: math.NewVec4(1, 1, 1, 1),
	}
	if pbr := mat.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			f := pbr.BaseColorFactor
			out.DiffuseColor = math.NewVec4(float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3]))
		}
		if pbr.BaseColorTexture != nil {
			if tex, ok := gi.texture(doc, pbr.BaseColorTexture.Index, metadata.TextureUseMapDiffuse); ok {
				out.Textures = append(out.Textures, tex)
			}
		}
		if pbr.MetallicRoughnessTexture != nil {
			if tex, ok := gi.texture(doc, pbr.MetallicRoughnessTexture.Index, metadata.TextureUseMapSpecular); ok {
				out.Textures = append(out.Textures, tex)
			}
		}
	}
	if mat.NormalTexture != nil && mat.NormalTexture.Index != nil {
		if tex, ok := gi.texture(doc, *mat.NormalTexture.Index, metadata.TextureUseMapNormal); ok {
			out.Textures = append(out.Textures, tex)
		}
	}
	return out
}

func (gi *GLTFImporter) texture(doc *gltf.Document, textureIndex int, use metadata.TextureUse) (ImportedTexture, bool) {
	if textureIndex < 0 || textureIndex >= len(doc.Textures) {
		return ImportedTexture{}, false
	}
	src := doc.Textures[textureIndex].Source
	if src == nil || *src >= len(doc.Images) {
		return ImportedTexture{}, false
	}
	img := doc.Images[*src]
	key := fmt.Sprintf("image:%d", *src)

	if img.BufferView != nil {
		raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
		if err != nil {
			core.LogWarn("reading embedded image %d: %s", *src, err)
			return ImportedTexture{}, false
		}
		decoded, err := DecodeImage(bytes.NewReader(raw))
		if err != nil {
			core.LogWarn("decoding embedded image %d: %s", *src, err)
			return ImportedTexture{}, false
		}
		return ImportedTexture{Use: use, Image: decoded, Key: key}, true
	}
	if img.IsEmbeddedResource() {
		raw, err := img.MarshalData()
		if err != nil {
			core.LogWarn("reading data uri image %d: %s", *src, err)
			return ImportedTexture{}, false
		}
		decoded, err := DecodeImage(bytes.NewReader(raw))
		if err != nil {
			core.LogWarn("decoding data uri image %d: %s", *src, err)
			return ImportedTexture{}, false
		}
		return ImportedTexture{Use: use, Image: decoded, Key: key}, true
	}
	if img.URI == "" {
		return ImportedTexture{}, false
	}
	return ImportedTexture{Use: use, Path: img.URI, Key: img.URI}, true
}
