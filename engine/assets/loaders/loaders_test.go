package loaders

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

const cubeOBJ = `# two quads sharing an edge
mtllib scene.mtl
o Quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 2 0 0
v 2 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl brick
f 1/1/1 2/2/1 3/3/1 4/4/1
usemtl metal
f 2/1/1 5/2/1 6/3/1 3/4/1
`

const sceneMTL = `newmtl brick
Kd 1.0 0.5 0.25
map_Kd textures/brick.png
newmtl metal
map_Ks metal_spec.png
map_Bump -bm 0.5 metal_normal.png
`

const triangleGLTF = `{"asset": {"version": "2.0"}, "scene": 0, "scenes": [{"nodes": [0]}], "nodes": [{"name": "root", "children": [1]}, {"name": "tri", "mesh": 0}], "meshes": [{"name": "Triangle", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1, "material": 0}]}], "materials": [{"name": "red", "pbrMetallicRoughness": {"baseColorFactor": [1, 0, 0, 1], "baseColorTexture": {"index": 0}}}], "textures": [{"source": 0}], "images": [{"uri": "diffuse.png"}], "buffers": [{"byteLength": 44, "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAAAAABAAIAAAA="}], "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": 36, "target": 34962}, {"buffer": 0, "byteOffset": 36, "byteLength": 6, "target": 34963}], "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3", "min": [0, 0, 0], "max": [1, 1, 0]}, {"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}]}`

func encodePNG(t *testing.T, w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: uint8(x * 10), A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestWavefrontImport(t *testing.T) {
	fsys := fstest.MapFS{
		"models/scene.obj": {Data: []byte(cubeOBJ)},
		"models/scene.mtl": {Data: []byte(sceneMTL)},
	}
	scene, err := (&WavefrontImporter{}).Import(fsys, "models/scene.obj")
	require.NoError(t, err)
	require.NoError(t, scene.Validate())

	// A material switch splits the object in two parts.
	require.Len(t, scene.Meshes, 2)
	require.Len(t, scene.Materials, 2)
	for _, m := range scene.Meshes {
		assert.Equal(t, "Quad", m.Name)
		assert.Len(t, m.Vertices, 4)
		assert.Len(t, m.Indices, 6)
	}
	assert.Equal(t, 0, scene.Meshes[0].Material)
	assert.Equal(t, 1, scene.Meshes[1].Material)

	brick := scene.Materials[0]
	assert.Equal(t, math.NewVec4(1.0, 0.5, 0.25, 1.0), brick.DiffuseColor)
	require.Len(t, brick.Textures, 1)
	assert.Equal(t, "textures/brick.png", brick.Textures[0].Path)
	assert.Equal(t, metadata.TextureUseMapDiffuse, brick.Textures[0].Use)

	metal := scene.Materials[1]
	require.Len(t, metal.Textures, 2)
	assert.Equal(t, metadata.TextureUseMapSpecular, metal.Textures[0].Use)
	assert.Equal(t, metadata.TextureUseMapNormal, metal.Textures[1].Use)
	assert.Equal(t, "metal_normal.png", metal.Textures[1].Path)

	// Tangents are generated when the file has none.
	v := scene.Meshes[0].Vertices[0]
	assert.InDelta(t, 1.0, v.Tangent.Length(), 1e-4)
	assert.Len(t, scene.Root.Children, 2)
}

func TestWavefrontMissingMaterialLibrary(t *testing.T) {
	fsys := fstest.MapFS{
		"scene.obj": {Data: []byte(cubeOBJ)},
	}
	scene, err := (&WavefrontImporter{}).Import(fsys, "scene.obj")
	require.NoError(t, err)
	assert.Empty(t, scene.Materials)
	for _, m := range scene.Meshes {
		assert.Equal(t, -1, m.Material)
	}
}

func TestWavefrontBadFace(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.obj": {Data: []byte("v 0 0 0\nf 1 2 3\n")},
	}
	_, err := (&WavefrontImporter{}).Import(fsys, "bad.obj")
	assert.ErrorIs(t, err, core.ErrIncompleteScene)
}

func TestGLTFImport(t *testing.T) {
	fsys := fstest.MapFS{
		"tri/triangle.gltf": {Data: []byte(triangleGLTF)},
	}
	scene, err := NewModelLoader().Import(fsys, "tri/triangle.gltf")
	require.NoError(t, err)

	require.Len(t, scene.Meshes, 1)
	mesh := scene.Meshes[0]
	assert.Equal(t, "Triangle", mesh.Name)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Indices)
	assert.Equal(t, math.NewVec3(1, 0, 0), mesh.Vertices[1].Position)
	// Normals are generated from the winding.
	assert.True(t, mesh.Vertices[0].Normal.Compare(math.NewVec3(0, 0, 1), 1e-5))

	require.Len(t, scene.Materials, 1)
	require.Len(t, scene.Materials[0].Textures, 1)
	assert.Equal(t, "diffuse.png", scene.Materials[0].Textures[0].Path)

	require.Len(t, scene.Root.Children, 1)
	root := scene.Root.Children[0]
	assert.Equal(t, "root", root.Name)
	require.Len(t, root.Children, 1)
	assert.Equal(t, []int{0}, root.Children[0].Meshes)
}

func TestModelLoaderRejectsUnknownFormats(t *testing.T) {
	ml := NewModelLoader()
	assert.True(t, ml.Supports("a/b/model.OBJ"))
	assert.False(t, ml.Supports("model.fbx"))

	_, err := ml.Import(fstest.MapFS{}, "model.fbx")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	_, err = ml.Import(fstest.MapFS{}, "missing.obj")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestValidateIncompleteScenes(t *testing.T) {
	var nilScene *ImportedScene
	assert.ErrorIs(t, nilScene.Validate(), core.ErrIncompleteScene)
	assert.ErrorIs(t, (&ImportedScene{}).Validate(), core.ErrIncompleteScene)

	bad := &ImportedScene{
		Root:   &ImportedNode{},
		Meshes: []*ImportedMesh{{Vertices: make([]math.ModelVertex, 2), Indices: []uint32{0, 1, 2}}},
	}
	assert.ErrorIs(t, bad.Validate(), core.ErrIncompleteScene)
}

func TestImageLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"img.png": {Data: encodePNG(t, 4, 2)},
		"bad.png": {Data: []byte("not an image")},
	}
	il := &ImageLoader{}

	res, err := il.Load(fsys, "img.png", &ImageParams{FlipX: true})
	require.NoError(t, err)
	img := res.Data.(*image.RGBA)
	assert.Equal(t, 4, img.Bounds().Dx())
	// Mirrored: the brightest pixel of the first row is now on the left.
	assert.Equal(t, uint8(30), img.RGBAAt(0, 0).R)
	assert.Equal(t, uint8(0), img.RGBAAt(3, 0).R)

	flipped, err := il.Load(fsys, "img.png", &ImageParams{FlipY: true})
	require.NoError(t, err)
	assert.Equal(t, uint8(30), flipped.Data.(*image.RGBA).RGBAAt(3, 1).R)

	_, err = il.Load(fsys, "bad.png", nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	_, err = il.Load(fsys, "missing.png", nil)
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestShaderLoader(t *testing.T) {
	fsys := fstest.MapFS{"a.vert": {Data: []byte("void main() {}")}}
	res, err := (&ShaderLoader{}).Load(fsys, "a.vert", nil)
	require.NoError(t, err)
	assert.Equal(t, "void main() {}", res.Data.(string))
}
