package headless

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

func TestCreateProgramRejectsBrokenSources(t *testing.T) {
	b := New()

	_, err := b.CreateProgram("", "void main() {}")
	assert.ErrorIs(t, err, core.ErrShaderCompile)

	_, err = b.CreateProgram("void main() {}", "#error broken\n")
	assert.ErrorIs(t, err, core.ErrShaderCompile)

	p, err := b.CreateProgram("void main() {}", "void main() {}")
	require.NoError(t, err)
	assert.NotZero(t, p)
	assert.Equal(t, 1, b.LivePrograms())
}

func TestSetUniformTypes(t *testing.T) {
	b := New()
	p, err := b.CreateProgram("void main() {}", "void main() {}")
	require.NoError(t, err)

	require.NoError(t, b.SetUniform(p, "uModel", math.NewMat4Identity()))
	require.NoError(t, b.SetUniform(p, "uTexture", 3))
	assert.ErrorIs(t, b.SetUniform(p, "uBad", "text"), core.ErrUnsupportedUniform)
	assert.ErrorIs(t, b.SetUniform(metadata.Program(99), "uModel", float32(1)), core.ErrInvalidHandle)

	v, ok := b.Uniform(p, "uTexture")
	require.True(t, ok)
	assert.Equal(t, int32(3), v)
}

func TestBufferWritesAndElementBinding(t *testing.T) {
	b := New()
	vao := b.CreateVertexArray()
	b.BindVertexArray(vao)

	vbo := b.CreateBuffer(metadata.BufferTargetArray)
	b.BindBuffer(metadata.BufferTargetArray, vbo)
	b.AllocateBuffer(metadata.BufferTargetArray, 6*4)
	b.WriteBuffer(metadata.BufferTargetArray, 0, []float32{1, 2, 3})
	b.WriteBuffer(metadata.BufferTargetArray, 3*4, []float32{4, 5, 6})
	b.EnableAttribute(0)
	b.AttributePointer(0, 3, 0, 0)

	ebo := b.CreateBuffer(metadata.BufferTargetElementArray)
	b.BindBuffer(metadata.BufferTargetElementArray, ebo)
	b.AllocateBuffer(metadata.BufferTargetElementArray, 3*4)
	b.WriteBuffer(metadata.BufferTargetElementArray, 0, []uint32{0, 1, 0})

	rec, ok := b.Buffer(vbo)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, rec.Floats())
	assert.Equal(t, ebo, b.ElementBuffer(vao))

	attr, ok := b.Attribute(vao, 0)
	require.True(t, ok)
	assert.True(t, attr.Enabled)
	assert.Equal(t, vbo, attr.Buffer)
	assert.Equal(t, int32(3), attr.Components)

	b.DrawElements(metadata.PrimitiveTriangles, 3)
	calls := b.DrawCalls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Indexed)
	assert.Equal(t, vao, calls[0].VertexArray)
}

func TestTexturesAndDepthState(t *testing.T) {
	b := New()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	tex := b.CreateTexture(metadata.Texture2DSpec(), []*image.RGBA{img})
	rec, ok := b.Texture(tex)
	require.True(t, ok)
	assert.Equal(t, 4, rec.Width)
	assert.Equal(t, 2, rec.Height)

	b.ActiveTexture(2)
	b.BindTexture(metadata.TextureType2d, tex)
	b.SetDepthFunc(metadata.DepthFuncLessEqual)
	b.SetDepthMask(false)
	b.DrawArrays(metadata.PrimitiveTriangles, 0, 3)

	call := b.DrawCalls()[0]
	assert.Equal(t, tex, call.Textures[2])
	assert.Equal(t, metadata.DepthFuncLessEqual, call.DepthFunc)
	assert.False(t, call.DepthMask)

	b.DestroyTexture(tex)
	assert.Zero(t, b.LiveTextures())
}
