package renderer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/headless"
)

func TestRendererFrame(t *testing.T) {
	b := headless.New()
	r := renderer.New(b, 800, 600)

	w, h := b.ViewportSize()
	assert.Equal(t, int32(800), w)
	assert.Equal(t, int32(600), h)

	r.BeginFrame()
	r.BeginFrame()
	assert.Equal(t, 2, b.Clears())

	r.OnResize(1024, 768)
	rw, rh := r.Size()
	assert.Equal(t, uint32(1024), rw)
	assert.Equal(t, uint32(768), rh)
}

func TestParseRendererType(t *testing.T) {
	rt, err := renderer.ParseRendererType("headless")
	assert.NoError(t, err)
	assert.Equal(t, renderer.Headless, rt)

	rt, err = renderer.ParseRendererType("")
	assert.NoError(t, err)
	assert.Equal(t, renderer.OpenGL, rt)

	_, err = renderer.ParseRendererType("vulkan")
	assert.Error(t, err)
}
