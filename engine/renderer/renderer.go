package renderer

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
)

type RendererType uint8

const (
	OpenGL RendererType = iota
	Headless
)

func ParseRendererType(s string) (RendererType, error) {
	switch strings.ToLower(s) {
	case "", "opengl", "gl":
		return OpenGL, nil
	case "headless":
		return Headless, nil
	}
	return OpenGL, fmt.Errorf("unknown renderer type %q", s)
}

/**
 * @brief Frame-level front end over a Backend: clears, viewport and resize.
 */
type Renderer struct {
	backend    Backend
	clearColor math.Vec4
	width      uint32
	height     uint32
}

func New(backend Backend, width, height uint32) *Renderer {
	r := &Renderer{
		backend:    backend,
		clearColor: math.NewVec4(0.0, 0.25, 0.0, 1.0),
	}
	r.OnResize(width, height)
	core.LogInfo("renderer initialized with %s backend", backend.Name())
	return r
}

func (r *Renderer) Backend() Backend {
	return r.backend
}

func (r *Renderer) SetClearColor(color math.Vec4) {
	r.clearColor = color
}

func (r *Renderer) Size() (uint32, uint32) {
	return r.width, r.height
}

func (r *Renderer) BeginFrame() {
	r.backend.Clear(r.clearColor)
}

func (r *Renderer) OnResize(width, height uint32) {
	r.width = width
	r.height = height
	r.backend.Viewport(int32(width), int32(height))
}
