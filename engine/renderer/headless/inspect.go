package headless

import (
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

// Inspection helpers used by tests and tooling.

func (b *Backend) DrawCalls() []DrawCall {
	return b.drawCalls
}

// ResetDrawCalls forgets every recorded draw call. Resources are kept.
func (b *Backend) ResetDrawCalls() {
	b.drawCalls = nil
}

func (b *Backend) Program(p metadata.Program) (*ProgramRecord, bool) {
	rec, ok := b.programs[p]
	return rec, ok
}

func (b *Backend) Uniform(p metadata.Program, name string) (interface{}, bool) {
	rec, ok := b.programs[p]
	if !ok {
		return nil, false
	}
	v, ok := rec.Uniforms[name]
	return v, ok
}

func (b *Backend) Buffer(buf metadata.Buffer) (*BufferRecord, bool) {
	rec, ok := b.buffers[buf]
	return rec, ok
}

func (b *Backend) Texture(t metadata.TextureHandle) (*TextureRecord, bool) {
	rec, ok := b.textures[t]
	return rec, ok
}

// Attribute returns the layout recorded for location on the given vertex array.
func (b *Backend) Attribute(vao metadata.VertexArray, location uint32) (Attribute, bool) {
	v, ok := b.vertexArrays[vao]
	if !ok {
		return Attribute{}, false
	}
	attr, ok := v.attributes[location]
	if !ok {
		return Attribute{}, false
	}
	return *attr, true
}

// ElementBuffer returns the index buffer stored in the vertex array.
func (b *Backend) ElementBuffer(vao metadata.VertexArray) metadata.Buffer {
	if v, ok := b.vertexArrays[vao]; ok {
		return v.elementBuffer
	}
	return 0
}

func (b *Backend) LiveVertexArrays() int { return len(b.vertexArrays) }
func (b *Backend) LiveBuffers() int      { return len(b.buffers) }
func (b *Backend) LivePrograms() int     { return len(b.programs) }
func (b *Backend) LiveTextures() int     { return len(b.textures) }

func (b *Backend) DepthFunc() metadata.DepthFunc { return b.depthFunc }
func (b *Backend) DepthMask() bool               { return b.depthMask }
func (b *Backend) ActiveUnit() uint32            { return b.activeUnit }
func (b *Backend) ProgramBinds() int             { return b.programBinds }
func (b *Backend) Clears() int                   { return b.clears }

func (b *Backend) ViewportSize() (int32, int32) {
	return b.viewportWidth, b.viewportHeight
}
