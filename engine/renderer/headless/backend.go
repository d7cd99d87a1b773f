package headless

import (
	"fmt"
	"image"
	gomath "math"
	"strings"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/**
 * @brief A vertex attribute layout as recorded by AttributePointer.
 */
type Attribute struct {
	Buffer     metadata.Buffer
	Components int32
	Stride     int32
	Offset     int
	Enabled    bool
}

type vertexArray struct {
	elementBuffer metadata.Buffer
	attributes    map[uint32]*Attribute
}

/** @brief Contents of a buffer as 32-bit words. */
type BufferRecord struct {
	Target metadata.BufferTarget
	Words  []uint32
}

// Floats returns the buffer contents reinterpreted as float32 values.
func (b *BufferRecord) Floats() []float32 {
	out := make([]float32, len(b.Words))
	for i, w := range b.Words {
		out[i] = gomath.Float32frombits(w)
	}
	return out
}

type ProgramRecord struct {
	VertexSource   string
	FragmentSource string
	Uniforms       map[string]interface{}
}

type TextureRecord struct {
	Spec   metadata.TextureSpec
	Width  int
	Height int
	Faces  int
	// Sizes of every uploaded face, in upload order.
	FaceSizes []image.Point
}

/**
 * @brief A single recorded draw call with the state it was issued under.
 */
type DrawCall struct {
	Primitive   metadata.Primitive
	Indexed     bool
	First       int32
	Count       int32
	Program     metadata.Program
	VertexArray metadata.VertexArray
	DepthFunc   metadata.DepthFunc
	DepthMask   bool
	ActiveUnit  uint32
	// Textures bound per unit at the time of the call.
	Textures map[uint32]metadata.TextureHandle
}

/**
 * @brief A Backend that keeps every resource in memory and records draw calls.
 * Used by tests and by tooling that has no graphics context.
 */
type Backend struct {
	nextHandle uint32

	vertexArrays map[metadata.VertexArray]*vertexArray
	buffers      map[metadata.Buffer]*BufferRecord
	programs     map[metadata.Program]*ProgramRecord
	textures     map[metadata.TextureHandle]*TextureRecord

	boundVertexArray metadata.VertexArray
	boundArrayBuffer metadata.Buffer
	boundProgram     metadata.Program
	activeUnit       uint32
	unitTextures     map[uint32]metadata.TextureHandle

	depthFunc metadata.DepthFunc
	depthMask bool

	viewportWidth, viewportHeight int32
	clears                        int

	drawCalls    []DrawCall
	programBinds int
}

func New() *Backend {
	return &Backend{
		vertexArrays: make(map[metadata.VertexArray]*vertexArray),
		buffers:      make(map[metadata.Buffer]*BufferRecord),
		programs:     make(map[metadata.Program]*ProgramRecord),
		textures:     make(map[metadata.TextureHandle]*TextureRecord),
		unitTextures: make(map[uint32]metadata.TextureHandle),
		depthFunc:    metadata.DepthFuncLess,
		depthMask:    true,
	}
}

func (b *Backend) Name() string {
	return "headless"
}

func (b *Backend) handle() uint32 {
	b.nextHandle++
	return b.nextHandle
}

func (b *Backend) CreateVertexArray() metadata.VertexArray {
	vao := metadata.VertexArray(b.handle())
	b.vertexArrays[vao] = &vertexArray{attributes: make(map[uint32]*Attribute)}
	return vao
}

func (b *Backend) BindVertexArray(vao metadata.VertexArray) {
	if vao != 0 {
		if _, ok := b.vertexArrays[vao]; !ok {
			core.LogWarn("headless: bind of unknown vertex array %d", vao)
			return
		}
	}
	b.boundVertexArray = vao
}

func (b *Backend) DestroyVertexArray(vao metadata.VertexArray) {
	delete(b.vertexArrays, vao)
	if b.boundVertexArray == vao {
		b.boundVertexArray = 0
	}
}

func (b *Backend) CreateBuffer(target metadata.BufferTarget) metadata.Buffer {
	buf := metadata.Buffer(b.handle())
	b.buffers[buf] = &BufferRecord{Target: target}
	return buf
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, buffer metadata.Buffer) {
	if buffer != 0 {
		if _, ok := b.buffers[buffer]; !ok {
			core.LogWarn("headless: bind of unknown buffer %d", buffer)
			return
		}
	}
	switch target {
	case metadata.BufferTargetArray:
		b.boundArrayBuffer = buffer
	case metadata.BufferTargetElementArray:
		// The element binding is part of the vertex array state.
		if vao, ok := b.vertexArrays[b.boundVertexArray]; ok {
			vao.elementBuffer = buffer
		}
	}
}

func (b *Backend) bound(target metadata.BufferTarget) *BufferRecord {
	var buf metadata.Buffer
	switch target {
	case metadata.BufferTargetArray:
		buf = b.boundArrayBuffer
	case metadata.BufferTargetElementArray:
		if vao, ok := b.vertexArrays[b.boundVertexArray]; ok {
			buf = vao.elementBuffer
		}
	}
	return b.buffers[buf]
}

func (b *Backend) AllocateBuffer(target metadata.BufferTarget, size int) {
	rec := b.bound(target)
	if rec == nil {
		core.LogWarn("headless: allocate with no buffer bound")
		return
	}
	rec.Words = make([]uint32, (size+3)/4)
}

func (b *Backend) WriteBuffer(target metadata.BufferTarget, offset int, data interface{}) {
	rec := b.bound(target)
	if rec == nil {
		core.LogWarn("headless: write with no buffer bound")
		return
	}
	var words []uint32
	switch d := data.(type) {
	case []float32:
		words = make([]uint32, len(d))
		for i, f := range d {
			words[i] = gomath.Float32bits(f)
		}
	case []uint32:
		words = d
	default:
		core.LogWarn("headless: unsupported buffer data %T", data)
		return
	}
	start := offset / 4
	if start+len(words) > len(rec.Words) {
		core.LogWarn("headless: write of %d words at %d overflows buffer of %d words", len(words), start, len(rec.Words))
		return
	}
	copy(rec.Words[start:], words)
}

func (b *Backend) DestroyBuffer(buffer metadata.Buffer) {
	delete(b.buffers, buffer)
	if b.boundArrayBuffer == buffer {
		b.boundArrayBuffer = 0
	}
}

func (b *Backend) EnableAttribute(location uint32) {
	vao, ok := b.vertexArrays[b.boundVertexArray]
	if !ok {
		return
	}
	attr, ok := vao.attributes[location]
	if !ok {
		attr = &Attribute{}
		vao.attributes[location] = attr
	}
	attr.Enabled = true
}

func (b *Backend) AttributePointer(location uint32, components int32, stride int32, offset int) {
	vao, ok := b.vertexArrays[b.boundVertexArray]
	if !ok {
		return
	}
	attr, ok := vao.attributes[location]
	if !ok {
		attr = &Attribute{}
		vao.attributes[location] = attr
	}
	attr.Buffer = b.boundArrayBuffer
	attr.Components = components
	attr.Stride = stride
	attr.Offset = offset
}

// CreateProgram fails on empty sources and on sources containing an #error directive.
func (b *Backend) CreateProgram(vertexSource, fragmentSource string) (metadata.Program, error) {
	for stage, src := range map[string]string{"vertex": vertexSource, "fragment": fragmentSource} {
		if strings.TrimSpace(src) == "" {
			return 0, fmt.Errorf("%s stage is empty: %w", stage, core.ErrShaderCompile)
		}
		if strings.Contains(src, "#error") {
			return 0, fmt.Errorf("%s stage has an #error directive: %w", stage, core.ErrShaderCompile)
		}
	}
	p := metadata.Program(b.handle())
	b.programs[p] = &ProgramRecord{
		VertexSource:   vertexSource,
		FragmentSource: fragmentSource,
		Uniforms:       make(map[string]interface{}),
	}
	return p, nil
}

func (b *Backend) UseProgram(program metadata.Program) {
	b.programBinds++
	b.boundProgram = program
}

func (b *Backend) BoundProgram() metadata.Program {
	return b.boundProgram
}

func (b *Backend) DestroyProgram(program metadata.Program) {
	delete(b.programs, program)
	if b.boundProgram == program {
		b.boundProgram = 0
	}
}

func (b *Backend) SetUniform(program metadata.Program, name string, value interface{}) error {
	rec, ok := b.programs[program]
	if !ok {
		return fmt.Errorf("program %d: %w", program, core.ErrInvalidHandle)
	}
	switch v := value.(type) {
	case math.Mat4, math.Vec2, math.Vec3, math.Vec4, float32, int32, bool:
		rec.Uniforms[name] = v
	case int:
		rec.Uniforms[name] = int32(v)
	default:
		return fmt.Errorf("uniform %q of type %T: %w", name, value, core.ErrUnsupportedUniform)
	}
	return nil
}

func (b *Backend) CreateTexture(spec metadata.TextureSpec, faces []*image.RGBA) metadata.TextureHandle {
	rec := &TextureRecord{Spec: spec, Faces: len(faces)}
	if len(faces) > 0 && faces[0] != nil {
		rec.Width = faces[0].Bounds().Dx()
		rec.Height = faces[0].Bounds().Dy()
	}
	for _, f := range faces {
		if f != nil {
			rec.FaceSizes = append(rec.FaceSizes, f.Bounds().Size())
		}
	}
	tex := metadata.TextureHandle(b.handle())
	b.textures[tex] = rec
	return tex
}

func (b *Backend) ActiveTexture(unit uint32) {
	b.activeUnit = unit
}

func (b *Backend) BindTexture(kind metadata.TextureType, texture metadata.TextureHandle) {
	if texture == 0 {
		delete(b.unitTextures, b.activeUnit)
		return
	}
	b.unitTextures[b.activeUnit] = texture
}

func (b *Backend) DestroyTexture(texture metadata.TextureHandle) {
	delete(b.textures, texture)
	for unit, t := range b.unitTextures {
		if t == texture {
			delete(b.unitTextures, unit)
		}
	}
}

func (b *Backend) record(mode metadata.Primitive, indexed bool, first, count int32) {
	textures := make(map[uint32]metadata.TextureHandle, len(b.unitTextures))
	for unit, t := range b.unitTextures {
		textures[unit] = t
	}
	b.drawCalls = append(b.drawCalls, DrawCall{
		Primitive:   mode,
		Indexed:     indexed,
		First:       first,
		Count:       count,
		Program:     b.boundProgram,
		VertexArray: b.boundVertexArray,
		DepthFunc:   b.depthFunc,
		DepthMask:   b.depthMask,
		ActiveUnit:  b.activeUnit,
		Textures:    textures,
	})
}

func (b *Backend) DrawArrays(mode metadata.Primitive, first, count int32) {
	b.record(mode, false, first, count)
}

func (b *Backend) DrawElements(mode metadata.Primitive, count int32) {
	if rec := b.bound(metadata.BufferTargetElementArray); rec == nil || int(count) > len(rec.Words) {
		core.LogWarn("headless: DrawElements of %d indices without a large enough element buffer", count)
	}
	b.record(mode, true, 0, count)
}

func (b *Backend) SetDepthFunc(fn metadata.DepthFunc) {
	b.depthFunc = fn
}

func (b *Backend) SetDepthMask(write bool) {
	b.depthMask = write
}

func (b *Backend) Viewport(width, height int32) {
	b.viewportWidth = width
	b.viewportHeight = height
}

func (b *Backend) Clear(color math.Vec4) {
	b.clears++
}
