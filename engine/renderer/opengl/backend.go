package opengl

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/math"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/**
 * @brief Backend implementation over the OpenGL 4.1 core profile.
 * A context must be current on the calling thread before New is called.
 */
type Backend struct {
	boundProgram metadata.Program
	// uniform locations per program, looked up once
	locations map[metadata.Program]map[string]int32
}

func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	core.LogInfo("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)

	return &Backend{
		locations: make(map[metadata.Program]map[string]int32),
	}, nil
}

func (b *Backend) Name() string {
	return "opengl"
}

func bufferTarget(target metadata.BufferTarget) uint32 {
	if target == metadata.BufferTargetElementArray {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func primitive(mode metadata.Primitive) uint32 {
	switch mode {
	case metadata.PrimitiveLines:
		return gl.LINES
	case metadata.PrimitivePoints:
		return gl.POINTS
	case metadata.PrimitiveLineLoop:
		return gl.LINE_LOOP
	case metadata.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	default:
		return gl.TRIANGLES
	}
}

func (b *Backend) CreateVertexArray() metadata.VertexArray {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return metadata.VertexArray(vao)
}

func (b *Backend) BindVertexArray(vao metadata.VertexArray) {
	gl.BindVertexArray(uint32(vao))
}

func (b *Backend) DestroyVertexArray(vao metadata.VertexArray) {
	if vao == 0 {
		return
	}
	v := uint32(vao)
	gl.DeleteVertexArrays(1, &v)
}

func (b *Backend) CreateBuffer(target metadata.BufferTarget) metadata.Buffer {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return metadata.Buffer(buf)
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, buffer metadata.Buffer) {
	gl.BindBuffer(bufferTarget(target), uint32(buffer))
}

func (b *Backend) AllocateBuffer(target metadata.BufferTarget, size int) {
	gl.BufferData(bufferTarget(target), size, nil, gl.STATIC_DRAW)
}

func (b *Backend) WriteBuffer(target metadata.BufferTarget, offset int, data interface{}) {
	switch d := data.(type) {
	case []float32:
		if len(d) == 0 {
			return
		}
		gl.BufferSubData(bufferTarget(target), offset, len(d)*4, gl.Ptr(d))
	case []uint32:
		if len(d) == 0 {
			return
		}
		gl.BufferSubData(bufferTarget(target), offset, len(d)*4, gl.Ptr(d))
	default:
		core.LogWarn("opengl: unsupported buffer data %T", data)
	}
}

func (b *Backend) DestroyBuffer(buffer metadata.Buffer) {
	if buffer == 0 {
		return
	}
	buf := uint32(buffer)
	gl.DeleteBuffers(1, &buf)
}

func (b *Backend) EnableAttribute(location uint32) {
	gl.EnableVertexAttribArray(location)
}

func (b *Backend) AttributePointer(location uint32, components int32, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(location, components, gl.FLOAT, false, stride, uintptr(offset))
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(msg))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s: %w", strings.TrimRight(msg, "\x00"), core.ErrShaderCompile)
	}
	return shader, nil
}

func (b *Backend) CreateProgram(vertexSource, fragmentSource string) (metadata.Program, error) {
	vs, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex stage: %w", err)
	}
	defer gl.DeleteShader(vs)
	fs, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, fmt.Errorf("fragment stage: %w", err)
	}
	defer gl.DeleteShader(fs)

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		msg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(msg))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s: %w", strings.TrimRight(msg, "\x00"), core.ErrShaderCompile)
	}
	return metadata.Program(program), nil
}

func (b *Backend) UseProgram(program metadata.Program) {
	gl.UseProgram(uint32(program))
	b.boundProgram = program
}

func (b *Backend) BoundProgram() metadata.Program {
	return b.boundProgram
}

func (b *Backend) DestroyProgram(program metadata.Program) {
	if program == 0 {
		return
	}
	gl.DeleteProgram(uint32(program))
	delete(b.locations, program)
	if b.boundProgram == program {
		b.boundProgram = 0
	}
}

func (b *Backend) location(program metadata.Program, name string) int32 {
	cache, ok := b.locations[program]
	if !ok {
		cache = make(map[string]int32)
		b.locations[program] = cache
	}
	loc, ok := cache[name]
	if !ok {
		loc = gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
		cache[name] = loc
	}
	return loc
}

// SetUniform expects program to be bound. Unknown uniform names are ignored like GL does.
func (b *Backend) SetUniform(program metadata.Program, name string, value interface{}) error {
	if program == 0 {
		return fmt.Errorf("uniform %q: %w", name, core.ErrInvalidHandle)
	}
	loc := b.location(program, name)
	switch v := value.(type) {
	case math.Mat4:
		gl.UniformMatrix4fv(loc, 1, false, &v.Data[0])
	case math.Vec2:
		gl.Uniform2f(loc, v.X, v.Y)
	case math.Vec3:
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	case math.Vec4:
		gl.Uniform4f(loc, v.X, v.Y, v.Z, v.W)
	case float32:
		gl.Uniform1f(loc, v)
	case int32:
		gl.Uniform1i(loc, v)
	case int:
		gl.Uniform1i(loc, int32(v))
	case bool:
		var i int32
		if v {
			i = 1
		}
		gl.Uniform1i(loc, i)
	default:
		return fmt.Errorf("uniform %q of type %T: %w", name, value, core.ErrUnsupportedUniform)
	}
	return nil
}

func filter(f metadata.TextureFilter) int32 {
	switch f {
	case metadata.TextureFilterModeNearest:
		return gl.NEAREST
	case metadata.TextureFilterModeLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

func wrap(r metadata.TextureRepeat) int32 {
	switch r {
	case metadata.TextureRepeatMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case metadata.TextureRepeatClampToEdge:
		return gl.CLAMP_TO_EDGE
	default:
		return gl.REPEAT
	}
}

func textureTarget(kind metadata.TextureType) uint32 {
	if kind == metadata.TextureTypeCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func upload(target uint32, img *image.RGBA) {
	w, h := int32(img.Bounds().Dx()), int32(img.Bounds().Dy())
	gl.TexImage2D(target, 0, gl.RGBA8, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
}

func (b *Backend) CreateTexture(spec metadata.TextureSpec, faces []*image.RGBA) metadata.TextureHandle {
	var tex uint32
	gl.GenTextures(1, &tex)
	target := textureTarget(spec.TextureType)
	gl.BindTexture(target, tex)

	if spec.TextureType == metadata.TextureTypeCube {
		for i, face := range faces {
			if i >= 6 {
				break
			}
			upload(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), face)
		}
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, wrap(spec.Repeat))
	} else if len(faces) > 0 {
		upload(gl.TEXTURE_2D, faces[0])
	}

	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, filter(spec.FilterMinify))
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, filter(spec.FilterMagnify))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, wrap(spec.Repeat))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, wrap(spec.Repeat))
	if spec.GenerateMipmaps {
		gl.GenerateMipmap(target)
	}
	gl.BindTexture(target, 0)
	return metadata.TextureHandle(tex)
}

func (b *Backend) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (b *Backend) BindTexture(kind metadata.TextureType, texture metadata.TextureHandle) {
	gl.BindTexture(textureTarget(kind), uint32(texture))
}

func (b *Backend) DestroyTexture(texture metadata.TextureHandle) {
	if texture == 0 {
		return
	}
	t := uint32(texture)
	gl.DeleteTextures(1, &t)
}

func (b *Backend) DrawArrays(mode metadata.Primitive, first, count int32) {
	gl.DrawArrays(primitive(mode), first, count)
}

func (b *Backend) DrawElements(mode metadata.Primitive, count int32) {
	gl.DrawElements(primitive(mode), count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (b *Backend) SetDepthFunc(fn metadata.DepthFunc) {
	switch fn {
	case metadata.DepthFuncLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	case metadata.DepthFuncAlways:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (b *Backend) SetDepthMask(write bool) {
	gl.DepthMask(write)
}

func (b *Backend) Viewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

func (b *Backend) Clear(color math.Vec4) {
	gl.ClearColor(color.X, color.Y, color.Z, color.W)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
