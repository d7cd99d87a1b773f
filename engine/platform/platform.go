package platform

import (
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/spaghettifunk/qtk/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

var keyCodes = map[glfw.Key]core.KeyCode{
	glfw.KeyTab:       core.KEY_TAB,
	glfw.KeyEnter:     core.KEY_ENTER,
	glfw.KeyLeftShift: core.KEY_SHIFT,
	glfw.KeyEscape:    core.KEY_ESCAPE,
	glfw.KeySpace:     core.KEY_SPACE,
	glfw.KeyLeft:      core.KEY_LEFT,
	glfw.KeyUp:        core.KEY_UP,
	glfw.KeyRight:     core.KEY_RIGHT,
	glfw.KeyDown:      core.KEY_DOWN,
	glfw.KeyA:         core.KEY_A,
	glfw.KeyD:         core.KEY_D,
	glfw.KeyE:         core.KEY_E,
	glfw.KeyL:         core.KEY_L,
	glfw.KeyP:         core.KEY_P,
	glfw.KeyQ:         core.KEY_Q,
	glfw.KeyR:         core.KEY_R,
	glfw.KeyS:         core.KEY_S,
	glfw.KeyW:         core.KEY_W,
	glfw.KeyF1:        core.KEY_F1,
}

var buttons = map[glfw.MouseButton]core.Button{
	glfw.MouseButtonLeft:   core.BUTTON_LEFT,
	glfw.MouseButtonRight:  core.BUTTON_RIGHT,
	glfw.MouseButtonMiddle: core.BUTTON_MIDDLE,
}

/**
 * @brief A glfw window with an OpenGL 4.1 core context. Window callbacks are
 * translated into input state changes and engine events.
 */
type Platform struct {
	Window *glfw.Window

	events    *core.EventSystem
	input     *core.InputState
	startTime float64
}

func New(events *core.EventSystem, input *core.InputState) *Platform {
	return &Platform{
		events: events,
		input:  input,
	}
}

// Startup opens the window and makes its context current on the calling thread.
func (p *Platform) Startup(applicationName string, x uint32, y uint32, width uint32, height uint32) error {
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return err
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(width), int(height), applicationName, nil, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return err
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	p.Window = window

	p.Window.SetKeyCallback(p.keyCallback)
	p.Window.SetMouseButtonCallback(p.mouseButtonCallback)
	p.Window.SetCursorPosCallback(p.cursorPosCallback)
	p.Window.SetScrollCallback(p.scrollCallback)
	p.Window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	p.Window.SetCloseCallback(p.closeCallback)
	p.Window.SetPos(int(x), int(y))
	p.Window.Show()

	p.startTime = glfw.GetTime()
	return nil
}

func (p *Platform) Shutdown() error {
	if p.Window != nil {
		p.Window.Destroy()
		p.Window = nil
	}
	glfw.Terminate()
	return nil
}

// PumpMessages processes pending window events. Returns false once the
// window was asked to close.
func (p *Platform) PumpMessages() bool {
	glfw.PollEvents()
	return !p.Window.ShouldClose()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// FramebufferSize returns the drawable size in pixels.
func (p *Platform) FramebufferSize() (uint32, uint32) {
	w, h := p.Window.GetFramebufferSize()
	return uint32(w), uint32(h)
}

// GetAbsoluteTime returns seconds since Startup.
func (p *Platform) GetAbsoluteTime() float64 {
	return glfw.GetTime() - p.startTime
}

func (p *Platform) Sleep(ms float64) {
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}

func (p *Platform) keyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	code, ok := keyCodes[key]
	if !ok || action == glfw.Repeat {
		return
	}
	p.input.ProcessKey(code, action == glfw.Press)
}

func (p *Platform) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if b, ok := buttons[button]; ok {
		p.input.ProcessButton(b, action == glfw.Press)
	}
}

func (p *Platform) cursorPosCallback(w *glfw.Window, xpos, ypos float64) {
	p.input.ProcessMouseMove(xpos, ypos)
}

func (p *Platform) scrollCallback(w *glfw.Window, xoff, yoff float64) {
	p.input.ProcessMouseWheel(float32(yoff))
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	ctx := core.EventContext{}
	ctx.Data.U32[0] = uint32(width)
	ctx.Data.U32[1] = uint32(height)
	p.events.Fire(core.EVENT_CODE_RESIZED, p, ctx)
}

func (p *Platform) closeCallback(w *glfw.Window) {
	p.events.Fire(core.EVENT_CODE_APPLICATION_QUIT, p, core.EventContext{})
}
