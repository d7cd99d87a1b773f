package core

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_TAB    KeyCode = 0x09
	KEY_ENTER  KeyCode = 0x0D
	KEY_SHIFT  KeyCode = 0x10
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_LEFT   KeyCode = 0x25
	KEY_UP     KeyCode = 0x26
	KEY_RIGHT  KeyCode = 0x27
	KEY_DOWN   KeyCode = 0x28
	KEY_A      KeyCode = 0x41
	KEY_D      KeyCode = 0x44
	KEY_E      KeyCode = 0x45
	KEY_L      KeyCode = 0x4C
	KEY_P      KeyCode = 0x50
	KEY_Q      KeyCode = 0x51
	KEY_R      KeyCode = 0x52
	KEY_S      KeyCode = 0x53
	KEY_W      KeyCode = 0x57
	KEY_F1     KeyCode = 0x70
	KEYS_MAX_KEYS
)

// Mouse state structure
type MouseState struct {
	X       float64
	Y       float64
	Buttons [BUTTON_MAX_BUTTONS]bool
}

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// InputState holds current and previous states for keyboard and mouse and
// fires the matching events when a state changes.
type InputState struct {
	KeyboardCurrent  KeyboardState
	KeyboardPrevious KeyboardState
	MouseCurrent     MouseState
	MousePrevious    MouseState

	events *EventSystem
}

func NewInputState(events *EventSystem) *InputState {
	return &InputState{events: events}
}

// Update copies current states to previous states. Call once at the end of a frame.
func (is *InputState) Update(deltaTime float64) {
	is.KeyboardPrevious = is.KeyboardCurrent
	is.MousePrevious = is.MouseCurrent
}

func (is *InputState) IsKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return is.KeyboardCurrent.Keys[key]
}

func (is *InputState) IsKeyUp(key KeyCode) bool {
	return !is.IsKeyDown(key)
}

func (is *InputState) WasKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	return is.KeyboardPrevious.Keys[key]
}

// KeyReleased reports a down-to-up transition since the previous frame.
func (is *InputState) KeyReleased(key KeyCode) bool {
	return is.IsKeyUp(key) && is.WasKeyDown(key)
}

func (is *InputState) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	// Only handle this if the state actually changed.
	if is.KeyboardCurrent.Keys[key] == pressed {
		return
	}
	is.KeyboardCurrent.Keys[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	if is.events != nil {
		ctx := EventContext{}
		ctx.Data.U16[0] = uint16(key)
		is.events.Fire(code, is, ctx)
	}
}

func (is *InputState) IsButtonDown(button Button) bool {
	return is.MouseCurrent.Buttons[button]
}

func (is *InputState) MouseDelta() (float64, float64) {
	return is.MouseCurrent.X - is.MousePrevious.X, is.MouseCurrent.Y - is.MousePrevious.Y
}

func (is *InputState) ProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS || is.MouseCurrent.Buttons[button] == pressed {
		return
	}
	is.MouseCurrent.Buttons[button] = pressed

	code := EVENT_CODE_BUTTON_RELEASED
	if pressed {
		code = EVENT_CODE_BUTTON_PRESSED
	}
	if is.events != nil {
		ctx := EventContext{}
		ctx.Data.U16[0] = uint16(button)
		is.events.Fire(code, is, ctx)
	}
}

func (is *InputState) ProcessMouseMove(x, y float64) {
	if is.MouseCurrent.X == x && is.MouseCurrent.Y == y {
		return
	}
	is.MouseCurrent.X = x
	is.MouseCurrent.Y = y

	if is.events != nil {
		ctx := EventContext{}
		ctx.Data.F64[0] = x
		ctx.Data.F64[1] = y
		is.events.Fire(EVENT_CODE_MOUSE_MOVED, is, ctx)
	}
}

func (is *InputState) ProcessMouseWheel(zDelta float32) {
	if is.events != nil {
		ctx := EventContext{}
		ctx.Data.F32[0] = zDelta
		is.events.Fire(EVENT_CODE_MOUSE_WHEEL, is, ctx)
	}
}
