package core

import "sync"

type EventContext struct {
	Data struct {
		I64 [2]int64
		U64 [2]uint64
		F64 [2]float64

		I32 [4]int32
		U32 [4]uint32
		F32 [4]float32

		U16 [8]uint16

		C [4]string
	}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	/* Context usage:
	 * key_code := data.Data.U16[0]
	 */
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	/* Context usage:
	 * key_code := data.Data.U16[0]
	 */
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Mouse button pressed.
	/* Context usage:
	 * button := data.Data.U16[0]
	 */
	EVENT_CODE_BUTTON_PRESSED SystemEventCode = 0x04

	// Mouse button released.
	/* Context usage:
	 * button := data.Data.U16[0]
	 */
	EVENT_CODE_BUTTON_RELEASED SystemEventCode = 0x05

	// Mouse moved.
	/* Context usage:
	 * x := data.Data.F64[0]
	 * y := data.Data.F64[1]
	 */
	EVENT_CODE_MOUSE_MOVED SystemEventCode = 0x06

	// Mouse wheel.
	/* Context usage:
	 * z_delta := data.Data.F32[0]
	 */
	EVENT_CODE_MOUSE_WHEEL SystemEventCode = 0x07

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * width := data.Data.U32[0]
	 * height := data.Data.U32[1]
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	MAX_EVENT_CODE SystemEventCode = 0xFF

	// A scene added, removed or renamed one of its objects.
	/* Context usage:
	 * scene_name := data.Data.C[0]
	 * object_name := data.Data.C[1]
	 */
	EVENT_CODE_SCENE_UPDATED SystemEventCode = 0x100
)

// Should return true if handled.
type FnOnEvent func(code SystemEventCode, sender interface{}, listenerInst interface{}, data EventContext) bool

type registeredEvent struct {
	listener interface{}
	callback FnOnEvent
}

// EventSystem dispatches events to the listeners registered for a code.
// Listeners run synchronously on the goroutine calling Fire.
type EventSystem struct {
	mutex      sync.RWMutex
	registered map[SystemEventCode][]*registeredEvent
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		registered: make(map[SystemEventCode][]*registeredEvent),
	}
}

/**
 * Register to listen for when events are sent with the provided code. Events with duplicate
 * listener/callback combos will not be registered again and will cause this to return FALSE.
 * @param code The event code to listen for.
 * @param listener A pointer to a listener instance. Can be nil.
 * @param onEvent The callback function to be invoked when the event code is fired.
 * @returns TRUE if the event is successfully registered; otherwise false.
 */
func (es *EventSystem) Register(code SystemEventCode, listener interface{}, onEvent FnOnEvent) bool {
	if onEvent == nil {
		return false
	}
	es.mutex.Lock()
	defer es.mutex.Unlock()

	for _, e := range es.registered[code] {
		if listener != nil && e.listener == listener {
			LogWarn("listener already registered for event code %d", code)
			return false
		}
	}
	es.registered[code] = append(es.registered[code], &registeredEvent{
		listener: listener,
		callback: onEvent,
	})
	return true
}

/**
 * Unregister from listening for when events are sent with the provided code. If no matching
 * registration is found, this function returns FALSE.
 */
func (es *EventSystem) Unregister(code SystemEventCode, listener interface{}) bool {
	es.mutex.Lock()
	defer es.mutex.Unlock()

	events := es.registered[code]
	for i, e := range events {
		if e.listener == listener {
			es.registered[code] = append(events[:i], events[i+1:]...)
			return true
		}
	}
	return false
}

/**
 * Fires an event to listeners of the given code. If an event handler returns
 * TRUE, the event is considered handled and is not passed on to any more listeners.
 * @returns TRUE if handled, otherwise FALSE.
 */
func (es *EventSystem) Fire(code SystemEventCode, sender interface{}, context EventContext) bool {
	es.mutex.RLock()
	events := make([]*registeredEvent, len(es.registered[code]))
	copy(events, es.registered[code])
	es.mutex.RUnlock()

	for _, e := range events {
		if e.callback(code, sender, e.listener, context) {
			return true
		}
	}
	return false
}

// Shutdown drops every registration.
func (es *EventSystem) Shutdown() {
	es.mutex.Lock()
	defer es.mutex.Unlock()
	es.registered = make(map[SystemEventCode][]*registeredEvent)
}
