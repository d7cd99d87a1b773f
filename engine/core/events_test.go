package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventSystemFireStopsAtHandler(t *testing.T) {
	es := NewEventSystem()

	var calls []string
	first := func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		calls = append(calls, "first:"+data.Data.C[0])
		return true
	}
	second := func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		calls = append(calls, "second")
		return false
	}

	assert.True(t, es.Register(EVENT_CODE_SCENE_UPDATED, "a", first))
	assert.True(t, es.Register(EVENT_CODE_SCENE_UPDATED, "b", second))

	ctx := EventContext{}
	ctx.Data.C[0] = "Scene"
	assert.True(t, es.Fire(EVENT_CODE_SCENE_UPDATED, nil, ctx))
	assert.Equal(t, []string{"first:Scene"}, calls)
}

func TestEventSystemRejectsDuplicateListener(t *testing.T) {
	es := NewEventSystem()
	noop := func(SystemEventCode, interface{}, interface{}, EventContext) bool { return false }

	assert.True(t, es.Register(EVENT_CODE_RESIZED, "listener", noop))
	assert.False(t, es.Register(EVENT_CODE_RESIZED, "listener", noop))
	assert.True(t, es.Unregister(EVENT_CODE_RESIZED, "listener"))
	assert.False(t, es.Unregister(EVENT_CODE_RESIZED, "listener"))
	assert.False(t, es.Fire(EVENT_CODE_RESIZED, nil, EventContext{}))
}

func TestInputStateFiresOnChangeOnly(t *testing.T) {
	es := NewEventSystem()
	pressed := 0
	es.Register(EVENT_CODE_KEY_PRESSED, nil, func(code SystemEventCode, sender interface{}, listener interface{}, data EventContext) bool {
		assert.Equal(t, uint16(KEY_W), data.Data.U16[0])
		pressed++
		return false
	})

	in := NewInputState(es)
	in.ProcessKey(KEY_W, true)
	in.ProcessKey(KEY_W, true)
	assert.Equal(t, 1, pressed)
	assert.True(t, in.IsKeyDown(KEY_W))

	in.Update(0)
	in.ProcessKey(KEY_W, false)
	assert.True(t, in.KeyReleased(KEY_W))
	in.Update(0)
	assert.False(t, in.KeyReleased(KEY_W))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLogLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLogLevel("error"))
	assert.Equal(t, InfoLevel, ParseLogLevel("nonsense"))
}

func TestMetricsAveragesFrameTime(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < int(AVG_COUNT); i++ {
		m.Update(0.016)
	}
	assert.InDelta(t, 16.0, m.FrameTime(), 1e-6)
}
