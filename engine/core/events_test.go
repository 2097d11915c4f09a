package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventFireStopsAtFirstHandler(t *testing.T) {
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()

	calls := []string{}
	EventRegister(EVENT_CODE_KEY_PRESSED, func(context EventContext) bool {
		calls = append(calls, "first")
		return true
	})
	EventRegister(EVENT_CODE_KEY_PRESSED, func(context EventContext) bool {
		calls = append(calls, "second")
		return false
	})

	handled := EventFire(EventContext{Type: EVENT_CODE_KEY_PRESSED, Data: &KeyEvent{KeyCode: KEY_M}})
	assert.True(t, handled)
	assert.Equal(t, []string{"first"}, calls)
}

func TestEventFireWithoutListeners(t *testing.T) {
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()

	assert.False(t, EventFire(EventContext{Type: EVENT_CODE_RESIZED}))
}

func TestInputProcessKeyFiresOnChangeOnly(t *testing.T) {
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()
	require.NoError(t, InputInitialize())
	defer InputShutdown()

	pressed := 0
	EventRegister(EVENT_CODE_KEY_PRESSED, func(context EventContext) bool {
		ke := context.Data.(*KeyEvent)
		assert.Equal(t, KEY_W, ke.KeyCode)
		pressed++
		return true
	})

	InputProcessKey(KEY_W, true)
	InputProcessKey(KEY_W, true)
	assert.Equal(t, 1, pressed)
	assert.True(t, InputIsKeyDown(KEY_W))
	assert.False(t, InputWasKeyDown(KEY_W))

	InputUpdate(0)
	assert.True(t, InputWasKeyDown(KEY_W))
}

func TestInputKeyPressedLastsOneFrame(t *testing.T) {
	require.True(t, EventSystemInitialize())
	defer EventSystemShutdown()
	require.NoError(t, InputInitialize())
	defer InputShutdown()

	assert.False(t, InputKeyPressed(KEY_M))
	InputProcessKey(KEY_M, true)
	assert.True(t, InputKeyPressed(KEY_M))

	InputUpdate(0)
	assert.True(t, InputIsKeyDown(KEY_M))
	assert.False(t, InputKeyPressed(KEY_M))

	InputProcessKey(KEY_M, false)
	InputUpdate(0)
	assert.False(t, InputIsKeyDown(KEY_M))
}

func TestInputWithoutInitialize(t *testing.T) {
	InputProcessKey(KEY_W, true)
	assert.False(t, InputIsKeyDown(KEY_W))
	assert.False(t, InputKeyPressed(KEY_W))
	assert.NoError(t, InputUpdate(0))
}
