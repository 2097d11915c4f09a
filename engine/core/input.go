package core

// KeyCode identifies a key independently of the windowing backend. Letters
// and digits use their ascii code.
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20
	KEY_LEFT      KeyCode = 0x25
	KEY_UP        KeyCode = 0x26
	KEY_RIGHT     KeyCode = 0x27
	KEY_DOWN      KeyCode = 0x28
	KEY_A         KeyCode = 0x41
	KEY_D         KeyCode = 0x44
	KEY_E         KeyCode = 0x45
	KEY_K         KeyCode = 0x4B
	KEY_M         KeyCode = 0x4D
	KEY_O         KeyCode = 0x4F
	KEY_Q         KeyCode = 0x51
	KEY_S         KeyCode = 0x53
	KEY_W         KeyCode = 0x57
	KEY_Z         KeyCode = 0x5A
	KEY_F1        KeyCode = 0x70
	KEY_F5        KeyCode = 0x74
	KEY_F12       KeyCode = 0x7B
	KEY_LSHIFT    KeyCode = 0xA0
	KEY_RSHIFT    KeyCode = 0xA1
	KEY_LCONTROL  KeyCode = 0xA2
	KEY_RCONTROL  KeyCode = 0xA3
	KEYS_MAX_KEYS KeyCode = 0xFF
)

type keyboard [KEYS_MAX_KEYS + 1]bool

// keys held now and at the end of the previous frame
type inputState struct {
	current, previous keyboard
}

var input *inputState

func InputInitialize() error {
	input = &inputState{}
	LogInfo("Input subsystem initialized.")
	return nil
}

func InputShutdown() error {
	input = nil
	return nil
}

// InputUpdate snapshots the keyboard. Call it once per frame after everything
// that reads input has run.
func InputUpdate(deltaTime float64) error {
	if input != nil {
		input.previous = input.current
	}
	return nil
}

func InputIsKeyDown(key KeyCode) bool {
	return input != nil && input.current[key]
}

func InputWasKeyDown(key KeyCode) bool {
	return input != nil && input.previous[key]
}

// InputKeyPressed reports a key that went down during the current frame.
func InputKeyPressed(key KeyCode) bool {
	return InputIsKeyDown(key) && !InputWasKeyDown(key)
}

// InputProcessKey records a key transition coming from the platform layer
// and fires EVENT_CODE_KEY_PRESSED or EVENT_CODE_KEY_RELEASED when the state
// actually changed. Key repeats are dropped.
func InputProcessKey(key KeyCode, pressed bool) {
	if input == nil || key > KEYS_MAX_KEYS || input.current[key] == pressed {
		return
	}
	input.current[key] = pressed

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	EventFire(EventContext{
		Type: code,
		Data: &KeyEvent{KeyCode: key},
	})
}
