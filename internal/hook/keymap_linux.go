//go:build linux

package hook

import (
	evdev "github.com/holoplot/go-evdev"

	"shorty/internal/keys"
)

// namedCodes covers every code below 64 that could otherwise collide with
// keys.ControlQuirkCode, plus the modifiers.
var namedCodes = map[evdev.EvCode]keys.Name{
	evdev.KEY_ESC:       keys.Escape,
	evdev.KEY_1:         keys.Digit1,
	evdev.KEY_2:         keys.Digit2,
	evdev.KEY_3:         keys.Digit3,
	evdev.KEY_4:         keys.Digit4,
	evdev.KEY_5:         keys.Digit5,
	evdev.KEY_6:         keys.Digit6,
	evdev.KEY_7:         keys.Digit7,
	evdev.KEY_8:         keys.Digit8,
	evdev.KEY_9:         keys.Digit9,
	evdev.KEY_0:         keys.Digit0,
	evdev.KEY_BACKSPACE: keys.Backspace,
	evdev.KEY_TAB:       keys.Tab,
	evdev.KEY_ENTER:     keys.Return,
	evdev.KEY_SPACE:     keys.Space,
	evdev.KEY_CAPSLOCK:  keys.CapsLock,

	evdev.KEY_LEFTSHIFT:  keys.ShiftLeft,
	evdev.KEY_RIGHTSHIFT: keys.ShiftRight,
	evdev.KEY_LEFTCTRL:   keys.ControlLeft,
	evdev.KEY_RIGHTCTRL:  keys.ControlRight,
	evdev.KEY_LEFTALT:    keys.Alt,
	evdev.KEY_RIGHTALT:   keys.AltGr,
	evdev.KEY_LEFTMETA:   keys.MetaLeft,
	evdev.KEY_RIGHTMETA:  keys.MetaRight,

	evdev.KEY_F1:  keys.F1,
	evdev.KEY_F2:  keys.F2,
	evdev.KEY_F3:  keys.F3,
	evdev.KEY_F4:  keys.F4,
	evdev.KEY_F5:  keys.F5,
	evdev.KEY_F6:  keys.F6,
	evdev.KEY_F7:  keys.F7,
	evdev.KEY_F8:  keys.F8,
	evdev.KEY_F9:  keys.F9,
	evdev.KEY_F10: keys.F10,
	evdev.KEY_F11: keys.F11,
	evdev.KEY_F12: keys.F12,

	evdev.KEY_A: keys.KeyA,
	evdev.KEY_B: keys.KeyB,
	evdev.KEY_C: keys.KeyC,
	evdev.KEY_D: keys.KeyD,
	evdev.KEY_E: keys.KeyE,
	evdev.KEY_F: keys.KeyF,
	evdev.KEY_G: keys.KeyG,
	evdev.KEY_H: keys.KeyH,
	evdev.KEY_I: keys.KeyI,
	evdev.KEY_J: keys.KeyJ,
	evdev.KEY_K: keys.KeyK,
	evdev.KEY_L: keys.KeyL,
	evdev.KEY_M: keys.KeyM,
	evdev.KEY_N: keys.KeyN,
	evdev.KEY_O: keys.KeyO,
	evdev.KEY_P: keys.KeyP,
	evdev.KEY_Q: keys.KeyQ,
	evdev.KEY_R: keys.KeyR,
	evdev.KEY_S: keys.KeyS,
	evdev.KEY_T: keys.KeyT,
	evdev.KEY_U: keys.KeyU,
	evdev.KEY_V: keys.KeyV,
	evdev.KEY_W: keys.KeyW,
	evdev.KEY_X: keys.KeyX,
	evdev.KEY_Y: keys.KeyY,
	evdev.KEY_Z: keys.KeyZ,
}

// unnamedLowCodes are the punctuation keys below 64 without a keys.Name.
// They are reported with a code offset so they never alias the quirk code.
const unnamedCodeOffset = 0x10000

func keyFromCode(code evdev.EvCode) keys.Key {
	if name, ok := namedCodes[code]; ok {
		return keys.Named(name)
	}
	return keys.Raw(unnamedCodeOffset + uint32(code))
}
