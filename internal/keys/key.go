// Package keys defines the key identities, events and pass/suppress decisions
// exchanged between the OS hook and the input pipeline.
package keys

import "fmt"

// Name identifies a key the platform keymaps know by name.
type Name uint16

const (
	NameNone Name = iota

	ShiftLeft
	ShiftRight
	ControlLeft
	ControlRight
	Alt
	AltGr
	MetaLeft
	MetaRight

	Digit0
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9

	Space
	Return
	Tab
	Escape
	Backspace
	CapsLock

	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
)

var nameStrings = map[Name]string{
	ShiftLeft:    "ShiftLeft",
	ShiftRight:   "ShiftRight",
	ControlLeft:  "ControlLeft",
	ControlRight: "ControlRight",
	Alt:          "Alt",
	AltGr:        "AltGr",
	MetaLeft:     "MetaLeft",
	MetaRight:    "MetaRight",
	Space:        "Space",
	Return:       "Return",
	Tab:          "Tab",
	Escape:       "Escape",
	Backspace:    "Backspace",
	CapsLock:     "CapsLock",
}

func (n Name) String() string {
	switch {
	case n >= Digit0 && n <= Digit9:
		return fmt.Sprintf("Digit%d", n-Digit0)
	case n >= F1 && n <= F12:
		return fmt.Sprintf("F%d", n-F1+1)
	case n >= KeyA && n <= KeyZ:
		return "Key" + string(rune('A'+(n-KeyA)))
	}
	if s, ok := nameStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Name(%d)", uint16(n))
}

// ControlQuirkCode is the raw code under which some platforms report the
// right control key instead of naming it.
const ControlQuirkCode = 62

// Key is the identity of a physical or logical key: either a named key or a
// raw platform code for keys the platform does not name. Key values are
// comparable; two keys are the same key iff they are ==.
type Key struct {
	name Name
	code uint32
}

// Named returns the identity of a named key.
func Named(n Name) Key { return Key{name: n} }

// Raw returns the identity of an unnamed key reported by numeric code.
func Raw(code uint32) Key { return Key{code: code} }

// ControlQuirk is the right-control variant reported only by raw code.
var ControlQuirk = Raw(ControlQuirkCode)

// Name returns the key name, or NameNone for raw keys.
func (k Key) Name() Name { return k.name }

// Code returns the raw code. Only meaningful when IsRaw is true.
func (k Key) Code() uint32 { return k.code }

// IsRaw reports whether k is a raw-code identity.
func (k Key) IsRaw() bool { return k.name == NameNone }

// Digit reports the shortcut digit 1..9 for the top-row digit keys.
// Digit0 and every other key report false.
func (k Key) Digit() (int, bool) {
	if k.name >= Digit1 && k.name <= Digit9 {
		return int(k.name - Digit0), true
	}
	return 0, false
}

func (k Key) String() string {
	if k.IsRaw() {
		return fmt.Sprintf("Unknown(%d)", k.code)
	}
	return k.name.String()
}

// DigitKey returns the top-row key for digit d (0..9).
func DigitKey(d int) Key {
	if d < 0 || d > 9 {
		panic(fmt.Sprintf("keys: digit %d out of range", d))
	}
	return Named(Digit0 + Name(d))
}
