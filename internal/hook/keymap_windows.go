//go:build windows

package hook

import "shorty/internal/keys"

// Virtual-key codes as reported by low-level keyboard hooks, which always
// distinguish left and right modifiers.
const (
	vkBack     = 0x08
	vkTab      = 0x09
	vkReturn   = 0x0D
	vkCapital  = 0x14
	vkEscape   = 0x1B
	vkSpace    = 0x20
	vkLWin     = 0x5B
	vkRWin     = 0x5C
	vkF1       = 0x70
	vkLShift   = 0xA0
	vkRShift   = 0xA1
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5
)

var namedVK = map[uint32]keys.Name{
	vkBack:     keys.Backspace,
	vkTab:      keys.Tab,
	vkReturn:   keys.Return,
	vkCapital:  keys.CapsLock,
	vkEscape:   keys.Escape,
	vkSpace:    keys.Space,
	vkLWin:     keys.MetaLeft,
	vkRWin:     keys.MetaRight,
	vkLShift:   keys.ShiftLeft,
	vkRShift:   keys.ShiftRight,
	vkLControl: keys.ControlLeft,
	vkRControl: keys.ControlRight,
	vkLMenu:    keys.Alt,
	vkRMenu:    keys.AltGr,
}

// keyFromVK names a virtual-key code. Codes without a name become raw keys.
func keyFromVK(vk uint32) keys.Key {
	switch {
	case vk >= '0' && vk <= '9':
		return keys.DigitKey(int(vk - '0'))
	case vk >= 'A' && vk <= 'Z':
		return keys.Named(keys.KeyA + keys.Name(vk-'A'))
	case vk >= vkF1 && vk < vkF1+12:
		return keys.Named(keys.F1 + keys.Name(vk-vkF1))
	}
	if name, ok := namedVK[vk]; ok {
		return keys.Named(name)
	}
	return keys.Raw(vk)
}
