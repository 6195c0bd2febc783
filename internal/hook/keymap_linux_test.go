//go:build linux

package hook

import (
	"testing"

	evdev "github.com/holoplot/go-evdev"

	"shorty/internal/keys"
)

func TestKeyFromCode(t *testing.T) {
	tests := []struct {
		name string
		code evdev.EvCode
		want keys.Key
	}{
		{"digit 1", evdev.KEY_1, keys.DigitKey(1)},
		{"digit 9", evdev.KEY_9, keys.DigitKey(9)},
		{"digit 0", evdev.KEY_0, keys.DigitKey(0)},
		{"left shift", evdev.KEY_LEFTSHIFT, keys.Named(keys.ShiftLeft)},
		{"right ctrl", evdev.KEY_RIGHTCTRL, keys.Named(keys.ControlRight)},
		{"right alt", evdev.KEY_RIGHTALT, keys.Named(keys.AltGr)},
		{"left meta", evdev.KEY_LEFTMETA, keys.Named(keys.MetaLeft)},
		{"F4 shares the quirk code", evdev.KEY_F4, keys.Named(keys.F4)},
		{"letter", evdev.KEY_Q, keys.Named(keys.KeyQ)},
		{"unnamed punctuation", evdev.KEY_MINUS, keys.Raw(unnamedCodeOffset + uint32(evdev.KEY_MINUS))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := keyFromCode(tt.code); got != tt.want {
				t.Fatalf("keyFromCode(%d) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestKeyFromCodeNeverProducesControlQuirk(t *testing.T) {
	for code := evdev.EvCode(0); code < 0x300; code++ {
		if keyFromCode(code) == keys.ControlQuirk {
			t.Fatalf("code %d maps to the control quirk key", code)
		}
	}
}

func TestTranslateEvent(t *testing.T) {
	tests := []struct {
		name  string
		value int32
		want  keys.Kind
	}{
		{"release", 0, keys.Release},
		{"press", 1, keys.Press},
		{"auto-repeat", 2, keys.Press},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.KEY_3, Value: tt.value}
			ev := translateEvent(raw)
			if ev.Kind != tt.want {
				t.Fatalf("Kind = %v, want %v", ev.Kind, tt.want)
			}
			if ev.Key != keys.DigitKey(3) {
				t.Fatalf("Key = %v, want Digit3", ev.Key)
			}
			payload, ok := ev.Payload.(evdev.InputEvent)
			if !ok || payload.Value != tt.value || payload.Code != evdev.KEY_3 {
				t.Fatalf("Payload = %#v, want a copy of the raw event", ev.Payload)
			}
		})
	}
}

func TestIsKeyboard(t *testing.T) {
	tests := []struct {
		name  string
		codes []evdev.EvCode
		want  bool
	}{
		{"full keyboard", []evdev.EvCode{evdev.KEY_ESC, evdev.KEY_1, evdev.KEY_LEFTCTRL, evdev.KEY_A}, true},
		{"mouse buttons", []evdev.EvCode{evdev.BTN_LEFT, evdev.BTN_RIGHT}, false},
		{"power button", []evdev.EvCode{evdev.KEY_POWER}, false},
		{"numpad without ctrl", []evdev.EvCode{evdev.KEY_1, evdev.KEY_KP1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isKeyboard(tt.codes); got != tt.want {
				t.Fatalf("isKeyboard() = %v, want %v", got, tt.want)
			}
		})
	}
}
