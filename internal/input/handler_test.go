package input

import (
	"reflect"
	"testing"

	"shorty/internal/keys"
	"shorty/internal/shortcut"
	"shorty/internal/testutil"
)

var (
	shiftL = keys.Named(keys.ShiftLeft)
	shiftR = keys.Named(keys.ShiftRight)
	ctrlL  = keys.Named(keys.ControlLeft)
	ctrlR  = keys.Named(keys.ControlRight)
	altL   = keys.Named(keys.Alt)
	altGr  = keys.Named(keys.AltGr)
	metaL  = keys.Named(keys.MetaLeft)
)

func newTestHandler(t *testing.T, mapping map[int]string) (*Handler, *testutil.RecordingLauncher) {
	t.Helper()
	table, err := shortcut.NewTable(mapping)
	if err != nil {
		t.Fatal(err)
	}
	launcher := &testutil.RecordingLauncher{}
	return NewHandler(table, shortcut.NewDispatcher(launcher), DefaultFamilies()), launcher
}

func decisions(h *Handler, events ...keys.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, h.Process(ev).String())
	}
	return out
}

func TestHandlerScenarios(t *testing.T) {
	mapping := map[int]string{1: "/apps/P", 5: "/apps/five"}
	tests := []struct {
		name         string
		events       []keys.Event
		want         []string
		wantLaunches []string
	}{
		{
			name:         "shift ctrl digit fires",
			events:       []keys.Event{press(shiftL), press(ctrlL), press(keys.DigitKey(1))},
			want:         []string{"pass", "pass", "suppress"},
			wantLaunches: []string{"/apps/P"},
		},
		{
			name:   "alt excludes the shortcut",
			events: []keys.Event{press(ctrlL), press(altL), press(keys.DigitKey(1))},
			want:   []string{"pass", "pass", "pass"},
		},
		{
			name:   "extra alt with shift ctrl",
			events: []keys.Event{press(shiftL), press(ctrlL), press(altGr), press(keys.DigitKey(1))},
			want:   []string{"pass", "pass", "pass", "pass"},
		},
		{
			name:   "extra cmd with shift ctrl",
			events: []keys.Event{press(shiftR), press(ctrlR), press(metaL), press(keys.DigitKey(5))},
			want:   []string{"pass", "pass", "pass", "pass"},
		},
		{
			name:   "shift only",
			events: []keys.Event{press(shiftL), press(keys.DigitKey(1))},
			want:   []string{"pass", "pass"},
		},
		{
			name:   "unmapped digit under correct modifiers",
			events: []keys.Event{press(shiftL), press(ctrlL), press(keys.DigitKey(2))},
			want:   []string{"pass", "pass", "pass"},
		},
		{
			name:   "digit release never fires",
			events: []keys.Event{press(shiftL), press(ctrlL), release(keys.DigitKey(1))},
			want:   []string{"pass", "pass", "pass"},
		},
		{
			name:   "digit zero is not a shortcut",
			events: []keys.Event{press(shiftL), press(ctrlL), press(keys.DigitKey(0))},
			want:   []string{"pass", "pass", "pass"},
		},
		{
			name:         "right variants and quirk ctrl fire",
			events:       []keys.Event{press(shiftR), press(keys.ControlQuirk), press(keys.DigitKey(5))},
			want:         []string{"pass", "pass", "suppress"},
			wantLaunches: []string{"/apps/five"},
		},
		{
			name: "released alt re-enables the shortcut",
			events: []keys.Event{
				press(shiftL), press(ctrlL), press(altL), press(keys.DigitKey(1)),
				release(altL), press(keys.DigitKey(1)),
			},
			want:         []string{"pass", "pass", "pass", "pass", "pass", "suppress"},
			wantLaunches: []string{"/apps/P"},
		},
		{
			name: "released ctrl disables the shortcut",
			events: []keys.Event{
				press(shiftL), press(ctrlL), release(ctrlL), press(keys.DigitKey(1)),
			},
			want: []string{"pass", "pass", "pass", "pass"},
		},
		{
			name: "auto-repeat press fires again",
			events: []keys.Event{
				press(shiftL), press(ctrlL), press(keys.DigitKey(1)), press(keys.DigitKey(1)),
			},
			want:         []string{"pass", "pass", "suppress", "suppress"},
			wantLaunches: []string{"/apps/P", "/apps/P"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, launcher := newTestHandler(t, mapping)
			if got := decisions(h, tt.events...); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("decisions = %v, want %v", got, tt.want)
			}
			got := launcher.Paths()
			if len(got) == 0 {
				got = nil
			}
			if !reflect.DeepEqual(got, tt.wantLaunches) {
				t.Fatalf("launches = %v, want %v", got, tt.wantLaunches)
			}
		})
	}
}

func TestHandlerPassKeepsPayload(t *testing.T) {
	h, _ := newTestHandler(t, map[int]string{1: "/apps/P"})
	type rawRecord struct{ scan, flags uint32 }
	events := []keys.Event{
		{Kind: keys.Press, Key: keys.Named(keys.KeyA), Payload: rawRecord{scan: 30}},
		{Kind: keys.Release, Key: keys.Named(keys.KeyA), Payload: rawRecord{scan: 30, flags: 0x80}},
		{Kind: keys.Press, Key: keys.Raw(999), Payload: rawRecord{scan: 1}},
	}
	for _, ev := range events {
		d := h.Process(ev)
		if d.Suppressed() {
			t.Fatalf("%v %v suppressed", ev.Kind, ev.Key)
		}
		if d.Event() != ev {
			t.Fatalf("passed event = %+v, want %+v", d.Event(), ev)
		}
	}
}

func TestHandlerSetTable(t *testing.T) {
	h, launcher := newTestHandler(t, nil)
	decisions(h, press(shiftL), press(ctrlL))

	if got := h.Process(press(keys.DigitKey(3))); got.Suppressed() {
		t.Fatal("unmapped digit suppressed")
	}

	table, err := shortcut.NewTable(map[int]string{3: "/apps/three"})
	if err != nil {
		t.Fatal(err)
	}
	h.SetTable(table)

	if got := h.Process(press(keys.DigitKey(3))); !got.Suppressed() {
		t.Fatal("digit mapped by the new table was not suppressed")
	}
	if got := launcher.Paths(); !reflect.DeepEqual(got, []string{"/apps/three"}) {
		t.Fatalf("launches = %v, want [/apps/three]", got)
	}
	if h.Modifiers() != (ModifierState{Shift: true, Ctrl: true}) {
		t.Fatalf("table swap changed modifier state: %+v", h.Modifiers())
	}
}

// TestHandlerFiresIffExactCombination checks every one of the 16 modifier
// states against a mapped digit press.
func TestHandlerFiresIffExactCombination(t *testing.T) {
	for mask := range 16 {
		shift, ctrl, alt, cmd := mask&1 != 0, mask&2 != 0, mask&4 != 0, mask&8 != 0
		h, launcher := newTestHandler(t, map[int]string{9: "/apps/nine"})
		if shift {
			h.Process(press(shiftL))
		}
		if ctrl {
			h.Process(press(ctrlR))
		}
		if alt {
			h.Process(press(altL))
		}
		if cmd {
			h.Process(press(metaL))
		}
		want := shift && ctrl && !alt && !cmd
		got := h.Process(press(keys.DigitKey(9))).Suppressed()
		if got != want {
			t.Errorf("shift=%v ctrl=%v alt=%v cmd=%v: suppressed=%v, want %v", shift, ctrl, alt, cmd, got, want)
		}
		if fired := len(launcher.Paths()) == 1; fired != want {
			t.Errorf("shift=%v ctrl=%v alt=%v cmd=%v: launched=%v, want %v", shift, ctrl, alt, cmd, fired, want)
		}
	}
}
