//go:build linux

package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"shorty/internal/keys"
)

const (
	virtualDeviceName = "shorty virtual keyboard"

	// grabDelay lets the key that started shorty (usually Enter) be released
	// before the devices are grabbed; a grabbed release would leave it stuck.
	grabDelay = 250 * time.Millisecond

	evKeyRelease = 0
)

var (
	listDevicePathsFn = evdev.ListDevicePaths
	openDeviceFn      = evdev.Open
	createDeviceFn    = evdev.CreateDevice
)

// run grabs every keyboard exclusively and re-emits the events the callback
// passes on a uinput virtual keyboard. Suppressed events are simply not
// re-emitted.
func run(ctx context.Context, cb Callback) error {
	keyboards, err := openKeyboards()
	if err != nil {
		return err
	}
	defer closeAll(keyboards)

	out, err := createDeviceFn(virtualDeviceName, evdev.InputID{BusType: 0x03, Vendor: 0x1d6b, Product: 0x0104, Version: 1},
		map[evdev.EvType][]evdev.EvCode{evdev.EV_KEY: keyCapabilities(keyboards)})
	if err != nil {
		return fmt.Errorf("create uinput device (is /dev/uinput writable?): %w", err)
	}
	defer out.Close()

	select {
	case <-ctx.Done():
		return nil
	case <-time.After(grabDelay):
	}
	for _, kb := range keyboards {
		if err := kb.dev.Grab(); err != nil {
			return fmt.Errorf("grab %s: %w", kb.path, err)
		}
		slog.Info("[hook] grabbed keyboard", "device", kb.name, "path", kb.path)
	}

	// Shared by every pump so the virtual device sees events in the order
	// they were decided.
	var writeMu sync.Mutex

	pumpDone := make(chan error, len(keyboards))
	var wg sync.WaitGroup
	for _, kb := range keyboards {
		wg.Go(func() {
			pumpDone <- pump(ctx, kb.path, kb.dev, out, &writeMu, cb)
		})
	}

	remaining := len(keyboards)
	for remaining > 0 {
		select {
		case <-ctx.Done():
			// Closing the devices unblocks ReadOne in every pump.
			closeAll(keyboards)
			wg.Wait()
			slog.Info("[hook] keyboards released")
			return nil
		case err := <-pumpDone:
			remaining--
			slog.Warn("[hook] keyboard stopped delivering events", "error", err, "remaining", remaining)
		}
	}
	wg.Wait()
	return errors.New("all keyboard devices stopped delivering events")
}

type keyboard struct {
	dev  *evdev.InputDevice
	path string
	name string

	closeOnce sync.Once
}

func (k *keyboard) close() {
	k.closeOnce.Do(func() {
		if err := k.dev.Close(); err != nil {
			slog.Debug("[hook] failed to close keyboard", "path", k.path, "error", err)
		}
	})
}

func closeAll(keyboards []*keyboard) {
	for _, kb := range keyboards {
		kb.close()
	}
}

func openKeyboards() ([]*keyboard, error) {
	paths, err := listDevicePathsFn()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	var keyboards []*keyboard
	for _, p := range paths {
		if p.Name == virtualDeviceName {
			continue
		}
		dev, err := openDeviceFn(p.Path)
		if err != nil {
			slog.Debug("[hook] skipping unreadable input device", "path", p.Path, "error", err)
			continue
		}
		if !isKeyboard(dev.CapableEvents(evdev.EV_KEY)) {
			dev.Close()
			continue
		}
		keyboards = append(keyboards, &keyboard{dev: dev, path: p.Path, name: p.Name})
	}
	if len(keyboards) == 0 {
		return nil, errors.New("no readable keyboard devices under /dev/input (is the user in the input group?)")
	}
	return keyboards, nil
}

// isKeyboard accepts devices that can type digits and hold control, which
// excludes mice, power buttons and media remotes.
func isKeyboard(codes []evdev.EvCode) bool {
	return slices.Contains(codes, evdev.KEY_1) && slices.Contains(codes, evdev.KEY_LEFTCTRL)
}

func keyCapabilities(keyboards []*keyboard) []evdev.EvCode {
	var all []evdev.EvCode
	for _, kb := range keyboards {
		for _, code := range kb.dev.CapableEvents(evdev.EV_KEY) {
			if !slices.Contains(all, code) {
				all = append(all, code)
			}
		}
	}
	return all
}

type eventReader interface {
	ReadOne() (*evdev.InputEvent, error)
}

type eventWriter interface {
	WriteOne(ev *evdev.InputEvent) error
}

// pump reads one device until it fails or ctx is cancelled.
func pump(ctx context.Context, path string, src eventReader, out eventWriter, mu *sync.Mutex, cb Callback) error {
	for {
		ev, err := src.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := forward(ev, out, mu, cb); err != nil {
			slog.Error("[hook] failed to re-emit key event", "path", path, "code", ev.Code, "error", err)
		}
	}
}

// forward re-emits ev unless the callback suppresses it. Key events are
// decided and written under mu, so two devices can never have their writes
// reordered relative to their decisions.
func forward(ev *evdev.InputEvent, out eventWriter, mu *sync.Mutex, cb Callback) error {
	switch ev.Type {
	case evdev.EV_KEY, evdev.EV_SYN:
	default:
		// The virtual device only declares key capabilities.
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	if ev.Type == evdev.EV_KEY && cb(translateEvent(ev)).Suppressed() {
		return nil
	}
	return out.WriteOne(ev)
}

// translateEvent maps an EV_KEY record; auto-repeat reports a press.
func translateEvent(ev *evdev.InputEvent) keys.Event {
	kind := keys.Press
	if ev.Value == evKeyRelease {
		kind = keys.Release
	}
	return keys.Event{
		Kind:    kind,
		Key:     keyFromCode(ev.Code),
		Payload: *ev,
	}
}
