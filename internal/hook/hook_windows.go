//go:build windows

package hook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"shorty/internal/keys"
)

var (
	user32DLL = windows.NewLazySystemDLL("user32.dll")
	kernelDLL = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookExW   = user32DLL.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32DLL.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32DLL.NewProc("CallNextHookEx")
	procGetMessageW         = user32DLL.NewProc("GetMessageW")
	procTranslateMessage    = user32DLL.NewProc("TranslateMessage")
	procDispatchMessageW    = user32DLL.NewProc("DispatchMessageW")
	procPostThreadMessageW  = user32DLL.NewProc("PostThreadMessageW")
	procPeekMessageW        = user32DLL.NewProc("PeekMessageW")
	procGetModuleHandleW    = kernelDLL.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	hcAction     = 0

	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
	wmQuit       = 0x0012
	pmNoRemove   = 0x0000

	stopTimeout = 2 * time.Second
)

// KeyboardRecord is the Payload of events produced on Windows: a copy of the
// KBDLLHOOKSTRUCT delivered with the event plus its window message.
type KeyboardRecord struct {
	Message   uint32
	VKCode    uint32
	ScanCode  uint32
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
}

// kbdllHookStruct mirrors the Win32 KBDLLHOOKSTRUCT. Field order and types
// must match the Win32 binary layout.
type kbdllHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

// point mirrors the Win32 POINT struct.
type point struct {
	x int32
	y int32
}

// winMsg mirrors the Win32 MSG struct (tagMSG from winuser.h).
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

type loopReady struct {
	threadID uint32
	err      error
}

// activeCallback is the callback of the single installed hook. Windows calls
// the hook procedure on the thread that installed it, so the procedure reads
// it without further locking.
var activeCallback atomic.Pointer[Callback]

// hookProc is created once; Windows callbacks are a limited resource.
var hookProc = windows.NewCallback(lowLevelKeyboardProc)

func run(ctx context.Context, cb Callback) error {
	if err := user32DLL.Load(); err != nil {
		return fmt.Errorf("user32.dll is unavailable: %w", err)
	}
	if err := kernelDLL.Load(); err != nil {
		return fmt.Errorf("kernel32.dll is unavailable: %w", err)
	}
	if !activeCallback.CompareAndSwap(nil, &cb) {
		return errors.New("keyboard hook is already installed in this process")
	}
	defer activeCallback.Store(nil)

	readyCh := make(chan loopReady, 1)
	doneCh := make(chan error, 1)
	go runHookLoop(readyCh, doneCh)

	ready := <-readyCh
	if ready.err != nil {
		return fmt.Errorf("install keyboard hook: %w", ready.err)
	}
	slog.Info("[hook] keyboard hook installed", "threadID", ready.threadID)

	select {
	case err := <-doneCh:
		return fmt.Errorf("keyboard hook message loop exited: %w", err)
	case <-ctx.Done():
	}

	if err := postQuit(ready.threadID); err != nil {
		slog.Warn("[hook] failed to post WM_QUIT to hook thread", "error", err, "threadID", ready.threadID)
	}
	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()
	select {
	case <-doneCh:
		slog.Info("[hook] keyboard hook uninstalled")
	case <-timer.C:
		slog.Warn("[hook] hook message loop stop timed out, thread may leak", "threadID", ready.threadID)
	}
	return nil
}

// runHookLoop installs the hook on a locked OS thread and pumps messages until
// WM_QUIT. Low-level hooks are only called while their thread pumps messages.
func runHookLoop(readyCh chan<- loopReady, doneCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	threadID := windows.GetCurrentThreadId()

	// PeekMessageW forces creation of the thread message queue so that
	// PostThreadMessageW can deliver WM_QUIT.
	var qmsg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&qmsg)), 0, 0, 0, pmNoRemove)

	module, _, _ := procGetModuleHandleW.Call(0)
	hhook, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookProc, module, 0)
	if hhook == 0 {
		readyCh <- loopReady{err: callError("SetWindowsHookExW", err)}
		return
	}
	defer func() {
		if res, _, err := procUnhookWindowsHookEx.Call(hhook); res == 0 {
			slog.Error("[hook] UnhookWindowsHookEx failed", "error", callError("UnhookWindowsHookEx", err))
		}
	}()

	readyCh <- loopReady{threadID: threadID}

	for {
		var msg winMsg
		ret, _, lastErr := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch int32(ret) {
		case -1:
			doneCh <- callError("GetMessageW", lastErr)
			return
		case 0:
			doneCh <- nil
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&msg)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&msg)))
	}
}

func lowLevelKeyboardProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) == hcAction {
		if cb := activeCallback.Load(); cb != nil {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			if ev, ok := translateEvent(uint32(wParam), kb); ok && (*cb)(ev).Suppressed() {
				return 1
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return ret
}

func translateEvent(message uint32, kb *kbdllHookStruct) (keys.Event, bool) {
	var kind keys.Kind
	switch message {
	case wmKeyDown, wmSysKeyDown:
		kind = keys.Press
	case wmKeyUp, wmSysKeyUp:
		kind = keys.Release
	default:
		return keys.Event{}, false
	}
	return keys.Event{
		Kind: kind,
		Key:  keyFromVK(kb.vkCode),
		Payload: KeyboardRecord{
			Message:   message,
			VKCode:    kb.vkCode,
			ScanCode:  kb.scanCode,
			Flags:     kb.flags,
			Time:      kb.time,
			ExtraInfo: kb.dwExtraInfo,
		},
	}, true
}

func postQuit(threadID uint32) error {
	if threadID == 0 {
		return errors.New("cannot post WM_QUIT: threadID is 0")
	}
	res, _, err := procPostThreadMessageW.Call(uintptr(threadID), wmQuit, 0, 0)
	if res != 0 {
		return nil
	}
	return callError("PostThreadMessageW", err)
}

func callError(name string, err error) error {
	if err == nil || err == syscall.Errno(0) {
		return fmt.Errorf("%s failed", name)
	}
	return fmt.Errorf("%s: %w", name, err)
}
