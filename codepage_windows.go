//go:build windows

package main

import (
	"log/slog"

	"golang.org/x/sys/windows"
)

const cpUTF8 = 65001

// setConsoleUTF8 lets the startup summary print non-ASCII application paths.
func setConsoleUTF8() {
	if err := windows.SetConsoleOutputCP(cpUTF8); err != nil {
		slog.Debug("[DEBUG-CONSOLE] SetConsoleOutputCP failed", "error", err)
	}
}
