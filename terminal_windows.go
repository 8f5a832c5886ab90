//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableTerminalColor turns on VT escape processing so the renderer's
// colored output works in the Windows console.
func enableTerminalColor() {
	handle := windows.Handle(os.Stdout.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(handle, &mode); err != nil {
		return
	}
	windows.SetConsoleMode(handle, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
