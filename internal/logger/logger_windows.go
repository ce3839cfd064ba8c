//go:build windows
// +build windows

package logger

import (
	"os"

	"golang.org/x/sys/windows"
)

const SupportsColorEscapes = true

func GetTerminalInfo(file *os.File) (info TerminalInfo) {
	fd := windows.Handle(file.Fd())

	// Is this file descriptor a terminal?
	var mode uint32
	if err := windows.GetConsoleMode(fd, &mode); err == nil {
		info.IsTTY = true

		// Color escapes only work if virtual terminal processing is enabled
		if err := windows.SetConsoleMode(fd, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err == nil {
			info.UseColorEscapes = !hasNoColorEnvironmentVariable()
		}

		// Get the width of the window
		var screen windows.ConsoleScreenBufferInfo
		if err := windows.GetConsoleScreenBufferInfo(fd, &screen); err == nil {
			info.Width = int(screen.Window.Right - screen.Window.Left + 1)
		}
	}

	return
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
