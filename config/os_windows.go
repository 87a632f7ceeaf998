//go:build windows

package config

import (
	"os"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/term"
)

const forbiddenFileChars = `<>":/\|?*;`

// Explorer silently drops trailing dots and spaces.
func trimFileName(s string) string { return strings.TrimRight(s, ". ") }

// EnableColorOutput checks if colorized output is possible and turns on VT100
// sequence processing for the console. Consoles which do not support it
// refuse the mode.
func EnableColorOutput(stream *os.File) bool {
	if !term.IsTerminal(int(stream.Fd())) {
		return false
	}
	h := windows.Handle(stream.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return false
	}
	return windows.SetConsoleMode(h, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING) == nil
}
