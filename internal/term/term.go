// Package term holds ANSI color state and terminal detection for the
// logger, the banner and the analyze table.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/heicmaster/internal/config"
)

// Color codes. All empty until [Configure] enables them.
var (
	Red     string
	Green   string
	Yellow  string
	Blue    string
	Cyan    string
	Magenta string
	NC      string
)

// palette pairs each color variable with its escape sequence.
var palette = []struct {
	v    *string
	code string
}{
	{&Red, "\033[1;91m"},
	{&Green, "\033[1;92m"},
	{&Yellow, "\033[1;93m"},
	{&Blue, "\033[1;94m"},
	{&Cyan, "\033[1;96m"},
	{&Magenta, "\033[1;95m"},
	{&NC, "\033[0m"},
}

// Configure enables or clears every color according to mode. Call once at
// startup, before any goroutine logs.
func Configure(mode config.ColorMode) {
	on := resolve(mode)
	for _, p := range palette {
		if on {
			*p.v = p.code
		} else {
			*p.v = ""
		}
	}
}

// Enabled reports whether colors are active.
func Enabled() bool { return NC != "" }

// Paint wraps s in color and a reset. With colors off it returns s unchanged.
func Paint(color, s string) string {
	if color == "" || NC == "" {
		return s
	}
	return color + s + NC
}

func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return false
	}
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
