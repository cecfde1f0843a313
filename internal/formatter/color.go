package formatter

import (
	"os"

	"github.com/xo/terminfo"
)

// supportsColor reports whether f is a terminal capable of rendering
// ANSI color codes. It combines an isatty-style device check with the
// terminal's advertised color level, matching the stack the teacher
// repo's CLI pulled in for its own terminal-aware output.
func supportsColor(f *os.File) bool {
	if f == nil {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	if info.Mode()&os.ModeCharDevice == 0 {
		return false
	}

	level, err := terminfo.ColorLevelFromEnv()
	if err != nil {
		return false
	}
	return level > terminfo.ColorLevelNone
}
