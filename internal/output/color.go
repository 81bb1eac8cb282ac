package output

import (
	"io"

	"github.com/mattn/go-isatty"
)

// Color modes accepted by the --color flag.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ResolveColorMode decides whether styling is on. "never" and "always"
// force the answer; anything else follows isTTY.
func ResolveColorMode(colorMode string, isTTY bool) bool {
	switch colorMode {
	case ColorNever:
		return false
	case ColorAlways:
		return true
	default:
		return isTTY
	}
}

type fdWriter interface {
	Fd() uintptr
}

// IsTTY reports whether writer is a terminal, including Cygwin and MSYS
// pseudo terminals.
func IsTTY(writer io.Writer) bool {
	f, ok := writer.(fdWriter)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
