package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\033[31m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

// ColorEnabled decides whether output to f should carry ANSI colors.
// mode is one of auto, always, never; auto checks for a terminal.
func ColorEnabled(mode string, f *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if f == nil || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes one line per diagnostic, optionally colored.
func Render(w io.Writer, errs []*DiagnosticError, color bool) {
	for _, e := range errs {
		if !color {
			fmt.Fprintf(w, "- %s\n", e.Error())
			continue
		}
		label := "error"
		if e.IsFatal() {
			label = "internal error"
		}
		fmt.Fprintf(w, "%s%s%s%s: %s\n", ansiBold, ansiRed, label, ansiReset, e.Error())
		if e.IsFatal() {
			fmt.Fprintf(w, "%s  this is a bug in decaf, please report it%s\n", ansiDim, ansiReset)
		}
	}
}
