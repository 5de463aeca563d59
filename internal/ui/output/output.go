// Package output creates termenv outputs whose color profile follows the destination:
// terminals get colors, files and pipes get plain text unless colors are forced.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorProfile returns the color profile for writing to w.
// NO_COLOR always wins; CLICOLOR_FORCE keeps colors on redirected files.
func ColorProfile(w io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	if force := os.Getenv("CLICOLOR_FORCE"); force != "" && force != "0" {
		return termenv.EnvColorProfile()
	}
	if f, ok := w.(*os.File); ok && !term.IsTerminal(int(f.Fd())) { //nolint:gosec // File descriptors fit in int.
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a new termenv.Output writing to w, or to stderr when w is nil.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(ColorProfile(w)),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}

// Colorize renders s in the given hex color using out's profile.
func Colorize(out *termenv.Output, s, hex string) string {
	return out.String(s).Foreground(termenv.RGBColor(hex)).String()
}
