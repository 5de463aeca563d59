// Package detector provides environment detection for output mode selection.
package detector

import (
	"os"

	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode represents the rendering mode for progress output.
type OutputMode int

const (
	// ModeAuto automatically detects the appropriate mode.
	ModeAuto OutputMode = iota
	// ModeTUI forces the live step list.
	ModeTUI
	// ModeLinear forces plain log lines.
	ModeLinear
)

// DetectEnvironment returns the recommended output mode for progress written to f.
// It checks if f is a TTY and if CI environment variables are set.
func DetectEnvironment(f *os.File) OutputMode {
	isTTY := f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // File descriptors fit in int.

	ci := os.Getenv("CI")
	isCI := ci == "true" || ci == "1"

	if !isTTY || isCI {
		return ModeLinear
	}
	return ModeTUI
}

// ResolveMode applies the user's flag to auto-detection.
// userFlag should be one of: "auto", "tui", "linear", "ci", or empty.
func ResolveMode(autoDetected OutputMode, userFlag string) (OutputMode, error) {
	switch userFlag {
	case "tui":
		return ModeTUI, nil
	case "linear", "ci":
		return ModeLinear, nil
	case "auto", "":
		return autoDetected, nil
	default:
		return ModeAuto, zerr.With(zerr.Wrap(domain.ErrInvalidUsage, "unknown output mode"), "output_mode", userFlag)
	}
}
