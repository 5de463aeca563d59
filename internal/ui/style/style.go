// Package style holds the colors and icons shared by log lines, the status table
// and the live step list.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check     = "✓"
	Cross     = "✗"
	Warning   = "!"
	Tilde     = "~"
	Dot       = "·"
	Lightning = "⚡"
)

// Step list styles, keyed by what happened to a step.
var (
	Running   = lipgloss.NewStyle().Foreground(Yellow)
	Completed = lipgloss.NewStyle().Foreground(Green)
	Cached    = lipgloss.NewStyle().Foreground(Slate)
	Failed    = lipgloss.NewStyle().Foreground(Red)
	Detail    = lipgloss.NewStyle().Foreground(Slate).Faint(true)
)
