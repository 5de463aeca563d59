package commands

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
	"go.trai.ch/stage/internal/adapters/detector"
	"go.trai.ch/stage/internal/adapters/tui"
)

// ProgressRecorder accepts additional writers for pipeline status updates.
type ProgressRecorder interface {
	Attach(w progrock.Writer)
}

type outputSwitcher interface {
	SetOutput(w io.Writer)
}

// EnableProgress lets prepare draw a live step list on out when it is an interactive terminal.
func (c *CLI) EnableProgress(rec ProgressRecorder, out *os.File) {
	c.progress = rec
	c.progressOut = out
}

// startProgress attaches a renderer when the resolved mode asks for one.
// The returned function stops it and restores the logger's output.
func (c *CLI) startProgress(outputMode string) (func(), error) {
	mode, err := detector.ResolveMode(detector.DetectEnvironment(c.progressOut), outputMode)
	if err != nil {
		return nil, err
	}
	if mode != detector.ModeTUI || c.progress == nil || c.progressOut == nil || c.jsonLogs {
		return func() {}, nil
	}

	r := tui.NewRenderer(c.progressOut, tea.WithoutSignalHandler())
	r.Start()
	c.progress.Attach(r)

	sw, ok := c.logger.(outputSwitcher)
	if ok {
		sw.SetOutput(r)
	}
	return func() {
		_ = r.Close()
		if ok {
			sw.SetOutput(c.progressOut)
		}
	}, nil
}
