// Package tui renders pipeline progress as a live list of steps.
package tui

import (
	"github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
)

// TapeSource yields progrock status updates until the session ends.
type TapeSource interface {
	Read() (*progrock.StatusUpdate, error)
}

// MsgTapeUpdate carries one batch of vertex and log changes.
type MsgTapeUpdate struct {
	Update *progrock.StatusUpdate
}

// MsgTapeEnded means no more updates will arrive.
type MsgTapeEnded struct{}

// WaitForTape reads the next update as a message. A read error, io.EOF included,
// ends the stream.
func WaitForTape(tape TapeSource) tea.Cmd {
	return func() tea.Msg {
		update, err := tape.Read()
		if err != nil {
			return MsgTapeEnded{}
		}
		return MsgTapeUpdate{Update: update}
	}
}
