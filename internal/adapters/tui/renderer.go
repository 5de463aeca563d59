// Package tui adapts the step list model into a progrock writer driving a Bubble Tea program.
package tui

import (
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
	"go.trai.ch/stage/internal/tui"
)

const updateBuffer = 64

// Renderer receives status updates as a progrock.Writer and draws them live.
// Lines written to it are printed above the step list.
type Renderer struct {
	program *tea.Program
	updates chan *progrock.StatusUpdate
	done    chan struct{}
	errCh   chan error

	mu      sync.Mutex
	started bool
	closed  bool
	err     error
}

// NewRenderer creates a renderer drawing to out.
func NewRenderer(out io.Writer, opts ...tea.ProgramOption) *Renderer {
	r := &Renderer{
		updates: make(chan *progrock.StatusUpdate, updateBuffer),
		done:    make(chan struct{}),
		errCh:   make(chan error, 1),
	}
	opts = append([]tea.ProgramOption{tea.WithOutput(out), tea.WithInput(nil)}, opts...)
	r.program = tea.NewProgram(tui.NewModel(r), opts...)
	return r
}

// Start launches the program in a background goroutine.
func (r *Renderer) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started || r.closed {
		return
	}
	r.started = true
	go func() {
		_, err := r.program.Run()
		close(r.done)
		r.errCh <- err
	}()
}

// WriteStatus queues an update for display. Updates arriving after the program
// has exited are dropped.
func (r *Renderer) WriteStatus(update *progrock.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.started {
		return nil
	}
	select {
	case r.updates <- update:
	case <-r.done:
	}
	return nil
}

// Read implements tui.TapeSource.
func (r *Renderer) Read() (*progrock.StatusUpdate, error) {
	update, ok := <-r.updates
	if !ok {
		return nil, io.EOF
	}
	return update, nil
}

// Write prints p above the step list.
func (r *Renderer) Write(p []byte) (int, error) {
	r.program.Println(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// Close ends the tape and waits for the program to draw its final frame.
// It is safe to call more than once.
func (r *Renderer) Close() error {
	r.mu.Lock()
	if r.closed {
		defer r.mu.Unlock()
		return r.err
	}
	r.closed = true
	close(r.updates)
	started := r.started
	r.mu.Unlock()

	if !started {
		return nil
	}
	err := <-r.errCh

	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	return err
}
