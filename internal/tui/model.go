package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbletea"
	"github.com/vito/progrock"
	"go.trai.ch/stage/internal/ui/style"
)

// StepStatus is the display state of a pipeline step.
type StepStatus string

const (
	StatusRunning   StepStatus = "running"
	StatusCompleted StepStatus = "completed"
	StatusCached    StepStatus = "cached"
	StatusFailed    StepStatus = "failed"
)

// StepState is a pipeline step as shown in the list.
type StepState struct {
	ID     string
	Name   string
	Status StepStatus
	Detail string
}

// Model is the Bubble Tea model listing pipeline steps in the order they started.
type Model struct {
	tape    TapeSource
	steps   []StepState
	index   map[string]int
	height  int
	spinner spinner.Model
}

// NewModel creates a new model reading updates from tape.
func NewModel(tape TapeSource) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = style.Running

	return &Model{
		tape:    tape,
		index:   make(map[string]int),
		spinner: s,
	}
}

// Init starts reading from the tape.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForTape(m.tape),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case MsgTapeUpdate:
		m.apply(msg.Update)
		return m, WaitForTape(m.tape)
	case MsgTapeEnded:
		return m, tea.Quit
	}
	return m, nil
}

// Steps returns a copy of the steps seen so far.
func (m *Model) Steps() []StepState {
	return append([]StepState(nil), m.steps...)
}

func (m *Model) apply(update *progrock.StatusUpdate) {
	if update == nil {
		return
	}
	for _, v := range update.Vertexes {
		i, ok := m.index[v.Id]
		if !ok {
			i = len(m.steps)
			m.index[v.Id] = i
			m.steps = append(m.steps, StepState{ID: v.Id, Name: v.Name, Status: StatusRunning})
		}
		m.steps[i].Status = statusOf(v)
	}
	for _, l := range update.Logs {
		i, ok := m.index[l.Vertex]
		if !ok {
			continue
		}
		if line := lastLine(string(l.Data)); line != "" {
			m.steps[i].Detail = line
		}
	}
}

func statusOf(v *progrock.Vertex) StepStatus {
	switch {
	case v.Error != nil:
		return StatusFailed
	case v.Cached:
		return StatusCached
	case v.Completed != nil:
		return StatusCompleted
	default:
		return StatusRunning
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// View renders the most recent steps that fit the terminal height.
func (m *Model) View() string {
	start := 0
	if m.height > 0 && len(m.steps) > m.height {
		start = len(m.steps) - m.height
	}

	var s strings.Builder
	for _, step := range m.steps[start:] {
		var icon string
		switch step.Status {
		case StatusRunning:
			icon = m.spinner.View()
		case StatusCompleted:
			icon = style.Completed.Render(style.Check)
		case StatusCached:
			icon = style.Cached.Render(style.Lightning)
		default:
			icon = style.Failed.Render(style.Cross)
		}

		fmt.Fprintf(&s, "%s %s", icon, step.Name)
		if step.Status == StatusRunning && step.Detail != "" {
			s.WriteString("  " + style.Detail.Render(step.Detail))
		}
		s.WriteByte('\n')
	}
	return s.String()
}
