//nolint:testpackage // Test needs access to unexported fields
package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestModel_View(t *testing.T) {
	m := NewModel(nil)
	m.steps = []StepState{
		{ID: "1", Name: "fetch ZLIB", Status: StatusCached},
		{ID: "2", Name: "extract ZLIB", Status: StatusCompleted},
		{ID: "3", Name: "patch ZLIB", Status: StatusFailed},
		{ID: "4", Name: "fetch PNG", Status: StatusRunning, Detail: "GET http://example.com/png"},
	}

	output := m.View()

	assert.Contains(t, output, "⚡ fetch ZLIB")
	assert.Contains(t, output, "✓ extract ZLIB")
	assert.Contains(t, output, "✗ patch ZLIB")
	assert.Contains(t, output, "fetch PNG")
	assert.Contains(t, output, "GET http://example.com/png")
}

func TestModel_View_SlidingWindow(t *testing.T) {
	m := NewModel(nil)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 2})
	m.steps = []StepState{
		{ID: "1", Name: "fetch OGG", Status: StatusCompleted},
		{ID: "2", Name: "extract OGG", Status: StatusCompleted},
		{ID: "3", Name: "fetch VORBIS", Status: StatusCompleted},
	}

	output := m.View()

	assert.NotContains(t, output, "fetch OGG")
	assert.Contains(t, output, "extract OGG")
	assert.Contains(t, output, "fetch VORBIS")
}
