package output_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stage/internal/ui/output"
	"go.trai.ch/stage/internal/ui/style"
)

func TestColorProfile_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(&bytes.Buffer{}))
}

func TestColorProfile_RedirectedFile(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")

	f, err := os.Create(filepath.Join(t.TempDir(), "status.txt"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, termenv.Ascii, output.ColorProfile(f))
}

func TestColorize_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	out := output.New(&buf)
	assert.Equal(t, "ok", output.Colorize(out, "ok", string(style.Green)))
}

func TestNew_NilWriter(t *testing.T) {
	assert.NotNil(t, output.New(nil))
}
