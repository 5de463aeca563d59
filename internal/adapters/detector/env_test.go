package detector_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stage/internal/adapters/detector"
	"go.trai.ch/stage/internal/core/domain"
)

func TestDetectEnvironment_NotATerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, detector.ModeLinear, detector.DetectEnvironment(f))
	assert.Equal(t, detector.ModeLinear, detector.DetectEnvironment(nil))
}

func TestDetectEnvironment_CI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, detector.ModeLinear, detector.DetectEnvironment(os.Stderr))
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		flag string
		auto detector.OutputMode
		want detector.OutputMode
	}{
		{"", detector.ModeTUI, detector.ModeTUI},
		{"auto", detector.ModeLinear, detector.ModeLinear},
		{"tui", detector.ModeLinear, detector.ModeTUI},
		{"linear", detector.ModeTUI, detector.ModeLinear},
		{"ci", detector.ModeTUI, detector.ModeLinear},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := detector.ResolveMode(tt.auto, tt.flag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := detector.ResolveMode(detector.ModeAuto, "fancy")
	require.ErrorIs(t, err, domain.ErrInvalidUsage)
}
