package domain_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stage/internal/core/domain"
)

func testRegistry(t *testing.T) *domain.Registry {
	t.Helper()
	reg, err := domain.NewRegistry(
		[]domain.Library{
			{ID: "ZLIB", SystemOn: []string{"darwin"}},
			{ID: "PNG", DependsOn: []string{"ZLIB"}},
			{ID: "GL", SystemOn: []string{domain.AllPlatforms}},
		},
		[]domain.Package{
			{ID: "ZLIB", SourceName: "zlib", Version: "1.2.8", DownloadURL: "http://example.com/zlib"},
			{ID: "PNG", SourceName: "libpng", Version: "1.6.20", DownloadURL: "http://example.com/png/"},
			{ID: "GL", NiceName: "OpenGL", SourceName: "gl"},
		},
		[]domain.Component{
			{ID: "CORE", Libraries: []string{"PNG", "ZLIB"}},
			{ID: "GL", Libraries: []string{"GL"}},
		},
		map[string][]string{"ALL": {"CORE", "GL"}},
	)
	require.NoError(t, err)
	return reg
}

func TestLibrary_IsSystemLibrary(t *testing.T) {
	tests := []struct {
		name     string
		lib      domain.Library
		platform string
		want     bool
	}{
		{"Listed", domain.Library{SystemOn: []string{"darwin"}}, "darwin", true},
		{"NotListed", domain.Library{SystemOn: []string{"darwin"}}, "mingw32", false},
		{"Everywhere", domain.Library{SystemOn: []string{domain.AllPlatforms}}, "linux", true},
		{"Never", domain.Library{}, "linux", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.lib.IsSystemLibrary(tt.platform))
		})
	}
}

func TestPackage_Names(t *testing.T) {
	png := domain.Package{SourceName: "libpng", Version: "1.6.20", DownloadURL: "http://downloads.sourceforge.net/libpng"}
	assert.Equal(t, "libpng-1.6.20", png.SourceDirName())
	assert.Equal(t, "libpng-1.6.20.tar.gz", png.TarballName())
	assert.Equal(t, "http://downloads.sourceforge.net/libpng/libpng-1.6.20.tar.gz", png.URL())
	assert.True(t, png.Downloadable())

	tcl := domain.Package{
		SourceName:        "tcl",
		Version:           "8.5.18",
		DownloadURL:       "http://downloads.sourceforge.net/tcl/",
		SourceDirOverride: "tcl8.5.18",
		TarballOverride:   "tcl8.5.18-src.tar.gz",
	}
	assert.Equal(t, "tcl8.5.18", tcl.SourceDirName())
	assert.Equal(t, "http://downloads.sourceforge.net/tcl/tcl8.5.18-src.tar.gz", tcl.URL())

	gl := domain.Package{SourceName: "gl"}
	assert.False(t, gl.Downloadable())
	assert.Empty(t, gl.URL())
}

func TestFetchRequestFor(t *testing.T) {
	pkg := domain.Package{
		SourceName:  "zlib",
		Version:     "1.2.8",
		DownloadURL: "http://example.com",
		FileLength:  42,
		Checksums:   map[string]string{"sha256": "abc"},
	}
	req := domain.FetchRequestFor(pkg)
	assert.Equal(t, "http://example.com/zlib-1.2.8.tar.gz", req.URL)
	assert.Equal(t, "zlib-1.2.8.tar.gz", req.FileName)
	assert.Equal(t, int64(42), req.Length)
	assert.Equal(t, "abc", req.Checksums["sha256"])
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		libs    []domain.Library
		pkgs    []domain.Package
		comps   []domain.Component
		configs map[string][]string
		wantErr error
	}{
		{
			name:    "UnknownDependency",
			libs:    []domain.Library{{ID: "PNG", DependsOn: []string{"ZLIB"}}},
			wantErr: domain.ErrUnknownLibrary,
		},
		{
			name:    "DuplicateLibrary",
			libs:    []domain.Library{{ID: "PNG"}, {ID: "PNG"}},
			wantErr: domain.ErrDuplicateLibrary,
		},
		{
			name:    "DuplicatePackage",
			pkgs:    []domain.Package{{ID: "PNG"}, {ID: "PNG"}},
			wantErr: domain.ErrDuplicatePackage,
		},
		{
			name:    "InvalidVersion",
			pkgs:    []domain.Package{{ID: "PNG", Version: "latest", DownloadURL: "http://example.com"}},
			wantErr: domain.ErrInvalidVersion,
		},
		{
			name:    "ComponentUnknownLibrary",
			comps:   []domain.Component{{ID: "CORE", Libraries: []string{"SDL2"}}},
			wantErr: domain.ErrUnknownLibrary,
		},
		{
			name:    "ConfigurationUnknownComponent",
			configs: map[string][]string{"ALL": {"CORE"}},
			wantErr: domain.ErrUnknownComponent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewRegistry(tt.libs, tt.pkgs, tt.comps, tt.configs)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestRegistry_Lookups(t *testing.T) {
	reg := testRegistry(t)

	lib, err := reg.Library("PNG")
	require.NoError(t, err)
	assert.Equal(t, []string{"ZLIB"}, lib.DependsOn)

	_, err = reg.Library("SDL2")
	require.ErrorIs(t, err, domain.ErrUnknownLibrary)

	_, err = reg.Package("TCL")
	require.ErrorIs(t, err, domain.ErrUnknownPackage)

	libs, err := reg.RequiredLibrariesFor([]string{"GL", "CORE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"GL", "PNG", "ZLIB"}, libs)

	_, err = reg.RequiredLibrariesFor([]string{"LASERDISC"})
	require.ErrorIs(t, err, domain.ErrUnknownComponent)

	comps, err := reg.DesiredComponents("ALL")
	require.NoError(t, err)
	assert.Equal(t, []string{"CORE", "GL"}, comps)

	_, err = reg.DesiredComponents("NOPE")
	require.ErrorIs(t, err, domain.ErrUnknownConfiguration)

	pkgs := reg.Packages()
	require.Len(t, pkgs, 3)
	assert.Equal(t, "GL", pkgs[0].ID)
	assert.Equal(t, "ZLIB", pkgs[2].ID)
}

func TestRegistry_WithOverrides(t *testing.T) {
	reg := testRegistry(t)

	over, err := reg.WithOverrides(
		map[string][]string{"CORE": {"PNG"}},
		map[string][]string{"MIN": {"CORE"}},
	)
	require.NoError(t, err)

	libs, err := over.RequiredLibrariesFor([]string{"CORE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"PNG"}, libs)

	comps, err := over.DesiredComponents("MIN")
	require.NoError(t, err)
	assert.Equal(t, []string{"CORE"}, comps)

	_, err = over.DesiredComponents("ALL")
	require.NoError(t, err)

	orig, err := reg.RequiredLibrariesFor([]string{"CORE"})
	require.NoError(t, err)
	assert.Equal(t, []string{"PNG", "ZLIB"}, orig)

	_, err = reg.WithOverrides(map[string][]string{"CORE": {"SDL2"}}, nil)
	require.ErrorIs(t, err, domain.ErrUnknownLibrary)
}

func TestHunk_Lines(t *testing.T) {
	h := domain.Hunk{
		OrigCount: 2,
		NewCount:  2,
		Lines: []domain.Line{
			{Kind: domain.LineContext, Text: "a"},
			{Kind: domain.LineRemove, Text: "b"},
			{Kind: domain.LineAdd, Text: "c", NoNewline: true},
		},
	}
	assert.Equal(t, []string{"a\n", "b\n"}, h.OldLines())
	assert.Equal(t, []string{"a\n", "c"}, h.NewLines())
}

func TestDiff_Creates(t *testing.T) {
	assert.False(t, domain.Diff{}.Creates())
	assert.True(t, domain.Diff{Hunks: []domain.Hunk{{NewStart: 1, NewCount: 2}}}.Creates())
	assert.False(t, domain.Diff{Hunks: []domain.Hunk{{OrigStart: 1, OrigCount: 1}}}.Creates())
}

func TestLayoutPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("src", ".stage", "state"), domain.StatePath("src"))
	assert.Equal(t, filepath.Join("patches", "libpng-1.6.20.diff"), domain.BundlePath("patches", "libpng-1.6.20"))
}
