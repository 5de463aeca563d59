package app_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stage/internal/adapters/telemetry"
	"go.trai.ch/stage/internal/app"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/stage/internal/core/ports"
	"go.trai.ch/stage/internal/core/ports/mocks"
	"go.trai.ch/stage/internal/engine/pipeline"
	"go.uber.org/mock/gomock"
)

type harness struct {
	loader    *mocks.MockConfigLoader
	fetcher   *mocks.MockFetcher
	extractor *mocks.MockExtractor
	store     *mocks.MockStateStore
	hasher    *mocks.MockTreeHasher
	telemetry *mocks.MockTelemetry
	logger    *mocks.MockLogger
	app       *app.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := &harness{
		loader:    mocks.NewMockConfigLoader(ctrl),
		fetcher:   mocks.NewMockFetcher(ctrl),
		extractor: mocks.NewMockExtractor(ctrl),
		store:     mocks.NewMockStateStore(ctrl),
		hasher:    mocks.NewMockTreeHasher(ctrl),
		telemetry: mocks.NewMockTelemetry(ctrl),
		logger:    mocks.NewMockLogger(ctrl),
	}
	h.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	h.store.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	pipe := pipeline.New(h.fetcher, h.extractor, h.store, h.hasher, h.telemetry, h.logger)
	h.app = app.New(h.loader, pipe, h.store, h.hasher, h.telemetry)
	return h
}

func testRegistry(t *testing.T) *domain.Registry {
	t.Helper()
	reg, err := domain.NewRegistry(
		[]domain.Library{
			{ID: "ZLIB", SystemOn: []string{"darwin"}},
			{ID: "PNG", DependsOn: []string{"ZLIB"}},
			{ID: "OGG"},
		},
		[]domain.Package{
			{ID: "ZLIB", NiceName: "zlib", SourceName: "zlib", Version: "1.2.8", DownloadURL: "http://example.com"},
			{ID: "PNG", NiceName: "libpng", SourceName: "libpng", Version: "1.6.20", DownloadURL: "http://example.com"},
			{ID: "OGG", NiceName: "Ogg", SourceName: "libogg", Version: "1.3.3", DownloadURL: "http://example.com"},
		},
		[]domain.Component{
			{ID: "CORE", Libraries: []string{"PNG"}},
			{ID: "AUDIO", Libraries: []string{"OGG"}},
		},
		map[string][]string{"3RD_STA": {"CORE"}, "ALL": {"CORE", "AUDIO"}},
	)
	require.NoError(t, err)
	return reg
}

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, dir := range dirs {
		require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	}
}

func TestApp_Resolve(t *testing.T) {
	tests := []struct {
		config   string
		platform string
		want     []string
	}{
		{"3RD_STA", "linux", []string{"PNG", "ZLIB"}},
		{"3RD_STA", "darwin", []string{"PNG"}},
		{"ALL", "darwin", []string{"OGG", "PNG"}},
	}
	for _, tt := range tests {
		t.Run(tt.config+"/"+tt.platform, func(t *testing.T) {
			h := newHarness(t)
			h.loader.EXPECT().Load("stage.yaml").Return(testRegistry(t), nil)

			got, err := h.app.Resolve(app.ResolveOptions{
				ConfigFile:    "stage.yaml",
				Configuration: tt.config,
				Platform:      tt.platform,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApp_Resolve_UnknownConfiguration(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load(gomock.Any()).Return(testRegistry(t), nil)

	_, err := h.app.Resolve(app.ResolveOptions{Configuration: "NOPE", Platform: "linux"})
	require.ErrorIs(t, err, domain.ErrUnknownConfiguration)
}

func TestApp_Prepare(t *testing.T) {
	h := newHarness(t)
	base := t.TempDir()
	opts := app.PrepareOptions{
		ResolveOptions: app.ResolveOptions{Configuration: "3RD_STA", Platform: "darwin"},
		TarballsDir:    filepath.Join(base, "tarballs"),
		SourcesDir:     filepath.Join(base, "sources"),
		PatchesDir:     filepath.Join(base, "patches"),
		Jobs:           1,
	}
	mkdirs(t, opts.TarballsDir, opts.SourcesDir)
	require.NoError(t, os.WriteFile(filepath.Join(opts.TarballsDir, "libpng-1.6.20.tar.gz"), []byte("x"), domain.FilePerm))

	noop := telemetry.NewNoop()
	h.loader.EXPECT().Load(gomock.Any()).Return(testRegistry(t), nil)
	h.telemetry.EXPECT().Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string) (context.Context, ports.Vertex) {
			return noop.Record(ctx, name)
		}).Times(2)
	h.telemetry.EXPECT().Close().Return(nil)
	h.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), opts.SourcesDir, "libpng-1.6.20").Return(nil)
	h.hasher.EXPECT().ComputeTreeHash(filepath.Join(opts.SourcesDir, "libpng-1.6.20")).Return("h", nil)
	h.store.EXPECT().Put(opts.SourcesDir, gomock.Any()).Return(nil)
	h.logger.EXPECT().Info("libpng version 1.6.20 - already downloaded")
	h.logger.EXPECT().Info(gomock.Regex("^Prepared libpng"))

	require.NoError(t, h.app.Prepare(context.Background(), opts))
}

func TestApp_Prepare_MissingDirectories(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(file, nil, domain.FilePerm))

	for name, opts := range map[string]app.PrepareOptions{
		"Tarballs":   {TarballsDir: filepath.Join(base, "missing"), SourcesDir: base},
		"Sources":    {TarballsDir: base, SourcesDir: filepath.Join(base, "missing")},
		"NotADirDir": {TarballsDir: file, SourcesDir: base},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			err := h.app.Prepare(context.Background(), opts)
			require.ErrorIs(t, err, domain.ErrOutputDirMissing)
		})
	}
}

func TestApp_List(t *testing.T) {
	h := newHarness(t)
	h.loader.EXPECT().Load("custom.yaml").Return(testRegistry(t), nil)

	pkgs, err := h.app.List("custom.yaml")
	require.NoError(t, err)
	ids := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"OGG", "PNG", "ZLIB"}, ids)
}

func TestApp_MakePatch(t *testing.T) {
	h := newHarness(t)
	pristine, modified := t.TempDir(), t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(pristine, "f.txt"), []byte("a\nb\n"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(modified, "f.txt"), []byte("a\nc\n"), domain.FilePerm))

	var buf bytes.Buffer
	require.NoError(t, h.app.MakePatch(&buf, pristine, modified, 3))
	assert.Equal(t, "--- a/f.txt\n+++ b/f.txt\n@@ -1,2 +1,2 @@\n a\n-b\n+c\n", buf.String())

	err := h.app.MakePatch(&buf, filepath.Join(pristine, "missing"), modified, 3)
	require.ErrorIs(t, err, domain.ErrInputDirMissing)
}

func TestApp_Status(t *testing.T) {
	h := newHarness(t)
	sources := t.TempDir()
	mkdirs(t,
		filepath.Join(sources, "libpng-1.6.20"),
		filepath.Join(sources, "libogg-1.3.3"),
	)

	h.loader.EXPECT().Load(gomock.Any()).Return(testRegistry(t), nil)
	h.store.EXPECT().List(sources).Return([]domain.PreparedSource{
		{Library: "OGG", Version: "1.3.3", SourceDir: "libogg-1.3.3", TreeHash: "aaaa"},
		{Library: "PNG", Version: "1.6.19", SourceDir: "libpng-1.6.20", TreeHash: "bbbb"},
		{Library: "ZLIB", Version: "1.2.8", SourceDir: "zlib-1.2.8", TreeHash: "cccc"},
	}, nil)
	h.hasher.EXPECT().ComputeTreeHash(filepath.Join(sources, "libogg-1.3.3")).Return("aaaa", nil)
	h.hasher.EXPECT().ComputeTreeHash(filepath.Join(sources, "libpng-1.6.20")).Return("dddd", nil)

	statuses, err := h.app.Status("", sources)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	assert.Equal(t, app.StateClean, statuses[0].State)
	assert.Empty(t, statuses[0].Latest)
	assert.Equal(t, app.StateModified, statuses[1].State)
	assert.Equal(t, "1.6.20", statuses[1].Latest)
	assert.Equal(t, app.StateMissing, statuses[2].State)
}

func TestApp_Status_MissingSourcesDir(t *testing.T) {
	h := newHarness(t)
	_, err := h.app.Status("", filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, domain.ErrInputDirMissing)
}
