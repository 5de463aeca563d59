// Package app implements the application layer for stage.
package app

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/stage/internal/core/ports"
	"go.trai.ch/stage/internal/engine/patch"
	"go.trai.ch/stage/internal/engine/pipeline"
	"go.trai.ch/stage/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	pipeline     *pipeline.Pipeline
	store        ports.StateStore
	hasher       ports.TreeHasher
	telemetry    ports.Telemetry
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	pipe *pipeline.Pipeline,
	store ports.StateStore,
	hasher ports.TreeHasher,
	telemetry ports.Telemetry,
) *App {
	return &App{
		configLoader: loader,
		pipeline:     pipe,
		store:        store,
		hasher:       hasher,
		telemetry:    telemetry,
	}
}

// ResolveOptions selects the registry and the build a closure is computed for.
type ResolveOptions struct {
	ConfigFile    string
	Configuration string
	Platform      string
}

// PrepareOptions holds the arguments of a prepare run.
type PrepareOptions struct {
	ResolveOptions
	TarballsDir string
	SourcesDir  string
	PatchesDir  string
	Jobs        int
}

// Prepare downloads, unpacks and patches every library the configuration needs on the platform.
func (a *App) Prepare(ctx context.Context, opts PrepareOptions) error {
	for _, dir := range []string{opts.TarballsDir, opts.SourcesDir} {
		if err := requireDir(dir, domain.ErrOutputDirMissing); err != nil {
			return err
		}
	}

	reg, libraries, err := a.resolve(opts.ResolveOptions)
	if err != nil {
		return err
	}

	defer func() {
		_ = a.telemetry.Close()
	}()

	return a.pipeline.Run(ctx, reg, libraries, pipeline.Options{
		TarballsDir: opts.TarballsDir,
		SourcesDir:  opts.SourcesDir,
		PatchesDir:  opts.PatchesDir,
		Jobs:        opts.Jobs,
	})
}

// Resolve returns the sorted libraries the configuration needs on the platform.
func (a *App) Resolve(opts ResolveOptions) ([]string, error) {
	_, libraries, err := a.resolve(opts)
	return libraries, err
}

func (a *App) resolve(opts ResolveOptions) (*domain.Registry, []string, error) {
	reg, err := a.configLoader.Load(opts.ConfigFile)
	if err != nil {
		return nil, nil, err
	}

	components, err := reg.DesiredComponents(opts.Configuration)
	if err != nil {
		return nil, nil, err
	}

	set, err := resolver.Resolve(reg, components, opts.Platform)
	if err != nil {
		return nil, nil, err
	}

	return reg, resolver.Sorted(set), nil
}

// List returns the package table ordered by library id.
func (a *App) List(configFile string) ([]domain.Package, error) {
	reg, err := a.configLoader.Load(configFile)
	if err != nil {
		return nil, err
	}
	return reg.Packages(), nil
}

// MakePatch writes the bundle turning the pristine tree into the modified tree to w.
func (a *App) MakePatch(w io.Writer, pristineDir, modifiedDir string, contextLines int) error {
	for _, dir := range []string{pristineDir, modifiedDir} {
		if err := requireDir(dir, domain.ErrInputDirMissing); err != nil {
			return err
		}
	}

	diffs, err := patch.Generate(pristineDir, modifiedDir, contextLines)
	if err != nil {
		return err
	}
	return patch.FormatBundle(w, diffs)
}

func requireDir(dir string, sentinel error) error {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zerr.With(sentinel, "path", dir)
		}
		return zerr.With(zerr.Wrap(err, sentinel.Error()), "path", dir)
	}
	if !info.IsDir() {
		return zerr.With(zerr.Wrap(sentinel, "not a directory"), "path", dir)
	}
	return nil
}
