// Package pipeline prepares library source trees: it downloads each archive, unpacks it
// under its canonical directory name, applies the library's patch bundle and records the
// outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/stage/internal/core/ports"
	"go.trai.ch/stage/internal/engine/patch"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Catalog is the lookup surface the pipeline needs from the registry.
type Catalog interface {
	Package(id string) (domain.Package, error)
}

// Options locates the directories a run works in.
type Options struct {
	TarballsDir string
	SourcesDir  string
	PatchesDir  string
	// Jobs bounds concurrent downloads. Values below 2 keep the run fully sequential.
	Jobs int
}

// Pipeline runs the fetch, extract, patch and record steps for a set of libraries.
type Pipeline struct {
	fetcher   ports.Fetcher
	extractor ports.Extractor
	store     ports.StateStore
	hasher    ports.TreeHasher
	telemetry ports.Telemetry
	logger    ports.Logger
	now       func() time.Time
}

// New creates a new Pipeline.
func New(
	fetcher ports.Fetcher,
	extractor ports.Extractor,
	store ports.StateStore,
	hasher ports.TreeHasher,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		hasher:    hasher,
		telemetry: telemetry,
		logger:    logger,
		now:       time.Now,
	}
}

// Run prepares every library in ascending id order and stops at the first failure.
// Libraries prepared before a failure are left in place.
func (p *Pipeline) Run(ctx context.Context, catalog Catalog, libraries []string, opts Options) error {
	ids := slices.Sorted(slices.Values(libraries))

	var prefetched map[string]bool
	if opts.Jobs > 1 {
		var err error
		prefetched, err = p.prefetch(ctx, catalog, ids, opts)
		if err != nil {
			return err
		}
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.prepare(ctx, catalog, id, opts, prefetched[id]); err != nil {
			return zerr.With(err, "library", id)
		}
	}
	return nil
}

func (p *Pipeline) prepare(ctx context.Context, catalog Catalog, id string, opts Options, fetched bool) error {
	pkg, err := lookup(catalog, id)
	if err != nil {
		return err
	}

	archive := filepath.Join(opts.TarballsDir, pkg.TarballName())
	if !fetched {
		if err := p.fetch(ctx, id, pkg, opts.TarballsDir, true); err != nil {
			return err
		}
	}

	sourceDir := filepath.Join(opts.SourcesDir, pkg.SourceDirName())
	p.logPrevious(opts.SourcesDir, id)
	err = p.step(ctx, "extract "+id, func(ctx context.Context, _ ports.Vertex) (bool, error) {
		if err := os.RemoveAll(sourceDir); err != nil {
			return false, zerr.With(fmt.Errorf("%w: %w", domain.ErrExtractFailed, err), "path", sourceDir)
		}
		p.logger.Debug(fmt.Sprintf("Extracting %s into %s", archive, sourceDir))
		return false, p.extractor.Extract(ctx, archive, opts.SourcesDir, pkg.SourceDirName())
	})
	if err != nil {
		return err
	}

	var patched []string
	bundle := domain.BundlePath(opts.PatchesDir, pkg.SourceDirName())
	if _, statErr := os.Stat(bundle); statErr == nil {
		err = p.step(ctx, "patch "+id, func(_ context.Context, v ports.Vertex) (bool, error) {
			diffs, err := patch.LoadBundle(bundle)
			if err != nil {
				return false, err
			}
			for _, d := range diffs {
				if err := patch.Apply(d, sourceDir); err != nil {
					return false, err
				}
				p.logger.Info("Patched: " + d.Path)
				_, _ = fmt.Fprintf(v.Stdout(), "patched %s\n", d.Path)
				patched = append(patched, d.Path)
			}
			return false, nil
		})
		if err != nil {
			return err
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(statErr, "failed to stat patch bundle"), "path", bundle)
	}

	treeHash, err := p.hasher.ComputeTreeHash(sourceDir)
	if err != nil {
		return err
	}
	record := domain.PreparedSource{
		Library:   id,
		Version:   pkg.Version,
		SourceDir: pkg.SourceDirName(),
		Archive:   pkg.TarballName(),
		Patches:   patched,
		TreeHash:  treeHash,
		Timestamp: p.now().UTC(),
	}
	if err := p.store.Put(opts.SourcesDir, record); err != nil {
		return err
	}
	p.logger.Debug(fmt.Sprintf("Recorded %s tree %s", id, treeHash))

	p.logger.Info(fmt.Sprintf("Prepared %s version %s in %s", displayName(pkg), pkg.Version, pkg.SourceDirName()))
	return nil
}

// logPrevious reports the record a new preparation of id is about to replace.
// An unreadable record does not stop preparation; the new record overwrites it.
func (p *Pipeline) logPrevious(sourcesDir, id string) {
	prev, err := p.store.Get(sourcesDir, id)
	switch {
	case err != nil:
		p.logger.Debug(fmt.Sprintf("Ignoring unreadable %s record: %v", id, err))
	case prev != nil:
		p.logger.Debug(fmt.Sprintf("Replacing %s %s tree %s", id, prev.Version, prev.TreeHash))
	}
}

// fetch downloads the archive of pkg unless it is already present. The notice for a
// present archive is only logged when announce is set.
func (p *Pipeline) fetch(ctx context.Context, id string, pkg domain.Package, tarballsDir string, announce bool) error {
	return p.step(ctx, "fetch "+id, func(ctx context.Context, _ ports.Vertex) (bool, error) {
		present, err := exists(filepath.Join(tarballsDir, pkg.TarballName()))
		if err != nil {
			return false, err
		}
		if present {
			if announce {
				p.logger.Info(fmt.Sprintf("%s version %s - already downloaded", displayName(pkg), pkg.Version))
			}
			return true, nil
		}
		p.logger.Debug("Fetching " + pkg.URL())
		return false, p.fetcher.Fetch(ctx, domain.FetchRequestFor(pkg), tarballsDir)
	})
}

// prefetch downloads every missing archive with at most opts.Jobs transfers in flight
// and reports which libraries it fetched. Lookup failures are left to the sequential
// pass so they surface in order.
func (p *Pipeline) prefetch(ctx context.Context, catalog Catalog, ids []string, opts Options) (map[string]bool, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)

	var mu sync.Mutex
	fetched := make(map[string]bool)
	for _, id := range ids {
		pkg, err := lookup(catalog, id)
		if err != nil {
			continue
		}
		present, err := exists(filepath.Join(opts.TarballsDir, pkg.TarballName()))
		if err != nil || present {
			continue
		}
		g.Go(func() error {
			if err := p.fetch(gctx, id, pkg, opts.TarballsDir, false); err != nil {
				return zerr.With(err, "library", id)
			}
			mu.Lock()
			fetched[id] = true
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fetched, nil
}

func (p *Pipeline) step(ctx context.Context, name string, fn func(context.Context, ports.Vertex) (bool, error)) error {
	ctx, vertex := p.telemetry.Record(ctx, name)
	cached, err := fn(ctx, vertex)
	if cached {
		vertex.Cached()
	}
	vertex.Complete(err)
	return err
}

func lookup(catalog Catalog, id string) (domain.Package, error) {
	pkg, err := catalog.Package(id)
	if err != nil {
		return domain.Package{}, err
	}
	if !pkg.Downloadable() {
		return domain.Package{}, domain.ErrNotDownloadable
	}
	return pkg, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, zerr.With(zerr.Wrap(err, "failed to stat archive"), "path", path)
	}
}

func displayName(pkg domain.Package) string {
	if pkg.NiceName != "" {
		return pkg.NiceName
	}
	return pkg.ID
}
