// Package archive implements the Extractor port for the tarball formats source
// packages are distributed in.
package archive

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/zerr"
)

// Extractor implements ports.Extractor for .tar, .tar.gz, .tgz, .tar.bz2 and .tar.xz archives.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

type decompressor func(io.Reader) (io.Reader, error)

var decompressors = []struct {
	suffix string
	open   decompressor
}{
	{".tar.gz", openGzip},
	{".tgz", openGzip},
	{".tar.bz2", openBzip2},
	{".tbz2", openBzip2},
	{".tar.xz", openXZ},
	{".txz", openXZ},
	{".tar", func(r io.Reader) (io.Reader, error) { return r, nil }},
}

func openGzip(r io.Reader) (io.Reader, error) { return gzip.NewReader(r) }

func openBzip2(r io.Reader) (io.Reader, error) { return bzip2.NewReader(r), nil }

func openXZ(r io.Reader) (io.Reader, error) { return xz.NewReader(r) }

// Extract unpacks archivePath into destDir/topLevel.
//
// The archive is unpacked into a scratch directory under destDir first. When it holds a
// single top-level directory, that directory is renamed to topLevel; otherwise the
// scratch directory itself becomes topLevel. destDir/topLevel must not exist.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir, topLevel string) error {
	open, err := decompressorFor(archivePath)
	if err != nil {
		return err
	}

	target := filepath.Join(destDir, topLevel)
	if _, err := os.Lstat(target); err == nil {
		return extractFailed(fmt.Errorf("%s already exists", target), archivePath)
	}

	scratch, err := os.MkdirTemp(destDir, ".extract-*")
	if err != nil {
		return extractFailed(err, archivePath)
	}
	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	// #nosec G304 -- archivePath is built from the tarballs directory and the package table
	f, err := os.Open(archivePath)
	if err != nil {
		return extractFailed(err, archivePath)
	}
	defer func() {
		_ = f.Close()
	}()

	r, err := open(f)
	if err != nil {
		return extractFailed(err, archivePath)
	}

	if err := unpack(ctx, tar.NewReader(r), scratch); err != nil {
		return extractFailed(err, archivePath)
	}

	root, err := singleTopLevelDir(scratch)
	if err != nil {
		return extractFailed(err, archivePath)
	}
	if err := os.Rename(root, target); err != nil {
		return extractFailed(err, archivePath)
	}
	if root == scratch {
		return os.Chmod(target, domain.DirPerm)
	}
	return nil
}

func decompressorFor(archivePath string) (decompressor, error) {
	name := strings.ToLower(filepath.Base(archivePath))
	for _, d := range decompressors {
		if strings.HasSuffix(name, d.suffix) {
			return d.open, nil
		}
	}
	return nil, zerr.With(domain.ErrUnsupportedArchive, "path", archivePath)
}

type dirTime struct {
	path  string
	mtime time.Time
}

func unpack(ctx context.Context, tr *tar.Reader, dest string) error {
	var dirs []dirTime
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return zerr.With(domain.ErrUnsafeArchiveEntry, "entry", hdr.Name)
		}
		if err != nil {
			return err
		}

		if hdr.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		target, err := entryPath(dest, hdr.Name)
		if err != nil {
			return err
		}
		if target == dest {
			continue
		}

		mode := hdr.FileInfo().Mode().Perm()
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, mode|0o700); err != nil {
				return err
			}
			dirs = append(dirs, dirTime{path: target, mtime: hdr.ModTime})
		case tar.TypeReg:
			if err := writeFile(tr, target, mode); err != nil {
				return err
			}
			if err := os.Chtimes(target, hdr.ModTime, hdr.ModTime); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		case tar.TypeLink:
			source, err := entryPath(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
				return err
			}
			if err := os.Link(source, target); err != nil {
				return err
			}
		default:
			// Device nodes and FIFOs have no place in a source tree.
		}
	}

	// Directory times are set last, since creating their entries touches them.
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Chtimes(dirs[i].path, dirs[i].mtime, dirs[i].mtime); err != nil {
			return err
		}
	}
	return nil
}

// entryPath maps an archive member name to a path under dest, refusing names
// that would land outside of it.
func entryPath(dest, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(name, "./")))
	if clean == "." {
		return dest, nil
	}
	if !filepath.IsLocal(clean) {
		return "", zerr.With(domain.ErrUnsafeArchiveEntry, "entry", name)
	}
	// A symlink unpacked earlier must not redirect later members.
	parent := dest
	for _, part := range strings.Split(filepath.Dir(clean), string(filepath.Separator)) {
		if part == "." {
			break
		}
		parent = filepath.Join(parent, part)
		info, err := os.Lstat(parent)
		if err != nil {
			break
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return "", zerr.With(domain.ErrUnsafeArchiveEntry, "entry", name)
		}
	}
	return filepath.Join(dest, clean), nil
}

func writeFile(r io.Reader, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return err
	}
	// #nosec G304 -- target is validated by entryPath
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// singleTopLevelDir returns the only directory directly under scratch, or scratch
// itself when the archive did not wrap its content in one directory.
func singleTopLevelDir(scratch string) (string, error) {
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(scratch, entries[0].Name()), nil
	}
	return scratch, nil
}

func extractFailed(err error, archivePath string) error {
	return zerr.With(fmt.Errorf("%w: %w", domain.ErrExtractFailed, err), "path", archivePath)
}
