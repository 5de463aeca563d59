package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/stage/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.TreeHasher = (*Hasher)(nil)

// Hasher fingerprints source trees.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}

// ComputeTreeHash computes a single hash over the relative path, kind, executable bit and
// content of every file below root. Symlinks contribute their target, not the file they
// point to.
func (h *Hasher) ComputeTreeHash(root string) (string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrTreeHashFailed.Error()), "path", root)
	}
	if !info.IsDir() {
		return "", zerr.With(domain.ErrTreeHashFailed, "path", root)
	}

	hasher := xxhash.New()
	for path := range h.walker.WalkFiles(root) {
		if err := h.hashEntry(root, path, hasher); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func (h *Hasher) hashEntry(root, path string, mainHasher *xxhash.Digest) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrTreeHashFailed.Error()), "path", path)
	}
	_, _ = mainHasher.WriteString(filepath.ToSlash(rel))
	_, _ = mainHasher.Write([]byte{0})

	info, err := os.Lstat(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrTreeHashFailed.Error()), "path", path)
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrTreeHashFailed.Error()), "path", path)
		}
		_, _ = mainHasher.Write([]byte{'l'})
		_, _ = mainHasher.WriteString(target)
	case info.Mode().IsRegular():
		kind := byte('f')
		if info.Mode().Perm()&0o111 != 0 {
			kind = 'x'
		}
		_, _ = mainHasher.Write([]byte{kind})

		hash, err := h.ComputeFileHash(path)
		if err != nil {
			return err
		}
		if err := binary.Write(mainHasher, binary.LittleEndian, hash); err != nil {
			return zerr.Wrap(err, "failed to write hash to digest")
		}
	default:
		_, _ = mainHasher.Write([]byte{'o'})
	}
	_, _ = mainHasher.Write([]byte{0})

	return nil
}
