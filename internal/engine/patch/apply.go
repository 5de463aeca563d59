package patch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/renameio/v2"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/zerr"
)

// Apply applies diff to the file it names below root.
//
// Hunks are applied in ascending order of their original start line. Each hunk must
// match the file exactly at its recorded position, shifted by the line delta of the
// hunks applied before it. The file is only rewritten, atomically, once every hunk
// has matched; on failure it is left untouched. A diff that creates a file fails
// when the target already has content.
func Apply(diff domain.Diff, root string) error {
	target, err := resolveTarget(root, diff.Path)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(target) //nolint:gosec // Target is confined to root by resolveTarget.
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && diff.Creates():
		content = nil
	case errors.Is(err, fs.ErrNotExist):
		return zerr.With(zerr.Wrap(domain.ErrPatchTargetMissing, diff.Path), "path", diff.Path)
	default:
		return zerr.With(zerr.Wrap(err, "failed to read patch target"), "path", diff.Path)
	}

	if diff.Creates() && len(content) > 0 {
		return hunkMismatch(diff, 1, 0)
	}

	patched, err := applyHunks(splitLines(string(content)), diff)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", diff.Path)
	}
	data := []byte(strings.Join(patched, ""))
	if err := renameio.WriteFile(target, data, domain.FilePerm, renameio.WithTempDir(filepath.Dir(target))); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write patched file"), "path", diff.Path)
	}
	return nil
}

type indexedHunk struct {
	index int
	hunk  domain.Hunk
}

func applyHunks(lines []string, diff domain.Diff) ([]string, error) {
	ordered := make([]indexedHunk, len(diff.Hunks))
	for i, h := range diff.Hunks {
		ordered[i] = indexedHunk{index: i + 1, hunk: h}
	}
	slices.SortStableFunc(ordered, func(a, b indexedHunk) int {
		return a.hunk.OrigStart - b.hunk.OrigStart
	})

	delta := 0
	floor := 0
	for _, ih := range ordered {
		h := ih.hunk
		anchor := h.OrigStart - 1
		if h.OrigCount == 0 {
			anchor = h.OrigStart
		}
		anchor += delta

		oldLines := h.OldLines()
		end := anchor + len(oldLines)
		if anchor < floor || end > len(lines) || !slices.Equal(lines[anchor:end], oldLines) {
			return nil, hunkMismatch(diff, ih.index, h.OrigStart)
		}

		newLines := h.NewLines()
		lines = slices.Replace(lines, anchor, end, newLines...)
		delta += len(newLines) - len(oldLines)
		floor = anchor + len(newLines)
	}
	return lines, nil
}

func hunkMismatch(diff domain.Diff, index, line int) error {
	err := zerr.Wrap(domain.ErrHunkMismatch, fmt.Sprintf("%s: hunk #%d at line %d", diff.Path, index, line))
	err = zerr.With(err, "path", diff.Path)
	return zerr.With(err, "hunk", index)
}

// splitLines splits s into lines that keep their "\n" terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// resolveTarget joins rel to root and rejects results that leave root,
// directly or through symbolic links.
func resolveTarget(root, rel string) (string, error) {
	local := filepath.FromSlash(rel)
	if !filepath.IsLocal(local) {
		return "", escapeError(rel)
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve source tree"), "root", root)
	}

	target, err := evalExisting(filepath.Join(realRoot, local))
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve patch target"), "path", rel)
	}

	inside, err := filepath.Rel(realRoot, target)
	if err != nil || !filepath.IsLocal(inside) {
		return "", escapeError(rel)
	}
	return target, nil
}

// evalExisting resolves symbolic links in the longest existing prefix of p and
// appends the remaining, not yet existing, components.
func evalExisting(p string) (string, error) {
	var missing []string
	for {
		resolved, err := filepath.EvalSymlinks(p)
		if err == nil {
			slices.Reverse(missing)
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", err
		}
		missing = append(missing, filepath.Base(p))
		p = parent
	}
}

func escapeError(rel string) error {
	return zerr.With(zerr.Wrap(domain.ErrPathEscapesRoot, rel), "path", rel)
}
