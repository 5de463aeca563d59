package patch

import (
	"bytes"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/zerr"
)

// DefaultContext is the number of context lines surrounding each change.
const DefaultContext = 3

var skippedDirs = map[string]bool{".git": true, ".jj": true, ".hg": true, ".svn": true}

// Generate compares a pristine and a modified source tree and returns one diff per
// regular file whose content differs, ordered by path. Applying the result to the
// pristine tree reproduces the modified tree.
//
// Removed files and binary files cannot be expressed in a bundle and yield
// domain.ErrUnsupportedChange.
func Generate(pristineRoot, modifiedRoot string, contextLines int) ([]domain.Diff, error) {
	pristine, err := listFiles(pristineRoot)
	if err != nil {
		return nil, err
	}
	modified, err := listFiles(modifiedRoot)
	if err != nil {
		return nil, err
	}

	paths := slices.Sorted(maps.Keys(modified))
	for _, rel := range slices.Sorted(maps.Keys(pristine)) {
		if _, ok := modified[rel]; !ok {
			return nil, unsupported(rel, "file removed")
		}
	}

	var diffs []domain.Diff
	for _, rel := range paths {
		var before []byte
		if abs, ok := pristine[rel]; ok {
			if before, err = os.ReadFile(abs); err != nil { //nolint:gosec // Walked from pristineRoot.
				return nil, zerr.With(zerr.Wrap(err, "failed to read pristine file"), "path", rel)
			}
		}
		after, err := os.ReadFile(modified[rel]) //nolint:gosec // Walked from modifiedRoot.
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to read modified file"), "path", rel)
		}

		if bytes.Equal(before, after) {
			continue
		}
		if bytes.IndexByte(before, 0) >= 0 || bytes.IndexByte(after, 0) >= 0 {
			return nil, unsupported(rel, "binary file")
		}

		diffs = append(diffs, diffFile(rel, splitLines(string(before)), splitLines(string(after)), contextLines))
	}
	return diffs, nil
}

func diffFile(rel string, a, b []string, contextLines int) domain.Diff {
	d := domain.Diff{Path: rel}
	for _, group := range difflib.NewMatcher(a, b).GetGroupedOpCodes(contextLines) {
		first, last := group[0], group[len(group)-1]
		h := domain.Hunk{
			OrigStart: first.I1 + 1,
			OrigCount: last.I2 - first.I1,
			NewStart:  first.J1 + 1,
			NewCount:  last.J2 - first.J1,
		}
		if h.OrigCount == 0 {
			h.OrigStart--
		}
		if h.NewCount == 0 {
			h.NewStart--
		}

		for _, c := range group {
			if c.Tag == 'e' {
				h.Lines = appendLines(h.Lines, domain.LineContext, a[c.I1:c.I2])
				continue
			}
			if c.Tag == 'r' || c.Tag == 'd' {
				h.Lines = appendLines(h.Lines, domain.LineRemove, a[c.I1:c.I2])
			}
			if c.Tag == 'r' || c.Tag == 'i' {
				h.Lines = appendLines(h.Lines, domain.LineAdd, b[c.J1:c.J2])
			}
		}
		d.Hunks = append(d.Hunks, h)
	}
	return d
}

func appendLines(dst []domain.Line, kind domain.LineKind, src []string) []domain.Line {
	for _, s := range src {
		dst = append(dst, domain.Line{
			Kind:      kind,
			Text:      strings.TrimSuffix(s, "\n"),
			NoNewline: !strings.HasSuffix(s, "\n"),
		})
	}
	return dst
}

// listFiles maps the slash separated relative path of every regular file below root
// to its absolute path.
func listFiles(root string) (map[string]string, error) {
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = path
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to walk source tree"), "root", root)
	}
	return files, nil
}

func unsupported(rel, reason string) error {
	err := zerr.Wrap(domain.ErrUnsupportedChange, rel+": "+reason)
	return zerr.With(err, "path", rel)
}
