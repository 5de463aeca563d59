// Package fs provides file system adapters for walking and fingerprinting source trees.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
)

// vcsDirs are never part of a source tree's content.
var vcsDirs = []string{".git", ".jj", ".hg", ".svn"}

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields every non-directory entry below root in lexical order, skipping
// version control directories. Yielded paths include root.
func (w *Walker) WalkFiles(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && slices.Contains(vcsDirs, d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}
