// Package cas stores preparation records in files addressed by the hash of their library id.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/renameio/v2"
	"go.trai.ch/stage/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.StateStore using a file-per-library strategy.
type Store struct{}

// NewStore creates a new StateStore.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the record of a library prepared under sourcesDir.
func (s *Store) Get(sourcesDir, library string) (*domain.PreparedSource, error) {
	return readRecord(s.getFilename(sourcesDir, library))
}

// Put stores the record, replacing any previous one for the same library.
func (s *Store) Put(sourcesDir string, src domain.PreparedSource) error {
	data, err := json.MarshalIndent(src, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	filename := s.getFilename(sourcesDir, src.Library)
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", dir)
	}

	if err := renameio.WriteFile(filename, data, domain.FilePerm, renameio.WithTempDir(dir)); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "path", filename)
	}

	return nil
}

// List returns every record stored under sourcesDir, ordered by library id.
func (s *Store) List(sourcesDir string) ([]domain.PreparedSource, error) {
	dir := domain.StatePath(sourcesDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", dir)
	}

	var records []domain.PreparedSource
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		record, err := readRecord(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, *record)
		}
	}

	slices.SortFunc(records, func(a, b domain.PreparedSource) int {
		return strings.Compare(a.Library, b.Library)
	})
	return records, nil
}

func readRecord(filename string) (*domain.PreparedSource, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "path", filename)
	}

	var src domain.PreparedSource
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "path", filename)
	}

	return &src, nil
}

func (s *Store) getFilename(sourcesDir, library string) string {
	hash := sha256.Sum256([]byte(library))
	return filepath.Join(domain.StatePath(sourcesDir), hex.EncodeToString(hash[:])+".json")
}
