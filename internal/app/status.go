package app

import (
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/stage/internal/core/domain"
)

// SourceState classifies a prepared source tree against its state record.
type SourceState string

const (
	// StateClean means the tree still has the fingerprint recorded after preparation.
	StateClean SourceState = "clean"
	// StateModified means files changed since preparation.
	StateModified SourceState = "modified"
	// StateMissing means the recorded source directory no longer exists.
	StateMissing SourceState = "missing"
)

// SourceStatus is one line of the status report.
type SourceStatus struct {
	Record domain.PreparedSource
	State  SourceState
	// Latest is the version in the package table when it is newer than the recorded one.
	Latest string
}

// Status compares every state record under sourcesDir with the tree it describes.
func (a *App) Status(configFile, sourcesDir string) ([]SourceStatus, error) {
	if err := requireDir(sourcesDir, domain.ErrInputDirMissing); err != nil {
		return nil, err
	}

	reg, err := a.configLoader.Load(configFile)
	if err != nil {
		return nil, err
	}

	records, err := a.store.List(sourcesDir)
	if err != nil {
		return nil, err
	}

	statuses := make([]SourceStatus, 0, len(records))
	for _, record := range records {
		status := SourceStatus{Record: record, State: StateClean}

		root := filepath.Join(sourcesDir, record.SourceDir)
		if !dirExists(root) {
			status.State = StateMissing
		} else {
			hash, err := a.hasher.ComputeTreeHash(root)
			if err != nil {
				return nil, err
			}
			if hash != record.TreeHash {
				status.State = StateModified
			}
		}

		if pkg, err := reg.Package(record.Library); err == nil && newer(pkg.Version, record.Version) {
			status.Latest = pkg.Version
		}

		statuses = append(statuses, status)
	}
	return statuses, nil
}

// newer reports whether candidate is a later version than current.
// Unparsable versions never compare as newer.
func newer(candidate, current string) bool {
	c, err := semver.NewVersion(candidate)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	return c.GreaterThan(v)
}

func dirExists(path string) bool {
	return requireDir(path, domain.ErrInputDirMissing) == nil
}
