package domain

import "path/filepath"

const (
	// StageDirName is the name of the metadata directory kept inside the sources directory.
	StageDirName = ".stage"

	// StateDirName is the name of the directory holding per-library state records.
	StateDirName = "state"

	// BundleExt is the file extension of a patch bundle in the patches directory.
	BundleExt = ".diff"

	// ConfigFileName is the default name of the configuration file.
	ConfigFileName = "stage.yaml"

	// DefaultConfiguration is the configuration used when none is requested.
	DefaultConfiguration = "3RD_STA"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// StatePath returns the state record directory for a sources directory.
// It joins sourcesDir, .stage and state.
func StatePath(sourcesDir string) string {
	return filepath.Join(sourcesDir, StageDirName, StateDirName)
}

// BundlePath returns the path of the patch bundle for a canonical source directory name.
func BundlePath(patchesDir, sourceDirName string) string {
	return filepath.Join(patchesDir, sourceDirName+BundleExt)
}
