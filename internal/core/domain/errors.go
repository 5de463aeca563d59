package domain

import "go.trai.ch/zerr"

var (
	// ErrOutputDirMissing is returned when the tarballs or sources directory does not exist.
	ErrOutputDirMissing = zerr.New("output directory does not exist")

	// ErrInputDirMissing is returned when a directory a command reads from does not exist.
	ErrInputDirMissing = zerr.New("input directory does not exist")

	// ErrInvalidUsage is returned when a command is invoked with the wrong arguments or flags.
	ErrInvalidUsage = zerr.New("invalid usage")

	// ErrUnknownLibrary is returned when a library identifier is not in the library registry.
	ErrUnknownLibrary = zerr.New("unknown library")

	// ErrUnknownComponent is returned when a component identifier is not in the component registry.
	ErrUnknownComponent = zerr.New("unknown component")

	// ErrUnknownPackage is returned when no package metadata is registered for a library.
	ErrUnknownPackage = zerr.New("unknown package")

	// ErrUnknownConfiguration is returned when a configuration name is not defined.
	ErrUnknownConfiguration = zerr.New("unknown configuration")

	// ErrNotDownloadable is returned when a library must be staged but its package has no download URL.
	ErrNotDownloadable = zerr.New("package is not downloadable")

	// ErrDuplicateLibrary is returned when two libraries share an identifier.
	ErrDuplicateLibrary = zerr.New("duplicate library")

	// ErrDuplicatePackage is returned when two packages share an identifier.
	ErrDuplicatePackage = zerr.New("duplicate package")

	// ErrInvalidVersion is returned when a package version is not a valid version string.
	ErrInvalidVersion = zerr.New("invalid package version")

	// ErrSizeMismatch is returned when a downloaded archive does not have the declared byte length.
	ErrSizeMismatch = zerr.New("archive size mismatch")

	// ErrDigestMismatch is returned when a downloaded archive does not match a declared digest.
	ErrDigestMismatch = zerr.New("archive digest mismatch")

	// ErrUnsupportedDigest is returned when a declared digest uses an unknown algorithm or is malformed.
	ErrUnsupportedDigest = zerr.New("unsupported digest")

	// ErrFetchFailed is returned when an archive cannot be downloaded.
	ErrFetchFailed = zerr.New("failed to fetch archive")

	// ErrExtractFailed is returned when an archive cannot be unpacked.
	ErrExtractFailed = zerr.New("failed to extract archive")

	// ErrUnsupportedArchive is returned when the archive format is not recognized from its file name.
	ErrUnsupportedArchive = zerr.New("unsupported archive format")

	// ErrMalformedHeader is returned when a diff header in a patch bundle cannot be parsed.
	ErrMalformedHeader = zerr.New("malformed diff header")

	// ErrMalformedHunk is returned when a hunk header in a patch bundle cannot be parsed.
	ErrMalformedHunk = zerr.New("malformed hunk header")

	// ErrHunkCountMismatch is returned when a hunk body disagrees with the line counts in its header.
	ErrHunkCountMismatch = zerr.New("hunk line counts do not match hunk body")

	// ErrHunkBeforeHeader is returned when a hunk appears before any diff header.
	ErrHunkBeforeHeader = zerr.New("hunk before diff header")

	// ErrHunkMismatch is returned when the context of a hunk does not match the target file.
	ErrHunkMismatch = zerr.New("hunk does not match target file")

	// ErrPathEscapesRoot is returned when a diff target path resolves outside the source tree.
	ErrPathEscapesRoot = zerr.New("diff path escapes source tree")

	// ErrUnsafeArchiveEntry is returned when an archive member would be written outside the extraction directory.
	ErrUnsafeArchiveEntry = zerr.New("archive entry escapes extraction directory")

	// ErrPatchTargetMissing is returned when the file a diff modifies does not exist.
	ErrPatchTargetMissing = zerr.New("patch target does not exist")

	// ErrUnsupportedChange is returned when a bundle cannot express a change between two trees.
	ErrUnsupportedChange = zerr.New("change cannot be expressed as a patch bundle")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrStoreReadFailed is returned when a state record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read state record")

	// ErrStoreWriteFailed is returned when a state record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write state record")

	// ErrStoreUnmarshalFailed is returned when a state record cannot be decoded.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal state record")

	// ErrTreeHashFailed is returned when a source tree cannot be fingerprinted.
	ErrTreeHashFailed = zerr.New("failed to hash source tree")
)
