package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Package holds the download metadata of a library's upstream source archive.
type Package struct {
	// ID matches the identifier of the Library the package provides.
	ID string

	// NiceName is the human readable name used in operator messages.
	NiceName string

	// SourceName is the upstream project name used to derive file names.
	SourceName string

	// Version is the single pinned upstream version.
	Version string

	// DownloadURL is the base URL the archive is fetched from.
	// An empty URL marks a package that cannot be downloaded.
	DownloadURL string

	// FileLength is the expected size of the archive in bytes. Zero disables the check.
	FileLength int64

	// Checksums maps a digest algorithm (e.g. "sha256") to the expected hex encoded value.
	Checksums map[string]string

	// SourceDirOverride replaces the default canonical source directory name.
	SourceDirOverride string

	// TarballOverride replaces the default archive file name.
	TarballOverride string
}

// SourceDirName returns the canonical name of the extracted source directory.
func (p Package) SourceDirName() string {
	if p.SourceDirOverride != "" {
		return p.SourceDirOverride
	}
	return fmt.Sprintf("%s-%s", p.SourceName, p.Version)
}

// TarballName returns the file name of the source archive.
func (p Package) TarballName() string {
	if p.TarballOverride != "" {
		return p.TarballOverride
	}
	return fmt.Sprintf("%s-%s.tar.gz", p.SourceName, p.Version)
}

// URL returns the full download URL of the source archive.
func (p Package) URL() string {
	if !p.Downloadable() {
		return ""
	}
	base := strings.TrimRight(p.DownloadURL, "/") + "/"
	u, err := url.Parse(base)
	if err != nil {
		return base + p.TarballName()
	}
	return u.JoinPath(p.TarballName()).String()
}

// Downloadable reports whether the package has a download location.
func (p Package) Downloadable() bool {
	return p.DownloadURL != ""
}

// FetchRequest describes a single archive download.
type FetchRequest struct {
	// URL is the location of the archive.
	URL string

	// FileName is the name the archive is stored under in the destination directory.
	FileName string

	// Length is the expected size in bytes. Zero disables the check.
	Length int64

	// Checksums maps a digest algorithm to the expected hex encoded value.
	Checksums map[string]string
}

// FetchRequestFor builds the download request for a package.
func FetchRequestFor(p Package) FetchRequest {
	return FetchRequest{
		URL:       p.URL(),
		FileName:  p.TarballName(),
		Length:    p.FileLength,
		Checksums: p.Checksums,
	}
}
