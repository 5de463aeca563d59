// Package domain contains the core models of the source staging tool: libraries,
// packages, components, patch bundles and state records.
package domain

import "slices"

// AllPlatforms marks a library as supplied by the operating system on every platform.
const AllPlatforms = "*"

// Library is a third-party dependency of the build.
type Library struct {
	// ID is the unique key of the library (e.g., "PNG").
	ID string

	// DependsOn lists the identifiers of the libraries this library needs.
	DependsOn []string

	// SystemOn lists the platforms on which the operating system supplies the library.
	// AllPlatforms matches every platform.
	SystemOn []string
}

// IsSystemLibrary reports whether the library is supplied by the operating system on platform.
func (l Library) IsSystemLibrary(platform string) bool {
	return slices.Contains(l.SystemOn, AllPlatforms) || slices.Contains(l.SystemOn, platform)
}

// Component is a top-level feature of the build that requires a set of libraries.
type Component struct {
	// ID is the unique key of the component (e.g., "CORE").
	ID string

	// Libraries lists the libraries the component requires directly.
	Libraries []string
}
