// Package resolver computes the set of third-party libraries a build has to stage.
package resolver

import (
	"maps"
	"slices"

	"go.trai.ch/stage/internal/core/domain"
)

// Catalog is the lookup surface the resolver needs from the registry.
type Catalog interface {
	// RequiredLibrariesFor returns the libraries the components require directly.
	RequiredLibrariesFor(components []string) ([]string, error)
	// Library returns the library with the given identifier.
	Library(id string) (domain.Library, error)
}

// Resolve returns the transitive closure of the libraries required by components,
// without the libraries the operating system supplies on platform.
//
// The closure is computed over a work-list until no new library is discovered, so
// dependency chains of any length are followed and cycles terminate.
// No partial result is returned on error.
func Resolve(catalog Catalog, components []string, platform string) (map[string]struct{}, error) {
	direct, err := catalog.RequiredLibrariesFor(components)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]domain.Library, len(direct))
	queue := slices.Clone(direct)
	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if _, ok := seen[id]; ok {
			continue
		}

		lib, err := catalog.Library(id)
		if err != nil {
			return nil, err
		}
		seen[id] = lib

		for _, dep := range lib.DependsOn {
			if _, ok := seen[dep]; !ok {
				queue = append(queue, dep)
			}
		}
	}

	out := make(map[string]struct{}, len(seen))
	for id, lib := range seen {
		if lib.IsSystemLibrary(platform) {
			continue
		}
		out[id] = struct{}{}
	}
	return out, nil
}

// Sorted returns the members of set in ascending order.
func Sorted(set map[string]struct{}) []string {
	return slices.Sorted(maps.Keys(set))
}
