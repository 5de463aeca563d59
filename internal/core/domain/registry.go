package domain

import (
	"maps"
	"slices"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/zerr"
)

// Registry is the immutable lookup table of libraries, packages, components and configurations.
type Registry struct {
	libraries      map[string]Library
	packages       map[string]Package
	components     map[string]Component
	configurations map[string][]string
}

// NewRegistry validates the given tables and builds a Registry from them.
// Every library dependency, component library and configuration component must be known,
// and every downloadable package must carry a valid version.
func NewRegistry(
	libraries []Library,
	packages []Package,
	components []Component,
	configurations map[string][]string,
) (*Registry, error) {
	r := &Registry{
		libraries:      make(map[string]Library, len(libraries)),
		packages:       make(map[string]Package, len(packages)),
		components:     make(map[string]Component, len(components)),
		configurations: make(map[string][]string, len(configurations)),
	}

	for _, lib := range libraries {
		if _, ok := r.libraries[lib.ID]; ok {
			return nil, zerr.With(zerr.Wrap(ErrDuplicateLibrary, "invalid library table"), "library", lib.ID)
		}
		r.libraries[lib.ID] = lib
	}

	for _, pkg := range packages {
		if _, ok := r.packages[pkg.ID]; ok {
			return nil, zerr.With(zerr.Wrap(ErrDuplicatePackage, "invalid package table"), "package", pkg.ID)
		}
		if pkg.Downloadable() {
			if _, err := semver.NewVersion(pkg.Version); err != nil {
				wrapped := zerr.Wrap(ErrInvalidVersion, err.Error())
				wrapped = zerr.With(wrapped, "package", pkg.ID)
				return nil, zerr.With(wrapped, "version", pkg.Version)
			}
		}
		r.packages[pkg.ID] = pkg
	}

	for _, comp := range components {
		r.components[comp.ID] = comp
	}
	for name, comps := range configurations {
		r.configurations[name] = slices.Clone(comps)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) validate() error {
	for _, id := range slices.Sorted(maps.Keys(r.libraries)) {
		for _, dep := range r.libraries[id].DependsOn {
			if _, ok := r.libraries[dep]; !ok {
				err := zerr.With(zerr.Wrap(ErrUnknownLibrary, "library depends on unknown library"), "library", id)
				return zerr.With(err, "dependency", dep)
			}
		}
	}

	for _, id := range slices.Sorted(maps.Keys(r.components)) {
		for _, lib := range r.components[id].Libraries {
			if _, ok := r.libraries[lib]; !ok {
				err := zerr.With(zerr.Wrap(ErrUnknownLibrary, "component requires unknown library"), "component", id)
				return zerr.With(err, "library", lib)
			}
		}
	}

	for _, name := range slices.Sorted(maps.Keys(r.configurations)) {
		for _, comp := range r.configurations[name] {
			if _, ok := r.components[comp]; !ok {
				err := zerr.With(zerr.Wrap(ErrUnknownComponent, "configuration desires unknown component"), "configuration", name)
				return zerr.With(err, "component", comp)
			}
		}
	}
	return nil
}

// Library returns the library with the given identifier.
func (r *Registry) Library(id string) (Library, error) {
	lib, ok := r.libraries[id]
	if !ok {
		return Library{}, zerr.With(zerr.Wrap(ErrUnknownLibrary, "library lookup failed"), "library", id)
	}
	return lib, nil
}

// Package returns the download metadata for the given library identifier.
func (r *Registry) Package(id string) (Package, error) {
	pkg, ok := r.packages[id]
	if !ok {
		return Package{}, zerr.With(zerr.Wrap(ErrUnknownPackage, "package lookup failed"), "library", id)
	}
	return pkg, nil
}

// Packages returns every registered package ordered by identifier.
func (r *Registry) Packages() []Package {
	out := make([]Package, 0, len(r.packages))
	for _, id := range slices.Sorted(maps.Keys(r.packages)) {
		out = append(out, r.packages[id])
	}
	return out
}

// RequiredLibrariesFor returns the libraries the given components require directly, sorted and deduplicated.
func (r *Registry) RequiredLibrariesFor(components []string) ([]string, error) {
	var libs []string
	for _, id := range components {
		comp, ok := r.components[id]
		if !ok {
			return nil, zerr.With(zerr.Wrap(ErrUnknownComponent, "component lookup failed"), "component", id)
		}
		libs = append(libs, comp.Libraries...)
	}
	slices.Sort(libs)
	return slices.Compact(libs), nil
}

// DesiredComponents returns the components desired by the named configuration.
func (r *Registry) DesiredComponents(configuration string) ([]string, error) {
	comps, ok := r.configurations[configuration]
	if !ok {
		return nil, zerr.With(
			zerr.Wrap(ErrUnknownConfiguration, "configuration lookup failed"),
			"configuration", configuration,
		)
	}
	return slices.Clone(comps), nil
}

// WithOverrides returns a new Registry whose component and configuration tables are
// extended, entry by entry, with the given overrides. The receiver is left untouched.
func (r *Registry) WithOverrides(components, configurations map[string][]string) (*Registry, error) {
	comps := make([]Component, 0, len(r.components)+len(components))
	for id, comp := range r.components {
		if _, ok := components[id]; ok {
			continue
		}
		comps = append(comps, comp)
	}
	for id, libs := range components {
		comps = append(comps, Component{ID: id, Libraries: slices.Clone(libs)})
	}

	configs := maps.Clone(r.configurations)
	maps.Copy(configs, configurations)

	return NewRegistry(
		slices.Collect(maps.Values(r.libraries)),
		slices.Collect(maps.Values(r.packages)),
		comps,
		configs,
	)
}
