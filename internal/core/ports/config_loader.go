package ports

import "go.trai.ch/stage/internal/core/domain"

// ConfigLoader defines the interface for loading the library, package and component registry.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load returns the built-in registry extended with the overrides found in the config file at path.
	// A missing file yields the built-in registry.
	Load(path string) (*domain.Registry, error)
}
