package ports

import "go.trai.ch/stage/internal/core/domain"

// StateStore defines the interface for storing and retrieving preparation records.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StateStore interface {
	// Get retrieves the record for a library prepared under sourcesDir.
	// Returns nil, nil if not found.
	Get(sourcesDir, library string) (*domain.PreparedSource, error)

	// Put stores the record.
	Put(sourcesDir string, src domain.PreparedSource) error

	// List returns every record stored under sourcesDir, ordered by library.
	List(sourcesDir string) ([]domain.PreparedSource, error)
}
