package ports

import (
	"context"

	"go.trai.ch/stage/internal/core/domain"
)

// Fetcher downloads source archives.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type Fetcher interface {
	// Fetch downloads req.URL into destDir/req.FileName.
	// The archive is verified against the declared length and digests before it is
	// moved to its final name; a failed verification leaves nothing behind.
	Fetch(ctx context.Context, req domain.FetchRequest, destDir string) error
}
