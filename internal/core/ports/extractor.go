package ports

import "context"

// Extractor unpacks source archives.
//
//go:generate mockgen -source=extractor.go -destination=mocks/mock_extractor.go -package=mocks
type Extractor interface {
	// Extract unpacks archivePath into destDir so that its content ends up in destDir/topLevel,
	// whatever top-level directory name the archive itself uses.
	Extract(ctx context.Context, archivePath, destDir, topLevel string) error
}
