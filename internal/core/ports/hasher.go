package ports

// TreeHasher fingerprints a directory tree.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type TreeHasher interface {
	// ComputeTreeHash returns a digest of every file path and content below root.
	ComputeTreeHash(root string) (string, error)
}
