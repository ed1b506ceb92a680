package ports

// Hasher defines the interface for computing content digests.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type Hasher interface {
	// ComputeTreeHash computes a digest over every file below root.
	ComputeTreeHash(root string) (string, error)
}
