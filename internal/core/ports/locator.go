package ports

// ArtifactLocator defines the interface for finding build artifacts.
//
//go:generate mockgen -destination=mocks/locator_mock.go -package=mocks -source=locator.go
type ArtifactLocator interface {
	// Locate returns the first candidate path below root that exists as a regular file.
	Locate(root string, candidates []string) (path string, found bool, err error)
}
