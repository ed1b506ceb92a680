package ports

import "go.trai.ch/kiln/internal/core/domain"

// PackageStore defines the interface for recording produced packages.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type PackageStore interface {
	// Get retrieves the record for a package reference.
	// Returns nil, nil if not found.
	Get(ref domain.Reference) (*domain.PackageRecord, error)

	// Put stores the record.
	Put(record domain.PackageRecord) error
}
