package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// ManifestWriter defines the interface for emitting dependency manifests.
//
//go:generate mockgen -source=manifest.go -destination=mocks/mock_manifest.go -package=mocks
type ManifestWriter interface {
	// Write stores the manifest in dir and returns the written file path.
	// Writing the same manifest twice produces identical bytes.
	Write(ctx context.Context, dir string, manifest domain.Manifest) (string, error)
}
