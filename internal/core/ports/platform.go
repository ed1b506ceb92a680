package ports

import "go.trai.ch/kiln/internal/core/domain"

// Platform describes the host the build runs on.
//
//go:generate mockgen -source=platform.go -destination=mocks/mock_platform.go -package=mocks
type Platform interface {
	// Host returns the settings of the running host.
	Host() domain.Settings
	// CanRun reports whether binaries built for target can be executed on the host.
	CanRun(target domain.Settings) bool
}
