package ports

import (
	"context"

	"go.trai.ch/kiln/internal/core/domain"
)

// BuildSystem drives the external build tool for each lifecycle phase.
//
//go:generate mockgen -source=build_system.go -destination=mocks/mock_build_system.go -package=mocks
type BuildSystem interface {
	Generate(ctx context.Context, snapshot *domain.Snapshot) error
	Build(ctx context.Context, snapshot *domain.Snapshot) error
	Package(ctx context.Context, snapshot *domain.Snapshot) error
	Test(ctx context.Context, snapshot *domain.Snapshot) error
}

// PhaseFunc performs the work of one lifecycle phase.
type PhaseFunc func(ctx context.Context, snapshot *domain.Snapshot) error

// PhaseHandlers is the set of phase capabilities supplied to a lifecycle run.
// A nil handler means the phase is not available.
type PhaseHandlers struct {
	Generate PhaseFunc
	Build    PhaseFunc
	Package  PhaseFunc
	Test     PhaseFunc
}

// HandlersFor exposes every phase of bs as handlers.
func HandlersFor(bs BuildSystem) PhaseHandlers {
	return PhaseHandlers{
		Generate: bs.Generate,
		Build:    bs.Build,
		Package:  bs.Package,
		Test:     bs.Test,
	}
}

// For returns the handler of phase p.
func (h PhaseHandlers) For(p domain.Phase) PhaseFunc {
	switch p {
	case domain.PhaseGenerate:
		return h.Generate
	case domain.PhaseBuild:
		return h.Build
	case domain.PhasePackage:
		return h.Package
	case domain.PhaseTest:
		return h.Test
	default:
		return nil
	}
}
