package verifier

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/kiln/internal/adapters/cmake"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/fs"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/logger"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/platform" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/shell"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/adapters/store"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/lifecycle"
)

// NodeID is the unique identifier for the verifier Graft node.
const NodeID graft.ID = "engine.verifier"

func init() {
	graft.Register(graft.Node[*Verifier]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			store.NodeID,
			lifecycle.NodeID,
			cmake.NodeID,
			shell.NodeID,
			fs.LocatorNodeID,
			platform.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Verifier, error) {
			packages, err := graft.Dep[ports.PackageStore](ctx)
			if err != nil {
				return nil, err
			}

			orchestrator, err := graft.Dep[*lifecycle.Orchestrator](ctx)
			if err != nil {
				return nil, err
			}

			buildSystem, err := graft.Dep[ports.BuildSystem](ctx)
			if err != nil {
				return nil, err
			}

			exec, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			locator, err := graft.Dep[ports.ArtifactLocator](ctx)
			if err != nil {
				return nil, err
			}

			host, err := graft.Dep[ports.Platform](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(packages, orchestrator, buildSystem, exec, locator, host, log), nil
		},
	})
}
