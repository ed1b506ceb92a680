// Package verifier checks a produced package by building and running a
// minimal consumer against it.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/lifecycle"
	"go.trai.ch/kiln/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// PrefixPathVar carries the package directory to the consumer build.
const PrefixPathVar = "CMAKE_PREFIX_PATH"

// exampleCandidates are the paths, relative to the consumer build directory,
// searched for the example binary.
var exampleCandidates = []string{
	"example",
	"example.exe",
	"bin/example",
	"bin/example.exe",
	"Release/example.exe",
	"Debug/example.exe",
}

// Consumer describes the consumer project used to verify a package.
type Consumer struct {
	// SourceDir holds the consumer project.
	SourceDir string
	// BuildDir defaults to a "build" directory inside SourceDir.
	BuildDir string
	Settings domain.Settings
	// Selections are option selections for the consumer. Tests are always enabled.
	Selections map[string]string
}

// Verifier builds a consumer against a produced package and runs its example.
type Verifier struct {
	store        ports.PackageStore
	orchestrator *lifecycle.Orchestrator
	buildSystem  ports.BuildSystem
	exec         ports.Executor
	locator      ports.ArtifactLocator
	platform     ports.Platform
	logger       ports.Logger

	consumer Consumer
}

// New creates a new Verifier.
func New(
	store ports.PackageStore,
	orchestrator *lifecycle.Orchestrator,
	buildSystem ports.BuildSystem,
	exec ports.Executor,
	locator ports.ArtifactLocator,
	platform ports.Platform,
	logger ports.Logger,
) *Verifier {
	return &Verifier{
		store:        store,
		orchestrator: orchestrator,
		buildSystem:  buildSystem,
		exec:         exec,
		locator:      locator,
		platform:     platform,
		logger:       logger,
	}
}

// WithConsumer returns a copy of v that verifies with consumer c.
func (v *Verifier) WithConsumer(c Consumer) *Verifier {
	cp := *v
	cp.consumer = c
	return &cp
}

// Verify builds the consumer against the package ref and runs its example.
// Build and example failures are reported through the result; the returned
// error is only set when verification could not be attempted.
//
// Verification is never retried.
func (v *Verifier) Verify(ctx context.Context, ref domain.Reference) (*domain.VerifyResult, error) {
	if v.consumer.SourceDir == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidRecipe, "no consumer test package configured"), "package", ref.String())
	}

	constraint, err := domain.ExactConstraint(ref.Version)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "cannot verify package"), "package", ref.String())
	}

	record, err := v.store.Get(ref)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to look up package")
	}
	if record == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageNotFound, "cannot verify package"), "package", ref.String())
	}

	prefix, err := filepath.Abs(record.Dir)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve package directory"), "dir", record.Dir)
	}

	snapshot, err := resolver.Resolve(v.consumerInput(ref, constraint, prefix))
	if err != nil {
		return nil, err
	}

	handlers := ports.PhaseHandlers{
		Generate: v.buildSystem.Generate,
		Build:    v.buildSystem.Build,
		Test:     v.runExample(prefix),
	}

	v.logger.Info(fmt.Sprintf("verifying %s with consumer %s", ref, snapshot.Metadata().Name))
	run, err := v.orchestrator.Run(ctx, snapshot, handlers)
	if run == nil {
		return nil, err
	}

	result := &domain.VerifyResult{Reference: ref, Run: run}
	switch {
	case err != nil && errors.Is(err, domain.ErrExampleFailed):
		result.Status = domain.VerifyFailed
		result.Reason = "package built but the example misbehaved"
		result.Err = err
	case err != nil:
		result.Status = domain.VerifyFailed
		result.Reason = fmt.Sprintf("consumer did not build: %s phase failed", run.FailedPhase)
		result.Err = err
	case run.Status(domain.PhaseTest) == domain.PhaseStatusSkipped:
		settings := snapshot.Settings()
		result.Status = domain.VerifySkipped
		result.Reason = fmt.Sprintf("host %s/%s cannot run binaries for %s/%s",
			v.platform.Host().OS, v.platform.Host().Arch, settings.OS, settings.Arch)
	default:
		result.Status = domain.VerifySuccess
	}
	return result, nil
}

func (v *Verifier) consumerInput(ref domain.Reference, constraint domain.Constraint, prefix string) resolver.Input {
	selections := maps.Clone(v.consumer.Selections)
	if selections == nil {
		selections = make(map[string]string, 1)
	}
	selections[domain.OptionWithTests] = domain.ValueTrue

	buildDir := v.consumer.BuildDir
	if buildDir == "" {
		buildDir = filepath.Join(v.consumer.SourceDir, "build")
	}

	return resolver.Input{
		Options:    domain.StandardOptions(),
		Selections: selections,
		Dependencies: []domain.DependencyDeclaration{{
			Name:       ref.Name,
			Constraint: constraint,
			Kind:       domain.KindRuntime,
		}},
		Metadata: domain.PackageMetadata{Name: ref.Name + "_test", Version: ref.Version},
		Settings: v.consumer.Settings,
		Layout: domain.Layout{
			SourceDir: v.consumer.SourceDir,
			BuildDir:  buildDir,
		},
		Variables: map[string]string{PrefixPathVar: prefix},
	}
}

// runExample returns the test handler: it runs the example binary built by
// the consumer, or skips when the host cannot run target binaries.
func (v *Verifier) runExample(prefix string) ports.PhaseFunc {
	return func(ctx context.Context, snapshot *domain.Snapshot) error {
		settings := snapshot.Settings()
		if !v.platform.CanRun(settings) {
			err := zerr.With(zerr.Wrap(domain.ErrPhaseSkipped, "host cannot run target binaries"), "os", settings.OS)
			return zerr.With(err, "arch", settings.Arch)
		}

		buildDir := snapshot.Layout().BuildDir
		path, found, err := v.locator.Locate(buildDir, exampleCandidates)
		if err != nil {
			return err
		}
		if !found {
			return zerr.With(zerr.Wrap(domain.ErrExampleFailed, "example binary not found"), "build_dir", buildDir)
		}

		libDir := filepath.Join(prefix, "lib")
		cmd := domain.NewCommand(buildDir, path)
		switch runtime.GOOS {
		case "darwin":
			cmd = cmd.WithEnv("DYLD_LIBRARY_PATH", libDir)
		case "windows":
			cmd = cmd.WithEnv("PATH", filepath.Join(prefix, "bin"))
		default:
			cmd = cmd.WithEnv("LD_LIBRARY_PATH", libDir)
		}

		if err := v.exec.Execute(ctx, cmd); err != nil {
			return zerr.With(zerr.Wrap(errors.Join(domain.ErrExampleFailed, err), "example exited unsuccessfully"), "example", path)
		}
		return nil
	}
}
