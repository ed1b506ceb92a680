// Package app implements the application layer for kiln.
package app

import (
	"context"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"time"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/lifecycle"
	"go.trai.ch/kiln/internal/engine/resolver"
	"go.trai.ch/kiln/internal/engine/verifier"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// App represents the main application logic.
type App struct {
	loader       ports.RecipeLoader
	orchestrator *lifecycle.Orchestrator
	buildSystem  ports.BuildSystem
	verifier     *verifier.Verifier
	store        ports.PackageStore
	hasher       ports.Hasher
	platform     ports.Platform
	logger       ports.Logger
	now          func() time.Time
}

// New creates a new App instance.
func New(
	loader ports.RecipeLoader,
	orchestrator *lifecycle.Orchestrator,
	buildSystem ports.BuildSystem,
	v *verifier.Verifier,
	store ports.PackageStore,
	hasher ports.Hasher,
	platform ports.Platform,
	logger ports.Logger,
) *App {
	return &App{
		loader:       loader,
		orchestrator: orchestrator,
		buildSystem:  buildSystem,
		verifier:     v,
		store:        store,
		hasher:       hasher,
		platform:     platform,
		logger:       logger,
		now:          time.Now,
	}
}

// WithClock overrides the clock used to timestamp package records.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// BuildOptions configure a build.
type BuildOptions struct {
	// RecipePath is a recipe file or a directory containing one.
	RecipePath string
	Selections map[string]string
	Settings   domain.Settings
	// Matrix names an option whose every value is built in parallel.
	Matrix      string
	Parallelism int
}

// VerifyOptions configure a verification.
type VerifyOptions struct {
	RecipePath string
	// Reference is the produced package as "name/version".
	Reference string
	Settings  domain.Settings
}

// Build resolves the recipe and runs the lifecycle. Packages produced by
// successful runs are recorded in the package store.
func (a *App) Build(ctx context.Context, opts BuildOptions) ([]*domain.RunResult, error) {
	recipe, err := a.loadRecipe(opts.RecipePath)
	if err != nil {
		return nil, err
	}

	if opts.Matrix != "" {
		return a.buildMatrix(ctx, recipe, opts)
	}

	snapshot, err := a.resolve(recipe, opts.Selections, opts.Settings)
	if err != nil {
		return nil, err
	}

	run, err := a.orchestrator.Run(ctx, snapshot, ports.HandlersFor(a.buildSystem))
	if err != nil {
		if run == nil {
			return nil, err
		}
		return []*domain.RunResult{run}, err
	}

	if err := a.recordPackage(snapshot, run); err != nil {
		return []*domain.RunResult{run}, err
	}
	return []*domain.RunResult{run}, nil
}

// buildMatrix runs one job per value of the matrix option, each in its own
// build and package directory.
func (a *App) buildMatrix(ctx context.Context, recipe *domain.Recipe, opts BuildOptions) ([]*domain.RunResult, error) {
	decl, ok := recipe.Options.Lookup(opts.Matrix)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownOption, "cannot build matrix"), "option", opts.Matrix)
	}
	if _, selected := opts.Selections[opts.Matrix]; selected {
		a.logger.Warn(fmt.Sprintf("selection for %s is replaced by the matrix", opts.Matrix))
	}

	jobs := make([]lifecycle.Job, 0, len(decl.Domain))
	for _, value := range decl.Domain {
		selections := maps.Clone(opts.Selections)
		if selections == nil {
			selections = make(map[string]string, 1)
		}
		selections[opts.Matrix] = value

		variant := *recipe
		suffix := opts.Matrix + "-" + value
		variant.Layout = domain.Layout{
			SourceDir:  recipe.Layout.SourceDir,
			BuildDir:   filepath.Join(recipe.Layout.BuildDir, suffix),
			PackageDir: filepath.Join(recipe.Layout.PackageDir, suffix),
		}

		snapshot, err := a.resolve(&variant, selections, opts.Settings)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, lifecycle.Job{Snapshot: snapshot, Handlers: ports.HandlersFor(a.buildSystem)})
	}

	results, runErr := a.orchestrator.RunAll(ctx, jobs, opts.Parallelism)
	if results == nil {
		return nil, runErr
	}

	// Variants share a reference, so the last successful variant is the one recorded.
	for i, run := range results {
		if !run.Succeeded() {
			continue
		}
		if err := a.recordPackage(jobs[i].Snapshot, run); err != nil {
			return results, err
		}
	}
	return results, runErr
}

// Verify builds the recipe's test package against a produced package.
func (a *App) Verify(ctx context.Context, opts VerifyOptions) (*domain.VerifyResult, error) {
	ref, err := domain.ParseReference(opts.Reference)
	if err != nil {
		return nil, err
	}

	recipe, err := a.loadRecipe(opts.RecipePath)
	if err != nil {
		return nil, err
	}
	if recipe.TestPackageDir == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidRecipe, "recipe declares no test package"), "package", recipe.Metadata.Name)
	}

	consumer := verifier.Consumer{
		SourceDir: recipe.TestPackageDir,
		BuildDir:  filepath.Join(recipe.Layout.BuildDir, "test_package"),
		Settings:  a.settings(recipe, opts.Settings),
	}
	return a.verifier.WithConsumer(consumer).Verify(ctx, ref)
}

// inspection is the document printed by Inspect.
type inspection struct {
	Package     string            `yaml:"package"`
	Fingerprint string            `yaml:"fingerprint"`
	Settings    map[string]string `yaml:"settings"`
	Options     map[string]string `yaml:"options"`
	Variables   map[string]string `yaml:"variables"`
	Phases      []domain.Phase    `yaml:"phases"`
	Manifest    domain.Manifest   `yaml:"manifest"`
}

// Inspect resolves the recipe without running anything and writes the
// snapshot, the planned phases and the manifest to w as YAML.
func (a *App) Inspect(_ context.Context, opts BuildOptions, w io.Writer) error {
	recipe, err := a.loadRecipe(opts.RecipePath)
	if err != nil {
		return err
	}

	snapshot, err := a.resolve(recipe, opts.Selections, opts.Settings)
	if err != nil {
		return err
	}

	plan, err := lifecycle.Plan(snapshot, ports.HandlersFor(a.buildSystem))
	if err != nil {
		return err
	}

	settings := snapshot.Settings()
	doc := inspection{
		Package:     snapshot.Metadata().Reference().String(),
		Fingerprint: snapshot.Fingerprint(),
		Settings: map[string]string{
			"os":         settings.OS,
			"arch":       settings.Arch,
			"build_type": settings.BuildType,
			"compiler":   settings.Compiler,
		},
		Options:   snapshot.Options(),
		Variables: snapshot.Variables(),
		Phases:    plan,
		Manifest:  domain.NewManifest(snapshot),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return zerr.Wrap(err, "failed to encode inspection")
	}
	return enc.Close()
}

func (a *App) loadRecipe(path string) (*domain.Recipe, error) {
	if path == "" {
		path = "."
	}
	recipe, err := a.loader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load recipe")
	}
	return recipe, nil
}

func (a *App) resolve(recipe *domain.Recipe, selections map[string]string, settings domain.Settings) (*domain.Snapshot, error) {
	in := resolver.FromRecipe(recipe, selections, settings)
	in.Settings = a.settings(recipe, settings)
	return resolver.Resolve(in)
}

// settings layers the recipe defaults and the overrides on top of the host.
func (a *App) settings(recipe *domain.Recipe, overrides domain.Settings) domain.Settings {
	return a.platform.Host().Merge(recipe.Settings).Merge(overrides)
}

// recordPackage stores the package produced by run. Runs without a package
// phase produce nothing to record.
func (a *App) recordPackage(snapshot *domain.Snapshot, run *domain.RunResult) error {
	if run.Status(domain.PhasePackage) != domain.PhaseStatusCompleted {
		return nil
	}

	dir := snapshot.Layout().PackageDir
	digest, err := a.hasher.ComputeTreeHash(dir)
	if err != nil {
		return zerr.Wrap(err, "failed to digest package")
	}

	meta := snapshot.Metadata()
	record := domain.PackageRecord{
		Name:         meta.Name,
		Version:      meta.Version,
		Dir:          dir,
		License:      meta.License,
		Digest:       digest,
		Fingerprint:  snapshot.Fingerprint(),
		Requirements: snapshot.RequirementIdentifiers(),
		Timestamp:    a.now().UTC(),
	}
	if err := a.store.Put(record); err != nil {
		return zerr.Wrap(err, "failed to record package")
	}
	a.logger.Info(fmt.Sprintf("recorded package %s (%s)", meta.Reference(), digest))
	return nil
}
