// Package resolver turns declared options, user selections and dependency
// declarations into an immutable configuration snapshot.
package resolver

import (
	"maps"
	"slices"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

// Toolchain variables describing the package itself.
const (
	VarPackageName        = "KILN_PKG_NAME"
	VarPackageVersion     = "KILN_PKG_VERSION"
	VarPackageDescription = "KILN_PKG_DESCRIPTION"
	VarPackageURL         = "KILN_PKG_URL"
	VarBuildType          = "CMAKE_BUILD_TYPE"
)

// Input is everything a resolution depends on.
type Input struct {
	Options      *domain.OptionSet
	Selections   map[string]string
	Dependencies []domain.DependencyDeclaration
	Metadata     domain.PackageMetadata
	Settings     domain.Settings
	Layout       domain.Layout
	// Variables are static toolchain variables. Option variables take
	// precedence over them.
	Variables map[string]string
}

// FromRecipe builds the input for resolving r with the given selections.
// Non-empty fields of settings override the recipe defaults.
func FromRecipe(r *domain.Recipe, selections map[string]string, settings domain.Settings) Input {
	return Input{
		Options:      r.Options,
		Selections:   selections,
		Dependencies: r.Dependencies,
		Metadata:     r.Metadata,
		Settings:     r.Settings.Merge(settings),
		Layout:       r.Layout,
		Variables:    r.Variables,
	}
}

// Resolve validates the input and produces a snapshot. It performs no I/O and
// returns equal snapshots for equal inputs.
//
// Each option resolves to the user selection if present, otherwise to the
// first override found scanning the dependency declarations as written,
// otherwise to its default. Duplicate declarations collapse only afterwards.
func Resolve(in Input) (*domain.Snapshot, error) {
	if err := validateSelections(in.Options, in.Selections); err != nil {
		return nil, err
	}

	graph, err := domain.BuildDependencyGraph(in.Dependencies)
	if err != nil {
		return nil, err
	}
	deps := slices.Collect(graph.Walk())

	if err := validateOverrides(in.Options, in.Dependencies); err != nil {
		return nil, err
	}

	options := resolveOptions(in.Options, in.Selections, in.Dependencies)

	return domain.NewSnapshot(domain.SnapshotParams{
		Metadata:     in.Metadata,
		Settings:     in.Settings,
		Layout:       in.Layout,
		Options:      options,
		Variables:    toolchainVariables(in, options),
		Dependencies: deps,
	}), nil
}

func validateSelections(set *domain.OptionSet, selections map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(selections)) {
		decl, ok := set.Lookup(name)
		if !ok {
			return zerr.With(zerr.Wrap(domain.ErrUnknownOption, "invalid option selection"), "option", name)
		}
		if value := selections[name]; !decl.Allows(value) {
			return invalidValue(decl, value)
		}
	}
	return nil
}

func validateOverrides(set *domain.OptionSet, deps []domain.DependencyDeclaration) error {
	for _, dep := range deps {
		for _, name := range slices.Sorted(maps.Keys(dep.Options)) {
			decl, ok := set.Lookup(name)
			if !ok {
				continue
			}
			if value := dep.Options[name]; !decl.Allows(value) {
				return zerr.With(invalidValue(decl, value), "dependency", dep.Name)
			}
		}
	}
	return nil
}

func invalidValue(decl domain.OptionDeclaration, value string) error {
	err := zerr.With(zerr.Wrap(domain.ErrInvalidValue, "invalid option selection"), "option", decl.Name)
	err = zerr.With(err, "value", value)
	return zerr.With(err, "allowed", decl.Domain)
}

func resolveOptions(set *domain.OptionSet, selections map[string]string, deps []domain.DependencyDeclaration) map[string]string {
	out := make(map[string]string, set.Len())
	for decl := range set.All() {
		if v, ok := selections[decl.Name]; ok {
			out[decl.Name] = v
			continue
		}
		out[decl.Name] = decl.Default
		for _, dep := range deps {
			if v, ok := dep.Options[decl.Name]; ok {
				out[decl.Name] = v
				break
			}
		}
	}
	return out
}

func toolchainVariables(in Input, options map[string]string) map[string]string {
	vars := map[string]string{
		VarPackageName:        in.Metadata.Name,
		VarPackageVersion:     in.Metadata.Version,
		VarPackageDescription: in.Metadata.Description,
		VarPackageURL:         in.Metadata.URL,
	}
	maps.Copy(vars, in.Variables)
	for decl := range in.Options.All() {
		vars[decl.VariableName()] = options[decl.Name]
	}
	if in.Settings.BuildType != "" {
		vars[VarBuildType] = in.Settings.BuildType
	}
	return vars
}
