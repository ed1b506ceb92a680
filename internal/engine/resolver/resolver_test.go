package resolver_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/engine/resolver"
	"go.trai.ch/zerr"
)

func dep(t *testing.T, name, constraint string, kind domain.DependencyKind, opts map[string]string) domain.DependencyDeclaration {
	t.Helper()
	d, err := domain.NewDependency(name, constraint, kind, opts)
	require.NoError(t, err)
	return d
}

func metadata() domain.PackageMetadata {
	return domain.PackageMetadata{
		Name:        "terminus_log",
		Version:     "1.0.2",
		Description: "Standardized, extensible, and customizable logging",
		URL:         "https://github.com/Terminus-Geospatial/terminus_log",
	}
}

func TestResolve_DefaultsSelectionsAndVariables(t *testing.T) {
	snap, err := resolver.Resolve(resolver.Input{
		Options:      domain.StandardOptions(),
		Selections:   map[string]string{"with_tests": "false"},
		Dependencies: []domain.DependencyDeclaration{dep(t, "boost", ">=1.89", domain.KindRuntime, map[string]string{"shared": "true"})},
		Metadata:     metadata(),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"shared":        "true",
		"with_tests":    "false",
		"with_docs":     "true",
		"with_coverage": "false",
	}, snap.Options())

	vars := snap.Variables()
	assert.Equal(t, "terminus_log", vars[resolver.VarPackageName])
	assert.Equal(t, "1.0.2", vars[resolver.VarPackageVersion])
	assert.Equal(t, "Standardized, extensible, and customizable logging", vars[resolver.VarPackageDescription])
	assert.Equal(t, "https://github.com/Terminus-Geospatial/terminus_log", vars[resolver.VarPackageURL])
	assert.Equal(t, "false", vars["with_tests"])
	assert.Equal(t, "false", vars["with_coverage"])

	deps := snap.Dependencies()
	require.Len(t, deps, 1)
	assert.Equal(t, "boost/>=1.89", deps[0].Identifier())
}

func TestResolve_UnknownOption(t *testing.T) {
	_, err := resolver.Resolve(resolver.Input{
		Options:    domain.StandardOptions(),
		Selections: map[string]string{"static_runtime": "true"},
		Metadata:   metadata(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownOption))
	assert.True(t, domain.IsConfigurationError(err))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "static_runtime", zErr.Metadata()["option"])
}

func TestResolve_InvalidValue(t *testing.T) {
	_, err := resolver.Resolve(resolver.Input{
		Options:    domain.StandardOptions(),
		Selections: map[string]string{"shared": "maybe"},
		Metadata:   metadata(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidValue))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	meta := zErr.Metadata()
	assert.Equal(t, "shared", meta["option"])
	assert.Equal(t, "maybe", meta["value"])
	assert.Equal(t, []string{"true", "false"}, meta["allowed"])
}

func TestResolve_Precedence(t *testing.T) {
	deps := []domain.DependencyDeclaration{
		dep(t, "zlib", "1.3.1", domain.KindRuntime, map[string]string{"shared": "false"}),
		dep(t, "boost", "1.89.0", domain.KindRuntime, map[string]string{"shared": "true", "with_docs": "false"}),
	}

	tests := []struct {
		name       string
		selections map[string]string
		shared     string
		withDocs   string
	}{
		{"first dependency override beats default", nil, "false", "false"},
		{"user selection beats overrides", map[string]string{"shared": "true"}, "true", "false"},
		{"user selection for second option", map[string]string{"with_docs": "true"}, "false", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := resolver.Resolve(resolver.Input{
				Options:      domain.StandardOptions(),
				Selections:   tt.selections,
				Dependencies: deps,
				Metadata:     metadata(),
			})
			require.NoError(t, err)

			shared, _ := snap.Option("shared")
			withDocs, _ := snap.Option("with_docs")
			assert.Equal(t, tt.shared, shared)
			assert.Equal(t, tt.withDocs, withDocs)
		})
	}
}

func TestResolve_OverridesFollowDeclarationOrder(t *testing.T) {
	snap, err := resolver.Resolve(resolver.Input{
		Options: domain.StandardOptions(),
		Dependencies: []domain.DependencyDeclaration{
			dep(t, "boost", ">=1.89", domain.KindRuntime, map[string]string{"shared": "false"}),
			dep(t, "zlib", "1.3.1", domain.KindRuntime, map[string]string{"shared": "true"}),
			dep(t, "boost", ">=1.89", domain.KindRuntime, nil),
		},
		Metadata: metadata(),
	})
	require.NoError(t, err)

	shared, _ := snap.Option("shared")
	assert.Equal(t, "false", shared)

	deps := snap.Dependencies()
	require.Len(t, deps, 2)
	assert.Empty(t, deps[0].Options)
}

func TestResolve_ConflictIgnoresIntermediateDeclarations(t *testing.T) {
	for _, order := range [][]string{{">=1.89", "*", "<1.80"}, {">=1.89", ">=1.0", "<1.80"}} {
		decls := make([]domain.DependencyDeclaration, 0, len(order))
		for _, c := range order {
			decls = append(decls, dep(t, "boost", c, domain.KindRuntime, nil))
		}
		_, err := resolver.Resolve(resolver.Input{
			Options:      domain.StandardOptions(),
			Dependencies: decls,
			Metadata:     metadata(),
		})
		assert.True(t, errors.Is(err, domain.ErrDependencyConflict), order)
	}
}

func TestResolve_InvalidOverride(t *testing.T) {
	_, err := resolver.Resolve(resolver.Input{
		Options:      domain.StandardOptions(),
		Dependencies: []domain.DependencyDeclaration{dep(t, "boost", "1.89.0", domain.KindRuntime, map[string]string{"shared": "yes"})},
		Metadata:     metadata(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidValue))

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok, "expected *zerr.Error, got %T", err)
	assert.Equal(t, "boost", zErr.Metadata()["dependency"])
}

func TestResolve_PrivateOverridesReachOnlyTheManifest(t *testing.T) {
	snap, err := resolver.Resolve(resolver.Input{
		Options:      domain.StandardOptions(),
		Dependencies: []domain.DependencyDeclaration{dep(t, "boost", "1.89.0", domain.KindRuntime, map[string]string{"header_only": "True"})},
		Metadata:     metadata(),
	})
	require.NoError(t, err)

	_, ok := snap.Option("header_only")
	assert.False(t, ok)
	assert.NotContains(t, snap.Variables(), "header_only")

	m := domain.NewManifest(snap)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, map[string]string{"header_only": "True"}, m.Dependencies[0].Options)
}

func TestResolve_DependencyConflict(t *testing.T) {
	_, err := resolver.Resolve(resolver.Input{
		Options: domain.StandardOptions(),
		Dependencies: []domain.DependencyDeclaration{
			dep(t, "boost", ">=1.89", domain.KindRuntime, nil),
			dep(t, "boost", "<1.80", domain.KindRuntime, nil),
		},
		Metadata: metadata(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDependencyConflict))
}

func TestResolve_Deterministic(t *testing.T) {
	in := resolver.Input{
		Options:    domain.StandardOptions(),
		Selections: map[string]string{"with_coverage": "true"},
		Dependencies: []domain.DependencyDeclaration{
			dep(t, "boost", "1.89.0", domain.KindRuntime, map[string]string{"shared": "true"}),
			dep(t, "cmake", "4.1.2", domain.KindBuild, nil),
		},
		Metadata:  metadata(),
		Settings:  domain.Settings{BuildType: "Release"},
		Variables: map[string]string{"TERMINUS_LOG_SOURCE_LOCATION_METHOD": "2"},
	}

	a, err := resolver.Resolve(in)
	require.NoError(t, err)
	b, err := resolver.Resolve(in)
	require.NoError(t, err)

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Equal(t, a.Options(), b.Options())
	assert.Equal(t, a.Variables(), b.Variables())
	assert.Equal(t, domain.NewManifest(a), domain.NewManifest(b))
	assert.Equal(t, "Release", a.Variables()[resolver.VarBuildType])
	assert.Equal(t, "2", a.Variables()["TERMINUS_LOG_SOURCE_LOCATION_METHOD"])
}

func TestResolve_EveryOptionResolvesWithinDomain(t *testing.T) {
	set, err := domain.NewOptionSet(
		domain.BoolOption("shared", true),
		domain.OptionDeclaration{Name: "log_backend", Domain: []string{"stdout", "syslog", "file"}, Default: "stdout"},
	)
	require.NoError(t, err)

	snap, err := resolver.Resolve(resolver.Input{
		Options:    set,
		Selections: map[string]string{"log_backend": "syslog"},
		Metadata:   metadata(),
	})
	require.NoError(t, err)

	opts := snap.Options()
	assert.Len(t, opts, set.Len())
	for decl := range set.All() {
		assert.True(t, decl.Allows(opts[decl.Name]), decl.Name)
	}
	assert.Equal(t, "syslog", opts["log_backend"])
}

func TestResolve_OptionVariableAlias(t *testing.T) {
	withTests := domain.BoolOption("with_tests", true)
	withTests.Variable = "TERMINUS_LOG_ENABLE_TESTS"
	set, err := domain.NewOptionSet(withTests)
	require.NoError(t, err)

	snap, err := resolver.Resolve(resolver.Input{
		Options:   set,
		Metadata:  metadata(),
		Variables: map[string]string{"TERMINUS_LOG_ENABLE_TESTS": "stale"},
	})
	require.NoError(t, err)

	vars := snap.Variables()
	assert.Equal(t, "true", vars["TERMINUS_LOG_ENABLE_TESTS"])
	assert.NotContains(t, vars, "with_tests")
}

func TestFromRecipe(t *testing.T) {
	r := &domain.Recipe{
		Metadata: metadata(),
		Options:  domain.StandardOptions(),
		Settings: domain.Settings{OS: "Linux", BuildType: "Release"},
		Layout:   domain.Layout{BuildDir: "build"},
	}

	in := resolver.FromRecipe(r, map[string]string{"shared": "false"}, domain.Settings{BuildType: "Debug"})
	assert.Equal(t, domain.Settings{OS: "Linux", BuildType: "Debug"}, in.Settings)
	assert.Equal(t, "build", in.Layout.BuildDir)
	assert.Equal(t, map[string]string{"shared": "false"}, in.Selections)
}
