package domain_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func newTestSnapshot(t *testing.T, buildDir string) *domain.Snapshot {
	t.Helper()
	return domain.NewSnapshot(domain.SnapshotParams{
		Metadata: domain.PackageMetadata{Name: "terminus_log", Version: "1.0.2", Topics: []string{"log"}},
		Settings: domain.Settings{OS: "Linux", Arch: "x86_64", BuildType: "Release"},
		Layout:   domain.Layout{BuildDir: buildDir},
		Options:  map[string]string{"shared": "true", "with_tests": "false"},
		Variables: map[string]string{
			"KILN_PKG_NAME": "terminus_log",
		},
		Dependencies: []domain.DependencyDeclaration{
			mustDep(t, "boost", "1.89.0", domain.KindRuntime, map[string]string{"shared": "true"}),
			mustDep(t, "cmake", "4.1.2", domain.KindBuild, nil),
			mustDep(t, "gtest", "1.17.0", domain.KindTest, nil),
		},
	})
}

func TestSnapshot_AccessorsReturnCopies(t *testing.T) {
	s := newTestSnapshot(t, "build")

	opts := s.Options()
	opts["shared"] = "false"
	vars := s.Variables()
	vars["KILN_PKG_NAME"] = "other"
	deps := s.Dependencies()
	deps[0].Options["shared"] = "false"
	meta := s.Metadata()
	meta.Topics[0] = "changed"

	v, ok := s.Option("shared")
	require.True(t, ok)
	assert.Equal(t, "true", v)
	assert.Equal(t, "terminus_log", s.Variables()["KILN_PKG_NAME"])
	assert.Equal(t, "true", s.Dependencies()[0].Options["shared"])
	assert.Equal(t, []string{"log"}, s.Metadata().Topics)
}

func TestSnapshot_Requirements(t *testing.T) {
	s := newTestSnapshot(t, "build")

	reqs := slices.Collect(s.Requirements())
	require.Len(t, reqs, 1)
	assert.Equal(t, "boost", reqs[0].Name)
	assert.Equal(t, []string{"boost/1.89.0"}, s.RequirementIdentifiers())
}

func TestSnapshot_Enabled(t *testing.T) {
	s := newTestSnapshot(t, "build")

	assert.True(t, s.Enabled(domain.OptionShared, false))
	assert.False(t, s.Enabled(domain.OptionWithTests, true))
	assert.True(t, s.Enabled(domain.OptionWithDocs, true))
	assert.False(t, s.Enabled(domain.OptionWithCoverage, false))
}

func TestSnapshot_Fingerprint(t *testing.T) {
	a := newTestSnapshot(t, "build/a")
	b := newTestSnapshot(t, "build/b")
	assert.Equal(t, a.Fingerprint(), b.Fingerprint(), "layout must not affect the fingerprint")
	assert.Len(t, a.Fingerprint(), 16)

	c := domain.NewSnapshot(domain.SnapshotParams{
		Metadata: domain.PackageMetadata{Name: "terminus_log", Version: "1.0.2"},
		Options:  map[string]string{"shared": "false", "with_tests": "false"},
	})
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestNewManifest(t *testing.T) {
	s := newTestSnapshot(t, "build")

	m := domain.NewManifest(s)
	assert.Equal(t, domain.ManifestAPIVersion, m.APIVersion)
	assert.Equal(t, domain.ManifestKind, m.Kind)
	assert.Equal(t, domain.ManifestPackage{Name: "terminus_log", Version: "1.0.2"}, m.Package)
	assert.Equal(t, []domain.ManifestRecord{
		{Name: "boost", Constraint: "1.89.0", Kind: domain.KindRuntime, Options: map[string]string{"shared": "true"}},
		{Name: "cmake", Constraint: "4.1.2", Kind: domain.KindBuild},
		{Name: "gtest", Constraint: "1.17.0", Kind: domain.KindTest},
	}, m.Dependencies)
	assert.Equal(t, m, domain.NewManifest(s))
}
