package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// PackageMetadata describes the package being built.
type PackageMetadata struct {
	Name        string
	Version     string
	Description string
	URL         string
	License     string
	Author      string
	Topics      []string
}

// Reference returns the name/version reference of the package.
func (m PackageMetadata) Reference() Reference {
	return Reference{Name: m.Name, Version: m.Version}
}

func (m PackageMetadata) clone() PackageMetadata {
	m.Topics = slices.Clone(m.Topics)
	return m
}

// Reference identifies a concrete package version.
type Reference struct {
	Name    string
	Version string
}

// ParseReference parses "name/version".
func ParseReference(s string) (Reference, error) {
	name, version, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || name == "" || version == "" || strings.Contains(version, "/") {
		return Reference{}, zerr.With(zerr.Wrap(ErrInvalidReference, "expected name/version"), "reference", s)
	}
	if _, err := canonicalVersion(version); err != nil {
		return Reference{}, zerr.With(err, "reference", s)
	}
	return Reference{Name: name, Version: version}, nil
}

// String returns the reference as "name/version".
func (r Reference) String() string {
	return r.Name + "/" + r.Version
}
