package domain

import (
	"maps"
	"strings"

	"go.trai.ch/zerr"
)

// DependencyKind classifies how a dependency is used.
type DependencyKind string

const (
	// KindRuntime dependencies are consumer-facing requirements of the package.
	KindRuntime DependencyKind = "runtime"
	// KindBuild dependencies are needed only to build the package.
	KindBuild DependencyKind = "build"
	// KindTest dependencies are needed only by test phases.
	KindTest DependencyKind = "test"
	// KindTool dependencies are build tooling such as CMake modules.
	KindTool DependencyKind = "tool"
)

// ParseDependencyKind converts s to a DependencyKind. An empty string means runtime.
func ParseDependencyKind(s string) (DependencyKind, error) {
	switch k := DependencyKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindRuntime, nil
	case KindRuntime, KindBuild, KindTest, KindTool:
		return k, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidDependency, "unknown dependency kind"), "kind", s)
	}
}

// DependencyDeclaration declares a dependency on another package.
type DependencyDeclaration struct {
	Name       string
	Constraint Constraint
	Kind       DependencyKind
	// Options are option overrides applied to this dependency. Keys that match a
	// declared option of the package also act as defaults for that option.
	Options map[string]string
}

// NewDependency parses constraint and returns a declaration.
func NewDependency(name, constraint string, kind DependencyKind, options map[string]string) (DependencyDeclaration, error) {
	if strings.TrimSpace(name) == "" {
		return DependencyDeclaration{}, zerr.Wrap(ErrInvalidDependency, "dependency name must not be empty")
	}
	c, err := ParseConstraint(constraint)
	if err != nil {
		return DependencyDeclaration{}, zerr.With(err, "dependency", name)
	}
	if kind == "" {
		kind = KindRuntime
	}
	return DependencyDeclaration{
		Name:       name,
		Constraint: c,
		Kind:       kind,
		Options:    maps.Clone(options),
	}, nil
}

// Identifier returns the dependency as "name/constraint".
func (d DependencyDeclaration) Identifier() string {
	if d.Constraint.String() == "" {
		return d.Name
	}
	return d.Name + "/" + d.Constraint.String()
}

// IsRuntime reports whether the dependency is a consumer-facing requirement.
func (d DependencyDeclaration) IsRuntime() bool {
	return d.Kind == KindRuntime
}

func (d DependencyDeclaration) clone() DependencyDeclaration {
	d.Options = maps.Clone(d.Options)
	return d
}
