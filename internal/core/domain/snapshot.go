package domain

import (
	"iter"
	"maps"
	"slices"
)

// SnapshotParams carries the resolved values a Snapshot is built from.
type SnapshotParams struct {
	Metadata     PackageMetadata
	Settings     Settings
	Layout       Layout
	Options      map[string]string
	Variables    map[string]string
	Dependencies []DependencyDeclaration
}

// Snapshot is the immutable result of configuration resolution. It is created
// once per lifecycle run and only read afterwards. Every accessor returns a copy.
type Snapshot struct {
	metadata     PackageMetadata
	settings     Settings
	layout       Layout
	options      map[string]string
	variables    map[string]string
	dependencies []DependencyDeclaration
	fingerprint  string
}

// NewSnapshot copies p into a new Snapshot.
func NewSnapshot(p SnapshotParams) *Snapshot {
	deps := make([]DependencyDeclaration, len(p.Dependencies))
	for i, d := range p.Dependencies {
		deps[i] = d.clone()
	}
	s := &Snapshot{
		metadata:     p.Metadata.clone(),
		settings:     p.Settings,
		layout:       p.Layout,
		options:      cloneOrEmpty(p.Options),
		variables:    cloneOrEmpty(p.Variables),
		dependencies: deps,
	}
	s.fingerprint = fingerprintSnapshot(s)
	return s
}

func cloneOrEmpty(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m)
}

// Metadata returns the package metadata.
func (s *Snapshot) Metadata() PackageMetadata {
	return s.metadata.clone()
}

// Settings returns the target settings.
func (s *Snapshot) Settings() Settings {
	return s.settings
}

// Layout returns the directories of the run.
func (s *Snapshot) Layout() Layout {
	return s.layout
}

// Options returns the resolved value of every declared option.
func (s *Snapshot) Options() map[string]string {
	return maps.Clone(s.options)
}

// Option returns the resolved value of a single option.
func (s *Snapshot) Option(name string) (string, bool) {
	v, ok := s.options[name]
	return v, ok
}

// Enabled reports whether a boolean option resolved to true.
// Undeclared options are reported as def.
func (s *Snapshot) Enabled(name string, def bool) bool {
	v, ok := s.options[name]
	if !ok {
		return def
	}
	return v == ValueTrue
}

// Variables returns the toolchain variables.
func (s *Snapshot) Variables() map[string]string {
	return maps.Clone(s.variables)
}

// Dependencies returns the de-duplicated dependency declarations in order.
func (s *Snapshot) Dependencies() []DependencyDeclaration {
	out := make([]DependencyDeclaration, len(s.dependencies))
	for i, d := range s.dependencies {
		out[i] = d.clone()
	}
	return out
}

// Requirements yields the runtime dependencies, which are the only ones
// consumers of the package inherit.
func (s *Snapshot) Requirements() iter.Seq[DependencyDeclaration] {
	return func(yield func(DependencyDeclaration) bool) {
		for _, d := range s.dependencies {
			if d.IsRuntime() && !yield(d.clone()) {
				return
			}
		}
	}
}

// RequirementIdentifiers returns the identifiers of the runtime dependencies.
func (s *Snapshot) RequirementIdentifiers() []string {
	var ids []string
	for d := range s.Requirements() {
		ids = append(ids, d.Identifier())
	}
	return ids
}

// Fingerprint identifies the resolved configuration. Snapshots resolved from
// identical inputs have identical fingerprints regardless of layout.
func (s *Snapshot) Fingerprint() string {
	return s.fingerprint
}

// OptionNames returns the option names in sorted order.
func (s *Snapshot) OptionNames() []string {
	return slices.Sorted(maps.Keys(s.options))
}
