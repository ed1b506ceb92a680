package domain

import (
	"maps"
)

// Manifest format identifiers.
const (
	ManifestAPIVersion = "kiln.trai.ch/v1"
	ManifestKind       = "DependencyManifest"
	// ManifestFilename is the name of the manifest file written to the build directory.
	ManifestFilename = "kiln.deps.yaml"
)

// Manifest lists the dependency declarations of a resolved configuration in
// the form consumed by the build tool.
type Manifest struct {
	APIVersion   string           `yaml:"apiVersion"`
	Kind         string           `yaml:"kind"`
	Package      ManifestPackage  `yaml:"package"`
	Dependencies []ManifestRecord `yaml:"dependencies"`
}

// ManifestPackage identifies the package the manifest belongs to.
type ManifestPackage struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ManifestRecord is a single dependency entry.
type ManifestRecord struct {
	Name       string            `yaml:"name"`
	Constraint string            `yaml:"constraint,omitempty"`
	Kind       DependencyKind    `yaml:"kind"`
	Options    map[string]string `yaml:"options,omitempty"`
}

// NewManifest derives the manifest of a snapshot. It contains only values
// taken from the snapshot, so equal snapshots give equal manifests.
func NewManifest(s *Snapshot) Manifest {
	m := Manifest{
		APIVersion: ManifestAPIVersion,
		Kind:       ManifestKind,
		Package: ManifestPackage{
			Name:    s.metadata.Name,
			Version: s.metadata.Version,
		},
		Dependencies: make([]ManifestRecord, 0, len(s.dependencies)),
	}
	for _, d := range s.dependencies {
		rec := ManifestRecord{
			Name:       d.Name,
			Constraint: d.Constraint.String(),
			Kind:       d.Kind,
		}
		if len(d.Options) > 0 {
			rec.Options = maps.Clone(d.Options)
		}
		m.Dependencies = append(m.Dependencies, rec)
	}
	return m
}
