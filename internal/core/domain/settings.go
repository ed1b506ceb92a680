package domain

import (
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// Settings describe the target platform and build flavour.
type Settings struct {
	OS        string
	Arch      string
	BuildType string
	Compiler  string
}

// Merge returns s with every non-empty field of other applied on top.
func (s Settings) Merge(other Settings) Settings {
	if other.OS != "" {
		s.OS = other.OS
	}
	if other.Arch != "" {
		s.Arch = other.Arch
	}
	if other.BuildType != "" {
		s.BuildType = other.BuildType
	}
	if other.Compiler != "" {
		s.Compiler = other.Compiler
	}
	return s
}

// Set assigns a single setting by key.
func (s *Settings) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "os":
		s.OS = value
	case "arch":
		s.Arch = value
	case "build_type":
		s.BuildType = value
	case "compiler":
		s.Compiler = value
	default:
		return zerr.With(zerr.Wrap(ErrInvalidRecipe, "unknown setting"), "setting", key)
	}
	return nil
}

// Layout names the directories a lifecycle run works in.
type Layout struct {
	SourceDir  string
	BuildDir   string
	PackageDir string
}

// DefaultBuildDir is the build directory of a layout that names none.
const DefaultBuildDir = "build"

// WithDefaults fills an empty source directory with "." and an empty build
// directory with DefaultBuildDir. An empty package directory stays empty.
func (l Layout) WithDefaults() Layout {
	if l.SourceDir == "" {
		l.SourceDir = "."
	}
	if l.BuildDir == "" {
		l.BuildDir = DefaultBuildDir
	}
	return l
}

// Absolute returns the layout with defaults applied and every directory made
// absolute against the working directory.
func (l Layout) Absolute() (Layout, error) {
	l = l.WithDefaults()
	for _, dir := range []*string{&l.SourceDir, &l.BuildDir, &l.PackageDir} {
		if *dir == "" {
			continue
		}
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return l, zerr.With(zerr.Wrap(err, "failed to resolve directory"), "dir", *dir)
		}
		*dir = abs
	}
	return l, nil
}

// Rooted resolves relative directories against root.
func (l Layout) Rooted(root string) Layout {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	return Layout{
		SourceDir:  abs(l.SourceDir),
		BuildDir:   abs(l.BuildDir),
		PackageDir: abs(l.PackageDir),
	}
}
