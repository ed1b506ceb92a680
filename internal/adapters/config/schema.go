package config

// Recipefile represents the structure of a kiln.yaml or kiln.toml recipe.
type Recipefile struct {
	Package     PackageDTO        `yaml:"package"      toml:"package"`
	Options     []OptionDTO       `yaml:"options"      toml:"options"`
	Requires    []RequirementDTO  `yaml:"requires"     toml:"requires"`
	Variables   map[string]string `yaml:"variables"    toml:"variables"`
	Settings    SettingsDTO       `yaml:"settings"     toml:"settings"`
	Layout      LayoutDTO         `yaml:"layout"       toml:"layout"`
	TestPackage string            `yaml:"test_package" toml:"test_package"`
}

// PackageDTO represents the package metadata section.
type PackageDTO struct {
	Name        string   `yaml:"name"        toml:"name"`
	Version     string   `yaml:"version"     toml:"version"`
	Description string   `yaml:"description" toml:"description"`
	URL         string   `yaml:"url"         toml:"url"`
	License     string   `yaml:"license"     toml:"license"`
	Author      string   `yaml:"author"      toml:"author"`
	Topics      []string `yaml:"topics"      toml:"topics"`
}

// OptionDTO represents an option declaration. Values and the default may be
// written as booleans, numbers or strings.
type OptionDTO struct {
	Name     string `yaml:"name"     toml:"name"`
	Values   []any  `yaml:"values"   toml:"values"`
	Default  any    `yaml:"default"  toml:"default"`
	Variable string `yaml:"variable" toml:"variable"`
}

// RequirementDTO represents a dependency declaration.
type RequirementDTO struct {
	Name    string         `yaml:"name"    toml:"name"`
	Version string         `yaml:"version" toml:"version"`
	Kind    string         `yaml:"kind"    toml:"kind"`
	Options map[string]any `yaml:"options" toml:"options"`
}

// SettingsDTO represents the default target settings.
type SettingsDTO struct {
	OS        string `yaml:"os"         toml:"os"`
	Arch      string `yaml:"arch"       toml:"arch"`
	BuildType string `yaml:"build_type" toml:"build_type"`
	Compiler  string `yaml:"compiler"   toml:"compiler"`
}

// LayoutDTO represents the working directories, relative to the recipe.
type LayoutDTO struct {
	Source  string `yaml:"source"  toml:"source"`
	Build   string `yaml:"build"   toml:"build"`
	Package string `yaml:"package" toml:"package"`
}
