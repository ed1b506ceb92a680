package domain

// Recipe is the declarative description of a package build.
type Recipe struct {
	Metadata     PackageMetadata
	Options      *OptionSet
	Dependencies []DependencyDeclaration
	// Variables are static toolchain variables emitted for every configuration.
	Variables map[string]string
	Settings  Settings
	Layout    Layout
	// TestPackageDir holds the consumer project used to verify the package.
	TestPackageDir string
	// Root is the directory the recipe was loaded from.
	Root string
}
