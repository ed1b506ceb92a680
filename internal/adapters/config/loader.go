// Package config provides the recipe loader for kiln.
package config

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Recipe file names searched in a directory, in order.
var recipeFiles = []string{"kiln.yaml", "kiln.yml", "kiln.toml"}

// Default layout, relative to the recipe directory.
const (
	DefaultSourceDir  = "."
	DefaultBuildDir   = "build"
	DefaultPackageDir = "build/package"
)

var _ ports.RecipeLoader = (*Loader)(nil)

// Loader implements ports.RecipeLoader for YAML and TOML recipe files.
type Loader struct {
	logger ports.Logger
}

// NewLoader creates a new Loader.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads the recipe at path. If path is a directory it is searched for a
// recipe file.
func (l *Loader) Load(path string) (*domain.Recipe, error) {
	file, err := l.discover(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(file) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read recipe file"), "path", file)
	}

	var rf Recipefile
	if filepath.Ext(file) == ".toml" {
		if _, err := toml.Decode(string(data), &rf); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to parse recipe file"), "path", file)
		}
	} else {
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to parse recipe file"), "path", file)
		}
	}

	root, err := filepath.Abs(filepath.Dir(file))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to resolve recipe directory"), "path", file)
	}

	recipe, err := rf.toDomain(root)
	if err != nil {
		return nil, zerr.With(err, "path", file)
	}
	return recipe, nil
}

func (l *Loader) discover(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to stat recipe"), "path", path)
	}
	if !info.IsDir() {
		return path, nil
	}

	var found []string
	for _, name := range recipeFiles {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			found = append(found, candidate)
		} else if !errors.Is(err, iofs.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(err, "failed to stat recipe"), "path", candidate)
		}
	}

	if len(found) == 0 {
		return "", zerr.With(zerr.Wrap(domain.ErrInvalidRecipe, "no recipe file found"), "dir", path)
	}
	if len(found) > 1 {
		l.logger.Warn(fmt.Sprintf("multiple recipe files in %s, using %s", path, filepath.Base(found[0])))
	}
	return found[0], nil
}

func (rf *Recipefile) toDomain(root string) (*domain.Recipe, error) {
	if rf.Package.Name == "" {
		return nil, zerr.Wrap(domain.ErrInvalidRecipe, "package name is required")
	}
	if rf.Package.Version == "" {
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidRecipe, "package version is required"), "package", rf.Package.Name)
	}

	options, err := rf.optionSet()
	if err != nil {
		return nil, err
	}

	deps := make([]domain.DependencyDeclaration, 0, len(rf.Requires))
	for _, req := range rf.Requires {
		kind, err := domain.ParseDependencyKind(req.Kind)
		if err != nil {
			return nil, zerr.With(err, "dependency", req.Name)
		}
		var opts map[string]string
		if len(req.Options) > 0 {
			opts = make(map[string]string, len(req.Options))
			for k, v := range req.Options {
				opts[k] = scalar(v)
			}
		}
		dep, err := domain.NewDependency(req.Name, req.Version, kind, opts)
		if err != nil {
			return nil, err
		}
		deps = append(deps, dep)
	}

	layout := domain.Layout{
		SourceDir:  orDefault(rf.Layout.Source, DefaultSourceDir),
		BuildDir:   orDefault(rf.Layout.Build, DefaultBuildDir),
		PackageDir: orDefault(rf.Layout.Package, DefaultPackageDir),
	}.Rooted(root)

	testPackage := rf.TestPackage
	if testPackage != "" && !filepath.IsAbs(testPackage) {
		testPackage = filepath.Join(root, testPackage)
	}

	return &domain.Recipe{
		Metadata: domain.PackageMetadata{
			Name:        rf.Package.Name,
			Version:     rf.Package.Version,
			Description: rf.Package.Description,
			URL:         rf.Package.URL,
			License:     rf.Package.License,
			Author:      rf.Package.Author,
			Topics:      rf.Package.Topics,
		},
		Options:      options,
		Dependencies: deps,
		Variables:    rf.Variables,
		Settings: domain.Settings{
			OS:        rf.Settings.OS,
			Arch:      rf.Settings.Arch,
			BuildType: rf.Settings.BuildType,
			Compiler:  rf.Settings.Compiler,
		},
		Layout:         layout,
		TestPackageDir: testPackage,
		Root:           root,
	}, nil
}

// optionSet returns the declared options, or the standard options when the
// recipe declares none.
func (rf *Recipefile) optionSet() (*domain.OptionSet, error) {
	if len(rf.Options) == 0 {
		return domain.StandardOptions(), nil
	}

	decls := make([]domain.OptionDeclaration, 0, len(rf.Options))
	for _, dto := range rf.Options {
		decl := domain.OptionDeclaration{
			Name:     dto.Name,
			Variable: dto.Variable,
		}
		if len(dto.Values) == 0 {
			decl.Domain = domain.BoolDomain()
		} else {
			for _, v := range dto.Values {
				decl.Domain = append(decl.Domain, scalar(v))
			}
		}
		if dto.Default == nil {
			decl.Default = decl.Domain[0]
		} else {
			decl.Default = scalar(dto.Default)
		}
		decls = append(decls, decl)
	}
	return domain.NewOptionSet(decls...)
}

// scalar renders a decoded YAML or TOML scalar as an option value.
// Booleans use the canonical lowercase spelling.
func scalar(v any) string {
	switch t := v.(type) {
	case bool:
		return domain.FormatBool(t)
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
