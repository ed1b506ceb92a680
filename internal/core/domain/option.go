// Package domain contains the core domain models for option resolution and the package lifecycle.
package domain

import (
	"iter"
	"slices"

	"go.trai.ch/zerr"
)

// Recognized option names.
const (
	OptionShared       = "shared"
	OptionWithTests    = "with_tests"
	OptionWithDocs     = "with_docs"
	OptionWithCoverage = "with_coverage"
)

// Boolean option values.
const (
	ValueTrue  = "true"
	ValueFalse = "false"
)

// BoolDomain is the value domain of a boolean option.
func BoolDomain() []string {
	return []string{ValueTrue, ValueFalse}
}

// FormatBool renders b as a boolean option value.
func FormatBool(b bool) string {
	if b {
		return ValueTrue
	}
	return ValueFalse
}

// OptionDeclaration declares a build option with a closed value domain.
type OptionDeclaration struct {
	Name    string
	Domain  []string
	Default string
	// Variable is the toolchain variable the resolved value is emitted as.
	// An empty Variable means the option name is used.
	Variable string
}

// BoolOption declares a boolean option with the given default.
func BoolOption(name string, def bool) OptionDeclaration {
	return OptionDeclaration{
		Name:    name,
		Domain:  BoolDomain(),
		Default: FormatBool(def),
	}
}

// Allows reports whether value is a member of the option's domain.
func (d OptionDeclaration) Allows(value string) bool {
	return slices.Contains(d.Domain, value)
}

// VariableName returns the toolchain variable name for the option.
func (d OptionDeclaration) VariableName() string {
	if d.Variable != "" {
		return d.Variable
	}
	return d.Name
}

// OptionSet is an ordered set of option declarations with unique names.
type OptionSet struct {
	decls []OptionDeclaration
	index map[string]int
}

// NewOptionSet validates the declarations and returns them as an OptionSet.
func NewOptionSet(decls ...OptionDeclaration) (*OptionSet, error) {
	s := &OptionSet{
		decls: make([]OptionDeclaration, 0, len(decls)),
		index: make(map[string]int, len(decls)),
	}
	for _, d := range decls {
		if err := s.add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// StandardOptions returns the recognized option set:
// shared, with_tests and with_docs default to true, with_coverage to false.
func StandardOptions() *OptionSet {
	s, err := NewOptionSet(
		BoolOption(OptionShared, true),
		BoolOption(OptionWithTests, true),
		BoolOption(OptionWithDocs, true),
		BoolOption(OptionWithCoverage, false),
	)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *OptionSet) add(d OptionDeclaration) error {
	if d.Name == "" {
		return zerr.Wrap(ErrInvalidRecipe, "option name must not be empty")
	}
	if _, exists := s.index[d.Name]; exists {
		return zerr.With(zerr.Wrap(ErrDuplicateOption, "cannot declare option"), "option", d.Name)
	}
	if len(d.Domain) == 0 {
		return zerr.With(zerr.Wrap(ErrEmptyDomain, "cannot declare option"), "option", d.Name)
	}
	if !d.Allows(d.Default) {
		err := zerr.With(zerr.Wrap(ErrInvalidDefault, "cannot declare option"), "option", d.Name)
		err = zerr.With(err, "default", d.Default)
		return zerr.With(err, "allowed", slices.Clone(d.Domain))
	}
	d.Domain = slices.Clone(d.Domain)
	s.index[d.Name] = len(s.decls)
	s.decls = append(s.decls, d)
	return nil
}

// Lookup returns the declaration for name.
func (s *OptionSet) Lookup(name string) (OptionDeclaration, bool) {
	if s == nil {
		return OptionDeclaration{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return OptionDeclaration{}, false
	}
	d := s.decls[i]
	d.Domain = slices.Clone(d.Domain)
	return d, true
}

// Len returns the number of declared options.
func (s *OptionSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.decls)
}

// All yields the declarations in declaration order.
func (s *OptionSet) All() iter.Seq[OptionDeclaration] {
	return func(yield func(OptionDeclaration) bool) {
		if s == nil {
			return
		}
		for _, d := range s.decls {
			d.Domain = slices.Clone(d.Domain)
			if !yield(d) {
				return
			}
		}
	}
}

// Defaults returns every option mapped to its declared default.
func (s *OptionSet) Defaults() map[string]string {
	out := make(map[string]string, s.Len())
	for d := range s.All() {
		out[d.Name] = d.Default
	}
	return out
}
