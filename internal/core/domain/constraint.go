package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/mod/semver"
)

type bound struct {
	version   string
	inclusive bool
}

// Constraint is a version range parsed from a constraint expression such as
// ">=1.89 <2", "1.0.10", "^1.2" or the bracketed form "[>=1.0 <2.0]".
// A constraint with no comparators matches every version.
type Constraint struct {
	raw   string
	lower *bound
	upper *bound
}

// ParseConstraint parses a version constraint expression.
func ParseConstraint(expr string) (Constraint, error) {
	raw := strings.TrimSpace(expr)
	c := Constraint{raw: raw}

	body := raw
	if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") {
		body = strings.TrimSpace(body[1 : len(body)-1])
	}
	if body == "" || body == "*" {
		return c, nil
	}

	terms := strings.FieldsFunc(body, func(r rune) bool { return r == ' ' || r == ',' })
	for _, term := range terms {
		if err := c.apply(term); err != nil {
			return Constraint{}, zerr.With(err, "constraint", raw)
		}
	}

	if c.empty() {
		return Constraint{}, zerr.With(zerr.Wrap(ErrInvalidConstraint, "constraint matches no version"), "constraint", raw)
	}
	return c, nil
}

// MustParseConstraint is like ParseConstraint but panics on error.
func MustParseConstraint(expr string) Constraint {
	c, err := ParseConstraint(expr)
	if err != nil {
		panic(err)
	}
	return c
}

// ExactConstraint returns a constraint matching exactly version.
func ExactConstraint(version string) (Constraint, error) {
	return ParseConstraint("=" + strings.TrimPrefix(version, "="))
}

func (c *Constraint) apply(term string) error {
	if term == "*" {
		return nil
	}

	op, ver := splitOperator(term)
	v, err := canonicalVersion(ver)
	if err != nil {
		return err
	}

	switch op {
	case ">=":
		c.raiseLower(bound{version: v, inclusive: true})
	case ">":
		c.raiseLower(bound{version: v})
	case "<=":
		c.lowerUpper(bound{version: v, inclusive: true})
	case "<":
		c.lowerUpper(bound{version: v})
	case "^":
		c.raiseLower(bound{version: v, inclusive: true})
		c.lowerUpper(bound{version: nextCaret(v)})
	case "~":
		c.raiseLower(bound{version: v, inclusive: true})
		c.lowerUpper(bound{version: nextMinor(v)})
	default:
		c.raiseLower(bound{version: v, inclusive: true})
		c.lowerUpper(bound{version: v, inclusive: true})
	}
	return nil
}

func splitOperator(term string) (op, version string) {
	for _, candidate := range []string{">=", "<=", ">", "<", "=", "^", "~"} {
		if strings.HasPrefix(term, candidate) {
			return candidate, strings.TrimSpace(term[len(candidate):])
		}
	}
	return "", term
}

func canonicalVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", zerr.With(zerr.Wrap(ErrInvalidConstraint, "malformed version"), "version", strings.TrimPrefix(v, "v"))
	}
	return semver.Canonical(v), nil
}

func versionParts(v string) (major, minor int) {
	parts := strings.SplitN(strings.TrimPrefix(semver.MajorMinor(v), "v"), ".", 2)
	major, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}

func nextCaret(v string) string {
	major, minor := versionParts(v)
	if major == 0 {
		return "v0." + strconv.Itoa(minor+1) + ".0"
	}
	return "v" + strconv.Itoa(major+1) + ".0.0"
}

func nextMinor(v string) string {
	major, minor := versionParts(v)
	return "v" + strconv.Itoa(major) + "." + strconv.Itoa(minor+1) + ".0"
}

func (c *Constraint) raiseLower(b bound) {
	c.lower = tighterLower(c.lower, &b)
}

func (c *Constraint) lowerUpper(b bound) {
	c.upper = tighterUpper(c.upper, &b)
}

func tighterLower(a, b *bound) *bound {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	switch cmp := semver.Compare(a.version, b.version); {
	case cmp > 0:
		return a
	case cmp < 0:
		return b
	case !a.inclusive:
		return a
	default:
		return b
	}
}

func tighterUpper(a, b *bound) *bound {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	switch cmp := semver.Compare(a.version, b.version); {
	case cmp < 0:
		return a
	case cmp > 0:
		return b
	case !a.inclusive:
		return a
	default:
		return b
	}
}

func rangeEmpty(lower, upper *bound) bool {
	if lower == nil || upper == nil {
		return false
	}
	cmp := semver.Compare(lower.version, upper.version)
	if cmp > 0 {
		return true
	}
	return cmp == 0 && !(lower.inclusive && upper.inclusive)
}

func (c Constraint) empty() bool {
	return rangeEmpty(c.lower, c.upper)
}

// String returns the constraint as it was written.
func (c Constraint) String() string {
	return c.raw
}

// IsAny reports whether the constraint matches every version.
func (c Constraint) IsAny() bool {
	return c.lower == nil && c.upper == nil
}

// Allows reports whether version satisfies the constraint.
// Malformed versions are never allowed.
func (c Constraint) Allows(version string) bool {
	v, err := canonicalVersion(version)
	if err != nil {
		return false
	}
	point := &bound{version: v, inclusive: true}
	return !rangeEmpty(tighterLower(c.lower, point), tighterUpper(c.upper, point))
}

// Compatible reports whether at least one version satisfies both constraints.
// Compatibility is symmetric.
func (c Constraint) Compatible(other Constraint) bool {
	return !rangeEmpty(tighterLower(c.lower, other.lower), tighterUpper(c.upper, other.upper))
}

// Equivalent reports whether both constraints describe the same version range.
func (c Constraint) Equivalent(other Constraint) bool {
	return boundEqual(c.lower, other.lower) && boundEqual(c.upper, other.upper)
}

func boundEqual(a, b *bound) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return semver.Compare(a.version, b.version) == 0 && a.inclusive == b.inclusive
}
