package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrUnknownOption is returned when a selection names an option that is not declared.
	ErrUnknownOption = zerr.New("unknown option")

	// ErrInvalidValue is returned when an option value is outside the option's domain.
	ErrInvalidValue = zerr.New("invalid option value")

	// ErrDependencyConflict is returned when two declarations of the same dependency cannot be reconciled.
	ErrDependencyConflict = zerr.New("dependency conflict")

	// ErrInvalidConstraint is returned when a version constraint cannot be parsed.
	ErrInvalidConstraint = zerr.New("invalid version constraint")

	// ErrDuplicateOption is returned when an option set declares the same name twice.
	ErrDuplicateOption = zerr.New("duplicate option")

	// ErrInvalidDefault is returned when an option default is not a member of its domain.
	ErrInvalidDefault = zerr.New("option default not in domain")

	// ErrEmptyDomain is returned when an option declares no legal values.
	ErrEmptyDomain = zerr.New("option domain is empty")

	// ErrInvalidDependency is returned when a dependency declaration is malformed.
	ErrInvalidDependency = zerr.New("invalid dependency declaration")

	// ErrPhaseFailed is matched by every error returned from a failed lifecycle phase.
	ErrPhaseFailed = zerr.New("lifecycle phase failed")

	// ErrPhaseSkipped is returned by a phase handler that chose not to do any work.
	ErrPhaseSkipped = zerr.New("lifecycle phase skipped")

	// ErrMissingPhaseHandler is returned when a required phase has no handler.
	ErrMissingPhaseHandler = zerr.New("missing phase handler")

	// ErrRunAborted is returned when a run is cancelled between phases.
	ErrRunAborted = zerr.New("lifecycle run aborted")

	// ErrTargetBusy is returned when another run already owns the build directory.
	ErrTargetBusy = zerr.New("build directory is in use by another run")

	// ErrExampleFailed is returned when the consumer example is missing or exits unsuccessfully.
	ErrExampleFailed = zerr.New("example failed")

	// ErrVerificationFailed is returned when a verification finishes with a failed status.
	ErrVerificationFailed = zerr.New("package verification failed")

	// ErrVerificationSkipped is returned when a verification could not run the example.
	ErrVerificationSkipped = zerr.New("package verification skipped")

	// ErrPackageNotFound is returned when the package store has no record for a reference.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrInvalidReference is returned when a package reference is not of the form name/version.
	ErrInvalidReference = zerr.New("invalid package reference")

	// ErrInvalidRecipe is returned when a recipe fails validation.
	ErrInvalidRecipe = zerr.New("invalid recipe")
)

// IsConfigurationError reports whether err was caused by invalid build configuration
// rather than by the build itself.
func IsConfigurationError(err error) bool {
	for _, target := range []error{
		ErrUnknownOption,
		ErrInvalidValue,
		ErrDependencyConflict,
		ErrInvalidConstraint,
		ErrDuplicateOption,
		ErrInvalidDefault,
		ErrEmptyDomain,
		ErrInvalidDependency,
		ErrInvalidReference,
		ErrInvalidRecipe,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
