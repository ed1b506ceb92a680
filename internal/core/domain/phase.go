package domain

import "strings"

// Phase is a step of the package lifecycle.
type Phase string

const (
	// PhaseGenerate emits the dependency manifest and the build tool configuration.
	PhaseGenerate Phase = "generate"
	// PhaseBuild compiles the package.
	PhaseBuild Phase = "build"
	// PhasePackage installs the build outputs into the package directory.
	PhasePackage Phase = "package"
	// PhaseTest runs the package's tests.
	PhaseTest Phase = "test"
)

// Phases returns every phase in execution order.
func Phases() []Phase {
	return []Phase{PhaseGenerate, PhaseBuild, PhasePackage, PhaseTest}
}

// ParsePhase converts s to a Phase.
func ParsePhase(s string) (Phase, bool) {
	for _, p := range Phases() {
		if strings.EqualFold(s, string(p)) {
			return p, true
		}
	}
	return "", false
}

// PhaseStatus is the state of a single phase within a run.
type PhaseStatus string

const (
	// PhaseStatusPending indicates the phase has not started.
	PhaseStatusPending PhaseStatus = "pending"
	// PhaseStatusRunning indicates the phase handler is executing.
	PhaseStatusRunning PhaseStatus = "running"
	// PhaseStatusCompleted indicates the phase handler returned successfully.
	PhaseStatusCompleted PhaseStatus = "completed"
	// PhaseStatusFailed indicates the phase handler returned an error.
	PhaseStatusFailed PhaseStatus = "failed"
	// PhaseStatusSkipped indicates the handler declined to do any work.
	PhaseStatusSkipped PhaseStatus = "skipped"
)

// IsTerminal checks if a status is a terminal state (Completed, Failed, Skipped).
func (s PhaseStatus) IsTerminal() bool {
	switch s {
	case PhaseStatusCompleted, PhaseStatusFailed, PhaseStatusSkipped:
		return true
	default:
		return false
	}
}

// NormalizePhaseStatus converts a string to a PhaseStatus, defaulting to pending if unknown.
func NormalizePhaseStatus(s string) PhaseStatus {
	switch PhaseStatus(strings.ToLower(s)) {
	case PhaseStatusRunning:
		return PhaseStatusRunning
	case PhaseStatusCompleted:
		return PhaseStatusCompleted
	case PhaseStatusFailed:
		return PhaseStatusFailed
	case PhaseStatusSkipped:
		return PhaseStatusSkipped
	default:
		return PhaseStatusPending
	}
}

// LogLevel represents the severity of a log message, mirroring the standard slog levels.
type LogLevel int

const (
	// LogLevelDebug represents debug-level verbosity.
	LogLevelDebug LogLevel = -4
	// LogLevelInfo represents informational verbosity.
	LogLevelInfo LogLevel = 0
	// LogLevelWarn represents warning verbosity.
	LogLevelWarn LogLevel = 4
	// LogLevelError represents error verbosity.
	LogLevelError LogLevel = 8
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}
