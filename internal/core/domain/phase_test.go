package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
)

func TestPhaseStatus(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.PhaseStatus
		isTerminal bool
	}{
		{"Pending", domain.PhaseStatusPending, false},
		{"Running", domain.PhaseStatusRunning, false},
		{"Completed", domain.PhaseStatusCompleted, true},
		{"Failed", domain.PhaseStatusFailed, true},
		{"Skipped", domain.PhaseStatusSkipped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

func TestNormalizePhaseStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected domain.PhaseStatus
	}{
		{"pending", domain.PhaseStatusPending},
		{"RUNNING", domain.PhaseStatusRunning},
		{"completed", domain.PhaseStatusCompleted},
		{"Failed", domain.PhaseStatusFailed},
		{"skipped", domain.PhaseStatusSkipped},
		{"unknown", domain.PhaseStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.NormalizePhaseStatus(tt.input))
		})
	}
}

func TestRunState_IsTerminal(t *testing.T) {
	assert.False(t, domain.RunStatePending.IsTerminal())
	assert.False(t, domain.RunStateInProgress.IsTerminal())
	assert.True(t, domain.RunStatePhaseFailed.IsTerminal())
	assert.True(t, domain.RunStateSucceeded.IsTerminal())
}

func TestParsePhase(t *testing.T) {
	p, ok := domain.ParsePhase("Build")
	require.True(t, ok)
	assert.Equal(t, domain.PhaseBuild, p)

	_, ok = domain.ParsePhase("deploy")
	assert.False(t, ok)
}

func TestPhaseError(t *testing.T) {
	cause := errors.New("compiler exploded")
	err := error(&domain.PhaseError{Phase: domain.PhaseBuild, RunID: "run-1", Err: cause})

	assert.True(t, errors.Is(err, domain.ErrPhaseFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "phase build failed: compiler exploded", err.Error())

	var phaseErr *domain.PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, domain.PhaseBuild, phaseErr.Phase)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", domain.LogLevelDebug.String())
	assert.Equal(t, "INFO", domain.LogLevelInfo.String())
	assert.Equal(t, "WARN", domain.LogLevelWarn.String())
	assert.Equal(t, "ERROR", domain.LogLevelError.String())
}

func TestParseReference(t *testing.T) {
	ref, err := domain.ParseReference("terminus_log/1.0.2")
	require.NoError(t, err)
	assert.Equal(t, domain.Reference{Name: "terminus_log", Version: "1.0.2"}, ref)
	assert.Equal(t, "terminus_log/1.0.2", ref.String())

	for _, bad := range []string{"terminus_log", "/1.0", "a/b/c", "terminus_log/latest"} {
		_, err := domain.ParseReference(bad)
		assert.True(t, errors.Is(err, domain.ErrInvalidReference) || errors.Is(err, domain.ErrInvalidConstraint), bad)
		assert.True(t, domain.IsConfigurationError(err), bad)
	}
}
