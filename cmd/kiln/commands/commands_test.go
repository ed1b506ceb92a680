package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/cmd/kiln/commands"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
)

type mockApp struct {
	buildFunc   func(ctx context.Context, opts app.BuildOptions) ([]*domain.RunResult, error)
	verifyFunc  func(ctx context.Context, opts app.VerifyOptions) (*domain.VerifyResult, error)
	inspectFunc func(ctx context.Context, opts app.BuildOptions, w io.Writer) error
}

func (m *mockApp) Build(ctx context.Context, opts app.BuildOptions) ([]*domain.RunResult, error) {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) Verify(ctx context.Context, opts app.VerifyOptions) (*domain.VerifyResult, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, opts)
	}
	return &domain.VerifyResult{Status: domain.VerifySuccess}, nil
}

func (m *mockApp) Inspect(ctx context.Context, opts app.BuildOptions, w io.Writer) error {
	if m.inspectFunc != nil {
		return m.inspectFunc(ctx, opts, w)
	}
	return nil
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(a, nil)
	cli.SetArgs(args)
	out := new(bytes.Buffer)
	cli.SetOutput(out, out)
	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) ([]*domain.RunResult, error) {
				captured = opts
				return []*domain.RunResult{{ID: "run-1", Fingerprint: "0123456789abcdef", State: domain.RunStateSucceeded}}, nil
			},
		}

		out, err := execute(t, mock, "build", "-r", "recipes/terminus",
			"-o", "shared=false", "--option", "with_tests=false",
			"-s", "build_type=Debug", "--matrix", "with_docs", "-j", "2")
		require.NoError(t, err)

		assert.Equal(t, "recipes/terminus", captured.RecipePath)
		assert.Equal(t, map[string]string{"shared": "false", "with_tests": "false"}, captured.Selections)
		assert.Equal(t, domain.Settings{BuildType: "Debug"}, captured.Settings)
		assert.Equal(t, "with_docs", captured.Matrix)
		assert.Equal(t, 2, captured.Parallelism)
		assert.Contains(t, out, "run-1")
		assert.Contains(t, out, "0123456789ab")
	})

	t.Run("reports failed phase", func(t *testing.T) {
		buildErr := &domain.PhaseError{Phase: domain.PhaseBuild, Err: errors.New("compiler exploded")}
		mock := &mockApp{
			buildFunc: func(_ context.Context, _ app.BuildOptions) ([]*domain.RunResult, error) {
				return []*domain.RunResult{{ID: "run-2", State: domain.RunStatePhaseFailed, FailedPhase: domain.PhaseBuild}}, buildErr
			},
		}

		out, err := execute(t, mock, "build")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrPhaseFailed))
		assert.Contains(t, out, "build phase failed")
	})

	t.Run("rejects malformed option", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(_ context.Context, _ app.BuildOptions) ([]*domain.RunResult, error) {
				panic("should not be called")
			},
		}

		_, err := execute(t, mock, "build", "-o", "shared")
		require.Error(t, err)
		assert.True(t, domain.IsConfigurationError(err))
	})

	t.Run("rejects unknown setting", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "build", "-s", "libc=musl")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidRecipe))
	})
}

func TestCommands_Verify(t *testing.T) {
	ref := domain.Reference{Name: "terminus_log", Version: "1.0.2"}

	tests := []struct {
		name      string
		args      []string
		result    *domain.VerifyResult
		wantErr   error
		wantInOut string
	}{
		{
			name:      "success",
			args:      []string{"verify", "terminus_log/1.0.2"},
			result:    &domain.VerifyResult{Reference: ref, Status: domain.VerifySuccess},
			wantInOut: "verified terminus_log/1.0.2",
		},
		{
			name:      "failed",
			args:      []string{"verify", "terminus_log/1.0.2"},
			result:    &domain.VerifyResult{Reference: ref, Status: domain.VerifyFailed, Reason: "package built but the example misbehaved", Err: domain.ErrExampleFailed},
			wantErr:   domain.ErrVerificationFailed,
			wantInOut: "example misbehaved",
		},
		{
			name:      "skipped",
			args:      []string{"verify", "terminus_log/1.0.2"},
			result:    &domain.VerifyResult{Reference: ref, Status: domain.VerifySkipped, Reason: "host Linux/x86_64 cannot run binaries for Windows/x86_64"},
			wantErr:   domain.ErrVerificationSkipped,
			wantInOut: "skipped terminus_log/1.0.2",
		},
		{
			name:      "skipped allowed",
			args:      []string{"verify", "terminus_log/1.0.2", "--allow-skip"},
			result:    &domain.VerifyResult{Reference: ref, Status: domain.VerifySkipped, Reason: "host cannot run the example"},
			wantInOut: "skipped terminus_log/1.0.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured app.VerifyOptions
			mock := &mockApp{
				verifyFunc: func(_ context.Context, opts app.VerifyOptions) (*domain.VerifyResult, error) {
					captured = opts
					return tt.result, nil
				},
			}

			out, err := execute(t, mock, tt.args...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "terminus_log/1.0.2", captured.Reference)
			assert.Contains(t, out, tt.wantInOut)
		})
	}

	t.Run("failure keeps the cause", func(t *testing.T) {
		mock := &mockApp{
			verifyFunc: func(_ context.Context, _ app.VerifyOptions) (*domain.VerifyResult, error) {
				return &domain.VerifyResult{Reference: ref, Status: domain.VerifyFailed, Err: domain.ErrExampleFailed}, nil
			},
		}

		_, err := execute(t, mock, "verify", "terminus_log/1.0.2")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrExampleFailed))
	})

	t.Run("requires a reference", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "verify")
		require.Error(t, err)
	})
}

func TestCommands_Inspect(t *testing.T) {
	var captured app.BuildOptions
	mock := &mockApp{
		inspectFunc: func(_ context.Context, opts app.BuildOptions, w io.Writer) error {
			captured = opts
			_, err := io.WriteString(w, "package: terminus_log/1.0.2\n")
			return err
		},
	}

	out, err := execute(t, mock, "inspect", "-o", "with_tests=false")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"with_tests": "false"}, captured.Selections)
	assert.Equal(t, ".", captured.RecipePath)
	assert.Equal(t, "package: terminus_log/1.0.2\n", out)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "kiln version "+build.Version+"\n", out)
}
