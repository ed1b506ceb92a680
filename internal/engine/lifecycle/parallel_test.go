package lifecycle_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/engine/lifecycle"
	"go.uber.org/mock/gomock"
)

func TestOrchestrator_RunAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := &recorder{}
	o, _ := newOrchestrator(ctrl, rec)

	root := t.TempDir()
	buildErr := errors.New("link failed")
	jobs := []lifecycle.Job{
		{
			Snapshot: newSnapshot(t, filepath.Join(root, "shared"), map[string]string{"shared": "true"}),
			Handlers: ports.PhaseHandlers{Generate: rec.handler("gen-a", nil), Build: rec.handler("build-a", nil)},
		},
		{
			Snapshot: newSnapshot(t, filepath.Join(root, "static"), map[string]string{"shared": "false"}),
			Handlers: ports.PhaseHandlers{Generate: rec.handler("gen-b", nil), Build: rec.handler("build-b", buildErr)},
		},
	}

	results, err := o.RunAll(context.Background(), jobs, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, buildErr))
	require.Len(t, results, 2)
	assert.Equal(t, domain.RunStateSucceeded, results[0].State)
	assert.Equal(t, domain.RunStatePhaseFailed, results[1].State)
	assert.ElementsMatch(t, []string{"manifest", "manifest", "gen-a", "gen-b", "build-a", "build-b"}, rec.snapshot())
	assert.Empty(t, o.BusyTargets())
}

func TestOrchestrator_RunAll_RejectsSharedBuildDir(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := &recorder{}
	o, _ := newOrchestrator(ctrl, rec)

	dir := t.TempDir()
	handlers := ports.PhaseHandlers{Generate: rec.handler("generate", nil), Build: rec.handler("build", nil)}
	jobs := []lifecycle.Job{
		{Snapshot: newSnapshot(t, dir, nil), Handlers: handlers},
		{Snapshot: newSnapshot(t, dir+string(filepath.Separator), nil), Handlers: handlers},
	}

	results, err := o.RunAll(context.Background(), jobs, 0)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, errors.Is(err, domain.ErrTargetBusy))
	assert.Empty(t, rec.snapshot())
}
