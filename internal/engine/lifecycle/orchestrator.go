// Package lifecycle sequences the phases of a package build.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// Orchestrator runs lifecycle phases in order against a configuration snapshot.
//
// Phases of one run never overlap. A failed phase halts the run; completed
// phases are not rolled back, so a failed package phase can leave a partially
// installed package directory behind.
type Orchestrator struct {
	manifests ports.ManifestWriter
	telemetry ports.Telemetry
	logger    ports.Logger

	mu   sync.Mutex
	busy map[string]string
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(manifests ports.ManifestWriter, telemetry ports.Telemetry, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		manifests: manifests,
		telemetry: telemetry,
		logger:    logger,
		busy:      make(map[string]string),
	}
}

// Plan returns the phases a run of snapshot with handlers would execute.
// Generate and build are required. Package runs when a handler is supplied.
// Test runs when a handler is supplied and tests are enabled.
func Plan(snapshot *domain.Snapshot, handlers ports.PhaseHandlers) ([]domain.Phase, error) {
	for _, p := range []domain.Phase{domain.PhaseGenerate, domain.PhaseBuild} {
		if handlers.For(p) == nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrMissingPhaseHandler, "cannot plan run"), "phase", string(p))
		}
	}

	plan := []domain.Phase{domain.PhaseGenerate, domain.PhaseBuild}
	if handlers.Package != nil {
		plan = append(plan, domain.PhasePackage)
	}
	if handlers.Test != nil && snapshot.Enabled(domain.OptionWithTests, true) {
		plan = append(plan, domain.PhaseTest)
	}
	return plan, nil
}

// Run executes the planned phases of snapshot. On phase failure it returns the
// result together with a *domain.PhaseError. Errors that prevent the run from
// starting are returned with a nil result.
//
// The context is checked between phases only. A cancelled run stops after the
// current phase returns.
func (o *Orchestrator) Run(ctx context.Context, snapshot *domain.Snapshot, handlers ports.PhaseHandlers) (*domain.RunResult, error) {
	plan, err := Plan(snapshot, handlers)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	release, err := o.acquire(snapshot.Layout().BuildDir, id)
	if err != nil {
		return nil, err
	}
	defer release()

	run := newRunState(id, snapshot, plan)
	ref := snapshot.Metadata().Reference()
	o.logger.Info(fmt.Sprintf("starting run %s for %s (%s)", id, ref, snapshot.Fingerprint()))

	for i, phase := range plan {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return run.fail(i, errors.Join(domain.ErrRunAborted, ctxErr))
		}

		run.start(i)
		phaseErr := o.runPhase(ctx, snapshot, phase, handlers.For(phase), ref)

		switch {
		case phaseErr == nil:
			run.finish(i, domain.PhaseStatusCompleted)
		case errors.Is(phaseErr, domain.ErrPhaseSkipped):
			o.logger.Warn(fmt.Sprintf("%s phase of %s skipped: %v", phase, ref, phaseErr))
			run.finish(i, domain.PhaseStatusSkipped)
		default:
			result, err := run.fail(i, phaseErr)
			o.logger.Error(err)
			return result, err
		}
	}

	o.logger.Info(fmt.Sprintf("run %s for %s succeeded", id, ref))
	return run.succeed(), nil
}

func (o *Orchestrator) runPhase(
	ctx context.Context,
	snapshot *domain.Snapshot,
	phase domain.Phase,
	handler ports.PhaseFunc,
	ref domain.Reference,
) error {
	ctx, vertex := o.telemetry.Record(ctx, fmt.Sprintf("%s %s", ref, phase))
	vertex.Log(domain.LogLevelInfo, fmt.Sprintf("running %s phase", phase))

	var err error
	if phase == domain.PhaseGenerate {
		err = o.emitManifest(ctx, snapshot, vertex)
	}
	if err == nil {
		err = handler(ctx, snapshot)
	}

	if errors.Is(err, domain.ErrPhaseSkipped) {
		vertex.Log(domain.LogLevelWarn, err.Error())
		vertex.Complete(nil)
		return err
	}
	vertex.Complete(err)
	return err
}

func (o *Orchestrator) emitManifest(ctx context.Context, snapshot *domain.Snapshot, vertex ports.Vertex) error {
	dir := snapshot.Layout().WithDefaults().BuildDir
	path, err := o.manifests.Write(ctx, dir, domain.NewManifest(snapshot))
	if err != nil {
		return zerr.Wrap(err, "failed to emit dependency manifest")
	}
	vertex.Log(domain.LogLevelInfo, "wrote dependency manifest "+path)
	return nil
}

// acquire claims the build directory for run id.
func (o *Orchestrator) acquire(dir, id string) (func(), error) {
	key := targetKey(dir)

	o.mu.Lock()
	defer o.mu.Unlock()

	if owner, taken := o.busy[key]; taken {
		err := zerr.With(zerr.Wrap(domain.ErrTargetBusy, "cannot start run"), "build_dir", key)
		return nil, zerr.With(err, "owner", owner)
	}
	o.busy[key] = id

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.busy, key)
	}, nil
}

func targetKey(dir string) string {
	if dir == "" {
		dir = domain.DefaultBuildDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

// runState tracks the phase records of a single run.
type runState struct {
	result  *domain.RunResult
	started time.Time
}

func newRunState(id string, snapshot *domain.Snapshot, plan []domain.Phase) *runState {
	records := make([]domain.PhaseRecord, len(plan))
	for i, p := range plan {
		records[i] = domain.PhaseRecord{Phase: p, Status: domain.PhaseStatusPending}
	}
	return &runState{
		result: &domain.RunResult{
			ID:          id,
			Fingerprint: snapshot.Fingerprint(),
			State:       domain.RunStatePending,
			Phases:      records,
		},
	}
}

func (r *runState) start(i int) {
	r.result.State = domain.RunStateInProgress
	r.result.Phases[i].Status = domain.PhaseStatusRunning
	r.started = time.Now()
}

func (r *runState) finish(i int, status domain.PhaseStatus) {
	r.result.Phases[i].Status = status
	r.result.Phases[i].Duration = time.Since(r.started)
}

func (r *runState) fail(i int, cause error) (*domain.RunResult, error) {
	phase := r.result.Phases[i].Phase
	err := &domain.PhaseError{Phase: phase, RunID: r.result.ID, Err: cause}

	rec := &r.result.Phases[i]
	if rec.Status == domain.PhaseStatusRunning {
		rec.Duration = time.Since(r.started)
	}
	rec.Status = domain.PhaseStatusFailed
	rec.Err = cause

	r.result.State = domain.RunStatePhaseFailed
	r.result.FailedPhase = phase
	r.result.Err = err
	return r.result, err
}

func (r *runState) succeed() *domain.RunResult {
	r.result.State = domain.RunStateSucceeded
	return r.result
}
