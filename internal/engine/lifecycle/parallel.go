package lifecycle

import (
	"context"
	"errors"
	"runtime"

	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Job is a single run submitted to RunAll.
type Job struct {
	Snapshot *domain.Snapshot
	Handlers ports.PhaseHandlers
}

// RunAll runs independent jobs concurrently, at most parallelism at a time.
// Jobs sharing a build directory are rejected before any job starts. A failing
// job does not cancel the others. Results are returned in job order; the error
// joins the errors of every failed job.
func (o *Orchestrator) RunAll(ctx context.Context, jobs []Job, parallelism int) ([]*domain.RunResult, error) {
	seen := make(map[string]int, len(jobs))
	for i, job := range jobs {
		key := targetKey(job.Snapshot.Layout().BuildDir)
		if prev, dup := seen[key]; dup {
			err := zerr.With(zerr.Wrap(domain.ErrTargetBusy, "jobs share a build directory"), "build_dir", key)
			return nil, zerr.With(err, "jobs", []int{prev, i})
		}
		seen[key] = i
	}

	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	results := make([]*domain.RunResult, len(jobs))
	errs := make([]error, len(jobs))

	var g errgroup.Group
	g.SetLimit(parallelism)
	for i, job := range jobs {
		g.Go(func() error {
			results[i], errs[i] = o.Run(ctx, job.Snapshot, job.Handlers)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}
