// Package paralleldriver implements the ParallelDriver: for a script
// with multiple OutputConfigs, it drives N independent pipeline runs
// under a bounded worker pool, preserving result ordering rather than
// completion ordering (spec §4.8).
package paralleldriver

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kazuvin/teto/internal/effects"
	"github.com/kazuvin/teto/internal/mediabackend"
	"github.com/kazuvin/teto/internal/pipeline"
	"github.com/kazuvin/teto/internal/project"
	"github.com/kazuvin/teto/pkg/logger"
)

// Result is one output's render outcome: Err is nil on success. A failed
// output never aborts its siblings — each result is independent.
type Result struct {
	Project *project.Project
	Err     error
}

// Driver runs N pipeline.Run invocations, one per project, bounded by
// MaxWorkers concurrent renders. Zero value is not usable; construct
// with New.
type Driver struct {
	Backend    mediabackend.Backend
	Registry   *effects.Registry
	MaxWorkers int
	Log        logger.Logger
}

// New constructs a Driver. maxWorkers <= 0 defaults to the logical CPU
// count, matching spec §4.8's default.
func New(backend mediabackend.Backend, registry *effects.Registry, maxWorkers int, log logger.Logger) *Driver {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	if log == nil {
		log = logger.NewNoop()
	}
	return &Driver{Backend: backend, Registry: registry, MaxWorkers: maxWorkers, Log: log}
}

// OnComplete is invoked once per finished output, not per frame — the
// granularity spec §4.8 calls for ("progress reporting is
// per-completed-output, not per-frame"). index is the project's
// position in the input slice; err is that output's render error, if
// any. May be nil.
type OnComplete func(index int, proj *project.Project, err error)

// RunAll renders every project in projects under a bounded worker pool,
// returning one Result per input in input order regardless of
// completion order. A render failure is recorded in that project's
// Result and never cancels sibling renders; overall success is the
// caller's responsibility to check (success iff every Result.Err is nil).
func (d *Driver) RunAll(ctx context.Context, projects []*project.Project, verbose bool, onComplete OnComplete) []Result {
	results := make([]Result, len(projects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.MaxWorkers)

	var mu sync.Mutex

	for i, proj := range projects {
		i, proj := i, proj
		g.Go(func() error {
			renderCtx := &pipeline.RenderContext{
				Ctx:      gctx,
				Project:  proj,
				Backend:  d.Backend,
				Registry: d.Registry,
				Verbose:  verbose,
				Log:      d.Log,
			}
			err := pipeline.Run(renderCtx)

			mu.Lock()
			results[i] = Result{Project: proj, Err: err}
			mu.Unlock()

			if onComplete != nil {
				onComplete(i, proj, err)
			}
			return nil // a sibling's failure must never cancel the group
		})
	}

	_ = g.Wait()

	return results
}

// Succeeded reports whether every result in results completed without
// error — spec §4.8's "overall success requires K=0".
func Succeeded(results []Result) bool {
	for _, r := range results {
		if r.Err != nil {
			return false
		}
	}
	return true
}
