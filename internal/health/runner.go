package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/terraops-io/terraops/internal/logging"
	"github.com/terraops-io/terraops/internal/state"
)

// poolSize bounds how many probes run concurrently within one call.
const poolSize = 5

// probeDeadline is the ceiling for a single probe; a probe that exceeds it
// reports ERROR, not FAILED, and never blocks the rest of the suite.
const probeDeadline = 30 * time.Second

// OutputSource resolves targets from the persisted deployment outputs when
// the caller supplies none.
type OutputSource interface {
	Outputs(ctx context.Context) (state.OutputSet, error)
}

// Runner executes probe suites.
type Runner struct {
	outputs   OutputSource
	inspector Inspector
}

// NewRunner returns a Runner. outputs and inspector may each be nil;
// missing outputs leave unresolved targets and their probes SKIPPED,
// missing inspector disables the AWS describe probes.
func NewRunner(outputs OutputSource, inspector Inspector) *Runner {
	return &Runner{outputs: outputs, inspector: inspector}
}

// RunSuite resolves targets, runs every probe of the named suite on a
// bounded worker pool, and returns only once all probes completed or timed
// out. Probe failures and panics are isolated to their own result entry.
func (r *Runner) RunSuite(ctx context.Context, suite Suite, overrides Targets) (*Report, error) {
	suite, err := ParseSuite(string(suite))
	if err != nil {
		return nil, err
	}

	var outputs state.OutputSet
	if r.outputs != nil {
		// Best effort: missing outputs just leaves targets unresolved.
		if o, err := r.outputs.Outputs(ctx); err == nil {
			outputs = o
		}
	}
	targets := ResolveTargets(overrides, outputs)

	probes := r.probes(suiteProbes[suite])
	results := make([]Result, len(probes))

	sem := make(chan struct{}, poolSize)
	var wg sync.WaitGroup
	for i, probe := range probes {
		wg.Add(1)
		go func(i int, probe Probe) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			pctx, cancel := context.WithTimeout(ctx, probeDeadline)
			defer cancel()
			results[i] = runProbe(pctx, probe, targets)
		}(i, probe)
	}
	wg.Wait()

	report := newReport(suite, results)
	logging.Info("test suite finished",
		"suite", suite, "status", report.Status,
		"passed", report.Summary.Passed, "failed", report.Summary.Failed)
	return report, nil
}

// runProbe isolates one probe: a panic or deadline becomes an ERROR entry.
func runProbe(ctx context.Context, probe Probe, targets Targets) Result {
	done := make(chan Result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- Result{
					Name:   probe.Name,
					Status: StatusError,
					Error:  fmt.Sprintf("probe panicked: %v", rec),
				}
			}
		}()
		done <- probe.Run(ctx, targets)
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		return Result{
			Name:   probe.Name,
			Status: StatusError,
			Error:  fmt.Sprintf("probe timed out: %v", ctx.Err()),
		}
	}
}
