// Package status reconstructs deployment and job state on demand. It never
// caches: every query re-reads the job registry or the persisted artifacts,
// so two calls with no intervening apply/destroy return identical results.
package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraops-io/terraops/internal/runner"
	"github.com/terraops-io/terraops/internal/state"
	"github.com/terraops-io/terraops/internal/store"
)

// CheckType selects which view of the deployment a query returns.
type CheckType string

const (
	CheckBuild          CheckType = "build_status"
	CheckInfrastructure CheckType = "infrastructure_state"
	CheckOutputs        CheckType = "outputs"
	CheckAll            CheckType = "all"
)

// ParseCheckType validates s against the closed set of check types.
func ParseCheckType(s string) (CheckType, error) {
	switch CheckType(s) {
	case CheckBuild, CheckInfrastructure, CheckOutputs, CheckAll:
		return CheckType(s), nil
	case "":
		return CheckAll, nil
	}
	return "", fmt.Errorf("invalid check_type %q, valid values are: build_status, infrastructure_state, outputs, all", s)
}

// ErrOutputsNotFound is returned when outputs are requested before any
// successful apply persisted them. Distinct from NOT_DEPLOYED: an apply
// that ran but left no outputs artifact is an anomaly worth surfacing.
var ErrOutputsNotFound = errors.New("no outputs artifact found; run terraform apply first")

// buildRegistry is the slice of the runner client the tracker queries.
type buildRegistry interface {
	BuildStatus(ctx context.Context, buildID string) (*runner.BuildStatus, error)
	RecentBuilds(ctx context.Context, limit int) ([]runner.BuildStatus, error)
}

// artifactReader reads persisted artifacts from the state bucket.
type artifactReader interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Tracker answers status queries from the job registry and the persisted
// state/outputs artifacts.
type Tracker struct {
	builds    buildRegistry
	artifacts artifactReader
	lock      *store.LockProbe
}

// NewTracker returns a Tracker. lock may be nil when no lock table is
// configured.
func NewTracker(builds buildRegistry, artifacts artifactReader, lock *store.LockProbe) *Tracker {
	return &Tracker{builds: builds, artifacts: artifacts, lock: lock}
}

// Report is the aggregate answer to one status query. Only the sections
// selected by CheckType are populated.
type Report struct {
	CheckType      CheckType            `json:"check_type"`
	Timestamp      time.Time            `json:"timestamp"`
	Status         string               `json:"status"`
	Build          *runner.BuildStatus  `json:"build,omitempty"`
	RecentBuilds   []runner.BuildStatus `json:"recent_builds,omitempty"`
	Infrastructure *state.Snapshot      `json:"infrastructure,omitempty"`
	Outputs        state.OutputSet      `json:"outputs,omitempty"`
	Lock           *store.LockInfo      `json:"lock,omitempty"`
}

// Status answers one query. buildID may be empty; for build_status queries
// without an id the most recent builds are listed instead.
func (t *Tracker) Status(ctx context.Context, buildID string, check CheckType) (*Report, error) {
	report := &Report{CheckType: check, Timestamp: time.Now().UTC()}

	if check == CheckBuild || check == CheckAll {
		if buildID != "" {
			build, err := t.builds.BuildStatus(ctx, buildID)
			if err != nil {
				return nil, err
			}
			report.Build = build
		} else {
			recent, err := t.builds.RecentBuilds(ctx, 5)
			if err != nil {
				return nil, err
			}
			report.RecentBuilds = recent
		}
	}

	if check == CheckInfrastructure || check == CheckAll {
		snap, err := t.InfrastructureState(ctx)
		if err != nil {
			return nil, err
		}
		report.Infrastructure = snap
	}

	if check == CheckOutputs || check == CheckAll {
		outputs, err := t.Outputs(ctx)
		if err != nil {
			// For the combined view, missing outputs is expected before the
			// first apply and must not fail the whole report.
			if check == CheckOutputs || !errors.Is(err, ErrOutputsNotFound) {
				return nil, err
			}
		}
		report.Outputs = outputs
	}

	if t.lock != nil && (check == CheckInfrastructure || check == CheckAll) {
		if info, err := t.lock.Check(ctx); err == nil {
			report.Lock = info
		}
	}

	report.Status = t.overall(report)
	return report, nil
}

// InfrastructureState reads the persisted state artifact. An absent
// artifact is the normal first-run condition and yields NOT_DEPLOYED.
func (t *Tracker) InfrastructureState(ctx context.Context) (*state.Snapshot, error) {
	data, err := t.artifacts.Get(ctx, store.StateKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return state.NotDeployed(), nil
		}
		return nil, err
	}
	return state.ParseSnapshot(data)
}

// Outputs reads the persisted outputs artifact. Absence is an error,
// distinct from NOT_DEPLOYED.
func (t *Tracker) Outputs(ctx context.Context) (state.OutputSet, error) {
	data, err := t.artifacts.Get(ctx, store.OutputsKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOutputsNotFound
		}
		return nil, err
	}
	return state.ParseOutputs(data)
}

func (t *Tracker) overall(report *Report) string {
	if report.Infrastructure != nil {
		return report.Infrastructure.Status
	}
	if report.Build != nil {
		return report.Build.Status
	}
	return "NO_DATA"
}
