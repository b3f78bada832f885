package ops

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/terraops-io/terraops/internal/config"
	"github.com/terraops-io/terraops/internal/logging"
	"github.com/terraops-io/terraops/internal/runner"
	"github.com/terraops-io/terraops/internal/store"
)

// Environment variable names understood by the build job. Caller-supplied
// Terraform variables are namespaced under TF_VAR_ so they can never
// collide with these control variables.
const (
	EnvOperation        = "TF_OPERATION"
	EnvAutoApprove      = "TF_AUTO_APPROVE"
	EnvSourceBucket     = "TERRAFORM_BUCKET"
	EnvSourceLocation   = "SOURCE_LOCATION"
	EnvStateBucket      = "STATE_BUCKET"
	EnvTerraformVersion = "TERRAFORM_VERSION"
	varPrefix           = "TF_VAR_"
)

// BuildStarter starts one build job and returns immediately.
type BuildStarter interface {
	Start(ctx context.Context, env map[string]string) (*runner.StartedBuild, error)
}

// Dispatcher validates operation requests and launches build jobs. It is
// the single safety gate for destructive operations: apply and destroy are
// refused here, before anything billable starts, unless explicitly
// approved.
type Dispatcher struct {
	backend BuildStarter
	cfg     *config.Config
}

// NewDispatcher returns a Dispatcher launching jobs through backend.
func NewDispatcher(backend BuildStarter, cfg *config.Config) *Dispatcher {
	return &Dispatcher{backend: backend, cfg: cfg}
}

// Dispatch validates req and starts exactly one build job. It does not wait
// for completion; callers poll the status tracker with the returned handle.
// On refusal or launch failure the returned error is a *Rejection.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Handle, error) {
	op, err := ParseOperation(string(req.Operation))
	if err != nil {
		return nil, &Rejection{Kind: KindInvalidOperation, Message: err.Error()}
	}

	if op.Destructive() && !req.AutoApprove {
		return nil, reject(KindConfirmationRequired,
			"the %q operation requires explicit confirmation; resubmit with auto_approve=true to proceed. WARNING: this will modify your infrastructure", op)
	}

	env := d.buildEnv(req, op)

	// Generated before the job starts so the caller has a correlation id
	// even if StartBuild fails partway.
	executionID := fmt.Sprintf("tf-%s-%s", op, uuid.NewString()[:8])

	logging.Debug("dispatching operation", "operation", op, "execution_id", executionID)

	started, err := d.backend.Start(ctx, env)
	if err != nil {
		if store.IsLockConflict(err) {
			return nil, &Rejection{
				Kind:    KindLockConflict,
				Message: "the state is locked by another operation; retry once it completes",
				Cause:   err,
			}
		}
		return nil, &Rejection{
			Kind:    KindLaunchFailure,
			Message: fmt.Sprintf("failed to start terraform %s", op),
			Cause:   err,
		}
	}

	h := &Handle{
		ExecutionID: executionID,
		BuildID:     started.ID,
		Operation:   op,
		Status:      "IN_PROGRESS",
		Message:     fmt.Sprintf("Terraform %s operation started", op),
		ConsoleURL:  started.ConsoleURL,
		LogGroup:    started.LogGroup,
		StartedAt:   started.StartedAt,
	}
	if h.StartedAt.IsZero() {
		h.StartedAt = time.Now().UTC()
	}
	if op.Destructive() {
		h.Warning = fmt.Sprintf("this %s operation will modify your infrastructure; monitor the build logs for progress", op)
	}

	logging.Info("operation started",
		"operation", op, "execution_id", executionID, "build_id", started.ID)
	return h, nil
}

func (d *Dispatcher) buildEnv(req Request, op Operation) map[string]string {
	env := map[string]string{
		EnvOperation:        string(op),
		EnvAutoApprove:      fmt.Sprintf("%t", req.AutoApprove),
		EnvSourceBucket:     d.cfg.SourceBucket,
		EnvStateBucket:      d.cfg.StateBucket,
		EnvTerraformVersion: d.cfg.TerraformVersion,
	}
	if req.SourceLocation != "" {
		env[EnvSourceLocation] = req.SourceLocation
	}
	for k, v := range req.Variables {
		env[varPrefix+k] = v
	}
	return env
}
