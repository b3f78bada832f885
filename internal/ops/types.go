package ops

import (
	"fmt"
	"time"
)

// Operation is a closed enum of Terraform operations a build job can run.
type Operation string

const (
	OpInit     Operation = "init"
	OpPlan     Operation = "plan"
	OpApply    Operation = "apply"
	OpDestroy  Operation = "destroy"
	OpValidate Operation = "validate"
	OpOutput   Operation = "output"
	OpState    Operation = "state"
)

// Operations lists every valid operation, in the order shown to callers.
var Operations = []Operation{OpInit, OpPlan, OpApply, OpDestroy, OpValidate, OpOutput, OpState}

// ParseOperation validates s against the closed enum.
func ParseOperation(s string) (Operation, error) {
	for _, op := range Operations {
		if s == string(op) {
			return op, nil
		}
	}
	return "", fmt.Errorf("invalid operation %q, valid operations are: %s", s, OperationNames())
}

// OperationNames returns the valid operation names as a comma-separated list.
func OperationNames() string {
	out := ""
	for i, op := range Operations {
		if i > 0 {
			out += ", "
		}
		out += string(op)
	}
	return out
}

// Destructive reports whether the operation modifies live infrastructure
// and therefore requires explicit confirmation before dispatch.
func (op Operation) Destructive() bool {
	return op == OpApply || op == OpDestroy
}

// Request describes one operation to run in the execution environment.
type Request struct {
	Operation      Operation         `json:"operation"`
	SourceLocation string            `json:"source_location,omitempty"`
	AutoApprove    bool              `json:"auto_approve"`
	Variables      map[string]string `json:"variables,omitempty"`
}

// Handle correlates an asynchronous operation. ExecutionID is generated
// client-side before the job starts; BuildID is assigned by CodeBuild.
// Handles are immutable and are the sole key for status queries.
type Handle struct {
	ExecutionID string    `json:"execution_id"`
	BuildID     string    `json:"build_id"`
	Operation   Operation `json:"operation"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	ConsoleURL  string    `json:"console_url,omitempty"`
	LogGroup    string    `json:"log_group,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	Warning     string    `json:"warning,omitempty"`
}
