package ops

import (
	"errors"
	"fmt"
)

// RejectionKind is a stable, machine-readable classification of why a
// request was refused or could not proceed.
type RejectionKind string

const (
	// KindInvalidRequest covers malformed input such as an empty change set.
	KindInvalidRequest RejectionKind = "InvalidRequest"

	// KindInvalidOperation is an operation name outside the closed enum.
	KindInvalidOperation RejectionKind = "InvalidOperation"

	// KindConfirmationRequired is a destructive operation dispatched without
	// auto_approve. Recoverable by resubmitting with approval.
	KindConfirmationRequired RejectionKind = "ConfirmationRequired"

	// KindLaunchFailure means the build job could not be started.
	KindLaunchFailure RejectionKind = "LaunchFailure"

	// KindNotFound is a status query against an unknown build, or outputs
	// requested before any successful apply.
	KindNotFound RejectionKind = "NotFound"

	// KindLockConflict is a state-lock acquisition failure reported by the
	// execution backend. Retryable.
	KindLockConflict RejectionKind = "BackendLockConflict"
)

// Rejection is a synchronous refusal carrying a stable kind and a
// human-readable message. It satisfies error so callers can propagate it.
type Rejection struct {
	Kind    RejectionKind `json:"kind"`
	Message string        `json:"message"`
	Cause   error         `json:"-"`
}

func (r *Rejection) Error() string {
	if r.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", r.Kind, r.Message, r.Cause)
	}
	return fmt.Sprintf("%s: %s", r.Kind, r.Message)
}

func (r *Rejection) Unwrap() error { return r.Cause }

// Retryable reports whether resubmitting the same request later may succeed
// without the caller changing anything.
func (r *Rejection) Retryable() bool {
	return r.Kind == KindLockConflict || r.Kind == KindLaunchFailure
}

// AsRejection unwraps err into a Rejection if one is in its chain.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func reject(kind RejectionKind, format string, args ...any) *Rejection {
	return &Rejection{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
