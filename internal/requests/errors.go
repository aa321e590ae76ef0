package requests

import (
	"errors"
	"fmt"

	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

var (
	// ErrNotFound means no request exists under the given identity.
	ErrNotFound = errors.New("payment request not found")
	// ErrConflict means the stored status no longer matches the status the
	// caller last read; the caller must reload and retry.
	ErrConflict = errors.New("payment request was modified concurrently")
)

// ValidationError rejects an operation before any mutation: a missing required
// field, an absent comment on REJECT/RETURN, a bad line-item total.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// AuthorizationError rejects an actor whose identity or role does not match
// what the current state requires. No mutation happens on this path.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// InvalidTransitionError is the chain's verdict that an action is not legal
// from the current status.
type InvalidTransitionError = workflows.InvalidTransitionError

// CollaboratorError wraps a document render/lock or delivery failure. It is
// never fatal for the operation that triggered it: the status mutation stands
// and the failure is surfaced as a warning.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("collaborator %s failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
