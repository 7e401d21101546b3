package engine

import (
	"errors"
	"fmt"
)

// ErrStaleResponse marks a response that lost the generation or session
// race. It is internal bookkeeping: callers drop the payload silently and
// never surface this to the user.
var ErrStaleResponse = errors.New("stale response")

// ErrEditOpen is returned by EditSession.Begin while another draft is open.
var ErrEditOpen = errors.New("another edit is already in progress")

// ConflictError reports that the target of an edit or action vanished or
// changed incompatibly between begin and commit.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "conflict: " + e.Reason
}

// ValidationError reports a local precondition failure detected before any
// network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
