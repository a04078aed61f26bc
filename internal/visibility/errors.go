package visibility

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the visibility engine.
var (
	// ErrReconciliation matches a pass in which one or more routes failed.
	ErrReconciliation = errors.New("visibility: reconciliation incomplete")

	// ErrAlreadyStarted indicates Start was called on a running engine.
	ErrAlreadyStarted = errors.New("visibility: engine already started")
)

// RouteFailure is the failure of one hide or restore request.
type RouteFailure struct {
	RouteID string
	Err     error
}

// PartialFailure collects the per-route failures of one pass. The routes
// not listed were processed successfully.
type PartialFailure struct {
	// Op is "hide" or "restore".
	Op       string
	Failures []RouteFailure
}

func (e *PartialFailure) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.RouteID, f.Err)
	}
	return fmt.Sprintf("visibility: %s: %d route(s) failed: %s", e.Op, len(e.Failures), strings.Join(parts, "; "))
}

// Unwrap returns the per-route causes.
func (e *PartialFailure) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Is matches ErrReconciliation.
func (e *PartialFailure) Is(target error) bool {
	return target == ErrReconciliation
}

// RouteIDs returns the ids of the failed routes.
func (e *PartialFailure) RouteIDs() []string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.RouteID
	}
	return ids
}
