// ABOUTME: Typed error kinds shared by every component of the reducibility toolkit
// ABOUTME: Wraps sentinel errors with operation context via github.com/pkg/errors

// Package cfgerr defines the error taxonomy used across graph, reduce, and
// their drivers: a closed set of sentinel errors plus an OpError wrapper that
// records which operation raised them.
package cfgerr

import "github.com/pkg/errors"

// Sentinel errors. Callers match with errors.Is; OpError.Unwrap exposes these
// through any amount of pkg/errors stack wrapping.
var (
	// ErrMalformedGraph covers a missing neighbour list, non-list neighbours,
	// duplicate entries in a successor list, or a reference to an unknown node.
	ErrMalformedGraph = errors.New("malformed graph")

	// ErrNoEntry is returned for an empty graph where an entry is required.
	ErrNoEntry = errors.New("graph has no entry node")

	// ErrAmbiguousReversal is returned when graph reversal is requested on a
	// graph with more than one sink.
	ErrAmbiguousReversal = errors.New("graph reversal: ambiguous, multiple sinks")

	// ErrUnknownStrategy is returned when a CNS strategy name is not in the
	// enumerated set.
	ErrUnknownStrategy = errors.New("unknown split strategy")

	// ErrInvariantBroken indicates a bug in this module, not a user error: an
	// assertion failure during reduction or recovery.
	ErrInvariantBroken = errors.New("internal invariant broken")
)

// OpError wraps a sentinel error with the operation that raised it. Modeled
// on the Algorithm/Operation/Err wrapping struct common across the graph
// algorithm packages in the reference pack.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap lets errors.Is/As see through to the sentinel.
func (e *OpError) Unwrap() error {
	return e.Err
}

// Wrap builds an *OpError with a stack trace attached to Err, so
// errors.Is(result, ErrMalformedGraph) still succeeds while %+v on the
// returned error prints a trace pointing at the detection site.
func Wrap(op string, sentinel error, detail string) error {
	var err error
	if detail == "" {
		err = errors.WithStack(sentinel)
	} else {
		err = errors.Wrap(sentinel, detail)
	}
	return &OpError{Op: op, Err: err}
}
