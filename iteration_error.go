package trellis

import (
	"errors"
	"fmt"
)

// IterationError exposes correlation metadata for a calculation-phase
// failure: which iteration it happened on and which stage was running.
type IterationError interface {
	error
	Unwrap() error
	Iteration() (uint64, bool)
	Stage() (Stage, bool)
}

type iterationError struct {
	err   error
	iter  uint64
	stage Stage
}

func newIterationError(err error, iter uint64, stage Stage) error {
	if err == nil {
		return nil
	}
	return &iterationError{err: err, iter: iter, stage: stage}
}

func (e *iterationError) Error() string { return e.err.Error() }
func (e *iterationError) Unwrap() error { return e.err }

func (e *iterationError) Iteration() (uint64, bool) { return e.iter, true }
func (e *iterationError) Stage() (Stage, bool)      { return e.stage, true }

func (e *iterationError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "iteration(n=%d,stage=%s): %+v", e.iter, e.stage, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractIteration returns the iteration number from err if present.
func ExtractIteration(err error) (uint64, bool) {
	var ie IterationError
	if errors.As(err, &ie) {
		return ie.Iteration()
	}
	return 0, false
}

// ExtractStage returns the stage from err if present.
func ExtractStage(err error) (Stage, bool) {
	var ie IterationError
	if errors.As(err, &ie) {
		return ie.Stage()
	}
	return 0, false
}
