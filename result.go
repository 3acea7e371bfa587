package trellis

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Output is the caller-facing result of a run: the calculation's own
// result R, paired with the final state wrapper for inspection (iteration
// count, best error, elapsed time, ...).
type Output[F constraints.Float, Param any, S UserState[F, Param], R any] struct {
	Result R
	State  *State[F, Param, S]
}

// RunError is the error envelope a Run returns for every termination cause
// other than convergence: it carries the Cause and the Output computed
// during wrap-up despite the non-convergence. A calculation-phase failure
// is not reported as a RunError (see IterationError).
type RunError[F constraints.Float, Param any, S UserState[F, Param], R any] struct {
	Cause  Cause
	Err    error
	Output *Output[F, Param, S, R]
}

func (e *RunError[F, Param, S, R]) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("trellis: run terminated (%s): %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("trellis: run terminated (%s)", e.Cause)
}

func (e *RunError[F, Param, S, R]) Unwrap() error { return e.Err }
