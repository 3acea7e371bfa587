package trellis

import "errors"

// Namespace prefixes every sentinel error message in this package, mirroring
// how correlated error groups are named elsewhere in the ambient stack.
const Namespace = "trellis"

var (
	// ErrNilCalculation is returned by Finalise when BuildFor was given a
	// nil calc.
	ErrNilCalculation = errors.New(Namespace + ": calculation must not be nil")

	// ErrNilStateFactory is returned by Finalise when BuildFor was given a
	// nil newState.
	ErrNilStateFactory = errors.New(Namespace + ": state factory must not be nil")

	// ErrCtrlCInstall is wrapped into the error Finalise returns when the
	// process-wide Ctrl-C handler could not be installed.
	ErrCtrlCInstall = errors.New(Namespace + ": failed to install ctrl-c handler")

	// ErrCancellationWaiterSpawn is wrapped into the error Finalise returns
	// when the auxiliary cancellation-token waiter goroutine could not be
	// started.
	ErrCancellationWaiterSpawn = errors.New(Namespace + ": failed to spawn cancellation waiter")

	// ErrMaxIterExceeded is the sentinel compared against via errors.Is for
	// a RunError whose Cause is CauseExceededMaxIterations.
	ErrMaxIterExceeded = errors.New(Namespace + ": exceeded maximum iterations")

	// ErrControlC is the sentinel compared against via errors.Is for a
	// RunError whose Cause is CauseControlC.
	ErrControlC = errors.New(Namespace + ": run cancelled via ctrl-c")

	// ErrCancellationToken is the sentinel compared against via errors.Is
	// for a RunError whose Cause is CauseParent.
	ErrCancellationToken = errors.New(Namespace + ": run cancelled via cancellation token")
)
