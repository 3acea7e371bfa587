package trellis

import (
	"context"

	"golang.org/x/exp/constraints"
)

// Stage identifies which lifecycle event an Observer is being notified of.
type Stage int

const (
	// StageInitialisation fires after the one-time Initialise phase.
	StageInitialisation Stage = iota

	// StageIteration fires after each Next phase.
	StageIteration

	// StageWrapUp fires after the one-time Finalise phase.
	StageWrapUp
)

func (s Stage) String() string {
	switch s {
	case StageInitialisation:
		return "initialisation"
	case StageIteration:
		return "iteration"
	case StageWrapUp:
		return "wrap-up"
	default:
		return "unknown-stage"
	}
}

// UserState describes what a caller's per-problem state must expose for
// the state wrapper's convergence/termination policy to operate. F is the
// numeric scalar error-estimate type (at minimum float32 and float64);
// Param is the caller's parameter/candidate-vector type.
//
// Fresh construction is not part of this interface: a language with no
// static-constructor-in-an-interface escape hatch supplies a `func() S`
// factory at build time instead (see BuildFor), the same shape a worker
// pool's `newFn func() interface{}` factory takes.
type UserState[F constraints.Float, Param any] interface {
	// IsInitialised reports whether the calculation has set the state up
	// yet. Immediately after construction this is typically false; the
	// runner calls Calculation.Initialise exactly when this is false.
	IsInitialised() bool

	// Update mutates the user state's internal fields for the iteration
	// just completed and returns an error estimate: smaller is better,
	// +Inf is a permitted sentinel for "no progress yet".
	Update() F

	// Param returns a reference to the current best/candidate parameter
	// vector, or (nil, false) if none is available yet.
	Param() (*Param, bool)

	// LastWasBest is invoked by the state wrapper exactly when it has
	// just observed a new best error.
	LastWasBest()
}

// Calculation is the user's algorithm expressed as three pure phases over
// (problem, state). Phases must not themselves drive termination other
// than through the state wrapper's tolerance/max-iter mechanism, which the
// runner applies automatically after Initialise and after every Next.
type Calculation[P any, F constraints.Float, Param any, S UserState[F, Param], R any] interface {
	// Name identifies the calculation for logging and observer dispatch.
	Name() string

	// Initialise is called exactly once, after state wrapper construction,
	// only if the wrapped state reports IsInitialised() == false.
	Initialise(ctx context.Context, problem *Problem[P], state S) (S, error)

	// Next is called repeatedly, one logical iteration per call. ctx is
	// the context passed to Runner.Run; the runner itself only polls
	// killswitches at loop-head, so a long-running Next should select on
	// ctx.Done() internally if it wants to abort promptly.
	Next(ctx context.Context, problem *Problem[P], state S) (S, error)

	// Finalise is called exactly once, after termination, and returns the
	// caller-defined output.
	Finalise(ctx context.Context, problem *Problem[P], state S) (R, error)
}
