package trellis

import (
	"math"
	"time"

	"golang.org/x/exp/constraints"
)

// epsilonOf returns the machine epsilon for F, selected by a type switch on
// F's zero value. This is the one place this package reaches for a type
// switch over a generic numeric parameter rather than a named constant;
// there is no generic "epsilon of this float kind" operation in the
// standard library, so it is spelled out directly against the two
// concrete kinds supported (float32, float64).
func epsilonOf[F constraints.Float]() F {
	var zero F
	switch any(zero).(type) {
	case float32:
		return F(1.1920929e-07)
	default:
		return F(2.220446049250313e-16)
	}
}

// State is the generic envelope around a caller's UserState. It owns the
// iteration counters, timing, error/best-error tracking, and the
// termination status; S is mutated only through this wrapper's update
// method, which the Runner calls after the Initialise phase and after
// every Next phase.
type State[F constraints.Float, Param any, S UserState[F, Param]] struct {
	user S

	iter         uint64
	lastBestIter uint64
	maxIter      uint64

	hasElapsed bool
	elapsed    time.Duration

	err         F
	prevErr     F
	bestErr     F
	prevBestErr F

	relativeTolerance F

	termination Status
}

// newState wraps a freshly constructed user state with the documented
// defaults: max_iter = maximum representable, relative_tolerance =
// machine epsilon of F, and all four error fields initialised to +Inf.
func newState[F constraints.Float, Param any, S UserState[F, Param]](user S) *State[F, Param, S] {
	inf := F(math.Inf(1))
	return &State[F, Param, S]{
		user:              user,
		maxIter:           math.MaxUint64,
		err:               inf,
		prevErr:           inf,
		bestErr:           inf,
		prevBestErr:       inf,
		relativeTolerance: epsilonOf[F](),
		termination:       NotTerminated(),
	}
}

// User returns the wrapped user state for direct inspection.
func (s *State[F, Param, S]) User() S { return s.user }

// Iter returns the current iteration number (0 at birth).
func (s *State[F, Param, S]) Iter() uint64 { return s.iter }

// LastBestIter returns the iteration at which BestError was last improved.
func (s *State[F, Param, S]) LastBestIter() uint64 { return s.lastBestIter }

// MaxIter returns the configured iteration cap.
func (s *State[F, Param, S]) MaxIter() uint64 { return s.maxIter }

// SetMaxIter configures the iteration cap. Intended for use from a
// Builder.Configure closure.
func (s *State[F, Param, S]) SetMaxIter(n uint64) { s.maxIter = n }

// RelativeTolerance returns the configured convergence tolerance.
func (s *State[F, Param, S]) RelativeTolerance() F { return s.relativeTolerance }

// SetRelativeTolerance configures the convergence tolerance. Intended for
// use from a Builder.Configure closure.
func (s *State[F, Param, S]) SetRelativeTolerance(t F) { s.relativeTolerance = t }

// Elapsed returns the duration recorded since run start and whether
// timing was enabled for this run.
func (s *State[F, Param, S]) Elapsed() (time.Duration, bool) { return s.elapsed, s.hasElapsed }

// Error returns the error estimate from the most recently completed
// update.
func (s *State[F, Param, S]) Error() F { return s.err }

// PrevError returns the error estimate from the update before that.
func (s *State[F, Param, S]) PrevError() F { return s.prevErr }

// BestError returns the best (smallest) error estimate observed so far.
func (s *State[F, Param, S]) BestError() F { return s.bestErr }

// PrevBestError returns the best error estimate as it stood before the
// most recent improvement.
func (s *State[F, Param, S]) PrevBestError() F { return s.prevBestErr }

// IsTerminated reports whether the state has terminated.
func (s *State[F, Param, S]) IsTerminated() bool { return s.termination.IsTerminated() }

// Termination returns the full termination status.
func (s *State[F, Param, S]) Termination() Status { return s.termination }

// IsInitialised reports whether the wrapped user state is initialised
// (invariant I5: this mirrors the user state's own IsInitialised exactly).
func (s *State[F, Param, S]) IsInitialised() bool { return s.user.IsInitialised() }

// Param delegates to the wrapped user state's optional parameter accessor.
func (s *State[F, Param, S]) Param() (*Param, bool) { return s.user.Param() }

// setUser replaces the wrapped user state. Called by the runner between
// phases, since each Calculation method returns a fresh S rather than
// mutating in place.
func (s *State[F, Param, S]) setUser(user S) { s.user = user }

// recordTime stores d as the elapsed wall-clock time for the run so far,
// replacing any earlier value.
func (s *State[F, Param, S]) recordTime(d time.Duration) {
	s.hasElapsed = true
	s.elapsed = d
}

// incrementIteration advances the iteration counter. Called once per Next
// phase, before the resulting update() call.
func (s *State[F, Param, S]) incrementIteration() { s.iter++ }

// terminate transitions the state to Terminated(cause). A no-op if
// already terminated: the first recorded cause always wins.
func (s *State[F, Param, S]) terminate(cause Cause) {
	if s.termination.IsTerminated() {
		return
	}
	s.termination = Terminated(cause)
}

// update runs the convergence/termination policy:
//  1. invoke the user state's Update, receiving a fresh error estimate e;
//  2. shift error bookkeeping (prevError := error; error := e);
//  3. best-tracking, including the "both infinite, same sign" clause,
//     firing LastWasBest on the user state when a new best is observed;
//  4. terminate with Converged if error < relativeTolerance;
//  5. else terminate with ExceededMaxIterations if iter > maxIter;
//  6. otherwise leave the termination status unchanged.
func (s *State[F, Param, S]) update() {
	e := s.user.Update()

	s.prevErr = s.err
	s.err = e

	if isBest(e, s.bestErr) {
		s.prevBestErr = s.bestErr
		s.bestErr = e
		s.lastBestIter = s.iter
		s.user.LastWasBest()
	}

	switch {
	case s.err < s.relativeTolerance:
		s.terminate(CauseConverged)
	case s.iter > s.maxIter:
		s.terminate(CauseExceededMaxIterations)
	}
}

// isBest reports whether e improves on best: strictly smaller, or both
// infinite with matching sign. The infinite-tie case is what lets the
// very first update (both +Inf) count as a best event.
func isBest[F constraints.Float](e, best F) bool {
	if e < best {
		return true
	}
	eInf := math.IsInf(float64(e), 0)
	bestInf := math.IsInf(float64(best), 0)
	if eInf && bestInf {
		eSign := math.Signbit(float64(e))
		bestSign := math.Signbit(float64(best))
		return eSign == bestSign
	}
	return false
}
