package trellis

import (
	"context"
	"time"

	"golang.org/x/exp/constraints"

	"github.com/sensoriumtl/trellis/metrics"
)

// Runner owns the problem, calculation, wrapped state, killswitches, and
// observers for one run, and drives the three-phase
// initialise/iterate/wrap-up loop. Construct one via
// BuildFor(...).Finalise().
type Runner[P any, F constraints.Float, Param any, S UserState[F, Param], R any] struct {
	problem *Problem[P]
	calc    Calculation[P, F, Param, S, R]
	state   *State[F, Param, S]

	killswitches killswitchSet
	observers    observerSet[F, Param, S]

	timingEnabled bool
	startTime     time.Time

	metrics        metrics.Provider
	iterCounter    metrics.Counter
	iterHistogram  metrics.Histogram
	terminationCtr metrics.Counter
}

// Run drives initialise -> next* -> finalise to completion, returning the
// caller's Output on convergence, or the partial Output computed during
// wrap-up together with a *RunError carrying the termination cause for
// any other cause. A failing calculation phase is returned as that
// phase's error wrapped in an IterationError, with a nil Output.
func (r *Runner[P, F, Param, S, R]) Run(ctx context.Context) (*Output[F, Param, S, R], error) {
	if r.timingEnabled {
		r.startTime = time.Now()
	}

	if !r.state.IsInitialised() {
		if err := r.initialisePhase(ctx); err != nil {
			return nil, newIterationError(err, r.state.Iter(), StageInitialisation)
		}
	}

	for {
		if ks, fired := r.killswitches.firstFired(); fired {
			r.state.terminate(ks.Holder().Cause())
		}

		if r.state.IsTerminated() {
			break
		}

		if err := r.iteratePhase(ctx); err != nil {
			return nil, newIterationError(err, r.state.Iter(), StageIteration)
		}
	}

	cause, ok := r.state.Termination().Cause()
	if !ok {
		// Unreachable: the loop above only exits once IsTerminated() is
		// true, and Terminated state always carries a cause.
		panic("trellis: runner loop exited without a termination cause")
	}

	r.terminationCtr.Add(1)

	output, err := r.wrapUpPhase(ctx)
	if err != nil {
		return nil, newIterationError(err, r.state.Iter(), StageWrapUp)
	}

	if cause == CauseConverged {
		return output, nil
	}

	return output, &RunError[F, Param, S, R]{
		Cause:  cause,
		Err:    causeToErr(cause),
		Output: output,
	}
}

func causeToErr(cause Cause) error {
	switch cause {
	case CauseControlC:
		return ErrControlC
	case CauseParent:
		return ErrCancellationToken
	case CauseExceededMaxIterations:
		return ErrMaxIterExceeded
	default:
		return nil
	}
}

func (r *Runner[P, F, Param, S, R]) initialisePhase(ctx context.Context) error {
	user, err := r.calc.Initialise(ctx, r.problem, r.state.User())
	if err != nil {
		return err
	}
	r.state.setUser(user)
	r.state.update()
	r.observers.dispatch(r.calc.Name(), r.state, StageInitialisation)
	return nil
}

func (r *Runner[P, F, Param, S, R]) iteratePhase(ctx context.Context) error {
	start := time.Now()

	user, err := r.calc.Next(ctx, r.problem, r.state.User())
	if err != nil {
		return err
	}
	r.state.setUser(user)

	if r.timingEnabled {
		r.state.recordTime(time.Since(r.startTime))
	}

	r.state.incrementIteration()
	r.state.update()

	r.iterCounter.Add(1)
	r.iterHistogram.Record(time.Since(start).Seconds())

	r.observers.dispatch(r.calc.Name(), r.state, StageIteration)

	return nil
}

func (r *Runner[P, F, Param, S, R]) wrapUpPhase(ctx context.Context) (*Output[F, Param, S, R], error) {
	result, err := r.calc.Finalise(ctx, r.problem, r.state.User())
	if err != nil {
		return nil, err
	}
	r.observers.dispatch(r.calc.Name(), r.state, StageWrapUp)
	return &Output[F, Param, S, R]{Result: result, State: r.state}, nil
}
