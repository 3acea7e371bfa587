package trellis

import "golang.org/x/exp/constraints"

// Observer is a sink receiving lifecycle events for logging, persistence,
// or plotting. Implementations must be safely callable from the runner's
// single goroutine; they receive the state wrapper by reference and must
// not mutate it. Observer errors are swallowed by design (best-effort
// telemetry) — a sink that needs to signal fatal failure must do so out
// of band.
type Observer[F constraints.Float, Param any, S UserState[F, Param]] interface {
	Observe(name string, state *State[F, Param, S], stage Stage)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc[F constraints.Float, Param any, S UserState[F, Param]] func(name string, state *State[F, Param, S], stage Stage)

// Observe calls f.
func (f ObserverFunc[F, Param, S]) Observe(name string, state *State[F, Param, S], stage Stage) {
	f(name, state, stage)
}

type freqKind int

const (
	freqNever freqKind = iota
	freqAlways
	freqEvery
	freqOnExit
)

// Frequency gates how often an attached Observer fires. See Always,
// Never, Every, and OnExit.
type Frequency struct {
	kind freqKind
	n    uint64
}

// Always fires the observer for every Iteration, and also for
// Initialisation and WrapUp.
func Always() Frequency { return Frequency{kind: freqAlways} }

// Never fires the observer for no stage.
func Never() Frequency { return Frequency{kind: freqNever} }

// Every fires the observer on Iteration stages whose iteration number is
// a multiple of n, and on Initialisation. n must be > 0.
func Every(n uint64) Frequency {
	if n == 0 {
		panic("trellis: Every requires n > 0")
	}
	return Frequency{kind: freqEvery, n: n}
}

// OnExit fires the observer only on WrapUp.
func OnExit() Frequency { return Frequency{kind: freqOnExit} }

// shouldFire decides whether an observer at this frequency fires for the
// given stage and iteration count.
func (f Frequency) shouldFire(state interface{ Iter() uint64 }, stage Stage) bool {
	switch stage {
	case StageIteration:
		switch f.kind {
		case freqAlways:
			return true
		case freqEvery:
			return state.Iter()%f.n == 0
		default: // freqOnExit, freqNever
			return false
		}
	case StageInitialisation:
		return f.kind == freqAlways || f.kind == freqEvery
	case StageWrapUp:
		return f.kind == freqAlways || f.kind == freqOnExit
	default:
		return false
	}
}

type observerHandle[F constraints.Float, Param any, S UserState[F, Param]] struct {
	observer Observer[F, Param, S]
	freq     Frequency
}

// observerSet is the ordered list of attached observers the runner
// dispatches lifecycle events through.
type observerSet[F constraints.Float, Param any, S UserState[F, Param]] struct {
	handles []observerHandle[F, Param, S]
}

// dispatch notifies, in attachment order, every observer whose frequency
// says it should fire for this stage.
func (o *observerSet[F, Param, S]) dispatch(name string, state *State[F, Param, S], stage Stage) {
	for _, h := range o.handles {
		if h.freq.shouldFire(state, stage) {
			h.observer.Observe(name, state, stage)
		}
	}
}
