package trellis

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/exp/constraints"

	"github.com/sensoriumtl/trellis/metrics"
)

// Builder is the staged constructor that assembles a Runner from a
// Calculation, a Problem, and a user-state factory. Configuration
// methods are chainable and order-independent; Finalise installs
// cancellation handlers and produces the fully-wired Runner.
//
// Cancellation-token presence or absence could, in principle, be modeled
// as a type-level distinction on the builder. Go methods cannot bind a
// type parameter the receiver doesn't already carry, so
// WithCancellationToken cannot itself promote Builder to a new
// instantiation the way a method could in a language with that
// flexibility; presence/absence is instead a runtime nil-check on a
// single CancellationSource field. See DESIGN.md, Open Question 1.
type Builder[P any, F constraints.Float, Param any, S UserState[F, Param], R any] struct {
	calc     Calculation[P, F, Param, S, R]
	problem  P
	newState func() S

	ctrlC     bool
	timing    bool
	token     CancellationSource
	configure []func(*State[F, Param, S])
	handles   []observerHandle[F, Param, S]
	provider  metrics.Provider

	err error
}

// BuildFor starts a Builder for calc running against problem, with newState
// supplying a fresh zero-value user state (analogous to a worker pool's
// `newFn func() interface{}` factory). Ctrl-C handling and timing both
// default to enabled.
func BuildFor[P any, F constraints.Float, Param any, S UserState[F, Param], R any](
	calc Calculation[P, F, Param, S, R],
	problem P,
	newState func() S,
) *Builder[P, F, Param, S, R] {
	b := &Builder[P, F, Param, S, R]{
		calc:     calc,
		problem:  problem,
		newState: newState,
		ctrlC:    true,
		timing:   true,
	}
	if calc == nil {
		b.err = ErrNilCalculation
	}
	if newState == nil && b.err == nil {
		b.err = ErrNilStateFactory
	}
	return b
}

// EnableCtrlC toggles the process-wide Ctrl-C killswitch. Enabled by
// default. Installing it is a process-singleton operation: multiple
// concurrently finalised runners with Ctrl-C enabled will contend for
// the same OS signal channel.
func (b *Builder[P, F, Param, S, R]) EnableCtrlC(enable bool) *Builder[P, F, Param, S, R] {
	b.ctrlC = enable
	return b
}

// EnableTiming toggles recording of elapsed wall-clock time on the state
// wrapper. Enabled by default.
func (b *Builder[P, F, Param, S, R]) EnableTiming(enable bool) *Builder[P, F, Param, S, R] {
	b.timing = enable
	return b
}

// WithCancellationToken attaches a caller-supplied cancellation source.
// Finalise spawns an auxiliary goroutine that calls its blocking
// waiter and fires a Parent-holder Killswitch when it returns.
func (b *Builder[P, F, Param, S, R]) WithCancellationToken(t CancellationSource) *Builder[P, F, Param, S, R] {
	b.token = t
	return b
}

// Configure registers a closure applied to the freshly constructed state
// wrapper during Finalise, typically to set MaxIter/RelativeTolerance or
// to pre-populate the user state. Closures run in registration order.
func (b *Builder[P, F, Param, S, R]) Configure(fn func(*State[F, Param, S])) *Builder[P, F, Param, S, R] {
	if fn != nil {
		b.configure = append(b.configure, fn)
	}
	return b
}

// AttachObserver records an observer and its firing frequency. Observers
// fire in attachment order.
func (b *Builder[P, F, Param, S, R]) AttachObserver(obs Observer[F, Param, S], freq Frequency) *Builder[P, F, Param, S, R] {
	if obs != nil {
		b.handles = append(b.handles, observerHandle[F, Param, S]{observer: obs, freq: freq})
	}
	return b
}

// WithMetrics attaches a metrics.Provider the Runner instruments
// iteration count, iteration latency, and the number of terminations
// through. The termination counter is not broken down by cause.
// Defaults to metrics.NewNoopProvider().
func (b *Builder[P, F, Param, S, R]) WithMetrics(p metrics.Provider) *Builder[P, F, Param, S, R] {
	b.provider = p
	return b
}

// Finalise installs cancellation handlers and returns the fully-wired
// Runner. installCtrlCHandler and spawnCancellationWaiter return an error
// signature for platforms or setups where registration can fail; on this
// runtime both always succeed (see DESIGN.md, Open Question 6), but the
// error is still surfaced here, before Run ever starts, for any future
// installer that can fail.
func (b *Builder[P, F, Param, S, R]) Finalise() (*Runner[P, F, Param, S, R], error) {
	if b.err != nil {
		return nil, b.err
	}

	state := newState[F, Param, S](b.newState())
	for _, configure := range b.configure {
		configure(state)
	}

	var switches []*Killswitch

	if b.ctrlC {
		ks := newKillswitch(HolderCtrlC)
		if err := installCtrlCHandler(ks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCtrlCInstall, err)
		}
		switches = append(switches, ks)
	}

	if b.token != nil {
		ks := newKillswitch(HolderParent)
		if err := spawnCancellationWaiter(b.token, ks); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCancellationWaiterSpawn, err)
		}
		switches = append(switches, ks)
	}

	provider := b.provider
	if provider == nil {
		provider = metrics.NewNoopProvider()
	}

	return &Runner[P, F, Param, S, R]{
		problem:        NewProblem(b.problem),
		calc:           b.calc,
		state:          state,
		killswitches:   killswitchSet{switches: switches},
		observers:      observerSet[F, Param, S]{handles: b.handles},
		timingEnabled:  b.timing,
		metrics:        provider,
		iterCounter:    provider.Counter("trellis_iterations_total"),
		iterHistogram:  provider.Histogram("trellis_iteration_duration_seconds"),
		terminationCtr: provider.Counter("trellis_terminations_total"),
	}, nil
}

// installCtrlCHandler registers a process-wide os/signal notification and
// starts a detached goroutine that fires ks exactly once, on the first
// SIGINT. Signal handling uses the standard library's os/signal package.
func installCtrlCHandler(ks *Killswitch) error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	go func() {
		<-sig
		slog.Debug("trellis: ctrl-c received, firing killswitch", "holder", HolderCtrlC)
		ks.Fire()
		signal.Stop(sig)
	}()

	return nil
}

// spawnCancellationWaiter starts a detached goroutine for the Parent
// holder, calling t's blocking waiter and firing ks on any return —
// success or error both count as a signal to stop.
func spawnCancellationWaiter(t CancellationSource, ks *Killswitch) error {
	go func() {
		_, err := t.BlockingRecvKillSignal()
		slog.Debug("trellis: cancellation token returned, firing killswitch", "holder", HolderParent, "err", err)
		ks.Fire()
	}()

	return nil
}
