// Package trellis drives user-defined iterative computations — root
// finders, optimisers, fixed-point solvers, Monte-Carlo loops — behind a
// fixed three-phase algorithm shape: initialise, next (repeated), finalise.
//
// Trellis owns the iteration envelope: lifecycle sequencing, convergence
// and termination accounting, iteration counting and timing, cooperative
// cancellation from multiple independent sources, and a fan-out of
// observation events to attached sinks.
//
// # Building a run
//
//	runner, err := trellis.BuildFor[Problem, float64, Param](calc, problem, newState).
//		EnableTiming(true).
//		Configure(func(s *trellis.State[float64, Param, *myState]) {
//			s.SetMaxIter(100)
//			s.SetRelativeTolerance(1e-6)
//		}).
//		AttachObserver(obs, trellis.Always()).
//		Finalise()
//	if err != nil {
//		// builder construction failed (nil calculation or state factory,
//		// Ctrl-C install, or waiter spawn)
//	}
//	output, err := runner.Run(ctx)
//
// # Scope
//
// Trellis's core is the state wrapper, the three-phase runner, killswitch
// composition, observer dispatch, and the builder. Concrete observer
// sinks (see the observers subpackage), the caller's own calculation and
// state types, the OS Ctrl-C hook, and any specific cancellation-source
// implementation (see the cancel subpackage) are external collaborators
// described only by the contracts the core consumes.
//
// There is no persistence, checkpointing, restart, or distributed
// execution, and no parallelism across iterations: one run drives one
// calculation on the calling goroutine, start to finish.
package trellis
