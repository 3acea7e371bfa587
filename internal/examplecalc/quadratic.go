// Package examplecalc is a worked trellis.Calculation used by the
// trellis-demo command: damped gradient descent minimising a quadratic
// bowl f(x) = 0.5 * x^T A x - b^T x, whose gradient is A x - b.
package examplecalc

import (
	"context"
	"fmt"
	"math"

	"github.com/sensoriumtl/trellis"
)

// Problem describes the quadratic: minimise 0.5*x^T A x - b^T x in n
// dimensions, where A is supplied as its diagonal (a simple, well-
// conditioned case sufficient to demonstrate convergence behaviour).
type Problem struct {
	Diagonal []float64
	Target   []float64
}

// Vector is the parameter type: a point in R^n.
type Vector []float64

// State is the UserState for gradient descent: the current point, the
// step size, and the gradient norm recorded by Next.
type State struct {
	initialised  bool
	x            Vector
	stepSize     float64
	bestX        Vector
	lastGradNorm float64
}

// NewState returns a fresh, uninitialised State with the given starting
// point and step size.
func NewState(start Vector, stepSize float64) *State {
	return &State{x: append(Vector(nil), start...), stepSize: stepSize}
}

// IsInitialised reports whether Calculation.Initialise has already run.
func (s *State) IsInitialised() bool { return s.initialised }

// Update returns the gradient norm computed by the most recent Next
// call. The gradient step itself happens in Next; Update only reports
// the error estimate the state wrapper's convergence check acts on.
func (s *State) Update() float64 { return s.lastGradNorm }

// Param returns the current best point found so far.
func (s *State) Param() (*Vector, bool) {
	if s.bestX == nil {
		return nil, false
	}
	v := append(Vector(nil), s.bestX...)
	return &v, true
}

// LastWasBest records the current point as the best seen so far.
func (s *State) LastWasBest() {
	s.bestX = append(Vector(nil), s.x...)
}

// QuadraticCalculation implements trellis.Calculation for diagonal
// quadratic minimisation via damped gradient descent.
type QuadraticCalculation struct{}

// Name identifies this calculation for logging and observer dispatch.
func (QuadraticCalculation) Name() string { return "quadratic-gradient-descent" }

// Initialise validates the problem dimensions against the starting
// point and marks state as initialised.
func (QuadraticCalculation) Initialise(ctx context.Context, problem *trellis.Problem[Problem], state *State) (*State, error) {
	p := problem.Value()
	if len(p.Diagonal) != len(state.x) || len(p.Target) != len(state.x) {
		return nil, fmt.Errorf("examplecalc: dimension mismatch: state has %d components, problem has %d", len(state.x), len(p.Diagonal))
	}
	state.initialised = true
	state.bestX = append(Vector(nil), state.x...)
	return state, nil
}

// Next performs one damped gradient-descent step and records the norm of
// the gradient it stepped along (taken at the point before the step) as
// the state's error estimate.
func (QuadraticCalculation) Next(ctx context.Context, problem *trellis.Problem[Problem], state *State) (*State, error) {
	p := problem.Value()

	grad := make(Vector, len(state.x))
	var normSq float64
	for i := range state.x {
		g := p.Diagonal[i]*state.x[i] - p.Target[i]
		grad[i] = g
		normSq += g * g
	}

	for i := range state.x {
		state.x[i] -= state.stepSize * grad[i]
	}

	state.lastGradNorm = math.Sqrt(normSq)
	return state, nil
}

// Finalise returns the best point found as the result.
func (QuadraticCalculation) Finalise(ctx context.Context, problem *trellis.Problem[Problem], state *State) (Vector, error) {
	best, ok := state.Param()
	if !ok {
		return append(Vector(nil), state.x...), nil
	}
	return *best, nil
}
