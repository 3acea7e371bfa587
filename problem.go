package trellis

// Problem is an opaque, immutable wrapper around a user-supplied value P.
// It is constructed once by the builder and owned by the Runner for the
// lifetime of a run; calculation phases receive it by reference.
type Problem[P any] struct {
	value P
}

// NewProblem wraps p for exclusive ownership by a Runner.
func NewProblem[P any](p P) *Problem[P] {
	return &Problem[P]{value: p}
}

// Value returns the wrapped user problem.
func (p *Problem[P]) Value() P {
	return p.value
}
