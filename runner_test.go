package trellis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// countdownState converges once its internal counter reaches zero,
// decrementing by one per Next call.
type countdownState struct {
	initialised bool
	remaining   int
	param       int
}

func (c *countdownState) IsInitialised() bool { return c.initialised }

func (c *countdownState) Update() float64 {
	if c.remaining > 0 {
		c.remaining--
	}
	return float64(c.remaining)
}

func (c *countdownState) Param() (*int, bool) { return &c.param, true }

func (c *countdownState) LastWasBest() {}

type countdownCalc struct {
	initErr   error
	nextErr   error
	finalErr  error
	callCount int
}

func (c *countdownCalc) Name() string { return "countdown" }

func (c *countdownCalc) Initialise(ctx context.Context, problem *Problem[int], state *countdownState) (*countdownState, error) {
	if c.initErr != nil {
		return nil, c.initErr
	}
	state.initialised = true
	state.remaining = problem.Value()
	return state, nil
}

func (c *countdownCalc) Next(ctx context.Context, problem *Problem[int], state *countdownState) (*countdownState, error) {
	c.callCount++
	if c.nextErr != nil {
		return nil, c.nextErr
	}
	state.param = state.remaining
	return state, nil
}

func (c *countdownCalc) Finalise(ctx context.Context, problem *Problem[int], state *countdownState) (int, error) {
	if c.finalErr != nil {
		return 0, c.finalErr
	}
	return state.param, nil
}

func TestRunnerConvergesAndReturnsResult(t *testing.T) {
	calc := &countdownCalc{}
	runner, err := BuildFor[int, float64, int, *countdownState, int](
		calc,
		5,
		func() *countdownState { return &countdownState{} },
	).
		Configure(func(s *State[float64, int, *countdownState]) {
			s.SetRelativeTolerance(0.5)
		}).
		EnableCtrlC(false).
		Finalise()
	require.NoError(t, err)

	output, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, output.Result, "Finalise observes the param set by the last Next before the converging update")
	require.Equal(t, CauseConverged, mustCause(t, output.State))
}

func TestRunnerExceedsMaxIterations(t *testing.T) {
	calc := &countdownCalc{}
	runner, err := BuildFor[int, float64, int, *countdownState, int](
		calc,
		1_000_000,
		func() *countdownState { return &countdownState{} },
	).
		Configure(func(s *State[float64, int, *countdownState]) {
			s.SetMaxIter(3)
			s.SetRelativeTolerance(-1)
		}).
		EnableCtrlC(false).
		Finalise()
	require.NoError(t, err)

	output, err := runner.Run(context.Background())
	require.Error(t, err)

	var runErr *RunError[float64, int, *countdownState, int]
	require.True(t, errors.As(err, &runErr))
	require.Equal(t, CauseExceededMaxIterations, runErr.Cause)
	require.ErrorIs(t, runErr, ErrMaxIterExceeded)
	require.NotNil(t, output)
}

func TestRunnerPropagatesNextError(t *testing.T) {
	boom := errors.New("boom")
	calc := &countdownCalc{nextErr: boom}
	runner, err := BuildFor[int, float64, int, *countdownState, int](
		calc,
		5,
		func() *countdownState { return &countdownState{} },
	).EnableCtrlC(false).Finalise()
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	iter, ok := ExtractIteration(err)
	require.True(t, ok)
	require.Equal(t, uint64(0), iter, "the failing Next's iteration is never counted")

	stage, ok := ExtractStage(err)
	require.True(t, ok)
	require.Equal(t, StageIteration, stage)
}

func TestRunnerPropagatesInitialiseError(t *testing.T) {
	boom := errors.New("init boom")
	calc := &countdownCalc{initErr: boom}
	runner, err := BuildFor[int, float64, int, *countdownState, int](
		calc,
		5,
		func() *countdownState { return &countdownState{} },
	).EnableCtrlC(false).Finalise()
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, boom)

	stage, ok := ExtractStage(err)
	require.True(t, ok)
	require.Equal(t, StageInitialisation, stage)
}

func TestRunnerHonoursCtrlCKillswitch(t *testing.T) {
	calc := &countdownCalc{}
	runner, err := BuildFor[int, float64, int, *countdownState, int](
		calc,
		1_000_000,
		func() *countdownState { return &countdownState{} },
	).
		Configure(func(s *State[float64, int, *countdownState]) {
			s.SetRelativeTolerance(-1)
		}).
		EnableCtrlC(false).
		Finalise()
	require.NoError(t, err)

	ks := newKillswitch(HolderCtrlC)
	runner.killswitches = killswitchSet{switches: []*Killswitch{ks}}
	ks.Fire()

	_, err = runner.Run(context.Background())
	require.Error(t, err)

	var runErr *RunError[float64, int, *countdownState, int]
	require.True(t, errors.As(err, &runErr))
	require.Equal(t, CauseControlC, runErr.Cause)
	require.ErrorIs(t, runErr, ErrControlC)
}

func mustCause(t *testing.T, state *State[float64, int, *countdownState]) Cause {
	t.Helper()
	cause, ok := state.Termination().Cause()
	require.True(t, ok)
	return cause
}
