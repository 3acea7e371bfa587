package trellis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIterationErrorNilPassthrough(t *testing.T) {
	require.Nil(t, newIterationError(nil, 3, StageIteration))
}

func TestIterationErrorWrapsAndCorrelates(t *testing.T) {
	cause := errors.New("boom")
	err := newIterationError(cause, 7, StageIteration)
	require.EqualError(t, err, "boom")
	require.ErrorIs(t, err, cause)

	iter, ok := ExtractIteration(err)
	require.True(t, ok)
	require.Equal(t, uint64(7), iter)

	stage, ok := ExtractStage(err)
	require.True(t, ok)
	require.Equal(t, StageIteration, stage)
}

func TestIterationErrorFormatVerbs(t *testing.T) {
	err := newIterationError(errors.New("boom"), 2, StageWrapUp)

	require.Equal(t, "boom", fmt.Sprintf("%s", err))
	require.Equal(t, `"boom"`, fmt.Sprintf("%q", err))
	require.Equal(t, "iteration(n=2,stage=wrap-up): boom", fmt.Sprintf("%+v", err))
}

func TestExtractIterationAndStageAbsentForPlainError(t *testing.T) {
	_, ok := ExtractIteration(errors.New("plain"))
	require.False(t, ok)

	_, ok = ExtractStage(errors.New("plain"))
	require.False(t, ok)
}
