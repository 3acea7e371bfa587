package trellis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type iterOnly struct{ iter uint64 }

func (i iterOnly) Iter() uint64 { return i.iter }

func TestFrequencyAlwaysFiresEveryStage(t *testing.T) {
	f := Always()
	require.True(t, f.shouldFire(iterOnly{iter: 0}, StageInitialisation))
	require.True(t, f.shouldFire(iterOnly{iter: 5}, StageIteration))
	require.True(t, f.shouldFire(iterOnly{iter: 99}, StageWrapUp))
}

func TestFrequencyNeverFires(t *testing.T) {
	f := Never()
	require.False(t, f.shouldFire(iterOnly{iter: 0}, StageInitialisation))
	require.False(t, f.shouldFire(iterOnly{iter: 5}, StageIteration))
	require.False(t, f.shouldFire(iterOnly{iter: 99}, StageWrapUp))
}

func TestFrequencyEveryFiresOnMultiplesAndInitialisation(t *testing.T) {
	f := Every(10)
	require.True(t, f.shouldFire(iterOnly{iter: 0}, StageIteration))
	require.True(t, f.shouldFire(iterOnly{iter: 10}, StageIteration))
	require.False(t, f.shouldFire(iterOnly{iter: 11}, StageIteration))
	require.True(t, f.shouldFire(iterOnly{iter: 11}, StageInitialisation))
	require.False(t, f.shouldFire(iterOnly{iter: 11}, StageWrapUp))
}

func TestFrequencyOnExitFiresOnlyAtWrapUp(t *testing.T) {
	f := OnExit()
	require.False(t, f.shouldFire(iterOnly{iter: 0}, StageInitialisation))
	require.False(t, f.shouldFire(iterOnly{iter: 5}, StageIteration))
	require.True(t, f.shouldFire(iterOnly{iter: 5}, StageWrapUp))
}

func TestEveryPanicsOnZero(t *testing.T) {
	require.Panics(t, func() { Every(0) })
}

func TestObserverFuncAdapter(t *testing.T) {
	var got Stage = -1
	var name string
	obs := ObserverFunc[float64, int, *fakeUserState](func(n string, state *State[float64, int, *fakeUserState], stage Stage) {
		name = n
		got = stage
	})

	s := newState[float64, int, *fakeUserState](&fakeUserState{})
	obs.Observe("calc", s, StageWrapUp)

	require.Equal(t, "calc", name)
	require.Equal(t, StageWrapUp, got)
}

func TestObserverSetDispatchesInAttachmentOrderRespectingFrequency(t *testing.T) {
	var order []string
	set := observerSet[float64, int, *fakeUserState]{
		handles: []observerHandle[float64, int, *fakeUserState]{
			{observer: ObserverFunc[float64, int, *fakeUserState](func(n string, _ *State[float64, int, *fakeUserState], _ Stage) {
				order = append(order, "first")
			}), freq: Always()},
			{observer: ObserverFunc[float64, int, *fakeUserState](func(n string, _ *State[float64, int, *fakeUserState], _ Stage) {
				order = append(order, "second")
			}), freq: Never()},
			{observer: ObserverFunc[float64, int, *fakeUserState](func(n string, _ *State[float64, int, *fakeUserState], _ Stage) {
				order = append(order, "third")
			}), freq: OnExit()},
		},
	}

	s := newState[float64, int, *fakeUserState](&fakeUserState{})
	set.dispatch("calc", s, StageWrapUp)

	require.Equal(t, []string{"first", "third"}, order)
}
