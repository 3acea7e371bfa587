package cancel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFromChannelReturnsOnSend(t *testing.T) {
	ch := make(chan struct{}, 1)
	ch <- struct{}{}

	val, err := FromChannel(ch).BlockingRecvKillSignal()
	require.NoError(t, err)
	require.Equal(t, struct{}{}, val)
}

func TestFromChannelReportsClosedChannel(t *testing.T) {
	ch := make(chan struct{})
	close(ch)

	_, err := FromChannel(ch).BlockingRecvKillSignal()
	require.ErrorIs(t, err, ErrChannelClosed)
}

func TestFromChannelBlocksUntilSignalled(t *testing.T) {
	ch := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_, _ = FromChannel(ch).BlockingRecvKillSignal()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("should not return before the channel fires")
	case <-time.After(20 * time.Millisecond):
	}

	close(ch)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for signal")
	}
}
