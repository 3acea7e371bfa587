package cancel

import "errors"

// ErrChannelClosed is returned by a channel-backed source's blocking
// waiter when the channel was closed rather than sent to.
var ErrChannelClosed = errors.New("cancel: channel closed")

// channelSource adapts a plain receive-only channel to
// trellis.CancellationSource. Useful for hosts that already signal
// shutdown via a bare chan struct{} rather than a context.Context.
type channelSource struct {
	ch <-chan struct{}
}

// FromChannel returns a CancellationSource whose blocking wait returns
// when ch receives a value or is closed.
func FromChannel(ch <-chan struct{}) *channelSource {
	return &channelSource{ch: ch}
}

// BlockingRecvKillSignal blocks until the channel fires or closes.
func (c *channelSource) BlockingRecvKillSignal() (any, error) {
	_, ok := <-c.ch
	if !ok {
		return nil, ErrChannelClosed
	}
	return struct{}{}, nil
}
