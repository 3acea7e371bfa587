// Package cancel provides adapters from common Go cancellation
// primitives to trellis.CancellationSource, treating the underlying
// primitive itself as an external collaborator rather than part of the
// driver.
package cancel

import "context"

// contextSource adapts a context.Context to trellis.CancellationSource.
type contextSource struct {
	ctx context.Context
}

// FromContext returns a CancellationSource whose blocking wait returns
// when ctx is done. The returned error is ctx.Err().
func FromContext(ctx context.Context) *contextSource {
	return &contextSource{ctx: ctx}
}

// BlockingRecvKillSignal blocks until the context is done.
func (c *contextSource) BlockingRecvKillSignal() (any, error) {
	<-c.ctx.Done()
	return struct{}{}, c.ctx.Err()
}
