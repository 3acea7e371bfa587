package trellis

import "sync/atomic"

// Killswitch is a tagged shared atomic flag used to request cooperative
// termination. It is set at most once, from false to true, by a thread
// owned by a cancellation source, and polled by the runner.
type Killswitch struct {
	holder Holder
	fired  atomic.Bool
}

func newKillswitch(holder Holder) *Killswitch {
	return &Killswitch{holder: holder}
}

// Holder reports which kind of cancellation source owns this killswitch.
func (k *Killswitch) Holder() Holder { return k.holder }

// Fire sets the flag. Safe to call more than once or concurrently: only
// the first call has any effect, since cancellation is at-most-once and
// idempotent.
func (k *Killswitch) Fire() { k.fired.Store(true) }

// Fired reports whether Fire has been called.
func (k *Killswitch) Fired() bool { return k.fired.Load() }

// killswitchSet is the ordered collection the runner polls at loop-head.
type killswitchSet struct {
	switches []*Killswitch
}

// firstFired returns the first killswitch (in attachment order) observed
// fired, giving a deterministic tie-break when more than one source
// fires in the same polling window.
func (k *killswitchSet) firstFired() (*Killswitch, bool) {
	for _, ks := range k.switches {
		if ks.Fired() {
			return ks, true
		}
	}
	return nil, false
}
