// Package hotdebug exposes cheap internal counters, useful when verifying that
// instrumentation overhead stays where it should be.
package hotdebug

import "sync/atomic"

// HistoryCounters track operations on record histories.
type HistoryCounters struct {
	Recorded  atomic.Uint64
	Rejected  atomic.Uint64
	Evicted   atomic.Uint64
	Cleared   atomic.Uint64
	Snapshots atomic.Uint64
}

// Values returns the current values of the counters.
func (hc *HistoryCounters) Values() (recorded, rejected, evicted, cleared, snapshots uint64) {
	var (
		r = hc.Recorded.Load()
		j = hc.Rejected.Load()
		e = hc.Evicted.Load()
		c = hc.Cleared.Load()
		s = hc.Snapshots.Load()
	)
	return r, j, e, c, s
}

// Counters tracks all histories in the process.
var Counters HistoryCounters
