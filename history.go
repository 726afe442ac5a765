package hotspot

import (
	"context"
	"fmt"
	"sync"

	"github.com/tracelab/hotspot/internal/hotdebug"
	"github.com/tracelab/hotspot/internal/hotpubsub"
	"github.com/tracelab/hotspot/internal/hotring"
)

// History is a size-bounded store of records, ordered by arrival. Producers
// append records at the tail via [History.Record]; when a capacity is set and
// exceeded, the oldest records are evicted from the head until the history is
// back within capacity. Eviction is pure FIFO: no record is pinned, prioritized,
// or exempt.
//
// A History is safe for concurrent use. Append-then-evict happens in a single
// critical section, so no reader ever observes a length above the capacity, or
// a partially appended record.
type History struct {
	broker *hotpubsub.Broker[Record]

	mtx    sync.Mutex
	ring   *hotring.RingBuffer[Record] // bounded storage, nil when unbounded
	all    []Record                    // unbounded storage
	closed bool
}

// NewHistory constructs an empty history with no capacity limit. An unbounded
// history grows with every recorded record for the lifetime of the process,
// so callers who trace at any significant rate should prefer
// [NewHistoryWithCapacity].
func NewHistory() *History {
	return &History{
		broker: hotpubsub.NewBroker[Record](),
	}
}

// NewHistoryWithCapacity constructs an empty history which retains at most
// capacity records. The capacity is fixed for the lifetime of the history. A
// capacity of zero or less is rejected with an error wrapping
// [ErrInvalidConfig]: a history that can never hold a record is a
// misconfiguration, not a useful default.
func NewHistoryWithCapacity(capacity int) (*History, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, capacity)
	}

	return &History{
		broker: hotpubsub.NewBroker[Record](),
		ring:   hotring.NewRingBuffer[Record](capacity),
	}, nil
}

// Record appends the record at the tail of the history, evicting from the
// head as necessary to stay within capacity. Invalid records are rejected
// with an error wrapping [ErrInvalidRecord] and leave the history unchanged.
// Recording on a closed history fails with [ErrHistoryClosed] rather than
// silently dropping the record.
func (h *History) Record(r Record) error {
	if err := r.validate(); err != nil {
		hotdebug.Counters.Rejected.Add(1)
		return err
	}

	h.mtx.Lock()

	if h.closed {
		h.mtx.Unlock()
		return ErrHistoryClosed
	}

	if h.ring != nil {
		if _, evicted := h.ring.Add(r); evicted {
			hotdebug.Counters.Evicted.Add(1)
		}
	} else {
		h.all = append(h.all, r)
	}

	h.mtx.Unlock()

	hotdebug.Counters.Recorded.Add(1)

	// Publishing happens outside the critical section. Subscribers are
	// best-effort consumers and must not slow down producers.
	h.broker.Publish(r)

	return nil
}

// Snapshot returns a copy of the current records, ordered oldest to newest.
// The returned slice is independent of the history: later Record or Clear
// calls don't change it, and callers can iterate it without holding any lock.
func (h *History) Snapshot() []Record {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	hotdebug.Counters.Snapshots.Add(1)

	if h.ring != nil {
		return h.ring.Slice()
	}

	out := make([]Record, len(h.all))
	copy(out, h.all)
	return out
}

// Len returns the number of records currently retained.
func (h *History) Len() int {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if h.ring != nil {
		return h.ring.Len()
	}

	return len(h.all)
}

// Capacity returns the retention limit of the history, and whether one is
// set at all.
func (h *History) Capacity() (int, bool) {
	// The capacity is fixed at construction, no lock needed.
	if h.ring != nil {
		return h.ring.Cap(), true
	}

	return 0, false
}

// Clear removes every record from the history, typically between measurement
// sessions. Clearing an empty history is a no-op. The capacity, if any, is
// unchanged.
func (h *History) Clear() {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	hotdebug.Counters.Cleared.Add(1)

	if h.ring != nil {
		h.ring.Reset()
		return
	}

	h.all = nil
}

// Close marks the history as closed. Subsequent Record calls fail with
// [ErrHistoryClosed], while Snapshot, Len, and Clear remain usable, so that
// already-collected data can still be inspected during teardown. Close is
// idempotent.
func (h *History) Close() error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.closed = true
	return nil
}

// Subscribe the channel to records as they are recorded, blocking until the
// context is canceled. Sends to the channel never block: if the channel is
// full, the record is dropped from the stream (not from the history), and
// counted in the returned stats.
func (h *History) Subscribe(ctx context.Context, ch chan<- Record) (Stats, error) {
	stats, err := h.broker.Subscribe(ctx, ch)
	return Stats(stats), err
}

// Subscription returns the current stats for an active subscription.
func (h *History) Subscription(ch chan<- Record) (Stats, error) {
	stats, err := h.broker.Stats(ch)
	return Stats(stats), err
}

// Stats describe a subscription: how many records were delivered to the
// channel, and how many were dropped because the channel was full.
type Stats struct {
	Sends uint64 `json:"sends"`
	Drops uint64 `json:"drops"`
}

func (s Stats) String() string {
	return fmt.Sprintf("sends=%d drops=%d", s.Sends, s.Drops)
}
