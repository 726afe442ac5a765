package hotspot_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tracelab/hotspot"
	"github.com/tracelab/hotspot/internal/hotdebug"
)

func mustRecord(t *testing.T, label string, duration time.Duration) hotspot.Record {
	t.Helper()
	r, err := hotspot.NewRecord(label, time.Now(), duration)
	if err != nil {
		t.Fatalf("record %q: %v", label, err)
	}
	return r
}

func TestHistoryFIFOEviction(t *testing.T) {
	t.Parallel()

	h, err := hotspot.NewHistoryWithCapacity(3)
	AssertNoError(t, err)

	AssertNoError(t, h.Record(mustRecord(t, "A", 10*time.Millisecond)))
	AssertNoError(t, h.Record(mustRecord(t, "B", 5*time.Millisecond)))
	AssertNoError(t, h.Record(mustRecord(t, "C", 20*time.Millisecond)))
	AssertNoError(t, h.Record(mustRecord(t, "D", 1*time.Millisecond)))

	AssertEqual(t, 3, h.Len())

	capacity, ok := h.Capacity()
	AssertEqual(t, true, ok)
	AssertEqual(t, 3, capacity)

	snapshot := h.Snapshot()
	AssertEqual(t, 3, len(snapshot))
	AssertEqual(t, "B", snapshot[0].Label())
	AssertEqual(t, "C", snapshot[1].Label())
	AssertEqual(t, "D", snapshot[2].Label())
}

func TestHistoryBoundedGrowth(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{1, 2, 7, 100} {
		capacity := capacity
		t.Run(fmt.Sprintf("capacity=%d", capacity), func(t *testing.T) {
			t.Parallel()

			h, err := hotspot.NewHistoryWithCapacity(capacity)
			AssertNoError(t, err)

			for i := 0; i < 3*capacity+1; i++ {
				AssertNoError(t, h.Record(mustRecord(t, fmt.Sprintf("r%d", i), time.Microsecond)))
				if n := h.Len(); n > capacity {
					t.Fatalf("after %d records: len %d exceeds capacity %d", i+1, n, capacity)
				}
			}

			// The survivors are the most recent capacity records, in order.
			snapshot := h.Snapshot()
			AssertEqual(t, capacity, len(snapshot))
			for i, r := range snapshot {
				want := fmt.Sprintf("r%d", 3*capacity+1-capacity+i)
				AssertEqual(t, want, r.Label())
			}
		})
	}
}

func TestHistoryUnboundedDefault(t *testing.T) {
	t.Parallel()

	h := hotspot.NewHistory()

	_, ok := h.Capacity()
	AssertEqual(t, false, ok)

	const n = 10000
	for i := 0; i < n; i++ {
		AssertNoError(t, h.Record(mustRecord(t, fmt.Sprintf("r%d", i), time.Microsecond)))
	}

	AssertEqual(t, n, h.Len())

	snapshot := h.Snapshot()
	AssertEqual(t, n, len(snapshot))
	for i, r := range snapshot {
		if want := fmt.Sprintf("r%d", i); want != r.Label() {
			t.Fatalf("index %d: want %q, have %q", i, want, r.Label())
		}
	}
}

func TestHistoryZeroCapacityRejected(t *testing.T) {
	t.Parallel()

	for _, capacity := range []int{0, -1, -100} {
		_, err := hotspot.NewHistoryWithCapacity(capacity)
		AssertErrorIs(t, err, hotspot.ErrInvalidConfig)
	}
}

func TestHistoryRejectsInvalidRecord(t *testing.T) {
	t.Parallel()

	h, err := hotspot.NewHistoryWithCapacity(3)
	AssertNoError(t, err)

	AssertNoError(t, h.Record(mustRecord(t, "ok", time.Millisecond)))

	// A zero-value record never passed constructor validation.
	AssertErrorIs(t, h.Record(hotspot.Record{}), hotspot.ErrInvalidRecord)

	AssertEqual(t, 1, h.Len())
}

func TestHistoryClearIdempotent(t *testing.T) {
	t.Parallel()

	h, err := hotspot.NewHistoryWithCapacity(3)
	AssertNoError(t, err)

	h.Clear()
	AssertEqual(t, 0, h.Len())

	AssertNoError(t, h.Record(mustRecord(t, "A", time.Millisecond)))
	AssertNoError(t, h.Record(mustRecord(t, "B", time.Millisecond)))

	h.Clear()
	AssertEqual(t, 0, h.Len())

	h.Clear()
	AssertEqual(t, 0, h.Len())

	// After a clear, the history behaves as freshly constructed, capacity
	// included.
	for _, label := range []string{"C", "D", "E", "F"} {
		AssertNoError(t, h.Record(mustRecord(t, label, time.Millisecond)))
	}

	snapshot := h.Snapshot()
	AssertEqual(t, 3, len(snapshot))
	AssertEqual(t, "D", snapshot[0].Label())
	AssertEqual(t, "E", snapshot[1].Label())
	AssertEqual(t, "F", snapshot[2].Label())
}

func TestHistorySnapshotIsolation(t *testing.T) {
	t.Parallel()

	h := hotspot.NewHistory()

	AssertNoError(t, h.Record(mustRecord(t, "A", time.Millisecond)))
	AssertNoError(t, h.Record(mustRecord(t, "B", time.Millisecond)))

	snapshot := h.Snapshot()

	AssertNoError(t, h.Record(mustRecord(t, "C", time.Millisecond)))
	h.Clear()

	AssertEqual(t, 2, len(snapshot))
	AssertEqual(t, "A", snapshot[0].Label())
	AssertEqual(t, "B", snapshot[1].Label())
	AssertEqual(t, 0, h.Len())
}

func TestHistoryClose(t *testing.T) {
	t.Parallel()

	h, err := hotspot.NewHistoryWithCapacity(3)
	AssertNoError(t, err)

	AssertNoError(t, h.Record(mustRecord(t, "A", time.Millisecond)))
	AssertNoError(t, h.Close())

	AssertErrorIs(t, h.Record(mustRecord(t, "B", time.Millisecond)), hotspot.ErrHistoryClosed)

	// Collected data remains inspectable after close.
	AssertEqual(t, 1, h.Len())
	AssertEqual(t, "A", h.Snapshot()[0].Label())

	AssertNoError(t, h.Close()) // idempotent
}

func TestHistoryConcurrentProducers(t *testing.T) {
	t.Parallel()

	const (
		producers          = 8
		recordsPerProducer = 500
		capacity           = 100
	)

	h, err := hotspot.NewHistoryWithCapacity(capacity)
	AssertNoError(t, err)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			producer := fmt.Sprintf("producer-%d", p)
			for i := 0; i < recordsPerProducer; i++ {
				r, err := hotspot.NewRecord(
					fmt.Sprintf("%s/%d", producer, i),
					time.Now(),
					time.Microsecond,
					hotspot.WithProducer(producer),
				)
				if err != nil {
					panic(err)
				}
				if err := h.Record(r); err != nil {
					panic(err)
				}
				if n := h.Len(); n > capacity {
					panic(fmt.Sprintf("len %d exceeds capacity %d", n, capacity))
				}
			}
		}(p)
	}
	wg.Wait()

	AssertEqual(t, capacity, h.Len())

	// Per-producer order is preserved: within the snapshot, each producer's
	// surviving records appear in the order they were recorded.
	lastIndex := map[string]int{}
	for _, r := range h.Snapshot() {
		var p, i int
		if _, err := fmt.Sscanf(r.Label(), "producer-%d/%d", &p, &i); err != nil {
			t.Fatalf("bad label %q: %v", r.Label(), err)
		}
		if prev, ok := lastIndex[r.Producer()]; ok && i <= prev {
			t.Fatalf("%s: index %d after %d", r.Producer(), i, prev)
		}
		lastIndex[r.Producer()] = i
	}
}

func TestHistorySubscribe(t *testing.T) {
	t.Parallel()

	h := hotspot.NewHistory()

	ctx, cancel := context.WithCancel(context.Background())

	var (
		received = make(chan hotspot.Record, 10)
		done     = make(chan struct{})
	)
	go func() {
		defer close(done)
		stats, err := h.Subscribe(ctx, received)
		if err != context.Canceled {
			t.Errorf("subscribe: %v", err)
		}
		if stats.Sends != 2 {
			t.Errorf("sends: want 2, have %d", stats.Sends)
		}
	}()

	// Give the subscriber a moment to register.
	for i := 0; i < 100; i++ {
		if _, err := h.Subscription(received); err == nil {
			break
		}
		time.Sleep(time.Millisecond)
	}

	AssertNoError(t, h.Record(mustRecord(t, "A", time.Millisecond)))
	AssertNoError(t, h.Record(mustRecord(t, "B", time.Millisecond)))

	AssertEqual(t, "A", (<-received).Label())
	AssertEqual(t, "B", (<-received).Label())

	// The stats type is part of the public API: importers declare it.
	var stats hotspot.Stats
	stats, err := h.Subscription(received)
	AssertNoError(t, err)
	AssertEqual(t, uint64(2), stats.Sends)
	AssertEqual(t, uint64(0), stats.Drops)
	AssertEqual(t, "sends=2 drops=0", stats.String())

	cancel()
	<-done
}

func TestHistoryCounters(t *testing.T) {
	t.Parallel()

	// The counters are process-global and other tests run concurrently, so
	// assert only that this test's operations are reflected in the deltas.
	recorded0, rejected0, evicted0, cleared0, snapshots0 := hotdebug.Counters.Values()

	h, err := hotspot.NewHistoryWithCapacity(3)
	AssertNoError(t, err)

	for i := 0; i < 5; i++ {
		AssertNoError(t, h.Record(mustRecord(t, fmt.Sprintf("op-%d", i), time.Millisecond)))
	}

	if err := h.Record(hotspot.Record{}); err == nil {
		t.Error("recording an invalid record: want error, have nil")
	}

	h.Snapshot()
	h.Clear()

	recorded1, rejected1, evicted1, cleared1, snapshots1 := hotdebug.Counters.Values()

	if delta := recorded1 - recorded0; delta < 5 {
		t.Errorf("recorded: want at least 5, have %d", delta)
	}
	if delta := rejected1 - rejected0; delta < 1 {
		t.Errorf("rejected: want at least 1, have %d", delta)
	}
	if delta := evicted1 - evicted0; delta < 2 {
		t.Errorf("evicted: want at least 2, have %d", delta)
	}
	if delta := cleared1 - cleared0; delta < 1 {
		t.Errorf("cleared: want at least 1, have %d", delta)
	}
	if delta := snapshots1 - snapshots0; delta < 1 {
		t.Errorf("snapshots: want at least 1, have %d", delta)
	}
}
