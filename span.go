package hotspot

import (
	"context"
	"sync"
	"time"
)

// Span measures one traced region of code. A span captures its start time
// when created, and produces a [Record] in its history when finished.
//
// Typical usage is as follows.
//
//	func load(ctx context.Context) error {
//	    ctx, sp := hotspot.StartSpan(ctx, "load")
//	    defer sp.Finish()
//	    ...
//	}
//
// The deferred Finish runs on every exit path, including early returns and
// panic unwinding, so the region is recorded no matter how it terminates.
//
// A span belongs to the goroutine that started it, and should not be shared.
// Concurrent regions should each start their own span.
type Span struct {
	history  *History
	label    string
	begin    time.Time
	depth    int
	producer string

	once sync.Once
	err  error
}

// SpanOption sets optional metadata on the records a span produces.
type SpanOption func(*Span)

// SpanProducer sets the producer identifier on the span's record.
func SpanProducer(producer string) SpanOption {
	return func(s *Span) { s.producer = producer }
}

// StartSpan begins measuring a region with the given label, recording into
// the history carried by the context (see [ToContext]). If the context has no
// history, the span is detached: it still measures, but Finish stores nothing
// and returns nil. The returned context carries an incremented nesting depth
// for child spans.
func StartSpan(ctx context.Context, label string, opts ...SpanOption) (context.Context, *Span) {
	h, _ := FromContext(ctx)
	return newSpan(ctx, h, label, opts...)
}

// StartSpan begins measuring a region with the given label, recording into
// this history. The returned context carries the history and an incremented
// nesting depth, so child spans started via the package-level [StartSpan]
// record into the same history.
func (h *History) StartSpan(ctx context.Context, label string, opts ...SpanOption) (context.Context, *Span) {
	return newSpan(ctx, h, label, opts...)
}

func newSpan(ctx context.Context, h *History, label string, opts ...SpanOption) (context.Context, *Span) {
	if h != nil {
		ctx = ToContext(ctx, h)
	}

	depth := depthFromContext(ctx)

	s := &Span{
		history: h,
		label:   label,
		begin:   time.Now(),
		depth:   depth,
	}

	for _, opt := range opts {
		opt(s)
	}

	return withDepth(ctx, depth+1), s
}

// Label returns the current label of the span.
func (s *Span) Label() string { return s.label }

// SetLabel replaces the label the span was started with, for cases where the
// final label is only known as the region completes, e.g. an HTTP response
// status. Calling SetLabel after Finish has no effect on the recorded span.
// Like the span itself, SetLabel is not safe for concurrent use.
func (s *Span) SetLabel(label string) { s.label = label }

// Start returns the time the span began measuring.
func (s *Span) Start() time.Time { return s.begin }

// Finish stops the measurement, constructs the record, and appends it to the
// span's history. Only the first call has any effect; subsequent calls return
// the result of the first. The returned error reflects record validation or
// a closed history, and is safe to ignore at call sites that simply defer.
func (s *Span) Finish() error {
	s.once.Do(func() {
		duration := time.Since(s.begin)

		if s.history == nil {
			return
		}

		opts := []RecordOption{WithDepth(s.depth)}
		if s.producer != "" {
			opts = append(opts, WithProducer(s.producer))
		}

		r, err := NewRecord(s.label, s.begin, duration, opts...)
		if err != nil {
			s.err = err
			return
		}

		s.err = s.history.Record(r)
	})

	return s.err
}
