package hotspot

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var recordIDEntropy = ulid.DefaultEntropy()

// Record is an immutable description of one completed traced region: what ran,
// when it started, and how long it took. Records are constructed by the
// instrumentation that measured the region — typically a [Span] — and are
// never modified after construction.
type Record struct {
	id       string
	label    string
	start    time.Time
	duration time.Duration
	depth    int
	producer string
}

// RecordOption sets optional metadata on a record at construction.
type RecordOption func(*Record)

// WithDepth sets the nesting depth of the record, relative to other traced
// regions active on the same logical call stack. Depth is display metadata
// only, no invariant depends on it.
func WithDepth(depth int) RecordOption {
	return func(r *Record) { r.depth = depth }
}

// WithProducer sets an identifier for the goroutine, worker, or task that
// produced the record.
func WithProducer(producer string) RecordOption {
	return func(r *Record) { r.producer = producer }
}

// NewRecord constructs a record for a traced region with the given label,
// which started at the given time and ran for the given duration. The label
// must be non-empty, and the duration must be non-negative: a negative
// duration means the instrumentation supplied timestamps out of order, which
// is a bug worth surfacing rather than clamping away. Validation failures are
// reported as errors wrapping [ErrInvalidRecord].
func NewRecord(label string, start time.Time, duration time.Duration, opts ...RecordOption) (Record, error) {
	if strings.TrimSpace(label) == "" {
		return Record{}, fmt.Errorf("%w: empty label", ErrInvalidRecord)
	}

	if duration < 0 {
		return Record{}, fmt.Errorf("%w: negative duration (%s)", ErrInvalidRecord, duration)
	}

	r := Record{
		id:       ulid.MustNew(ulid.Timestamp(start), recordIDEntropy).String(),
		label:    label,
		start:    start,
		duration: duration,
	}

	for _, opt := range opts {
		opt(&r)
	}

	return r, nil
}

// ID returns the unique identifier of the record, a ULID derived from the
// start timestamp.
func (r Record) ID() string { return r.id }

// Label returns the identifier of the traced region.
func (r Record) Label() string { return r.label }

// Start returns the time the traced region began.
func (r Record) Start() time.Time { return r.start }

// Duration returns the elapsed time of the traced region.
func (r Record) Duration() time.Duration { return r.duration }

// Depth returns the nesting depth of the traced region, zero if not set.
func (r Record) Depth() int { return r.depth }

// Producer returns the identifier of the producer, empty if not set.
func (r Record) Producer() string { return r.producer }

// String returns a single-line summary of the record.
func (r Record) String() string {
	return fmt.Sprintf("%s [%s]", r.label, r.duration)
}

func (r Record) validate() error {
	if strings.TrimSpace(r.label) == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidRecord)
	}
	if r.duration < 0 {
		return fmt.Errorf("%w: negative duration (%s)", ErrInvalidRecord, r.duration)
	}
	return nil
}

//
//
//

// recordJSON is the wire form of a record. Duration is rendered as a string
// rather than int64 nanoseconds.
type recordJSON struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Start    time.Time      `json:"start"`
	Duration DurationString `json:"duration"`
	Depth    int            `json:"depth,omitempty"`
	Producer string         `json:"producer,omitempty"`
}

// MarshalJSON implements [json.Marshaler].
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		ID:       r.id,
		Label:    r.label,
		Start:    r.start,
		Duration: DurationString(r.duration),
		Depth:    r.depth,
		Producer: r.producer,
	})
}

// UnmarshalJSON implements [json.Unmarshaler]. The decoded record is validated
// with the same rules as [NewRecord].
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	decoded := Record{
		id:       w.ID,
		label:    w.Label,
		start:    w.Start,
		duration: time.Duration(w.Duration),
		depth:    w.Depth,
		producer: w.Producer,
	}

	if err := decoded.validate(); err != nil {
		return err
	}

	*r = decoded
	return nil
}

//
//
//

// DurationString is a [time.Duration] that JSON marshals as a string rather
// than int64 nanoseconds.
type DurationString time.Duration

// MarshalJSON implements [json.Marshaler].
func (d DurationString) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements [json.Unmarshaler].
func (d *DurationString) UnmarshalJSON(data []byte) error {
	if dur, err := time.ParseDuration(strings.Trim(string(data), `"`)); err == nil {
		*d = DurationString(dur)
		return nil
	}
	return json.Unmarshal(data, (*time.Duration)(d))
}
