package hotspot

import "errors"

var (
	// ErrInvalidRecord is returned when a record fails basic validity checks,
	// e.g. an empty label or a negative duration. It indicates a bug in the
	// instrumentation producing the record, not a transient failure.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidConfig is returned when a history capacity is malformed or
	// zero. Callers are expected to fail fast rather than fall back to an
	// unbounded history, which would mask the configuration mistake.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrHistoryClosed is returned by mutations on a closed history.
	ErrHistoryClosed = errors.New("history closed")
)
