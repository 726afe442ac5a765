// Package ezhot provides an easy-to-use API for common hotspot use cases.
//
// The package maintains a process-wide default [hotspot.History], configured
// from the HOTSPOT_HISTORY_SIZE environment variable at startup. A malformed
// value panics at init, so a misconfigured capacity aborts the program rather
// than silently degrading to unbounded memory growth.
//
// Applications with more than one measurement domain, or which need explicit
// lifecycle control (e.g. for test isolation), should construct and pass
// their own histories via the hotspot package directly.
package ezhot

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tracelab/hotspot"
	"github.com/tracelab/hotspot/hotweb"
)

var defaultHistory = func() *hotspot.History {
	h, err := hotspot.NewHistoryFromEnv()
	if err != nil {
		panic(fmt.Sprintf("ezhot: %v", err))
	}
	return h
}()

// History returns the default history.
func History() *hotspot.History {
	return defaultHistory
}

// StartSpan begins measuring a region with the given label, recording into
// the default history.
func StartSpan(ctx context.Context, label string, opts ...hotspot.SpanOption) (context.Context, *hotspot.Span) {
	return defaultHistory.StartSpan(ctx, label, opts...)
}

// Record appends a pre-constructed record to the default history.
func Record(r hotspot.Record) error {
	return defaultHistory.Record(r)
}

// Snapshot returns an ordered copy of the default history's records.
func Snapshot() []hotspot.Record {
	return defaultHistory.Snapshot()
}

// Len returns the number of records in the default history.
func Len() int {
	return defaultHistory.Len()
}

// Clear empties the default history, typically between measurement sessions.
func Clear() {
	defaultHistory.Clear()
}

// Summary aggregates the default history's records by label.
func Summary() *hotspot.Summary {
	return hotspot.Summarize(defaultHistory.Snapshot())
}

// Handler returns an HTTP handler serving the default history.
func Handler() http.Handler {
	return hotweb.NewServer(defaultHistory)
}

// StreamHandler returns an HTTP handler streaming the default history's
// records as server-sent events.
func StreamHandler() http.Handler {
	return hotweb.NewStreamServer(defaultHistory)
}

// Middleware wraps an HTTP handler so that each request is measured as a span
// in the default history, labeled by the categorize function.
func Middleware(categorize func(*http.Request) string) func(http.Handler) http.Handler {
	return hotweb.Middleware(defaultHistory, categorize)
}
