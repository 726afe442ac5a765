// Package hotspot provides lightweight call tracing, for finding the slow code
// paths in a running program.
//
// The basic idea is to instrument interesting regions of code with a [Span],
// which measures how long the region takes to execute. When a span finishes,
// it produces an immutable [Record], which is appended to a [History]. The
// history retains the most recent records, up to an optional capacity: once
// that capacity is reached, the oldest records are evicted first. Operators
// inspect the history — via [History.Snapshot], [Summarize], or the HTTP
// interface in [github.com/tracelab/hotspot/hotweb] — to find hotspots, the
// regions with disproportionately high durations.
//
// Because the history lives entirely in process memory, all data is lost when
// the process exits. This is deliberate: hotspot is a diagnostic tool for
// recent behavior, not a sampling profiler, and not a distributed tracer.
//
// Recording is safe for concurrent producers. Records from a single producer
// appear in the history in the order they were recorded. Records from
// different concurrent producers appear in the order in which their Record
// calls won the history's critical section, which may differ from the order of
// their start timestamps.
//
// Most applications can instead use [github.com/tracelab/hotspot/ezhot], which
// maintains a process-wide default history configured from the environment.
package hotspot
