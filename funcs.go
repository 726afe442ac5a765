package hotspot

import (
	"context"
)

type historyContextKey struct{}

var historyContextVal historyContextKey

// ToContext injects the given history into the context, returning a new
// context. If the context already contained a history, it becomes shadowed by
// the new one. Passing the history through the context keeps instrumentation
// call sites ergonomic while leaving the history's lifecycle owned by whoever
// constructed it.
func ToContext(ctx context.Context, h *History) context.Context {
	return context.WithValue(ctx, historyContextVal, h)
}

// FromContext returns the history in the context, if it exists.
func FromContext(ctx context.Context) (*History, bool) {
	h, ok := ctx.Value(historyContextVal).(*History)
	return h, ok
}

//
//
//

type depthContextKey struct{}

var depthContextVal depthContextKey

// depthFromContext returns the span nesting depth in the context, zero if
// none has been set.
func depthFromContext(ctx context.Context) int {
	d, _ := ctx.Value(depthContextVal).(int)
	return d
}

func withDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, depthContextVal, depth)
}
