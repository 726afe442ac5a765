package hotweb

import (
	"fmt"
	"net/http"

	"github.com/tracelab/hotspot"
)

// Middleware decorates an HTTP handler so that each request is measured as a
// span in the given history. The span label is the categorize function's
// result, typically something like method + route, suffixed with the response
// status code once the request completes.
//
// This is meant as a convenience for simple use cases. Users who want
// different behavior should implement their own middlewares.
func Middleware(
	h *hotspot.History,
	categorize func(*http.Request) string,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, sp := h.StartSpan(r.Context(), categorize(r))

			// The interceptor observes the status code for the final label,
			// and preserves Flush for streaming responses.
			iw := newInterceptor(w)
			defer func() {
				sp.SetLabel(fmt.Sprintf("%s -> %d", sp.Label(), iw.Code()))
				sp.Finish()
			}()

			r = r.WithContext(ctx)
			next.ServeHTTP(iw, r)
		})
	}
}

//
//
//

type interceptor struct {
	http.ResponseWriter

	flush func()
	code  int
}

func newInterceptor(w http.ResponseWriter) *interceptor {
	flush := func() {}
	if f, ok := w.(http.Flusher); ok {
		flush = f.Flush
	}
	return &interceptor{ResponseWriter: w, flush: flush}
}

func (i *interceptor) WriteHeader(code int) {
	if i.code == 0 {
		i.code = code
	}
	i.ResponseWriter.WriteHeader(code)
}

func (i *interceptor) Code() int {
	if i.code == 0 {
		return http.StatusOK
	}
	return i.code
}

func (i *interceptor) Flush() {
	i.flush()
}
