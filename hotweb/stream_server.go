package hotweb

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/bernerdschaefer/eventsource"
	"github.com/tracelab/hotspot"
)

// StreamServer streams records to clients as server-sent events, as they are
// recorded in the history. Each record is delivered as an event of type
// "record". Clients must accept text/event-stream.
type StreamServer struct {
	h *hotspot.History
}

// NewStreamServer returns a stream server for the given history.
func NewStreamServer(h *hotspot.History) *StreamServer {
	return &StreamServer{
		h: h,
	}
}

// ServeHTTP implements [http.Handler].
func (s *StreamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "only GET is supported", http.StatusMethodNotAllowed)
		return
	}

	if !requestExplicitlyAccepts(r, "text/event-stream") {
		http.Error(w, "request must Accept: text/event-stream", http.StatusPreconditionRequired)
		return
	}

	var (
		ctx = r.Context()
		buf = parseDefault(r.URL.Query().Get("buf"), strconv.Atoi, 100)
		ch  = make(chan hotspot.Record, buf)
	)

	go func() {
		// Returns when the request context is canceled.
		s.h.Subscribe(ctx, ch)
	}()

	eventsource.Handler(func(lastID string, encoder *eventsource.Encoder, stop <-chan bool) {
		encoder.Encode(eventsource.Event{Type: "init"})

		var seq uint64
		for {
			select {
			case rec := <-ch:
				data, err := json.Marshal(rec)
				if err != nil {
					continue
				}
				seq++
				if err := encoder.Encode(eventsource.Event{
					Type: "record",
					ID:   strconv.FormatUint(seq, 10),
					Data: data,
				}); err != nil {
					return
				}

			case <-ctx.Done():
				return

			case <-stop:
				return
			}
		}
	}).ServeHTTP(w, r)
}

func requestExplicitlyAccepts(r *http.Request, contentType string) bool {
	for _, accept := range r.Header.Values("accept") {
		for _, part := range strings.Split(accept, ",") {
			mediatype := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
			if strings.EqualFold(mediatype, contentType) {
				return true
			}
		}
	}
	return false
}
