// Package hotweb exposes a record history over HTTP, so that operators can
// inspect hotspots in a running program without attaching a debugger or
// trawling logs.
package hotweb

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tracelab/hotspot"
	"github.com/tracelab/hotspot/internal/hotdebug"
	"github.com/tracelab/hotspot/internal/hotutil"
)

// Server serves snapshots of a history as JSON.
//
// GET returns the current records and a per-label summary. Query parameters:
// label= selects a single label, min= drops records shorter than a duration,
// n= limits the response to the most recent n records, debug= includes the
// process-wide operation counters and the size of the returned records.
// DELETE clears the history, for use between measurement sessions.
type Server struct {
	h *hotspot.History
}

// NewServer returns a server for the given history.
func NewServer(h *hotspot.History) *Server {
	return &Server{
		h: h,
	}
}

// SnapshotData is the JSON form of a snapshot response.
type SnapshotData struct {
	Summary *hotspot.Summary `json:"summary"`
	Records []hotspot.Record `json:"records"`
	Debug   *DebugData       `json:"debug,omitempty"`
}

// DebugData reports process-wide operation counters and the approximate wire
// size of the records in the response. Requested with debug=1.
type DebugData struct {
	Recorded    uint64 `json:"recorded"`
	Rejected    uint64 `json:"rejected"`
	Evicted     uint64 `json:"evicted"`
	Cleared     uint64 `json:"cleared"`
	Snapshots   uint64 `json:"snapshots"`
	RecordsSize string `json:"records_size"`
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		s.serveSnapshot(w, r)
	case "DELETE":
		s.h.Clear()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "only GET and DELETE are supported", http.StatusMethodNotAllowed)
	}
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	var (
		urlquery = r.URL.Query()
		label    = urlquery.Get("label")
		min      = parseDefault(urlquery.Get("min"), time.ParseDuration, 0)
		limit    = parseDefault(urlquery.Get("n"), strconv.Atoi, 0)
		debug    = parseDefault(urlquery.Get("debug"), strconv.ParseBool, false)
	)

	records := s.h.Snapshot()

	if label != "" || min > 0 {
		filtered := records[:0]
		for _, rec := range records {
			if label != "" && rec.Label() != label {
				continue
			}
			if min > 0 && rec.Duration() < min {
				continue
			}
			filtered = append(filtered, rec)
		}
		records = filtered
	}

	// The limit keeps the most recent records, which live at the tail.
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}

	data := SnapshotData{
		Summary: hotspot.Summarize(records),
		Records: records,
	}

	if debug {
		data.Debug = newDebugData(records)
	}

	w.Header().Set("content-type", "application/json; charset=utf-8")

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}

func newDebugData(records []hotspot.Record) *DebugData {
	recorded, rejected, evicted, cleared, snapshots := hotdebug.Counters.Values()

	size := 0
	if buf, err := json.Marshal(records); err == nil {
		size = len(buf)
	}

	return &DebugData{
		Recorded:    recorded,
		Rejected:    rejected,
		Evicted:     evicted,
		Cleared:     cleared,
		Snapshots:   snapshots,
		RecordsSize: hotutil.HumanizeBytes(size),
	}
}

func parseDefault[T any](s string, parse func(string) (T, error), def T) T {
	if v, err := parse(s); err == nil {
		return v
	}
	return def
}
