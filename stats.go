package hotspot

import (
	"sort"
	"time"
)

// LabelStats aggregate the records sharing one label.
type LabelStats struct {
	Label string         `json:"label"`
	Count int            `json:"count"`
	Total DurationString `json:"total"`
	Min   DurationString `json:"min"`
	Max   DurationString `json:"max"`
	Mean  DurationString `json:"mean"`
}

// Summary aggregates a set of records by label, ordered hottest-first: the
// label with the largest total duration comes first.
type Summary struct {
	TotalCount int          `json:"total_count"`
	Oldest     time.Time    `json:"oldest,omitempty"`
	Newest     time.Time    `json:"newest,omitempty"`
	Labels     []LabelStats `json:"labels,omitempty"`
}

// Summarize computes a summary of the given records, typically a snapshot.
func Summarize(records []Record) *Summary {
	s := &Summary{
		TotalCount: len(records),
	}

	byLabel := map[string]*LabelStats{}
	for _, r := range records {
		ls, ok := byLabel[r.Label()]
		if !ok {
			ls = &LabelStats{
				Label: r.Label(),
				Min:   DurationString(r.Duration()),
				Max:   DurationString(r.Duration()),
			}
			byLabel[r.Label()] = ls
		}

		d := DurationString(r.Duration())
		ls.Count++
		ls.Total += d
		if d < ls.Min {
			ls.Min = d
		}
		if d > ls.Max {
			ls.Max = d
		}

		started := r.Start()
		if s.Oldest.IsZero() || started.Before(s.Oldest) {
			s.Oldest = started
		}
		if s.Newest.IsZero() || started.After(s.Newest) {
			s.Newest = started
		}
	}

	for _, ls := range byLabel {
		ls.Mean = DurationString(time.Duration(ls.Total) / time.Duration(ls.Count))
		s.Labels = append(s.Labels, *ls)
	}

	sort.Slice(s.Labels, func(i, j int) bool {
		if s.Labels[i].Total != s.Labels[j].Total {
			return s.Labels[i].Total > s.Labels[j].Total
		}
		return s.Labels[i].Label < s.Labels[j].Label
	})

	return s
}
