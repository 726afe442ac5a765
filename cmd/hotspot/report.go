package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/tracelab/hotspot"
	"github.com/tracelab/hotspot/hotweb"
	"github.com/tracelab/hotspot/internal/hotutil"
)

type reportConfig struct {
	*rootConfig

	label      string
	min        time.Duration
	limit      int
	outputJSON bool
}

func (cfg *reportConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "label" /* */, Value: ffval.NewValue(&cfg.label) /*           */, Usage: "only include records with this label"})
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "min" /*   */, Value: ffval.NewValue(&cfg.min) /*             */, Usage: "only include records of at least this duration"})
	fs.AddFlag(ff.FlagConfig{ShortName: 'n', LongName: "limit" /* */, Value: ffval.NewValueDefault(&cfg.limit, 0) /* */, Usage: "most recent records to fetch per instance, 0 for all"})
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "json" /*  */, Value: ffval.NewValue(&cfg.outputJSON) /*      */, Usage: "print the merged summary as JSON", NoDefault: true})
}

func (cfg *reportConfig) Exec(ctx context.Context, args []string) error {
	client := cfg.newHTTPClient()

	req := hotweb.SnapshotRequest{
		Label: cfg.label,
		Min:   cfg.min,
		Limit: cfg.limit,
	}

	var merged []hotspot.Record
	for _, uri := range cfg.uris {
		data, err := hotweb.NewClient(client, uri).Snapshot(ctx, req)
		if err != nil {
			return fmt.Errorf("%s: %w", uri, err)
		}
		cfg.debug.Printf("%s: %d records", uri, len(data.Records))
		merged = append(merged, data.Records...)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Start().Before(merged[j].Start())
	})

	summary := hotspot.Summarize(merged)

	cfg.info.Printf("instances: %d, records: %d, labels: %d", len(cfg.uris), summary.TotalCount, len(summary.Labels))

	if cfg.outputJSON {
		enc := json.NewEncoder(cfg.stdout)
		enc.SetIndent("", "    ")
		return enc.Encode(summary)
	}

	tw := tabwriter.NewWriter(cfg.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "LABEL\tCOUNT\tTOTAL\tMIN\tMAX\tMEAN\n")
	for _, ls := range summary.Labels {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			ls.Label,
			ls.Count,
			hotutil.HumanizeDuration(time.Duration(ls.Total)),
			hotutil.HumanizeDuration(time.Duration(ls.Min)),
			hotutil.HumanizeDuration(time.Duration(ls.Max)),
			hotutil.HumanizeDuration(time.Duration(ls.Mean)),
		)
	}
	return tw.Flush()
}
