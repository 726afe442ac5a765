package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/tracelab/hotspot"
	"github.com/tracelab/hotspot/hotweb"
	"github.com/tracelab/hotspot/internal/hotutil"
)

type streamConfig struct {
	*rootConfig

	recvBuf       int
	retryInterval time.Duration
	outputJSON    bool

	records chan hotspot.Record
}

func (cfg *streamConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "recv-buffer" /*    */, Value: ffval.NewValueDefault(&cfg.recvBuf, 100) /*                 */, Usage: "local receive buffer size"})
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "retry-interval" /* */, Value: ffval.NewValueDefault(&cfg.retryInterval, 1*time.Second) /* */, Usage: "connection retry interval"})
	fs.AddFlag(ff.FlagConfig{ShortName: 0x0, LongName: "json" /*           */, Value: ffval.NewValue(&cfg.outputJSON) /*                          */, Usage: "print records as NDJSON", NoDefault: true})
}

func (cfg *streamConfig) Exec(ctx context.Context, args []string) error {
	cfg.records = make(chan hotspot.Record, cfg.recvBuf)

	cfg.info.Printf("streaming from %d instance(s)", len(cfg.uris))
	cfg.debug.Printf("recv buffer: %d", cfg.recvBuf)
	cfg.debug.Printf("retry interval: %s", cfg.retryInterval)

	var g run.Group

	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return cfg.runStreams(ctx)
		}, func(error) {
			cancel()
		})
	}

	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return cfg.writeRecords(ctx)
		}, func(error) {
			cancel()
		})
	}

	{
		g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))
	}

	return g.Run()
}

func (cfg *streamConfig) runStreams(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	for _, uri := range cfg.uris {
		wg.Add(1)
		go func(uri string) {
			defer wg.Done()
			cfg.runStream(ctx, uri)
		}(uri)
	}

	cfg.debug.Printf("started streams")
	<-ctx.Done()
	cfg.debug.Printf("stopping streams...")
	cancel()
	wg.Wait()
	cfg.debug.Printf("streams finished")
	return nil
}

func (cfg *streamConfig) runStream(ctx context.Context, uri string) {
	cfg.debug.Printf("%s: starting", uri)
	defer cfg.debug.Printf("%s: stopped", uri)

	sc := &hotweb.StreamClient{
		URI:           uri,
		RetryInterval: cfg.retryInterval,
	}

	for ctx.Err() == nil {
		subctx, cancel := context.WithCancel(ctx)                 // per-iteration sub-context
		errc := make(chan error, 1)                               // per-iteration stream result
		go func() { errc <- sc.Stream(subctx, cfg.records) }()    // returns only on terminal errors

		select {
		case <-subctx.Done():
			cfg.debug.Printf("%s: stream done", uri) // parent context was canceled, so we should stop
			cancel()                                 // signal the Stream goroutine to stop
			<-errc                                   // wait for it to stop
			return                                   // we're done

		case err := <-errc:
			cfg.debug.Printf("%s: stream error, will retry (%v)", uri, err)
			cancel()
			contextSleep(ctx, cfg.retryInterval)
			continue
		}
	}
}

func (cfg *streamConfig) writeRecords(ctx context.Context) error {
	var encode func(r hotspot.Record) error
	if cfg.outputJSON {
		enc := json.NewEncoder(cfg.stdout)
		encode = func(r hotspot.Record) error { return enc.Encode(r) }
	} else {
		encode = func(r hotspot.Record) error {
			_, err := fmt.Fprintf(cfg.stdout, "%s %s [%s]\n",
				r.Start().Format(time.RFC3339Nano),
				r.Label(),
				hotutil.HumanizeDuration(r.Duration()),
			)
			return err
		}
	}

	for {
		select {
		case r := <-cfg.records:
			if err := encode(r); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func contextSleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
