package main

import (
	"io"
	"log"
	"net/http"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/peterbourgon/unixtransport"
)

type rootConfig struct {
	stdout io.Writer
	stderr io.Writer

	uris     []string
	logLevel string

	info, debug *log.Logger
}

func (cfg *rootConfig) registerBaseFlags(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'u',
		LongName:    "uri",
		Value:       ffval.NewUniqueList(&cfg.uris),
		Usage:       "server instance URI e.g. 'localhost:8080/hotspots' (repeatable)",
		Placeholder: "URI",
	})
	fs.AddFlag(ff.FlagConfig{
		ShortName:   'l',
		LongName:    "log",
		Value:       ffval.NewEnum(&cfg.logLevel, "info", "i", "debug", "d", "none", "n"),
		Usage:       "log level: i/info, d/debug, n/none",
		Placeholder: "LEVEL",
	})
}

// newHTTPClient returns a client that can also reach instances listening on
// unix sockets, via https+unix:// URIs.
func (cfg *rootConfig) newHTTPClient() *http.Client {
	transport := &http.Transport{}
	unixtransport.Register(transport)
	return &http.Client{Transport: transport}
}
