package hotweb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bernerdschaefer/eventsource"
	"github.com/tracelab/hotspot"
)

// HTTPClient models a concrete http.Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

var _ HTTPClient = (*http.Client)(nil)

// SnapshotRequest selects a subset of a remote history.
type SnapshotRequest struct {
	Label string        // exact label match, empty for all
	Min   time.Duration // minimum duration, zero for all
	Limit int           // most recent n records, zero for all
}

// Client fetches snapshots from a [Server].
type Client struct {
	client HTTPClient
	uri    string
}

// NewClient returns a client calling the provided URI, which is assumed to be
// handled by an instance of the server also defined in this package.
func NewClient(client HTTPClient, uri string) *Client {
	if !strings.HasPrefix(uri, "http") {
		uri = "http://" + uri
	}
	return &Client{
		client: client,
		uri:    uri,
	}
}

// Snapshot fetches the records matching the request from the remote server.
func (c *Client) Snapshot(ctx context.Context, req SnapshotRequest) (*SnapshotData, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create HTTP request: %w", err)
	}

	urlquery := httpReq.URL.Query()
	if req.Label != "" {
		urlquery.Set("label", req.Label)
	}
	if req.Min > 0 {
		urlquery.Set("min", req.Min.String())
	}
	if req.Limit > 0 {
		urlquery.Set("n", strconv.Itoa(req.Limit))
	}
	httpReq.URL.RawQuery = urlquery.Encode()

	httpRes, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute HTTP request: %w", redactURL(err))
	}
	defer func() {
		io.Copy(io.Discard, httpRes.Body)
		httpRes.Body.Close()
	}()

	if httpRes.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remote status code %d", httpRes.StatusCode)
	}

	var data SnapshotData
	if err := json.NewDecoder(httpRes.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &data, nil
}

// Clear empties the remote history.
func (c *Client) Clear(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, "DELETE", c.uri, nil)
	if err != nil {
		return fmt.Errorf("create HTTP request: %w", err)
	}

	httpRes, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("execute HTTP request: %w", redactURL(err))
	}
	defer func() {
		io.Copy(io.Discard, httpRes.Body)
		httpRes.Body.Close()
	}()

	if httpRes.StatusCode != http.StatusNoContent {
		return fmt.Errorf("remote status code %d", httpRes.StatusCode)
	}

	return nil
}

func redactURL(err error) error {
	if urlErr := (&url.Error{}); errors.As(err, &urlErr) {
		err = fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

//
//
//

// StreamClient consumes the server-sent event stream produced by a
// [StreamServer], delivering records to a channel.
type StreamClient struct {
	// URI of the remote stream server. Required.
	URI string

	// RetryInterval between reconnect attempts. Default 1s, max 60s.
	RetryInterval time.Duration

	// Buffer is the value of the buf parameter sent to the remote server.
	// Default 100.
	Buffer int
}

func (c *StreamClient) initialize() {
	if def, max := 1*time.Second, 60*time.Second; c.RetryInterval == 0 {
		c.RetryInterval = def
	} else if c.RetryInterval > max {
		c.RetryInterval = max
	}

	if c.Buffer <= 0 {
		c.Buffer = 100
	}
}

// Stream records from the remote server to the provided channel. The stream
// stops when the context is canceled, or when a non-recoverable error occurs.
func (c *StreamClient) Stream(ctx context.Context, ch chan<- hotspot.Record) error {
	c.initialize()

	// Explicitly don't provide the context to the request: EventSource treats
	// context cancelation as a recoverable error, and re-uses the request
	// across reconnect attempts.
	uri, err := url.Parse(c.URI)
	if err != nil {
		return err
	}

	query := uri.Query()
	query.Set("buf", strconv.Itoa(c.Buffer))
	uri.RawQuery = query.Encode()

	req, err := http.NewRequest("GET", uri.String(), nil)
	if err != nil {
		return err
	}

	es := eventsource.New(req, c.RetryInterval)
	go func() {
		<-ctx.Done()
		es.Close()
	}()

	for {
		ev, err := es.Read()
		if errors.Is(err, eventsource.ErrClosed) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read server-sent event: %w", err)
		}

		switch ev.Type {
		case "init":
			// New or re-established connection.

		case "record":
			var rec hotspot.Record
			if err := json.Unmarshal(ev.Data, &rec); err != nil {
				return fmt.Errorf("decode record event: %w", err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ch <- rec:
				// OK
			}

		default:
			// Ignore unknown event types.
		}
	}
}
