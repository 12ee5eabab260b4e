// Package feed reads the CampusGroups events feed.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/beartracks/beartracks/pkg/config"
	"github.com/beartracks/beartracks/pkg/version"
	"github.com/go-resty/resty/v2"
	"github.com/google/go-querystring/query"
)

var (
	// ErrTransport is returned when the feed cannot be reached or answers
	// with a non-2xx status.
	ErrTransport = errors.New("feed transport error")
	// ErrDecode is returned when the feed body is not a JSON array of
	// objects.
	ErrDecode = errors.New("feed decode error")
)

// Query is the query string sent to the feed.
type Query struct {
	Range              int    `url:"range"`
	Limit              int    `url:"limit"`
	Filter4Contains    string `url:"filter4_contains"`
	Filter4NotContains string `url:"filter4_notcontains"`
	Order              string `url:"order"`
	SearchWord         string `url:"search_word"`
}

// DefaultQuery returns the query used by the campus mobile app.
func DefaultQuery(limit int) Query {
	return Query{
		Range:              0,
		Limit:              limit,
		Filter4Contains:    "OR",
		Filter4NotContains: "OR",
		Order:              "undefined",
	}
}

// Client fetches the events feed. It keeps no state between calls.
type Client struct {
	http    *resty.Client
	url     string
	query   Query
	idField string
}

// NewClient returns a feed client for cfg.
func NewClient(cfg config.FeedConfig) *Client {
	c := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", version.UserAgent())

	return &Client{
		http:    c,
		url:     cfg.URL,
		query:   DefaultQuery(cfg.Limit),
		idField: cfg.IDField,
	}
}

// IDField returns the record field holding the upstream id.
func (c *Client) IDField() string {
	return c.idField
}

// Fetch requests the feed once and returns a cursor over its records. The
// caller must close the cursor.
func (c *Client) Fetch(ctx context.Context) (*Records, error) {
	v, err := query.Values(c.query)
	if err != nil {
		return nil, fmt.Errorf("encode feed query: %w", err)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(v).
		SetDoNotParseResponse(true).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		body.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode())
	}

	return NewRecords(body)
}

// Records is a cursor over the records of one feed response. Records are
// decoded one at a time as Next is called.
type Records struct {
	body io.ReadCloser
	dec  *json.Decoder
	cur  Record
	err  error
	done bool
}

// NewRecords returns a cursor over the JSON array read from body. It takes
// ownership of body.
func NewRecords(body io.ReadCloser) (*Records, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		body.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		body.Close() //nolint:errcheck
		return nil, fmt.Errorf("%w: expected a JSON array, got %v", ErrDecode, tok)
	}

	return &Records{body: body, dec: dec}, nil
}

// Next advances to the next record. It returns false at the end of the
// feed or on error; check Err to tell them apart.
func (r *Records) Next() bool {
	if r.done || r.err != nil {
		return false
	}

	if !r.dec.More() {
		if _, err := r.dec.Token(); err != nil {
			r.err = fmt.Errorf("%w: %w", ErrDecode, err)
		}
		r.done = true
		return false
	}

	var rec Record
	if err := r.dec.Decode(&rec); err != nil {
		r.err = fmt.Errorf("%w: %w", ErrDecode, err)
		return false
	}

	r.cur = rec
	return true
}

// Record returns the current record.
func (r *Records) Record() Record {
	return r.cur
}

// Err returns the error that stopped iteration, if any.
func (r *Records) Err() error {
	return r.err
}

// Close releases the response body.
func (r *Records) Close() error {
	return r.body.Close()
}
