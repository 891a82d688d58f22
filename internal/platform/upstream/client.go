// Package upstream provides the typed HTTP client for the TalentHub
// platform API that the console fronts.
package upstream

import (
	"bytes"
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
)

// Observer receives the outcome of each attempted upstream call: "ok" for a
// decoded 2xx response, "rejected" for any other status, "error" when no
// usable response arrived.
type Observer func(outcome string)

// Client talks to the upstream platform API.
type Client struct {
	baseURL string
	http    *http.Client
	observe Observer
}

// Option configures a Client.
type Option func(*Client)

// WithObserver registers fn to be notified of every upstream call outcome.
func WithObserver(fn Observer) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New constructs a Client for the given base URL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) outcome(label string) {
	if c.observe != nil {
		c.observe(label)
	}
}

// APIError is a non-2xx response from the upstream API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream: status %d", e.Status)
	}
	return fmt.Sprintf("upstream: status %d: %s", e.Status, e.Message)
}

// StatusOf returns the upstream HTTP status carried by err, or 0 when err is
// not an APIError.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// errorEnvelope is the upstream error body shape: {"error":{"message":"..."}}.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Request describes one upstream call.
type Request struct {
	Method string
	Path   string
	Token  string
	Query  url.Values
	Body   any
	Out    any
}

// Do performs an upstream request, decoding a 2xx body into req.Out and any
// other response into an *APIError.
func (c *Client) Do(ctx context.Context, req Request) error {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("upstream: encode body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return fmt.Errorf("upstream: build request: %w", err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	res, err := c.http.Do(httpReq)
	if err != nil {
		c.outcome("error")
		return fmt.Errorf("upstream: %s %s: %w", req.Method, req.Path, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.outcome("rejected")
		apiErr := &APIError{Status: res.StatusCode}
		var envelope errorEnvelope
		if err := json.NewDecoder(res.Body).Decode(&envelope); err == nil {
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if req.Out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		c.outcome("ok")
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(req.Out); err != nil {
		c.outcome("error")
		return fmt.Errorf("upstream: decode %s %s: %w", req.Method, req.Path, err)
	}
	c.outcome("ok")
	return nil
}

// PageMeta is the paging block returned by upstream list endpoints.
type PageMeta struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListEnvelope is the wire shape of upstream list endpoints.
type ListEnvelope[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// FetchPage retrieves a single page from a list endpoint.
func FetchPage[T any](ctx context.Context, c *Client, token, path string, query url.Values, page int) (ListEnvelope[T], error) {
	q := url.Values{}
	for key, vals := range query {
		q[key] = vals
	}
	q.Set("page", strconv.Itoa(page))

	var env ListEnvelope[T]
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Token: token, Query: q, Out: &env})
	return env, err
}

// CollectPages walks every page of a list endpoint and returns the combined
// items. Upstream list screens page at 20-50 rows; the console aggregates so
// its own views and reports see the full result set.
func CollectPages[T any](ctx context.Context, c *Client, token, path string, query url.Values) ([]T, error) {
	var all []T
	page := 1
	for {
		env, err := FetchPage[T](ctx, c, token, path, query, page)
		if err != nil {
			return nil, err
		}
		all = append(all, env.Data...)
		if env.Meta.TotalPages <= 0 || page >= env.Meta.TotalPages {
			return all, nil
		}
		page++
	}
}
