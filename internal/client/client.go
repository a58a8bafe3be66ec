package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dlex-orders/internal/model"
)

// DefaultBaseURL is the site root the browser pages are served from.
const DefaultBaseURL = "http://localhost:8080/dlex/"

// Paths of the dlex endpoints, relative to the base URL.
const (
	PathGetOrder  = "getorder"
	PathAddOrder  = "addorder"
	PathOperation = "operation"
	PathDelete    = "delete"
)

const maxRedirects = 10

// Client issues single JSON round trips against the dlex endpoints.
// The HTTP status is never inspected; only the decoded body matters.
type Client struct {
	base       *url.URL
	httpClient *http.Client
}

type Option func(*Client)

// WithTimeout bounds every round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{base: base, httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient.CheckRedirect = stripReferer
	return c, nil
}

// BaseURL returns the normalized base every path is resolved against.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// PostData sends payload as JSON and decodes the JSON response into out.
func (c *Client) PostData(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", path, err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), out)
}

// GetData fetches path and decodes the JSON response into out.
func (c *Client) GetData(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) ListOrders(ctx context.Context) (model.Envelope, error) {
	var env model.Envelope
	err := c.GetData(ctx, PathGetOrder, &env)
	return env, err
}

func (c *Client) AddOrder(ctx context.Context, order model.Order) (model.Envelope, error) {
	var env model.Envelope
	err := c.PostData(ctx, PathAddOrder, order, &env)
	return env, err
}

// Operation posts the pair in the given order; the server updates a first.
func (c *Client) Operation(ctx context.Context, a, b model.OperationOrder) (model.Envelope, error) {
	var env model.Envelope
	err := c.PostData(ctx, PathOperation, []model.OperationOrder{a, b}, &env)
	return env, err
}

func (c *Client) DeleteOrders(ctx context.Context) (model.Envelope, error) {
	var env model.Envelope
	err := c.PostData(ctx, PathDelete, struct{}{}, &env)
	return env, err
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	ref, err := url.Parse(path)
	if err != nil {
		return fmt.Errorf("parse path %q: %w", path, err)
	}
	target := c.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	applyPolicy(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}
	// The whole body must be one JSON value; trailing data is rejected.
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func applyPolicy(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	setFetchOptions(req)
}

func stripReferer(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}
	req.Header.Del("Referer")
	return nil
}
