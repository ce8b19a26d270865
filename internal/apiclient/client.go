// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package apiclient talks to the ArtSpace REST backend on behalf of one
// console visitor. Each Client carries its own cookie jar so the backend's
// session cookie never leaks between visitors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody bounds how much of an error response is kept.
const maxErrorBody = 64 << 10

// Config configures a Factory.
type Config struct {
	BaseURL string        // Backend origin plus optional path prefix
	Timeout time.Duration // Per-request timeout; 0 relies on the request context
	Logger  *slog.Logger
	// Transport overrides the shared transport, mainly for tests.
	Transport http.RoundTripper
}

// Factory builds per-visitor clients that share one transport.
type Factory struct {
	base      *url.URL
	timeout   time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
}

// NewFactory validates cfg and returns a Factory.
func NewFactory(cfg Config) (*Factory, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("api base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing api base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", base.Scheme)
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Factory{
		base:      base,
		timeout:   cfg.Timeout,
		transport: transport,
		logger:    logger,
	}, nil
}

// BaseURL returns the backend base URL.
func (f *Factory) BaseURL() string {
	return f.base.String()
}

// New returns a client with an empty cookie jar.
func (f *Factory) New() *Client {
	jar := newSwapJar()
	return &Client{
		base:   f.base,
		jar:    jar,
		logger: f.logger,
		http: &http.Client{
			Transport: f.transport,
			Timeout:   f.timeout,
			Jar:       jar,
		},
	}
}

// Client issues JSON requests against the backend with the visitor's cookies.
type Client struct {
	base   *url.URL
	jar    *swapJar
	http   *http.Client
	logger *slog.Logger
}

// Get decodes the JSON response of GET path into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends in as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, query url.Values, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, query, in, out)
}

// Put sends in as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, query url.Values, in, out any) error {
	return c.Do(ctx, http.MethodPut, path, query, in, out)
}

// Delete issues DELETE path.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do performs one request. A nil out discards the response body, which is
// how endpoints answering with plain text are handled. Non-2xx responses
// are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.endpoint(path, query)

	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("creating %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(method, path, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
