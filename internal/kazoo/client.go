// SPDX-License-Identifier: MIT

// Package kazoo is a client for the Crossbar list APIs of a Kazoo account.
// All list resources are cursor-paged; ListRecordings, ListCDRs, ListDevices
// and ListUsers drain every page before returning.
package kazoo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kazlabs/kzrec/internal/log"
)

const maxBodyBytes = 16 << 20

// Options configures a Client.
type Options struct {
	BaseURL   string
	AccountID string
	AuthToken string
	PageSize  int           // items requested per page, 0 uses the server default
	Timeout   time.Duration // per-request timeout, 0 means 30s
	RPS       float64       // page request pacing, 0 = unlimited
}

// Client talks to a single Kazoo account.
type Client struct {
	base      string
	accountID string
	token     string
	pageSize  int
	http      *http.Client
	limiter   *rate.Limiter
}

// New creates a Client for the given account.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		base:      strings.TrimRight(opts.BaseURL, "/"),
		accountID: opts.AccountID,
		token:     opts.AuthToken,
		pageSize:  opts.PageSize,
		http:      &http.Client{Timeout: timeout},
	}
	if opts.RPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	return c
}

// get performs a single GET request and maps failures onto the sentinel
// error taxonomy.
func (c *Client) get(ctx context.Context, path, operation string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{Sentinel: ErrTimeout, Operation: operation, Err: err}
		}
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &APIError{Sentinel: ErrUpstreamBadResponse, Operation: operation, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		sentinel := ErrUpstreamUnavailable
		if errors.Is(err, context.DeadlineExceeded) {
			sentinel = ErrTimeout
		}
		logger := c.loggerFor(ctx)
		logger.Error().Err(err).Str("operation", operation).Msg("request failed")
		return nil, &APIError{Sentinel: sentinel, Operation: operation, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &APIError{Sentinel: ErrUpstreamBadResponse, Operation: operation, Status: res.StatusCode, Err: err}
	}

	switch {
	case res.StatusCode == http.StatusOK:
		return body, nil
	case res.StatusCode == http.StatusNotFound:
		return nil, &APIError{Sentinel: ErrNotFound, Operation: operation, Status: res.StatusCode}
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, &APIError{Sentinel: ErrForbidden, Operation: operation, Status: res.StatusCode}
	case res.StatusCode >= 500:
		return nil, &APIError{Sentinel: ErrUpstreamError, Operation: operation, Status: res.StatusCode, Body: truncate(body)}
	default:
		return nil, &APIError{Sentinel: ErrUpstreamBadResponse, Operation: operation, Status: res.StatusCode, Body: truncate(body)}
	}
}

func (c *Client) loggerFor(ctx context.Context) zerolog.Logger {
	return log.WithComponentFromContext(ctx, "kazoo")
}

func truncate(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return fmt.Sprintf("%s... (%d bytes)", body[:limit], len(body))
	}
	return string(body)
}
