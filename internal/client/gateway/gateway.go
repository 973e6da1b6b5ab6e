// Package gateway is the client's HTTP pipeline to the MyDayLog API.
package gateway

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

	"golang.org/x/sync/singleflight"
)

// DefaultMessage is reported when an error response carries no message.
const DefaultMessage = "Request failed"

const refreshPath = "/auth/refresh"

// noRefresh lists the credential endpoints whose 401 means bad input, not an
// expired session.
var noRefresh = map[string]bool{
	"/auth/login":    true,
	"/auth/register": true,
	"/auth/guest":    true,
	"/auth/logout":   true,
	refreshPath:      true,
}

// Error is a non-2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == http.StatusUnauthorized
}

// Client sends JSON requests with the session cookies held in its jar.
type Client struct {
	base    string
	http    *http.Client
	refresh singleflight.Group
}

// New returns a client for the API at baseURL.
// PRE: baseURL has no trailing slash; jar may be nil for a cookie-less client
func New(baseURL string, jar http.CookieJar, timeout time.Duration) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Jar: jar, Timeout: timeout},
	}
}

// do runs one request through the pipeline: attempt, on 401 refresh once and
// retry once. When the refresh or the retry fails the first error is returned.
// POST: at most one refresh and two attempts per call
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	err := c.attempt(ctx, method, path, body, out)
	if err == nil || !IsUnauthorized(err) || noRefresh[strings.SplitN(path, "?", 2)[0]] {
		return err
	}

	if rerr := c.Refresh(ctx); rerr != nil {
		slog.Debug("gateway_event", "event", "refresh_failed", "path", path, "error", rerr)
		return err
	}
	if rerr := c.attempt(ctx, method, path, body, out); rerr != nil {
		slog.Debug("gateway_event", "event", "retry_failed", "path", path, "error", rerr)
		return err
	}
	return nil
}

// Refresh exchanges the refresh cookie for a new session. Concurrent callers
// share one request.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, _ := c.refresh.Do(refreshPath, func() (any, error) {
		return nil, c.attempt(ctx, http.MethodPost, refreshPath, nil, nil)
	})
	return err
}

// attempt sends a single request. Every request is JSON, which also exempts
// it from the server's CSRF check. A *string out receives the raw body.
func (c *Client) attempt(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: messageOf(data)}
	}
	if raw, ok := out.(*string); ok {
		*raw = string(data)
		return nil
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			// a malformed success body means no data, not a failure
			slog.Debug("gateway_event", "event", "malformed_body", "path", path, "error", err)
		}
	}
	return nil
}

// messageOf extracts "message" from an error body. A list of messages is
// joined with ", ".
func messageOf(data []byte) string {
	var body struct {
		Message json.RawMessage `json:"message"`
	}
	if json.Unmarshal(data, &body) != nil || len(body.Message) == 0 {
		return DefaultMessage
	}
	var s string
	if json.Unmarshal(body.Message, &s) == nil && s != "" {
		return s
	}
	var list []string
	if json.Unmarshal(body.Message, &list) == nil && len(list) > 0 {
		return strings.Join(list, ", ")
	}
	return DefaultMessage
}

func query(path string, kv ...string) string {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Set(kv[i], kv[i+1])
	}
	return path + "?" + v.Encode()
}

// MessageOr returns the server's message for an API error, fallback for
// anything else (network failures, timeouts).
func MessageOr(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}
