package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// RetryPolicy controls how failed exchanges are repeated.
//
// MaxRetries counts additional attempts after the first one, and Delay is a
// fixed pause between attempts (no backoff growth).
type RetryPolicy struct {
	MaxRetries int
	Delay      time.Duration
}

func DefaultRetry() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		Delay:      time.Second,
	}
}

type Client struct {
	HTTPClient *http.Client
	BaseURL    *url.URL

	DefaultHeaders http.Header
	UserAgent      string
	Logger         *slog.Logger
	Retry          RetryPolicy
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		HTTPClient:     httpClient,
		BaseURL:        u,
		DefaultHeaders: make(http.Header),
		UserAgent:      "chatgpt-kit/1",
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Retry:          DefaultRetry(),
	}, nil
}

func (c *Client) Clone() *Client {
	out := *c
	out.DefaultHeaders = c.DefaultHeaders.Clone()
	return &out
}

func (c *Client) Resolve(path string) string {
	// url.JoinPath would clean too aggressively for some base URLs with paths.
	u := *c.BaseURL
	u.Path = joinPath(u.Path, path)
	return u.String()
}

func joinPath(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a[len(a)-1] == '/' {
		if b[0] == '/' {
			return a + b[1:]
		}
		return a + b
	}
	if b[0] == '/' {
		return a + b
	}
	return a + "/" + b
}

// DoJSON performs a buffered exchange: the request body is marshalled once,
// the full response body is read, and retryable failures are repeated per the
// client's RetryPolicy. The first successful attempt wins.
func (c *Client) DoJSON(ctx context.Context, method, path string, hdr http.Header, reqBody any) ([]byte, error) {
	var bodyBytes []byte
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, err
		}
		bodyBytes = b
	}

	attempts := c.Retry.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := c.doOnce(ctx, method, path, hdr, bodyBytes)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if attempt == attempts || !Retryable(err) {
			return nil, err
		}

		c.Logger.Debug("chatgpt http retry", "attempt", attempt, "delay", c.Retry.Delay, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Retry.Delay):
		}
	}

	return nil, lastErr
}

// DoStream performs an incremental exchange: on success the response is
// returned with its body unread, so the caller can consume it as bytes
// arrive. Establishment failures are retried per the RetryPolicy; once the
// body is handed over, no retries happen.
func (c *Client) DoStream(ctx context.Context, method, path string, hdr http.Header, reqBody any) (*http.Response, error) {
	var bodyBytes []byte
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return nil, err
		}
		bodyBytes = b
	}

	attempts := c.Retry.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.doStreamOnce(ctx, method, path, hdr, bodyBytes)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if attempt == attempts || !Retryable(err) {
			return nil, err
		}

		c.Logger.Debug("chatgpt stream retry", "attempt", attempt, "delay", c.Retry.Delay, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.Retry.Delay):
		}
	}

	return nil, lastErr
}

func (c *Client) doOnce(ctx context.Context, method, path string, hdr http.Header, bodyBytes []byte) ([]byte, error) {
	resp, err := c.send(ctx, method, path, hdr, bodyBytes)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}
	return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: raw, Header: resp.Header.Clone()}
}

func (c *Client) doStreamOnce(ctx context.Context, method, path string, hdr http.Header, bodyBytes []byte) (*http.Response, error) {
	resp, err := c.send(ctx, method, path, hdr, bodyBytes)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: raw, Header: resp.Header.Clone()}
}

func (c *Client) send(ctx context.Context, method, path string, hdr http.Header, bodyBytes []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(path), bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}

	mergeHeaders(req.Header, c.DefaultHeaders)
	mergeHeaders(req.Header, hdr)
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}

	return c.HTTPClient.Do(req)
}

// HTTPStatusError reports a non-2xx response. The body has already been read
// (and the connection released) by the time it is returned.
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (e *HTTPStatusError) Error() string {
	return http.StatusText(e.StatusCode)
}

// Retryable reports whether an exchange failure is worth repeating:
// network/transport errors, 5xx responses, and 429 rate limits.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *HTTPStatusError
	if errors.As(err, &se) {
		if se.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return se.StatusCode >= 500
	}
	// network / io errors are generally retryable
	return true
}

func mergeHeaders(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
