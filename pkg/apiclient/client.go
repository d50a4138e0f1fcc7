// Package apiclient is a small JSON-over-HTTP client whose calls never fail
// with a Go error: every outcome, transport failures included, comes back as
// a models.Result.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"garagesite/pkg/apperr"
	"garagesite/pkg/models"
	"garagesite/pkg/retry"
)

const defaultTimeout = 15 * time.Second

// Client holds what is shared by every request to one base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	logger     *zap.Logger
	retryOpts  retry.Options
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the request timeout. The *http.Client is copied first so a
// client passed through WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// WithDefaultHeader adds a header sent on every request.
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithRetryOptions overrides jitter and sleeping, mostly for tests.
func WithRetryOptions(o retry.Options) ClientOption {
	return func(c *Client) { c.retryOpts = o }
}

// New creates a client rooted at baseURL. Paths passed to the request
// functions are appended to it unless they are absolute URLs.
func New(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		headers:    http.Header{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type requestConfig struct {
	retry   bool
	policy  retry.Policy
	headers http.Header
}

// RequestOption tunes a single call.
type RequestOption func(*requestConfig)

// WithRetry turns retrying on or off; it is on by default.
func WithRetry(enabled bool) RequestOption {
	return func(rc *requestConfig) { rc.retry = enabled }
}

func WithMaxRetries(n int) RequestOption {
	return func(rc *requestConfig) { rc.policy.MaxRetries = n }
}

func WithRetryDelay(d time.Duration) RequestOption {
	return func(rc *requestConfig) { rc.policy.InitialDelay = d }
}

func WithRetryFactor(f float64) RequestOption {
	return func(rc *requestConfig) { rc.policy.Factor = f }
}

func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) { rc.headers.Set(key, value) }
}

func WithBearer(token string) RequestOption {
	return WithHeader("Authorization", "Bearer "+token)
}

// Get issues a GET and decodes the response body into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) models.Result[T] {
	return send[T](ctx, c, http.MethodGet, path, nil, "", opts)
}

// Post issues a POST with body encoded as JSON.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) models.Result[T] {
	payload, res, ok := encodeJSON[T](body)
	if !ok {
		return res
	}
	return send[T](ctx, c, http.MethodPost, path, payload, "application/json", opts)
}

// Put issues a PUT with body encoded as JSON.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) models.Result[T] {
	payload, res, ok := encodeJSON[T](body)
	if !ok {
		return res
	}
	return send[T](ctx, c, http.MethodPut, path, payload, "application/json", opts)
}

// Delete issues a DELETE.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) models.Result[T] {
	return send[T](ctx, c, http.MethodDelete, path, nil, "", opts)
}

// PostForm issues a POST with a form-encoded body and decodes a JSON reply.
func PostForm[T any](ctx context.Context, c *Client, path string, form url.Values, opts ...RequestOption) models.Result[T] {
	return send[T](ctx, c, http.MethodPost, path, []byte(form.Encode()), "application/x-www-form-urlencoded", opts)
}

func encodeJSON[T any](body any) ([]byte, models.Result[T], bool) {
	if body == nil {
		return nil, models.Result[T]{}, true
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, models.Failure[T](apperr.CodeUnknown, fmt.Sprintf("error creating payload: %v", err), nil), false
	}
	return payload, models.Result[T]{}, true
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func send[T any](ctx context.Context, c *Client, method, path string, payload []byte, contentType string, opts []RequestOption) (res models.Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("api request panicked", zap.String("method", method), zap.String("path", path), zap.Any("panic", r))
			res = models.Failure[T](apperr.CodeUnknown, fmt.Sprintf("unexpected failure: %v", r), nil)
		}
	}()

	rc := requestConfig{retry: true, policy: retry.DefaultPolicy(), headers: http.Header{}}
	for _, opt := range opts {
		opt(&rc)
	}
	if !rc.retry {
		rc.policy.MaxRetries = 1
	}

	target := c.url(path)
	ro := c.retryOpts
	ro.OnRetry = func(attempt int, wait time.Duration, err error) {
		c.logger.Debug("retrying api request",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	v, err := retry.DoWithOptions(ctx, rc.policy, ro, func(ctx context.Context) (T, error) {
		var out T
		raw, err := c.do(ctx, method, target, payload, contentType, rc.headers)
		if err != nil {
			return out, err
		}
		if len(bytes.TrimSpace(raw)) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(raw, &out); err != nil {
			perr := &apperr.Error{
				Category: apperr.CategoryUnknown,
				Severity: apperr.SeverityError,
				Code:     apperr.CodeParse,
				Message:  "error parsing response",
				Err:      err,
			}
			return out, retry.Permanent(perr)
		}
		return out, nil
	})
	if err != nil {
		return toFailure[T](err)
	}
	return models.Success(v)
}

// do performs one request and returns the body of a 2xx response. 4xx
// responses other than 408 and 429 are marked permanent.
func (c *Client) do(ctx context.Context, method, target string, payload []byte, contentType string, headers http.Header) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, retry.Permanent(apperr.Unknown("error creating request", err))
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, retry.Permanent(apperr.Network("request aborted", ctx.Err()))
		}
		return nil, apperr.Network("network request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Network("error reading response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		aerr := errorFromResponse(resp.StatusCode, raw)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
			resp.StatusCode != http.StatusRequestTimeout &&
			resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(aerr)
		}
		return nil, aerr
	}
	return raw, nil
}
