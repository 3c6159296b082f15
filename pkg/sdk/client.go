package snipdex

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

	api "github.com/kailas-cloud/snipdex/internal/transport/chi"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// Client is the snipdex SDK entry point. Safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
	ua   string
	obs  *observer
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("snipdex: base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("snipdex: parse base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("snipdex: unsupported scheme %q", u.Scheme)
	}

	cfg := &clientConfig{timeout: defaultTimeout, userAgent: "snipdex-go"}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{base: u, http: hc, ua: cfg.userAgent, obs: obs}, nil
}

// do sends in as JSON to path and decodes the body into out. Statuses listed
// in accept decode into out as well; any other non-2xx becomes an *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any, accept ...int) (int, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("snipdex: encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return 0, fmt.Errorf("snipdex: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("snipdex: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if !accepts(accept, resp.StatusCode) {
			return resp.StatusCode, decodeError(resp)
		}
		return resp.StatusCode, decodeAccepted(resp, out)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("snipdex: decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func accepts(accept []int, status int) bool {
	for _, s := range accept {
		if s == status {
			return true
		}
	}
	return false
}

// decodeAccepted decodes an accepted non-2xx body into out. The same status
// may still carry an error body, which becomes an *APIError.
func decodeAccepted(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return fmt.Errorf("snipdex: read response: %w", err)
	}
	var body api.ErrorResponse
	if json.Unmarshal(raw, &body) == nil && body.Code != "" {
		return errorFromBody(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("snipdex: decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return errorFromBody(resp.StatusCode, raw)
}

func errorFromBody(status int, raw []byte) error {
	var body api.ErrorResponse
	if err := json.Unmarshal(raw, &body); err != nil || body.Code == "" {
		return &APIError{
			StatusCode: status,
			Code:       "unknown",
			Message:    strings.TrimSpace(string(raw)),
		}
	}
	return &APIError{StatusCode: status, Code: string(body.Code), Message: body.Message}
}

func (c *Client) track(op string) func(*error) {
	start := time.Now()
	return func(err *error) { c.obs.observe(op, start, *err) }
}
