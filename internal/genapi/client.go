// Package genapi is the HTTP client for the remote text/image-to-3D service:
// health check, job submission and job status polling.
package genapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultRequestTimeout  = 30 * time.Second
	defaultResourceTimeout = 60 * time.Second
	maxErrorBody           = 4096
)

// Config encapsulates the client tunables.
type Config struct {
	BaseURL string
	APIKey  string
	// RequestTimeout bounds the wait for response headers.
	RequestTimeout time.Duration
	// ResourceTimeout bounds the whole exchange including the body.
	ResourceTimeout time.Duration
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client talks to one generation service. It holds no per-job state.
type Client struct {
	baseURL         string
	apiKey          string
	resourceTimeout time.Duration
	httpClient      *http.Client
}

// New constructs a Client, applying defaults.
func New(cfg Config) *Client {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ResourceTimeout <= 0 {
		cfg.ResourceTimeout = defaultResourceTimeout
	}
	cli := cfg.HTTPClient
	if cli == nil {
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   cfg.RequestTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: cfg.RequestTimeout,
		}
		// Timeout=0: every call carries a context deadline of ResourceTimeout instead.
		cli = &http.Client{Transport: tr, Timeout: 0}
	}
	return &Client{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:          cfg.APIKey,
		resourceTimeout: cfg.ResourceTimeout,
		httpClient:      cli,
	}
}

// BaseURL returns the service root the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// Health queries GET /health.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, "health", http.MethodGet, PathHealth, nil, &out)
	return out, err
}

// Submit posts a job and returns the uid assigned by the service.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if (req.Text == "") == (req.Image == "") {
		return "", errors.New("submit: exactly one of text or image must be set")
	}
	var out submitResponse
	if err := c.do(ctx, "submit", http.MethodPost, PathSend, req, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.UID) == "" {
		return "", decodeError{op: "submit", err: errors.New("missing uid")}
	}
	return out.UID, nil
}

// Status queries GET /status/{uid}.
func (c *Client) Status(ctx context.Context, uid string) (StatusResponse, error) {
	var out StatusResponse
	err := c.do(ctx, "status", http.MethodGet, PathStatus+url.PathEscape(uid), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	// Apply resource timeout via context; the parent ctx still cancels the call.
	callCtx, cancel := context.WithTimeout(ctx, c.resourceTimeout)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Caller cancellation is reported as-is so callers can tell it from a failure.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return transportError{op: op, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if callCtx.Err() != nil {
			return transportError{op: op, err: callCtx.Err()}
		}
		return decodeError{op: op, err: err}
	}
	return nil
}
