package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/vidscribe/vidscribe/resilience"
)

// Client is a configurable HTTP client with optional retry.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a new HTTP client with the given configuration.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Timeout
	tlsCfg, err := cfg.TLS.Client()
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	if tlsCfg != nil {
		transport.TLSClientConfig = tlsCfg
	}

	return &Client{
		httpClient: &http.Client{Transport: transport},
		config:     cfg,
	}, nil
}

// Do executes a request and buffers the complete response body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	stream, err := c.DoStream(ctx, req)
	if err != nil {
		return nil, err
	}
	defer stream.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(stream.Body)
	if err != nil {
		return nil, classifyTransportError(ctx, req.URL, fmt.Errorf("read response body: %w", err))
	}
	return &Response{
		StatusCode: stream.StatusCode,
		Header:     stream.Header,
		Body:       body,
		FinalURL:   stream.FinalURL,
	}, nil
}

// DoStream executes a request and returns once headers have arrived.
// The caller must Close the returned StreamResponse. Non-2xx responses are
// returned as *Error with the body already closed.
func (c *Client) DoStream(ctx context.Context, req Request) (*StreamResponse, error) {
	if c.config.Retry != nil && req.Body == nil {
		return resilience.Retry(ctx, *c.config.Retry, func() (*StreamResponse, error) {
			return c.doOnce(ctx, req)
		})
	}
	return c.doOnce(ctx, req)
}

// Unwrap returns the underlying *http.Client.
func (c *Client) Unwrap() *http.Client {
	return c.httpClient
}

func (c *Client) doOnce(ctx context.Context, req Request) (*StreamResponse, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(ctx, req.URL, err)
	}

	if classErr := ClassifyStatusCode(req.URL, resp.StatusCode); classErr != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, classErr
	}

	return &StreamResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, req.Body)
	if err != nil {
		return nil, NewValidationError(req.URL, err)
	}

	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

func classifyTransportError(ctx context.Context, url string, err error) *Error {
	var netErr net.Error
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(url, err)
	}
	return NewConnectionError(url, err)
}
