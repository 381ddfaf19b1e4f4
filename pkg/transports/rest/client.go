// Package rest provides the JSON-over-HTTP transport used by provider clients.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"github.com/launchwolf/launchwolf/pkg/engine"
	"github.com/launchwolf/launchwolf/pkg/telemetry"
)

// Request describes one API call.
type Request struct {
	// Operation names the call in spans and metrics (e.g. "check_availability").
	Operation string

	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is encoded as JSON when non-nil.
	Body any
}

// Response is a successful API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client sends JSON requests to one provider API.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a client. A nil httpClient uses a fresh http.Client with
// the configured timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s client config: %w", cfg.Provider, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}, nil
}

// Provider returns the provider name the client was configured with.
func (c *Client) Provider() string {
	return c.config.Provider
}

// Do sends req and decodes a JSON response into out when out is non-nil.
// Non-2xx responses are returned as an *engine.EngineError wrapping an
// *APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) (*Response, error) {
	var resp *Response
	err := telemetry.RecordProviderOperation(ctx, c.config.Provider, req.Operation, func(ctx context.Context) error {
		var err error
		resp, err = c.do(ctx, req, out)
		return err
	})
	return resp, err
}

func (c *Client) do(ctx context.Context, req Request, out any) (*Response, error) {
	u := c.config.BaseURL + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", req.Operation, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", req.Operation, err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.config.UserAgent)
	}
	c.authenticate(httpReq)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		telemetry.AttrHTTPMethod.String(req.Method),
		telemetry.AttrHTTPURL.String(u),
	)

	logger := telemetry.FromContext(ctx).WithProvider(c.config.Provider)
	logger.Debugf("%s %s", req.Method, u)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, engine.NewTransientError(fmt.Sprintf("%s request failed", req.Operation), err).
			WithProvider(c.config.Provider).
			WithCode(engine.ErrCodeUnavailable)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", req.Operation, err)
	}
	span.SetAttributes(telemetry.AttrHTTPStatus.Int(httpResp.StatusCode))

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		apiErr := &APIError{
			Provider:   c.config.Provider,
			Operation:  req.Operation,
			Method:     req.Method,
			URL:        u,
			StatusCode: httpResp.StatusCode,
			Status:     httpResp.Status,
			Header:     httpResp.Header.Clone(),
			Body:       respBody,
		}
		logger.Debugf("%s %s returned %d", req.Method, u, httpResp.StatusCode)
		return nil, apiErr.classify()
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("failed to decode %s response: %w", req.Operation, err)
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

func (c *Client) authenticate(req *http.Request) {
	switch c.config.AuthMethod {
	case AuthMethodAPIKey:
		req.Header.Set("Authorization", "Apikey "+c.config.Token)
	case AuthMethodBearer:
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	case AuthMethodBasic:
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, operation, path string, query url.Values, out any) error {
	_, err := c.Do(ctx, Request{Operation: operation, Method: http.MethodGet, Path: path, Query: query}, out)
	return err
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, operation, path string, body, out any) error {
	_, err := c.Do(ctx, Request{Operation: operation, Method: http.MethodPost, Path: path, Body: body}, out)
	return err
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, operation, path string, body, out any) error {
	_, err := c.Do(ctx, Request{Operation: operation, Method: http.MethodPut, Path: path, Body: body}, out)
	return err
}

// Patch sends a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, operation, path string, body, out any) error {
	_, err := c.Do(ctx, Request{Operation: operation, Method: http.MethodPatch, Path: path, Body: body}, out)
	return err
}
