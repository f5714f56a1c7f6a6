// Package rentease is a typed client for the rentease REST backend. All
// business logic (auth, persistence, booking rules) lives behind that API;
// this package only issues requests and decodes responses into typed models.
package rentease

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config holds the configuration for backend API access.
type Config struct {
	// BaseURL is the backend base URL including the /api prefix.
	BaseURL string

	// Timeout for API requests.
	Timeout time.Duration
}

// TokenFunc supplies the bearer token for a request. A nil function or an
// empty token leaves the request unauthenticated.
type TokenFunc func() string

// Client is a client for the rentease backend API.
type Client struct {
	config     Config
	httpClient *http.Client
	token      TokenFunc
}

// NewClient creates a new backend API client.
func NewClient(config Config, token TokenFunc) *Client {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		token: token,
	}
}

// get issues a GET request and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// postJSON issues a POST request with a JSON body and decodes the response
// into out (which may be nil for ack-only endpoints).
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	return c.sendJSON(ctx, http.MethodPost, path, nil, body, out)
}

// deleteJSON issues a DELETE request, optionally with a JSON body.
func (c *Client) deleteJSON(ctx context.Context, path string, query url.Values, body any, out any) error {
	return c.sendJSON(ctx, http.MethodDelete, path, query, body, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reader, "application/json")
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// sendMultipart issues a request with a prebuilt multipart body. Used by the
// property create/update calls whose payload carries a JSON part plus images.
func (c *Client) sendMultipart(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// do executes the request and maps failures onto the client's error
// taxonomy: NetworkError when no response arrives, HTTPError for non-2xx
// (with the body retained), SchemaError when a 2xx body does not decode.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return &HTTPError{
			Status: resp.StatusCode,
			Body:   string(bytes.TrimSpace(body)),
			URL:    req.URL.String(),
		}
	}

	if out == nil {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(out); err != nil {
		return &SchemaError{URL: req.URL.String(), Err: err}
	}
	return nil
}

// writeJSON encodes v as JSON into w.
func writeJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// newRequest creates an HTTP request with authentication and content type.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.config.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	return req, nil
}
