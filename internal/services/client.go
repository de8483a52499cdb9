package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/wereb/internal/shared"
)

// MaxDocumentSize caps how much of a listing response is read.
const MaxDocumentSize int64 = 10 << 20

// Client performs the raw HTTP requests used by providers and probers.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBody    int64
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// NewClient creates a Client. A nil client uses [http.DefaultClient].
func NewClient(client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		httpClient: client,
		userAgent:  shared.UserAgent(),
		maxBody:    MaxDocumentSize,
	}
}

// WithMaxBody returns a copy of c that rejects bodies larger than n bytes.
func (c *Client) WithMaxBody(n int64) *Client {
	cp := *c
	cp.maxBody = n
	return &cp
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrTransport, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %w", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s %s returned %s", shared.ErrTransport, method, url, resp.Status)
	}
	return resp, nil
}

// Get performs a GET request and reads the body.
//
// Network failures, non-2xx statuses and bodies over the client's size limit wrap
// [shared.ErrTransport].
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrTransport, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s body exceeds %d bytes", shared.ErrTransport, url, c.maxBody)
	}

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}, nil
}

// Head performs a HEAD request with the given extra headers and returns the response headers.
func (c *Client) Head(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	resp, err := c.do(ctx, http.MethodHead, url, headers)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	return &Response{StatusCode: resp.StatusCode, Headers: resp.Header}, nil
}
