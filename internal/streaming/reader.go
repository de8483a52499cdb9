// Package streaming reads remote audio files over HTTP in buffered chunks.
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wereb/internal/shared"
)

// DefaultBufferSize is the read buffer used when none is configured.
const DefaultBufferSize = 256 * 1024

// Client is shared by every stream. It has no overall timeout so long tracks can play to the end;
// only connection setup and response headers are bounded.
var Client = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       5 * time.Minute,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ExpectContinueTimeout: time.Second,
	},
}

// Reader is a buffered stream over the body of one ranged GET.
type Reader struct {
	reader *bufio.Reader
	resp   *http.Response
	offset int64
	size   int64
}

// NewReader opens url starting at byte offset. A client of nil uses [Client].
func NewReader(ctx context.Context, client *http.Client, url string, offset int64, bufferSize int) (*Reader, error) {
	if client == nil {
		client = Client
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	req.Header.Set("User-Agent", shared.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: stream request failed: %w", shared.ErrTransport, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		// server ignored the range
		offset = 0
	case http.StatusPartialContent:
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: stream returned %s", shared.ErrTransport, resp.Status)
	}

	return &Reader{
		reader: bufio.NewReaderSize(resp.Body, bufferSize),
		resp:   resp,
		offset: offset,
		size:   totalSize(resp, offset),
	}, nil
}

// Read implements [io.Reader].
func (r *Reader) Read(p []byte) (int, error) {
	return r.reader.Read(p)
}

// Close closes the underlying response body.
func (r *Reader) Close() error {
	return r.resp.Body.Close()
}

// Offset returns the byte offset the stream actually starts at.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Size returns the full size of the remote file, or 0 when unknown.
func (r *Reader) Size() int64 {
	return r.size
}

func totalSize(resp *http.Response, offset int64) int64 {
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		if _, total, ok := strings.Cut(cr, "/"); ok {
			if n, err := strconv.ParseInt(total, 10, 64); err == nil {
				return n
			}
		}
	}
	if resp.ContentLength > 0 {
		return resp.ContentLength + offset
	}
	return 0
}

// Status describes stream health from the number of consecutive stalled progress ticks.
func Status(stalled int) string {
	switch {
	case stalled == 0:
		return "Streaming"
	case stalled <= 3:
		return "Buffering..."
	case stalled <= 5:
		return "Slow connection"
	default:
		return "Connection problem"
	}
}
