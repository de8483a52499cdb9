// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/wereb/internal/models"
)

// MockProvider is a test double for services.Provider
type MockProvider struct {
	Tracks []models.Track
	Err    error

	mu    sync.Mutex
	calls int
	// Gate, when set, blocks GetTracks until it is closed.
	Gate chan struct{}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) GetTracks(ctx context.Context) ([]models.Track, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Track(nil), m.Tracks...), nil
}

// Calls returns how many times GetTracks ran.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// SampleTracks returns a small catalog spanning three top-level folders.
func SampleTracks() []models.Track {
	return []models.Track{
		models.NewTrack("http://wereb.test/Meskel/Abba/Kidane/1.mp3", "Abba Selama", "Meskel/Abba/Kidane"),
		models.NewTrack("http://wereb.test/Meskel/Abba/Kidane/2.mp3", "Kidane Mihret", "Meskel/Abba/Kidane"),
		models.NewTrack("http://wereb.test/Meskel/Tsome/3.mp3", "Tsome Digua", "Meskel/Tsome"),
		models.NewTrack("http://wereb.test/Timket/Wereb/Ketera/4.mp3", "Ketera", "Timket/Wereb/Ketera"),
		models.NewTrack("http://wereb.test/5.mp3", "Loose Track", ""),
	}
}

// Link is one anchor on a generated listing page.
type Link struct {
	Href string
	Text string
}

// ListingHTML renders a minimal directory listing page containing links.
func ListingHTML(links ...Link) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Index</title></head><body><ul>\n")
	for _, l := range links {
		fmt.Fprintf(&b, "<li><a href=%q>%s</a></li>\n", l.Href, l.Text)
	}
	b.WriteString("</ul></body></html>\n")
	return b.String()
}

// NewListingServer serves body as HTML at every path.
func NewListingServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
