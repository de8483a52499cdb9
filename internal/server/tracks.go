package server

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/models"
)

// FetchTracksError is the only failure message clients ever see.
const FetchTracksError = "Failed to fetch tracks"

// Fetcher supplies the catalog for each request.
type Fetcher interface {
	GetTracks(ctx context.Context) ([]models.Track, error)
}

// flight is one shared upstream fetch.
type flight struct {
	done   chan struct{}
	tracks []models.Track
	err    error
}

// TracksHandler serves the catalog endpoints.
type TracksHandler struct {
	fetcher Fetcher
	logger  *log.Logger
	timeout time.Duration

	mu       sync.Mutex
	inflight *flight
}

// NewTracksHandler creates a TracksHandler. Each upstream fetch is bounded by timeout; zero
// means no bound beyond the request.
func NewTracksHandler(f Fetcher, timeout time.Duration, logger *log.Logger) *TracksHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &TracksHandler{fetcher: f, logger: logger, timeout: timeout}
}

// Routes returns the HTTP routes this handler serves.
func (h *TracksHandler) Routes() []string {
	return []string{"/api/tracks", "/api/tracks/tree", "/api/tracks/featured"}
}

// ServeHTTP fetches the catalog and renders the view selected by the path.
func (h *TracksHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := catalog.FeaturedCount
	if r.URL.Path == "/api/tracks/featured" {
		if raw := r.URL.Query().Get("n"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				writeError(w, http.StatusBadRequest, "n must be a non-negative integer")
				return
			}
			n = v
		}
	}

	tracks, err := h.fetch(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch tracks", "id", RequestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, FetchTracksError)
		return
	}
	if tracks == nil {
		tracks = []models.Track{}
	}

	switch r.URL.Path {
	case "/api/tracks/tree":
		writeJSON(w, http.StatusOK, catalog.Group(tracks))
	case "/api/tracks/featured":
		writeJSON(w, http.StatusOK, catalog.Sample(tracks, n, nil))
	default:
		writeJSON(w, http.StatusOK, catalog.Filter(tracks, r.URL.Query().Get("q")))
	}
}

// fetch joins the in-flight fetch if there is one, otherwise starts it.
//
// The shared fetch ignores cancellation of the request that started it; each caller stops
// waiting when its own context ends.
func (h *TracksHandler) fetch(ctx context.Context) ([]models.Track, error) {
	h.mu.Lock()
	if f := h.inflight; f != nil {
		h.mu.Unlock()
		select {
		case <-f.done:
			return f.tracks, f.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	h.inflight = f
	h.mu.Unlock()

	go func() {
		fctx := context.WithoutCancel(ctx)
		if h.timeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, h.timeout)
			defer cancel()
		}

		f.tracks, f.err = h.fetcher.GetTracks(fctx)

		h.mu.Lock()
		h.inflight = nil
		h.mu.Unlock()
		close(f.done)
	}()

	select {
	case <-f.done:
		return f.tracks, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HealthHandler answers with {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
