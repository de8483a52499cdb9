package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"
	"golang.org/x/time/rate"
)

// AssumedBitrate is the bits per second used to turn a byte size into seconds.
const AssumedBitrate = 140000

// MaxDecodeSize caps how much of a file [DecodeProber] downloads.
const MaxDecodeSize int64 = 64 << 20

// ProbeResult is what a [DurationProber] learned about a track.
type ProbeResult struct {
	Seconds float64
	Title   string
}

// DurationProber estimates the duration of a track.
type DurationProber interface {
	Probe(ctx context.Context, track models.Track) (ProbeResult, error)
}

// NewProber returns the prober for mode, or nil for [shared.ProbeNone].
//
// Probers share one limiter allowing perSecond requests per second.
func NewProber(mode string, client *http.Client, perSecond float64) (DurationProber, error) {
	if perSecond <= 0 {
		perSecond = 4
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), 1)

	switch mode {
	case "", shared.ProbeNone:
		return nil, nil
	case shared.ProbeRange:
		return &RangeProber{client: NewClient(client), limiter: limiter}, nil
	case shared.ProbeDecode:
		return &DecodeProber{client: NewClient(client).WithMaxBody(MaxDecodeSize), limiter: limiter}, nil
	default:
		return nil, fmt.Errorf("%w: duration_probe %q", shared.ErrInvalidConfig, mode)
	}
}

// ProbeAll fills in durations in place. Failures are logged and leave the placeholder.
// Empty titles are replaced with a probed title when one is found.
func ProbeAll(ctx context.Context, prober DurationProber, tracks []models.Track, logger *log.Logger) {
	for i := range tracks {
		if ctx.Err() != nil {
			logger.Warn("duration probing interrupted", "remaining", len(tracks)-i, "error", ctx.Err())
			return
		}

		res, err := prober.Probe(ctx, tracks[i])
		if err != nil {
			logger.Warn("duration probe failed", "url", tracks[i].URL, "error", err)
			continue
		}

		tracks[i].Duration = res.Seconds
		if tracks[i].Title == "" && res.Title != "" {
			tracks[i].Title = res.Title
		}
	}
}

// RangeProber estimates duration from the file size reported by a ranged HEAD request.
type RangeProber struct {
	client  *Client
	limiter *rate.Limiter
}

// Probe sends HEAD with "Range: bytes=0-0" and reads the total size from Content-Range,
// falling back to Content-Length.
func (p *RangeProber) Probe(ctx context.Context, track models.Track) (ProbeResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return ProbeResult{}, err
	}

	resp, err := p.client.Head(ctx, track.URL, map[string]string{"Range": "bytes=0-0"})
	if err != nil {
		return ProbeResult{}, err
	}

	size, ok := totalSize(resp.Headers)
	if !ok {
		return ProbeResult{}, fmt.Errorf("no size reported for %s", track.URL)
	}
	return ProbeResult{Seconds: SecondsFromSize(size)}, nil
}

// SecondsFromSize converts a byte count to seconds at [AssumedBitrate].
func SecondsFromSize(size int64) float64 {
	return float64(size) * 8 / AssumedBitrate
}

// totalSize reads "bytes 0-0/12345" from Content-Range, or Content-Length.
func totalSize(h http.Header) (int64, bool) {
	if cr := h.Get("Content-Range"); cr != "" {
		if _, total, ok := strings.Cut(cr, "/"); ok && total != "*" {
			if n, err := strconv.ParseInt(strings.TrimSpace(total), 10, 64); err == nil {
				return n, true
			}
		}
	}

	if cl := h.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > 1 {
			return n, true
		}
	}
	return 0, false
}

// DecodeProber downloads the file and measures its decoded length.
type DecodeProber struct {
	client  *Client
	limiter *rate.Limiter
}

// Probe decodes the mp3 to count samples and reads the ID3 title when present.
func (p *DecodeProber) Probe(ctx context.Context, track models.Track) (ProbeResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return ProbeResult{}, err
	}

	resp, err := p.client.Get(ctx, track.URL)
	if err != nil {
		return ProbeResult{}, err
	}

	return DecodeAudio(resp.Body)
}

// DecodeAudio measures an in-memory mp3 file.
func DecodeAudio(data []byte) (ProbeResult, error) {
	var res ProbeResult
	if md, err := tag.ReadFrom(bytes.NewReader(data)); err == nil {
		res.Title = strings.TrimSpace(md.Title())
	}

	// go-mp3 only reports a length for seekable sources
	streamer, format, err := mp3.Decode(readSeekCloser{bytes.NewReader(data)})
	if err != nil {
		return ProbeResult{}, fmt.Errorf("failed to decode mp3: %w", err)
	}
	defer streamer.Close()

	if streamer.Len() <= 0 {
		return ProbeResult{}, fmt.Errorf("mp3 length unknown")
	}

	res.Seconds = format.SampleRate.D(streamer.Len()).Seconds()
	return res, nil
}

type readSeekCloser struct {
	*bytes.Reader
}

func (readSeekCloser) Close() error { return nil }
