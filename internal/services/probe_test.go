package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
	tu "github.com/desertthunder/wereb/internal/testing"
)

type stubProber struct {
	results map[string]ProbeResult
}

func (s stubProber) Probe(_ context.Context, track models.Track) (ProbeResult, error) {
	res, ok := s.results[track.URL]
	if !ok {
		return ProbeResult{}, errors.New("probe failed")
	}
	return res, nil
}

func TestNewProber(t *testing.T) {
	tc := []struct {
		mode    string
		wantNil bool
		wantErr bool
	}{
		{mode: "", wantNil: true},
		{mode: shared.ProbeNone, wantNil: true},
		{mode: shared.ProbeRange},
		{mode: shared.ProbeDecode},
		{mode: "guess", wantNil: true, wantErr: true},
	}

	for _, tt := range tc {
		t.Run("mode "+tt.mode, func(t *testing.T) {
			p, err := NewProber(tt.mode, nil, 10)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if (p == nil) != tt.wantNil {
				t.Errorf("expected nil=%v, got %T", tt.wantNil, p)
			}
		})
	}
}

func TestRangeProber(t *testing.T) {
	t.Run("uses content-range total", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodHead {
				t.Errorf("expected HEAD, got %s", r.Method)
			}
			if r.Header.Get("Range") != "bytes=0-0" {
				t.Errorf("expected range header, got %q", r.Header.Get("Range"))
			}
			w.Header().Set("Content-Range", "bytes 0-0/1750000")
			w.WriteHeader(http.StatusPartialContent)
		}))
		defer srv.Close()

		p, _ := NewProber(shared.ProbeRange, srv.Client(), 100)
		res, err := p.Probe(context.Background(), models.NewTrack(srv.URL+"/1.mp3", "", ""))
		if err != nil {
			t.Fatalf("Probe() error = %v", err)
		}
		if res.Seconds != 100 {
			t.Errorf("expected 100 seconds, got %v", res.Seconds)
		}
	})

	t.Run("missing size is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Range", "bytes 0-0/*")
			w.WriteHeader(http.StatusPartialContent)
		}))
		defer srv.Close()

		p, _ := NewProber(shared.ProbeRange, srv.Client(), 100)
		if _, err := p.Probe(context.Background(), models.NewTrack(srv.URL+"/1.mp3", "", "")); err == nil {
			t.Error("expected error when no size is reported")
		}
	})
}

func TestTotalSize(t *testing.T) {
	tc := []struct {
		name   string
		header http.Header
		want   int64
		ok     bool
	}{
		{name: "content-range", header: http.Header{"Content-Range": {"bytes 0-0/42"}}, want: 42, ok: true},
		{name: "content-length fallback", header: http.Header{"Content-Length": {"1000"}}, want: 1000, ok: true},
		{name: "unknown total", header: http.Header{"Content-Range": {"bytes 0-0/*"}}},
		{name: "single byte length", header: http.Header{"Content-Length": {"1"}}},
		{name: "empty", header: http.Header{}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := totalSize(tt.header)
			if ok != tt.ok || got != tt.want {
				t.Errorf("totalSize() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSecondsFromSize(t *testing.T) {
	if got := SecondsFromSize(140000); got != 8 {
		t.Errorf("expected 8 seconds, got %v", got)
	}
	if got := SecondsFromSize(0); got != 0 {
		t.Errorf("expected 0 seconds, got %v", got)
	}
}

func TestDecodeAudio(t *testing.T) {
	if _, err := DecodeAudio([]byte("not an mp3")); err == nil {
		t.Error("expected decode error for non-mp3 data")
	}
}

func TestProbeAll(t *testing.T) {
	tracks := []models.Track{
		models.NewTrack("http://x/1.mp3", "", ""),
		models.NewTrack("http://x/2.mp3", "Two", ""),
		models.NewTrack("http://x/3.mp3", "Three", ""),
	}
	prober := stubProber{results: map[string]ProbeResult{
		"http://x/1.mp3": {Seconds: 12, Title: "Tagged"},
		"http://x/2.mp3": {Seconds: 30, Title: "Ignored"},
	}}

	var buf bytes.Buffer
	ProbeAll(context.Background(), prober, tracks, log.New(&buf))

	if tracks[0].Duration != 12 || tracks[0].Title != "Tagged" {
		t.Errorf("expected probed duration and title, got %+v", tracks[0])
	}
	if tracks[1].Title != "Two" {
		t.Errorf("expected anchor title to win, got %s", tracks[1].Title)
	}
	if tracks[2].Duration != 0 {
		t.Errorf("expected placeholder after failed probe, got %v", tracks[2].Duration)
	}
	if !bytes.Contains(buf.Bytes(), []byte("duration probe failed")) {
		t.Errorf("expected failure to be logged, got %q", buf.String())
	}
}

func TestProviderWithProber(t *testing.T) {
	html := tu.ListingHTML(tu.Link{Href: "a/1.mp3", Text: "One"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Range", "bytes 0-0/280000")
			w.WriteHeader(http.StatusPartialContent)
			return
		}
		w.Write([]byte(html))
	}))
	defer srv.Close()

	prober, err := NewProber(shared.ProbeRange, srv.Client(), 100)
	if err != nil {
		t.Fatalf("NewProber() error = %v", err)
	}

	p, err := NewProvider("eotc-org", ProviderOptions{BaseURL: srv.URL + "/", HTTPClient: srv.Client(), Prober: prober})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	tracks, err := p.GetTracks(context.Background())
	if err != nil {
		t.Fatalf("GetTracks() error = %v", err)
	}
	if len(tracks) != 1 || tracks[0].Duration != 16 {
		t.Errorf("expected one track of 16 seconds, got %+v", tracks)
	}
}
