package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
	tu "github.com/desertthunder/wereb/internal/testing"
)

func TestRegistry(t *testing.T) {
	t.Run("default key builds the eotc provider", func(t *testing.T) {
		p, err := NewProvider("", ProviderOptions{BaseURL: "http://x/"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name() != "eotc-org" {
			t.Errorf("expected eotc-org, got %s", p.Name())
		}
	})

	t.Run("unknown key is a configuration error", func(t *testing.T) {
		_, err := NewProvider("nope", ProviderOptions{})
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
		if !errors.Is(err, shared.ErrUnknownSource) {
			t.Errorf("expected ErrUnknownSource, got %v", err)
		}
	})

	t.Run("Register adds a provider", func(t *testing.T) {
		mock := &tu.MockProvider{}
		Register("mock-test", func(ProviderOptions) Provider { return mock })
		t.Cleanup(func() { delete(registry, "mock-test") })

		p, err := NewProvider("mock-test", ProviderOptions{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p != Provider(mock) {
			t.Error("expected registered provider to be returned")
		}

		found := false
		for _, k := range Providers() {
			if k == "mock-test" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected mock-test in %v", Providers())
		}
	})
}

func TestFetchCatalog(t *testing.T) {
	t.Run("extracts only mp3 anchors", func(t *testing.T) {
		html := tu.ListingHTML(
			tu.Link{Href: "a/b/c/1.mp3", Text: " Song One "},
			tu.Link{Href: "x/y/z/2.MP3", Text: "Song Two"},
			tu.Link{Href: "readme.txt", Text: "Readme"},
			tu.Link{Href: "../", Text: "Parent Directory"},
			tu.Link{Href: "cover.mp3.jpg", Text: "Cover"},
		)
		srv := tu.NewListingServer(t, html)

		tracks, err := FetchCatalog(context.Background(), srv.URL+"/wereb/")
		if err != nil {
			t.Fatalf("FetchCatalog() error = %v", err)
		}

		if len(tracks) != 2 {
			t.Fatalf("expected 2 tracks, got %d", len(tracks))
		}

		want := []struct{ title, category, url string }{
			{"Song One", "a/b/c", srv.URL + "/wereb/a/b/c/1.mp3"},
			{"Song Two", "x/y/z", srv.URL + "/wereb/x/y/z/2.MP3"},
		}
		for i, w := range want {
			got := tracks[i]
			if got.Title != w.title {
				t.Errorf("track %d: expected title %q, got %q", i, w.title, got.Title)
			}
			if got.Category != w.category {
				t.Errorf("track %d: expected category %q, got %q", i, w.category, got.Category)
			}
			if got.URL != w.url {
				t.Errorf("track %d: expected url %q, got %q", i, w.url, got.URL)
			}
			if got.ID != models.EncodeID(got.URL) {
				t.Errorf("track %d: id is not base64 of url", i)
			}
			if got.Duration != 0 {
				t.Errorf("track %d: expected placeholder duration, got %v", i, got.Duration)
			}
		}
	})

	t.Run("strips the category prefix and suppresses duplicates", func(t *testing.T) {
		html := tu.ListingHTML(
			tu.Link{Href: "wereb keamet eske amet/Meskel/Abba/1.mp3", Text: "One"},
			tu.Link{Href: "wereb%20keamet%20eske%20amet/Meskel/Abba/2.mp3", Text: "Two"},
			tu.Link{Href: "wereb keamet eske amet/Meskel/Abba/1.mp3", Text: "One again"},
			tu.Link{Href: "3.mp3", Text: "Three"},
		)
		srv := tu.NewListingServer(t, html)

		tracks, err := FetchCatalog(context.Background(), srv.URL+"/")
		if err != nil {
			t.Fatalf("FetchCatalog() error = %v", err)
		}

		if len(tracks) != 3 {
			t.Fatalf("expected 3 tracks, got %d", len(tracks))
		}
		if tracks[0].Category != "Meskel/Abba" || tracks[1].Category != "Meskel/Abba" {
			t.Errorf("expected prefix stripped, got %q and %q", tracks[0].Category, tracks[1].Category)
		}
		if tracks[2].Category != "" {
			t.Errorf("expected empty category for bare file, got %q", tracks[2].Category)
		}
		if !strings.Contains(tracks[0].URL, "%20") {
			t.Errorf("expected resolved url to be escaped, got %s", tracks[0].URL)
		}
	})

	t.Run("absolute hrefs are kept", func(t *testing.T) {
		html := tu.ListingHTML(tu.Link{Href: "https://cdn.test/audio/one.mp3", Text: "One"})
		srv := tu.NewListingServer(t, html)

		tracks, err := FetchCatalog(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("FetchCatalog() error = %v", err)
		}
		if len(tracks) != 1 || tracks[0].URL != "https://cdn.test/audio/one.mp3" {
			t.Errorf("unexpected tracks %+v", tracks)
		}
	})

	t.Run("no matching anchors yields an empty slice", func(t *testing.T) {
		srv := tu.NewListingServer(t, tu.ListingHTML(tu.Link{Href: "a.txt", Text: "A"}))

		tracks, err := FetchCatalog(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("FetchCatalog() error = %v", err)
		}
		if tracks == nil || len(tracks) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", tracks)
		}
	})

	t.Run("sends a user agent", func(t *testing.T) {
		var ua string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
		}))
		defer srv.Close()

		if _, err := FetchCatalog(context.Background(), srv.URL); err != nil {
			t.Fatalf("FetchCatalog() error = %v", err)
		}
		if !strings.HasPrefix(ua, "wereb/") {
			t.Errorf("expected wereb user agent, got %q", ua)
		}
	})
}

func TestFetchCatalogErrors(t *testing.T) {
	t.Run("empty base url", func(t *testing.T) {
		_, err := FetchCatalog(context.Background(), "")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
		if !errors.Is(err, shared.ErrFetchTracks) {
			t.Errorf("expected ErrFetchTracks, got %v", err)
		}
	})

	t.Run("non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := FetchCatalog(context.Background(), srv.URL)
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
		if !errors.Is(err, shared.ErrFetchTracks) {
			t.Errorf("expected ErrFetchTracks, got %v", err)
		}
	})

	t.Run("network failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		p := NewEOTCProvider(ProviderOptions{BaseURL: "http://wereb.test/", HTTPClient: client})

		_, err := p.GetTracks(context.Background())
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
	})

	t.Run("unreadable body", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Status: "200 OK", Body: &tu.FCloser{}, Header: http.Header{}}
		client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}
		p := NewEOTCProvider(ProviderOptions{BaseURL: "http://wereb.test/", HTTPClient: client})

		_, err := p.GetTracks(context.Background())
		if !errors.Is(err, shared.ErrFetchTracks) {
			t.Errorf("expected ErrFetchTracks, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := tu.NewListingServer(t, tu.ListingHTML())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := FetchCatalog(ctx, srv.URL)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestCategoryOf(t *testing.T) {
	tc := []struct {
		href string
		want string
	}{
		{href: "a/b/c/1.mp3", want: "a/b/c"},
		{href: "1.mp3", want: ""},
		{href: "./1.mp3", want: ""},
		{href: "./a/1.mp3", want: "./a"},
		{href: "/1.mp3", want: "/"},
		{href: "wereb keamet eske amet/Meskel/1.mp3", want: "Meskel"},
		{href: "Meskel%20Wereb/1.mp3", want: "Meskel Wereb"},
		{href: "bad%zz/1.mp3", want: "bad%zz"},
	}

	for _, tt := range tc {
		t.Run(tt.href, func(t *testing.T) {
			if got := CategoryOf(tt.href); got != tt.want {
				t.Errorf("CategoryOf(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestIsAudioLink(t *testing.T) {
	for href, want := range map[string]bool{
		"a.mp3":     true,
		"a.MP3":     true,
		"a.Mp3":     true,
		"a.mp3?x=1": false,
		"a.wav":     false,
		"":          false,
	} {
		if got := IsAudioLink(href); got != want {
			t.Errorf("IsAudioLink(%q) = %v, want %v", href, got, want)
		}
	}
}

func TestClientBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 16)))
	}))
	defer srv.Close()

	t.Run("body at the limit is read whole", func(t *testing.T) {
		resp, err := NewClient(srv.Client()).WithMaxBody(16).Get(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if len(resp.Body) != 16 {
			t.Errorf("expected 16 bytes, got %d", len(resp.Body))
		}
	})

	t.Run("body over the limit fails instead of truncating", func(t *testing.T) {
		resp, err := NewClient(srv.Client()).WithMaxBody(8).Get(context.Background(), srv.URL)
		if !errors.Is(err, shared.ErrTransport) {
			t.Errorf("expected ErrTransport, got %v", err)
		}
		if resp != nil {
			t.Errorf("expected no partial response, got %d bytes", len(resp.Body))
		}
	})
}
