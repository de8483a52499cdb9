package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
)

// CategoryPrefix is stripped from the directory part of each href.
const CategoryPrefix = "wereb keamet eske amet/"

// EOTCProvider scrapes an HTML directory listing for .mp3 links.
type EOTCProvider struct {
	baseURL string
	client  *Client
	prober  DurationProber
	logger  *log.Logger
}

// NewEOTCProvider creates the "eotc-org" provider.
func NewEOTCProvider(opts ProviderOptions) *EOTCProvider {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &EOTCProvider{
		baseURL: opts.BaseURL,
		client:  NewClient(opts.HTTPClient),
		prober:  opts.Prober,
		logger:  logger,
	}
}

// Name returns the registry key.
func (p *EOTCProvider) Name() string {
	return DefaultProvider
}

// GetTracks fetches the listing at the base URL and extracts one track per distinct .mp3 link.
func (p *EOTCProvider) GetTracks(ctx context.Context) ([]models.Track, error) {
	if strings.TrimSpace(p.baseURL) == "" {
		return nil, fetchError(fmt.Errorf("%w: base url is empty", shared.ErrMissingConfig))
	}

	base, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fetchError(fmt.Errorf("%w: invalid base url %q: %v", shared.ErrMissingConfig, p.baseURL, err))
	}

	resp, err := p.client.Get(ctx, base.String())
	if err != nil {
		return nil, fetchError(err)
	}

	tracks, err := p.parse(base, resp.Body)
	if err != nil {
		return nil, fetchError(err)
	}

	p.logger.Debug("parsed listing", "url", base.String(), "tracks", len(tracks))

	if p.prober != nil {
		ProbeAll(ctx, p.prober, tracks, p.logger)
	}
	return tracks, nil
}

// parse extracts tracks from body in document order, skipping duplicate URLs.
func (p *EOTCProvider) parse(base *url.URL, body []byte) ([]models.Track, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrParse, err)
	}

	seen := make(map[string]bool)
	tracks := []models.Track{}

	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !IsAudioLink(href) {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			p.logger.Warn("skipping malformed href", "href", href, "error", err)
			return
		}

		abs := base.ResolveReference(ref).String()
		if seen[abs] {
			return
		}
		seen[abs] = true

		tracks = append(tracks, models.NewTrack(abs, strings.TrimSpace(a.Text()), CategoryOf(href)))
	})

	return tracks, nil
}

// IsAudioLink reports whether href, case-insensitively, ends with ".mp3".
func IsAudioLink(href string) bool {
	return strings.HasSuffix(strings.ToLower(href), ".mp3")
}

// CategoryOf returns the directory part of href with [CategoryPrefix] removed.
//
// Percent-encoded hrefs are decoded first. A bare file name, or one in ".", has no category.
func CategoryOf(href string) string {
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}

	i := strings.LastIndex(href, "/")
	switch {
	case i < 0:
		return ""
	case i == 0:
		return "/"
	}

	dir := href[:i]
	if dir == "." {
		return ""
	}
	return strings.Replace(dir, CategoryPrefix, "", 1)
}
