// package services defines the [Provider] interface for catalog upstreams
package services

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
)

// DefaultProvider is the provider key used when none is configured.
const DefaultProvider = "eotc-org"

// Provider retrieves the catalog from one upstream.
type Provider interface {
	// Name returns the registry key of the provider (e.g., "eotc-org")
	Name() string

	// GetTracks fetches the upstream and returns its tracks in document order.
	GetTracks(ctx context.Context) ([]models.Track, error)
}

// ProviderOptions carries the dependencies a [ProviderFactory] may use.
type ProviderOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Prober     DurationProber
	Logger     *log.Logger
}

// ProviderFactory constructs a [Provider].
type ProviderFactory func(opts ProviderOptions) Provider

var registry = map[string]ProviderFactory{
	DefaultProvider: func(opts ProviderOptions) Provider { return NewEOTCProvider(opts) },
}

// Register adds a factory under key, replacing any existing one.
func Register(key string, f ProviderFactory) {
	registry[key] = f
}

// Providers returns the registered keys in sorted order.
func Providers() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// NewProvider looks up key in the registry and constructs the provider.
//
// An empty key selects [DefaultProvider]. Unknown keys wrap [shared.ErrMissingConfig] and [shared.ErrUnknownSource].
func NewProvider(key string, opts ProviderOptions) (Provider, error) {
	if key == "" {
		key = DefaultProvider
	}

	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("%w: %w: %q", shared.ErrMissingConfig, shared.ErrUnknownSource, key)
	}
	return f(opts), nil
}

// FetchCatalog fetches baseURL with the default provider and no duration probing.
func FetchCatalog(ctx context.Context, baseURL string) ([]models.Track, error) {
	return NewEOTCProvider(ProviderOptions{BaseURL: baseURL}).GetTracks(ctx)
}

// fetchError wraps err with [shared.ErrFetchTracks] so callers can match either.
func fetchError(err error) error {
	return fmt.Errorf("%w: %w", shared.ErrFetchTracks, err)
}
