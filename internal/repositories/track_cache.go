package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wereb/internal/models"
)

// Fetcher is the provider behaviour [CachingProvider] wraps.
type Fetcher interface {
	Name() string
	GetTracks(ctx context.Context) ([]models.Track, error)
}

// CachingProvider saves every successful fetch of the wrapped provider as the new snapshot.
//
// Fetch errors pass through untouched. A failed save is logged and does not fail the fetch.
type CachingProvider struct {
	Fetcher
	store  models.SnapshotStore
	source string
	logger *log.Logger
}

// NewCachingProvider wraps f so its results are stored in store, labelled with source.
func NewCachingProvider(f Fetcher, store models.SnapshotStore, source string, logger *log.Logger) *CachingProvider {
	return &CachingProvider{Fetcher: f, store: store, source: source, logger: logger}
}

// GetTracks fetches through the wrapped provider and saves the result.
func (c *CachingProvider) GetTracks(ctx context.Context) ([]models.Track, error) {
	tracks, err := c.Fetcher.GetTracks(ctx)
	if err != nil {
		return nil, err
	}

	snap := models.Snapshot{Source: c.source, Provider: c.Name(), FetchedAt: time.Now(), Tracks: tracks}
	if err := c.store.Save(ctx, snap); err != nil {
		if c.logger != nil {
			c.logger.Error("failed to cache catalog", "error", err)
		}
	}
	return tracks, nil
}

// Refresh fetches through the wrapped provider and requires the save to succeed.
func (c *CachingProvider) Refresh(ctx context.Context) (*models.Snapshot, error) {
	tracks, err := c.Fetcher.GetTracks(ctx)
	if err != nil {
		return nil, err
	}

	snap := models.Snapshot{Source: c.source, Provider: c.Name(), FetchedAt: time.Now(), Tracks: tracks}
	if err := c.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to cache catalog: %w", err)
	}
	return &snap, nil
}
