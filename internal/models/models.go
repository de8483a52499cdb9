// package models defines the data model for the wereb catalog
package models

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Track is one audio recording discovered on the directory listing.
type Track struct {
	ID       string  `json:"id" yaml:"id"`
	Title    string  `json:"title" yaml:"title"`
	URL      string  `json:"url" yaml:"url"`
	Category string  `json:"category" yaml:"category"`
	Duration float64 `json:"duration" yaml:"duration"`
}

// NewTrack builds a Track for url, deriving its ID.
func NewTrack(url, title, category string) Track {
	return Track{ID: EncodeID(url), Title: title, URL: url, Category: category}
}

// EncodeID returns the standard base64 encoding of url.
func EncodeID(url string) string {
	return base64.StdEncoding.EncodeToString([]byte(url))
}

// DecodeID recovers the URL an ID was derived from.
func DecodeID(id string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(id)
	if err != nil {
		return "", fmt.Errorf("invalid track id %q: %w", id, err)
	}
	return string(b), nil
}

// Validate checks that the track has a URL and a matching ID.
func (t Track) Validate() error {
	if t.URL == "" {
		return fmt.Errorf("track url is required")
	}
	if t.ID != EncodeID(t.URL) {
		return fmt.Errorf("track id does not match url %s", t.URL)
	}
	return nil
}

// Segments splits the category on "/" and trims each part. Empty categories yield nil.
func (t Track) Segments() []string {
	if strings.TrimSpace(t.Category) == "" {
		return nil
	}
	parts := strings.Split(t.Category, "/")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// DisplayTitle returns the title, falling back to the file name from the URL.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	if i := strings.LastIndex(t.URL, "/"); i >= 0 && i < len(t.URL)-1 {
		return t.URL[i+1:]
	}
	return t.URL
}

// Snapshot is one complete fetch result.
type Snapshot struct {
	Source    string    `json:"source"`
	Provider  string    `json:"provider"`
	FetchedAt time.Time `json:"fetched_at"`
	Tracks    []Track   `json:"tracks"`
}

// SnapshotStore persists the most recently fetched catalog. Saving replaces any previous snapshot.
type SnapshotStore interface {
	Save(ctx context.Context, s Snapshot) error // Save replaces the stored snapshot
	Load(ctx context.Context) (*Snapshot, error) // Load returns the stored snapshot
	Clear(ctx context.Context) error             // Clear removes the stored snapshot
}
