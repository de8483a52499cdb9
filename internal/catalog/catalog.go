package catalog

import (
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/desertthunder/wereb/internal/models"
)

// FeaturedCount is the size of the featured sample.
const FeaturedCount = 6

// Filter returns the tracks whose title or category contains term, ignoring case.
//
// An empty term returns tracks unchanged. Order is preserved.
func Filter(tracks []models.Track, term string) []models.Track {
	if term == "" {
		return tracks
	}

	needle := strings.ToLower(term)
	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		if strings.Contains(strings.ToLower(t.Title), needle) || strings.Contains(strings.ToLower(t.Category), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Sample returns min(n, len(tracks)) distinct tracks chosen uniformly at random.
//
// A nil rng uses the package-level source.
func Sample(tracks []models.Track, n int, rng *rand.Rand) []models.Track {
	if n <= 0 || len(tracks) == 0 {
		return []models.Track{}
	}
	n = min(n, len(tracks))

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	pool := slices.Clone(tracks)
	for i := range n {
		j := i + intN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// IndexOf returns the position of the track with id, or -1.
func IndexOf(tracks []models.Track, id string) int {
	return slices.IndexFunc(tracks, func(t models.Track) bool { return t.ID == id })
}

// Find returns the track with id.
func Find(tracks []models.Track, id string) (models.Track, bool) {
	if i := IndexOf(tracks, id); i >= 0 {
		return tracks[i], true
	}
	return models.Track{}, false
}

// FolderSet is an immutable set of expanded folder paths.
type FolderSet struct {
	paths map[string]struct{}
}

// NewFolderSet returns a set containing paths.
func NewFolderSet(paths ...string) FolderSet {
	m := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		m[p] = struct{}{}
	}
	return FolderSet{paths: m}
}

// Toggle returns a new set with path added if absent, or removed if present.
func (s FolderSet) Toggle(path string) FolderSet {
	m := make(map[string]struct{}, len(s.paths)+1)
	for p := range s.paths {
		m[p] = struct{}{}
	}

	if _, ok := m[path]; ok {
		delete(m, path)
	} else {
		m[path] = struct{}{}
	}
	return FolderSet{paths: m}
}

// Contains reports whether path is expanded.
func (s FolderSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// Len returns the number of expanded paths.
func (s FolderSet) Len() int {
	return len(s.paths)
}

// Paths returns the expanded paths in sorted order.
func (s FolderSet) Paths() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}
