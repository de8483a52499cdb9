// Package playback tracks what is playing: the current track, play state, volume and position.
//
// A [Session] moves through three states:
//
//	Idle --Play--> Playing <--Pause/Resume--> Paused
//
// Next and Previous step through the full, unfiltered track list and do nothing at either end.
// When a [Backend] is attached every transition is forwarded to it so real audio follows the state.
package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/models"
)

// State is the play state of a [Session].
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Backend produces audio for a [Session].
type Backend interface {
	Load(ctx context.Context, track models.Track) error // Load starts playing track from the beginning
	Pause() error                                       // Pause halts output, keeping the position
	Resume() error                                      // Resume continues from the paused position
	Seek(position time.Duration) error                  // Seek moves to an absolute offset
	SetVolume(level float64) error                      // SetVolume sets the output level in [0,1]
}

// Session is the playback state machine. It is safe for concurrent use. Backend Load and
// Seek run without the lock held; the other backend calls are quick and run under it.
type Session struct {
	mu       sync.Mutex
	tracks   []models.Track
	current  *models.Track
	state    State
	volume   float64
	position time.Duration
	duration time.Duration
	backend  Backend

	// generation counts started loads; only the latest may commit
	generation int
}

// NewSession creates an idle session over tracks at full volume. backend may be nil.
func NewSession(tracks []models.Track, backend Backend) *Session {
	return &Session{tracks: tracks, volume: 1, backend: backend}
}

// SetTracks replaces the track list, as after a refresh. The current track keeps playing.
func (s *Session) SetTracks(tracks []models.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = tracks
}

// Tracks returns the unfiltered track list.
func (s *Session) Tracks() []models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracks
}

// Current returns the current track, if any.
func (s *Session) Current() (models.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return models.Track{}, false
	}
	return *s.current, true
}

// State returns the play state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Volume returns the volume in [0,1].
func (s *Session) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Position returns the last reported position and duration of the current track.
func (s *Session) Position() (time.Duration, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position, s.duration
}

// Play makes track current and starts it.
//
// The backend loads the track without the session lock held. When another Play, Next,
// Previous or Ended starts before the load finishes, the later one wins and this call
// commits nothing.
func (s *Session) Play(ctx context.Context, track models.Track) error {
	s.mu.Lock()
	gen := s.begin()
	s.mu.Unlock()
	return s.load(ctx, gen, track)
}

// begin claims a new load generation. Callers hold s.mu.
func (s *Session) begin() int {
	s.generation++
	return s.generation
}

// load runs the backend outside s.mu and commits track if gen is still the latest.
func (s *Session) load(ctx context.Context, gen int, track models.Track) error {
	if s.backend != nil {
		if err := s.backend.Load(ctx, track); err != nil {
			return fmt.Errorf("failed to load %s: %w", track.URL, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil
	}

	s.current = &track
	s.state = Playing
	s.position = 0
	s.duration = time.Duration(track.Duration * float64(time.Second))
	return nil
}

// Pause pauses a playing track. It does nothing in any other state.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pause()
}

func (s *Session) pause() error {
	if s.state != Playing {
		return nil
	}
	if s.backend != nil {
		if err := s.backend.Pause(); err != nil {
			return fmt.Errorf("failed to pause: %w", err)
		}
	}
	s.state = Paused
	return nil
}

// Resume resumes a paused track. It does nothing in any other state.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resume()
}

func (s *Session) resume() error {
	if s.state != Paused {
		return nil
	}
	if s.backend != nil {
		if err := s.backend.Resume(); err != nil {
			return fmt.Errorf("failed to resume: %w", err)
		}
	}
	s.state = Playing
	return nil
}

// TogglePlay flips between Playing and Paused.
func (s *Session) TogglePlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Playing {
		return s.pause()
	}
	return s.resume()
}

// Next plays the track after the current one. At the last track, or when the current
// track is not in the list, it does nothing.
func (s *Session) Next(ctx context.Context) error {
	return s.step(ctx, 1)
}

// Previous plays the track before the current one. At the first track it does nothing.
func (s *Session) Previous(ctx context.Context) error {
	return s.step(ctx, -1)
}

func (s *Session) step(ctx context.Context, delta int) error {
	s.mu.Lock()
	track, ok := s.neighbor(delta)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	gen := s.begin()
	s.mu.Unlock()

	return s.load(ctx, gen, track)
}

// neighbor returns the track delta places from the current one. Callers hold s.mu.
func (s *Session) neighbor(delta int) (models.Track, bool) {
	if s.current == nil {
		return models.Track{}, false
	}

	i := catalog.IndexOf(s.tracks, s.current.ID)
	if i < 0 {
		return models.Track{}, false
	}

	j := i + delta
	if j < 0 || j >= len(s.tracks) {
		return models.Track{}, false
	}
	return s.tracks[j], true
}

// Ended handles the end of the current track by advancing. At the last track the session
// stays on it and becomes Paused.
func (s *Session) Ended(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil
	}

	track, ok := s.neighbor(1)
	if !ok {
		s.state = Paused
		s.position = s.duration
		s.mu.Unlock()
		return nil
	}
	gen := s.begin()
	s.mu.Unlock()

	return s.load(ctx, gen, track)
}

// Seek moves to value percent of the reported duration. value is clamped to [0,100].
// It returns the absolute offset.
//
// The backend seeks outside the session lock. A Play that starts meanwhile discards the
// new position.
func (s *Session) Seek(value float64) (time.Duration, error) {
	s.mu.Lock()
	offset := time.Duration(clamp(value, 0, 100) / 100 * float64(s.duration))
	if s.current == nil {
		s.mu.Unlock()
		return 0, nil
	}
	gen := s.generation
	s.mu.Unlock()

	if s.backend != nil {
		if err := s.backend.Seek(offset); err != nil {
			return 0, fmt.Errorf("failed to seek: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.generation {
		s.position = offset
	}
	return offset, nil
}

// SetVolume sets the volume, clamped to [0,1].
func (s *Session) SetVolume(level float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setVolume(clamp(level, 0, 1))
}

func (s *Session) setVolume(level float64) error {
	if s.backend != nil {
		if err := s.backend.SetVolume(level); err != nil {
			return fmt.Errorf("failed to set volume: %w", err)
		}
	}
	s.volume = level
	return nil
}

// ToggleMute sets the volume to 0 when it is above 0, and to 1 otherwise.
// The previous level is not restored.
func (s *Session) ToggleMute() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.volume > 0 {
		return s.setVolume(0)
	}
	return s.setVolume(1)
}

// Report records the position and duration reported by the audio output.
// A non-positive duration keeps the previous one.
func (s *Session) Report(position, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if duration > 0 {
		s.duration = duration
	}
	s.position = position
}

// Progress maps position within duration to a 0-100 slider value.
func Progress(position, duration time.Duration) float64 {
	if duration <= 0 {
		return 0
	}
	return clamp(float64(position)/float64(duration)*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
