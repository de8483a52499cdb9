// Package player plays remote mp3 tracks through the system audio device.
//
// [Player] implements playback.Backend. Audio is decoded by beep while it streams, so playback
// starts before the file is fully downloaded. Seeking reopens the stream at an estimated byte
// offset.
package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"

	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/streaming"
)

// ErrSeekUnavailable is returned when the track length or file size is unknown.
var ErrSeekUnavailable = errors.New("seek unavailable for this stream")

// Status is a progress report sent on [Player.Progress].
type Status struct {
	Current   time.Duration
	Total     time.Duration
	IsPlaying bool
	Stalled   int
}

// Output is the audio device. The default uses beep's speaker package.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, n int) error { return speaker.Init(sr, n) }
func (speakerOutput) Play(s beep.Streamer)                 { speaker.Play(s) }
func (speakerOutput) Clear()                               { speaker.Clear() }
func (speakerOutput) Lock()                                { speaker.Lock() }
func (speakerOutput) Unlock()                              { speaker.Unlock() }

// Options configures a [Player].
type Options struct {
	HTTPClient *http.Client
	BufferSize int
	Volume     float64
	Output     Output
}

// Player streams and plays one track at a time.
type Player struct {
	progress chan Status
	done     chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	opts   Options
	out    Output

	mu          sync.Mutex
	initialized bool
	volumeLevel float64
	track       *models.Track
	format      beep.Format
	base        time.Duration
	total       time.Duration
	size        int64
	generation  int

	reader   *streaming.Reader
	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	volume   *effects.Volume
}

// New creates a Player. Zero options use the shared streaming client, the default buffer,
// full volume and the system speaker.
func New(opts Options) *Player {
	if opts.Output == nil {
		opts.Output = speakerOutput{}
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		progress:    make(chan Status, 1),
		done:        make(chan struct{}, 1),
		ctx:         ctx,
		cancel:      cancel,
		opts:        opts,
		out:         opts.Output,
		volumeLevel: opts.Volume,
	}
}

// Progress delivers roughly one status per second while a track plays. Updates are dropped
// when the receiver falls behind.
func (p *Player) Progress() <-chan Status {
	return p.progress
}

// Done receives once each time a track plays to its end.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Load stops the current track and starts track from the beginning.
//
// ctx bounds only the call; the stream itself lives until the next Load, Stop or Close.
func (p *Player) Load(ctx context.Context, track models.Track) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stop()

	total := time.Duration(track.Duration * float64(time.Second))
	return p.open(track, 0, 0, total)
}

// open starts streaming track at byte offset, reporting positions relative to base.
// Callers hold p.mu.
func (p *Player) open(track models.Track, offset int64, base, total time.Duration) error {
	reader, err := streaming.NewReader(p.ctx, p.opts.HTTPClient, track.URL, offset, p.opts.BufferSize)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	streamer, format, err := mp3.Decode(reader)
	if err != nil {
		reader.Close()
		return fmt.Errorf("failed to decode mp3: %w", err)
	}

	if !p.initialized {
		if err := p.out.Init(format.SampleRate, format.SampleRate.N(time.Second/5)); err != nil {
			streamer.Close()
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		p.initialized = true
	}

	if reader.Offset() == 0 {
		base = 0
	}

	p.track = &track
	p.reader = reader
	p.streamer = streamer
	p.format = format
	p.base = base
	p.total = total
	p.size = reader.Size()
	p.generation++

	p.ctrl = &beep.Ctrl{Streamer: streamer}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2}
	applyVolume(p.volume, p.volumeLevel)

	gen := p.generation
	p.out.Play(beep.Seq(p.volume, beep.Callback(func() {
		p.finished(gen)
	})))

	go p.monitor(gen)
	return nil
}

// finished runs on the speaker goroutine when a stream drains.
func (p *Player) finished(gen int) {
	go func() {
		p.mu.Lock()
		current := gen == p.generation
		p.mu.Unlock()

		if !current {
			return
		}
		select {
		case p.done <- struct{}{}:
		default:
		}
	}()
}

// Pause halts output.
func (p *Player) Pause() error {
	return p.setPaused(true)
}

// Resume continues output.
func (p *Player) Resume() error {
	return p.setPaused(false)
}

func (p *Player) setPaused(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return nil
	}
	p.out.Lock()
	p.ctrl.Paused = paused
	p.out.Unlock()
	return nil
}

// Seek jumps to position by reopening the stream at the proportional byte offset.
func (p *Player) Seek(position time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.track == nil {
		return nil
	}

	total := p.total
	if total <= 0 && p.streamer != nil && p.streamer.Len() > 0 {
		total = p.format.SampleRate.D(p.streamer.Len())
	}
	if total <= 0 || p.size <= 0 {
		return ErrSeekUnavailable
	}

	position = max(0, min(position, total))
	offset := int64(float64(p.size) * (float64(position) / float64(total)))

	paused := p.ctrl != nil && p.ctrl.Paused
	track := *p.track
	p.stop()

	if err := p.open(track, offset, position, total); err != nil {
		return err
	}
	if paused {
		p.out.Lock()
		p.ctrl.Paused = true
		p.out.Unlock()
	}
	return nil
}

// SetVolume sets the output level in [0,1].
func (p *Player) SetVolume(level float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.volumeLevel = max(0, min(1, level))
	if p.volume != nil {
		p.out.Lock()
		applyVolume(p.volume, p.volumeLevel)
		p.out.Unlock()
	}
	return nil
}

// applyVolume maps a linear level to beep's exponential gain.
func applyVolume(v *effects.Volume, level float64) {
	if level <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(level)
}

// Stop stops playback and releases the stream.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stop()
}

func (p *Player) stop() {
	if p.ctrl != nil && p.initialized {
		p.out.Clear()
	}
	p.ctrl = nil
	p.volume = nil

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	if p.reader != nil {
		p.reader.Close()
		p.reader = nil
	}
	p.track = nil
	p.generation++
}

// Close stops playback and ends progress reporting. The player can't be reused.
func (p *Player) Close() error {
	p.cancel()
	p.Stop()
	return nil
}

// Current returns the loaded track, if any.
func (p *Player) Current() (models.Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return models.Track{}, false
	}
	return *p.track, true
}

func (p *Player) monitor(gen int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last time.Duration
	stalled := 0

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		if gen != p.generation || p.streamer == nil {
			p.mu.Unlock()
			return
		}

		p.out.Lock()
		current := p.base + p.format.SampleRate.D(p.streamer.Position())
		length := p.streamer.Len()
		playing := !p.ctrl.Paused
		p.out.Unlock()

		total := p.total
		if total <= 0 && length > 0 {
			total = p.format.SampleRate.D(length)
		}
		p.mu.Unlock()

		if playing && current == last {
			stalled++
		} else {
			stalled = 0
		}
		last = current

		select {
		case p.progress <- Status{Current: current, Total: total, IsPlaying: playing, Stalled: stalled}:
		default:
		}
	}
}
