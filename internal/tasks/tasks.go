package tasks

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/services"
)

// DefaultWorkers is the worker pool size used when none is given.
const DefaultWorkers = 4

// MaxWorkers caps the worker pool size.
const MaxWorkers = 10

// RefreshResult summarizes a [CatalogEngine.Refresh].
type RefreshResult struct {
	Snapshot models.Snapshot
	Probed   int
	Failed   int
	Saved    bool
	Elapsed  time.Duration
}

// CatalogEngine runs refreshes and bulk exports for one provider.
type CatalogEngine struct {
	provider services.Provider
	prober   services.DurationProber
	store    models.SnapshotStore
	source   string
	workers  int
	logger   *log.Logger
}

// EngineOpts holds the optional parts of a [CatalogEngine].
type EngineOpts struct {
	Prober  services.DurationProber // Prober fills durations after the fetch; nil skips probing
	Store   models.SnapshotStore    // Store receives the refreshed snapshot; nil skips saving
	Source  string                  // Source labels the snapshot, usually the base URL
	Workers int                     // Workers is the probe and export pool size (default: 4, max: 10)
	Logger  *log.Logger
}

// NewCatalogEngine creates a new CatalogEngine over provider.
func NewCatalogEngine(provider services.Provider, opts EngineOpts) *CatalogEngine {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Workers > MaxWorkers {
		opts.Workers = MaxWorkers
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &CatalogEngine{
		provider: provider,
		prober:   opts.Prober,
		store:    opts.Store,
		source:   opts.Source,
		workers:  opts.Workers,
		logger:   opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Refresh fetches the catalog, probes durations and saves the snapshot.
//
// Probe failures are counted and logged; the track keeps its placeholder duration.
// A fetch or save failure fails the refresh.
func (e *CatalogEngine) Refresh(ctx context.Context, progress chan<- ProgressUpdate) (*RefreshResult, error) {
	start := time.Now()

	e.sendProgress(progress, fetchingCatalogUpdate(e.source))
	tracks, err := e.provider.GetTracks(ctx)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, fetchedCatalogUpdate(len(tracks)))

	result := &RefreshResult{
		Snapshot: models.Snapshot{
			Source:    e.source,
			Provider:  e.provider.Name(),
			FetchedAt: time.Now(),
			Tracks:    tracks,
		},
	}

	if e.prober != nil && len(tracks) > 0 {
		result.Probed, result.Failed = e.probe(ctx, tracks, progress)
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("refresh interrupted: %w", err)
		}
	}

	if e.store != nil {
		if err := e.store.Save(ctx, result.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to save snapshot: %w", err)
		}
		result.Saved = true
		e.sendProgress(progress, saveSnapshotUpdate(len(tracks)))
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

type probeOutcome struct {
	index int
	err   error
}

// probe fills durations in place using a worker pool. Each worker owns the indexes it
// receives, so tracks is written without locking.
func (e *CatalogEngine) probe(ctx context.Context, tracks []models.Track, progress chan<- ProgressUpdate) (probed, failed int) {
	jobs := make(chan int, len(tracks))
	results := make(chan probeOutcome, len(tracks))

	var wg sync.WaitGroup
	for range min(e.workers, len(tracks)) {
		wg.Add(1)
		go e.probeWorker(ctx, &wg, tracks, jobs, results)
	}

	for i := range tracks {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		title := tracks[res.index].DisplayTitle()
		if res.err != nil {
			failed++
			e.logger.Warn("duration probe failed", "url", tracks[res.index].URL, "error", res.err)
		} else {
			probed++
		}
		e.sendProgress(progress, probeUpdate(completed, len(tracks), title, res.err))
	}
	return probed, failed
}

// probeWorker is a worker goroutine that probes the tracks named on the jobs channel.
func (e *CatalogEngine) probeWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	tracks []models.Track,
	jobs <-chan int,
	results chan<- probeOutcome,
) {
	defer wg.Done()

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			results <- probeOutcome{index: i, err: err}
			continue
		}

		res, err := e.prober.Probe(ctx, tracks[i])
		if err == nil {
			tracks[i].Duration = res.Seconds
			if tracks[i].Title == "" && res.Title != "" {
				tracks[i].Title = res.Title
			}
		}
		results <- probeOutcome{index: i, err: err}
	}
}
