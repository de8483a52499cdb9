package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wereb/internal/services"
	"github.com/desertthunder/wereb/internal/shared"
	"github.com/desertthunder/wereb/internal/tasks"
	"github.com/urfave/cli/v3"
)

// snapshotSummary is the JSON shape printed by [Runner.CacheShow].
type snapshotSummary struct {
	Source    string    `json:"source"`
	Provider  string    `json:"provider"`
	Tracks    int       `json:"tracks"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CacheRefresh fetches the catalog, probes durations with a worker pool and stores the result.
func (r *Runner) CacheRefresh(ctx context.Context, cmd *cli.Command) error {
	config := r.Config()

	mode := config.Catalog.DurationProbe
	if m := cmd.String("probe"); m != "" {
		mode = m
	}
	prober, err := services.NewProber(mode, r.client(), config.Catalog.ProbeRate)
	if err != nil {
		return err
	}

	provider, err := r.unprobedProvider()
	if err != nil {
		return err
	}

	store, done, err := r.openStore()
	if err != nil {
		return err
	}
	defer done()

	engine := tasks.NewCatalogEngine(provider, tasks.EngineOpts{
		Prober:  prober,
		Store:   store,
		Source:  config.Catalog.BaseURL,
		Workers: cmd.Int("workers"),
		Logger:  r.logger,
	})

	progress, wait := r.reportProgress()
	result, err := engine.Refresh(ctx, progress)
	wait()
	if err != nil {
		return err
	}

	r.writePlain("✓ Stored %d tracks from %s\n", len(result.Snapshot.Tracks), result.Snapshot.Source)
	if prober != nil {
		r.writePlain("  Durations: %d probed, %d failed\n", result.Probed, result.Failed)
	}
	r.writePlain("  Took %s\n", result.Elapsed.Round(time.Millisecond))
	return nil
}

// CacheShow describes the stored snapshot.
func (r *Runner) CacheShow(ctx context.Context, cmd *cli.Command) error {
	store, done, err := r.openStore()
	if err != nil {
		return err
	}
	defer done()

	info, err := store.Info(ctx)
	if errors.Is(err, shared.ErrNoSnapshot) {
		return r.writePlain("No snapshot stored. Run 'wereb cache refresh' to create one.\n")
	}
	if err != nil {
		return err
	}

	summary := snapshotSummary{Source: info.Source, Provider: info.Provider, Tracks: info.Count, FetchedAt: info.FetchedAt}
	if cmd.Bool("json") {
		return r.writeJSON(summary, cmd.Bool("pretty"))
	}

	r.writePlain("Source:   %s\n", summary.Source)
	r.writePlain("Provider: %s\n", summary.Provider)
	r.writePlain("Tracks:   %d\n", summary.Tracks)
	r.writePlain("Fetched:  %s\n", summary.FetchedAt.Local().Format(time.RFC1123))
	return nil
}

// CacheClear deletes the stored snapshot.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	store, done, err := r.openStore()
	if err != nil {
		return err
	}
	defer done()

	if err := store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return r.writePlain("✓ Snapshot cleared\n")
}
