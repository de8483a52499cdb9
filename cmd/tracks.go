package main

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/formatter"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/shared"
	"github.com/desertthunder/wereb/internal/tasks"
	"github.com/urfave/cli/v3"
)

// TracksList prints the whole catalog.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}
	return r.printTracks(cmd, tracks)
}

// TracksTree prints the catalog grouped into folders.
func (r *Runner) TracksTree(ctx context.Context, cmd *cli.Command) error {
	tracks, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}

	tree := catalog.Group(tracks)
	if cmd.Bool("json") {
		return r.writeJSON(tree, cmd.Bool("pretty"))
	}
	if tree.Count() == 0 {
		return r.writePlain("No tracks found.\n")
	}
	return r.writePlain("%s\n", formatter.Tree(tree, nil))
}

// TracksSearch prints the tracks whose title or category contains the term argument.
func (r *Runner) TracksSearch(ctx context.Context, cmd *cli.Command) error {
	term := shared.NormalizeTerm(cmd.StringArg("term"))
	if term == "" {
		return fmt.Errorf("%w: search term is required", shared.ErrMissingArgument)
	}

	tracks, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}

	matches := catalog.Filter(tracks, term)
	r.logger.Debug("search", "term", term, "matches", len(matches))
	if len(matches) == 0 && !cmd.Bool("json") {
		return r.writePlain("No tracks match %q.\n", term)
	}
	return r.printTracks(cmd, matches)
}

// TracksFeatured prints a random sample of the catalog.
func (r *Runner) TracksFeatured(ctx context.Context, cmd *cli.Command) error {
	n := cmd.Int("count")
	if n <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", shared.ErrInvalidArgument, n)
	}

	tracks, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if seed := cmd.Int("seed"); seed != 0 {
		rng = rand.New(rand.NewPCG(uint64(seed), 0))
	}
	return r.printTracks(cmd, catalog.Sample(tracks, n, rng))
}

// TracksExport writes the catalog to a file, or one file per top-level folder with --split.
func (r *Runner) TracksExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	tracks, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}
	if q := shared.NormalizeTerm(cmd.String("query")); q != "" {
		tracks = catalog.Filter(tracks, q)
	}

	if !cmd.Bool("split") {
		if cmd.String("output") == "-" {
			data, err := formatter.Export(tracks, format)
			if err != nil {
				return err
			}
			return r.writePlain("%s", data)
		}

		path, err := formatter.WriteExport(tracks, format, cmd.String("output"))
		if err != nil {
			return err
		}
		r.logger.Info("export complete", "path", path, "tracks", len(tracks))
		return r.writePlain("✓ Exported %d tracks to %s\n", len(tracks), path)
	}

	engine := tasks.NewCatalogEngine(nil, tasks.EngineOpts{Workers: cmd.Int("workers"), Logger: r.logger})
	progress, wait := r.reportProgress()
	result, err := engine.BulkExport(ctx, progress, tracks, tasks.BulkExportOpts{
		Format:    format,
		OutputDir: cmd.String("output"),
	})
	wait()
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d/%d folders to %s\n", result.SuccessfulExports, result.TotalFolders, result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	if result.FailedExports > 0 {
		return fmt.Errorf("%d folder exports failed", result.FailedExports)
	}
	return nil
}

// printTracks writes tracks as JSON with --json, as a table on a terminal, or as plain lines.
func (r *Runner) printTracks(cmd *cli.Command, tracks []models.Track) error {
	if cmd.Bool("json") {
		if tracks == nil {
			tracks = []models.Track{}
		}
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if len(tracks) == 0 {
		return r.writePlain("No tracks found.\n")
	}

	if r.isTerminal() {
		return r.writePlain("%s\n", formatter.Table(tracks))
	}
	return r.writePlain("%s", formatter.ExportToText(tracks))
}

// reportProgress logs updates from the returned channel until the returned func is called.
// Call it once the producer has finished sending.
func (r *Runner) reportProgress() (chan<- tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for u := range progress {
			r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}
