package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wereb/internal/catalog"
	"github.com/desertthunder/wereb/internal/formatter"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/playback"
	"github.com/desertthunder/wereb/internal/player"
	"github.com/desertthunder/wereb/internal/shared"
	"github.com/desertthunder/wereb/internal/streaming"
	"github.com/urfave/cli/v3"
)

// Play streams one track, or with --continue the rest of the catalog after it, until
// playback ends or the command is interrupted.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("track")
	if query == "" {
		return fmt.Errorf("%w: track id or search term is required", shared.ErrMissingArgument)
	}

	tracks, err := r.loadTracks(ctx, cmd)
	if err != nil {
		return err
	}

	track, err := pickTrack(tracks, query)
	if err != nil {
		return err
	}

	config := r.Config()
	volume := cmd.Float("volume")
	if volume < 0 {
		volume = config.Player.Volume
	}

	p := player.New(player.Options{
		HTTPClient: r.streamClient(),
		BufferSize: config.Player.BufferKB * 1024,
		Volume:     volume,
	})
	defer p.Close()

	session := playback.NewSession(tracks, p)
	if err := session.SetVolume(volume); err != nil {
		return err
	}
	if err := session.Play(ctx, track); err != nil {
		return err
	}
	r.writePlain("▶ %s • %s\n", track.DisplayTitle(), track.Category)

	for {
		select {
		case <-ctx.Done():
			r.writePlain("\n")
			return nil
		case status := <-p.Progress():
			session.Report(status.Current, status.Total)
			r.writePlain("\r%s / %s  %-16s", formatter.Duration(status.Current.Seconds()), formatter.Duration(status.Total.Seconds()), streaming.Status(status.Stalled))
		case <-p.Done():
			r.writePlain("\n")
			if !cmd.Bool("continue") {
				return nil
			}

			before, _ := session.Current()
			if err := session.Ended(ctx); err != nil {
				return err
			}
			if session.State() != playback.Playing {
				return nil
			}
			if next, _ := session.Current(); next.ID != before.ID {
				r.writePlain("▶ %s • %s\n", next.DisplayTitle(), next.Category)
			}
		}
	}
}

// pickTrack resolves query as a track id, falling back to the first title or category match.
func pickTrack(tracks []models.Track, query string) (models.Track, error) {
	if t, ok := catalog.Find(tracks, query); ok {
		return t, nil
	}

	if matches := catalog.Filter(tracks, shared.NormalizeTerm(query)); len(matches) > 0 {
		return matches[0], nil
	}
	return models.Track{}, fmt.Errorf("%w: no track matches %q", shared.ErrTrackNotFound, query)
}
