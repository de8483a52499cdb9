package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/playback"
	"github.com/desertthunder/wereb/internal/player"
	"github.com/desertthunder/wereb/internal/shared"
	"github.com/desertthunder/wereb/internal/ui"
	"github.com/urfave/cli/v3"
)

// fetcherFunc adapts a function to [ui.Fetcher].
type fetcherFunc func(ctx context.Context) ([]models.Track, error)

func (f fetcherFunc) GetTracks(ctx context.Context) ([]models.Track, error) { return f(ctx) }

// TUI launches the interactive terminal browser and player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file while the TUI owns the terminal
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	config := r.Config()
	p := player.New(player.Options{
		HTTPClient: r.streamClient(),
		BufferSize: config.Player.BufferKB * 1024,
		Volume:     config.Player.Volume,
	})
	defer p.Close()

	session := playback.NewSession(nil, p)
	if err := session.SetVolume(config.Player.Volume); err != nil {
		return err
	}

	return ui.Run(ctx, ui.Options{
		Fetcher: fetcherFunc(func(ctx context.Context) ([]models.Track, error) { return r.loadTracks(ctx, cmd) }),
		Session: session,
		Audio:   p,
	})
}
