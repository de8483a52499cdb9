package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/desertthunder/wereb/internal/repositories"
	"github.com/desertthunder/wereb/internal/server"
	"github.com/desertthunder/wereb/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the catalog API until interrupted.
//
// Every request to /api/tracks fetches upstream; concurrent requests share one fetch.
// Durations are never probed inside a request, so served tracks carry the placeholder
// duration whatever [shared.CatalogConfig.DurationProbe] says.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.Config()

	addr := cmd.String("listen")
	if addr == "" {
		addr = config.Server.Addr()
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%w: listen address %q: %v", shared.ErrInvalidArgument, addr, err)
	}

	p, err := r.unprobedProvider()
	if err != nil {
		return err
	}
	if probe := config.Catalog.DurationProbe; probe != "" && probe != shared.ProbeNone {
		r.logger.Warn("duration probing is skipped while serving", "duration_probe", probe)
	}

	var fetcher server.Fetcher = p
	if cmd.Bool("save") {
		store, done, err := r.openStore()
		if err != nil {
			return err
		}
		defer done()
		fetcher = repositories.NewCachingProvider(p, store, config.Catalog.BaseURL, r.logger)
	}

	tracks := server.NewTracksHandler(fetcher, config.Catalog.Timeout(), r.logger)
	router := server.New(tracks, r.logger)

	if cmd.Bool("open") {
		go r.openWhenListening(ctx, addr)
	}

	r.logger.Info("serving catalog", "provider", p.Name(), "base_url", config.Catalog.BaseURL)
	return server.Serve(ctx, addr, router, r.logger)
}

// openWhenListening waits for addr to accept connections, then opens the tracks endpoint.
func (r *Runner) openWhenListening(ctx context.Context, addr string) {
	host, port, _ := net.SplitHostPort(addr)
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	target := net.JoinHostPort(host, port)
	url := fmt.Sprintf("http://%s/api/tracks", target)

	for range 50 {
		if ctx.Err() != nil {
			return
		}
		conn, err := net.DialTimeout("tcp", target, 100*time.Millisecond)
		if err == nil {
			conn.Close()
			if err := shared.OpenBrowser(url); err != nil {
				r.logger.Warn("failed to open browser", "url", url, "error", err)
			}
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
	r.logger.Warn("server did not start listening, not opening browser", "addr", addr)
}
