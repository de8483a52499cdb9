package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wereb/internal/models"
	"github.com/desertthunder/wereb/internal/repositories"
	"github.com/desertthunder/wereb/internal/services"
	"github.com/desertthunder/wereb/internal/shared"
	"github.com/desertthunder/wereb/internal/streaming"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	provider   services.Provider
	httpClient *http.Client
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Provider and DB are built from the configuration on first use when nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Provider   services.Provider
	HTTPClient *http.Client
	DB         *sql.DB
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		provider:   opts.Provider,
		httpClient: opts.HTTPClient,
		db:         opts.DB,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, tracksCommand, serveCommand, playCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config (file, then environment) unless one
// was injected, and applies --debug.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if r.config != nil && !cmd.IsSet("config") {
		return ctx, nil
	}

	path := cmd.String("config")
	config, err := shared.ResolveConfig(path)
	if err != nil {
		return ctx, err
	}

	r.config = config
	r.configPath = path
	r.logger.Debug("configuration loaded", "path", path, "base_url", config.Catalog.BaseURL)
	return ctx, nil
}

// Config returns the active configuration, falling back to defaults.
func (r *Runner) Config() *shared.Config {
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}
	return r.config
}

// SetLogger replaces the logger, as when the TUI takes over the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) client() *http.Client {
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.Config().Catalog.Timeout()}
	}
	return r.httpClient
}

// streamClient is [Runner.client] without the overall timeout. Audio bodies are read at
// playback speed and outlive any catalog timeout.
func (r *Runner) streamClient() *http.Client {
	c := *r.client()
	c.Timeout = 0
	if c.Transport == nil {
		c.Transport = streaming.Client.Transport
	}
	return &c
}

// Provider returns the configured catalog provider, probing durations per [shared.CatalogConfig].
func (r *Runner) Provider() (services.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}

	prober, err := r.prober()
	if err != nil {
		return nil, err
	}

	p, err := r.newProvider(prober)
	if err != nil {
		return nil, err
	}
	r.provider = p
	return p, nil
}

// unprobedProvider returns the injected provider, or the configured one without duration
// probing.
func (r *Runner) unprobedProvider() (services.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}
	return r.newProvider(nil)
}

func (r *Runner) prober() (services.DurationProber, error) {
	c := r.Config().Catalog
	return services.NewProber(c.DurationProbe, r.client(), c.ProbeRate)
}

func (r *Runner) newProvider(prober services.DurationProber) (services.Provider, error) {
	c := r.Config().Catalog
	return services.NewProvider(c.Provider, services.ProviderOptions{
		BaseURL:    c.BaseURL,
		HTTPClient: r.client(),
		Prober:     prober,
		Logger:     r.logger,
	})
}

// openStore returns the snapshot repository over a migrated database. The returned func
// closes a database opened here; an injected one is left open.
func (r *Runner) openStore() (*repositories.SnapshotRepository, func(), error) {
	if r.db != nil {
		return repositories.NewSnapshotRepository(r.db), func() {}, nil
	}

	db, err := shared.OpenDatabase(r.Config().Database)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewSnapshotRepository(db), func() { db.Close() }, nil
}

// loadTracks returns the catalog: from the stored snapshot with --offline, otherwise from
// the provider, saving a new snapshot with --save.
func (r *Runner) loadTracks(ctx context.Context, cmd *cli.Command) ([]models.Track, error) {
	if cmd.Bool("offline") {
		store, done, err := r.openStore()
		if err != nil {
			return nil, err
		}
		defer done()

		snap, err := store.Load(ctx)
		if errors.Is(err, shared.ErrNoSnapshot) {
			return nil, fmt.Errorf("%w: run 'wereb cache refresh' first", err)
		}
		if err != nil {
			return nil, err
		}
		r.logger.Debug("loaded snapshot", "fetched_at", snap.FetchedAt, "tracks", len(snap.Tracks))
		return snap.Tracks, nil
	}

	p, err := r.Provider()
	if err != nil {
		return nil, err
	}

	var f repositories.Fetcher = p
	if cmd.Bool("save") {
		store, done, err := r.openStore()
		if err != nil {
			return nil, err
		}
		defer done()
		f = repositories.NewCachingProvider(p, store, r.Config().Catalog.BaseURL, r.logger)
	}

	tracks, err := f.GetTracks(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("fetched catalog", "provider", p.Name(), "tracks", len(tracks))
	return tracks, nil
}

// isTerminal reports whether output is an interactive terminal.
func (r *Runner) isTerminal() bool {
	f, ok := r.output.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
