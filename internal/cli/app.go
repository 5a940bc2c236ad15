package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hookwatch/internal/config"
	"github.com/roach88/hookwatch/internal/history"
	"github.com/roach88/hookwatch/internal/kv"
	"github.com/roach88/hookwatch/internal/pager"
	"github.com/roach88/hookwatch/internal/project"
)

// formatter builds the output formatter for a command invocation.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the config file and applies flag overrides.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath, false)
	if err != nil {
		return config.Config{}, err
	}
	if o.StoreDSN != "" {
		cfg.Store.DSN = o.StoreDSN
	}
	if o.GatewayURL != "" {
		cfg.Gateway.URL = o.GatewayURL
	}
	if o.Locale != "" {
		cfg.Display.Locale = o.Locale
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger returns a text logger at the configured level, or debug when
// --verbose is set.
func (o *RootOptions) newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// environment is the persisted state every command works against.
type environment struct {
	cfg       config.Config
	location  *time.Location
	logger    *slog.Logger
	backend   kv.Store
	store     *history.Store
	pager     *pager.Paginator
	projector *project.Projector
}

// openEnvironment loads config, opens the store and hydrates the history.
// Failures are reported through f and returned as ExitErrors.
func openEnvironment(ctx context.Context, opts *RootOptions, f *OutputFormatter, logOut io.Writer) (*environment, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	logger := opts.newLogger(cfg, logOut)

	backend, err := kv.Open(cfg.Store.DSN)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open store", err)
	}
	f.VerboseLog("Opened store: %s", cfg.Store.DSN)

	store := history.New(backend,
		history.WithKey(cfg.Store.HistoryKey),
		history.WithLogger(logger),
	)
	pg := pager.New(store, backend,
		pager.WithKey(cfg.Store.PageSizeKey),
		pager.WithLogger(logger),
	)
	// Capacity comes from the page-size preference, so it loads first.
	pg.Load(ctx)
	store.Hydrate(ctx)

	return &environment{
		cfg:       cfg,
		location:  loc,
		logger:    logger,
		backend:   backend,
		store:     store,
		pager:     pg,
		projector: project.New(project.WithLocale(cfg.Display.Locale), project.WithLocation(loc)),
	}, nil
}

func (e *environment) Close() {
	if err := e.backend.Close(); err != nil {
		e.logger.Warn("failed to close store", "error", err)
	}
}
