package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hookwatch/internal/dashboard"
	"github.com/roach88/hookwatch/internal/gateway"
	"github.com/roach88/hookwatch/internal/livesync"
	"github.com/roach88/hookwatch/internal/stats"
	"github.com/roach88/hookwatch/internal/transport"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	MetricsAddr string // overrides metrics.addr
	NoInput     bool   // ignore terminal commands on stdin

	// IDs overrides the push client id generator (for testing).
	IDs transport.IDGenerator
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the gateway's push stream live",
		Long: `Subscribe to the gateway's push stream and keep the dashboard in sync:
record delivered webhooks in the history, update session statuses, show
QR codes for the session being paired and log gateway events.

Terminal commands are read from stdin, one per line (type "help").
"q" or "quit" stops watching.

Examples:
  hookwatch watch
  hookwatch --gateway https://gw.example.com watch --metrics-addr :9090
  HOOKWATCH_TOKEN=secret hookwatch --config hookwatch.yaml watch`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&opts.NoInput, "no-input", false, "ignore terminal commands on stdin")

	return cmd
}

func runWatch(opts *WatchOptions, cmd *cobra.Command) error {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	f := opts.formatter(cmd)
	env, err := openEnvironment(ctx, opts.RootOptions, f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer env.Close()

	cfg := env.cfg
	logger := env.logger
	slog.SetDefault(logger)
	if opts.MetricsAddr != "" {
		cfg.Metrics.Addr = opts.MetricsAddr
	}

	totals := stats.New()
	dash := dashboard.New(cmd.OutOrStdout(), env.store, env.pager, env.projector,
		dashboard.WithTotals(totals),
		dashboard.WithLocation(env.location),
		dashboard.WithEventLimit(cfg.Display.EventLimit),
		dashboard.WithLogger(logger),
	)

	directory := gateway.NewDirectory(
		gateway.NewClient(cfg.Gateway.URL, cfg.Gateway.Token, nil),
		dash,
		logger,
	)
	consumer := livesync.NewConsumer(env.store, livesync.Collaborators{
		Directory: directory,
		Stats:     liveTotals{Aggregator: totals, dash: dash},
		Events:    dash,
		Board:     dash,
		Detail:    dash,
		Indicator: dash,
	}, logger)
	loop := livesync.NewLoop(consumer, logger)

	push, err := transport.NewClient(transport.Options{
		URL:    cfg.ResolvedPushURL(),
		Token:  cfg.Gateway.Token,
		IDs:    opts.IDs,
		Logger: logger,
	})
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, "invalid push url", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	var wg sync.WaitGroup

	if cfg.Metrics.Addr != "" {
		srv := newMetricsServer(cfg.Metrics.Addr, totals)
		wg.Add(1)
		go func() {
			defer wg.Done()
			serveMetrics(ctx, srv, logger)
		}()
	}

	loop.Do(func(ctx context.Context) {
		directory.Reload(ctx)
		dash.Render()
	})

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = push.Run(ctx, loop)
	}()

	if !opts.NoInput {
		// Not joined: a read on a terminal cannot be interrupted.
		go readCommands(ctx, cmd.InOrStdin(), loop, dash, cancel)
	}

	logger.Info("watching gateway", "gateway", cfg.Gateway.URL, "push_url", cfg.ResolvedPushURL(), "client_id", push.ClientID())

	runErr := loop.Run(ctx)
	cancel()
	wg.Wait()

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "sync loop error", runErr)
	}

	t := totals.Totals()
	logger.Info("stopped watching", "sent", t.Sent, "success", t.Success, "failed", t.Failed)
	return nil
}

// liveTotals redraws after counting so the header matches the history table.
type liveTotals struct {
	*stats.Aggregator
	dash *dashboard.Dashboard
}

func (l liveTotals) RecordWebhook(success bool) {
	l.Aggregator.RecordWebhook(success)
	l.dash.Render()
}

// readCommands feeds terminal commands into the loop until input ends.
func readCommands(ctx context.Context, in io.Reader, loop *livesync.Loop, dash *dashboard.Dashboard, quit context.CancelFunc) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "q", "quit", "exit":
			quit()
			return
		}
		parsed, parseErr := dashboard.ParseCommand(line)
		loop.Do(func(ctx context.Context) {
			err := parseErr
			if err == nil {
				err = dash.Execute(ctx, parsed)
			}
			if err != nil {
				dash.Log(livesync.LevelError, "command", fmt.Sprintf("%s: %v", line, err))
			}
		})
	}
}

func newMetricsServer(addr string, totals *stats.Aggregator) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", totals.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serveMetrics runs srv until ctx is done.
func serveMetrics(ctx context.Context, srv *http.Server, logger *slog.Logger) {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}
}
