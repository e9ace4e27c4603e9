package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marco/toonboard/internal/config"
	"github.com/marco/toonboard/internal/dataset"
	"github.com/marco/toonboard/internal/server"
	"github.com/marco/toonboard/internal/watch"
)

var (
	serveVariant string
	servePort    int
	serveWatch   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Loads and cleans the dataset once, then serves the dashboard until
interrupted. A load failure is fatal.

With --watch (or source.watch in the config) and a local source file, edits
to the file are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveVariant, "variant", "", "Dashboard layout: basic or interactive")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides config and "+config.PortEnv+")")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload a local source file when it changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.close()

	if serveVariant != "" {
		a.cfg.Dashboard.Variant = serveVariant
	}
	if servePort != 0 {
		a.cfg.Server.Port = servePort
	}
	if serveWatch {
		a.cfg.Source.Watch = true
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dash, err := a.dashboard(ctx, a.dashboardOptions())
	if err != nil {
		return err
	}
	srv, err := server.New(a.cfg, dash)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if a.cfg.Source.Watch {
		if path, ok := dataset.LocalPath(a.cfg.Source.URL); ok {
			w, err := watch.New(watch.Config{
				Path:     path,
				Debounce: time.Duration(a.cfg.Source.DebounceMs) * time.Millisecond,
			}, reloadHandler(a, srv))
			if err != nil {
				stop()
				g.Wait()
				return fmt.Errorf("failed to watch source: %w", err)
			}
			g.Go(func() error {
				return w.Run(gctx)
			})
		} else {
			slog.Warn("source watch needs a local file, ignoring", "source", a.cfg.Source.URL)
		}
	}

	return g.Wait()
}

// reloadHandler rebuilds the dashboard from the source and swaps it in. A
// failed reload keeps the current snapshot.
func reloadHandler(a *app, srv *server.Server) watch.ChangeHandler {
	return func(ctx context.Context) {
		dash, err := a.dashboard(ctx, a.dashboardOptions())
		if err != nil {
			slog.Error("source reload failed, keeping previous snapshot",
				"source", a.cfg.Source.URL,
				"error", err,
			)
			return
		}
		srv.Swap(dash)
	}
}
