package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geo-analytics/internal/api"
	"github.com/sells-group/geo-analytics/internal/config"
	"github.com/sells-group/geo-analytics/internal/monitoring"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		return runServe(ctx, cfg)
	},
}

// runServe serves the API and the store checker until ctx is cancelled.
func runServe(ctx context.Context, c *config.Config) error {
	env, err := initEnv(ctx, c, config.ModeServe, cliMetrics())
	if err != nil {
		return err
	}
	defer env.Close()

	srv := api.NewServer(c.Server, c.Auth, api.Deps{
		Auth:    env.Auth,
		Reports: env.Reports,
		Ready:   env.Store,
		Metrics: env.Metrics,
	})
	checker := monitoring.NewChecker(env.Store, env.Auth, env.Metrics,
		time.Duration(c.Server.PurgeIntervalMins)*time.Minute, nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		checker.Run(gctx)
		return nil
	})

	g.Go(func() error {
		zap.L().Info("starting server", zap.String("addr", srv.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		timeout := time.Duration(c.Server.ShutdownTimeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), timeout)
		defer cancel()
		return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
	})

	return g.Wait()
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
