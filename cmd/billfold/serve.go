package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/observability"
	"github.com/billfold/billfold/pkg/errutil"
)

// ObservabilityServer wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// StoreFactory creates the document store connection.
	// Default: store.New
	StoreFactory StoreFactory

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker, sessionCount func() int) ObservabilityServer
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the observability endpoints",
		Long: `Run the metrics and health endpoints. Readiness reflects the
document store connection; /metrics exposes login and session counters
alongside standard process metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, metricsAddr, nil)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "metrics/health HTTP address (default from config)")

	return cmd
}

// runServe starts the observability server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServe(cmd *cobra.Command, metricsAddr string, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, rc observability.ReadinessChecker, sc func() int) ObservabilityServer {
			return observability.NewServer(addr, rc, sc)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if metricsAddr == "" {
		metricsAddr = cfg.Metrics.Addr
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	app, err := newApp(ctx, cfg, deps.StoreFactory)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		_ = app.Close(closeCtx)
	}()

	ready := func() bool {
		healthCtx, healthCancel := context.WithTimeout(ctx, 2*time.Second)
		defer healthCancel()
		return app.Store.Health(healthCtx) == nil
	}

	obsServer := deps.ObservabilityServerFactory(metricsAddr, ready, app.Sessions.Count)
	obsErrChan, err := obsServer.Start()
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Observability endpoints on " + obsServer.Addr())
	slog.Info("serve ready", "metrics_addr", obsServer.Addr())

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case err, ok := <-obsErrChan:
		if ok && err != nil {
			errutil.LogError(slog.Default(), "observability server failed", err)
		}
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := obsServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
