package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/onedreamlabs/onedream-staking-indexer/internal/api"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/metrics"
	"github.com/onedreamlabs/onedream-staking-indexer/internal/observability/tracing"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the pollers and the read-only HTTP API",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	// initialize metrics with the metrics port from config
	metrics.Init(a.cfg.Metrics.GetMetricsPort())

	pollers := a.service.StartPollers(ctx)
	defer func() {
		for _, p := range pollers {
			p.Stop()
		}
	}()

	server := api.New(&a.cfg.Server, a.service)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info().Msg("server stopped")
	return err
}
