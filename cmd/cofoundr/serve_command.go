package main

import (
	"context"

	"cofoundr/api"
	"cofoundr/config"
	"cofoundr/poller"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var pollMetrics bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the workflow over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger(false)
			if err != nil {
				return err
			}
			a, err := ctx.newApp(cmd.Context(), logger, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.ListenAddr
			}

			gin.SetMode(gin.ReleaseMode)
			server := api.NewServer(a.runner,
				api.WithArtifacts(a.artifacts),
				api.WithRegistry(a.registry),
				api.WithLogger(logger.Named("api")),
				api.WithShutdownTimeout(config.ShutdownTimeout),
			)

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return server.Run(gctx, addr)
			})
			if pollMetrics {
				g.Go(func() error {
					p := poller.New(func(ctx context.Context) {
						_ = a.runner.RefreshMetrics(ctx)
					}, poller.WithInterval(a.cfg.PollInterval), poller.WithLogger(logger.Named("poller")))
					h := p.Start(gctx)
					<-gctx.Done()
					h.Stop()
					return nil
				})
			}

			logger.Info("cofoundr API ready",
				zap.String("addr", addr),
				zap.String("service", a.cfg.BaseURL),
				zap.Bool("poll_metrics", pollMetrics))
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default :8080)")
	cmd.Flags().BoolVar(&pollMetrics, "poll-metrics", true, "Refresh service metrics in the background")
	return cmd
}
