package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"anovalab/adapters/api"
	"anovalab/adapters/excel"
	"anovalab/app"
	"anovalab/internal/errors"
	"anovalab/ports"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis over HTTP",
		Long: `Start the HTTP API:

  POST /v1/anova       analyse JSON observations or a CSV/XLSX body
  GET  /v1/runs        list stored runs
  GET  /v1/runs/:id    fetch a stored run
  GET  /healthz        liveness
  GET  /metrics        Prometheus metrics

Runs are stored when DATABASE_URL is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var repo ports.ResultRepository
			if cfg.Database.URL != "" {
				db, r, err := openStore(ctx, cfg, logger)
				if err != nil {
					return err
				}
				defer db.Close()
				repo = r
			} else {
				logger.Warn("DATABASE_URL not set; runs will not be stored")
			}

			gin.SetMode(cfg.Server.GinMode)
			service := app.NewAnalysisService(newAnalyzer(cfg, logger), repo, logger)
			handler := api.NewHandler(service, excel.ReadOptions{SkipMalformed: cfg.Input.SkipMalformed}, cfg.Analysis.Alpha, logger)

			srv := &http.Server{
				Addr:              ":" + cfg.Server.Port,
				Handler:           api.NewRouter(handler, logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening on %s", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return errors.Wrap(err, "server failed")
				}
				return nil
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "Port to listen on (overrides PORT)")
	return cmd
}
