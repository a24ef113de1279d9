package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Kamar-Folarin/github-reporter/internal/api"
	"github.com/Kamar-Folarin/github-reporter/internal/pipeline"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the HTTP API and the report scheduler",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.migrate(); err != nil {
			return err
		}

		if a.cfg.Env == "prod" {
			gin.SetMode(gin.ReleaseMode)
		}
		handler := api.NewHandler(a.store, a.jobs, a.logger)
		server := &http.Server{
			Addr:         ":" + a.cfg.Port,
			Handler:      api.SetupRouter(handler, a.logger),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 5 * time.Minute,
			IdleTimeout:  60 * time.Second,
		}

		serverErr := make(chan error, 1)
		go func() {
			a.logger.Infof("Server starting on port %s", a.cfg.Port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		schedCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		scheduler := pipeline.NewScheduler(a.jobs, a.cfg.Report.Interval, a.cfg.Report.DailyGather, a.logger)
		done := make(chan struct{})
		go func() {
			defer close(done)
			scheduler.Start(schedCtx)
		}()

		select {
		case <-ctx.Done():
		case err = <-serverErr:
			a.logger.WithError(err).Error("Server failed")
		}

		a.logger.Info("Shutting down server...")
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.ShutdownGrace)
		defer shutdownCancel()

		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			a.logger.WithError(shutdownErr).Error("Server shutdown failed")
		}
		select {
		case <-done:
		case <-shutdownCtx.Done():
			a.logger.Warn("Scheduler did not stop before the shutdown deadline")
		}
		a.logger.Info("Server exited properly")
		return err
	},
}
