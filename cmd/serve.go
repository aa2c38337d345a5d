package cmd

import (
	"bitwise74/taskcamp/app"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the web server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := setup(cmd)
		if err != nil {
			return err
		}

		if cfg.App.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, closeDeps, err := app.NewDeps(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeDeps()

		router, err := app.NewRouter(ctx, d)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Host.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("Server starting", zap.String("addr", srv.Addr), zap.Bool("ssl", cfg.Host.SSLEnabled))

			if cfg.Host.SSLEnabled {
				errCh <- srv.ListenAndServeTLS(cfg.Host.CertPath, cfg.Host.KeyPath)
				return
			}

			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stopped, %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		zap.L().Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	},
}
