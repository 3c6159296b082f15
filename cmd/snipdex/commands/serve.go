package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/snipdex/internal/transport/chi"
	"github.com/kailas-cloud/snipdex/internal/version"
)

// NewServeCmd constructs the `snipdex serve` command, which runs the HTTP API
// until SIGINT or SIGTERM and then shuts down gracefully.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the snipdex HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, env)
			if err != nil {
				return err
			}
			defer a.Close()

			if port > 0 {
				a.cfg.HTTP.Port = port
			}

			a.logger.Info("Starting snipdex API server",
				zap.String("version", version.Version),
				zap.String("commit", version.Commit),
				zap.String("env", env),
				zap.Int("http_port", a.cfg.HTTP.Port),
				zap.String("db_driver", a.cfg.Database.Driver),
				zap.Bool("judge_enabled", a.cfg.Judge.Enabled),
			)

			addr := fmt.Sprintf(":%d", a.cfg.HTTP.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           chiTransport.NewRouter(a.server(), a.logger),
				ReadTimeout:       time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
				ReadHeaderTimeout: time.Duration(a.cfg.HTTP.ReadTimeoutSec) * time.Second,
				WriteTimeout:      time.Duration(a.cfg.HTTP.WriteTimeoutSec) * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Starting HTTP server", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			a.logger.Info("Received shutdown signal")

			shutdownCtx, cancel := context.WithTimeout(
				context.Background(), time.Duration(a.cfg.HTTP.ShutdownSec)*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("Error during shutdown", zap.Error(err))
				return fmt.Errorf("shutdown: %w", err)
			}

			a.logger.Info("Server stopped gracefully")
			return nil
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides http.port)")

	return cmd
}
