package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/transport/httpapi"
	"github.com/webntricks/unisearch/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the search API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	app.logger.Info("Starting unisearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", app.cfg.HTTP.Port),
		zap.String("collection", app.cfg.Typesense.Collection),
		zap.Strings("indexable_types", app.cfg.Index.Types),
		zap.Bool("index_configured", app.index.Configured()),
		zap.Bool("ai_configured", app.assistant.Configured()),
	)

	server := httpapi.NewServer(app.search, app.assistant, app.cache, app.health, app.logger)

	addr := fmt.Sprintf(":%d", app.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  time.Duration(app.cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(app.cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-quit:
		app.logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(app.cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("Error during shutdown", zap.Error(err))
	}

	app.logger.Info("Server stopped gracefully")
	return nil
}
