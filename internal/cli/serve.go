// Package cli wires configuration, storage, the reconciliation engine and
// the HTTP server into runnable commands.
package cli

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finze-app/finze-backend/internal/adapters/sources"
	"github.com/finze-app/finze-backend/internal/api"
	"github.com/finze-app/finze-backend/internal/domain/dedup"
	"github.com/finze-app/finze-backend/internal/domain/transaction"
	"github.com/finze-app/finze-backend/internal/infrastructure/config"
	"github.com/finze-app/finze-backend/internal/infrastructure/logging"
	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
	"github.com/finze-app/finze-backend/internal/reconcile"
)

// ServeFlags holds the CLI flags for the serve command.
type ServeFlags struct {
	Port    int
	Verbose bool
}

// ParseServeFlags parses command line flags for the serve command.
func ParseServeFlags() *ServeFlags {
	flags := &ServeFlags{}
	flag.IntVar(&flags.Port, "port", 0, "Port to listen on (0 = use config)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.Parse()
	return flags
}

// RunServe runs the API server with the reconciliation engine attached.
func RunServe(cfg *config.Config, flags *ServeFlags) error {
	loggingCfg := cfg.Observability.Logging
	if flags.Verbose {
		loggingCfg.Level = "debug"
	}
	logger := logging.NewLoggerWithSystem(loggingCfg, "api")

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Reconciliation engine over the two capture paths
	reconcileLogger := logging.NewLoggerWithSystem(loggingCfg, "reconcile")
	reconciler := reconcile.New(
		reconcileConfig(cfg.Reconcile),
		[]reconcile.Feed{
			sources.NewManualAdapter(store, reconcileLogger),
			sources.NewOCRAdapter(store, reconcileLogger),
		},
		reconcileLogger,
	)
	reconciler.Start()
	defer reconciler.Stop()

	port := flags.Port
	if port == 0 {
		port = cfg.Server.Port
	}
	apiCfg := api.Config{
		Port:           port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	server := api.NewServer(apiCfg, store, reconciler, logger)

	// Handle graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("received shutdown signal")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	// Start server (blocks until shutdown)
	if err := server.Start(); err != nil {
		return err
	}

	<-done
	logger.Info("server stopped")
	return nil
}

// reconcileConfig maps file/env configuration onto engine config.
func reconcileConfig(rc config.ReconcileConfig) reconcile.Config {
	engineCfg := reconcile.DefaultConfig()
	engineCfg.Detector = dedup.Config{
		AmountTolerance:     rc.AmountTolerance,
		SimilarityThreshold: rc.SimilarityThreshold,
	}
	if len(rc.Precedence) > 0 {
		precedence := make([]transaction.SourceTag, 0, len(rc.Precedence))
		for _, s := range rc.Precedence {
			precedence = append(precedence, transaction.SourceTag(s))
		}
		engineCfg.Precedence = precedence
	}
	return engineCfg
}
