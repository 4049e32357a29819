package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bilancio/internal/amqp"
	"bilancio/internal/config"
	applog "bilancio/internal/log"
	"bilancio/internal/mirror"
	"bilancio/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentWorker)
	applog.SetDefault(logger)

	logger.Info("Starting bilancio-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	var remote mirror.Mirror
	switch cfg.Mirror {
	case "postgrest":
		m, err := mirror.NewPostgREST(cfg.SupabaseURL, cfg.SupabaseAPIKey)
		if err != nil {
			logger.Error("Failed to initialize PostgREST mirror", applog.FieldError, err)
			os.Exit(1)
		}
		remote = m
	case "sheets":
		m, err := mirror.NewSheetsFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Sheets mirror", applog.FieldError, err)
			os.Exit(1)
		}
		remote = m
	default:
		logger.Error("Worker requires a mirror, set MIRROR to postgrest or sheets")
		os.Exit(1)
	}
	logger.Info("Mirror initialized", applog.FieldMirror, cfg.Mirror)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncWorker := worker.NewSyncWorker(remote, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return syncWorker.Run(gctx, amqpClient)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
