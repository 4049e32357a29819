package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bilancio/internal/ai"
	"bilancio/internal/amqp"
	"bilancio/internal/config"
	apphttp "bilancio/internal/http"
	"bilancio/internal/identity"
	"bilancio/internal/kv"
	"bilancio/internal/ledger"
	applog "bilancio/internal/log"
	"bilancio/internal/mirror"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	var store kv.Store
	switch cfg.KVBackend {
	case "sqlite":
		sqlite, err := kv.NewSQLite(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", applog.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sqlite.Close()
		store = sqlite
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath)
	default:
		store = kv.NewMemory()
		logger.Info("Initialized memory backend")
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
		logger.Info("Initialized PostgREST mirror", applog.FieldMirror, cfg.Mirror)
	case "sheets":
		m, err := mirror.NewSheetsFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Sheets mirror", applog.FieldError, err)
			os.Exit(1)
		}
		remote = m
		logger.Info("Initialized Sheets mirror", applog.FieldMirror, cfg.Mirror)
	default:
		logger.Info("Mirror disabled")
	}

	// Publishing is preferred over direct mirror writes; the worker drains
	// the queue so a slow mirror never blocks the request path.
	var queue ledger.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		queue = client
		logger.Info("Initialized AMQP publisher", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	}

	var advisor ledger.Advisor
	if cfg.AIBaseURL != "" {
		client, err := ai.NewClient(cfg.AIBaseURL, cfg.AIModel, cfg.AITimeout)
		if err != nil {
			logger.Error("Failed to initialize AI client", applog.FieldError, err)
			os.Exit(1)
		}
		advisor = ai.NewAdvisor(client)
		logger.Info("Initialized AI advisor", "model", cfg.AIModel)
	} else {
		logger.Info("AI advisor disabled - no AI_BASE_URL provided")
	}

	ledgerStore, err := ledger.New(ledger.Options{
		KV:          store,
		Identity:    identity.NewDevice(store),
		Mirror:      remote,
		Queue:       queue,
		Advisor:     advisor,
		Logger:      logger.WithComponent(applog.ComponentLedger),
		DisableSeed: !cfg.DemoSeed,
	})
	if err != nil {
		logger.Error("Failed to initialize ledger", applog.FieldError, err)
		os.Exit(1)
	}

	loadCtx, loadCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ledgerStore.Load(loadCtx); err != nil {
		loadCancel()
		logger.Error("Ledger hydration failed", applog.FieldError, err)
		os.Exit(1)
	}
	loadCancel()

	srv := apphttp.NewServer(":"+cfg.Port, ledgerStore, logger.WithComponent(applog.ComponentHTTP))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting bilancio server", "port", cfg.Port, "backend", cfg.KVBackend, applog.FieldMirror, cfg.Mirror)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
