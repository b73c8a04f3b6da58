package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"moneyflow/internal/amqp"
	"moneyflow/internal/cache"
	"moneyflow/internal/cli"
	"moneyflow/internal/extract"
	apphttp "moneyflow/internal/http"
	"moneyflow/internal/quotes"
	"moneyflow/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	store := cli.OpenBackend(context.Background(), logger, cfg)
	defer store.Close()

	// Ledger events are optional for the API: without a broker the mirror
	// worker simply has nothing to consume.
	var publisher services.LedgerPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		c, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		amqpClient, publisher = c, c
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	rate, _ := decimal.NewFromString(cfg.USDBRLRate)
	quoteProvider := quotes.NewProvider(quotes.Config{
		AlphaVantageKey: cfg.AlphaVantageKey,
		USDToBRL:        rate,
		Timeout:         cfg.QuoteTimeout,
	})

	caches := cache.NewManager()
	caches.Register("quotes", quoteProvider.Cache())
	caches.StartCleanup(5 * time.Minute)

	var extractor *extract.Extractor
	if cfg.GeminiAPIKey != "" {
		gen, err := extract.NewGeminiGenerator(context.Background(), cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			logger.Error("Failed to initialize language model client", "error", err)
			os.Exit(1)
		}
		extractor = extract.New(gen)
		logger.Info("Text extraction enabled", "model", cfg.LLMModel)
	} else {
		logger.Info("Text extraction disabled - no GEMINI_API_KEY provided")
	}

	reconciler := services.NewReconciler(store.Store)
	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Transactions: services.NewTransactionService(store.Store, reconciler, publisher),
		Accounts:     services.NewAccountService(store.Store),
		Categories:   services.NewCategoryService(store.Store),
		Settings:     services.NewSettingsService(store.Store),
		Portfolio:    services.NewPortfolioService(store.Store, quoteProvider),
		Invoices:     services.NewInvoiceProjector(store.Store, store.Store),
		Dashboard:    services.NewDashboardAggregator(store.Store, store.Store),
		Extractor:    extractor,
		Ping:         store.Ping,
	}, apphttp.Options{
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
	})

	logger.Info("Starting moneyflow server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
