package main

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"moneyflow/internal/amqp"
	"moneyflow/internal/cache"
	"moneyflow/internal/cli"
	"moneyflow/internal/services"
	"moneyflow/internal/sheets"
	gsheet "moneyflow/internal/sheets/google"
	mirrormem "moneyflow/internal/sheets/memory"
	"moneyflow/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting moneyflow-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Invalid worker configuration", "error", err)
		os.Exit(1)
	}

	store := cli.OpenBackend(context.Background(), logger, cfg)
	defer store.Close()

	caches := cache.NewManager()

	var mirror sheets.TransactionMirror
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		caches.Register("sheet_rows", client.Cache())
		mirror = client
	} else {
		logger.Info("Google Sheets disabled - mirroring into memory")
		mirror = mirrormem.New()
	}
	caches.StartCleanup(time.Hour)

	// The API writes to the same database, so the auditor only reports.
	// Drift is repaired with `moneyflowctl reconcile`.
	var auditor *services.BalanceAuditor
	if cfg.AuditInterval > 0 {
		auditor = services.NewBalanceAuditor(
			services.NewReconciler(store.Store),
			services.BalanceAuditorConfig{Interval: cfg.AuditInterval, Repair: false},
		)
	}

	var amqpClient atomic.Pointer[amqp.Client]
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if auditor != nil {
			if err := auditor.Stop(ctx); err != nil {
				logger.Error("Balance auditor stop error", "error", err)
			}
		}
		caches.Stop()
		if c := amqpClient.Load(); c != nil {
			if err := c.Close(); err != nil {
				logger.Error("AMQP close error", "error", err)
			}
		}
	})

	client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		// Only a shutdown during the retry loop gets here.
		logger.Warn("AMQP connection aborted", "error", err)
		cli.WaitForShutdown(ctx, done)
		return
	}
	amqpClient.Store(client)

	syncWorker := worker.NewSyncWorker(store.Store, mirror)

	// Catch up on anything published while the worker was down.
	logger.Info("Performing startup resync...")
	if err := syncWorker.FullResync(ctx); err != nil {
		logger.Error("Startup resync failed", "error", err)
	}

	if auditor != nil {
		if err := auditor.Start(ctx); err != nil {
			logger.Error("Failed to start balance auditor", "error", err)
		}
	}

	go func() {
		if err := client.ConsumeLedgerEvents(ctx, syncWorker.HandleLedgerEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
