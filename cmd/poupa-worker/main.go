package main

import (
	"context"
	"errors"
	"os"
	"sync"

	"poupa/internal/amqp"
	"poupa/internal/backend"
	"poupa/internal/cli"
	applog "poupa/internal/log"
	gsheet "poupa/internal/sheets/google"
	"poupa/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting poupa-worker")

	if !cfg.SheetsEnabled() {
		logger.Error("Google Sheets export disabled, nothing to do - set GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	// The worker only reads the ledger; it consumes changes instead of
	// publishing them.
	backendCfg.AMQPURL = ""

	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	sheetsClient, err := gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetPrefix:     cfg.ReportSheetPrefix,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	opts := worker.Options{Concurrency: cfg.ExportConcurrency}
	if rs, ok := res.Store.(worker.RevisionSource); ok {
		opts.Revisions = rs
	}
	syncWorker := worker.NewSyncWorker(res.Store, sheetsClient, opts)

	var consumer *amqp.Client
	if cfg.AMQPURL != "" {
		consumer, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, relying on periodic sync", "error", err)
			consumer = nil
		}
	}

	var wg sync.WaitGroup
	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		wg.Wait()
		if consumer != nil {
			if err := consumer.Close(); err != nil {
				logger.ErrorContext(ctx, "AMQP close error", "error", err)
			}
		}
	})

	if consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.InfoContext(ctx, "Consuming ledger changes", "queue", cfg.AMQPQueue)
			if err := consumer.ConsumeLedgerChanges(ctx, syncWorker.HandleLedgerChange); err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorContext(ctx, "Message consumption stopped", "error", err)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.InfoContext(ctx, "Starting periodic sync", "interval", cfg.SyncInterval.String())
		syncWorker.Run(ctx, cfg.SyncInterval)
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
