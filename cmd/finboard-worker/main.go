package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"finboard/internal/amqp"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/log"
	"finboard/internal/observability/metrics"
	"finboard/internal/services"
	"finboard/internal/sheets"
	gsheet "finboard/internal/sheets/google"
	mem "finboard/internal/sheets/memory"
	"finboard/internal/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, logger, err := cli.Bootstrap(log.ComponentWorker)
	if err != nil {
		return err
	}
	metrics.Init()
	logger.Info("Starting finboard-worker")

	repo, err := cli.OpenSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	mirror, err := newMirror(ctx, cfg, logger)
	if err != nil {
		return err
	}

	syncWorker := worker.NewSyncWorker(repo, mirror, cfg.SyncBatchSize)
	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Sync sweeper started", "interval", cfg.SyncInterval, "batch_size", cfg.SyncBatchSize)
		return cli.IgnoreCanceled(processor.Run(gctx))
	})

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			cancel()
			_ = g.Wait()
			return err
		}
		defer client.Close()

		g.Go(func() error {
			logger.Info("Consuming sync messages", "queue", cfg.AMQPQueue)
			return cli.IgnoreCanceled(client.ConsumeRecordSync(gctx, syncWorker.Handle))
		})
	} else {
		logger.Info("AMQP disabled, relying on periodic sweeps only")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Worker stopped gracefully")
	return nil
}

func newMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Mirror, error) {
	if !cfg.SheetsEnabled() {
		logger.Warn("Google Sheets disabled, mirroring into process memory")
		return mem.New(), nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		return nil, err
	}
	logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
