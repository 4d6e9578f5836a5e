package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"kasboek/internal/amqp"
	"kasboek/internal/cli"
	"kasboek/internal/config"
	"kasboek/internal/export/google"
	"kasboek/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting kasboek-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	source, cleanup := cli.InitLedgerSource(context.Background(), logger, cfg)
	if cleanup != nil {
		defer cleanup()
	}

	archive := cli.InitArchive(logger, cfg.SQLiteDBPath)
	defer archive.Close()

	// Google Sheets export (optional)
	var sheets worker.SheetAppender
	if cfg.GoogleSpreadsheetID != "" {
		client, err := google.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		sheets = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	// AMQP announcements (optional)
	var publisher worker.SnapshotPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	accounts := snapshotAccounts(cfg)
	snapshotWorker := worker.NewSnapshotWorker(source, archive, publisher, sheets, accounts, cfg.SnapshotInterval)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Performing startup snapshot check...", "accounts", accounts)
	if err := snapshotWorker.StartupCheck(ctx); err != nil {
		logger.Error("Startup snapshot check failed", "error", err)
		// Don't exit - the periodic loop may still succeed
	}

	g, ctx := errgroup.WithContext(ctx)

	// Periodic snapshot rounds
	g.Go(func() error {
		return snapshotWorker.Run(ctx)
	})

	// Consume announcements and export them, reconnecting on broker hiccups
	if amqpClient != nil {
		g.Go(func() error {
			return amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, snapshotWorker.HandleSnapshotMessage)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

// snapshotAccounts returns the configured account names, deduplicated.
func snapshotAccounts(cfg *config.Config) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, name := range []string{cfg.IncomeAccount, cfg.BillpayAccount, cfg.AvailAccount} {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
