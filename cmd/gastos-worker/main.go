package main

import (
	"context"
	"errors"
	"os"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/log"
	"gastos/internal/worker"
)

// gastos-worker consumes import.completed events and writes them to the
// SQLite import history.
func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting gastos-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	w := worker.NewHistoryWorker(repo, logger)
	if err := client.ConsumeImportCompleted(ctx, w.HandleImportCompleted); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped", log.FieldOperation, log.OpShutdown)
}
