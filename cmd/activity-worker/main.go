package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"agencydesk/internal/amqp"
	"agencydesk/internal/cache"
	"agencydesk/internal/cli"
	"agencydesk/internal/config"
	"agencydesk/internal/log"
	"agencydesk/internal/storage"
	"agencydesk/internal/worker"
)

const (
	dedupeSize    = 4096
	dedupeWindow  = time.Hour
	sweepInterval = 5 * time.Minute
	statsInterval = 15 * time.Minute
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the activity worker")
		os.Exit(1)
	}

	logger.Info("Starting activity-worker", log.FieldOperation, log.OpStartup, "db", cfg.SQLiteDBPath, "queue", cfg.AMQPQueue)

	ctx, stop := cli.ShutdownContext(context.Background(), logger)
	err := run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", log.FieldOperation, log.OpShutdown)
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	if err != nil {
		return fmt.Errorf("initialize sqlite repository at %s: %w", cfg.SQLiteDBPath, err)
	}
	defer repo.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return fmt.Errorf("initialize amqp client: %w", err)
	}
	defer client.Close()

	w := worker.NewActivityWorker(repo, dedupeSize, dedupeWindow, logger)
	caches := cache.NewManager(logger)
	caches.Register(w.Cache())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeEntityEvents(gctx, w.HandleEntityEvent)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		caches.Run(gctx, sweepInterval)
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				recorded, dups := w.Stats()
				logger.Info("Activity worker stats", "recorded", recorded, "duplicates", dups, "amqp_healthy", client.Healthy())
			}
		}
	})
	return g.Wait()
}
