package main

import (
	"context"
	"errors"
	"os"
	"time"

	"budgetwise/internal/cli"
	"budgetwise/internal/log"
	"budgetwise/internal/services"
	"budgetwise/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.ConfigureLogger(cfg, log.ComponentWorker)

	logger.Info("Starting budgetwise-worker")

	be := cli.InitBackend(context.Background(), logger, cfg)
	if be.Events == nil && be.Queue == nil {
		logger.Error("Nothing to do: the worker needs the sqlite backend or an AMQP broker",
			"backend", cfg.DataBackend)
		_ = be.Cleanup()
		os.Exit(1)
	}
	mirror := cli.InitMirror(context.Background(), logger, cfg)

	var processor *services.MirrorProcessor
	if source, ok := be.Store.(services.MirrorSource); ok && be.Queue != nil {
		processor = services.NewMirrorProcessor(source, mirror, services.MirrorProcessorConfig{
			PollInterval: cfg.MirrorInterval,
			BatchSize:    cfg.MirrorBatchSize,
			MaxRetries:   services.DefaultMirrorProcessorConfig().MaxRetries,
		})
	}
	w := worker.NewMirrorWorker(be.Store, mirror, processor)

	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, func() {
		if processor != nil {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := processor.Stop(stopCtx); err != nil {
				logger.Warn("Mirror processor stop failed", "error", err)
			}
		}
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	})

	logger.Info("Performing startup mirror check...")
	if err := w.StartupMirrorCheck(ctx); err != nil {
		logger.Error("Failed startup mirror check", "error", err)
	}

	if processor != nil {
		if err := processor.Start(ctx); err != nil {
			logger.Error("Failed to start mirror processor", "error", err)
		}
	} else {
		logger.Info("Store keeps no mirror queue, relying on events only")
	}

	if be.Events != nil {
		go func() {
			err := be.Events.ConsumeTransactionEvents(ctx, w.HandleEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Event consumption failed", "error", err)
			}
		}()
	} else {
		logger.Info("AMQP disabled, mirroring from the queue only")
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
