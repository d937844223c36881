package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"bindo/internal/amqp"
	"bindo/internal/backend"
	"bindo/internal/config"
	applog "bindo/internal/log"
	"bindo/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.DefaultConfig().Level,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting bindo-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	loc := cfg.Location()

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	}()

	scheduleService := services.NewScheduleService(result.Store, loc)
	materializer := services.NewMaterializer(result.Store, scheduleService, result.AMQPClient, loc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Materializer configured",
		"interval", cfg.MaterializeInterval,
		"backend", cfg.DataBackend,
		"amqp_enabled", result.AMQPClient != nil)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runMaterializer(ctx, logger, materializer, cfg.MaterializeInterval)
	})

	// When a broker is configured, also log occurrences other producers
	// materialized. Nothing fatal if the link never comes up.
	if cfg.AMQPURL != "" {
		g.Go(func() error {
			err := amqp.ConsumeForever(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, func(msg *amqp.OccurrenceDueMessage) error {
				logger.InfoContext(ctx, "Occurrence materialized",
					"item_id", msg.ItemID,
					"occurrence_id", msg.OccurrenceID,
					"pay_day", msg.PayDay.Format("2006-01-02"))
				return nil
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// runMaterializer processes due items immediately and then on every tick
// until the context is cancelled.
func runMaterializer(ctx context.Context, logger *applog.Logger, m *services.Materializer, interval time.Duration) error {
	if count, err := m.ProcessDueItems(ctx, time.Now()); err != nil {
		logger.Error("Initial materialization failed", "error", err)
	} else {
		logger.Info("Initial materialization complete", "occurrences_created", count)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			count, err := m.ProcessDueItems(ctx, now)
			if err != nil {
				logger.Error("Periodic materialization failed", "error", err)
				continue
			}
			logger.Info("Periodic materialization complete",
				"occurrences_created", count,
				"next_check", now.Add(interval).Format("15:04:05"))
		}
	}
}
