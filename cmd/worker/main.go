package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jimmiewester/skippy/internal/config"
	"github.com/jimmiewester/skippy/internal/database"
	"github.com/jimmiewester/skippy/internal/logger"
	"github.com/jimmiewester/skippy/internal/metrics"
	"github.com/jimmiewester/skippy/internal/queue"
	"github.com/jimmiewester/skippy/internal/sender"
	"github.com/jimmiewester/skippy/internal/services"
	"github.com/jimmiewester/skippy/internal/store"
	"github.com/jimmiewester/skippy/internal/worker"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.App.LogLevel); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()
	log := logger.L()

	metrics.Register()

	itemStore, closeStore, err := newItemStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize item store", zap.Error(err))
	}
	defer closeStore()

	conn := queue.NewConnection(&cfg.RabbitMQ, log)
	if err := conn.Connect(); err != nil {
		log.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	publisher := queue.NewTaskPublisher(conn, &cfg.Worker, log)
	if err := publisher.DeclareTopology(); err != nil {
		log.Fatal("Failed to declare queue topology", zap.Error(err))
	}

	webhookSvc := services.NewWebhookService(itemStore, log)
	smsSvc := services.NewSMSService(itemStore, log)
	elks := sender.NewElksClient(cfg.Elks, log)

	taskHandlers := worker.NewTaskHandlers(webhookSvc, smsSvc, elks, cfg.Retention, log)

	w := worker.NewWorker(&cfg.Worker, conn, publisher, taskHandlers, log)
	if err := w.Start(); err != nil {
		log.Fatal("Failed to start worker", zap.Error(err))
	}

	sched := worker.NewScheduler(cfg.Retention.SweepInterval, publisher, log)
	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down worker")
	sched.Stop()
	if err := w.Stop(); err != nil {
		log.Error("Error stopping worker", zap.Error(err))
	}
	log.Info("Worker stopped")
}

// newItemStore builds the configured item store backend and returns a
// cleanup function.
func newItemStore(cfg *config.Config, log *zap.Logger) (store.ItemStore, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		log.Warn("Using in-memory item store; data will not survive restarts")
		return store.NewMemoryStore(), func() {}, nil

	case "postgres":
		db, err := database.Connect(&cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := database.Close(db, log); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}
		return store.NewPostgresStore(db), cleanup, nil

	default: // redis
		client := store.NewRedisClient(cfg.Redis)
		rs := store.NewRedisStore(client)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}

		log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		cleanup := func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing Redis client", zap.Error(err))
			}
		}
		return rs, cleanup, nil
	}
}
