package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	contracts "taskhub/contracts/mq"
	"taskhub/internal/app"
	"taskhub/internal/config"
	"taskhub/internal/mqhandler"
	"taskhub/pkg/logger"
	"taskhub/pkg/mq"
	"taskhub/pkg/util"
)

const skillRequestedQueue = "task.skill_requested.q"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	if cfg.MQ.URL == "" {
		zlog.Fatal("Worker requires mq.url (or MQ_URL) to be set")
	}

	zlog.Info("Starting taskhub worker...",
		zap.String("db_driver", cfg.DB.Driver),
		zap.String("queue", skillRequestedQueue),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, zlog, "taskhub-worker")
	if err != nil {
		zlog.Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer a.Close()

	consumer, err := mq.NewConsumer(cfg.MQ.URL, skillRequestedQueue, contracts.RoutingTaskSkillRequested, zlog)
	if err != nil {
		zlog.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(mqhandler.NewSkillRequestedHandler(a.Tasks, zlog).Handle)
	consumer.SetDeadLetter(a.Publisher)
	if a.Redis != nil {
		consumer.SetRetryPolicy(util.NewRetryCounter(a.Redis, time.Hour), cfg.Worker.MaxRetries)
	}

	zlog.Info("Consumer ready, worker is processing skill requests")
	if err := consumer.StartConsuming(ctx); err != nil {
		zlog.Error("Consumer stopped", zap.Error(err))
	}

	zlog.Info("taskhub worker shutdown complete")
}
