package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"taskhub/internal/config"
	"taskhub/internal/repository"
	"taskhub/internal/service/task"
	"taskhub/pkg/circuitbreaker"
	"taskhub/pkg/mq"
	"taskhub/pkg/redis"
	"taskhub/pkg/util"
)

// App holds the process-wide dependencies shared by the server, worker and CLI.
type App struct {
	Config    *config.Config
	Store     repository.TaskStore
	Redis     *goredis.Client
	Publisher *mq.Publisher
	Tasks     *task.Service
	Logger    *zap.Logger
}

// New connects the store, plus redis and the broker when configured.
// source names the process in published message headers.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, source string) (*App, error) {
	a := &App{Config: cfg, Logger: log}

	log.Info("Initializing task store...", zap.String("driver", cfg.DB.Driver))
	store, err := repository.Open(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init task store: %w", err)
	}
	a.Store = store

	rdb, err := redis.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}
	a.Redis = rdb

	// Keep the interface nil when there is no broker.
	var publisher task.EventPublisher
	if cfg.MQ.URL != "" {
		log.Info("Initializing MQ publisher...")
		p, err := mq.NewPublisher(cfg.MQ.URL, source)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init publisher: %w", err)
		}
		a.Publisher = p
		publisher = mq.NewGuardedPublisher(p, circuitbreaker.DefaultConfig())
	} else {
		log.Info("MQ not configured, events disabled")
	}

	lock := util.NewTaskLock(rdb, time.Duration(cfg.Redis.LockTTL)*time.Second, log)
	a.Tasks = task.NewService(store, publisher, lock, log)
	return a, nil
}

func (a *App) Close() {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}
