package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskhub/internal/model"
	"taskhub/pkg/config"
	"taskhub/pkg/db"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskStore persists tasks. List returns newest first.
type TaskStore interface {
	EnsureSchema(ctx context.Context) error
	Create(ctx context.Context, t *model.Task) error
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, id uuid.UUID, u model.TaskUpdate) (*model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SaveOutput(ctx context.Context, id uuid.UUID, output map[string]any) (*model.Task, error)
	Ping(ctx context.Context) error
	Close()
}

// Open connects the store selected by cfg.Driver and ensures its schema.
func Open(ctx context.Context, cfg config.DBConfig, logger *zap.Logger) (TaskStore, error) {
	var store TaskStore
	switch cfg.Driver {
	case "", "postgres", "postgresql":
		pool, err := db.NewConnection(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		store = NewPostgresTaskRepository(pool, logger)
	case "sqlite":
		s, err := OpenSQLiteTaskRepository(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}
